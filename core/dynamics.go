package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/motorstart/model"
)

const (
	// Typical induction-motor impedance used for every motor. These are
	// textbook per-unit values, not a per-motor measurement.
	motorSubtransientReactancePU = 0.17 // x″
	motorStatorResistancePU      = 0.02 // r

	// accelerationConstant is the 308 in t = WK²·N / (308·T), with WK² in
	// lb·ft², N in rpm and T in lb·ft.
	accelerationConstant = 308.0
)

// VoltageDip estimates the percent voltage dip at the motor terminals while
// starting. The motor's fixed per-unit impedance is added component-wise to
// the source impedance; the dip is the starting-current ratio times |Z|.
func VoltageDip(startingCurrent, flc float64, src model.SourceImpedance) (float64, error) {
	if err := ValidateSourceImpedance(src); err != nil {
		return 0, err
	}
	ratio := startingCurrent / flc
	if err := finite("VoltageDip", "current ratio", ratio); err != nil {
		return 0, err
	}
	r := src.R + motorStatorResistancePU
	x := src.X + motorSubtransientReactancePU
	zTotal := math.Sqrt(r*r + x*x)
	dip := ratio * zTotal * 100
	if err := finite("VoltageDip", "voltage dip", dip); err != nil {
		return 0, err
	}
	return dip, nil
}

// LoadInertia returns the combined WK² (lb·ft²) for a motor driving the
// given load, using the selected inertia table.
func LoadInertia(table InertiaTable, hp float64, load model.LoadType) (float64, error) {
	constants, ok := loadInertiaConstants[table]
	if !ok {
		return 0, fmt.Errorf("%w: unknown inertia table %q", ErrInvalidLoadType, table)
	}
	k, ok := constants[load]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLoadType, load)
	}
	return hp * k, nil
}

// AccelerationTorque is the starting torque (percent) scaled by the load
// curve's average accelerating margin.
func AccelerationTorque(startingTorque float64, load model.LoadType) (float64, error) {
	curve, ok := loadTorqueCurves[load]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLoadType, load)
	}
	return startingTorque * accelerationTorqueFactor[curve], nil
}

// AccelerationTime returns seconds to full speed and the average accelerating
// torque (percent) used to get there:
//
//	t = WK²·rpm / (308·hp·(avgTorque/100))
func AccelerationTime(table InertiaTable, m model.MotorSpecification, load model.LoadType, startingTorque float64) (seconds, avgTorque float64, err error) {
	wk2, err := LoadInertia(table, m.Horsepower, load)
	if err != nil {
		return 0, 0, err
	}
	avgTorque, err = AccelerationTorque(startingTorque, load)
	if err != nil {
		return 0, 0, err
	}
	seconds = wk2 * m.RPM / (accelerationConstant * m.Horsepower * (avgTorque / 100))
	if err := finite("AccelerationTime", "acceleration time", seconds); err != nil {
		return 0, 0, err
	}
	if seconds < 0 {
		return 0, 0, fmt.Errorf("%w: AccelerationTime: negative time %v", ErrCalculation, seconds)
	}
	return seconds, avgTorque, nil
}
