package core

import (
	"fmt"

	"github.com/signalsfoundry/motorstart/model"
)

const (
	// baselineStartingTorque is across-the-line locked-rotor torque in
	// percent of full-load torque, assuming a NEMA Design B motor.
	baselineStartingTorque = 150.0

	defaultAutotransformerTapPercent = 80.0
	defaultSoftStarterInitialPercent = 30.0

	// A VFD starts at slightly above rated current with full torque.
	vfdCurrentFactor = 1.1

	// Primary-resistor starting drops terminal voltage to ~65%.
	resistorVoltageFactor = 0.65

	// Part-winding energises half the winding: ~65% current, ~50% torque.
	partWindingCurrentFactor = 0.65
	partWindingTorqueFactor  = 0.5

	// Generic reduced-voltage starter at an 80% tap (0.8² = 0.64).
	reducedVoltageFactor = 0.64
)

// StartingParameters is what a starting method does to the motor's inrush:
// current in amperes, torque in percent of full-load torque.
type StartingParameters struct {
	Current       float64
	TorquePercent float64
}

// StartingCalculator computes the starting current and torque for one
// starting technology from the locked-rotor and full-load currents.
type StartingCalculator interface {
	Compute(lrc, flc float64, s model.StartingSettings) StartingParameters
}

// startingCalculators is the closed dispatch table, one entry per variant.
var startingCalculators = map[model.StartingMethodType]StartingCalculator{
	model.MethodAcrossTheLine:   acrossTheLine{},
	model.MethodStarDelta:       starDelta{},
	model.MethodAutotransformer: autotransformer{},
	model.MethodSoftStarter:     softStarter{},
	model.MethodVFD:             vfd{},
	model.MethodResistor:        resistor{},
	model.MethodPartWinding:     partWinding{},
	model.MethodReducedVoltage:  reducedVoltage{},
}

// CalculatorFor returns the calculator for a starting method type.
func CalculatorFor(t model.StartingMethodType) (StartingCalculator, error) {
	c, ok := startingCalculators[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStartingMethod, t)
	}
	return c, nil
}

// AnalyzeStartingMethod validates the method and its settings, then applies
// the variant's formula.
func AnalyzeStartingMethod(sm model.StartingMethod, lrc, flc float64) (StartingParameters, error) {
	if err := ValidateStartingMethod(sm); err != nil {
		return StartingParameters{}, err
	}
	if err := finite("AnalyzeStartingMethod", "locked-rotor current", lrc); err != nil {
		return StartingParameters{}, err
	}
	if err := finite("AnalyzeStartingMethod", "full-load current", flc); err != nil {
		return StartingParameters{}, err
	}
	if lrc < 0 || flc < 0 {
		return StartingParameters{}, fmt.Errorf("%w: currents must be non-negative (lrc=%v flc=%v)", ErrCalculation, lrc, flc)
	}
	p := startingCalculators[sm.Type].Compute(lrc, flc, sm.Settings)
	if err := finite("AnalyzeStartingMethod", "starting current", p.Current); err != nil {
		return StartingParameters{}, err
	}
	return p, nil
}

// squaredFraction returns (pct/100)². Squaring before dividing keeps common
// taps exact: 80% gives exactly 0.64.
func squaredFraction(pct float64) float64 {
	return pct * pct / 10000
}

func percentOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

type acrossTheLine struct{}

func (acrossTheLine) Compute(lrc, _ float64, _ model.StartingSettings) StartingParameters {
	return StartingParameters{Current: lrc, TorquePercent: baselineStartingTorque}
}

// starDelta applies 1/√3 phase voltage: line current and torque both fall
// to one third.
type starDelta struct{}

func (starDelta) Compute(lrc, _ float64, _ model.StartingSettings) StartingParameters {
	return StartingParameters{Current: lrc / 3, TorquePercent: baselineStartingTorque / 3}
}

// autotransformer follows the square law on the tap: line current and
// torque both scale with tap².
type autotransformer struct{}

func (autotransformer) Compute(lrc, _ float64, s model.StartingSettings) StartingParameters {
	k := squaredFraction(percentOr(s.TapPercent, defaultAutotransformerTapPercent))
	return StartingParameters{Current: lrc * k, TorquePercent: baselineStartingTorque * k}
}

// softStarter limits current linearly with the pedestal voltage while torque
// follows its square.
type softStarter struct{}

func (softStarter) Compute(lrc, _ float64, s model.StartingSettings) StartingParameters {
	pct := percentOr(s.InitialVoltagePercent, defaultSoftStarterInitialPercent)
	return StartingParameters{
		Current:       lrc * pct / 100,
		TorquePercent: baselineStartingTorque * squaredFraction(pct),
	}
}

type vfd struct{}

func (vfd) Compute(_, flc float64, _ model.StartingSettings) StartingParameters {
	return StartingParameters{Current: flc * vfdCurrentFactor, TorquePercent: baselineStartingTorque}
}

type resistor struct{}

func (resistor) Compute(lrc, _ float64, _ model.StartingSettings) StartingParameters {
	return StartingParameters{
		Current:       lrc * resistorVoltageFactor,
		TorquePercent: baselineStartingTorque * resistorVoltageFactor,
	}
}

type partWinding struct{}

func (partWinding) Compute(lrc, _ float64, _ model.StartingSettings) StartingParameters {
	return StartingParameters{
		Current:       lrc * partWindingCurrentFactor,
		TorquePercent: baselineStartingTorque * partWindingTorqueFactor,
	}
}

type reducedVoltage struct{}

func (reducedVoltage) Compute(lrc, _ float64, _ model.StartingSettings) StartingParameters {
	return StartingParameters{
		Current:       lrc * reducedVoltageFactor,
		TorquePercent: baselineStartingTorque * reducedVoltageFactor,
	}
}
