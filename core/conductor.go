package core

import (
	"math"

	"github.com/signalsfoundry/motorstart/model"
)

const (
	// NEC 430.22: branch-circuit conductors carry 125% of FLC.
	conductorSizingMultiplier = 1.25

	// NEC 310.15(B)(1) correction for the 75 °C column above 30 °C ambient.
	ambientReferenceC    = 30.0
	hotAmbientCorrection = 0.88

	// Placeholder conductor impedance per 1000 ft, independent of size.
	conductorResistanceOhmsPerKft = 0.2
	conductorReactanceOhmsPerKft  = 0.05
)

// TemperatureCorrection returns the ampacity derating for an ambient.
func TemperatureCorrection(ambientC float64) float64 {
	if ambientC > ambientReferenceC {
		return hotAmbientCorrection
	}
	return 1.0
}

// SelectConductor returns the smallest copper conductor whose corrected
// ampacity covers required, and whether the table ran out. When no entry is
// large enough the largest size is returned with ok=false.
func SelectConductor(required, ambientC float64) (size string, ampacity float64, ok bool) {
	corr := TemperatureCorrection(ambientC)
	for _, c := range conductorAmpacities {
		if c.Ampacity*corr >= required {
			return c.Size, c.Ampacity * corr, true
		}
	}
	last := conductorAmpacities[len(conductorAmpacities)-1]
	return last.Size, last.Ampacity * corr, false
}

// SizeConductor sizes the branch-circuit conductor for a motor and estimates
// voltage drop over the run:
//
//	z   = √((R·pf)² + (X·sin(acos pf))²)
//	VD% = k·I·z·length / (1000·V) × 100, k = √3 (3φ) or 2 (1φ)
func SizeConductor(m model.MotorSpecification, flc float64, run model.CircuitRun) (model.ConductorSizing, error) {
	if err := validateRating(m.Horsepower, m.Voltage, m.Phases); err != nil {
		return model.ConductorSizing{}, err
	}
	if err := validatePowerFactor(m.PowerFactor); err != nil {
		return model.ConductorSizing{}, err
	}
	if err := ValidateCircuit(run); err != nil {
		return model.ConductorSizing{}, err
	}
	if err := finite("SizeConductor", "full-load current", flc); err != nil {
		return model.ConductorSizing{}, err
	}

	required := flc * conductorSizingMultiplier
	size, ampacity, ok := SelectConductor(required, run.AmbientTempC)

	sinPhi := math.Sin(math.Acos(m.PowerFactor))
	if err := finite("SizeConductor", "sin(acos(pf))", sinPhi); err != nil {
		return model.ConductorSizing{}, err
	}
	rPart := conductorResistanceOhmsPerKft * m.PowerFactor
	xPart := conductorReactanceOhmsPerKft * sinPhi
	z := math.Sqrt(rPart*rPart + xPart*xPart)

	k := 2.0
	if m.IsThreePhase() {
		k = sqrt3
	}
	vd := k * flc * z * run.LengthFt / (1000 * m.Voltage) * 100
	if err := finite("SizeConductor", "voltage drop", vd); err != nil {
		return model.ConductorSizing{}, err
	}

	return model.ConductorSizing{
		Size:               size,
		Ampacity:           ampacity,
		RequiredAmpacity:   required,
		VoltageDropPercent: vd,
		Conduit:            run.Conduit,
		Undersized:         !ok,
	}, nil
}
