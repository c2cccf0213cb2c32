package core

import (
	"math"

	"github.com/signalsfoundry/motorstart/model"
)

const (
	// wattsPerHP converts mechanical horsepower to watts.
	wattsPerHP = 746.0

	// Assumed nameplate figures when the NEC table has no entry.
	assumedEfficiency  = 0.90
	assumedPowerFactor = 0.85
)

var sqrt3 = math.Sqrt(3)

// FullLoadCurrent resolves the full-load current for a motor rating.
//
// Three-phase ratings at 208/230/460/575 V come straight from the NEC table
// with no interpolation. Anything else, including every single-phase
// request, is estimated from hp with 90% efficiency and 0.85 power factor;
// the result is tagged SourceEstimated so callers can tell the two apart.
func FullLoadCurrent(hp, voltage float64, phases int) (model.FullLoadCurrent, error) {
	if err := validateRating(hp, voltage, phases); err != nil {
		return model.FullLoadCurrent{}, err
	}

	if phases == 3 {
		if amps, ok := TabulatedFullLoadCurrent(voltage, hp); ok {
			return model.FullLoadCurrent{Amperes: amps, Source: model.SourceTabulated}, nil
		}
	}

	denom := voltage * assumedEfficiency * assumedPowerFactor
	if phases == 3 {
		denom *= sqrt3
	}
	amps := hp * wattsPerHP / denom
	if err := finite("FullLoadCurrent", "current", amps); err != nil {
		return model.FullLoadCurrent{}, err
	}
	return model.FullLoadCurrent{
		Amperes:            amps,
		Source:             model.SourceEstimated,
		AssumedEfficiency:  assumedEfficiency,
		AssumedPowerFactor: assumedPowerFactor,
	}, nil
}

// LockedRotorCurrent derives the inrush current at zero speed from the NEMA
// code letter: kVA = hp × kVA/hp, then I = kVA·1000/(√3·V) for three-phase
// or kVA·1000/V for single-phase. A missing or unknown letter is treated as G.
func LockedRotorCurrent(m model.MotorSpecification) (float64, error) {
	if err := validateRating(m.Horsepower, m.Voltage, m.Phases); err != nil {
		return 0, err
	}
	multiplier, _ := CodeLetterMultiplier(m.Code)
	kva := m.Horsepower * multiplier

	denom := m.Voltage
	if m.IsThreePhase() {
		denom *= sqrt3
	}
	amps := kva * 1000 / denom
	if err := finite("LockedRotorCurrent", "current", amps); err != nil {
		return 0, err
	}
	return amps, nil
}
