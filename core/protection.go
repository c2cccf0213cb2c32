package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/signalsfoundry/motorstart/model"
)

const (
	// NEC 430.32(A)(1): 115% of FLC for motors with a 1.15 service factor.
	overloadMultiplier = 1.15

	// Trip class 20 is needed once acceleration outlasts a class 10 relay.
	longAccelerationSeconds = 10.0
	tripClassStandard       = 10
	tripClassLongStart      = 20

	// NEC 430.52 Table 430.52: inverse-time breaker at 250% of FLC.
	inverseTimeBreakerMultiplier = 2.5
	// Semiconductor fuses protecting a drive's rectifier are sized tighter.
	semiconductorFuseMultiplier = 1.5

	// Instantaneous pickup rides above the inrush peak and never below 8×FLC.
	instantaneousInrushMargin = 1.1
	instantaneousMinMultiple  = 8.0

	// Ground-fault protection applies to medium-voltage motors only.
	groundFaultVoltageThreshold = 1000.0
	groundFaultMultiplier       = 0.25
	groundFaultDelayMs          = 100.0

	overloadRelayType      = "thermal overload relay"
	inverseTimeBreakerType = "inverse-time circuit breaker"
	semiconductorFuseType  = "semiconductor fuse"
)

// NextStandardSize returns the smallest standard device rating ≥ amps.
// Values past the top of the ladder round up to the next multiple of 100.
func NextStandardSize(amps float64) float64 {
	i := sort.SearchFloat64s(standardSizes, amps)
	if i < len(standardSizes) {
		return standardSizes[i]
	}
	return math.Ceil(amps/100) * 100
}

// SelectProtection sizes the overload relay, the short-circuit device and,
// above 1000 V, ground-fault protection for a motor and its starting method.
func SelectProtection(m model.MotorSpecification, method model.StartingMethodType, flc, startingCurrent, accelerationTime float64) (model.MotorProtection, error) {
	if err := validateRating(m.Horsepower, m.Voltage, m.Phases); err != nil {
		return model.MotorProtection{}, err
	}
	if _, err := CalculatorFor(method); err != nil {
		return model.MotorProtection{}, err
	}
	inputs := []struct {
		name string
		v    float64
	}{
		{"full-load current", flc},
		{"starting current", startingCurrent},
		{"acceleration time", accelerationTime},
	}
	for _, in := range inputs {
		if err := finite("SelectProtection", in.name, in.v); err != nil {
			return model.MotorProtection{}, err
		}
		if in.v < 0 {
			return model.MotorProtection{}, fmt.Errorf("%w: SelectProtection: negative %s %v", ErrCalculation, in.name, in.v)
		}
	}

	setting := flc * overloadMultiplier
	tripClass := tripClassStandard
	if accelerationTime > longAccelerationSeconds {
		tripClass = tripClassLongStart
	}

	scType, scMultiplier := inverseTimeBreakerType, inverseTimeBreakerMultiplier
	if method == model.MethodVFD {
		scType, scMultiplier = semiconductorFuseType, semiconductorFuseMultiplier
	}

	prot := model.MotorProtection{
		OverloadRelay: model.OverloadRelay{
			Type:      overloadRelayType,
			Rating:    NextStandardSize(setting),
			TripClass: tripClass,
			Setting:   setting,
		},
		ShortCircuit: model.ShortCircuitDevice{
			Type:                scType,
			Rating:              NextStandardSize(flc * scMultiplier),
			InstantaneousPickup: math.Max(startingCurrent*instantaneousInrushMargin, flc*instantaneousMinMultiple),
		},
	}
	if m.Voltage > groundFaultVoltageThreshold {
		prot.GroundFault = &model.GroundFaultProtection{
			Enabled: true,
			Setting: flc * groundFaultMultiplier,
			DelayMs: groundFaultDelayMs,
		}
	}
	return prot, nil
}
