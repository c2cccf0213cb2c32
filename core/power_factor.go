package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/signalsfoundry/motorstart/model"
)

const (
	// DefaultTargetPowerFactor is the usual utility penalty threshold.
	DefaultTargetPowerFactor = 0.95

	kwPerHP = 0.746

	// Capacitors beyond the stock list are built up in 5 kVAR steps.
	capacitorStepKVAR = 5.0
)

// NextCapacitorSize returns the smallest stock capacitor ≥ kvar, or the next
// multiple of 5 kVAR above the list. Zero or negative demand needs none.
func NextCapacitorSize(kvar float64) float64 {
	if kvar <= 0 {
		return 0
	}
	i := sort.SearchFloat64s(standardCapacitorSizes, kvar)
	if i < len(standardCapacitorSizes) {
		return standardCapacitorSizes[i]
	}
	return math.Ceil(kvar/capacitorStepKVAR) * capacitorStepKVAR
}

// PowerFactorCorrection sizes the capacitor that lifts the motor from its
// nameplate power factor to target:
//
//	kW   = hp·0.746 / efficiency
//	kVAR = kW·(tan(acos pf) − tan(acos target))
//
// A target at or below the nameplate value needs no correction.
func PowerFactorCorrection(m model.MotorSpecification, target float64) (model.PowerFactorCorrection, error) {
	if err := validateRating(m.Horsepower, m.Voltage, m.Phases); err != nil {
		return model.PowerFactorCorrection{}, err
	}
	if !(m.Efficiency > 0) || m.Efficiency > 1 {
		return model.PowerFactorCorrection{}, fmt.Errorf("%w: efficiency must be in (0,1], got %v", ErrInvalidMotorSpecification, m.Efficiency)
	}
	if err := validatePowerFactor(m.PowerFactor); err != nil {
		return model.PowerFactorCorrection{}, err
	}
	if !(target > 0) || target > 1 {
		return model.PowerFactorCorrection{}, fmt.Errorf("%w: must be in (0,1], got %v", ErrInvalidPowerFactorTarget, target)
	}

	kw := m.Horsepower * kwPerHP / m.Efficiency
	kvar := kw * (math.Tan(math.Acos(m.PowerFactor)) - math.Tan(math.Acos(target)))
	if err := finite("PowerFactorCorrection", "kvar", kvar); err != nil {
		return model.PowerFactorCorrection{}, err
	}

	out := model.PowerFactorCorrection{TargetPowerFactor: target}
	if kvar <= 0 {
		return out, nil
	}
	out.KVAR = kvar
	out.CapacitorSize = NextCapacitorSize(kvar)
	out.ImprovementPercent = (target - m.PowerFactor) / m.PowerFactor * 100
	return out, nil
}
