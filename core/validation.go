package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/motorstart/model"
)

// ValidateMotor checks the nameplate invariants every calculation relies on.
// Comparisons are written as !(x > 0) so NaN is rejected too.
func ValidateMotor(m model.MotorSpecification) error {
	if err := validateRating(m.Horsepower, m.Voltage, m.Phases); err != nil {
		return err
	}
	if !(m.RPM > 0) || math.IsInf(m.RPM, 0) {
		return fmt.Errorf("%w: rpm must be > 0, got %v", ErrInvalidMotorSpecification, m.RPM)
	}
	if !(m.Efficiency > 0) || m.Efficiency > 1 {
		return fmt.Errorf("%w: efficiency must be in (0,1], got %v", ErrInvalidMotorSpecification, m.Efficiency)
	}
	if err := validatePowerFactor(m.PowerFactor); err != nil {
		return err
	}
	if m.ServiceFactor < 0 {
		return fmt.Errorf("%w: service factor must not be negative, got %v", ErrInvalidMotorSpecification, m.ServiceFactor)
	}
	return nil
}

func validateRating(hp, voltage float64, phases int) error {
	if !(hp > 0) || math.IsInf(hp, 0) {
		return fmt.Errorf("%w: hp must be > 0, got %v", ErrInvalidMotorSpecification, hp)
	}
	if !(voltage > 0) || math.IsInf(voltage, 0) {
		return fmt.Errorf("%w: voltage must be > 0, got %v", ErrInvalidMotorSpecification, voltage)
	}
	if phases != 1 && phases != 3 {
		return fmt.Errorf("%w: phases must be 1 or 3, got %d", ErrInvalidMotorSpecification, phases)
	}
	return nil
}

func validatePowerFactor(pf float64) error {
	if !(pf > 0) || pf > 1 {
		return fmt.Errorf("%w: power factor must be in (0,1], got %v", ErrInvalidMotorSpecification, pf)
	}
	return nil
}

// ValidateStartingMethod checks that the method is known and that the
// settings it reads are physically meaningful. Settings belonging to other
// variants are ignored.
func ValidateStartingMethod(sm model.StartingMethod) error {
	if _, ok := startingCalculators[sm.Type]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStartingMethod, sm.Type)
	}
	s := sm.Settings
	switch sm.Type {
	case model.MethodAutotransformer:
		return validatePercent("tapSetting", s.TapPercent)
	case model.MethodSoftStarter:
		if err := validatePercent("initialVoltage", s.InitialVoltagePercent); err != nil {
			return err
		}
		if s.RampTimeSeconds < 0 || math.IsNaN(s.RampTimeSeconds) {
			return fmt.Errorf("%w: rampTime must not be negative, got %v", ErrInvalidStartingSettings, s.RampTimeSeconds)
		}
	case model.MethodResistor:
		if s.ResistanceSteps < 0 {
			return fmt.Errorf("%w: resistanceSteps must not be negative, got %d", ErrInvalidStartingSettings, s.ResistanceSteps)
		}
	}
	return nil
}

func validatePercent(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if !(*v > 0) || *v > 100 {
		return fmt.Errorf("%w: %s must be in (0,100], got %v", ErrInvalidStartingSettings, name, *v)
	}
	return nil
}

// ValidateLoadType rejects loads with no inertia or torque-curve entry.
func ValidateLoadType(lt model.LoadType) error {
	if _, ok := loadTorqueCurves[lt]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLoadType, lt)
	}
	return nil
}

// ValidateSourceImpedance requires non-negative, finite per-unit values.
func ValidateSourceImpedance(z model.SourceImpedance) error {
	if z.R < 0 || z.X < 0 || math.IsNaN(z.R) || math.IsNaN(z.X) || math.IsInf(z.R, 0) || math.IsInf(z.X, 0) {
		return fmt.Errorf("%w: r and x must be finite and >= 0, got r=%v x=%v", ErrInvalidSourceImpedance, z.R, z.X)
	}
	return nil
}

// ValidateCircuit checks a branch-circuit description.
func ValidateCircuit(run model.CircuitRun) error {
	if run.LengthFt < 0 || math.IsNaN(run.LengthFt) || math.IsInf(run.LengthFt, 0) {
		return fmt.Errorf("%w: length must be finite and >= 0, got %v", ErrInvalidCircuit, run.LengthFt)
	}
	if math.IsNaN(run.AmbientTempC) || math.IsInf(run.AmbientTempC, 0) {
		return fmt.Errorf("%w: ambient temperature must be finite, got %v", ErrInvalidCircuit, run.AmbientTempC)
	}
	switch run.Conduit {
	case "", model.ConduitPVC, model.ConduitAluminum, model.ConduitSteel:
	default:
		return fmt.Errorf("%w: unknown conduit material %q", ErrInvalidCircuit, run.Conduit)
	}
	return nil
}
