package core

import (
	"fmt"

	"github.com/signalsfoundry/motorstart/model"
)

// DefaultMaxVoltageDipPercent is the terminal dip above which a starting
// method is flagged in comparisons.
const DefaultMaxVoltageDipPercent = 15.0

// StartingRequest is everything a starting study needs for one motor.
type StartingRequest struct {
	Motor  model.MotorSpecification
	Method model.StartingMethod
	Source model.SourceImpedance
	Load   model.LoadType
}

// Analyzer chains the individual calculations into a complete starting
// study. It holds only read-only tunables, so one Analyzer can serve any
// number of goroutines.
type Analyzer struct {
	// InertiaTable picks the WK² table for acceleration time.
	InertiaTable InertiaTable

	// MaxVoltageDipPercent is the acceptance limit used by
	// CompareStartingMethods.
	MaxVoltageDipPercent float64
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		InertiaTable:         InertiaAcceleration,
		MaxVoltageDipPercent: DefaultMaxVoltageDipPercent,
	}
}

func (a *Analyzer) inertiaTable() InertiaTable {
	if a == nil || a.InertiaTable == "" {
		return InertiaAcceleration
	}
	return a.InertiaTable
}

func (a *Analyzer) maxDip() float64 {
	if a == nil || a.MaxVoltageDipPercent <= 0 {
		return DefaultMaxVoltageDipPercent
	}
	return a.MaxVoltageDipPercent
}

// AnalyzeStarting runs the starting study:
//  1. full-load and locked-rotor currents,
//  2. starting current and torque for the chosen method,
//  3. voltage dip and acceleration time from (2),
//  4. the I²t thermal check.
func (a *Analyzer) AnalyzeStarting(req StartingRequest) (model.MotorStartingAnalysis, error) {
	if err := ValidateMotor(req.Motor); err != nil {
		return model.MotorStartingAnalysis{}, err
	}
	if err := ValidateLoadType(req.Load); err != nil {
		return model.MotorStartingAnalysis{}, err
	}
	if err := ValidateStartingMethod(req.Method); err != nil {
		return model.MotorStartingAnalysis{}, err
	}

	flc, err := FullLoadCurrent(req.Motor.Horsepower, req.Motor.Voltage, req.Motor.Phases)
	if err != nil {
		return model.MotorStartingAnalysis{}, err
	}
	lrc, err := LockedRotorCurrent(req.Motor)
	if err != nil {
		return model.MotorStartingAnalysis{}, err
	}
	start, err := AnalyzeStartingMethod(req.Method, lrc, flc.Amperes)
	if err != nil {
		return model.MotorStartingAnalysis{}, err
	}
	dip, err := VoltageDip(start.Current, flc.Amperes, req.Source)
	if err != nil {
		return model.MotorStartingAnalysis{}, err
	}
	accel, avgTorque, err := AccelerationTime(a.inertiaTable(), req.Motor, req.Load, start.TorquePercent)
	if err != nil {
		return model.MotorStartingAnalysis{}, err
	}
	thermalOK, allowable, err := CheckThermalLimit(start.Current, flc.Amperes, accel)
	if err != nil {
		return model.MotorStartingAnalysis{}, err
	}

	return model.MotorStartingAnalysis{
		Motor:              req.Motor,
		Method:             req.Method,
		Load:               req.Load,
		FullLoadCurrent:    flc,
		LockedRotorCurrent: lrc,
		StartingCurrent:    start.Current,
		StartingTime:       accel,
		StartingTorque:     start.TorquePercent,
		VoltageDip:         dip,
		AccelerationTorque: avgTorque,
		AllowableStallTime: allowable,
		ThermalLimitOK:     thermalOK,
	}, nil
}

// SelectProtection sizes protective devices from a finished analysis.
func (a *Analyzer) SelectProtection(an model.MotorStartingAnalysis) (model.MotorProtection, error) {
	return SelectProtection(an.Motor, an.Method.Type, an.FullLoadCurrent.Amperes, an.StartingCurrent, an.StartingTime)
}

// CompareStartingMethods analyses the motor with every starting method in
// declaration order. A method is acceptable when it passes the thermal check
// and keeps the dip within MaxVoltageDipPercent. The recommendation is the
// acceptable method with the lowest starting current; ties keep the earlier
// method. Settings from req.Method are passed to every variant.
func (a *Analyzer) CompareStartingMethods(req StartingRequest) (model.MethodComparison, error) {
	var out model.MethodComparison
	best := -1
	for _, t := range model.StartingMethodTypes {
		r := req
		r.Method = model.StartingMethod{Type: t, Settings: req.Method.Settings}
		an, err := a.AnalyzeStarting(r)
		if err != nil {
			return model.MethodComparison{}, fmt.Errorf("compare %s: %w", t, err)
		}

		oc := model.MethodOutcome{Analysis: an, Acceptable: true}
		switch {
		case !an.ThermalLimitOK:
			oc.Acceptable = false
			oc.Reason = fmt.Sprintf("acceleration %.1fs exceeds thermal withstand %.1fs", an.StartingTime, an.AllowableStallTime)
		case an.VoltageDip > a.maxDip():
			oc.Acceptable = false
			oc.Reason = fmt.Sprintf("voltage dip %.1f%% exceeds %.1f%%", an.VoltageDip, a.maxDip())
		}
		out.Outcomes = append(out.Outcomes, oc)

		if oc.Acceptable && (best < 0 || an.StartingCurrent < out.Outcomes[best].Analysis.StartingCurrent) {
			best = len(out.Outcomes) - 1
		}
	}
	if best >= 0 {
		out.Recommended = out.Outcomes[best].Analysis.Method.Type
	}
	return out, nil
}
