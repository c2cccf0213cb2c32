package model

// CurrentSource records where a full-load current came from.
type CurrentSource string

const (
	// SourceTabulated means the value is the NEC table figure, exact.
	SourceTabulated CurrentSource = "tabulated"
	// SourceEstimated means the table missed and the value was derived
	// from assumed efficiency and power factor.
	SourceEstimated CurrentSource = "estimated"
)

// FullLoadCurrent is a full-load current tagged with its provenance.
// AssumedEfficiency and AssumedPowerFactor are only set for estimates.
type FullLoadCurrent struct {
	Amperes            float64       `json:"amperes"`
	Source             CurrentSource `json:"source"`
	AssumedEfficiency  float64       `json:"assumedEfficiency,omitempty"`
	AssumedPowerFactor float64       `json:"assumedPowerFactor,omitempty"`
}

// Estimated reports whether the value is an analytic approximation.
func (f FullLoadCurrent) Estimated() bool { return f.Source == SourceEstimated }

// MotorStartingAnalysis is the result of one starting study. Currents are in
// amperes, torques in percent of full-load torque, times in seconds.
type MotorStartingAnalysis struct {
	Motor              MotorSpecification `json:"motor"`
	Method             StartingMethod     `json:"method"`
	Load               LoadType           `json:"load"`
	FullLoadCurrent    FullLoadCurrent    `json:"fullLoadCurrent"`
	LockedRotorCurrent float64            `json:"lockedRotorCurrent"`
	StartingCurrent    float64            `json:"startingCurrent"`
	StartingTime       float64            `json:"startingTime"`
	StartingTorque     float64            `json:"startingTorque"`
	VoltageDip         float64            `json:"voltageDip"`
	AccelerationTorque float64            `json:"accelerationTorque"`
	AllowableStallTime float64            `json:"allowableStallTime"`
	ThermalLimitOK     bool               `json:"thermalLimitOk"`
}

// OverloadRelay is the running-overcurrent protection.
type OverloadRelay struct {
	Type      string  `json:"type"`
	Rating    float64 `json:"rating"`
	TripClass int     `json:"tripClass"`
	Setting   float64 `json:"setting"`
}

// ShortCircuitDevice is the branch-circuit short-circuit and ground-fault
// protective device.
type ShortCircuitDevice struct {
	Type                string  `json:"type"`
	Rating              float64 `json:"rating"`
	InstantaneousPickup float64 `json:"instantaneousPickup"`
}

// GroundFaultProtection is only present on medium-voltage motors.
type GroundFaultProtection struct {
	Enabled bool    `json:"enabled"`
	Setting float64 `json:"setting"`
	DelayMs float64 `json:"delayMs"`
}

// MotorProtection bundles the selected protective devices.
type MotorProtection struct {
	OverloadRelay OverloadRelay          `json:"overloadRelay"`
	ShortCircuit  ShortCircuitDevice     `json:"shortCircuit"`
	GroundFault   *GroundFaultProtection `json:"groundFault,omitempty"`
}

// ConductorSizing is the selected branch-circuit conductor.
type ConductorSizing struct {
	Size               string          `json:"size"`
	Ampacity           float64         `json:"ampacity"`
	RequiredAmpacity   float64         `json:"requiredAmpacity"`
	VoltageDropPercent float64         `json:"voltageDropPercent"`
	Conduit            ConduitMaterial `json:"conduit,omitempty"`
	Undersized         bool            `json:"undersized,omitempty"`
}

// PowerFactorCorrection is the capacitor needed to reach a target PF.
type PowerFactorCorrection struct {
	KVAR               float64 `json:"kvar"`
	CapacitorSize      float64 `json:"capacitorSize"`
	ImprovementPercent float64 `json:"improvementPercent"`
	TargetPowerFactor  float64 `json:"targetPowerFactor"`
}

// MethodOutcome is one row of a starting-method comparison.
type MethodOutcome struct {
	Analysis   MotorStartingAnalysis `json:"analysis"`
	Acceptable bool                  `json:"acceptable"`
	Reason     string                `json:"reason,omitempty"`
}

// MethodComparison evaluates every starting method for one motor.
type MethodComparison struct {
	Outcomes    []MethodOutcome    `json:"outcomes"`
	Recommended StartingMethodType `json:"recommended,omitempty"`
}
