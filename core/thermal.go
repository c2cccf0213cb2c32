package core

const (
	// A motor is assumed to survive 6× full-load current for 10 seconds;
	// other currents scale by I²t.
	thermalReferenceMultiple = 6.0
	thermalReferenceSeconds  = 10.0
)

// AllowableStallTime returns the seconds a motor may carry ratio × FLC:
// 10·(6/ratio)².
func AllowableStallTime(ratio float64) (float64, error) {
	if err := finite("AllowableStallTime", "current ratio", ratio); err != nil {
		return 0, err
	}
	if !(ratio > 0) {
		return 0, &CalculationError{Op: "AllowableStallTime", Quantity: "current ratio", Value: ratio}
	}
	k := thermalReferenceMultiple / ratio
	return thermalReferenceSeconds * k * k, nil
}

// CheckThermalLimit reports whether the motor survives accelerating for
// accelerationTime seconds at startingCurrent. It passes only when the
// acceleration is strictly shorter than the I²t withstand time, which is
// also returned.
func CheckThermalLimit(startingCurrent, flc, accelerationTime float64) (ok bool, allowable float64, err error) {
	ratio := startingCurrent / flc
	if err := finite("CheckThermalLimit", "current ratio", ratio); err != nil {
		return false, 0, err
	}
	allowable, err = AllowableStallTime(ratio)
	if err != nil {
		return false, 0, err
	}
	return accelerationTime < allowable, allowable, nil
}
