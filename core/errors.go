package core

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidMotorSpecification = errors.New("invalid motor specification")
	ErrInvalidStartingSettings   = errors.New("invalid starting method settings")
	ErrUnknownStartingMethod     = errors.New("unknown starting method")
	ErrInvalidLoadType           = errors.New("invalid load type")
	ErrInvalidSourceImpedance    = errors.New("invalid source impedance")
	ErrInvalidCircuit            = errors.New("invalid circuit run")
	ErrInvalidPowerFactorTarget  = errors.New("invalid target power factor")
	ErrCalculation               = errors.New("calculation error")
)

// CalculationError reports an intermediate quantity that came out NaN or
// infinite. It matches ErrCalculation under errors.Is.
type CalculationError struct {
	Op       string
	Quantity string
	Value    float64
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("%s: %s: %s is not finite (%v)", ErrCalculation, e.Op, e.Quantity, e.Value)
}

func (e *CalculationError) Unwrap() error { return ErrCalculation }

// finite returns a CalculationError when v is NaN or ±Inf.
func finite(op, quantity string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &CalculationError{Op: op, Quantity: quantity, Value: v}
	}
	return nil
}
