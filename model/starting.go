package model

import (
	"fmt"
	"strings"
)

// StartingMethodType is the closed set of motor starting technologies.
type StartingMethodType string

const (
	MethodAcrossTheLine   StartingMethodType = "acrossTheLine"
	MethodStarDelta       StartingMethodType = "starDelta"
	MethodAutotransformer StartingMethodType = "autotransformer"
	MethodSoftStarter     StartingMethodType = "softStarter"
	MethodVFD             StartingMethodType = "vfd"
	MethodResistor        StartingMethodType = "resistor"
	MethodPartWinding     StartingMethodType = "partWinding"
	MethodReducedVoltage  StartingMethodType = "reducedVoltage"
)

// StartingMethodTypes lists every method in declaration order. Comparisons
// iterate in this order so their output is stable.
var StartingMethodTypes = []StartingMethodType{
	MethodAcrossTheLine,
	MethodStarDelta,
	MethodAutotransformer,
	MethodSoftStarter,
	MethodVFD,
	MethodResistor,
	MethodPartWinding,
	MethodReducedVoltage,
}

// ParseStartingMethodType accepts the canonical camelCase names as well as
// common spellings such as "DOL", "star-delta" or "soft_starter".
func ParseStartingMethodType(s string) (StartingMethodType, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	switch key {
	case "acrosstheline", "dol", "directonline", "fullvoltage":
		return MethodAcrossTheLine, nil
	case "stardelta", "wyedelta":
		return MethodStarDelta, nil
	case "autotransformer":
		return MethodAutotransformer, nil
	case "softstarter", "softstart":
		return MethodSoftStarter, nil
	case "vfd", "vsd", "variablefrequencydrive":
		return MethodVFD, nil
	case "resistor", "primaryresistor":
		return MethodResistor, nil
	case "partwinding":
		return MethodPartWinding, nil
	case "reducedvoltage":
		return MethodReducedVoltage, nil
	}
	return "", fmt.Errorf("unknown starting method %q", s)
}

// StartingSettings carries the method-specific knobs. Each field is only
// read by the variant it belongs to. Pointers distinguish unset (nil, use
// the default) from an explicit value.
type StartingSettings struct {
	// TapPercent is the autotransformer tap, percent of line voltage.
	TapPercent *float64 `json:"tapSetting,omitempty" yaml:"tapSetting,omitempty"`
	// RampTimeSeconds is the soft-starter or VFD acceleration ramp.
	RampTimeSeconds float64 `json:"rampTime,omitempty" yaml:"rampTime,omitempty"`
	// InitialVoltagePercent is the soft-starter pedestal voltage.
	InitialVoltagePercent *float64 `json:"initialVoltage,omitempty" yaml:"initialVoltage,omitempty"`
	// ResistanceSteps is the number of primary-resistor steps.
	ResistanceSteps int `json:"resistanceSteps,omitempty" yaml:"resistanceSteps,omitempty"`
}

// StartingMethod is the tagged variant selecting a starting technology.
type StartingMethod struct {
	Type     StartingMethodType `json:"type" yaml:"type"`
	Settings StartingSettings   `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Percent is a convenience for building StartingSettings literals.
func Percent(v float64) *float64 { return &v }
