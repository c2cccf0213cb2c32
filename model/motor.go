package model

import (
	"fmt"
	"strings"
)

// CodeLetter is the NEMA locked-rotor code letter (A through V) stamped on
// the nameplate. It encodes locked-rotor kVA per horsepower.
type CodeLetter string

// NEMADesign is the NEMA torque/current design letter (A, B, C, D).
type NEMADesign string

const (
	DesignA NEMADesign = "A"
	DesignB NEMADesign = "B" // general purpose; the engine's torque baseline
	DesignC NEMADesign = "C"
	DesignD NEMADesign = "D"
)

// InsulationClass is the winding insulation temperature class.
type InsulationClass string

const (
	InsulationA InsulationClass = "A"
	InsulationB InsulationClass = "B"
	InsulationF InsulationClass = "F"
	InsulationH InsulationClass = "H"
)

// EnclosureType is the motor enclosure.
type EnclosureType string

const (
	EnclosureODP  EnclosureType = "ODP"  // open drip-proof
	EnclosureTEFC EnclosureType = "TEFC" // totally enclosed fan-cooled
	EnclosureTENV EnclosureType = "TENV" // totally enclosed non-ventilated
	EnclosureXP   EnclosureType = "XP"   // explosion-proof
)

// MotorSpecification is the nameplate description of one induction motor.
// It is a value object: construct one per calculation and never mutate it.
type MotorSpecification struct {
	Horsepower    float64         `json:"hp" yaml:"hp"`
	Voltage       float64         `json:"voltage" yaml:"voltage"`
	Phases        int             `json:"phases" yaml:"phases"`
	FrequencyHz   float64         `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Poles         int             `json:"poles,omitempty" yaml:"poles,omitempty"`
	RPM           float64         `json:"rpm" yaml:"rpm"`
	Efficiency    float64         `json:"efficiency" yaml:"efficiency"`
	PowerFactor   float64         `json:"powerFactor" yaml:"powerFactor"`
	ServiceFactor float64         `json:"serviceFactor,omitempty" yaml:"serviceFactor,omitempty"`
	Enclosure     EnclosureType   `json:"enclosure,omitempty" yaml:"enclosure,omitempty"`
	Insulation    InsulationClass `json:"insulation,omitempty" yaml:"insulation,omitempty"`
	Design        NEMADesign      `json:"design,omitempty" yaml:"design,omitempty"`
	Code          CodeLetter      `json:"code,omitempty" yaml:"code,omitempty"`
}

// IsThreePhase reports whether the motor is fed from a three-phase supply.
func (m MotorSpecification) IsThreePhase() bool { return m.Phases == 3 }

// LoadType identifies the driven load. It selects the inertia constant and
// the shape of the load-torque curve.
type LoadType string

const (
	LoadFan        LoadType = "fan"
	LoadPump       LoadType = "pump"
	LoadCompressor LoadType = "compressor"
	LoadConveyor   LoadType = "conveyor"
	LoadCrusher    LoadType = "crusher"
)

// LoadTypes lists every supported load in declaration order.
var LoadTypes = []LoadType{LoadFan, LoadPump, LoadCompressor, LoadConveyor, LoadCrusher}

// ParseLoadType maps a case-insensitive name onto a LoadType.
func ParseLoadType(s string) (LoadType, error) {
	v := LoadType(strings.ToLower(strings.TrimSpace(s)))
	for _, lt := range LoadTypes {
		if lt == v {
			return lt, nil
		}
	}
	return "", fmt.Errorf("unknown load type %q", s)
}

// TorqueCurve is the load-torque vs. speed characteristic.
type TorqueCurve int

const (
	CurveQuadratic TorqueCurve = iota // centrifugal: fans and pumps
	CurveLinear                       // conveyors
	CurveConstant                     // compressors, crushers
)

func (c TorqueCurve) String() string {
	switch c {
	case CurveQuadratic:
		return "quadratic"
	case CurveLinear:
		return "linear"
	case CurveConstant:
		return "constant"
	default:
		return "unknown"
	}
}

// SourceImpedance is the upstream utility/transformer impedance in per-unit
// on the motor's voltage base.
type SourceImpedance struct {
	R float64 `json:"r" yaml:"r"`
	X float64 `json:"x" yaml:"x"`
}

// ConduitMaterial is the raceway the branch-circuit conductors run in.
type ConduitMaterial string

const (
	ConduitPVC      ConduitMaterial = "pvc"
	ConduitAluminum ConduitMaterial = "aluminum"
	ConduitSteel    ConduitMaterial = "steel"
)

// CircuitRun describes the branch circuit feeding a motor.
type CircuitRun struct {
	LengthFt     float64         `json:"lengthFt" yaml:"lengthFt"`
	AmbientTempC float64         `json:"ambientTempC" yaml:"ambientTempC"`
	Conduit      ConduitMaterial `json:"conduit,omitempty" yaml:"conduit,omitempty"`
}
