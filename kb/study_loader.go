package kb

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/motorstart/model"
)

// Format is the encoding of a study document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the document format from a file extension. Anything
// that is not .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

const (
	defaultAmbientTempC      = 30.0
	defaultTargetPowerFactor = 0.95
)

// Study is a named set of motors fed from one source.
type Study struct {
	Name    string
	Source  model.SourceImpedance
	Catalog *MotorCatalog
}

type loadOptions struct {
	ambientTempC      float64
	targetPowerFactor float64
}

// LoadOption tunes fallbacks for fields the document leaves out.
type LoadOption func(*loadOptions)

// WithDefaultAmbient sets the ambient temperature used when neither the
// motor nor the document defaults give one.
func WithDefaultAmbient(c float64) LoadOption {
	return func(o *loadOptions) { o.ambientTempC = c }
}

// WithDefaultTargetPowerFactor sets the correction target used when neither
// the motor nor the document defaults give one.
func WithDefaultTargetPowerFactor(pf float64) LoadOption {
	return func(o *loadOptions) { o.targetPowerFactor = pf }
}

// internal document shapes; kept unexported so the file format can evolve
// independently of Entry.
type studyDoc struct {
	Name     string       `json:"name" yaml:"name"`
	Source   sourceDoc    `json:"source" yaml:"source"`
	Defaults defaultsDoc  `json:"defaults" yaml:"defaults"`
	Motors   []motorEntry `json:"motors" yaml:"motors"`
}

type sourceDoc struct {
	R float64 `json:"r" yaml:"r"`
	X float64 `json:"x" yaml:"x"`
}

type defaultsDoc struct {
	Load              string     `json:"load" yaml:"load"`
	Method            *methodDoc `json:"method" yaml:"method"`
	Circuit           circuitDoc `json:"circuit" yaml:"circuit"`
	TargetPowerFactor *float64   `json:"targetPowerFactor" yaml:"targetPowerFactor"`
}

type motorEntry struct {
	ID                string     `json:"id" yaml:"id"`
	Name              string     `json:"name" yaml:"name"`
	HP                float64    `json:"hp" yaml:"hp"`
	Voltage           float64    `json:"voltage" yaml:"voltage"`
	Phases            int        `json:"phases" yaml:"phases"`
	Frequency         float64    `json:"frequency" yaml:"frequency"`
	Poles             int        `json:"poles" yaml:"poles"`
	RPM               float64    `json:"rpm" yaml:"rpm"`
	Efficiency        float64    `json:"efficiency" yaml:"efficiency"`
	PowerFactor       float64    `json:"powerFactor" yaml:"powerFactor"`
	ServiceFactor     float64    `json:"serviceFactor" yaml:"serviceFactor"`
	Enclosure         string     `json:"enclosure" yaml:"enclosure"`
	Insulation        string     `json:"insulation" yaml:"insulation"`
	Design            string     `json:"design" yaml:"design"`
	Code              string     `json:"code" yaml:"code"`
	Load              string     `json:"load" yaml:"load"`
	Method            *methodDoc `json:"method" yaml:"method"`
	Circuit           circuitDoc `json:"circuit" yaml:"circuit"`
	TargetPowerFactor *float64   `json:"targetPowerFactor" yaml:"targetPowerFactor"`
}

type methodDoc struct {
	Type            string   `json:"type" yaml:"type"`
	TapSetting      *float64 `json:"tapSetting" yaml:"tapSetting"`
	RampTime        float64  `json:"rampTime" yaml:"rampTime"`
	InitialVoltage  *float64 `json:"initialVoltage" yaml:"initialVoltage"`
	ResistanceSteps int      `json:"resistanceSteps" yaml:"resistanceSteps"`
}

type circuitDoc struct {
	LengthFt     *float64 `json:"lengthFt" yaml:"lengthFt"`
	AmbientTempC *float64 `json:"ambientTempC" yaml:"ambientTempC"`
	Conduit      string   `json:"conduit" yaml:"conduit"`
}

// LoadStudyFile opens path and decodes it with LoadStudy, choosing the
// format from the extension.
func LoadStudyFile(path string, opts ...LoadOption) (*Study, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadStudyFile: %w", err)
	}
	defer f.Close()
	return LoadStudy(f, FormatFromPath(path), opts...)
}

// LoadStudy decodes a study document and populates a fresh catalog.
//
// Only structural problems fail the load: bad encodings, missing or
// duplicate IDs, and unknown load or method names. Nameplate values are
// checked later by the engine so one bad motor does not hide the rest.
func LoadStudy(r io.Reader, format Format, opts ...LoadOption) (*Study, error) {
	o := loadOptions{
		ambientTempC:      defaultAmbientTempC,
		targetPowerFactor: defaultTargetPowerFactor,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var doc studyDoc
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("LoadStudy: decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("LoadStudy: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("LoadStudy: unknown format %q", format)
	}

	study := &Study{
		Name:    doc.Name,
		Source:  model.SourceImpedance{R: doc.Source.R, X: doc.Source.X},
		Catalog: NewMotorCatalog(),
	}
	for i, me := range doc.Motors {
		e, err := me.toEntry(doc.Defaults, o)
		if err != nil {
			return nil, fmt.Errorf("LoadStudy: motor %d: %w", i, err)
		}
		if err := study.Catalog.Add(e); err != nil {
			return nil, fmt.Errorf("LoadStudy: motor %d: %w", i, err)
		}
	}
	return study, nil
}

func (me motorEntry) toEntry(def defaultsDoc, o loadOptions) (Entry, error) {
	if strings.TrimSpace(me.ID) == "" {
		return Entry{}, fmt.Errorf("%w: empty id", ErrInvalidEntry)
	}

	loadName := me.Load
	if loadName == "" {
		loadName = def.Load
	}
	load, err := model.ParseLoadType(loadName)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %s: %v", ErrInvalidEntry, me.ID, err)
	}

	md := me.Method
	if md == nil {
		md = def.Method
	}
	method := model.StartingMethod{Type: model.MethodAcrossTheLine}
	if md != nil {
		if method, err = md.toMethod(); err != nil {
			return Entry{}, fmt.Errorf("%w: %s: %v", ErrInvalidEntry, me.ID, err)
		}
	}

	conduit := strings.ToLower(firstNonEmpty(me.Circuit.Conduit, def.Circuit.Conduit))

	return Entry{
		ID:   me.ID,
		Name: me.Name,
		Motor: model.MotorSpecification{
			Horsepower:    me.HP,
			Voltage:       me.Voltage,
			Phases:        me.Phases,
			FrequencyHz:   me.Frequency,
			Poles:         me.Poles,
			RPM:           me.RPM,
			Efficiency:    me.Efficiency,
			PowerFactor:   me.PowerFactor,
			ServiceFactor: me.ServiceFactor,
			Enclosure:     model.EnclosureType(strings.ToUpper(me.Enclosure)),
			Insulation:    model.InsulationClass(strings.ToUpper(me.Insulation)),
			Design:        model.NEMADesign(strings.ToUpper(me.Design)),
			// Unknown letters are kept; the engine treats them as G.
			Code: model.CodeLetter(strings.ToUpper(strings.TrimSpace(me.Code))),
		},
		Load:   load,
		Method: method,
		Run: model.CircuitRun{
			LengthFt:     firstSet(0, me.Circuit.LengthFt, def.Circuit.LengthFt),
			AmbientTempC: firstSet(o.ambientTempC, me.Circuit.AmbientTempC, def.Circuit.AmbientTempC),
			Conduit:      model.ConduitMaterial(conduit),
		},
		TargetPowerFactor: firstSet(o.targetPowerFactor, me.TargetPowerFactor, def.TargetPowerFactor),
	}, nil
}

func (md methodDoc) toMethod() (model.StartingMethod, error) {
	t, err := model.ParseStartingMethodType(md.Type)
	if err != nil {
		return model.StartingMethod{}, err
	}
	return model.StartingMethod{
		Type: t,
		Settings: model.StartingSettings{
			TapPercent:            md.TapSetting,
			RampTimeSeconds:       md.RampTime,
			InitialVoltagePercent: md.InitialVoltage,
			ResistanceSteps:       md.ResistanceSteps,
		},
	}, nil
}

func firstSet(fallback float64, vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return fallback
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
