package study

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/signalsfoundry/motorstart/model"
)

// MotorResult is everything computed for one motor. Pointers are nil for
// steps that did not run because an earlier step failed.
type MotorResult struct {
	ID          string                       `json:"id"`
	Name        string                       `json:"name,omitempty"`
	Analysis    *model.MotorStartingAnalysis `json:"analysis,omitempty"`
	Protection  *model.MotorProtection       `json:"protection,omitempty"`
	Conductor   *model.ConductorSizing       `json:"conductor,omitempty"`
	PowerFactor *model.PowerFactorCorrection `json:"powerFactorCorrection,omitempty"`
	Error       string                       `json:"error,omitempty"`
}

// Failed reports whether any calculation for the motor returned an error.
func (m MotorResult) Failed() bool { return m.Error != "" }

// Report is the outcome of one study run. Results are ordered by motor ID.
type Report struct {
	RunID   string        `json:"runId"`
	Study   string        `json:"study"`
	Results []MotorResult `json:"results"`
	Summary Summary       `json:"summary"`
}

// Summary aggregates the analysed motors of a report.
type Summary struct {
	Motors          int `json:"motors"`
	Analysed        int `json:"analysed"`
	Failed          int `json:"failed"`
	ThermalFailures int `json:"thermalFailures"`
	EstimatedFLC    int `json:"estimatedFlc"`

	// Unhealthy counts motors that failed a calculation or the thermal
	// check, each motor once.
	Unhealthy int `json:"unhealthy"`

	MeanVoltageDip     float64 `json:"meanVoltageDip"`
	MaxVoltageDip      float64 `json:"maxVoltageDip"`
	MeanStartingTime   float64 `json:"meanStartingTime"`
	MaxStartingTime    float64 `json:"maxStartingTime"`
	TotalCapacitorKVAR float64 `json:"totalCapacitorKvar"`
}

// Summarize computes the report summary. Statistics cover only motors whose
// starting analysis succeeded.
func Summarize(results []MotorResult) Summary {
	s := Summary{Motors: len(results)}
	var dips, times, caps []float64
	for _, r := range results {
		if r.Failed() {
			s.Failed++
		}
		if r.Failed() || (r.Analysis != nil && !r.Analysis.ThermalLimitOK) {
			s.Unhealthy++
		}
		if r.Analysis == nil {
			continue
		}
		s.Analysed++
		if !r.Analysis.ThermalLimitOK {
			s.ThermalFailures++
		}
		if r.Analysis.FullLoadCurrent.Estimated() {
			s.EstimatedFLC++
		}
		dips = append(dips, r.Analysis.VoltageDip)
		times = append(times, r.Analysis.StartingTime)
		if r.PowerFactor != nil {
			caps = append(caps, r.PowerFactor.CapacitorSize)
		}
	}
	if len(dips) > 0 {
		s.MeanVoltageDip = stat.Mean(dips, nil)
		s.MaxVoltageDip = floats.Max(dips)
		s.MeanStartingTime = stat.Mean(times, nil)
		s.MaxStartingTime = floats.Max(times)
	}
	s.TotalCapacitorKVAR = floats.Sum(caps)
	return s
}
