// Package report renders study results for people: aligned text tables for
// the terminal, JSON for tooling and an HTML chart page for comparisons.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gosuri/uitable"

	"github.com/signalsfoundry/motorstart/internal/study"
	"github.com/signalsfoundry/motorstart/model"
)

const maxColWidth = 60

func newTable() *uitable.Table {
	t := uitable.New()
	t.MaxColWidth = maxColWidth
	t.Wrap = true
	return t
}

func fmtFloat(v float64, prec int) string {
	return fmt.Sprintf("%.*f", prec, v)
}

func passFail(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAIL"
}

// WriteTable writes one row per motor followed by the study summary.
func WriteTable(w io.Writer, rep *study.Report) error {
	if rep == nil {
		return fmt.Errorf("report: nil report")
	}
	t := newTable()
	t.AddRow("MOTOR", "METHOD", "FLC (A)", "START (A)", "DIP (%)", "TIME (s)", "THERMAL", "OL (A)", "SCPD", "WIRE", "CAP (kVAR)", "ERROR")
	for _, r := range rep.Results {
		if r.Analysis == nil {
			t.AddRow(r.ID, "-", "-", "-", "-", "-", "-", "-", "-", "-", "-", r.Error)
			continue
		}
		an := r.Analysis
		flc := fmtFloat(an.FullLoadCurrent.Amperes, 1)
		if an.FullLoadCurrent.Estimated() {
			flc += "*"
		}
		ol, scpd, wire, capacitor := "-", "-", "-", "-"
		if p := r.Protection; p != nil {
			ol = fmtFloat(p.OverloadRelay.Rating, 0)
			scpd = fmt.Sprintf("%s %s", p.ShortCircuit.Type, fmtFloat(p.ShortCircuit.Rating, 0))
		}
		if c := r.Conductor; c != nil {
			wire = c.Size
			if c.Undersized {
				wire += "!"
			}
		}
		if pf := r.PowerFactor; pf != nil {
			capacitor = fmtFloat(pf.CapacitorSize, 1)
		}
		t.AddRow(
			r.ID,
			string(an.Method.Type),
			flc,
			fmtFloat(an.StartingCurrent, 1),
			fmtFloat(an.VoltageDip, 2),
			fmtFloat(an.StartingTime, 2),
			passFail(an.ThermalLimitOK),
			ol,
			scpd,
			wire,
			capacitor,
			r.Error,
		)
	}
	if _, err := fmt.Fprintf(w, "Study %q (run %s)\n\n%s\n\n", rep.Study, rep.RunID, t); err != nil {
		return err
	}

	s := rep.Summary
	st := newTable()
	st.AddRow("Motors:", s.Motors)
	st.AddRow("Analysed:", s.Analysed)
	st.AddRow("Failed:", s.Failed)
	st.AddRow("Thermal limit failures:", s.ThermalFailures)
	st.AddRow("Unhealthy motors:", s.Unhealthy)
	st.AddRow("Estimated FLC:", s.EstimatedFLC)
	st.AddRow("Voltage dip mean/max (%):", fmtFloat(s.MeanVoltageDip, 2)+" / "+fmtFloat(s.MaxVoltageDip, 2))
	st.AddRow("Starting time mean/max (s):", fmtFloat(s.MeanStartingTime, 2)+" / "+fmtFloat(s.MaxStartingTime, 2))
	st.AddRow("Total capacitors (kVAR):", fmtFloat(s.TotalCapacitorKVAR, 1))
	_, err := fmt.Fprintln(w, st)
	return err
}

// WriteComparisonTable writes one row per starting method and the
// recommendation, if any.
func WriteComparisonTable(w io.Writer, motorID string, cmp model.MethodComparison) error {
	t := newTable()
	t.AddRow("METHOD", "START (A)", "TORQUE (%)", "DIP (%)", "TIME (s)", "ALLOWABLE (s)", "ACCEPTABLE", "REASON")
	for _, o := range cmp.Outcomes {
		an := o.Analysis
		acceptable := "no"
		if o.Acceptable {
			acceptable = "yes"
		}
		t.AddRow(
			string(an.Method.Type),
			fmtFloat(an.StartingCurrent, 1),
			fmtFloat(an.StartingTorque, 1),
			fmtFloat(an.VoltageDip, 2),
			fmtFloat(an.StartingTime, 2),
			fmtFloat(an.AllowableStallTime, 2),
			acceptable,
			o.Reason,
		)
	}
	rec := string(cmp.Recommended)
	if rec == "" {
		rec = "none"
	}
	_, err := fmt.Fprintf(w, "Motor %s\n\n%s\n\nRecommended: %s\n", motorID, t, rec)
	return err
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
