package study

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/signalsfoundry/motorstart/core"
	"github.com/signalsfoundry/motorstart/internal/logging"
	"github.com/signalsfoundry/motorstart/kb"
	"github.com/signalsfoundry/motorstart/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRecorder struct {
	mu        sync.Mutex
	calls     map[string]int
	errors    map[string]int
	estimates int
	thermal   int
	runs      int
	lastRun   [2]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{calls: map[string]int{}, errors: map[string]int{}}
}

func (f *fakeRecorder) ObserveCalculation(op string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if err != nil {
		f.errors[op]++
	}
}

func (f *fakeRecorder) IncFLCEstimate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.estimates++
}

func (f *fakeRecorder) IncThermalFailure() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.thermal++
}

func (f *fakeRecorder) ObserveRun(_ time.Duration, motors, failed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	f.lastRun = [2]int{motors, failed}
}

func pumpMotor() model.MotorSpecification {
	return model.MotorSpecification{
		Horsepower: 50, Voltage: 460, Phases: 3, RPM: 1775,
		Efficiency: 0.93, PowerFactor: 0.86, Code: "G",
	}
}

func newStudy(t *testing.T, entries ...kb.Entry) *kb.Study {
	t.Helper()
	s := &kb.Study{
		Name:    "test",
		Source:  model.SourceImpedance{R: 0.01, X: 0.03},
		Catalog: kb.NewMotorCatalog(),
	}
	for _, e := range entries {
		if err := s.Catalog.Add(e); err != nil {
			t.Fatalf("Add(%s): %v", e.ID, err)
		}
	}
	return s
}

func TestRunIsolatesFailingMotor(t *testing.T) {
	good := kb.Entry{
		ID:     "P-101",
		Motor:  pumpMotor(),
		Load:   model.LoadPump,
		Method: model.StartingMethod{Type: model.MethodAcrossTheLine},
		Run:    model.CircuitRun{LengthFt: 200, AmbientTempC: 30},
	}
	bad := good
	bad.ID = "BAD-1"
	bad.Motor.Horsepower = 0

	rec := newFakeRecorder()
	r := NewRunner(logging.Noop(), WithMetricsRecorder(rec), WithRunRecorder(rec), WithConcurrency(2))
	rep, err := r.Run(context.Background(), newStudy(t, good, bad))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(rep.Results) != 2 || rep.Results[0].ID != "BAD-1" || rep.Results[1].ID != "P-101" {
		t.Fatalf("results not ordered by id: %+v", rep.Results)
	}
	failed := rep.Results[0]
	if !failed.Failed() || failed.Analysis != nil {
		t.Fatalf("BAD-1 should fail without analysis, got %+v", failed)
	}

	ok := rep.Results[1]
	if ok.Failed() || ok.Analysis == nil || ok.Protection == nil || ok.Conductor == nil || ok.PowerFactor == nil {
		t.Fatalf("P-101 should be fully evaluated, got %+v", ok)
	}
	if math.Abs(ok.Analysis.VoltageDip-123.0099925253769) > 1e-9 {
		t.Fatalf("voltage dip = %v", ok.Analysis.VoltageDip)
	}
	if ok.Protection.OverloadRelay.Rating != 80 || ok.Conductor.Size != "4" || ok.PowerFactor.CapacitorSize != 12.5 {
		t.Fatalf("unexpected downstream results: %+v %+v %+v", ok.Protection, ok.Conductor, ok.PowerFactor)
	}

	s := rep.Summary
	if s.Motors != 2 || s.Analysed != 1 || s.Failed != 1 || s.ThermalFailures != 1 || s.EstimatedFLC != 0 || s.Unhealthy != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if s.MaxVoltageDip != ok.Analysis.VoltageDip || s.TotalCapacitorKVAR != 12.5 {
		t.Fatalf("summary stats = %+v", s)
	}
	if rep.RunID == "" {
		t.Fatalf("report should carry a run id")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.calls[OpAnalyzeStarting] != 2 || rec.errors[OpAnalyzeStarting] != 1 {
		t.Fatalf("analyze calls=%d errors=%d, want 2/1", rec.calls[OpAnalyzeStarting], rec.errors[OpAnalyzeStarting])
	}
	if rec.calls[OpPowerFactorCorrection] != 1 || rec.thermal != 1 {
		t.Fatalf("pf calls=%d thermal=%d, want 1/1", rec.calls[OpPowerFactorCorrection], rec.thermal)
	}
	if rec.runs != 1 || rec.lastRun != [2]int{2, 2} {
		t.Fatalf("run recorder = %d %v, want 1 run of 2 motors with 2 failing", rec.runs, rec.lastRun)
	}
}

func TestRunCountsEachUnhealthyMotorOnce(t *testing.T) {
	healthy := kb.Entry{
		ID:     "P-201",
		Motor:  pumpMotor(),
		Load:   model.LoadPump,
		Method: model.StartingMethod{Type: model.MethodVFD},
		Run:    model.CircuitRun{LengthFt: 100, AmbientTempC: 30},
	}
	// Fails the thermal check, then conductor sizing rejects the conduit.
	crusher := kb.Entry{
		ID:     "CR-1",
		Motor:  pumpMotor(),
		Load:   model.LoadCrusher,
		Method: model.StartingMethod{Type: model.MethodAcrossTheLine},
		Run:    model.CircuitRun{LengthFt: 100, AmbientTempC: 30, Conduit: "copper"},
	}

	rec := newFakeRecorder()
	r := NewRunner(logging.Noop(), WithRunRecorder(rec))
	rep, err := r.Run(context.Background(), newStudy(t, healthy, crusher))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	cr := rep.Results[0]
	if cr.ID != "CR-1" || cr.Analysis == nil || cr.Analysis.ThermalLimitOK || cr.Conductor != nil || !cr.Failed() {
		t.Fatalf("CR-1 should fail thermally and at conductor sizing, got %+v", cr)
	}
	if ok := rep.Results[1]; ok.Failed() || !ok.Analysis.ThermalLimitOK {
		t.Fatalf("P-201 should pass, got %+v", ok)
	}

	s := rep.Summary
	if s.Failed != 1 || s.ThermalFailures != 1 || s.Unhealthy != 1 {
		t.Fatalf("summary = %+v, want failed=1 thermal=1 unhealthy=1", s)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.lastRun != [2]int{2, 1} {
		t.Fatalf("run recorder = %v, want 2 motors with 1 unhealthy", rec.lastRun)
	}
}

func TestRunCountsEstimatedFLC(t *testing.T) {
	m := pumpMotor()
	m.Voltage = 480
	e := kb.Entry{ID: "C-1", Motor: m, Load: model.LoadConveyor, Method: model.StartingMethod{Type: model.MethodVFD}}

	rec := newFakeRecorder()
	rep, err := NewRunner(nil, WithMetricsRecorder(rec)).Run(context.Background(), newStudy(t, e))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Summary.EstimatedFLC != 1 || rec.estimates != 1 {
		t.Fatalf("estimated = %d / %d, want 1", rep.Summary.EstimatedFLC, rec.estimates)
	}
}

func TestRunManyMotorsMatchesSequentialAnalysis(t *testing.T) {
	var entries []kb.Entry
	for i := 0; i < 40; i++ {
		m := pumpMotor()
		m.Horsepower = []float64{5, 10, 25, 50, 100}[i%5]
		entries = append(entries, kb.Entry{
			ID:     fmt.Sprintf("M-%02d", i),
			Motor:  m,
			Load:   model.LoadTypes[i%len(model.LoadTypes)],
			Method: model.StartingMethod{Type: model.StartingMethodTypes[i%len(model.StartingMethodTypes)]},
		})
	}
	s := newStudy(t, entries...)
	rep, err := NewRunner(logging.Noop(), WithConcurrency(3)).Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	a := core.NewAnalyzer()
	for i, res := range rep.Results {
		e := entries[i]
		if res.ID != e.ID {
			t.Fatalf("result %d id = %s, want %s", i, res.ID, e.ID)
		}
		want, err := a.AnalyzeStarting(core.StartingRequest{Motor: e.Motor, Method: e.Method, Source: s.Source, Load: e.Load})
		if err != nil {
			t.Fatalf("AnalyzeStarting(%s): %v", e.ID, err)
		}
		if res.Analysis == nil || *res.Analysis != want {
			t.Fatalf("%s: concurrent result differs from sequential", e.ID)
		}
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	e := kb.Entry{ID: "P", Motor: pumpMotor(), Load: model.LoadPump, Method: model.StartingMethod{Type: model.MethodAcrossTheLine}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRunner(nil).Run(ctx, newStudy(t, e)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunNilStudy(t *testing.T) {
	if _, err := NewRunner(nil).Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil study")
	}
}

func TestCompare(t *testing.T) {
	e := kb.Entry{ID: "P-101", Motor: pumpMotor(), Load: model.LoadPump, Method: model.StartingMethod{Type: model.MethodAcrossTheLine}}
	s := newStudy(t, e)
	rec := newFakeRecorder()
	r := NewRunner(nil, WithAnalyzer(&core.Analyzer{MaxVoltageDipPercent: 25}), WithMetricsRecorder(rec))

	cmp, err := r.Compare(context.Background(), s, "P-101")
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if cmp.Recommended != model.MethodVFD {
		t.Fatalf("recommended = %q, want vfd", cmp.Recommended)
	}
	if rec.calls[OpCompareMethods] != 1 {
		t.Fatalf("compare not recorded")
	}
	if _, err := r.Compare(context.Background(), s, "nope"); !errors.Is(err, kb.ErrMotorNotFound) {
		t.Fatalf("missing motor err = %v", err)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Fatalf("Summarize(nil) = %+v, want zero", s)
	}
}
