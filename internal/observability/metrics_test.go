package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveCalculationRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.ObserveCalculation("analyze_starting", 2*time.Millisecond, nil)
	collector.ObserveCalculation("analyze_starting", time.Millisecond, errors.New("boom"))
	collector.ObserveCalculation("select_protection", time.Millisecond, nil)

	if got := testutil.ToFloat64(collector.Calculations.WithLabelValues("analyze_starting", OutcomeOK)); got != 1 {
		t.Fatalf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.Calculations.WithLabelValues("analyze_starting", OutcomeError)); got != 1 {
		t.Fatalf("error count = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "motorstart_calculation_duration_seconds", map[string]string{
		"operation": "analyze_starting",
	}); count != 2 {
		t.Fatalf("duration sample_count = %d, want 2", count)
	}
}

func TestEngineCountersAndNilSafety(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}
	collector.IncFLCEstimate()
	collector.IncFLCEstimate()
	collector.IncThermalFailure()
	if got := testutil.ToFloat64(collector.FLCEstimates); got != 2 {
		t.Fatalf("flc estimates = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.ThermalFailures); got != 1 {
		t.Fatalf("thermal failures = %v, want 1", got)
	}

	var nilCollector *EngineCollector
	nilCollector.ObserveCalculation("x", time.Second, nil)
	nilCollector.IncFLCEstimate()
	nilCollector.IncThermalFailure()
}

func TestRegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("first NewEngineCollector: %v", err)
	}
	second, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("second NewEngineCollector: %v", err)
	}
	first.IncFLCEstimate()
	if got := testutil.ToFloat64(second.FLCEstimates); got != 1 {
		t.Fatalf("second collector sees %v estimates, want shared 1", got)
	}
	if _, err := NewStudyCollector(reg); err != nil {
		t.Fatalf("NewStudyCollector: %v", err)
	}
	if _, err := NewStudyCollector(reg); err != nil {
		t.Fatalf("second NewStudyCollector: %v", err)
	}
}

func TestStudyCollectorObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sc, err := NewStudyCollector(reg)
	if err != nil {
		t.Fatalf("NewStudyCollector: %v", err)
	}
	sc.ObserveRun(30*time.Millisecond, 4, 1)
	if got := testutil.ToFloat64(sc.StudyMotors); got != 4 {
		t.Fatalf("study motors = %v, want 4", got)
	}
	if got := testutil.ToFloat64(sc.FailureRatio); got != 0.25 {
		t.Fatalf("failure ratio = %v, want 0.25", got)
	}
	sc.ObserveRun(time.Millisecond, 0, 0)
	if got := testutil.ToFloat64(sc.RunsTotal); got != 2 {
		t.Fatalf("runs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(sc.FailureRatio); got != 0 {
		t.Fatalf("empty run ratio = %v, want 0", got)
	}
}

func TestMetricsHandlerExposesEngineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}
	sc, err := NewStudyCollector(reg)
	if err != nil {
		t.Fatalf("NewStudyCollector: %v", err)
	}
	collector.ObserveCalculation("power_factor_correction", time.Microsecond, nil)
	collector.IncThermalFailure()
	sc.ObserveRun(time.Millisecond, 3, 0)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"motorstart_calculations_total",
		"motorstart_calculation_duration_seconds",
		"motorstart_thermal_limit_failures_total",
		"motorstart_study_motors 3",
		"motorstart_study_runs_total 1",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output:\n%s", metric, body)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
