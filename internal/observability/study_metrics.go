package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StudyCollector exposes study-run Prometheus metrics.
type StudyCollector struct {
	RunDuration  prometheus.Histogram
	StudyMotors  prometheus.Gauge
	RunsTotal    prometheus.Counter
	FailureRatio prometheus.Gauge
}

// NewStudyCollector registers study metrics against the provided registerer.
func NewStudyCollector(reg prometheus.Registerer) (*StudyCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "motorstart_study_run_duration_seconds",
		Help:    "Wall time to evaluate every motor in a study.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
	runHistogram, err := registerHistogram(reg, runHistogram, "motorstart_study_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	motors := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "motorstart_study_motors",
		Help: "Number of motors in the most recently evaluated study.",
	})
	motors, err = registerGauge(reg, motors, "motorstart_study_motors")
	if err != nil {
		return nil, err
	}

	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "motorstart_study_runs_total",
		Help: "Cumulative number of completed study runs.",
	})
	runs, err = registerCounter(reg, runs, "motorstart_study_runs_total")
	if err != nil {
		return nil, err
	}

	ratio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "motorstart_study_failure_ratio",
		Help: "Fraction of motors in the last run that failed analysis or the thermal check.",
	})
	ratio, err = registerGauge(reg, ratio, "motorstart_study_failure_ratio")
	if err != nil {
		return nil, err
	}

	return &StudyCollector{
		RunDuration:  runHistogram,
		StudyMotors:  motors,
		RunsTotal:    runs,
		FailureRatio: ratio,
	}, nil
}

// ObserveRun records a finished study run of motors entries, failed of which
// did not pass.
func (c *StudyCollector) ObserveRun(d time.Duration, motors, failed int) {
	if c == nil {
		return
	}
	if c.RunDuration != nil {
		c.RunDuration.Observe(d.Seconds())
	}
	if c.StudyMotors != nil {
		c.StudyMotors.Set(float64(motors))
	}
	if c.RunsTotal != nil {
		c.RunsTotal.Inc()
	}
	if c.FailureRatio != nil {
		ratio := 0.0
		if motors > 0 {
			ratio = float64(failed) / float64(motors)
		}
		if ratio > 1 {
			ratio = 1
		}
		c.FailureRatio.Set(ratio)
	}
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
