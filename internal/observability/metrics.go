package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// EngineCollector bundles Prometheus metrics for the calculation engine and
// exposes them over HTTP.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	Calculations         *prometheus.CounterVec
	CalculationDurations *prometheus.HistogramVec

	FLCEstimates    prometheus.Counter
	ThermalFailures prometheus.Counter
}

// NewEngineCollector registers engine metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	calcs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "motorstart_calculations_total",
		Help: "Total number of engine calculations, labeled by operation and outcome.",
	}, []string{"operation", "outcome"})
	calcs, err := registerCounterVec(reg, calcs, "motorstart_calculations_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "motorstart_calculation_duration_seconds",
		Help:    "Engine calculation latency in seconds.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"operation"})
	durations, err = registerHistogramVec(reg, durations, "motorstart_calculation_duration_seconds")
	if err != nil {
		return nil, err
	}

	estimates, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "motorstart_flc_estimates_total",
		Help: "Full-load currents computed from the fallback formula instead of the NEC table.",
	}), "motorstart_flc_estimates_total")
	if err != nil {
		return nil, err
	}
	thermal, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "motorstart_thermal_limit_failures_total",
		Help: "Starting analyses whose acceleration time exceeded the thermal withstand time.",
	}), "motorstart_thermal_limit_failures_total")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:             gatherer,
		Calculations:         calcs,
		CalculationDurations: durations,
		FLCEstimates:         estimates,
		ThermalFailures:      thermal,
	}, nil
}

// ObserveCalculation records one engine call.
func (c *EngineCollector) ObserveCalculation(operation string, d time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	if c.Calculations != nil {
		c.Calculations.WithLabelValues(operation, outcome).Inc()
	}
	if c.CalculationDurations != nil {
		c.CalculationDurations.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// IncFLCEstimate counts a full-load current that was not tabulated.
func (c *EngineCollector) IncFLCEstimate() {
	if c == nil || c.FLCEstimates == nil {
		return
	}
	c.FLCEstimates.Inc()
}

// IncThermalFailure counts a failed thermal check.
func (c *EngineCollector) IncThermalFailure() {
	if c == nil || c.ThermalFailures == nil {
		return
	}
	c.ThermalFailures.Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
