// Package study evaluates every motor in a study concurrently and collects
// the results into a report.
package study

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/motorstart/core"
	"github.com/signalsfoundry/motorstart/internal/logging"
	"github.com/signalsfoundry/motorstart/internal/observability"
	"github.com/signalsfoundry/motorstart/kb"
	"github.com/signalsfoundry/motorstart/model"
)

// Operation names used for metrics labels and span names.
const (
	OpAnalyzeStarting       = "analyze_starting"
	OpSelectProtection      = "select_protection"
	OpSizeConductor         = "size_conductor"
	OpPowerFactorCorrection = "power_factor_correction"
	OpCompareMethods        = "compare_methods"
)

// MetricsRecorder receives per-calculation observations.
type MetricsRecorder interface {
	ObserveCalculation(operation string, d time.Duration, err error)
	IncFLCEstimate()
	IncThermalFailure()
}

// RunRecorder receives one observation per finished study run.
type RunRecorder interface {
	ObserveRun(d time.Duration, motors, failed int)
}

// Runner evaluates studies. A Runner is safe for concurrent use.
type Runner struct {
	analyzer    *core.Analyzer
	log         logging.Logger
	metrics     MetricsRecorder
	runMetrics  RunRecorder
	concurrency int
	targetPF    float64
	tracer      trace.Tracer
}

// Option customises Runner construction.
type Option func(*Runner)

// WithAnalyzer replaces the default engine analyzer.
func WithAnalyzer(a *core.Analyzer) Option {
	return func(r *Runner) {
		if a != nil {
			r.analyzer = a
		}
	}
}

// WithConcurrency bounds the number of motors evaluated at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithTargetPowerFactor sets the correction target for entries that leave it
// unset.
func WithTargetPowerFactor(pf float64) Option {
	return func(r *Runner) {
		if pf > 0 {
			r.targetPF = pf
		}
	}
}

// WithMetricsRecorder attaches an optional recorder for calculation metrics.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithRunRecorder attaches an optional recorder for run-level metrics.
func WithRunRecorder(m RunRecorder) Option {
	return func(r *Runner) { r.runMetrics = m }
}

// NewRunner builds a Runner. A nil logger is replaced by Noop.
func NewRunner(log logging.Logger, opts ...Option) *Runner {
	if log == nil {
		log = logging.Noop()
	}
	r := &Runner{
		analyzer:    core.NewAnalyzer(),
		log:         log,
		concurrency: runtime.GOMAXPROCS(0),
		targetPF:    core.DefaultTargetPowerFactor,
		tracer:      otel.Tracer(observability.TracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run evaluates every motor in the study. A motor that fails validation or
// calculation is reported with its error; the others are unaffected. Run
// itself only fails when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, s *kb.Study) (*Report, error) {
	if s == nil || s.Catalog == nil {
		return nil, errors.New("study: nil study")
	}
	ctx, log := logging.WithRunLogger(ctx, r.log)
	runID := logging.RunIDFromContext(ctx)

	ctx, span := r.tracer.Start(ctx, "study.run", trace.WithAttributes(
		attribute.String("study.name", s.Name),
		attribute.String("run_id", runID),
	))
	defer span.End()

	start := time.Now()
	entries := s.Catalog.List()
	log.Info(ctx, "study run started",
		logging.String("study", s.Name),
		logging.Int("motors", len(entries)),
		logging.Int("concurrency", r.concurrency),
	)

	results := make([]MotorResult, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.evaluate(gctx, log, s.Source, e)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("study %q: %w", s.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("study %q: %w", s.Name, err)
	}

	rep := &Report{
		RunID:   runID,
		Study:   s.Name,
		Results: results,
		Summary: Summarize(results),
	}
	elapsed := time.Since(start)
	if r.runMetrics != nil {
		r.runMetrics.ObserveRun(elapsed, rep.Summary.Motors, rep.Summary.Unhealthy)
	}
	span.SetAttributes(
		attribute.Int("study.motors", rep.Summary.Motors),
		attribute.Int("study.failed", rep.Summary.Failed),
	)
	log.Info(ctx, "study run finished",
		logging.Int("analysed", rep.Summary.Analysed),
		logging.Int("failed", rep.Summary.Failed),
		logging.Int("thermal_failures", rep.Summary.ThermalFailures),
		logging.Int("unhealthy", rep.Summary.Unhealthy),
		logging.String("elapsed", elapsed.String()),
	)
	return rep, nil
}

func (r *Runner) evaluate(ctx context.Context, log logging.Logger, src model.SourceImpedance, e kb.Entry) MotorResult {
	log = log.With(logging.String("motor_id", e.ID), logging.String("method", string(e.Method.Type)))
	ctx, span := r.tracer.Start(ctx, "study.motor", trace.WithAttributes(
		attribute.String("motor.id", e.ID),
		attribute.String("motor.method", string(e.Method.Type)),
		attribute.String("motor.load", string(e.Load)),
	))
	defer span.End()

	res := MotorResult{ID: e.ID, Name: e.Name}
	fail := func(op string, err error) MotorResult {
		res.Error = fmt.Sprintf("%s: %v", op, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, res.Error)
		log.Warn(ctx, "motor evaluation failed", logging.String("operation", op), logging.Err(err))
		return res
	}

	req := core.StartingRequest{Motor: e.Motor, Method: e.Method, Source: src, Load: e.Load}
	t0 := time.Now()
	an, err := r.analyzer.AnalyzeStarting(req)
	r.observe(OpAnalyzeStarting, t0, err)
	if err != nil {
		return fail(OpAnalyzeStarting, err)
	}
	res.Analysis = &an

	if an.FullLoadCurrent.Estimated() {
		if r.metrics != nil {
			r.metrics.IncFLCEstimate()
		}
		log.Warn(ctx, "full-load current estimated from nameplate formula",
			logging.Float64("flc", an.FullLoadCurrent.Amperes),
			logging.Float64("voltage", e.Motor.Voltage),
		)
	}
	if _, err := model.ParseCodeLetter(string(e.Motor.Code)); err != nil {
		log.Warn(ctx, "missing or unknown code letter, assuming G", logging.String("code", string(e.Motor.Code)))
	}
	if !an.ThermalLimitOK {
		if r.metrics != nil {
			r.metrics.IncThermalFailure()
		}
	}
	span.SetAttributes(
		attribute.Float64("motor.starting_current", an.StartingCurrent),
		attribute.Float64("motor.voltage_dip", an.VoltageDip),
		attribute.Bool("motor.thermal_ok", an.ThermalLimitOK),
	)

	t0 = time.Now()
	prot, err := r.analyzer.SelectProtection(an)
	r.observe(OpSelectProtection, t0, err)
	if err != nil {
		return fail(OpSelectProtection, err)
	}
	res.Protection = &prot

	t0 = time.Now()
	cond, err := core.SizeConductor(e.Motor, an.FullLoadCurrent.Amperes, e.Run)
	r.observe(OpSizeConductor, t0, err)
	if err != nil {
		return fail(OpSizeConductor, err)
	}
	res.Conductor = &cond
	if cond.Undersized {
		log.Warn(ctx, "no tabulated conductor carries the required ampacity",
			logging.Float64("required_ampacity", cond.RequiredAmpacity),
		)
	}

	target := e.TargetPowerFactor
	if target == 0 {
		target = r.targetPF
	}
	t0 = time.Now()
	pfc, err := core.PowerFactorCorrection(e.Motor, target)
	r.observe(OpPowerFactorCorrection, t0, err)
	if err != nil {
		return fail(OpPowerFactorCorrection, err)
	}
	res.PowerFactor = &pfc

	log.Debug(ctx, "motor evaluated",
		logging.Float64("starting_current", an.StartingCurrent),
		logging.Float64("voltage_dip", an.VoltageDip),
		logging.Float64("starting_time", an.StartingTime),
		logging.Bool("thermal_ok", an.ThermalLimitOK),
	)
	return res
}

// Compare runs the starting-method comparison for one motor of the study.
func (r *Runner) Compare(ctx context.Context, s *kb.Study, motorID string) (model.MethodComparison, error) {
	if s == nil || s.Catalog == nil {
		return model.MethodComparison{}, errors.New("study: nil study")
	}
	e, err := s.Catalog.Get(motorID)
	if err != nil {
		return model.MethodComparison{}, err
	}
	_, span := r.tracer.Start(ctx, "study.compare", trace.WithAttributes(attribute.String("motor.id", motorID)))
	defer span.End()

	t0 := time.Now()
	cmp, err := r.analyzer.CompareStartingMethods(core.StartingRequest{
		Motor: e.Motor, Method: e.Method, Source: s.Source, Load: e.Load,
	})
	r.observe(OpCompareMethods, t0, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return model.MethodComparison{}, fmt.Errorf("motor %s: %w", motorID, err)
	}
	span.SetAttributes(attribute.String("motor.recommended", string(cmp.Recommended)))
	return cmp, nil
}

func (r *Runner) observe(op string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveCalculation(op, time.Since(start), err)
}
