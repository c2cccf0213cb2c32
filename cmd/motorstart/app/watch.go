package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/signalsfoundry/motorstart/internal/logging"
	"github.com/signalsfoundry/motorstart/internal/observability"
	"github.com/signalsfoundry/motorstart/internal/study"
)

func newWatchCommand(o *rootOptions) *cobra.Command {
	var (
		studyPath   string
		format      string
		metricsAddr string
		debounce    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-analyse a study every time its file changes",
		Long: "watch runs the study once, then again on every save of the study file, until\n" +
			"interrupted. Engine and run metrics are served on --metrics-addr.",
		Args: cobra.NoArgs,
		RunE: o.runE(func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if !cmd.Flags().Changed("metrics-addr") {
				metricsAddr = o.cfg.Metrics.Addr
			}

			reg := prometheus.NewRegistry()
			engine, err := observability.NewEngineCollector(reg)
			if err != nil {
				return fmt.Errorf("init engine metrics: %w", err)
			}
			runs, err := observability.NewStudyCollector(reg)
			if err != nil {
				return fmt.Errorf("init study metrics: %w", err)
			}
			srv := serveMetrics(o.ctx, metricsAddr, engine.Handler(), o.log)
			defer shutdownServer(srv)

			runner := o.newRunner(study.WithMetricsRecorder(engine), study.WithRunRecorder(runs))
			out := cmd.OutOrStdout()
			runOnce := func(ctx context.Context) {
				if err := o.runAndWrite(ctx, runner, studyPath, format, out); err != nil {
					o.log.Error(ctx, "study run failed", logging.String("path", studyPath), logging.Err(err))
				}
			}

			runOnce(o.ctx)
			return study.WatchFile(o.ctx, studyPath, debounce, o.log, runOnce)
		}),
	}
	cmd.Flags().StringVar(&studyPath, "study", "", "study file (YAML or JSON)")
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "output format: table or json")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "HTTP address for Prometheus /metrics; empty disables (default from config)")
	cmd.Flags().DurationVar(&debounce, "debounce", study.DefaultDebounce, "quiet period after a change before re-running")
	_ = cmd.MarkFlagRequired("study")
	return cmd
}

func (o *rootOptions) runAndWrite(ctx context.Context, runner *study.Runner, path, format string, w io.Writer) error {
	s, err := o.loadStudy(path)
	if err != nil {
		return err
	}
	rep, err := runner.Run(ctx, s)
	if err != nil {
		return err
	}
	return writeReport(w, format, rep)
}

func serveMetrics(ctx context.Context, addr string, h http.Handler, log logging.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(ctx, "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(ctx, "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

func shutdownServer(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
