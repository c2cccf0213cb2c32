// Package app wires the motorstart command line.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/motorstart/internal/config"
	"github.com/signalsfoundry/motorstart/internal/logging"
	"github.com/signalsfoundry/motorstart/internal/observability"
	"github.com/signalsfoundry/motorstart/internal/report"
	"github.com/signalsfoundry/motorstart/internal/study"
	"github.com/signalsfoundry/motorstart/kb"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// rootOptions is shared by every subcommand. It is populated in
// PersistentPreRunE so subcommands see the loaded configuration.
type rootOptions struct {
	ctx        context.Context
	configPath string

	cfg             config.Config
	log             logging.Logger
	shutdownTracing func(context.Context) error
}

// NewRootCommand builds the motorstart command tree. ctx bounds every run
// and is normally cancelled on SIGINT.
func NewRootCommand(ctx context.Context) *cobra.Command {
	o := &rootOptions{ctx: ctx}
	cmd := &cobra.Command{
		Use:   "motorstart",
		Short: "Motor starting analysis and protection coordination",
		Long: "motorstart analyses induction motor starting per NEC Article 430: starting current,\n" +
			"voltage dip, acceleration time and thermal withstand, then selects overload and\n" +
			"short-circuit protection, sizes the branch conductor and the power-factor capacitor.",
		SilenceUsage:      true,
		PersistentPreRunE: o.setup,
	}
	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "path to a config file (YAML, JSON or TOML)")

	cmd.AddCommand(
		newAnalyzeCommand(o),
		newCompareCommand(o),
		newWatchCommand(o),
		newVersionCommand(),
	)
	return cmd
}

func (o *rootOptions) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg

	lc := cfg.LoggingConfig()
	lc.Output = cmd.ErrOrStderr()
	o.log = logging.New(lc)

	tc := cfg.TracingConfig()
	tc.Writer = cmd.ErrOrStderr()
	tc.ServiceVersion = Version
	shutdown, err := observability.InitTracing(o.ctx, tc, o.log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	o.shutdownTracing = shutdown
	return nil
}

// runE defers teardown inside the subcommand itself: cobra skips post-run
// hooks when RunE fails, and spans from a failed run still need flushing.
func (o *rootOptions) runE(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer o.teardown()
		return fn(cmd, args)
	}
}

func (o *rootOptions) teardown() {
	observability.ShutdownWithTimeout(context.Background(), o.shutdownTracing, o.log)
	o.shutdownTracing = nil
}

func (o *rootOptions) loadStudy(path string) (*kb.Study, error) {
	return kb.LoadStudyFile(path,
		kb.WithDefaultAmbient(o.cfg.Engine.AmbientTempC),
		kb.WithDefaultTargetPowerFactor(o.cfg.Engine.TargetPowerFactor),
	)
}

func (o *rootOptions) newRunner(opts ...study.Option) *study.Runner {
	base := []study.Option{
		study.WithAnalyzer(o.cfg.Analyzer()),
		study.WithConcurrency(o.cfg.Engine.Concurrency),
		study.WithTargetPowerFactor(o.cfg.Engine.TargetPowerFactor),
	}
	return study.NewRunner(o.log, append(base, opts...)...)
}

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported format %q (want %s or %s)", format, formatTable, formatJSON)
	}
}

func writeReport(w io.Writer, format string, rep *study.Report) error {
	if strings.EqualFold(format, formatJSON) {
		return report.WriteJSON(w, rep)
	}
	return report.WriteTable(w, rep)
}
