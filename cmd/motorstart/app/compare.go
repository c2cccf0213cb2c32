package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/motorstart/internal/logging"
	"github.com/signalsfoundry/motorstart/internal/report"
)

func newCompareCommand(o *rootOptions) *cobra.Command {
	var (
		studyPath string
		motorID   string
		chartPath string
		format    string
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare every starting method for one motor",
		Example: "  motorstart compare --study pump_station.yaml --motor P-101\n" +
			"  motorstart compare --study pump_station.yaml --motor P-101 --chart p101.html",
		Args: cobra.NoArgs,
		RunE: o.runE(func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			s, err := o.loadStudy(studyPath)
			if err != nil {
				return err
			}
			cmp, err := o.newRunner().Compare(o.ctx, s, motorID)
			if err != nil {
				return err
			}

			if strings.EqualFold(format, formatJSON) {
				err = report.WriteJSON(cmd.OutOrStdout(), cmp)
			} else {
				err = report.WriteComparisonTable(cmd.OutOrStdout(), motorID, cmp)
			}
			if err != nil {
				return err
			}

			if chartPath == "" {
				return nil
			}
			f, err := os.Create(chartPath)
			if err != nil {
				return fmt.Errorf("create chart: %w", err)
			}
			if err := report.RenderComparisonChart(f, motorID, cmp); err != nil {
				_ = f.Close()
				return fmt.Errorf("render chart: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			o.log.Info(o.ctx, "comparison chart written", logging.String("path", chartPath))
			return nil
		}),
	}
	cmd.Flags().StringVar(&studyPath, "study", "", "study file (YAML or JSON)")
	cmd.Flags().StringVar(&motorID, "motor", "", "ID of the motor to compare")
	cmd.Flags().StringVar(&chartPath, "chart", "", "also write an HTML bar chart page to this path")
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "output format: table or json")
	_ = cmd.MarkFlagRequired("study")
	_ = cmd.MarkFlagRequired("motor")
	return cmd
}
