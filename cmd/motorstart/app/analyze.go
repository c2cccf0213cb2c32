package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAnalyzeCommand(o *rootOptions) *cobra.Command {
	var (
		studyPath string
		format    string
		strict    bool
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyse every motor in a study file",
		Example: "  motorstart analyze --study pump_station.yaml\n" +
			"  motorstart analyze --study pump_station.yaml --format json",
		Args: cobra.NoArgs,
		RunE: o.runE(func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			s, err := o.loadStudy(studyPath)
			if err != nil {
				return err
			}
			rep, err := o.newRunner().Run(o.ctx, s)
			if err != nil {
				return err
			}
			if err := writeReport(cmd.OutOrStdout(), format, rep); err != nil {
				return err
			}
			if strict && (rep.Summary.Failed > 0 || rep.Summary.ThermalFailures > 0) {
				return fmt.Errorf("%d motor(s) failed analysis and %d failed the thermal check",
					rep.Summary.Failed, rep.Summary.ThermalFailures)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&studyPath, "study", "", "study file (YAML or JSON)")
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "output format: table or json")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any motor fails analysis or the thermal check")
	_ = cmd.MarkFlagRequired("study")
	return cmd
}
