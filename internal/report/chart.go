package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/signalsfoundry/motorstart/model"
)

func barChart(title, subtitle, yName string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{
			Type:  "scroll",
			Right: "10",
			Top:   "20",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  yName,
			Scale: opts.Bool(true),
		}),
	)
	return bar
}

// RenderComparisonChart writes an HTML page with bar charts of starting
// current, voltage dip and acceleration time for every method compared.
func RenderComparisonChart(w io.Writer, motorID string, cmp model.MethodComparison) error {
	if len(cmp.Outcomes) == 0 {
		return fmt.Errorf("report: no outcomes to chart for motor %s", motorID)
	}

	methods := make([]string, len(cmp.Outcomes))
	current := make([]opts.BarData, len(cmp.Outcomes))
	dip := make([]opts.BarData, len(cmp.Outcomes))
	timeS := make([]opts.BarData, len(cmp.Outcomes))
	allowable := make([]opts.BarData, len(cmp.Outcomes))
	for i, o := range cmp.Outcomes {
		an := o.Analysis
		methods[i] = string(an.Method.Type)
		current[i] = opts.BarData{Name: methods[i], Value: an.StartingCurrent}
		dip[i] = opts.BarData{Name: methods[i], Value: an.VoltageDip}
		timeS[i] = opts.BarData{Name: methods[i], Value: an.StartingTime}
		allowable[i] = opts.BarData{Name: methods[i], Value: an.AllowableStallTime}
	}

	subtitle := "recommended: none"
	if cmp.Recommended != "" {
		subtitle = "recommended: " + string(cmp.Recommended)
	}

	currentBar := barChart("Starting current "+motorID, subtitle, "A")
	currentBar.SetXAxis(methods).AddSeries("starting current", current)

	dipBar := barChart("Voltage dip "+motorID, subtitle, "%")
	dipBar.SetXAxis(methods).AddSeries("voltage dip", dip)

	timeBar := barChart("Acceleration "+motorID, subtitle, "s")
	timeBar.SetXAxis(methods).
		AddSeries("starting time", timeS).
		AddSeries("allowable stall time", allowable)

	page := components.NewPage()
	page.PageTitle = "Starting method comparison " + motorID
	page.AddCharts(currentBar, dipBar, timeBar)
	return page.Render(w)
}
