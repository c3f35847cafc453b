package monitor

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/banshee-data/court.report/internal/units"
	"github.com/banshee-data/court.report/internal/vision/l6shots"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartOptions controls the HTML shot report.
type ChartOptions struct {
	Title string
	// Units is the speed unit shown on the charts; empty means km/h.
	Units string
	// AssetsHost overrides where the echarts javascript is loaded from.
	AssetsHost string
}

func (o ChartOptions) units() string {
	if o.Units == "" || !units.IsValid(o.Units) {
		return units.KMPH
	}
	return o.Units
}

// fromKmh converts a stored km/h value into the display unit.
func fromKmh(kmh float64, unit string) float64 {
	return units.ConvertSpeed(kmh/3.6, unit)
}

// ShotSpeedChart is a bar per shot, labelled with its category.
func ShotSpeedChart(shots []l6shots.ShotRecord, o ChartOptions) *charts.Bar {
	unit := o.units()
	x := make([]string, 0, len(shots))
	y := make([]opts.BarData, 0, len(shots))
	for _, s := range shots {
		x = append(x, fmt.Sprintf("#%d %s", s.EventIndex, s.Category))
		y = append(y, opts.BarData{
			Name:  string(s.Category),
			Value: round2(fromKmh(s.SpeedKmh, unit)),
		})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.Title, Width: "100%", Height: "480px", AssetsHost: o.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Shot speed", Subtitle: fmt.Sprintf("%s shots=%d", o.Title, len(shots))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: unit, NameLocation: "middle", NameGap: 40}),
	)
	bar.SetXAxis(x).
		AddSeries("speed", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// PlayerChart compares shot and opponent movement averages per participant
// from the final statistics summary.
func PlayerChart(final l6shots.Summary, o ChartOptions) *charts.Bar {
	unit := o.units()
	x := make([]string, 0, len(final.Players))
	shotAvg := make([]opts.BarData, 0, len(final.Players))
	oppAvg := make([]opts.BarData, 0, len(final.Players))
	for _, p := range final.Players {
		label := strconv.Itoa(int(p.ID))
		if p.Role != "" {
			label = fmt.Sprintf("%s (%d)", p.Role, p.ID)
		}
		x = append(x, label)
		shotAvg = append(shotAvg, opts.BarData{Value: round2(fromKmh(p.AvgShotSpeedKmh(), unit))})
		oppAvg = append(oppAvg, opts.BarData{Value: round2(fromKmh(p.AvgOpponentSpeedKmh(), unit))})
	}

	subtitle := fmt.Sprintf("last shot power=%.0f", final.LastShotPower)
	if final.Balls > 0 {
		subtitle = fmt.Sprintf("runs=%d balls=%d strike rate=%.1f", final.Runs, final.Balls, final.StrikeRate())
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.Title, Width: "100%", Height: "480px", AssetsHost: o.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Players", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithYAxisOpts(opts.YAxis{Name: unit, NameLocation: "middle", NameGap: 40}),
	)
	bar.SetXAxis(x).
		AddSeries("avg shot speed", shotAvg).
		AddSeries("avg opponent speed", oppAvg)
	return bar
}

// RenderShotReport writes an HTML page with the shot speed and player charts.
func RenderShotReport(w io.Writer, shots []l6shots.ShotRecord, stats l6shots.Timeline, o ChartOptions) error {
	page := components.NewPage()
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}
	page.AddCharts(ShotSpeedChart(shots, o), PlayerChart(stats.Final(), o))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render shot report: %w", err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
