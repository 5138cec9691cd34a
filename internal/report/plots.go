package report

import (
	"fmt"
	"math"

	"trade-analytics-go/internal/analysis"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
)

// tradeTrendPlot draws one total-trade line per country over the observed
// years.
func tradeTrendPlot(series []analysis.CountrySeries, path string) error {
	p := plot.New()
	p.Title.Text = "Total Trade by Country"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Trade Value (USD millions)"
	p.Legend.Top = true

	for i, s := range series {
		pts := make(plotter.XYs, len(s.Years))
		for j := range s.Years {
			pts[j].X = float64(s.Years[j])
			pts[j].Y = s.Values[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build trend line for %s: %w", s.Country, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.Country, line)
	}

	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("failed to save trade trend plot: %w", err)
	}
	return nil
}

// riskScorePlot draws composite risk scores as bars, ranked as provided
// and colored by risk level. Countries with an undefined composite are
// omitted.
func riskScorePlot(assessments []analysis.RiskAssessment, path string) error {
	var labels []string
	var kept []analysis.RiskAssessment
	for _, a := range assessments {
		if math.IsNaN(a.CompositeRisk) {
			continue
		}
		labels = append(labels, a.Country)
		kept = append(kept, a)
	}

	p := plot.New()
	p.Title.Text = "Composite Risk Score by Country"
	p.Y.Label.Text = "Risk Score"
	p.Y.Max = 100
	p.Legend.Top = true
	p.NominalX(labels...)

	// One overlaid bar chart per level, zero-height outside its members,
	// so each country keeps its ranked position.
	levels := []struct {
		name  string
		color int
	}{
		{analysis.RiskLevelHigh, 3},
		{analysis.RiskLevelMedium, 5},
		{analysis.RiskLevelLow, 2},
	}
	for _, level := range levels {
		scores := make(plotter.Values, len(kept))
		present := false
		for i, a := range kept {
			if a.Level == level.name {
				scores[i] = a.CompositeRisk
				present = true
			}
		}
		if !present {
			continue
		}
		bars, err := plotter.NewBarChart(scores, vg.Points(24))
		if err != nil {
			return fmt.Errorf("failed to build risk bars: %w", err)
		}
		bars.Color = plotutil.Color(level.color)
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.Legend.Add(level.name, bars)
	}

	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("failed to save risk plot: %w", err)
	}
	return nil
}

// forecastPlot draws the observed series and the projection with its
// confidence band rendered as dashed bounds.
func forecastPlot(metric string, years []int, values []float64, forecast *analysis.Forecast, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: history and %d-period forecast", metric, len(forecast.Points))
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Value (USD millions)"
	p.Legend.Top = true

	history := make(plotter.XYs, len(years))
	for i := range years {
		history[i].X = float64(years[i])
		history[i].Y = values[i]
	}
	historyLine, err := plotter.NewLine(history)
	if err != nil {
		return fmt.Errorf("failed to build history line: %w", err)
	}
	historyLine.Color = plotutil.Color(0)
	p.Add(historyLine)
	p.Legend.Add("observed", historyLine)

	lastYear := float64(years[len(years)-1])
	point := make(plotter.XYs, len(forecast.Points))
	lower := make(plotter.XYs, len(forecast.Points))
	upper := make(plotter.XYs, len(forecast.Points))
	for i, fp := range forecast.Points {
		x := lastYear + float64(fp.Period)
		point[i] = plotter.XY{X: x, Y: fp.Point}
		lower[i] = plotter.XY{X: x, Y: fp.Lower}
		upper[i] = plotter.XY{X: x, Y: fp.Upper}
	}

	pointLine, err := plotter.NewLine(point)
	if err != nil {
		return fmt.Errorf("failed to build forecast line: %w", err)
	}
	pointLine.Color = plotutil.Color(1)
	p.Add(pointLine)
	p.Legend.Add("forecast", pointLine)

	for _, bound := range []plotter.XYs{lower, upper} {
		boundLine, err := plotter.NewLine(bound)
		if err != nil {
			return fmt.Errorf("failed to build interval bound: %w", err)
		}
		boundLine.Color = plotutil.Color(1)
		boundLine.Dashes = plotutil.Dashes(1)
		p.Add(boundLine)
	}

	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("failed to save forecast plot: %w", err)
	}
	return nil
}
