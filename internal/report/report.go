package report

import (
	"fmt"
	"html/template"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trade-analytics-go/internal/analysis"

	"go.uber.org/zap"
)

// KeyMetrics summarizes the dataset on the report header.
type KeyMetrics struct {
	Countries       int
	StartYear       int
	EndYear         int
	TotalTrade      float64
	ActiveSanctions int64
}

// ScenarioResult pairs a scenario with its projection for one country.
type ScenarioResult struct {
	Country    string
	Scenario   analysis.Scenario
	Projection []analysis.ProjectionPoint
}

// ForecastResult pairs a fitted forecast with the series it extends.
type ForecastResult struct {
	Series   analysis.CountrySeries
	Forecast *analysis.Forecast
}

// Data carries everything a single run renders. Nil or empty slices mean
// the corresponding stage produced nothing and the report marks it as
// not available instead of omitting the section.
type Data struct {
	GeneratedAt time.Time
	Metrics     KeyMetrics
	Summaries   []analysis.TradeSummary
	TopSeries   []analysis.CountrySeries
	Risk        []analysis.RiskAssessment
	Scenarios   []ScenarioResult
	Regressions []analysis.RegressionResult
	Forecasts   []ForecastResult

	// Pairwise indicator correlations, row-major over IndicatorNames.
	IndicatorNames []string
	Correlations   [][]float64
}

// Renderer writes the fixed output tree for one analysis run. Existing
// files are overwritten so repeated runs stay idempotent.
type Renderer struct {
	logger    *zap.Logger
	outputDir string
}

func NewRenderer(logger *zap.Logger, outputDir string) *Renderer {
	return &Renderer{logger: logger, outputDir: outputDir}
}

// Render writes plots/, reports/index.html and reports/models.txt under
// the output directory. Plot failures are logged and skipped so a broken
// chart never loses the tabular report.
func (r *Renderer) Render(data Data) error {
	plotsDir := filepath.Join(r.outputDir, "plots")
	reportsDir := filepath.Join(r.outputDir, "reports")
	for _, dir := range []string{plotsDir, reportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	r.renderPlots(data, plotsDir)

	if err := r.renderHTML(data, filepath.Join(reportsDir, "index.html")); err != nil {
		return err
	}
	if err := r.renderModels(data, filepath.Join(reportsDir, "models.txt")); err != nil {
		return err
	}
	r.logger.Info("report written", zap.String("dir", r.outputDir))
	return nil
}

func (r *Renderer) renderPlots(data Data, plotsDir string) {
	if len(data.TopSeries) > 0 {
		if err := tradeTrendPlot(data.TopSeries, filepath.Join(plotsDir, "trade_trends.png")); err != nil {
			r.logger.Warn("skipping trade trend plot", zap.Error(err))
		}
	}
	if len(data.Risk) > 0 {
		if err := riskScorePlot(data.Risk, filepath.Join(plotsDir, "risk_scores.png")); err != nil {
			r.logger.Warn("skipping risk plot", zap.Error(err))
		}
	}
	for _, fc := range data.Forecasts {
		if fc.Forecast == nil || len(fc.Series.Years) == 0 {
			continue
		}
		name := fmt.Sprintf("forecast_%s.png", slug(fc.Series.Country))
		err := forecastPlot(fc.Series.Country, fc.Series.Years, fc.Series.Values, fc.Forecast, filepath.Join(plotsDir, name))
		if err != nil {
			r.logger.Warn("skipping forecast plot", zap.String("country", fc.Series.Country), zap.Error(err))
		}
	}
}

func (r *Renderer) renderHTML(data Data, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// renderModels writes fitted model details in plain text so coefficients
// survive outside the HTML layout.
func (r *Renderer) renderModels(data Data, path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Model summary generated %s\n", data.GeneratedAt.Format(time.RFC3339))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(data.Regressions) == 0 {
		b.WriteString("Regressions: not available\n\n")
	}
	for _, reg := range data.Regressions {
		fmt.Fprintf(&b, "Regression: %s\n", reg.Name)
		if reg.Missing {
			note := reg.Note
			if note == "" {
				note = "insufficient complete cases"
			}
			fmt.Fprintf(&b, "  not available: %s\n\n", note)
			continue
		}
		fmt.Fprintf(&b, "  observations: %d\n", reg.N)
		fmt.Fprintf(&b, "  intercept: %.6f\n", reg.Intercept)
		for i, term := range reg.Terms {
			fmt.Fprintf(&b, "  %s: %.6f\n", term, reg.Coeffs[i])
		}
		fmt.Fprintf(&b, "  R-squared: %.4f\n\n", reg.R2)
	}

	if len(data.IndicatorNames) > 0 {
		b.WriteString("Indicator correlations:\n")
		for i, name := range data.IndicatorNames {
			fmt.Fprintf(&b, "  %s:", name)
			for j := range data.IndicatorNames {
				v := data.Correlations[i][j]
				if math.IsNaN(v) {
					b.WriteString(" n/a")
				} else {
					fmt.Fprintf(&b, " %+.3f", v)
				}
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(data.Forecasts) == 0 {
		b.WriteString("Forecasts: not available\n")
	}
	for _, fc := range data.Forecasts {
		if fc.Forecast == nil {
			fmt.Fprintf(&b, "Forecast: %s: not available (insufficient history)\n", fc.Series.Country)
			continue
		}
		fmt.Fprintf(&b, "Forecast: %s\n", fc.Series.Country)
		fmt.Fprintf(&b, "  AR order: %d, differenced: %t\n", fc.Forecast.Order, fc.Forecast.Differenced)
		for _, p := range fc.Forecast.Points {
			fmt.Fprintf(&b, "  period %d: %.2f [%.2f, %.2f]\n", p.Period, p.Point, p.Lower, p.Upper)
		}
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write model summary %s: %w", path, err)
	}
	return nil
}

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"usd": func(v float64) string {
		if math.IsNaN(v) {
			return "not available"
		}
		return fmt.Sprintf("$%.1fM", v)
	},
	"num": func(v float64) string {
		if math.IsNaN(v) {
			return "not available"
		}
		return fmt.Sprintf("%.2f", v)
	},
	"pct": func(v *float64) string {
		if v == nil {
			return "not available"
		}
		return fmt.Sprintf("%.2f%%", *v)
	},
}).Parse(reportHTML))

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Trade Analysis Report</title>
<style>
body { font-family: -apple-system, Helvetica, Arial, sans-serif; margin: 2rem auto; max-width: 64rem; color: #222; }
h1 { border-bottom: 2px solid #2c6e91; padding-bottom: .3rem; }
h2 { color: #2c6e91; margin-top: 2rem; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: .35rem .6rem; text-align: right; }
th { background: #eef4f8; }
td:first-child, th:first-child { text-align: left; }
.metrics { display: flex; gap: 2rem; flex-wrap: wrap; }
.metric { background: #eef4f8; padding: .8rem 1.2rem; border-radius: 6px; }
.metric b { display: block; font-size: 1.3rem; }
.na { color: #999; font-style: italic; }
.level-High { color: #b02a2a; font-weight: 600; }
.level-Medium { color: #b07a2a; }
.level-Low { color: #2a7a2a; }
</style>
</head>
<body>
<h1>Trade Analysis Report</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</p>

<h2>Key Metrics</h2>
<div class="metrics">
<div class="metric"><b>{{.Metrics.Countries}}</b>countries</div>
<div class="metric"><b>{{.Metrics.StartYear}}&ndash;{{.Metrics.EndYear}}</b>year range</div>
<div class="metric"><b>{{usd .Metrics.TotalTrade}}</b>total trade</div>
<div class="metric"><b>{{.Metrics.ActiveSanctions}}</b>active sanctions</div>
</div>

<h2>Trade Summary</h2>
{{if .Summaries}}
<table>
<tr><th>Country</th><th>Year</th><th>Exports</th><th>Imports</th><th>Balance</th><th>Balance %</th></tr>
{{range .Summaries}}
<tr><td>{{.Country}}</td><td>{{.Year}}</td><td>{{usd .TotalExport}}</td><td>{{usd .TotalImport}}</td><td>{{usd .Balance}}</td><td>{{pct .BalancePct}}</td></tr>
{{end}}
</table>
{{else}}<p class="na">Trade summary not available.</p>{{end}}

<h2>Risk Ranking</h2>
{{if .Risk}}
<table>
<tr><th>Country</th><th>Trade Volatility</th><th>Environmental Risk</th><th>Composite</th><th>Level</th></tr>
{{range .Risk}}
<tr><td>{{.Country}}</td><td>{{num .TradeVolatility}}</td><td>{{num .EnvironmentalRisk}}</td><td>{{num .CompositeRisk}}</td><td class="level-{{.Level}}">{{.Level}}</td></tr>
{{end}}
</table>
{{else}}<p class="na">Risk assessment not available.</p>{{end}}

<h2>Scenario Projections</h2>
{{if .Scenarios}}
{{range .Scenarios}}
<h3>{{.Country}}: {{.Scenario.Describe}}</h3>
<table>
<tr><th>Period</th><th>Projected Trade</th><th>Change vs. Baseline</th></tr>
{{range .Projection}}
<tr><td>+{{.Year}}</td><td>{{usd .Value}}</td><td>{{num .ChangePct}}%</td></tr>
{{end}}
</table>
{{end}}
{{else}}<p class="na">Scenario projections not available.</p>{{end}}

<h2>Forecasts</h2>
{{if .Forecasts}}
{{range .Forecasts}}
<h3>{{.Series.Country}}</h3>
{{if .Forecast}}
<table>
<tr><th>Period</th><th>Point</th><th>Lower 95%</th><th>Upper 95%</th></tr>
{{range .Forecast.Points}}
<tr><td>+{{.Period}}</td><td>{{usd .Point}}</td><td>{{usd .Lower}}</td><td>{{usd .Upper}}</td></tr>
{{end}}
</table>
{{else}}<p class="na">Forecast not available: insufficient history.</p>{{end}}
{{end}}
{{else}}<p class="na">Forecasts not available.</p>{{end}}

</body>
</html>
`
