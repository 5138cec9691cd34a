package analysis

import (
	"sort"

	"trade-analytics-go/internal/database"
	"trade-analytics-go/internal/models"

	"gonum.org/v1/gonum/stat"
)

// TradeSummary is one aggregated (country, year) row: flow totals with the
// derived balance. BalancePct is nil when the country-year has no trade at
// all, never a division by zero.
type TradeSummary struct {
	CountryID   uint
	Country     string
	Year        int
	TotalExport float64
	TotalImport float64
	Balance     float64
	BalancePct  *float64
}

// TotalTrade is the export+import volume of the summary row.
func (s TradeSummary) TotalTrade() float64 {
	return s.TotalExport + s.TotalImport
}

// Aggregate groups trade facts by (reporter country, year), sums value per
// flow and derives balance = export - import and balance_pct =
// balance / (export+import) * 100. The result is sorted by country name
// then year, so repeated runs over the same facts are identical.
func Aggregate(rows []database.TradeRow) []TradeSummary {
	type groupKey struct {
		countryID uint
		year      int
	}

	groups := make(map[groupKey]*TradeSummary)
	for _, row := range rows {
		key := groupKey{countryID: row.ReporterID, year: row.Year}
		summary, ok := groups[key]
		if !ok {
			summary = &TradeSummary{
				CountryID: row.ReporterID,
				Country:   row.Reporter,
				Year:      row.Year,
			}
			groups[key] = summary
		}
		switch row.Flow {
		case models.FlowExport:
			summary.TotalExport += row.ValueUSD
		case models.FlowImport:
			summary.TotalImport += row.ValueUSD
		}
	}

	summaries := make([]TradeSummary, 0, len(groups))
	for _, summary := range groups {
		summary.Balance = summary.TotalExport - summary.TotalImport
		if total := summary.TotalExport + summary.TotalImport; total != 0 {
			pct := summary.Balance / total * 100
			summary.BalancePct = &pct
		}
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Country != summaries[j].Country {
			return summaries[i].Country < summaries[j].Country
		}
		return summaries[i].Year < summaries[j].Year
	})
	return summaries
}

// CountrySeries is the year-ordered total-trade history of one country, the
// input of the volatility and forecast computations.
type CountrySeries struct {
	CountryID uint
	Country   string
	Years     []int
	Values    []float64
}

// TotalTradeSeries extracts the per-country total-trade time series from
// aggregated summaries, each ordered by year.
func TotalTradeSeries(summaries []TradeSummary) []CountrySeries {
	byCountry := make(map[uint]*CountrySeries)
	for _, summary := range summaries {
		series, ok := byCountry[summary.CountryID]
		if !ok {
			series = &CountrySeries{CountryID: summary.CountryID, Country: summary.Country}
			byCountry[summary.CountryID] = series
		}
		series.Years = append(series.Years, summary.Year)
		series.Values = append(series.Values, summary.TotalTrade())
	}

	result := make([]CountrySeries, 0, len(byCountry))
	for _, series := range byCountry {
		result = append(result, *series)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Country < result[j].Country })
	return result
}

// AnnualTotals sums a metric across all countries per year, ordered by
// year. The selector picks exports, imports, or any other summary field.
func AnnualTotals(summaries []TradeSummary, selector func(TradeSummary) float64) (years []int, values []float64) {
	byYear := make(map[int]float64)
	for _, summary := range summaries {
		byYear[summary.Year] += selector(summary)
	}
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)
	values = make([]float64, len(years))
	for i, year := range years {
		values[i] = byYear[year]
	}
	return years, values
}

// TopTrader is a country ranked by its mean total trade.
type TopTrader struct {
	Country   string
	MeanTrade float64
}

// TopTraders ranks countries by mean total trade, descending, returning at
// most n entries.
func TopTraders(summaries []TradeSummary, n int) []TopTrader {
	byCountry := make(map[string][]float64)
	for _, summary := range summaries {
		byCountry[summary.Country] = append(byCountry[summary.Country], summary.TotalTrade())
	}

	traders := make([]TopTrader, 0, len(byCountry))
	for country, totals := range byCountry {
		traders = append(traders, TopTrader{Country: country, MeanTrade: stat.Mean(totals, nil)})
	}
	sort.Slice(traders, func(i, j int) bool {
		if traders[i].MeanTrade != traders[j].MeanTrade {
			return traders[i].MeanTrade > traders[j].MeanTrade
		}
		return traders[i].Country < traders[j].Country
	})
	if len(traders) > n {
		traders = traders[:n]
	}
	return traders
}
