package analysis

import (
	"testing"

	"trade-analytics-go/internal/database"

	"github.com/stretchr/testify/assert"
)

func sampleTradeRows() []database.TradeRow {
	return []database.TradeRow{
		{Year: 2021, ReporterID: 1, Reporter: "United States", Flow: "export", ValueUSD: 30000},
		{Year: 2021, ReporterID: 1, Reporter: "United States", Flow: "import", ValueUSD: 25000},
		{Year: 2022, ReporterID: 1, Reporter: "United States", Flow: "export", ValueUSD: 31000},
		{Year: 2022, ReporterID: 1, Reporter: "United States", Flow: "import", ValueUSD: 26000},
		{Year: 2021, ReporterID: 2, Reporter: "Germany", Flow: "export", ValueUSD: 18000},
		{Year: 2021, ReporterID: 2, Reporter: "Germany", Flow: "import", ValueUSD: 15000},
	}
}

func TestAggregateBalanceIdentity(t *testing.T) {
	summaries := Aggregate(sampleTradeRows())

	assert.Len(t, summaries, 3)
	for _, s := range summaries {
		// Balance must always equal exports minus imports exactly.
		assert.Equal(t, s.TotalExport-s.TotalImport, s.Balance, s.Country)
	}

	// Summaries are ordered by country then year.
	assert.Equal(t, "Germany", summaries[0].Country)
	assert.Equal(t, "United States", summaries[1].Country)
	assert.Equal(t, 2021, summaries[1].Year)
	assert.Equal(t, 2022, summaries[2].Year)
}

func TestAggregateBalancePct(t *testing.T) {
	summaries := Aggregate(sampleTradeRows())

	us2021 := summaries[1]
	assert.NotNil(t, us2021.BalancePct)
	// (30000 - 25000) / 55000 * 100
	assert.InDelta(t, 9.0909, *us2021.BalancePct, 0.001)
}

func TestAggregateZeroTotalTradeHasNilPct(t *testing.T) {
	rows := []database.TradeRow{
		{Year: 2021, ReporterID: 3, Reporter: "Atlantis", Flow: "export", ValueUSD: 0},
		{Year: 2021, ReporterID: 3, Reporter: "Atlantis", Flow: "import", ValueUSD: 0},
	}

	summaries := Aggregate(rows)

	assert.Len(t, summaries, 1)
	assert.Zero(t, summaries[0].Balance)
	// Division by a zero total is undefined, not zero.
	assert.Nil(t, summaries[0].BalancePct)
}

func TestAggregateIsDeterministic(t *testing.T) {
	rows := sampleTradeRows()

	first := Aggregate(rows)
	second := Aggregate(rows)

	assert.Equal(t, first, second)
}

func TestTotalTradeSeriesOrdersYears(t *testing.T) {
	series := TotalTradeSeries(Aggregate(sampleTradeRows()))

	assert.Len(t, series, 2)
	us := series[1]
	assert.Equal(t, "United States", us.Country)
	assert.Equal(t, []int{2021, 2022}, us.Years)
	assert.Equal(t, []float64{55000, 57000}, us.Values)
}

func TestTopTradersRanksByMeanTotal(t *testing.T) {
	top := TopTraders(Aggregate(sampleTradeRows()), 1)

	assert.Len(t, top, 1)
	assert.Equal(t, "United States", top[0].Country)
	assert.InDelta(t, 56000, top[0].MeanTrade, 1e-9)
}

func TestAnnualTotalsSumAcrossCountries(t *testing.T) {
	years, values := AnnualTotals(Aggregate(sampleTradeRows()), func(s TradeSummary) float64 {
		return s.TotalExport
	})

	assert.Equal(t, []int{2021, 2022}, years)
	assert.Equal(t, []float64{48000, 31000}, values)
}
