package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestForecastReturnsFullHorizon(t *testing.T) {
	forecaster := NewForecaster(zap.NewNop(), 3)
	series := []float64{100, 105, 103, 108, 110, 107, 112}

	fc, err := forecaster.Forecast("total trade", series)

	assert.NoError(t, err)
	assert.Len(t, fc.Points, 3)
	for i, p := range fc.Points {
		assert.Equal(t, i+1, p.Period)
		assert.LessOrEqual(t, p.Lower, p.Point)
		assert.LessOrEqual(t, p.Point, p.Upper)
		// Intervals are bands, never a single point.
		assert.Less(t, p.Lower, p.Upper)
	}
}

func TestForecastMinimalSeries(t *testing.T) {
	forecaster := NewForecaster(zap.NewNop(), 3)

	fc, err := forecaster.Forecast("short", []float64{100, 102, 101})

	assert.NoError(t, err)
	assert.Len(t, fc.Points, 3)
}

func TestForecastTooShortSeries(t *testing.T) {
	forecaster := NewForecaster(zap.NewNop(), 3)

	fc, err := forecaster.Forecast("tiny", []float64{100, 101})

	assert.Nil(t, fc)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestForecastConstantSeries(t *testing.T) {
	forecaster := NewForecaster(zap.NewNop(), 2)

	fc, err := forecaster.Forecast("flat", []float64{500, 500, 500, 500})

	assert.NoError(t, err)
	assert.Len(t, fc.Points, 2)
	for _, p := range fc.Points {
		assert.InDelta(t, 500, p.Point, 1e-6)
		// Even a perfectly flat history keeps a non-degenerate interval.
		assert.Less(t, p.Lower, p.Upper)
	}
}

func TestForecastDifferencesTrendedSeries(t *testing.T) {
	forecaster := NewForecaster(zap.NewNop(), 3)
	// Strictly increasing with a constant step of 10.
	series := []float64{100, 110, 120, 130, 140, 150}

	fc, err := forecaster.Forecast("trended", series)

	assert.NoError(t, err)
	assert.True(t, fc.Differenced)
	// The projection should keep climbing rather than revert to the mean
	// of the levels.
	assert.Greater(t, fc.Points[0].Point, 150.0)
	assert.Greater(t, fc.Points[2].Point, fc.Points[0].Point)
}

func TestForecastIntervalsWiden(t *testing.T) {
	forecaster := NewForecaster(zap.NewNop(), 3)
	series := []float64{100, 108, 95, 112, 99, 115, 104, 118}

	fc, err := forecaster.Forecast("noisy", series)

	assert.NoError(t, err)
	prevWidth := 0.0
	for _, p := range fc.Points {
		width := p.Upper - p.Lower
		assert.GreaterOrEqual(t, width, prevWidth)
		prevWidth = width
	}
}

func TestIsMonotone(t *testing.T) {
	assert.True(t, isMonotone([]float64{1, 2, 3}))
	assert.True(t, isMonotone([]float64{3, 2, 1}))
	assert.False(t, isMonotone([]float64{1, 3, 2}))
	assert.False(t, isMonotone([]float64{1, 1, 2}))
}
