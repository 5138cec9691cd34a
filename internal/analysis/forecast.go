package analysis

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInsufficientData labels modeling skips: the series is too short or
// the fit is degenerate. Callers log a warning and mark the output as
// missing instead of failing the run.
var ErrInsufficientData = errors.New("insufficient data for model")

// ForecastPoint is one projected period with its confidence interval.
// The invariant Lower <= Point <= Upper always holds.
type ForecastPoint struct {
	Period int // 1-based offset from the last observed period
	Point  float64
	Lower  float64
	Upper  float64
}

// Forecast is the fixed-horizon projection of one metric.
type Forecast struct {
	Metric      string
	Order       int  // selected autoregressive order
	Differenced bool // model was fit on first differences
	Points      []ForecastPoint
}

// Forecaster fits an automatic order-selected autoregressive model per
// metric and projects a fixed horizon ahead.
type Forecaster struct {
	logger  *zap.Logger
	horizon int
	level   float64 // confidence level for intervals
}

// NewForecaster creates a forecaster with the given horizon and 95%
// intervals.
func NewForecaster(logger *zap.Logger, horizon int) *Forecaster {
	return &Forecaster{logger: logger, horizon: horizon, level: 0.95}
}

const maxAROrder = 4

// Forecast projects the metric's series. Series shorter than three points
// are an ErrInsufficientData skip; arithmetic edge cases inside the fit
// never panic.
func (f *Forecaster) Forecast(metric string, series []float64) (*Forecast, error) {
	if len(series) < 3 {
		return nil, fmt.Errorf("%w: %q has %d observations, need at least 3",
			ErrInsufficientData, metric, len(series))
	}

	// Annual macro series are usually trended; a strictly monotone series
	// is differenced once before the AR fit.
	work := series
	differenced := isMonotone(series)
	if differenced {
		work = diff(series)
	}

	model, err := fitAR(work)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInsufficientData, metric, err)
	}

	f.logger.Debug("Fitted forecast model",
		zap.String("metric", metric),
		zap.Int("order", model.order),
		zap.Bool("differenced", differenced),
	)

	points := f.project(series, work, model, differenced)
	return &Forecast{
		Metric:      metric,
		Order:       model.order,
		Differenced: differenced,
		Points:      points,
	}, nil
}

type arModel struct {
	order     int
	intercept float64
	phi       []float64 // lag coefficients, phi[0] is lag 1
	sigma2    float64   // residual variance
}

// fitAR selects the order p in [0, maxAROrder] minimizing AIC over
// least-squares fits with intercept. Orders that leave fewer rows than
// parameters plus one are not candidates.
func fitAR(series []float64) (*arModel, error) {
	var best *arModel
	bestAIC := math.Inf(1)

	for p := 0; p <= maxAROrder; p++ {
		rows := len(series) - p
		params := p + 1
		if rows < params+1 {
			break
		}

		model, rss, err := fitAROrder(series, p)
		if err != nil {
			continue
		}

		n := float64(rows)
		// Guard the log for an exact fit; such a model is overfit and
		// must not win on AIC.
		if rss <= 0 {
			continue
		}
		aic := n*math.Log(rss/n) + 2*float64(params)
		if aic < bestAIC {
			bestAIC = aic
			best = model
		}
	}

	if best == nil {
		// Fall back to the mean model even when its residuals are zero:
		// a constant series still gets a forecast, with a floored
		// variance so the interval stays a band.
		model, rss, err := fitAROrder(series, 0)
		if err != nil {
			return nil, err
		}
		model.sigma2 = varianceFloor(rss/float64(len(series)), series)
		return model, nil
	}
	best.sigma2 = varianceFloor(best.sigma2, series)
	return best, nil
}

// fitAROrder runs least squares of x_t on (1, x_{t-1}..x_{t-p}).
func fitAROrder(series []float64, p int) (*arModel, float64, error) {
	rows := len(series) - p
	if rows <= 0 {
		return nil, 0, fmt.Errorf("order %d exceeds series length %d", p, len(series))
	}

	if p == 0 {
		mean := stat.Mean(series, nil)
		rss := 0.0
		for _, v := range series {
			rss += (v - mean) * (v - mean)
		}
		return &arModel{order: 0, intercept: mean, sigma2: rss / float64(rows)}, rss, nil
	}

	design := mat.NewDense(rows, p+1, nil)
	response := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		design.Set(i, 0, 1)
		for lag := 1; lag <= p; lag++ {
			design.Set(i, lag, series[p+i-lag])
		}
		response.SetVec(i, series[p+i])
	}

	var qr mat.QR
	qr.Factorize(design)
	var coeffs mat.VecDense
	if err := qr.SolveVecTo(&coeffs, false, response); err != nil {
		return nil, 0, fmt.Errorf("lag matrix is rank deficient: %v", err)
	}

	model := &arModel{order: p, intercept: coeffs.AtVec(0), phi: make([]float64, p)}
	for lag := 1; lag <= p; lag++ {
		model.phi[lag-1] = coeffs.AtVec(lag)
	}

	rss := 0.0
	for i := 0; i < rows; i++ {
		fitted := model.intercept
		for lag := 1; lag <= p; lag++ {
			fitted += model.phi[lag-1] * series[p+i-lag]
		}
		residual := series[p+i] - fitted
		rss += residual * residual
	}
	model.sigma2 = rss / float64(rows)
	return model, rss, nil
}

// project iterates the fitted model over the horizon. Interval widths grow
// with the accumulated psi weights of the AR recursion; a differenced
// model forecasts changes and cumulates them back to levels.
func (f *Forecaster) project(levels, work []float64, model *arModel, differenced bool) []ForecastPoint {
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.5 + f.level/2)

	// Extend the working series with its own forecasts step by step.
	extended := append([]float64(nil), work...)
	psi := psiWeights(model, f.horizon)

	lastLevel := levels[len(levels)-1]
	points := make([]ForecastPoint, 0, f.horizon)
	variance := 0.0
	cumulative := 0.0

	for h := 1; h <= f.horizon; h++ {
		next := model.intercept
		for lag := 1; lag <= model.order; lag++ {
			next += model.phi[lag-1] * extended[len(extended)-lag]
		}
		extended = append(extended, next)

		if differenced {
			cumulative += next
			// Level variance accumulates the partial sums of psi weights.
			sum := 0.0
			for j := 0; j < h; j++ {
				sum += psi[j]
			}
			variance += sum * sum * model.sigma2
		} else {
			variance += psi[h-1] * psi[h-1] * model.sigma2
		}

		point := next
		if differenced {
			point = lastLevel + cumulative
		}
		half := z * math.Sqrt(variance)
		points = append(points, ForecastPoint{
			Period: h,
			Point:  point,
			Lower:  point - half,
			Upper:  point + half,
		})
	}
	return points
}

// psiWeights expands the AR polynomial into moving-average weights:
// psi_0 = 1, psi_j = sum phi_i * psi_{j-i}.
func psiWeights(model *arModel, horizon int) []float64 {
	psi := make([]float64, horizon)
	if horizon == 0 {
		return psi
	}
	psi[0] = 1
	for j := 1; j < horizon; j++ {
		for i := 1; i <= model.order && i <= j; i++ {
			psi[j] += model.phi[i-1] * psi[j-i]
		}
	}
	return psi
}

// varianceFloor keeps the residual variance strictly positive so forecast
// intervals never collapse to a point.
func varianceFloor(sigma2 float64, series []float64) float64 {
	scale := 0.0
	for _, v := range series {
		scale += math.Abs(v)
	}
	scale /= float64(len(series))
	floor := 1e-6*scale*scale + 1e-12
	if sigma2 < floor {
		return floor
	}
	return sigma2
}

func isMonotone(series []float64) bool {
	increasing, decreasing := true, true
	for i := 1; i < len(series); i++ {
		if series[i] <= series[i-1] {
			increasing = false
		}
		if series[i] >= series[i-1] {
			decreasing = false
		}
	}
	return increasing || decreasing
}

func diff(series []float64) []float64 {
	out := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		out[i-1] = series[i] - series[i-1]
	}
	return out
}
