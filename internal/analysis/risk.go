package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"trade-analytics-go/internal/database"
	"trade-analytics-go/internal/models"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gorm.io/gorm"
)

// Risk level labels, assigned by relative rank.
const (
	RiskLevelLow    = "Low Risk"
	RiskLevelMedium = "Medium Risk"
	RiskLevelHigh   = "High Risk"
)

// RiskAssessment is the scored output for one country. TradeVolatility and
// EnvironmentalRisk are NaN when their inputs are undefined (zero mean
// trade, no environmental rows); CompositeRisk is always in [0, 100] when
// defined.
type RiskAssessment struct {
	CountryID         uint
	Country           string
	MeanTrade         float64
	TradeVolatility   float64
	EnvironmentalRisk float64
	CompositeRisk     float64
	Level             string
}

// HasVolatility reports whether the volatility input was defined.
func (a RiskAssessment) HasVolatility() bool {
	return !math.IsNaN(a.TradeVolatility)
}

// HasEnvironmental reports whether environmental inputs were available.
func (a RiskAssessment) HasEnvironmental() bool {
	return !math.IsNaN(a.EnvironmentalRisk)
}

// RiskEngine blends trade volatility with environmental risk into a
// composite score.
type RiskEngine struct {
	logger           *zap.Logger
	volatilityWeight float64
	envWeight        float64
}

// NewRiskEngine creates a risk engine with the given blend weights.
// Weights of 0.5/0.5 reproduce the documented composite formula.
func NewRiskEngine(logger *zap.Logger, volatilityWeight, envWeight float64) *RiskEngine {
	return &RiskEngine{
		logger:           logger,
		volatilityWeight: volatilityWeight,
		envWeight:        envWeight,
	}
}

// TradeVolatility is the coefficient of variation of a trade series as a
// percentage: stddev / mean * 100. NaN when the mean is zero or the series
// has fewer than two points.
func TradeVolatility(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	mean := stat.Mean(values, nil)
	if mean == 0 {
		return math.NaN()
	}
	return stat.StdDev(values, nil) / mean * 100
}

// EnvironmentalRisk weights carbon intensity against total footprint:
// intensity*0.4 + footprint/100*0.6.
func EnvironmentalRisk(carbonIntensity, carbonFootprint float64) float64 {
	return carbonIntensity*0.4 + carbonFootprint/100*0.6
}

// Assess scores every country with a trade series, ranked by composite
// risk descending. Countries without environmental rows degrade to a
// volatility-only composite; that degradation is logged because the
// documented formula requires both inputs.
func (e *RiskEngine) Assess(series []CountrySeries, env []database.EnvironmentalRow) []RiskAssessment {
	envByCountry := make(map[uint]database.EnvironmentalRow, len(env))
	for _, row := range env {
		envByCountry[row.CountryID] = row
	}

	assessments := make([]RiskAssessment, 0, len(series))
	for _, s := range series {
		assessment := RiskAssessment{
			CountryID:       s.CountryID,
			Country:         s.Country,
			MeanTrade:       stat.Mean(s.Values, nil),
			TradeVolatility: TradeVolatility(s.Values),
		}

		if row, ok := envByCountry[s.CountryID]; ok {
			assessment.EnvironmentalRisk = EnvironmentalRisk(row.CarbonIntensity, row.CarbonFootprint)
		} else {
			assessment.EnvironmentalRisk = math.NaN()
			e.logger.Warn("No environmental metrics for country, composite degrades to trade volatility only",
				zap.String("country", s.Country),
			)
		}

		assessment.CompositeRisk = e.composite(assessment)
		assessments = append(assessments, assessment)
	}

	sort.Slice(assessments, func(i, j int) bool {
		ci, cj := assessments[i].CompositeRisk, assessments[j].CompositeRisk
		// NaN composites sink to the bottom of the ranking.
		if math.IsNaN(ci) != math.IsNaN(cj) {
			return math.IsNaN(cj)
		}
		if ci != cj {
			return ci > cj
		}
		return assessments[i].Country < assessments[j].Country
	})

	assignLevels(assessments)
	return assessments
}

// PersistScores appends the defined scores of one assessment run to the
// risk_scores table. Undefined (NaN) scores are not rows.
func (e *RiskEngine) PersistScores(db *gorm.DB, assessments []RiskAssessment, assessedAt time.Time) error {
	var scores []models.RiskScore
	for _, a := range assessments {
		if a.HasVolatility() {
			scores = append(scores, models.RiskScore{
				CountryID:  a.CountryID,
				RiskType:   models.RiskTypeTrade,
				Score:      clamp(a.TradeVolatility, 0, 100),
				AssessedAt: assessedAt,
			})
		}
		if !math.IsNaN(a.CompositeRisk) {
			scores = append(scores, models.RiskScore{
				CountryID:  a.CountryID,
				RiskType:   models.RiskTypeComposite,
				Score:      a.CompositeRisk,
				AssessedAt: assessedAt,
			})
		}
	}
	if len(scores) == 0 {
		return nil
	}
	if err := db.Create(&scores).Error; err != nil {
		return fmt.Errorf("failed to persist risk scores: %w", err)
	}
	e.logger.Info("Persisted risk scores", zap.Int("count", len(scores)))
	return nil
}

// composite blends the defined inputs and clamps to [0, 100]. The cap is a
// clamp, not a rescale.
func (e *RiskEngine) composite(a RiskAssessment) float64 {
	switch {
	case !a.HasVolatility() && !a.HasEnvironmental():
		return math.NaN()
	case !a.HasEnvironmental():
		return clamp(a.TradeVolatility, 0, 100)
	case !a.HasVolatility():
		return clamp(a.EnvironmentalRisk, 0, 100)
	default:
		return clamp(e.volatilityWeight*a.TradeVolatility+e.envWeight*a.EnvironmentalRisk, 0, 100)
	}
}

// assignLevels labels ranked assessments by relative thirds: the top third
// of composite scores is high risk, the bottom third low.
func assignLevels(ranked []RiskAssessment) {
	n := len(ranked)
	if n == 0 {
		return
	}
	highCut := n / 3
	lowCut := n - n/3
	for i := range ranked {
		switch {
		case math.IsNaN(ranked[i].CompositeRisk):
			ranked[i].Level = ""
		case i < highCut || n < 3:
			// With fewer than three countries every defined score is
			// reported as high to keep the ranking conservative.
			ranked[i].Level = RiskLevelHigh
		case i >= lowCut:
			ranked[i].Level = RiskLevelLow
		default:
			ranked[i].Level = RiskLevelMedium
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
