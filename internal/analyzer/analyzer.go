// Package analyzer reduces projections and trial ensembles into
// sustainability ratings and UI-facing summaries. Ratings are
// presentation-only and never feed back into simulation logic.
package analyzer

import (
	"cashflow-engine/internal/model"
	"cashflow-engine/internal/montecarlo"
	"cashflow-engine/internal/projector"
)

// RateSuccessProbability maps a Monte Carlo success probability to a
// sustainability rating.
func RateSuccessProbability(p float64) string {
	switch {
	case p >= 0.90:
		return model.RatingExcellent
	case p >= 0.75:
		return model.RatingGood
	case p >= 0.55:
		return model.RatingAdequate
	case p >= 0.35:
		return model.RatingPoor
	default:
		return model.RatingCritical
	}
}

// RateSustainabilityRatio is the fallback rating when no Monte Carlo
// run is available, thresholded on the projection's minimum
// sustainability ratio.
func RateSustainabilityRatio(minRatio float64) string {
	switch {
	case minRatio >= 25:
		return model.RatingExcellent
	case minRatio >= 15:
		return model.RatingGood
	case minRatio >= 8:
		return model.RatingAdequate
	case minRatio >= 3:
		return model.RatingPoor
	default:
		return model.RatingCritical
	}
}

// MinSustainabilityRatio returns the lowest ratio across a
// projection, or 0 for an empty projection.
func MinSustainabilityRatio(rows []model.CashFlowProjection) float64 {
	if len(rows) == 0 {
		return 0
	}
	min := rows[0].SustainabilityRatio
	for _, row := range rows[1:] {
		if row.SustainabilityRatio < min {
			min = row.SustainabilityRatio
		}
	}
	return min
}

// TerminalFund returns the final year's total assets, or 0 for an
// empty projection.
func TerminalFund(rows []model.CashFlowProjection) float64 {
	if len(rows) == 0 {
		return 0
	}
	return rows[len(rows)-1].TotalAssets
}

// SummarizeProjection builds the summary for a base projection with
// no Monte Carlo ensemble behind it.
func SummarizeProjection(rows []model.CashFlowProjection) model.ProjectionSummary {
	rating := RateSustainabilityRatio(MinSustainabilityRatio(rows))
	summary := model.ProjectionSummary{
		SustainabilityRating: rating,
		SustainabilityScore:  model.RatingScore(rating),
		TotalProjectedFund:   TerminalFund(rows),
		DepletionAge:         projector.DepletionAge(rows),
	}
	if summary.DepletionAge == nil && len(rows) > 0 {
		summary.SuccessProbability = 1
	}
	return summary
}

// SummarizeSimulation builds the summary for a Monte Carlo run,
// rating on the ensemble's success probability. The base projection
// supplies the projected fund and depletion age.
func SummarizeSimulation(baseRows []model.CashFlowProjection, res *montecarlo.Result) model.ProjectionSummary {
	rating := RateSuccessProbability(res.SuccessProbability)
	return model.ProjectionSummary{
		SustainabilityRating: rating,
		SustainabilityScore:  model.RatingScore(rating),
		SuccessProbability:   res.SuccessProbability,
		ShortfallRisk:        res.ShortfallRisk,
		TotalProjectedFund:   TerminalFund(baseRows),
		DepletionAge:         projector.DepletionAge(baseRows),
	}
}

// ApplyGoalResults copies per-goal Monte Carlo probabilities onto the
// goals, leaving unevaluated goals untouched.
func ApplyGoalResults(goals []model.ClientGoal, results []montecarlo.GoalResult) []model.ClientGoal {
	byID := make(map[string]montecarlo.GoalResult, len(results))
	for _, gr := range results {
		byID[gr.GoalID] = gr
	}
	out := make([]model.ClientGoal, len(goals))
	for i, goal := range goals {
		out[i] = goal
		if gr, ok := byID[goal.ID]; ok && gr.Evaluated {
			p := gr.Probability
			out[i].ProbabilityOfSuccess = &p
		}
	}
	return out
}
