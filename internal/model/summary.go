package model

// Sustainability ratings, best to worst. The numeric score bands are
// presentation-only and never feed back into simulation logic.
const (
	RatingExcellent = "Excellent"
	RatingGood      = "Good"
	RatingAdequate  = "Adequate"
	RatingPoor      = "Poor"
	RatingCritical  = "Critical"
)

var ratingScores = map[string]int{
	RatingExcellent: 90,
	RatingGood:      75,
	RatingAdequate:  55,
	RatingPoor:      35,
	RatingCritical:  15,
}

// RatingScore returns the presentation score band for a rating, or 0
// for an unknown rating.
func RatingScore(rating string) int {
	return ratingScores[rating]
}

// ProjectionSummary is the UI-facing reduction of a projection or
// trial ensemble.
type ProjectionSummary struct {
	SustainabilityRating string  `json:"sustainabilityRating"`
	SustainabilityScore  int     `json:"sustainabilityScore"`
	SuccessProbability   float64 `json:"successProbability"`
	ShortfallRisk        float64 `json:"shortfallRisk"`
	TotalProjectedFund   float64 `json:"totalProjectedFund"`
	DepletionAge         *int    `json:"depletionAge,omitempty"`
}

// ScenarioSummary aggregates one scenario with its full projection
// sequence and linked goals.
type ScenarioSummary struct {
	Scenario           CashFlowScenario     `json:"scenario"`
	Projections        []CashFlowProjection `json:"projections"`
	Goals              []ClientGoal         `json:"goals,omitempty"`
	TotalProjectedFund float64              `json:"totalProjectedFund"`
	SuccessProbability float64              `json:"successProbability"`
	ShortfallRisk      float64              `json:"shortfallRisk"`
}

// PercentileBand is one projection year's asset distribution across
// Monte Carlo trials, for the UI's fan chart.
type PercentileBand struct {
	Year int     `json:"year"`
	Age  int     `json:"age"`
	P10  float64 `json:"p10"`
	P50  float64 `json:"p50"`
	P90  float64 `json:"p90"`
}
