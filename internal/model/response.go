package model

// RunMetadata describes one engine invocation.
type RunMetadata struct {
	RunID          string `json:"run_id"`
	ScenarioID     string `json:"scenario_id"`
	RunStartedAt   string `json:"run_started_at"`
	RunCompletedAt string `json:"run_completed_at"`
	RunDurationMs  int64  `json:"run_duration_ms"`
	RunOutcome     string `json:"run_outcome"`
}

const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)

// ProjectionResponse wraps a deterministic base projection.
type ProjectionResponse struct {
	Metadata RunMetadata          `json:"run_metadata"`
	Messages []CalculationMessage `json:"messages"`
	Summary  ScenarioSummary      `json:"summary"`
}

// SimulationResponse wraps a Monte Carlo run.
type SimulationResponse struct {
	Metadata           RunMetadata          `json:"run_metadata"`
	Messages           []CalculationMessage `json:"messages"`
	Trials             int                  `json:"trials"`
	Seed               uint64               `json:"seed"`
	SuccessProbability float64              `json:"successProbability"`
	ShortfallRisk      float64              `json:"shortfallRisk"`
	DepletedTrials     int                  `json:"depletedTrials"`
	Bands              []PercentileBand     `json:"bands"`
	Goals              []ClientGoal         `json:"goals,omitempty"`
	Summary            ProjectionSummary    `json:"summary"`
}

// CleanupResponse reports a retention maintenance run.
type CleanupResponse struct {
	DeletedCount  int64  `json:"deletedCount"`
	OlderThanDays int    `json:"olderThanDays"`
	Timestamp     string `json:"timestamp"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
