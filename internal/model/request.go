package model

// ProjectionRequest asks for a single deterministic base projection.
type ProjectionRequest struct {
	Scenario CashFlowScenario `json:"scenario"`
	Goals    []ClientGoal     `json:"goals,omitempty"`
	Persist  bool             `json:"persist,omitempty"`
}

// SimulationRequest asks for a Monte Carlo run. Trials of 0 means the
// server default; Seed of 0 means a non-deterministic seed.
type SimulationRequest struct {
	Scenario CashFlowScenario `json:"scenario"`
	Goals    []ClientGoal     `json:"goals,omitempty"`
	Trials   int              `json:"trials,omitempty"`
	Seed     uint64           `json:"seed,omitempty"`
	Persist  bool             `json:"persist,omitempty"`
}

// CleanupRequest is the retention maintenance payload.
type CleanupRequest struct {
	OlderThanDays int `json:"olderThanDays"`
}
