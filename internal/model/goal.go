package model

import "time"

const (
	PriorityEssential = "Essential"
	PriorityImportant = "Important"
	PriorityDesirable = "Desirable"
)

// ClientGoal is a savings target a client wants met by a given age.
// The scenario link is a weak reference: deleting a scenario detaches
// the goal, it never deletes it.
type ClientGoal struct {
	ID               string  `json:"id"`
	ClientID         string  `json:"client_id"`
	Name             string  `json:"name"`
	TargetAmount     float64 `json:"target_amount"`
	TargetAge        int     `json:"target_age"`
	Priority         string  `json:"priority"`
	LinkedScenarioID *string `json:"linked_scenario_id,omitempty"`

	// ProbabilityOfSuccess is populated by the Monte Carlo analysis
	// when the goal's target age falls within a projection.
	ProbabilityOfSuccess *float64 `json:"probability_of_success,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}
