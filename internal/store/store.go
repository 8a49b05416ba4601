// Package store defines the result store contract: persistence of
// scenarios, goals, and run results, plus age-bounded retention.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cashflow-engine/internal/model"
)

// Retention bounds for cleanup thresholds, inclusive.
const (
	MinRetentionDays = 1
	MaxRetentionDays = 365
)

// RetentionRangeError rejects a cleanup threshold outside
// [MinRetentionDays, MaxRetentionDays]. Out-of-range thresholds are
// rejected outright, never clamped.
type RetentionRangeError struct {
	Days int
}

func (e *RetentionRangeError) Error() string {
	return fmt.Sprintf("olderThanDays must be between %d and %d, got %d", MinRetentionDays, MaxRetentionDays, e.Days)
}

// ValidateRetentionDays checks a cleanup threshold before any
// deletion runs.
func ValidateRetentionDays(days int) error {
	if days < MinRetentionDays || days > MaxRetentionDays {
		return &RetentionRangeError{Days: days}
	}
	return nil
}

// RunResult is one persisted engine run, keyed by scenario id and
// run timestamp.
type RunResult struct {
	ID                   string          `json:"id"`
	ScenarioID           string          `json:"scenario_id"`
	Trials               int             `json:"trials"`
	Seed                 uint64          `json:"seed"`
	SuccessProbability   float64         `json:"success_probability"`
	ShortfallRisk        float64         `json:"shortfall_risk"`
	SustainabilityRating string          `json:"sustainability_rating"`
	Summary              json.RawMessage `json:"summary,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// Store persists engine inputs and outputs. A scenario owns its
// projection rows (deleted together); goals reference scenarios
// weakly and are detached, never deleted, when a scenario goes.
type Store interface {
	SaveScenario(ctx context.Context, scenario *model.CashFlowScenario, rows []model.CashFlowProjection) error
	GetScenario(ctx context.Context, scenarioID string) (*model.CashFlowScenario, error)
	DeleteScenario(ctx context.Context, scenarioID string) error

	SaveGoal(ctx context.Context, goal *model.ClientGoal) error
	ListGoals(ctx context.Context, scenarioID string) ([]model.ClientGoal, error)

	SaveRunResult(ctx context.Context, result *RunResult) error
	ListRunResults(ctx context.Context, scenarioID string) ([]RunResult, error)

	// CleanupOlderThan deletes run results older than the given number
	// of days and returns the exact deleted row count. It validates
	// the threshold before touching the store and is safe to retry.
	CleanupOlderThan(ctx context.Context, days int) (int64, error)

	Close() error
}
