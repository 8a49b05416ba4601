// Package engine orchestrates projection and simulation runs: input
// validation, assumption resolution, execution, summarization, and
// result persistence.
package engine

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"cashflow-engine/internal/analyzer"
	"cashflow-engine/internal/assumptions"
	"cashflow-engine/internal/model"
	"cashflow-engine/internal/montecarlo"
	"cashflow-engine/internal/projector"
	"cashflow-engine/internal/store"
)

// Engine wires the projector, Monte Carlo runner, and result store.
// The store is optional: a nil store disables persistence.
type Engine struct {
	Store         store.Store
	DefaultTrials int
	Workers       int
}

func New(st store.Store, defaultTrials, workers int) *Engine {
	if defaultTrials == 0 {
		defaultTrials = 1000
	}
	return &Engine{Store: st, DefaultTrials: defaultTrials, Workers: workers}
}

// RunProjection produces the deterministic base projection for a
// scenario. Invalid scenarios are rejected with a *ValidationError
// before any projection runs.
func (e *Engine) RunProjection(ctx context.Context, req *model.ProjectionRequest) (*model.ProjectionResponse, error) {
	start := time.Now()

	scenario := req.Scenario
	msgs := scenario.Validate()
	if model.HasCritical(msgs) {
		return nil, validationError(msgs)
	}

	set := assumptions.ForScenario(&scenario)
	rows := projector.Project(&scenario, set)

	if age := projector.DepletionAge(rows); age != nil {
		msgs = append(msgs, model.CalculationMessage{
			Level:   model.LevelWarning,
			Code:    "FUND_DEPLETION",
			Message: fmt.Sprintf("Assets deplete at age %d", *age),
		})
	}

	summary := analyzer.SummarizeProjection(rows)

	if req.Persist && e.Store != nil {
		if err := e.Store.SaveScenario(ctx, &scenario, rows); err != nil {
			return nil, fmt.Errorf("save scenario: %w", err)
		}
	}

	return &model.ProjectionResponse{
		Metadata: runMetadata(scenario.ID, start),
		Messages: numberMessages(msgs),
		Summary: model.ScenarioSummary{
			Scenario:           scenario,
			Projections:        rows,
			Goals:              req.Goals,
			TotalProjectedFund: summary.TotalProjectedFund,
			SuccessProbability: summary.SuccessProbability,
			ShortfallRisk:      summary.ShortfallRisk,
		},
	}, nil
}

// RunSimulation executes a Monte Carlo run and, when requested,
// persists the run result. Store failures are surfaced, never
// dropped.
func (e *Engine) RunSimulation(ctx context.Context, req *model.SimulationRequest) (*model.SimulationResponse, error) {
	start := time.Now()

	scenario := req.Scenario
	msgs := scenario.Validate()
	if model.HasCritical(msgs) {
		return nil, validationError(msgs)
	}

	trials := req.Trials
	if trials == 0 {
		trials = e.DefaultTrials
	}

	set := assumptions.ForScenario(&scenario)
	baseRows := projector.Project(&scenario, set)

	result, err := montecarlo.Run(ctx, &scenario, set, req.Goals, montecarlo.Options{
		Trials:  trials,
		Seed:    req.Seed,
		Workers: e.Workers,
	})
	if err != nil {
		return nil, err
	}

	summary := analyzer.SummarizeSimulation(baseRows, result)
	goals := analyzer.ApplyGoalResults(req.Goals, result.GoalResults)

	if result.DepletedTrials > 0 {
		msgs = append(msgs, model.CalculationMessage{
			Level:   model.LevelWarning,
			Code:    "FUND_DEPLETION",
			Message: fmt.Sprintf("%d of %d trials deplete before life expectancy", result.DepletedTrials, result.Trials),
		})
	}

	resp := &model.SimulationResponse{
		Metadata:           runMetadata(scenario.ID, start),
		Messages:           numberMessages(msgs),
		Trials:             result.Trials,
		Seed:               result.Seed,
		SuccessProbability: result.SuccessProbability,
		ShortfallRisk:      result.ShortfallRisk,
		DepletedTrials:     result.DepletedTrials,
		Bands:              result.Bands,
		Goals:              goals,
		Summary:            summary,
	}

	if req.Persist && e.Store != nil {
		payload, err := json.Marshal(summary)
		if err != nil {
			return nil, fmt.Errorf("marshal summary: %w", err)
		}
		if err := e.Store.SaveRunResult(ctx, &store.RunResult{
			ID:                   resp.Metadata.RunID,
			ScenarioID:           scenario.ID,
			Trials:               result.Trials,
			Seed:                 result.Seed,
			SuccessProbability:   result.SuccessProbability,
			ShortfallRisk:        result.ShortfallRisk,
			SustainabilityRating: summary.SustainabilityRating,
			Summary:              payload,
		}); err != nil {
			return nil, fmt.Errorf("save run result: %w", err)
		}
	}

	return resp, nil
}

// Cleanup runs the retention maintenance operation against the store.
func (e *Engine) Cleanup(ctx context.Context, days int) (*model.CleanupResponse, error) {
	if e.Store == nil {
		return nil, fmt.Errorf("no result store configured")
	}
	deleted, err := e.Store.CleanupOlderThan(ctx, days)
	if err != nil {
		return nil, err
	}
	return &model.CleanupResponse{
		DeletedCount:  deleted,
		OlderThanDays: days,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func runMetadata(scenarioID string, start time.Time) model.RunMetadata {
	elapsed := time.Since(start)
	now := time.Now().UTC()
	return model.RunMetadata{
		RunID:          uuid.New().String(),
		ScenarioID:     scenarioID,
		RunStartedAt:   now.Add(-elapsed).Format(time.RFC3339),
		RunCompletedAt: now.Format(time.RFC3339),
		RunDurationMs:  elapsed.Milliseconds(),
		RunOutcome:     model.OutcomeSuccess,
	}
}

func numberMessages(msgs []model.CalculationMessage) []model.CalculationMessage {
	if msgs == nil {
		return []model.CalculationMessage{}
	}
	for i := range msgs {
		msgs[i].ID = i
	}
	return msgs
}

func validationError(msgs []model.CalculationMessage) error {
	var critical []model.CalculationMessage
	for _, m := range msgs {
		if m.Level == model.LevelCritical {
			critical = append(critical, m)
		}
	}
	return &model.ValidationError{Messages: critical}
}
