package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cashflow-engine/internal/model"
	"cashflow-engine/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testScenario(id string) *model.CashFlowScenario {
	return &model.CashFlowScenario{
		ID:              id,
		ClientID:        "cli-1",
		ScenarioType:    model.ScenarioBase,
		ProjectionYears: 30,
		ClientAge:       60,
		RetirementAge:   65,
		LifeExpectancy:  90,
	}
}

func TestSaveAndGetScenario(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	scenario := testScenario("scn-1")
	rows := []model.CashFlowProjection{
		{ScenarioID: "scn-1", Year: 1, Age: 61, TotalAssets: 360000},
		{ScenarioID: "scn-1", Year: 2, Age: 62, TotalAssets: 372000},
	}
	if err := s.SaveScenario(ctx, scenario, rows); err != nil {
		t.Fatalf("save scenario: %v", err)
	}

	got, err := s.GetScenario(ctx, "scn-1")
	if err != nil {
		t.Fatalf("get scenario: %v", err)
	}
	if got.ID != "scn-1" || got.LifeExpectancy != 90 {
		t.Fatalf("unexpected scenario: %+v", got)
	}
}

func TestDeleteScenarioDetachesGoals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveScenario(ctx, testScenario("scn-1"), nil); err != nil {
		t.Fatal(err)
	}

	scenarioID := "scn-1"
	goal := &model.ClientGoal{
		ID:               "goal-1",
		ClientID:         "cli-1",
		Name:             "House deposit",
		TargetAmount:     50000,
		TargetAge:        70,
		Priority:         model.PriorityImportant,
		LinkedScenarioID: &scenarioID,
	}
	if err := s.SaveGoal(ctx, goal); err != nil {
		t.Fatal(err)
	}

	goals, err := s.ListGoals(ctx, "scn-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != 1 {
		t.Fatalf("expected 1 linked goal, got %d", len(goals))
	}

	if err := s.DeleteScenario(ctx, "scn-1"); err != nil {
		t.Fatalf("delete scenario: %v", err)
	}

	// The goal survives, detached.
	goals, err = s.ListGoals(ctx, "scn-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != 0 {
		t.Fatalf("expected goal to be detached from deleted scenario, got %d", len(goals))
	}

	var count int
	if err := s.sqlDB.QueryRow(`SELECT COUNT(1) FROM goals WHERE id = 'goal-1' AND linked_scenario_id IS NULL`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatal("goal must survive scenario deletion with a null link")
	}

	if _, err := s.GetScenario(ctx, "scn-1"); err == nil {
		t.Fatal("expected scenario to be gone")
	}
}

func TestSaveAndListRunResults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	result := &store.RunResult{
		ID:                   "run-1",
		ScenarioID:           "scn-1",
		Trials:               1000,
		Seed:                 42,
		SuccessProbability:   0.87,
		ShortfallRisk:        0.1,
		SustainabilityRating: model.RatingGood,
		Summary:              []byte(`{"successProbability":0.87}`),
	}
	if err := s.SaveRunResult(ctx, result); err != nil {
		t.Fatalf("save run result: %v", err)
	}

	results, err := s.ListRunResults(ctx, "scn-1")
	if err != nil {
		t.Fatalf("list run results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	got := results[0]
	if got.Seed != 42 || got.SuccessProbability != 0.87 || got.SustainabilityRating != model.RatingGood {
		t.Fatalf("unexpected result: %+v", got)
	}
	if string(got.Summary) != `{"successProbability":0.87}` {
		t.Fatalf("unexpected summary payload: %s", got.Summary)
	}
}

func TestCleanupRangeValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, days := range []int{0, -5, 366, 1000} {
		_, err := s.CleanupOlderThan(ctx, days)
		if err == nil {
			t.Fatalf("expected rejection for olderThanDays=%d", days)
		}
		var rangeErr *store.RetentionRangeError
		if !errors.As(err, &rangeErr) {
			t.Fatalf("expected *RetentionRangeError for %d, got %T", days, err)
		}
	}

	// Bounds themselves are accepted.
	for _, days := range []int{1, 365} {
		if _, err := s.CleanupOlderThan(ctx, days); err != nil {
			t.Fatalf("olderThanDays=%d must be accepted: %v", days, err)
		}
	}
}

func TestCleanupDeletesExactlyExpiredRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	save := func(id string, age time.Duration) {
		t.Helper()
		err := s.SaveRunResult(ctx, &store.RunResult{
			ID:         id,
			ScenarioID: "scn-1",
			Trials:     500,
			CreatedAt:  now.Add(-age),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	save("run-old-1", 91*24*time.Hour)
	save("run-old-2", 120*24*time.Hour)
	save("run-boundary", 90*24*time.Hour)
	save("run-fresh", 10*24*time.Hour)

	deleted, err := s.CleanupOlderThan(ctx, 90)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected exactly 2 deleted rows, got %d", deleted)
	}

	// Idempotent: nothing new to delete on the second pass.
	deleted, err = s.CleanupOlderThan(ctx, 90)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 0 {
		t.Fatalf("expected 0 on repeat cleanup, got %d", deleted)
	}

	results, err := s.ListRunResults(ctx, "scn-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 surviving rows, got %d", len(results))
	}
	for _, r := range results {
		if r.ID == "run-old-1" || r.ID == "run-old-2" {
			t.Fatalf("expired row %s survived cleanup", r.ID)
		}
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}
