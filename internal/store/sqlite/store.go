// Package sqlite provides the SQLite-backed result store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"cashflow-engine/internal/model"
	"cashflow-engine/internal/store"
	"cashflow-engine/internal/store/sqlite/migrations"
)

// Store persists engine state in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ store.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite result store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveScenario upserts a scenario and replaces its projection rows.
func (s *Store) SaveScenario(ctx context.Context, scenario *model.CashFlowScenario, rows []model.CashFlowProjection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if scenario == nil || strings.TrimSpace(scenario.ID) == "" {
		return fmt.Errorf("scenario id is required")
	}

	payload, err := json.Marshal(scenario)
	if err != nil {
		return fmt.Errorf("marshal scenario: %w", err)
	}

	createdAt := scenario.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now().UTC()
	}
	updatedAt := s.now().UTC()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save scenario: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO scenarios (id, client_id, scenario_type, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   client_id = excluded.client_id,
		   scenario_type = excluded.scenario_type,
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		scenario.ID,
		scenario.ClientID,
		scenario.ScenarioType,
		string(payload),
		toMillis(createdAt),
		toMillis(updatedAt),
	); err != nil {
		return fmt.Errorf("insert scenario: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM projections WHERE scenario_id = ?`, scenario.ID); err != nil {
		return fmt.Errorf("clear projections: %w", err)
	}
	for _, row := range rows {
		rowPayload, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshal projection year %d: %w", row.Year, err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO projections (scenario_id, year, payload) VALUES (?, ?, ?)`,
			scenario.ID, row.Year, string(rowPayload),
		); err != nil {
			return fmt.Errorf("insert projection year %d: %w", row.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save scenario: %w", err)
	}
	return nil
}

// DeleteScenario removes a scenario and its projection rows, and
// detaches any goals that referenced it. Goals are never deleted.
func (s *Store) DeleteScenario(ctx context.Context, scenarioID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(scenarioID) == "" {
		return fmt.Errorf("scenario id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete scenario: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE goals SET linked_scenario_id = NULL WHERE linked_scenario_id = ?`, scenarioID); err != nil {
		return fmt.Errorf("detach goals: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM projections WHERE scenario_id = ?`, scenarioID); err != nil {
		return fmt.Errorf("delete projections: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, scenarioID); err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete scenario: %w", err)
	}
	return nil
}

// SaveGoal upserts one client goal.
func (s *Store) SaveGoal(ctx context.Context, goal *model.ClientGoal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if goal == nil || strings.TrimSpace(goal.ID) == "" {
		return fmt.Errorf("goal id is required")
	}

	createdAt := goal.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now().UTC()
	}

	var linked sql.NullString
	if goal.LinkedScenarioID != nil {
		linked = sql.NullString{String: *goal.LinkedScenarioID, Valid: true}
	}
	var prob sql.NullFloat64
	if goal.ProbabilityOfSuccess != nil {
		prob = sql.NullFloat64{Float64: *goal.ProbabilityOfSuccess, Valid: true}
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO goals (id, client_id, name, target_amount, target_age, priority, linked_scenario_id, probability_of_success, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   client_id = excluded.client_id,
		   name = excluded.name,
		   target_amount = excluded.target_amount,
		   target_age = excluded.target_age,
		   priority = excluded.priority,
		   linked_scenario_id = excluded.linked_scenario_id,
		   probability_of_success = excluded.probability_of_success`,
		goal.ID,
		goal.ClientID,
		goal.Name,
		goal.TargetAmount,
		goal.TargetAge,
		goal.Priority,
		linked,
		prob,
		toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// ListGoals returns the goals linked to a scenario.
func (s *Store) ListGoals(ctx context.Context, scenarioID string) ([]model.ClientGoal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, client_id, name, target_amount, target_age, priority, linked_scenario_id, probability_of_success, created_at
		 FROM goals WHERE linked_scenario_id = ? ORDER BY created_at, id`,
		scenarioID,
	)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []model.ClientGoal
	for rows.Next() {
		var g model.ClientGoal
		var linked sql.NullString
		var prob sql.NullFloat64
		var createdAt int64
		if err := rows.Scan(&g.ID, &g.ClientID, &g.Name, &g.TargetAmount, &g.TargetAge, &g.Priority, &linked, &prob, &createdAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if linked.Valid {
			id := linked.String
			g.LinkedScenarioID = &id
		}
		if prob.Valid {
			p := prob.Float64
			g.ProbabilityOfSuccess = &p
		}
		g.CreatedAt = fromMillis(createdAt)
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

// SaveRunResult inserts one run result row.
func (s *Store) SaveRunResult(ctx context.Context, result *store.RunResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if result == nil || strings.TrimSpace(result.ID) == "" {
		return fmt.Errorf("run result id is required")
	}
	if strings.TrimSpace(result.ScenarioID) == "" {
		return fmt.Errorf("scenario id is required")
	}

	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now().UTC()
	}

	var summary sql.NullString
	if len(result.Summary) > 0 {
		summary = sql.NullString{String: string(result.Summary), Valid: true}
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO run_results (id, scenario_id, trials, seed, success_probability, shortfall_risk, sustainability_rating, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.ScenarioID,
		result.Trials,
		int64(result.Seed),
		result.SuccessProbability,
		result.ShortfallRisk,
		result.SustainabilityRating,
		summary,
		toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("insert run result: %w", err)
	}
	return nil
}

// ListRunResults returns a scenario's run results, newest first.
func (s *Store) ListRunResults(ctx context.Context, scenarioID string) ([]store.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, scenario_id, trials, seed, success_probability, shortfall_risk, sustainability_rating, summary, created_at
		 FROM run_results WHERE scenario_id = ? ORDER BY created_at DESC, id`,
		scenarioID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run results: %w", err)
	}
	defer rows.Close()

	var results []store.RunResult
	for rows.Next() {
		var r store.RunResult
		var seed int64
		var summary sql.NullString
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.ScenarioID, &r.Trials, &seed, &r.SuccessProbability, &r.ShortfallRisk, &r.SustainabilityRating, &summary, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run result: %w", err)
		}
		r.Seed = uint64(seed)
		if summary.Valid {
			r.Summary = json.RawMessage(summary.String)
		}
		r.CreatedAt = fromMillis(createdAt)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run results: %w", err)
	}
	return results, nil
}

// CleanupOlderThan deletes run results whose created_at is more than
// days days before now and returns the exact deleted count. The
// threshold is validated before any deletion; the operation is a
// single bulk delete, so a retry after failure cannot under- or
// over-delete relative to one successful run.
func (s *Store) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	if err := store.ValidateRetentionDays(days); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cutoff := s.now().UTC().AddDate(0, 0, -days)
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM run_results WHERE created_at < ?`, toMillis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete run results: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted run results: %w", err)
	}
	return deleted, nil
}

// GetScenario loads one stored scenario by id.
func (s *Store) GetScenario(ctx context.Context, scenarioID string) (*model.CashFlowScenario, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var payload string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT payload FROM scenarios WHERE id = ?`, scenarioID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scenario %s not found", scenarioID)
	}
	if err != nil {
		return nil, fmt.Errorf("query scenario: %w", err)
	}

	var scenario model.CashFlowScenario
	if err := json.Unmarshal([]byte(payload), &scenario); err != nil {
		return nil, fmt.Errorf("unmarshal scenario: %w", err)
	}
	return &scenario, nil
}
