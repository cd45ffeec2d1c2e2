// Package sqlite stores goals and completion state in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/felixgeelhaar/goalgenie/pkg/domain"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

// DatabaseFile is the database name inside the workspace directory.
const DatabaseFile = "goalgenie.db"

// Store implements domain.GoalRepository on SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time check that Store implements GoalRepository
var _ domain.GoalRepository = (*Store)(nil)

// Open opens the database at path and runs migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection for writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			start_date TEXT NOT NULL,
			number_of_days INTEGER NOT NULL,
			hours_per_day REAL NOT NULL,
			external_reference TEXT,
			daily_plan_json TEXT NOT NULL,
			report_json TEXT,
			fallback INTEGER NOT NULL DEFAULT 0,
			model TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS completion (
			goal_id TEXT PRIMARY KEY,
			checked_json TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (goal_id) REFERENCES goals(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_goals_created_at ON goals(created_at)`,
	}

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) SaveGoal(ctx context.Context, g *goal.Goal) error {
	planJSON, err := json.Marshal(g.DailyPlan)
	if err != nil {
		return err
	}
	reportJSON, err := json.Marshal(g.Report)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO goals (id, title, start_date, number_of_days, hours_per_day, external_reference,
			daily_plan_json, report_json, fallback, model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			start_date = excluded.start_date,
			number_of_days = excluded.number_of_days,
			hours_per_day = excluded.hours_per_day,
			external_reference = excluded.external_reference,
			daily_plan_json = excluded.daily_plan_json,
			report_json = excluded.report_json,
			fallback = excluded.fallback,
			model = excluded.model,
			updated_at = excluded.updated_at
	`, g.ID, g.Title, g.StartDate.String(), g.NumberOfDays, g.HoursPerDay, g.ExternalReference,
		string(planJSON), string(reportJSON), g.Fallback, g.Model, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save goal %s: %w", g.ID, err)
	}
	return nil
}

const goalColumns = `id, title, start_date, number_of_days, hours_per_day, external_reference,
	daily_plan_json, report_json, fallback, model, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*goal.Goal, error) {
	var (
		g          goal.Goal
		startDate  string
		extRef     sql.NullString
		planJSON   string
		reportJSON sql.NullString
		model      sql.NullString
	)
	err := row.Scan(&g.ID, &g.Title, &startDate, &g.NumberOfDays, &g.HoursPerDay, &extRef,
		&planJSON, &reportJSON, &g.Fallback, &model, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if g.StartDate, err = goal.ParseDate(startDate); err != nil {
		return nil, err
	}
	g.ExternalReference = extRef.String
	g.Model = model.String
	if err := json.Unmarshal([]byte(planJSON), &g.DailyPlan); err != nil {
		return nil, fmt.Errorf("decode daily plan of %s: %w", g.ID, err)
	}
	if reportJSON.Valid && reportJSON.String != "" {
		if err := json.Unmarshal([]byte(reportJSON.String), &g.Report); err != nil {
			return nil, fmt.Errorf("decode day count report of %s: %w", g.ID, err)
		}
	}
	return &g, nil
}

func (s *Store) LoadGoal(ctx context.Context, id string) (*goal.Goal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", goal.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Store) ListGoals(ctx context.Context) ([]*goal.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // rows.Err is checked below

	goals := []*goal.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// DeleteGoal removes the goal; its completion row goes with it via the
// foreign key cascade.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", goal.ErrNotFound, id)
	}
	return nil
}

// SaveCompletion writes state if its Version matches the stored one and then
// increments Version.
func (s *Store) SaveCompletion(ctx context.Context, state *planning.CompletionState) error {
	checkedJSON, err := json.Marshal(state.Checked)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var current int
	err = tx.QueryRowContext(ctx, `SELECT version FROM completion WHERE goal_id = ?`, state.GoalID).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if current != state.Version {
		return &planning.ConflictError{Expected: state.Version, Actual: current}
	}

	updatedAt := state.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO completion (goal_id, checked_json, version, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(goal_id) DO UPDATE SET
			checked_json = excluded.checked_json,
			version = excluded.version,
			updated_at = excluded.updated_at
	`, state.GoalID, string(checkedJSON), state.Version+1, updatedAt)
	if err != nil {
		return fmt.Errorf("save completion state of %s: %w", state.GoalID, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	state.Version++
	return nil
}

// LoadCompletion returns an empty state when none has been saved.
func (s *Store) LoadCompletion(ctx context.Context, goalID string) (*planning.CompletionState, error) {
	var checkedJSON string
	state := &planning.CompletionState{GoalID: goalID}

	err := s.db.QueryRowContext(ctx, `
		SELECT checked_json, version, updated_at FROM completion WHERE goal_id = ?
	`, goalID).Scan(&checkedJSON, &state.Version, &state.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return planning.NewCompletionState(goalID), nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(checkedJSON), &state.Checked); err != nil {
		return nil, fmt.Errorf("decode completion state of %s: %w", goalID, err)
	}
	if state.Checked == nil {
		state.Checked = make(map[planning.CompletionKey]bool)
	}
	return state, nil
}
