package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"clientops_backend/platform/apperr"
)

const ruleNotFoundMessage = "score rule not found"

// ScoreRule is one configurable scoring predicate. Rules are global in the
// observed schema; they carry no tenant scope.
type ScoreRule struct {
	ID        uuid.UUID
	Name      string
	Field     string
	Operator  string
	Value     string
	Points    int
	Active    bool
	CreatedAt time.Time
}

// CreateRuleParams holds the fields for inserting a new score rule.
type CreateRuleParams struct {
	Name     string
	Field    string
	Operator string
	Value    string
	Points   int
	Active   bool
}

// UpdateRuleParams holds optional updates; nil fields are left unchanged.
type UpdateRuleParams struct {
	ID       uuid.UUID
	Name     *string
	Field    *string
	Operator *string
	Value    *string
	Points   *int
	Active   *bool
}

// CreateRule inserts a new score rule.
func (r *Repository) CreateRule(ctx context.Context, params CreateRuleParams) (ScoreRule, error) {
	query := `
		INSERT INTO lead_score_rules (name, field, operator, value, points, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, field, operator, value, points, active, created_at`

	var rule ScoreRule
	err := r.pool.QueryRow(ctx, query,
		params.Name, params.Field, params.Operator, params.Value, params.Points, params.Active,
	).Scan(&rule.ID, &rule.Name, &rule.Field, &rule.Operator, &rule.Value, &rule.Points, &rule.Active, &rule.CreatedAt)
	if err != nil {
		return ScoreRule{}, fmt.Errorf("create score rule: %w", err)
	}
	return rule, nil
}

// ListRules returns all score rules ordered by creation time.
func (r *Repository) ListRules(ctx context.Context) ([]ScoreRule, error) {
	query := `
		SELECT id, name, field, operator, value, points, active, created_at
		FROM lead_score_rules
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list score rules: %w", err)
	}
	defer rows.Close()

	return scanRules(rows)
}

// ListActiveRules returns only active rules. Recompute reads this set once at
// the start of a run; concurrent rule edits are picked up by the next run.
func (r *Repository) ListActiveRules(ctx context.Context) ([]ScoreRule, error) {
	query := `
		SELECT id, name, field, operator, value, points, active, created_at
		FROM lead_score_rules
		WHERE active = true
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active score rules: %w", err)
	}
	defer rows.Close()

	return scanRules(rows)
}

// UpdateRule applies partial updates to a score rule.
func (r *Repository) UpdateRule(ctx context.Context, params UpdateRuleParams) (ScoreRule, error) {
	query := `
		UPDATE lead_score_rules SET
			name = COALESCE($2, name),
			field = COALESCE($3, field),
			operator = COALESCE($4, operator),
			value = COALESCE($5, value),
			points = COALESCE($6, points),
			active = COALESCE($7, active)
		WHERE id = $1
		RETURNING id, name, field, operator, value, points, active, created_at`

	var rule ScoreRule
	err := r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.Field, params.Operator, params.Value, params.Points, params.Active,
	).Scan(&rule.ID, &rule.Name, &rule.Field, &rule.Operator, &rule.Value, &rule.Points, &rule.Active, &rule.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ScoreRule{}, apperr.NotFound(ruleNotFoundMessage)
		}
		return ScoreRule{}, fmt.Errorf("update score rule: %w", err)
	}
	return rule, nil
}

// DeleteRule removes a score rule (hard delete, no cascade audit).
func (r *Repository) DeleteRule(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM lead_score_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete score rule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(ruleNotFoundMessage)
	}
	return nil
}

func scanRules(rows pgx.Rows) ([]ScoreRule, error) {
	var results []ScoreRule
	for rows.Next() {
		var rule ScoreRule
		err := rows.Scan(&rule.ID, &rule.Name, &rule.Field, &rule.Operator, &rule.Value, &rule.Points, &rule.Active, &rule.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan score rule: %w", err)
		}
		results = append(results, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score rules: %w", err)
	}
	return results, nil
}
