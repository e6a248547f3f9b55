package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"clientops_backend/platform/apperr"
	"clientops_backend/platform/db"
)

const leadNotFoundMessage = "lead not found"

// Lead is a potential sales opportunity. Status is nullable on legacy rows;
// new leads are created with status "new".
type Lead struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	ContactID uuid.UUID
	Status    *string
	Score     int
	Summary   *string
	CreatedAt time.Time
}

// LeadEvent is one immutable entry on a lead's audit trail.
type LeadEvent struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	EventType string
	OldValue  *string
	NewValue  *string
	Note      *string
	Actor     string
	CreatedAt time.Time
}

// EventParams describes an audit event to append alongside a lead mutation.
type EventParams struct {
	EventType string
	OldValue  *string
	NewValue  *string
	Note      *string
	Actor     string
}

// CreateLeadParams holds the fields for inserting a new lead.
type CreateLeadParams struct {
	TenantID  uuid.UUID
	ContactID uuid.UUID
	Status    string
	Score     int
	Summary   *string
}

// Repository implements lead and lead-event persistence with PostgreSQL.
type Repository struct {
	pool db.Querier
}

// New creates a new leads repository.
func New(pool db.Querier) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new lead.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	query := `
		INSERT INTO leads (tenant_id, contact_id, status, score, summary)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, tenant_id, contact_id, status, score, summary, created_at`

	var lead Lead
	err := r.pool.QueryRow(ctx, query,
		params.TenantID, params.ContactID, params.Status, params.Score, params.Summary,
	).Scan(&lead.ID, &lead.TenantID, &lead.ContactID, &lead.Status, &lead.Score, &lead.Summary, &lead.CreatedAt)
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

// GetByID retrieves a lead scoped to its tenant.
func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Lead, error) {
	query := `
		SELECT id, tenant_id, contact_id, status, score, summary, created_at
		FROM leads
		WHERE id = $1 AND tenant_id = $2`

	var lead Lead
	err := r.pool.QueryRow(ctx, query, id, tenantID).Scan(
		&lead.ID, &lead.TenantID, &lead.ContactID, &lead.Status, &lead.Score, &lead.Summary, &lead.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead by id: %w", err)
	}
	return lead, nil
}

// List returns the most recent leads for a tenant.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, limit int) ([]Lead, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	query := `
		SELECT id, tenant_id, contact_id, status, score, summary, created_at
		FROM leads
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

// ListAll returns every lead for a tenant. Used by score recomputation,
// which processes the full lead set per invocation.
func (r *Repository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]Lead, error) {
	query := `
		SELECT id, tenant_id, contact_id, status, score, summary, created_at
		FROM leads
		WHERE tenant_id = $1`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list all leads: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

// UpdateFields applies status/score changes and appends the paired audit
// events in a single transaction. Passing nil for a field leaves it unchanged.
func (r *Repository) UpdateFields(ctx context.Context, tenantID, id uuid.UUID, status *string, score *int, events []EventParams) (Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, fmt.Errorf("update lead: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE leads SET
			status = COALESCE($3, status),
			score = COALESCE($4, score)
		WHERE id = $1 AND tenant_id = $2
		RETURNING id, tenant_id, contact_id, status, score, summary, created_at`

	var lead Lead
	err = tx.QueryRow(ctx, query, id, tenantID, status, score).Scan(
		&lead.ID, &lead.TenantID, &lead.ContactID, &lead.Status, &lead.Score, &lead.Summary, &lead.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("update lead: %w", err)
	}

	for _, event := range events {
		if err := insertEvent(ctx, tx, id, event); err != nil {
			return Lead{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, fmt.Errorf("update lead: commit: %w", err)
	}
	return lead, nil
}

// UpdateScoreRecomputed overwrites a lead's score and appends the
// score_recomputed audit event atomically.
func (r *Repository) UpdateScoreRecomputed(ctx context.Context, tenantID, id uuid.UUID, oldScore, newScore int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("recompute score: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `UPDATE leads SET score = $3 WHERE id = $1 AND tenant_id = $2`, id, tenantID, newScore)
	if err != nil {
		return fmt.Errorf("recompute score: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}

	oldValue := fmt.Sprintf("%d", oldScore)
	newValue := fmt.Sprintf("%d", newScore)
	err = insertEvent(ctx, tx, id, EventParams{
		EventType: "score_recomputed",
		OldValue:  &oldValue,
		NewValue:  &newValue,
		Actor:     "system",
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("recompute score: commit: %w", err)
	}
	return nil
}

// InsertEvent appends a standalone audit event (e.g. note_added).
func (r *Repository) InsertEvent(ctx context.Context, leadID uuid.UUID, params EventParams) (LeadEvent, error) {
	query := `
		INSERT INTO lead_events (lead_id, event_type, old_value, new_value, note, actor)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, lead_id, event_type, old_value, new_value, note, actor, created_at`

	var event LeadEvent
	err := r.pool.QueryRow(ctx, query,
		leadID, params.EventType, params.OldValue, params.NewValue, params.Note, params.Actor,
	).Scan(&event.ID, &event.LeadID, &event.EventType, &event.OldValue, &event.NewValue, &event.Note, &event.Actor, &event.CreatedAt)
	if err != nil {
		return LeadEvent{}, fmt.Errorf("insert lead event: %w", err)
	}
	return event, nil
}

// ListEvents returns the lead's audit trail in chronological order.
func (r *Repository) ListEvents(ctx context.Context, leadID uuid.UUID) ([]LeadEvent, error) {
	query := `
		SELECT id, lead_id, event_type, old_value, new_value, note, actor, created_at
		FROM lead_events
		WHERE lead_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("list lead events: %w", err)
	}
	defer rows.Close()

	var results []LeadEvent
	for rows.Next() {
		var event LeadEvent
		err := rows.Scan(&event.ID, &event.LeadID, &event.EventType, &event.OldValue, &event.NewValue, &event.Note, &event.Actor, &event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan lead event: %w", err)
		}
		results = append(results, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lead events: %w", err)
	}
	return results, nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, leadID uuid.UUID, params EventParams) error {
	query := `
		INSERT INTO lead_events (lead_id, event_type, old_value, new_value, note, actor)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, leadID, params.EventType, params.OldValue, params.NewValue, params.Note, params.Actor)
	if err != nil {
		return fmt.Errorf("insert lead event: %w", err)
	}
	return nil
}

func scanLeads(rows pgx.Rows) ([]Lead, error) {
	var results []Lead
	for rows.Next() {
		var lead Lead
		err := rows.Scan(&lead.ID, &lead.TenantID, &lead.ContactID, &lead.Status, &lead.Score, &lead.Summary, &lead.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		results = append(results, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return results, nil
}
