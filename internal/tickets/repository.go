package tickets

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

// Ticket statuses and priorities.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusClosed     = "closed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Ticket is a support ticket raised from a chat conversation.
type Ticket struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	ContactID uuid.UUID
	Priority  string
	Status    string
	Category  string
	Tag       *string
	Sentiment *string
	Urgency   *string
	Summary   *string
	CreatedAt time.Time
}

// CreateTicketParams carries the fields for a new ticket.
type CreateTicketParams struct {
	TenantID  uuid.UUID
	ContactID uuid.UUID
	Priority  string
	Status    string
	Category  string
	Tag       *string
	Sentiment *string
	Urgency   *string
	Summary   *string
}

// Repository provides ticket persistence.
type Repository struct {
	pool db.Querier
}

// NewRepository creates a new tickets repository.
func NewRepository(pool db.Querier) *Repository {
	return &Repository{pool: pool}
}

const ticketColumns = `id, tenant_id, contact_id, priority, status, category, tag, sentiment, urgency, summary, created_at`

// Create inserts a new ticket.
func (r *Repository) Create(ctx context.Context, params CreateTicketParams) (Ticket, error) {
	query := `
		INSERT INTO tickets (tenant_id, contact_id, priority, status, category, tag, sentiment, urgency, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + ticketColumns

	var t Ticket
	err := r.pool.QueryRow(ctx, query,
		params.TenantID, params.ContactID, params.Priority, params.Status, params.Category,
		params.Tag, params.Sentiment, params.Urgency, params.Summary,
	).Scan(
		&t.ID, &t.TenantID, &t.ContactID, &t.Priority, &t.Status, &t.Category,
		&t.Tag, &t.Sentiment, &t.Urgency, &t.Summary, &t.CreatedAt,
	)
	if err != nil {
		return Ticket{}, fmt.Errorf("create ticket: %w", err)
	}
	return t, nil
}

// GetByID returns a single ticket scoped to the tenant.
func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE tenant_id = $1 AND id = $2`

	var t Ticket
	err := r.pool.QueryRow(ctx, query, tenantID, id).Scan(
		&t.ID, &t.TenantID, &t.ContactID, &t.Priority, &t.Status, &t.Category,
		&t.Tag, &t.Sentiment, &t.Urgency, &t.Summary, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ticket{}, apperr.NotFound("ticket not found")
		}
		return Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// List returns the most recent tickets for the tenant.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, limit int) ([]Ticket, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(
			&t.ID, &t.TenantID, &t.ContactID, &t.Priority, &t.Status, &t.Category,
			&t.Tag, &t.Sentiment, &t.Urgency, &t.Summary, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// UpdateStatus sets the ticket status.
func (r *Repository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (Ticket, error) {
	query := `
		UPDATE tickets SET status = $3
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + ticketColumns

	var t Ticket
	err := r.pool.QueryRow(ctx, query, tenantID, id, status).Scan(
		&t.ID, &t.TenantID, &t.ContactID, &t.Priority, &t.Status, &t.Category,
		&t.Tag, &t.Sentiment, &t.Urgency, &t.Summary, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ticket{}, apperr.NotFound("ticket not found")
		}
		return Ticket{}, fmt.Errorf("update ticket status: %w", err)
	}
	return t, nil
}
