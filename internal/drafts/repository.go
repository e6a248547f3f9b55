package drafts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"clientops_backend/internal/crm"
	"clientops_backend/platform/apperr"
	"clientops_backend/platform/db"
)

// Draft kinds.
const (
	KindLeadFollowup = "lead_followup"
	KindTicketReply  = "ticket_reply"
)

// Draft statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// DedupWindow is how far back a pending draft of the same kind and entity
// suppresses generating another one.
const DedupWindow = 10 * time.Minute

// Draft is an automation draft awaiting human review.
type Draft struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	Kind           string
	Status         string
	LeadID         *uuid.UUID
	TicketID       *uuid.UUID
	ContactID      *uuid.UUID
	ConversationID *uuid.UUID
	SessionID      *string
	Content        string
	CreatedAt      time.Time
	ApprovedAt     *time.Time
}

// CreateDraftParams carries the fields for a new pending draft.
type CreateDraftParams struct {
	TenantID       uuid.UUID
	Kind           string
	LeadID         *uuid.UUID
	TicketID       *uuid.UUID
	ContactID      *uuid.UUID
	ConversationID *uuid.UUID
	SessionID      *string
	Content        string
}

// Repository implements draft persistence and the draft state machine.
// Transitions run in transactions that row-lock the draft, so a draft can be
// approved at most once even under concurrent requests.
type Repository struct {
	pool db.Querier
}

// NewRepository creates a new drafts repository.
func NewRepository(pool db.Querier) *Repository {
	return &Repository{pool: pool}
}

const draftColumns = `id, tenant_id, kind, status, lead_id, ticket_id, contact_id, conversation_id, session_id, content, created_at, approved_at`

func scanDraft(row pgx.Row) (Draft, error) {
	var d Draft
	err := row.Scan(
		&d.ID, &d.TenantID, &d.Kind, &d.Status, &d.LeadID, &d.TicketID,
		&d.ContactID, &d.ConversationID, &d.SessionID, &d.Content, &d.CreatedAt, &d.ApprovedAt,
	)
	return d, err
}

// HasRecentPendingDraft reports whether a pending draft of the given kind
// already exists for the entity inside the dedup window.
func (r *Repository) HasRecentPendingDraft(ctx context.Context, tenantID uuid.UUID, kind string, leadID, ticketID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM automation_drafts
			WHERE tenant_id = $1
			  AND kind = $2
			  AND status = 'pending'
			  AND created_at >= $3
			  AND ($4::uuid IS NULL OR lead_id = $4)
			  AND ($5::uuid IS NULL OR ticket_id = $5)
		)`

	since := time.Now().UTC().Add(-DedupWindow)
	var exists bool
	if err := r.pool.QueryRow(ctx, query, tenantID, kind, since, leadID, ticketID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check recent pending draft: %w", err)
	}
	return exists, nil
}

// CreateWithMessage inserts a pending draft and, when the draft is tied to a
// conversation, a system message announcing it. Both writes share one
// transaction so reviewers never see a draft without its transcript marker.
func (r *Repository) CreateWithMessage(ctx context.Context, params CreateDraftParams) (Draft, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Draft{}, fmt.Errorf("begin create draft: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO automation_drafts (tenant_id, kind, status, lead_id, ticket_id, contact_id, conversation_id, session_id, content)
		VALUES ($1, $2, 'pending', $3, $4, $5, $6, $7, $8)
		RETURNING ` + draftColumns

	draft, err := scanDraft(tx.QueryRow(ctx, query,
		params.TenantID, params.Kind, params.LeadID, params.TicketID,
		params.ContactID, params.ConversationID, params.SessionID, params.Content,
	))
	if err != nil {
		return Draft{}, fmt.Errorf("insert draft: %w", err)
	}

	if params.ConversationID != nil {
		content := "Draft created (pending):\n\n" + params.Content
		if err := insertSystemMessage(ctx, tx, params.TenantID, *params.ConversationID, content); err != nil {
			return Draft{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Draft{}, fmt.Errorf("commit create draft: %w", err)
	}
	return draft, nil
}

// GetByID returns a single draft scoped to the tenant.
func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM automation_drafts WHERE tenant_id = $1 AND id = $2`

	draft, err := scanDraft(r.pool.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Draft{}, apperr.NotFound("draft not found")
		}
		return Draft{}, fmt.Errorf("get draft: %w", err)
	}
	return draft, nil
}

// List returns recent drafts, optionally filtered by status.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, status string, limit int) ([]Draft, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	query := `
		SELECT ` + draftColumns + `
		FROM automation_drafts
		WHERE tenant_id = $1
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, tenantID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()
	return collectDrafts(rows)
}

// ListForLead returns all drafts attached to a lead, newest first.
func (r *Repository) ListForLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]Draft, error) {
	query := `
		SELECT ` + draftColumns + `
		FROM automation_drafts
		WHERE tenant_id = $1 AND lead_id = $2
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, tenantID, leadID)
	if err != nil {
		return nil, fmt.Errorf("list lead drafts: %w", err)
	}
	defer rows.Close()
	return collectDrafts(rows)
}

// Approve transitions a pending draft to approved and applies the approval
// side effects in the same transaction: a system message in the linked
// conversation and the lead or ticket auto-advance.
func (r *Repository) Approve(ctx context.Context, tenantID, id uuid.UUID) (Draft, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Draft{}, fmt.Errorf("begin approve draft: %w", err)
	}
	defer tx.Rollback(ctx)

	draft, err := lockDraft(ctx, tx, tenantID, id)
	if err != nil {
		return Draft{}, err
	}
	if draft.Status != StatusPending {
		return Draft{}, apperr.Conflict(fmt.Sprintf("draft is not pending (status=%s)", draft.Status))
	}

	now := time.Now().UTC()
	row := tx.QueryRow(ctx, `
		UPDATE automation_drafts SET status = 'approved', approved_at = $3
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+draftColumns, tenantID, id, now)
	draft, err = scanDraft(row)
	if err != nil {
		return Draft{}, fmt.Errorf("approve draft: %w", err)
	}

	if draft.ConversationID != nil {
		content := "APPROVED + SENT:\n\n" + draft.Content
		if err := insertSystemMessage(ctx, tx, tenantID, *draft.ConversationID, content); err != nil {
			return Draft{}, err
		}
	}

	if draft.LeadID != nil {
		_, err := tx.Exec(ctx, `
			UPDATE leads SET status = 'contacted'
			WHERE tenant_id = $1 AND id = $2 AND (status IS NULL OR status = 'new')`,
			tenantID, *draft.LeadID)
		if err != nil {
			return Draft{}, fmt.Errorf("auto-advance lead: %w", err)
		}
	}

	if draft.TicketID != nil {
		// Deliberately conservative: an open ticket stays open.
		_, err := tx.Exec(ctx, `
			UPDATE tickets SET status = 'open'
			WHERE tenant_id = $1 AND id = $2 AND (status IS NULL OR status = 'open')`,
			tenantID, *draft.TicketID)
		if err != nil {
			return Draft{}, fmt.Errorf("auto-advance ticket: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Draft{}, fmt.Errorf("commit approve draft: %w", err)
	}
	return draft, nil
}

// Reject transitions a pending draft to rejected. No side effects.
func (r *Repository) Reject(ctx context.Context, tenantID, id uuid.UUID) (Draft, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Draft{}, fmt.Errorf("begin reject draft: %w", err)
	}
	defer tx.Rollback(ctx)

	draft, err := lockDraft(ctx, tx, tenantID, id)
	if err != nil {
		return Draft{}, err
	}
	if draft.Status != StatusPending {
		return Draft{}, apperr.Conflict(fmt.Sprintf("draft is not pending (status=%s)", draft.Status))
	}

	row := tx.QueryRow(ctx, `
		UPDATE automation_drafts SET status = 'rejected'
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+draftColumns, tenantID, id)
	draft, err = scanDraft(row)
	if err != nil {
		return Draft{}, fmt.Errorf("reject draft: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Draft{}, fmt.Errorf("commit reject draft: %w", err)
	}
	return draft, nil
}

// UpdateContent replaces the content of a pending draft.
func (r *Repository) UpdateContent(ctx context.Context, tenantID, id uuid.UUID, content string) (Draft, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Draft{}, fmt.Errorf("begin edit draft: %w", err)
	}
	defer tx.Rollback(ctx)

	draft, err := lockDraft(ctx, tx, tenantID, id)
	if err != nil {
		return Draft{}, err
	}
	if draft.Status != StatusPending {
		return Draft{}, apperr.Conflict(fmt.Sprintf("draft is not pending (status=%s)", draft.Status))
	}

	row := tx.QueryRow(ctx, `
		UPDATE automation_drafts SET content = $3
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+draftColumns, tenantID, id, content)
	draft, err = scanDraft(row)
	if err != nil {
		return Draft{}, fmt.Errorf("edit draft: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Draft{}, fmt.Errorf("commit edit draft: %w", err)
	}
	return draft, nil
}

func collectDrafts(rows pgx.Rows) ([]Draft, error) {
	var drafts []Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

func lockDraft(ctx context.Context, tx pgx.Tx, tenantID, id uuid.UUID) (Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM automation_drafts WHERE tenant_id = $1 AND id = $2 FOR UPDATE`

	draft, err := scanDraft(tx.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Draft{}, apperr.NotFound("draft not found")
		}
		return Draft{}, fmt.Errorf("lock draft: %w", err)
	}
	return draft, nil
}

func insertSystemMessage(ctx context.Context, tx pgx.Tx, tenantID, conversationID uuid.UUID, content string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO messages (tenant_id, conversation_id, role, content)
		VALUES ($1, $2, $3, $4)`,
		tenantID, conversationID, crm.RoleSystem, content)
	if err != nil {
		return fmt.Errorf("insert system message: %w", err)
	}
	return nil
}
