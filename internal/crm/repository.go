package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"clientops_backend/platform/apperr"
	"clientops_backend/platform/db"
)

// Message roles within a conversation transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Contact is a person identified by email, unique per tenant.
type Contact struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Email     string
	Name      *string
	Company   *string
	CreatedAt time.Time
}

// Conversation is one chat session. Seq is a monotonic insertion counter used
// as the recency ordering signal.
type Conversation struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	SessionID string
	ContactID *uuid.UUID
	Channel   string
	Seq       int64
	CreatedAt time.Time
}

// Message is one entry in a conversation transcript. Append-only; Seq is the
// sole ordering signal within a conversation.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	TenantID       uuid.UUID
	Role           string
	Content        string
	Seq            int64
	CreatedAt      time.Time
}

// Repository provides data access for contacts, conversations and messages.
type Repository struct {
	pool db.Querier
}

// NewRepository creates a new CRM repository.
func NewRepository(pool db.Querier) *Repository {
	return &Repository{pool: pool}
}

// NormalizeEmail lowercases and trims an address. Contact uniqueness is
// enforced on the stored string, so every write path must normalize the
// same way or one person splits into several contacts.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpsertContact creates a contact or returns the existing one for the email.
// The address is normalized before the write. The ON CONFLICT upsert
// serializes concurrent first-contact for the same email at the unique
// index, so no duplicate rows are possible.
func (r *Repository) UpsertContact(ctx context.Context, tenantID uuid.UUID, email string, name, company *string) (Contact, error) {
	email = NormalizeEmail(email)
	query := `
		INSERT INTO contacts (tenant_id, email, name, company)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, email) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, contacts.name),
			company = COALESCE(EXCLUDED.company, contacts.company)
		RETURNING id, tenant_id, email, name, company, created_at`

	var c Contact
	err := r.pool.QueryRow(ctx, query, tenantID, email, name, company).Scan(
		&c.ID, &c.TenantID, &c.Email, &c.Name, &c.Company, &c.CreatedAt,
	)
	if err != nil {
		return Contact{}, fmt.Errorf("upsert contact: %w", err)
	}
	return c, nil
}

// GetOrCreateConversation finds the conversation for a session or creates it.
// The transactional upsert guarantees a single row per (tenant, session) even
// under concurrent first messages.
func (r *Repository) GetOrCreateConversation(ctx context.Context, tenantID uuid.UUID, sessionID, channel string) (Conversation, error) {
	query := `
		INSERT INTO conversations (tenant_id, session_id, channel)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, session_id) DO UPDATE SET session_id = EXCLUDED.session_id
		RETURNING id, tenant_id, session_id, contact_id, channel, seq, created_at`

	var conv Conversation
	err := r.pool.QueryRow(ctx, query, tenantID, sessionID, channel).Scan(
		&conv.ID, &conv.TenantID, &conv.SessionID, &conv.ContactID, &conv.Channel, &conv.Seq, &conv.CreatedAt,
	)
	if err != nil {
		return Conversation{}, fmt.Errorf("get or create conversation: %w", err)
	}
	return conv, nil
}

// LinkContact attaches a contact to a conversation.
func (r *Repository) LinkContact(ctx context.Context, tenantID, conversationID, contactID uuid.UUID) error {
	query := `UPDATE conversations SET contact_id = $3 WHERE id = $1 AND tenant_id = $2`

	result, err := r.pool.Exec(ctx, query, conversationID, tenantID, contactID)
	if err != nil {
		return fmt.Errorf("link contact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("conversation not found")
	}
	return nil
}

// AppendMessage appends a message to a conversation transcript.
func (r *Repository) AppendMessage(ctx context.Context, tenantID, conversationID uuid.UUID, role, content string) (Message, error) {
	query := `
		INSERT INTO messages (conversation_id, tenant_id, role, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, conversation_id, tenant_id, role, content, seq, created_at`

	var m Message
	err := r.pool.QueryRow(ctx, query, conversationID, tenantID, role, content).Scan(
		&m.ID, &m.ConversationID, &m.TenantID, &m.Role, &m.Content, &m.Seq, &m.CreatedAt,
	)
	if err != nil {
		return Message{}, fmt.Errorf("append message: %w", err)
	}
	return m, nil
}

// LatestConversationForContact returns the most recently started conversation
// linked to the contact, or nil when none exists.
func (r *Repository) LatestConversationForContact(ctx context.Context, tenantID, contactID uuid.UUID) (*Conversation, error) {
	query := `
		SELECT id, tenant_id, session_id, contact_id, channel, seq, created_at
		FROM conversations
		WHERE tenant_id = $1 AND contact_id = $2
		ORDER BY seq DESC
		LIMIT 1`

	var conv Conversation
	err := r.pool.QueryRow(ctx, query, tenantID, contactID).Scan(
		&conv.ID, &conv.TenantID, &conv.SessionID, &conv.ContactID, &conv.Channel, &conv.Seq, &conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest conversation for contact: %w", err)
	}
	return &conv, nil
}

// GetConversationBySession retrieves a conversation by its session key.
func (r *Repository) GetConversationBySession(ctx context.Context, tenantID uuid.UUID, sessionID string) (Conversation, error) {
	query := `
		SELECT id, tenant_id, session_id, contact_id, channel, seq, created_at
		FROM conversations
		WHERE tenant_id = $1 AND session_id = $2`

	var conv Conversation
	err := r.pool.QueryRow(ctx, query, tenantID, sessionID).Scan(
		&conv.ID, &conv.TenantID, &conv.SessionID, &conv.ContactID, &conv.Channel, &conv.Seq, &conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, apperr.NotFound("conversation not found")
		}
		return Conversation{}, fmt.Errorf("get conversation by session: %w", err)
	}
	return conv, nil
}

// ListMessages returns the full transcript of a conversation in insertion order.
func (r *Repository) ListMessages(ctx context.Context, tenantID, conversationID uuid.UUID) ([]Message, error) {
	query := `
		SELECT id, conversation_id, tenant_id, role, content, seq, created_at
		FROM messages
		WHERE tenant_id = $1 AND conversation_id = $2
		ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, query, tenantID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var results []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.TenantID, &m.Role, &m.Content, &m.Seq, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return results, nil
}

// ListContacts returns the most recent contacts for a tenant.
func (r *Repository) ListContacts(ctx context.Context, tenantID uuid.UUID, limit int) ([]Contact, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	query := `
		SELECT id, tenant_id, email, name, company, created_at
		FROM contacts
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var results []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Email, &c.Name, &c.Company, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return results, nil
}
