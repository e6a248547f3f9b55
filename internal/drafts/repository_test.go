package drafts

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"

	"clientops_backend/internal/crm"
	"clientops_backend/platform/apperr"
)

var draftColumnNames = []string{
	"id", "tenant_id", "kind", "status", "lead_id", "ticket_id",
	"contact_id", "conversation_id", "session_id", "content", "created_at", "approved_at",
}

func draftRow(d Draft) *pgxmock.Rows {
	return pgxmock.NewRows(draftColumnNames).AddRow(
		d.ID, d.TenantID, d.Kind, d.Status, d.LeadID, d.TicketID,
		d.ContactID, d.ConversationID, d.SessionID, d.Content, d.CreatedAt, d.ApprovedAt,
	)
}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewRepository(mock)
}

func TestApproveAppliesLeadSideEffects(t *testing.T) {
	mock, repo := newMockRepo(t)

	tenantID := uuid.New()
	draftID := uuid.New()
	leadID := uuid.New()
	convoID := uuid.New()

	pending := Draft{
		ID:             draftID,
		TenantID:       tenantID,
		Kind:           KindLeadFollowup,
		Status:         StatusPending,
		LeadID:         &leadID,
		ConversationID: &convoID,
		Content:        "Thanks for reaching out, here is a proposal.",
		CreatedAt:      time.Now().UTC(),
	}
	approvedAt := time.Now().UTC()
	approved := pending
	approved.Status = StatusApproved
	approved.ApprovedAt = &approvedAt

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM automation_drafts WHERE tenant_id = $1 AND id = $2 FOR UPDATE")).
		WithArgs(tenantID, draftID).
		WillReturnRows(draftRow(pending))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE automation_drafts SET status = 'approved', approved_at = $3")).
		WithArgs(tenantID, draftID, pgxmock.AnyArg()).
		WillReturnRows(draftRow(approved))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO messages")).
		WithArgs(tenantID, convoID, crm.RoleSystem, "APPROVED + SENT:\n\n"+pending.Content).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leads SET status = 'contacted'")).
		WithArgs(tenantID, leadID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	got, err := repo.Approve(context.Background(), tenantID, draftID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != StatusApproved {
		t.Fatalf("expected approved status, got %s", got.Status)
	}
	if got.ApprovedAt == nil {
		t.Fatal("expected approved_at to be set")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApproveAdvancesTicketWithoutConversation(t *testing.T) {
	mock, repo := newMockRepo(t)

	tenantID := uuid.New()
	draftID := uuid.New()
	ticketID := uuid.New()

	pending := Draft{
		ID:        draftID,
		TenantID:  tenantID,
		Kind:      KindTicketReply,
		Status:    StatusPending,
		TicketID:  &ticketID,
		Content:   "We are looking into the upload failure.",
		CreatedAt: time.Now().UTC(),
	}
	approvedAt := time.Now().UTC()
	approved := pending
	approved.Status = StatusApproved
	approved.ApprovedAt = &approvedAt

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM automation_drafts WHERE tenant_id = $1 AND id = $2 FOR UPDATE")).
		WithArgs(tenantID, draftID).
		WillReturnRows(draftRow(pending))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE automation_drafts SET status = 'approved', approved_at = $3")).
		WithArgs(tenantID, draftID, pgxmock.AnyArg()).
		WillReturnRows(draftRow(approved))
	// No conversation on the draft, so no system message is written.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tickets SET status = 'open'")).
		WithArgs(tenantID, ticketID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	got, err := repo.Approve(context.Background(), tenantID, draftID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.TicketID == nil || *got.TicketID != ticketID {
		t.Fatalf("expected ticket id on draft, got %v", got.TicketID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApproveConflictsWhenDraftNotPending(t *testing.T) {
	mock, repo := newMockRepo(t)

	tenantID := uuid.New()
	draftID := uuid.New()
	approvedAt := time.Now().UTC()

	already := Draft{
		ID:         draftID,
		TenantID:   tenantID,
		Kind:       KindLeadFollowup,
		Status:     StatusApproved,
		Content:    "hello",
		CreatedAt:  time.Now().UTC(),
		ApprovedAt: &approvedAt,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM automation_drafts WHERE tenant_id = $1 AND id = $2 FOR UPDATE")).
		WithArgs(tenantID, draftID).
		WillReturnRows(draftRow(already))
	mock.ExpectRollback()

	_, err := repo.Approve(context.Background(), tenantID, draftID)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict on second approval, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
