package crm

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"user@example.com", "user@example.com"},
		{" User@Example.COM ", "user@example.com"},
		{"\tMIXED@Case.io\n", "mixed@case.io"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeEmail(tc.in); got != tc.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUpsertContactNormalizesEmailBeforeWrite(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()
	repo := NewRepository(mock)

	tenantID := uuid.New()
	contactID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO contacts")).
		WithArgs(tenantID, "user@example.com", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "tenant_id", "email", "name", "company", "created_at"}).
			AddRow(contactID, tenantID, "user@example.com", (*string)(nil), (*string)(nil), time.Now().UTC()))

	contact, err := repo.UpsertContact(context.Background(), tenantID, "  User@Example.COM ", nil, nil)
	if err != nil {
		t.Fatalf("upsert contact: %v", err)
	}
	if contact.Email != "user@example.com" {
		t.Fatalf("expected normalized email, got %q", contact.Email)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
