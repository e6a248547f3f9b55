package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"clientops_backend/internal/leads/repository"
	"clientops_backend/internal/leads/scoring"
	"clientops_backend/internal/leads/transport"
	"clientops_backend/platform/apperr"
	"clientops_backend/platform/logger"
)

// Store is the persistence surface the leads service needs. Implemented by
// the leads repository and by test fakes.
type Store interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, tenantID uuid.UUID, limit int) ([]repository.Lead, error)
	UpdateFields(ctx context.Context, tenantID, id uuid.UUID, status *string, score *int, events []repository.EventParams) (repository.Lead, error)
	InsertEvent(ctx context.Context, leadID uuid.UUID, params repository.EventParams) (repository.LeadEvent, error)
	ListEvents(ctx context.Context, leadID uuid.UUID) ([]repository.LeadEvent, error)

	CreateRule(ctx context.Context, params repository.CreateRuleParams) (repository.ScoreRule, error)
	ListRules(ctx context.Context) ([]repository.ScoreRule, error)
	UpdateRule(ctx context.Context, params repository.UpdateRuleParams) (repository.ScoreRule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
}

// Service implements lead mutation auditing and score rule administration.
type Service struct {
	store Store
	log   *logger.Logger
}

// New creates a leads service.
func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// GetByID returns a single lead.
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (repository.Lead, error) {
	return s.store.GetByID(ctx, tenantID, id)
}

// List returns recent leads for the tenant.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, limit int) ([]repository.Lead, error) {
	return s.store.List(ctx, tenantID, limit)
}

// UpdateLead applies an admin status/score update. Every field that actually
// changes value gets exactly one paired audit event capturing old and new;
// writing a field's current value back produces no event and no write.
func (s *Service) UpdateLead(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateLeadRequest, actor string) (repository.Lead, error) {
	lead, err := s.store.GetByID(ctx, tenantID, id)
	if err != nil {
		return repository.Lead{}, err
	}

	var newStatus *string
	var newScore *int
	var events []repository.EventParams

	if req.Status != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Status))
		if !transport.AllowedStatuses[transport.LeadStatus(normalized)] {
			return repository.Lead{}, apperr.Validation(
				fmt.Sprintf("invalid status %q, allowed: %s", normalized, allowedStatusList()),
			)
		}
		if lead.Status == nil || *lead.Status != normalized {
			statusValue := normalized
			newStatus = &statusValue
			events = append(events, repository.EventParams{
				EventType: transport.EventStatusChanged,
				OldValue:  lead.Status,
				NewValue:  &statusValue,
				Actor:     actor,
			})
		}
	}

	if req.Score != nil && *req.Score != lead.Score {
		oldValue := strconv.Itoa(lead.Score)
		newValue := strconv.Itoa(*req.Score)
		newScore = req.Score
		events = append(events, repository.EventParams{
			EventType: transport.EventScoreChanged,
			OldValue:  &oldValue,
			NewValue:  &newValue,
			Actor:     actor,
		})
	}

	// Idempotent no-op: nothing differs, nothing is written.
	if newStatus == nil && newScore == nil {
		return lead, nil
	}

	return s.store.UpdateFields(ctx, tenantID, id, newStatus, newScore, events)
}

// AddNote appends a note_added event to the lead's audit trail.
func (s *Service) AddNote(ctx context.Context, tenantID, id uuid.UUID, note, actor string) (repository.LeadEvent, error) {
	if strings.TrimSpace(note) == "" {
		return repository.LeadEvent{}, apperr.Validation("note must not be empty")
	}
	if actor == "" {
		actor = "admin"
	}

	if _, err := s.store.GetByID(ctx, tenantID, id); err != nil {
		return repository.LeadEvent{}, err
	}

	return s.store.InsertEvent(ctx, id, repository.EventParams{
		EventType: transport.EventNoteAdded,
		Note:      &note,
		Actor:     actor,
	})
}

// Timeline returns the lead's audit trail in chronological order.
func (s *Service) Timeline(ctx context.Context, tenantID, id uuid.UUID) ([]repository.LeadEvent, error) {
	if _, err := s.store.GetByID(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, id)
}

// CreateRule validates and inserts a new score rule. Unknown fields and
// operators are rejected here even though the evaluator tolerates them on
// legacy rows.
func (s *Service) CreateRule(ctx context.Context, req transport.CreateRuleRequest) (repository.ScoreRule, error) {
	field := strings.ToLower(strings.TrimSpace(req.Field))
	operator := strings.ToLower(strings.TrimSpace(req.Operator))
	if field != scoring.FieldSummary && field != scoring.FieldStatus {
		return repository.ScoreRule{}, apperr.Validation("field must be one of: summary, status")
	}
	if operator != scoring.OperatorContains && operator != scoring.OperatorEquals {
		return repository.ScoreRule{}, apperr.Validation("operator must be one of: contains, equals")
	}
	if req.Points == nil {
		return repository.ScoreRule{}, apperr.Validation("points is required")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return s.store.CreateRule(ctx, repository.CreateRuleParams{
		Name:     req.Name,
		Field:    field,
		Operator: operator,
		Value:    req.Value,
		Points:   *req.Points,
		Active:   active,
	})
}

// ListRules returns all score rules.
func (s *Service) ListRules(ctx context.Context) ([]repository.ScoreRule, error) {
	return s.store.ListRules(ctx)
}

// UpdateRule applies partial updates to a score rule.
func (s *Service) UpdateRule(ctx context.Context, id uuid.UUID, req transport.UpdateRuleRequest) (repository.ScoreRule, error) {
	params := repository.UpdateRuleParams{
		ID:     id,
		Name:   req.Name,
		Value:  req.Value,
		Points: req.Points,
		Active: req.Active,
	}

	if req.Field != nil {
		field := strings.ToLower(strings.TrimSpace(*req.Field))
		if field != scoring.FieldSummary && field != scoring.FieldStatus {
			return repository.ScoreRule{}, apperr.Validation("field must be one of: summary, status")
		}
		params.Field = &field
	}
	if req.Operator != nil {
		operator := strings.ToLower(strings.TrimSpace(*req.Operator))
		if operator != scoring.OperatorContains && operator != scoring.OperatorEquals {
			return repository.ScoreRule{}, apperr.Validation("operator must be one of: contains, equals")
		}
		params.Operator = &operator
	}

	return s.store.UpdateRule(ctx, params)
}

// DeleteRule hard-deletes a score rule.
func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteRule(ctx, id)
}

func allowedStatusList() string {
	statuses := make([]string, 0, len(transport.AllowedStatuses))
	for status := range transport.AllowedStatuses {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	return strings.Join(statuses, ", ")
}
