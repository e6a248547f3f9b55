package scoring

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"clientops_backend/internal/leads/repository"
)

type fakeStore struct {
	mu    sync.Mutex
	leads []repository.Lead
	rules []repository.ScoreRule
}

func (f *fakeStore) ListAll(ctx context.Context, tenantID uuid.UUID) ([]repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Lead, len(f.leads))
	copy(out, f.leads)
	return out, nil
}

func (f *fakeStore) ListActiveRules(ctx context.Context) ([]repository.ScoreRule, error) {
	return f.rules, nil
}

func (f *fakeStore) UpdateScoreRecomputed(ctx context.Context, tenantID, id uuid.UUID, oldScore, newScore int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.leads {
		if f.leads[i].ID == id {
			f.leads[i].Score = newScore
		}
	}
	return nil
}

func TestRecomputeOverwritesScoresAndCountsChanges(t *testing.T) {
	tenantID := uuid.New()
	matching := repository.Lead{ID: uuid.New(), TenantID: tenantID, Score: 50, Summary: strptr("need pricing")}
	alreadyCorrect := repository.Lead{ID: uuid.New(), TenantID: tenantID, Score: 0, Summary: strptr("hello")}

	store := &fakeStore{
		leads: []repository.Lead{matching, alreadyCorrect},
		rules: []repository.ScoreRule{
			{Field: FieldSummary, Operator: OperatorContains, Value: "pricing", Points: 30, Active: true},
		},
	}

	svc := NewService(store, nil, nil)
	result, err := svc.Recompute(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}

	if result.UpdatedCount != 1 {
		t.Fatalf("expected 1 updated lead, got %d", result.UpdatedCount)
	}
	if result.RulesConsidered != 1 {
		t.Fatalf("expected 1 rule considered, got %d", result.RulesConsidered)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.leads[0].Score != 30 {
		t.Fatalf("expected matching lead rescored to 30, got %d", store.leads[0].Score)
	}
	if store.leads[1].Score != 0 {
		t.Fatalf("expected non-matching lead untouched at 0, got %d", store.leads[1].Score)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	tenantID := uuid.New()
	store := &fakeStore{
		leads: []repository.Lead{
			{ID: uuid.New(), TenantID: tenantID, Score: 50, Summary: strptr("book a demo")},
		},
		rules: []repository.ScoreRule{
			{Field: FieldSummary, Operator: OperatorContains, Value: "demo", Points: 40, Active: true},
		},
	}

	svc := NewService(store, nil, nil)

	first, err := svc.Recompute(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	if first.UpdatedCount != 1 {
		t.Fatalf("expected first run to update 1 lead, got %d", first.UpdatedCount)
	}

	second, err := svc.Recompute(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if second.UpdatedCount != 0 {
		t.Fatalf("expected second run to update nothing, got %d", second.UpdatedCount)
	}
}

func TestRecomputeWithNoActiveRulesZeroesScores(t *testing.T) {
	tenantID := uuid.New()
	store := &fakeStore{
		leads: []repository.Lead{
			{ID: uuid.New(), TenantID: tenantID, Score: 75, Summary: strptr("anything")},
		},
	}

	svc := NewService(store, nil, nil)
	result, err := svc.Recompute(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}

	if result.UpdatedCount != 1 {
		t.Fatalf("expected the lead to be zeroed, got %d updates", result.UpdatedCount)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.leads[0].Score != 0 {
		t.Fatalf("expected score 0, got %d", store.leads[0].Score)
	}
}
