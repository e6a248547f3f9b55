package scoring

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"clientops_backend/internal/events"
	"clientops_backend/internal/leads/repository"
	"clientops_backend/platform/logger"
)

// recomputeParallelism bounds concurrent score writes during a run.
const recomputeParallelism = 8

// Store is the persistence surface recompute needs. Implemented by the leads
// repository and by test fakes.
type Store interface {
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]repository.Lead, error)
	ListActiveRules(ctx context.Context) ([]repository.ScoreRule, error)
	UpdateScoreRecomputed(ctx context.Context, tenantID, id uuid.UUID, oldScore, newScore int) error
}

// Result summarizes one recompute run.
type Result struct {
	UpdatedCount    int
	RulesConsidered int
}

// Service recomputes lead scores from the active rule set.
type Service struct {
	store Store
	bus   events.Bus
	log   *logger.Logger
}

// NewService creates a scoring service. bus may be nil.
func NewService(store Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

// Recompute applies all active rules to every lead of the tenant. Each lead's
// score is fully overwritten by the rule sum; a changed score is persisted
// together with a score_recomputed audit event, an unchanged score writes
// nothing. Running twice with unchanged leads and rules updates zero leads
// the second time.
//
// The rule set is read once at the start; rule edits racing a run are picked
// up by the next invocation.
func (s *Service) Recompute(ctx context.Context, tenantID uuid.UUID) (Result, error) {
	rules, err := s.store.ListActiveRules(ctx)
	if err != nil {
		return Result{}, err
	}

	leads, err := s.store.ListAll(ctx, tenantID)
	if err != nil {
		return Result{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recomputeParallelism)

	var updated atomic.Int64
	for _, lead := range leads {
		newScore := Score(lead, rules)
		if newScore == lead.Score {
			continue
		}
		g.Go(func() error {
			if err := s.store.UpdateScoreRecomputed(gctx, tenantID, lead.ID, lead.Score, newScore); err != nil {
				return err
			}
			updated.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if s.log != nil {
		s.log.Info("lead scores recomputed",
			"tenant_id", tenantID.String(),
			"leads", len(leads),
			"rules", len(rules),
			"updated", updated.Load(),
		)
	}

	result := Result{UpdatedCount: int(updated.Load()), RulesConsidered: len(rules)}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadScoreRecomputed{
			BaseEvent:       events.NewBaseEvent(),
			TenantID:        tenantID,
			UpdatedCount:    result.UpdatedCount,
			RulesConsidered: result.RulesConsidered,
		})
	}

	return result, nil
}
