package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/roomhaven/reviews-service/internal/domain"
	"github.com/roomhaven/reviews-service/internal/gateway"
	"github.com/roomhaven/reviews-service/internal/repository"
)

// targetLocks serializes same-target mutations. The check-then-act duplicate
// guard and the read-modify-write recompute are each atomic with respect to
// other operations on the same (kind, id) while the lock is held.
//
// Entries are never evicted; the map is bounded by the number of distinct
// targets mutated over the process lifetime, which is acceptable for this
// tier.
type targetLocks struct {
	locks sync.Map // target string -> *sync.Mutex
}

// Lock acquires the mutex for a target and returns its unlock function.
func (t *targetLocks) Lock(target domain.TargetRef) func() {
	v, _ := t.locks.LoadOrStore(target.String(), &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Recomputer derives a target's full rating aggregate from its current review
// set and writes it back onto the target entity.
type Recomputer struct {
	repo    repository.ReviewRepository
	gateway gateway.EntityGateway
}

// NewRecomputer creates an aggregate recomputer.
func NewRecomputer(repo repository.ReviewRepository, gw gateway.EntityGateway) *Recomputer {
	return &Recomputer{repo: repo, gateway: gw}
}

// Compute derives the aggregate without writing it back. Used by the
// read-only stats path.
func (r *Recomputer) Compute(ctx context.Context, target domain.TargetRef) (domain.Aggregate, error) {
	reviews, err := r.repo.ListAllByTarget(ctx, target)
	if err != nil {
		return domain.Aggregate{}, fmt.Errorf("fetch reviews for %s: %w", target, err)
	}
	return domain.ComputeAggregate(reviews), nil
}

// Recompute derives the aggregate from the full review set and writes it onto
// the target entity. It is deliberately not incremental: running it twice
// with no intervening mutation yields identical results, and a stale summary
// heals on the next call.
func (r *Recomputer) Recompute(ctx context.Context, target domain.TargetRef) (domain.Aggregate, error) {
	agg, err := r.Compute(ctx, target)
	if err != nil {
		return domain.Aggregate{}, err
	}

	switch target.Kind {
	case domain.TargetKindAgent:
		err = r.gateway.UpdateAgentAggregate(ctx, target.ID, agg)
	default:
		err = r.gateway.UpdateListingAggregate(ctx, target.ID, agg)
	}
	if err != nil {
		return agg, fmt.Errorf("write aggregate for %s: %w", target, err)
	}

	return agg, nil
}
