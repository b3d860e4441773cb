// Package service contains the review orchestration logic: validation,
// duplicate guarding, persistence, and synchronous aggregate recomputation.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/roomhaven/reviews-service/internal/cache"
	"github.com/roomhaven/reviews-service/internal/domain"
	"github.com/roomhaven/reviews-service/internal/event"
	"github.com/roomhaven/reviews-service/internal/gateway"
	"github.com/roomhaven/reviews-service/internal/repository"
	apperrors "github.com/roomhaven/reviews-service/pkg/errors"
)

// RoleAdmin is the gateway-asserted role that may act on any review.
const RoleAdmin = "admin"

// CreateReviewInput carries a validated-at-the-edge create request. Exactly
// one of the two target IDs must be set.
type CreateReviewInput struct {
	TargetListingID string
	TargetAgentID   string
	AuthorID        string
	Rating          int
	Title           string
	Comment         string
}

// MutationResult is the outcome of a successful review mutation. When the
// post-write recompute failed, AggregateStale is true and Aggregate holds the
// last value this call managed to derive (possibly zero); the review write
// itself is never rolled back.
type MutationResult struct {
	Review         *domain.Review
	Aggregate      domain.Aggregate
	AggregateStale bool
}

// Eligibility is the answer to "can this author review this target".
type Eligibility struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// ReviewService orchestrates the review lifecycle and keeps target rating
// aggregates consistent with the review set.
type ReviewService struct {
	repo       repository.ReviewRepository
	gateway    gateway.EntityGateway
	recomputer *Recomputer
	hydrator   *Hydrator
	cache      *cache.StatsCache
	publisher  event.Publisher
	locks      targetLocks
	logger     *slog.Logger
}

// NewReviewService wires the review orchestrator.
func NewReviewService(
	repo repository.ReviewRepository,
	gw gateway.EntityGateway,
	statsCache *cache.StatsCache,
	publisher event.Publisher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		repo:       repo,
		gateway:    gw,
		recomputer: NewRecomputer(repo, gw),
		hydrator:   NewHydrator(gw, logger),
		cache:      statsCache,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateReview validates and persists a new review, then synchronously
// recomputes the target's aggregate. Duplicate submissions by the same author
// for the same target are rejected.
func (s *ReviewService) CreateReview(ctx context.Context, in CreateReviewInput) (*MutationResult, error) {
	target, err := domain.NewTargetRef(in.TargetListingID, in.TargetAgentID)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if in.AuthorID == "" {
		return nil, apperrors.Unauthorized("author identity is required")
	}
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	comment := strings.TrimSpace(in.Comment)
	if title == "" {
		return nil, apperrors.InvalidInput("title must not be empty")
	}
	if comment == "" {
		return nil, apperrors.InvalidInput("comment must not be empty")
	}

	targetName, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	author, err := s.gateway.GetUser(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(target)
	defer unlock()

	if _, err := s.repo.FindByAuthorAndTarget(ctx, in.AuthorID, target); err == nil {
		return nil, apperrors.AlreadyReviewed(in.AuthorID, target.String())
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	review := &domain.Review{
		ID:                 uuid.New().String(),
		Target:             target,
		AuthorID:           in.AuthorID,
		Rating:             in.Rating,
		Title:              title,
		Comment:            comment,
		AuthorNameSnapshot: author.Name,
		TargetNameSnapshot: targetName,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	reviewsCreatedTotal.WithLabelValues(string(target.Kind)).Inc()

	result := s.finishMutation(ctx, review, target)
	s.publishEvent(ctx, s.publisher.ReviewCreated, result)
	return result, nil
}

// GetReview returns a single review hydrated with its author and target
// snapshots.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.EnrichedReview, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	enriched := s.hydrator.Hydrate(ctx, []domain.Review{*review}, HydrateOptions{Author: true, Target: true})
	return &enriched[0], nil
}

// UpdateReview applies a partial update to a review owned by the caller and
// recomputes the target's aggregate. Admins may update any review. Target and
// author are immutable.
func (s *ReviewService) UpdateReview(ctx context.Context, id, callerID, callerRole string, patch domain.ReviewPatch) (*MutationResult, error) {
	if patch.Rating != nil {
		if err := validateRating(*patch.Rating); err != nil {
			return nil, err
		}
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, apperrors.InvalidInput("title must not be empty")
	}
	if patch.Comment != nil && strings.TrimSpace(*patch.Comment) == "" {
		return nil, apperrors.InvalidInput("comment must not be empty")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(existing, callerID, callerRole); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		agg, err := s.recomputer.Compute(ctx, existing.Target)
		if err != nil {
			return nil, err
		}
		return &MutationResult{Review: existing, Aggregate: agg}, nil
	}

	unlock := s.locks.Lock(existing.Target)
	defer unlock()

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	result := s.finishMutation(ctx, updated, updated.Target)
	s.publishEvent(ctx, s.publisher.ReviewUpdated, result)
	return result, nil
}

// DeleteReview removes a review owned by the caller and recomputes the
// target's aggregate. Deleting the target's last review resets its summary to
// the zero aggregate.
func (s *ReviewService) DeleteReview(ctx context.Context, id, callerID, callerRole string) (*MutationResult, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(existing, callerID, callerRole); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(existing.Target)
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	reviewsDeletedTotal.WithLabelValues(string(existing.Target.Kind)).Inc()

	result := s.finishMutation(ctx, existing, existing.Target)
	s.publishEvent(ctx, s.publisher.ReviewDeleted, result)
	return result, nil
}

// SetVerified toggles the administrative verified flag on a review. Role
// enforcement happens at the routing layer; this path never touches the
// target's aggregate because verification does not affect ratings.
func (s *ReviewService) SetVerified(ctx context.Context, id string, verified bool) (*domain.Review, error) {
	return s.repo.SetVerified(ctx, id, verified)
}

// GetStats returns a target's current rating aggregate, derived from the live
// review set and cached briefly. A target with no reviews yields the zero
// aggregate rather than an error.
func (s *ReviewService) GetStats(ctx context.Context, target domain.TargetRef) (domain.Aggregate, error) {
	if cached, err := s.cache.Get(ctx, target); err != nil {
		s.logger.WarnContext(ctx, "stats cache read failed",
			slog.String("target", target.String()),
			slog.String("error", err.Error()),
		)
	} else if cached != nil {
		return *cached, nil
	}

	agg, err := s.recomputer.Compute(ctx, target)
	if err != nil {
		return domain.Aggregate{}, err
	}

	if err := s.cache.Set(ctx, target, agg); err != nil {
		s.logger.WarnContext(ctx, "stats cache write failed",
			slog.String("target", target.String()),
			slog.String("error", err.Error()),
		)
	}
	return agg, nil
}

// CanReview reports whether an author may submit a review for a target. The
// answer is advisory for the UI; CreateReview re-checks under the target lock.
func (s *ReviewService) CanReview(ctx context.Context, authorID string, target domain.TargetRef) (Eligibility, error) {
	if _, err := s.resolveTarget(ctx, target); err != nil {
		if apperrors.IsNotFound(err) {
			return Eligibility{Allowed: false, Reason: "target not found"}, nil
		}
		return Eligibility{}, err
	}

	_, err := s.repo.FindByAuthorAndTarget(ctx, authorID, target)
	switch {
	case err == nil:
		return Eligibility{Allowed: false, Reason: "already reviewed"}, nil
	case apperrors.IsNotFound(err):
		return Eligibility{Allowed: true}, nil
	default:
		return Eligibility{}, err
	}
}

// ListByTarget returns one page of a target's reviews, newest first, hydrated
// with author snapshots.
func (s *ReviewService) ListByTarget(ctx context.Context, target domain.TargetRef, page, perPage int) ([]domain.EnrichedReview, int, error) {
	reviews, total, err := s.repo.ListByTarget(ctx, target, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	return s.hydrator.Hydrate(ctx, reviews, HydrateOptions{Author: true}), total, nil
}

// ListByAuthor returns one page of an author's reviews across all targets,
// newest first, hydrated with target snapshots so mixed lists stay legible.
func (s *ReviewService) ListByAuthor(ctx context.Context, authorID string, page, perPage int) ([]domain.EnrichedReview, int, error) {
	reviews, total, err := s.repo.ListByAuthor(ctx, authorID, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	return s.hydrator.Hydrate(ctx, reviews, HydrateOptions{Target: true}), total, nil
}

// finishMutation recomputes the target's aggregate after a successful write.
// A recompute failure degrades the result instead of failing the call: the
// review is already persisted and the summary will heal on the next mutation.
func (s *ReviewService) finishMutation(ctx context.Context, review *domain.Review, target domain.TargetRef) *MutationResult {
	// The review row has changed either way, so the cached stats are stale.
	if err := s.cache.Invalidate(ctx, target); err != nil {
		s.logger.WarnContext(ctx, "stats cache invalidation failed",
			slog.String("target", target.String()),
			slog.String("error", err.Error()),
		)
	}

	agg, err := s.recomputer.Recompute(ctx, target)
	if err != nil {
		recomputeFailuresTotal.WithLabelValues(string(target.Kind)).Inc()
		s.logger.ErrorContext(ctx, "aggregate recompute failed, target summary is stale",
			slog.String("target", target.String()),
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		return &MutationResult{Review: review, Aggregate: agg, AggregateStale: true}
	}

	return &MutationResult{Review: review, Aggregate: agg}
}

// publishEvent emits a lifecycle event. Publishing is best effort and never
// fails the mutation.
func (s *ReviewService) publishEvent(ctx context.Context, publish func(context.Context, *domain.Review, *domain.Aggregate) error, result *MutationResult) {
	agg := &result.Aggregate
	if result.AggregateStale {
		agg = nil
	}
	if err := publish(ctx, result.Review, agg); err != nil {
		s.logger.WarnContext(ctx, "review event publish failed",
			slog.String("review_id", result.Review.ID),
			slog.String("error", err.Error()),
		)
	}
}

// resolveTarget verifies the target entity exists and returns its display
// name for the creation-time snapshot.
func (s *ReviewService) resolveTarget(ctx context.Context, target domain.TargetRef) (string, error) {
	switch target.Kind {
	case domain.TargetKindAgent:
		agent, err := s.gateway.GetAgent(ctx, target.ID)
		if err != nil {
			return "", err
		}
		return agent.Name, nil
	default:
		listing, err := s.gateway.GetListing(ctx, target.ID)
		if err != nil {
			return "", err
		}
		return listing.Title, nil
	}
}

func validateRating(rating int) error {
	if rating < domain.RatingMin || rating > domain.RatingMax {
		return apperrors.InvalidInput("rating must be between 1 and 5")
	}
	return nil
}

func authorize(review *domain.Review, callerID, callerRole string) error {
	if callerID == "" {
		return apperrors.Unauthorized("caller identity is required")
	}
	if review.AuthorID != callerID && callerRole != RoleAdmin {
		return apperrors.Forbidden("only the review author may modify this review")
	}
	return nil
}
