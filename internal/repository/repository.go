package repository

import (
	"context"

	"github.com/roomhaven/reviews-service/internal/domain"
)

// ReviewRepository defines the persistence operations for review records.
// The service layer depends on this interface so tests can substitute
// in-memory fakes.
type ReviewRepository interface {
	// Create inserts a new review. A storage-level uniqueness violation on
	// (author, target) surfaces as apperrors.ErrAlreadyReviewed.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// Update applies a partial update (rating/title/comment) and returns the
	// updated record.
	Update(ctx context.Context, id string, patch domain.ReviewPatch) (*domain.Review, error)

	// Delete removes a review. Deleting a missing id is an explicit NotFound,
	// not a silent no-op.
	Delete(ctx context.Context, id string) error

	// SetVerified toggles the administrative verified flag.
	SetVerified(ctx context.Context, id string, verified bool) (*domain.Review, error)

	// ListByTarget returns one page of a target's reviews, newest first,
	// along with the total count.
	ListByTarget(ctx context.Context, target domain.TargetRef, page, perPage int) ([]domain.Review, int, error)

	// ListAllByTarget returns every review for a target, newest first, with
	// no pagination cap. Used by the aggregate recomputer.
	ListAllByTarget(ctx context.Context, target domain.TargetRef) ([]domain.Review, error)

	// ListByAuthor returns one page of an author's reviews across all
	// targets, newest first, along with the total count.
	ListByAuthor(ctx context.Context, authorID string, page, perPage int) ([]domain.Review, int, error)

	// FindByAuthorAndTarget returns the author's review of the given target,
	// or NotFound when none exists. Used by the duplicate guard.
	FindByAuthorAndTarget(ctx context.Context, authorID string, target domain.TargetRef) (*domain.Review, error)
}
