package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/roomhaven/reviews-service/internal/domain"
	"github.com/roomhaven/reviews-service/pkg/database"
	apperrors "github.com/roomhaven/reviews-service/pkg/errors"
)

const pgUniqueViolation = "23505"

const reviewColumns = `id, target_listing_id, target_agent_id, author_id, rating, title, comment,
	       verified, author_name_snapshot, target_name_snapshot, created_at, updated_at`

// ReviewRepository implements review persistence using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// targetColumn maps a target kind to its foreign key column.
func targetColumn(kind domain.TargetKind) string {
	if kind == domain.TargetKindAgent {
		return "target_agent_id"
	}
	return "target_listing_id"
}

// Create inserts a new review. The store assigns both timestamps. A unique
// index violation on (author, target) maps to ErrAlreadyReviewed.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, target_listing_id, target_agent_id, author_id, rating, title, comment,
		                     verified, author_name_snapshot, target_name_snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.Target.ListingID(),
		review.Target.AgentID(),
		review.AuthorID,
		review.Rating,
		review.Title,
		review.Comment,
		review.Verified,
		review.AuthorNameSnapshot,
		review.TargetNameSnapshot,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperrors.AlreadyReviewed(review.AuthorID, review.Target.String())
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by id.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE id = $1`

	review, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// Update applies a partial update to rating/title/comment and refreshes
// updated_at. Returns NotFound when the id does not exist.
func (r *ReviewRepository) Update(ctx context.Context, id string, patch domain.ReviewPatch) (*domain.Review, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if patch.Rating != nil {
		args = append(args, *patch.Rating)
		sets = append(sets, fmt.Sprintf("rating = $%d", len(args)))
	}
	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Comment != nil {
		args = append(args, *patch.Comment)
		sets = append(sets, fmt.Sprintf("comment = $%d", len(args)))
	}

	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE reviews
		SET %s
		WHERE id = $%d
		RETURNING `+reviewColumns, strings.Join(sets, ", "), len(args))

	review, err := scanReview(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// Delete removes a review, reporting NotFound when nothing was deleted.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}

// SetVerified toggles the administrative verified flag.
func (r *ReviewRepository) SetVerified(ctx context.Context, id string, verified bool) (*domain.Review, error) {
	query := `
		UPDATE reviews
		SET verified = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + reviewColumns

	review, err := scanReview(r.pool.QueryRow(ctx, query, verified, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("set review verified: %w", err)
	}
	return review, nil
}

// ListByTarget returns one page of a target's reviews, newest first, plus the
// total count via a window function.
func (r *ReviewRepository) ListByTarget(ctx context.Context, target domain.TargetRef, page, perPage int) ([]domain.Review, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := fmt.Sprintf(`
		SELECT `+reviewColumns+`,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE %s = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, targetColumn(target.Kind))

	rows, err := r.pool.Query(ctx, query, target.ID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews by target: %w", err)
	}
	defer rows.Close()

	return collectReviewsWithCount(rows)
}

// ListAllByTarget returns every review for a target with no pagination cap.
// The recomputer depends on the full set.
func (r *ReviewRepository) ListAllByTarget(ctx context.Context, target domain.TargetRef) ([]domain.Review, error) {
	query := fmt.Sprintf(`
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE %s = $1
		ORDER BY created_at DESC`, targetColumn(target.Kind))

	rows, err := r.pool.Query(ctx, query, target.ID)
	if err != nil {
		return nil, fmt.Errorf("list all reviews by target: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

// ListByAuthor returns one page of an author's reviews across all targets.
func (r *ReviewRepository) ListByAuthor(ctx context.Context, authorID string, page, perPage int) ([]domain.Review, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT ` + reviewColumns + `,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE author_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, authorID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews by author: %w", err)
	}
	defer rows.Close()

	return collectReviewsWithCount(rows)
}

// FindByAuthorAndTarget returns the author's review of the target, or
// NotFound. The duplicate guard treats NotFound as "allowed".
func (r *ReviewRepository) FindByAuthorAndTarget(ctx context.Context, authorID string, target domain.TargetRef) (*domain.Review, error) {
	query := fmt.Sprintf(`
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE author_id = $1 AND %s = $2`, targetColumn(target.Kind))

	review, err := scanReview(r.pool.QueryRow(ctx, query, authorID, target.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", target.String())
		}
		return nil, fmt.Errorf("find review by author and target: %w", err)
	}
	return review, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*domain.Review, error) {
	var (
		rv        domain.Review
		listingID *string
		agentID   *string
	)

	if err := row.Scan(
		&rv.ID,
		&listingID,
		&agentID,
		&rv.AuthorID,
		&rv.Rating,
		&rv.Title,
		&rv.Comment,
		&rv.Verified,
		&rv.AuthorNameSnapshot,
		&rv.TargetNameSnapshot,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	rv.Target = targetFromColumns(listingID, agentID)
	return &rv, nil
}

func collectReviewsWithCount(rows pgx.Rows) ([]domain.Review, int, error) {
	var (
		reviews    = []domain.Review{}
		totalCount int
	)

	for rows.Next() {
		var (
			rv        domain.Review
			listingID *string
			agentID   *string
		)

		if err := rows.Scan(
			&rv.ID,
			&listingID,
			&agentID,
			&rv.AuthorID,
			&rv.Rating,
			&rv.Title,
			&rv.Comment,
			&rv.Verified,
			&rv.AuthorNameSnapshot,
			&rv.TargetNameSnapshot,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		rv.Target = targetFromColumns(listingID, agentID)
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, totalCount, nil
}

// targetFromColumns rebuilds the TargetRef from the two nullable FK columns.
// The table's CHECK constraint guarantees exactly one is set.
func targetFromColumns(listingID, agentID *string) domain.TargetRef {
	if listingID != nil {
		return domain.ListingTarget(*listingID)
	}
	if agentID != nil {
		return domain.AgentTarget(*agentID)
	}
	return domain.TargetRef{}
}
