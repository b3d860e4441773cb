package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/roomhaven/reviews-service/internal/domain"
	apperrors "github.com/roomhaven/reviews-service/pkg/errors"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, id string, patch domain.ReviewPatch) (*domain.Review, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepository) SetVerified(ctx context.Context, id string, verified bool) (*domain.Review, error) {
	args := m.Called(ctx, id, verified)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockRepository) ListByTarget(ctx context.Context, target domain.TargetRef, page, perPage int) ([]domain.Review, int, error) {
	args := m.Called(ctx, target, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockRepository) ListAllByTarget(ctx context.Context, target domain.TargetRef) ([]domain.Review, error) {
	args := m.Called(ctx, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockRepository) ListByAuthor(ctx context.Context, authorID string, page, perPage int) ([]domain.Review, int, error) {
	args := m.Called(ctx, authorID, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockRepository) FindByAuthorAndTarget(ctx context.Context, authorID string, target domain.TargetRef) (*domain.Review, error) {
	args := m.Called(ctx, authorID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) GetUser(ctx context.Context, id string) (*domain.UserSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserSnapshot), args.Error(1)
}

func (m *mockGateway) GetListing(ctx context.Context, id string) (*domain.ListingSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ListingSnapshot), args.Error(1)
}

func (m *mockGateway) GetAgent(ctx context.Context, id string) (*domain.AgentSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentSnapshot), args.Error(1)
}

func (m *mockGateway) UpdateListingAggregate(ctx context.Context, id string, agg domain.Aggregate) error {
	args := m.Called(ctx, id, agg)
	return args.Error(0)
}

func (m *mockGateway) UpdateAgentAggregate(ctx context.Context, id string, agg domain.Aggregate) error {
	args := m.Called(ctx, id, agg)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) ReviewCreated(ctx context.Context, review *domain.Review, agg *domain.Aggregate) error {
	args := m.Called(ctx, review, agg)
	return args.Error(0)
}

func (m *mockPublisher) ReviewUpdated(ctx context.Context, review *domain.Review, agg *domain.Aggregate) error {
	args := m.Called(ctx, review, agg)
	return args.Error(0)
}

func (m *mockPublisher) ReviewDeleted(ctx context.Context, review *domain.Review, agg *domain.Aggregate) error {
	args := m.Called(ctx, review, agg)
	return args.Error(0)
}

func newTestService(repo *mockRepository, gw *mockGateway, pub *mockPublisher) *ReviewService {
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewReviewService(repo, gw, nil, pub, log)
}

func validCreateInput() CreateReviewInput {
	return CreateReviewInput{
		TargetListingID: "listing-1",
		AuthorID:        "user-1",
		Rating:          5,
		Title:           "Great place",
		Comment:         "Spotless and quiet, would stay again.",
	}
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()
	target := domain.ListingTarget("listing-1")

	t.Run("success recomputes target aggregate", func(t *testing.T) {
		repo := new(mockRepository)
		gw := new(mockGateway)
		pub := new(mockPublisher)
		svc := newTestService(repo, gw, pub)

		gw.On("GetListing", ctx, "listing-1").
			Return(&domain.ListingSnapshot{ID: "listing-1", Title: "Seaside Flat"}, nil)
		gw.On("GetUser", ctx, "user-1").
			Return(&domain.UserSnapshot{ID: "user-1", Name: "Alex"}, nil)
		repo.On("FindByAuthorAndTarget", ctx, "user-1", target).
			Return(nil, apperrors.NotFound("review", "user-1"))
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
		repo.On("ListAllByTarget", ctx, target).Return([]domain.Review{
			{Rating: 5}, {Rating: 4}, {Rating: 5}, {Rating: 3}, {Rating: 5},
		}, nil)
		gw.On("UpdateListingAggregate", ctx, "listing-1", mock.AnythingOfType("domain.Aggregate")).
			Return(nil)
		pub.On("ReviewCreated", ctx, mock.AnythingOfType("*domain.Review"), mock.AnythingOfType("*domain.Aggregate")).
			Return(nil)

		result, err := svc.CreateReview(ctx, validCreateInput())

		require.NoError(t, err)
		assert.False(t, result.AggregateStale)
		assert.Equal(t, 4.4, result.Aggregate.AverageRating)
		assert.Equal(t, 5, result.Aggregate.ReviewCount)
		assert.Equal(t, 3, result.Aggregate.Distribution[5])
		assert.NotEmpty(t, result.Review.ID)
		assert.Equal(t, "Alex", result.Review.AuthorNameSnapshot)
		assert.Equal(t, "Seaside Flat", result.Review.TargetNameSnapshot)
		repo.AssertExpectations(t)
		gw.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("rating out of range rejected", func(t *testing.T) {
		svc := newTestService(new(mockRepository), new(mockGateway), new(mockPublisher))

		for _, rating := range []int{0, 6, -1} {
			in := validCreateInput()
			in.Rating = rating

			_, err := svc.CreateReview(ctx, in)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		}
	})

	t.Run("both targets rejected", func(t *testing.T) {
		svc := newTestService(new(mockRepository), new(mockGateway), new(mockPublisher))

		in := validCreateInput()
		in.TargetAgentID = "agent-1"

		_, err := svc.CreateReview(ctx, in)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("neither target rejected", func(t *testing.T) {
		svc := newTestService(new(mockRepository), new(mockGateway), new(mockPublisher))

		in := validCreateInput()
		in.TargetListingID = ""

		_, err := svc.CreateReview(ctx, in)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("blank title rejected", func(t *testing.T) {
		svc := newTestService(new(mockRepository), new(mockGateway), new(mockPublisher))

		in := validCreateInput()
		in.Title = "   "

		_, err := svc.CreateReview(ctx, in)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("missing author identity rejected", func(t *testing.T) {
		svc := newTestService(new(mockRepository), new(mockGateway), new(mockPublisher))

		in := validCreateInput()
		in.AuthorID = ""

		_, err := svc.CreateReview(ctx, in)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("target not found", func(t *testing.T) {
		repo := new(mockRepository)
		gw := new(mockGateway)
		svc := newTestService(repo, gw, new(mockPublisher))

		gw.On("GetListing", ctx, "listing-1").
			Return(nil, apperrors.NotFound("listing", "listing-1"))

		_, err := svc.CreateReview(ctx, validCreateInput())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("author not found", func(t *testing.T) {
		repo := new(mockRepository)
		gw := new(mockGateway)
		svc := newTestService(repo, gw, new(mockPublisher))

		gw.On("GetListing", ctx, "listing-1").
			Return(&domain.ListingSnapshot{ID: "listing-1", Title: "Seaside Flat"}, nil)
		gw.On("GetUser", ctx, "user-1").
			Return(nil, apperrors.NotFound("user", "user-1"))

		_, err := svc.CreateReview(ctx, validCreateInput())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate review rejected", func(t *testing.T) {
		repo := new(mockRepository)
		gw := new(mockGateway)
		svc := newTestService(repo, gw, new(mockPublisher))

		gw.On("GetListing", ctx, "listing-1").
			Return(&domain.ListingSnapshot{ID: "listing-1", Title: "Seaside Flat"}, nil)
		gw.On("GetUser", ctx, "user-1").
			Return(&domain.UserSnapshot{ID: "user-1", Name: "Alex"}, nil)
		repo.On("FindByAuthorAndTarget", ctx, "user-1", target).
			Return(&domain.Review{ID: "existing"}, nil)

		_, err := svc.CreateReview(ctx, validCreateInput())
		assert.ErrorIs(t, err, apperrors.ErrAlreadyReviewed)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("recompute failure degrades instead of failing", func(t *testing.T) {
		repo := new(mockRepository)
		gw := new(mockGateway)
		pub := new(mockPublisher)
		svc := newTestService(repo, gw, pub)

		gw.On("GetListing", ctx, "listing-1").
			Return(&domain.ListingSnapshot{ID: "listing-1", Title: "Seaside Flat"}, nil)
		gw.On("GetUser", ctx, "user-1").
			Return(&domain.UserSnapshot{ID: "user-1", Name: "Alex"}, nil)
		repo.On("FindByAuthorAndTarget", ctx, "user-1", target).
			Return(nil, apperrors.NotFound("review", "user-1"))
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
		repo.On("ListAllByTarget", ctx, target).Return([]domain.Review{{Rating: 5}}, nil)
		gw.On("UpdateListingAggregate", ctx, "listing-1", mock.AnythingOfType("domain.Aggregate")).
			Return(errors.New("listing service down"))
		pub.On("ReviewCreated", ctx, mock.AnythingOfType("*domain.Review"), (*domain.Aggregate)(nil)).
			Return(nil)

		result, err := svc.CreateReview(ctx, validCreateInput())

		require.NoError(t, err)
		assert.True(t, result.AggregateStale)
		assert.NotNil(t, result.Review)
	})
}

func TestUpdateReview(t *testing.T) {
	ctx := context.Background()
	target := domain.ListingTarget("listing-1")
	existing := &domain.Review{ID: "rev-1", Target: target, AuthorID: "user-1", Rating: 3}

	t.Run("author updates rating and aggregate follows", func(t *testing.T) {
		repo := new(mockRepository)
		gw := new(mockGateway)
		pub := new(mockPublisher)
		svc := newTestService(repo, gw, pub)

		newRating := 5
		patch := domain.ReviewPatch{Rating: &newRating}
		updated := &domain.Review{ID: "rev-1", Target: target, AuthorID: "user-1", Rating: 5}

		repo.On("GetByID", ctx, "rev-1").Return(existing, nil)
		repo.On("Update", ctx, "rev-1", patch).Return(updated, nil)
		repo.On("ListAllByTarget", ctx, target).Return([]domain.Review{{Rating: 5}}, nil)
		gw.On("UpdateListingAggregate", ctx, "listing-1", mock.AnythingOfType("domain.Aggregate")).
			Return(nil)
		pub.On("ReviewUpdated", ctx, updated, mock.AnythingOfType("*domain.Aggregate")).Return(nil)

		result, err := svc.UpdateReview(ctx, "rev-1", "user-1", "", patch)

		require.NoError(t, err)
		assert.Equal(t, 5, result.Review.Rating)
		assert.Equal(t, 5.0, result.Aggregate.AverageRating)
		repo.AssertExpectations(t)
	})

	t.Run("non-author forbidden", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, new(mockGateway), new(mockPublisher))

		newRating := 5
		repo.On("GetByID", ctx, "rev-1").Return(existing, nil)

		_, err := svc.UpdateReview(ctx, "rev-1", "someone-else", "", domain.ReviewPatch{Rating: &newRating})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin may update any review", func(t *testing.T) {
		repo := new(mockRepository)
		gw := new(mockGateway)
		pub := new(mockPublisher)
		svc := newTestService(repo, gw, pub)

		newRating := 4
		patch := domain.ReviewPatch{Rating: &newRating}
		updated := &domain.Review{ID: "rev-1", Target: target, AuthorID: "user-1", Rating: 4}

		repo.On("GetByID", ctx, "rev-1").Return(existing, nil)
		repo.On("Update", ctx, "rev-1", patch).Return(updated, nil)
		repo.On("ListAllByTarget", ctx, target).Return([]domain.Review{{Rating: 4}}, nil)
		gw.On("UpdateListingAggregate", ctx, "listing-1", mock.AnythingOfType("domain.Aggregate")).
			Return(nil)
		pub.On("ReviewUpdated", ctx, updated, mock.AnythingOfType("*domain.Aggregate")).Return(nil)

		_, err := svc.UpdateReview(ctx, "rev-1", "admin-1", RoleAdmin, patch)
		require.NoError(t, err)
	})

	t.Run("empty patch returns current state without writing", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, new(mockGateway), new(mockPublisher))

		repo.On("GetByID", ctx, "rev-1").Return(existing, nil)
		repo.On("ListAllByTarget", ctx, target).Return([]domain.Review{{Rating: 3}}, nil)

		result, err := svc.UpdateReview(ctx, "rev-1", "user-1", "", domain.ReviewPatch{})

		require.NoError(t, err)
		assert.Equal(t, existing, result.Review)
		assert.Equal(t, 3.0, result.Aggregate.AverageRating)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid patch rating rejected", func(t *testing.T) {
		svc := newTestService(new(mockRepository), new(mockGateway), new(mockPublisher))

		bad := 6
		_, err := svc.UpdateReview(ctx, "rev-1", "user-1", "", domain.ReviewPatch{Rating: &bad})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()
	target := domain.ListingTarget("listing-1")
	existing := &domain.Review{ID: "rev-1", Target: target, AuthorID: "user-1", Rating: 5}

	t.Run("deleting last review resets aggregate to zero", func(t *testing.T) {
		repo := new(mockRepository)
		gw := new(mockGateway)
		pub := new(mockPublisher)
		svc := newTestService(repo, gw, pub)

		repo.On("GetByID", ctx, "rev-1").Return(existing, nil)
		repo.On("Delete", ctx, "rev-1").Return(nil)
		repo.On("ListAllByTarget", ctx, target).Return([]domain.Review{}, nil)
		gw.On("UpdateListingAggregate", ctx, "listing-1", domain.ZeroAggregate()).Return(nil)
		pub.On("ReviewDeleted", ctx, existing, mock.AnythingOfType("*domain.Aggregate")).Return(nil)

		result, err := svc.DeleteReview(ctx, "rev-1", "user-1", "")

		require.NoError(t, err)
		assert.Equal(t, 0, result.Aggregate.ReviewCount)
		assert.Equal(t, 0.0, result.Aggregate.AverageRating)
		gw.AssertExpectations(t)
	})

	t.Run("non-author forbidden", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, new(mockGateway), new(mockPublisher))

		repo.On("GetByID", ctx, "rev-1").Return(existing, nil)

		_, err := svc.DeleteReview(ctx, "rev-1", "someone-else", "")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing review", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, new(mockGateway), new(mockPublisher))

		repo.On("GetByID", ctx, "rev-1").Return(nil, apperrors.NotFound("review", "rev-1"))

		_, err := svc.DeleteReview(ctx, "rev-1", "user-1", "")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	target := domain.AgentTarget("agent-1")

	t.Run("derives aggregate from review set", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, new(mockGateway), new(mockPublisher))

		repo.On("ListAllByTarget", ctx, target).Return([]domain.Review{
			{Rating: 4}, {Rating: 2},
		}, nil)

		agg, err := svc.GetStats(ctx, target)

		require.NoError(t, err)
		assert.Equal(t, 3.0, agg.AverageRating)
		assert.Equal(t, 2, agg.ReviewCount)
	})

	t.Run("target with no reviews yields zero aggregate", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, new(mockGateway), new(mockPublisher))

		repo.On("ListAllByTarget", ctx, target).Return([]domain.Review{}, nil)

		agg, err := svc.GetStats(ctx, target)

		require.NoError(t, err)
		assert.Equal(t, domain.ZeroAggregate(), agg)
	})
}

func TestCanReview(t *testing.T) {
	ctx := context.Background()
	target := domain.ListingTarget("listing-1")

	t.Run("allowed when no prior review", func(t *testing.T) {
		repo := new(mockRepository)
		gw := new(mockGateway)
		svc := newTestService(repo, gw, new(mockPublisher))

		gw.On("GetListing", ctx, "listing-1").
			Return(&domain.ListingSnapshot{ID: "listing-1"}, nil)
		repo.On("FindByAuthorAndTarget", ctx, "user-1", target).
			Return(nil, apperrors.NotFound("review", "user-1"))

		result, err := svc.CanReview(ctx, "user-1", target)

		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Empty(t, result.Reason)
	})

	t.Run("denied after prior review", func(t *testing.T) {
		repo := new(mockRepository)
		gw := new(mockGateway)
		svc := newTestService(repo, gw, new(mockPublisher))

		gw.On("GetListing", ctx, "listing-1").
			Return(&domain.ListingSnapshot{ID: "listing-1"}, nil)
		repo.On("FindByAuthorAndTarget", ctx, "user-1", target).
			Return(&domain.Review{ID: "rev-1"}, nil)

		result, err := svc.CanReview(ctx, "user-1", target)

		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, "already reviewed", result.Reason)
	})

	t.Run("denied for missing target", func(t *testing.T) {
		gw := new(mockGateway)
		svc := newTestService(new(mockRepository), gw, new(mockPublisher))

		gw.On("GetListing", ctx, "listing-1").
			Return(nil, apperrors.NotFound("listing", "listing-1"))

		result, err := svc.CanReview(ctx, "user-1", target)

		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, "target not found", result.Reason)
	})
}

func TestListByTargetHydration(t *testing.T) {
	ctx := context.Background()
	target := domain.ListingTarget("listing-1")

	t.Run("author lookup failure leaves snapshot nil", func(t *testing.T) {
		repo := new(mockRepository)
		gw := new(mockGateway)
		svc := newTestService(repo, gw, new(mockPublisher))

		repo.On("ListByTarget", ctx, target, 1, 20).Return([]domain.Review{
			{ID: "rev-1", AuthorID: "user-1", Target: target, Rating: 5},
			{ID: "rev-2", AuthorID: "user-gone", Target: target, Rating: 4},
		}, 2, nil)
		gw.On("GetUser", ctx, "user-1").
			Return(&domain.UserSnapshot{ID: "user-1", Name: "Alex"}, nil)
		gw.On("GetUser", ctx, "user-gone").
			Return(nil, apperrors.NotFound("user", "user-gone"))

		reviews, total, err := svc.ListByTarget(ctx, target, 1, 20)

		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, reviews, 2)
		require.NotNil(t, reviews[0].Author)
		assert.Equal(t, "Alex", reviews[0].Author.Name)
		assert.Nil(t, reviews[1].Author)
	})

	t.Run("duplicate authors fetched once", func(t *testing.T) {
		repo := new(mockRepository)
		gw := new(mockGateway)
		svc := newTestService(repo, gw, new(mockPublisher))

		repo.On("ListByTarget", ctx, target, 1, 20).Return([]domain.Review{
			{ID: "rev-1", AuthorID: "user-1", Target: target},
			{ID: "rev-2", AuthorID: "user-1", Target: target},
		}, 2, nil)
		gw.On("GetUser", ctx, "user-1").
			Return(&domain.UserSnapshot{ID: "user-1", Name: "Alex"}, nil).Once()

		_, _, err := svc.ListByTarget(ctx, target, 1, 20)

		require.NoError(t, err)
		gw.AssertExpectations(t)
	})
}

func TestListByAuthorHydratesTargets(t *testing.T) {
	ctx := context.Background()

	repo := new(mockRepository)
	gw := new(mockGateway)
	svc := newTestService(repo, gw, new(mockPublisher))

	repo.On("ListByAuthor", ctx, "user-1", 1, 20).Return([]domain.Review{
		{ID: "rev-1", AuthorID: "user-1", Target: domain.ListingTarget("listing-1")},
		{ID: "rev-2", AuthorID: "user-1", Target: domain.AgentTarget("agent-1")},
	}, 2, nil)
	gw.On("GetListing", ctx, "listing-1").
		Return(&domain.ListingSnapshot{ID: "listing-1", Title: "Seaside Flat"}, nil)
	gw.On("GetAgent", ctx, "agent-1").
		Return(&domain.AgentSnapshot{ID: "agent-1", Name: "Sam"}, nil)

	reviews, total, err := svc.ListByAuthor(ctx, "user-1", 1, 20)

	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, reviews, 2)
	require.NotNil(t, reviews[0].Listing)
	assert.Equal(t, "Seaside Flat", reviews[0].Listing.Title)
	require.NotNil(t, reviews[1].Agent)
	assert.Equal(t, "Sam", reviews[1].Agent.Name)
}

func TestSetVerified(t *testing.T) {
	ctx := context.Background()

	repo := new(mockRepository)
	svc := newTestService(repo, new(mockGateway), new(mockPublisher))

	verified := &domain.Review{ID: "rev-1", Verified: true}
	repo.On("SetVerified", ctx, "rev-1", true).Return(verified, nil)

	review, err := svc.SetVerified(ctx, "rev-1", true)

	require.NoError(t, err)
	assert.True(t, review.Verified)
}
