package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomhaven/reviews-service/internal/domain"
	"github.com/roomhaven/reviews-service/internal/service"
	apperrors "github.com/roomhaven/reviews-service/pkg/errors"
	"github.com/roomhaven/reviews-service/pkg/health"
)

type fakeRepo struct {
	create              func(ctx context.Context, review *domain.Review) error
	getByID             func(ctx context.Context, id string) (*domain.Review, error)
	update              func(ctx context.Context, id string, patch domain.ReviewPatch) (*domain.Review, error)
	deleteFn            func(ctx context.Context, id string) error
	setVerified         func(ctx context.Context, id string, verified bool) (*domain.Review, error)
	listByTarget        func(ctx context.Context, target domain.TargetRef, page, perPage int) ([]domain.Review, int, error)
	listAllByTarget     func(ctx context.Context, target domain.TargetRef) ([]domain.Review, error)
	listByAuthor        func(ctx context.Context, authorID string, page, perPage int) ([]domain.Review, int, error)
	findByAuthorTarget  func(ctx context.Context, authorID string, target domain.TargetRef) (*domain.Review, error)
}

func (f *fakeRepo) Create(ctx context.Context, review *domain.Review) error {
	return f.create(ctx, review)
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	return f.getByID(ctx, id)
}

func (f *fakeRepo) Update(ctx context.Context, id string, patch domain.ReviewPatch) (*domain.Review, error) {
	return f.update(ctx, id, patch)
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeRepo) SetVerified(ctx context.Context, id string, verified bool) (*domain.Review, error) {
	return f.setVerified(ctx, id, verified)
}

func (f *fakeRepo) ListByTarget(ctx context.Context, target domain.TargetRef, page, perPage int) ([]domain.Review, int, error) {
	return f.listByTarget(ctx, target, page, perPage)
}

func (f *fakeRepo) ListAllByTarget(ctx context.Context, target domain.TargetRef) ([]domain.Review, error) {
	return f.listAllByTarget(ctx, target)
}

func (f *fakeRepo) ListByAuthor(ctx context.Context, authorID string, page, perPage int) ([]domain.Review, int, error) {
	return f.listByAuthor(ctx, authorID, page, perPage)
}

func (f *fakeRepo) FindByAuthorAndTarget(ctx context.Context, authorID string, target domain.TargetRef) (*domain.Review, error) {
	return f.findByAuthorTarget(ctx, authorID, target)
}

type fakeGateway struct {
	getUser         func(ctx context.Context, id string) (*domain.UserSnapshot, error)
	getListing      func(ctx context.Context, id string) (*domain.ListingSnapshot, error)
	getAgent        func(ctx context.Context, id string) (*domain.AgentSnapshot, error)
	updateListing   func(ctx context.Context, id string, agg domain.Aggregate) error
	updateAgent     func(ctx context.Context, id string, agg domain.Aggregate) error
}

func (f *fakeGateway) GetUser(ctx context.Context, id string) (*domain.UserSnapshot, error) {
	return f.getUser(ctx, id)
}

func (f *fakeGateway) GetListing(ctx context.Context, id string) (*domain.ListingSnapshot, error) {
	return f.getListing(ctx, id)
}

func (f *fakeGateway) GetAgent(ctx context.Context, id string) (*domain.AgentSnapshot, error) {
	return f.getAgent(ctx, id)
}

func (f *fakeGateway) UpdateListingAggregate(ctx context.Context, id string, agg domain.Aggregate) error {
	return f.updateListing(ctx, id, agg)
}

func (f *fakeGateway) UpdateAgentAggregate(ctx context.Context, id string, agg domain.Aggregate) error {
	return f.updateAgent(ctx, id, agg)
}

type noopPublisher struct{}

func (noopPublisher) ReviewCreated(context.Context, *domain.Review, *domain.Aggregate) error {
	return nil
}

func (noopPublisher) ReviewUpdated(context.Context, *domain.Review, *domain.Aggregate) error {
	return nil
}

func (noopPublisher) ReviewDeleted(context.Context, *domain.Review, *domain.Aggregate) error {
	return nil
}

func newTestRouter(repo *fakeRepo, gw *fakeGateway) http.Handler {
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc := service.NewReviewService(repo, gw, nil, noopPublisher{}, log)
	return NewRouter(svc, health.NewHandler(), log, RouterConfig{Environment: "test"})
}

func happyGateway() *fakeGateway {
	return &fakeGateway{
		getUser: func(_ context.Context, id string) (*domain.UserSnapshot, error) {
			return &domain.UserSnapshot{ID: id, Name: "Alex"}, nil
		},
		getListing: func(_ context.Context, id string) (*domain.ListingSnapshot, error) {
			return &domain.ListingSnapshot{ID: id, Title: "Seaside Flat"}, nil
		},
		getAgent: func(_ context.Context, id string) (*domain.AgentSnapshot, error) {
			return &domain.AgentSnapshot{ID: id, Name: "Sam"}, nil
		},
		updateListing: func(context.Context, string, domain.Aggregate) error { return nil },
		updateAgent:   func(context.Context, string, domain.Aggregate) error { return nil },
	}
}

func TestCreateReviewEndpoint(t *testing.T) {
	t.Run("201 on valid request", func(t *testing.T) {
		repo := &fakeRepo{
			findByAuthorTarget: func(_ context.Context, authorID string, target domain.TargetRef) (*domain.Review, error) {
				return nil, apperrors.NotFound("review", target.String())
			},
			create: func(_ context.Context, review *domain.Review) error { return nil },
			listAllByTarget: func(_ context.Context, _ domain.TargetRef) ([]domain.Review, error) {
				return []domain.Review{{Rating: 5}}, nil
			},
		}
		router := newTestRouter(repo, happyGateway())

		body := `{"target_listing_id":"listing-1","rating":5,"title":"Great place","comment":"Lovely stay."}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Data struct {
				Review    domain.Review    `json:"review"`
				Aggregate domain.Aggregate `json:"aggregate"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 5, resp.Data.Review.Rating)
		assert.Equal(t, "Alex", resp.Data.Review.AuthorNameSnapshot)
		assert.Equal(t, 5.0, resp.Data.Aggregate.AverageRating)
		assert.Equal(t, 1, resp.Data.Aggregate.ReviewCount)
	})

	t.Run("400 on out-of-range rating", func(t *testing.T) {
		router := newTestRouter(&fakeRepo{}, happyGateway())

		body := `{"target_listing_id":"listing-1","rating":6,"title":"t","comment":"c"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader(body))
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("400 when both targets set", func(t *testing.T) {
		router := newTestRouter(&fakeRepo{}, happyGateway())

		body := `{"target_listing_id":"listing-1","target_agent_id":"agent-1","rating":4,"title":"t","comment":"c"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader(body))
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
	})

	t.Run("409 on duplicate review", func(t *testing.T) {
		repo := &fakeRepo{
			findByAuthorTarget: func(_ context.Context, _ string, _ domain.TargetRef) (*domain.Review, error) {
				return &domain.Review{ID: "existing"}, nil
			},
		}
		router := newTestRouter(repo, happyGateway())

		body := `{"target_listing_id":"listing-1","rating":5,"title":"Great place","comment":"Lovely stay."}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader(body))
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "ALREADY_REVIEWED")
	})
}

func TestListReviewsEndpoint(t *testing.T) {
	repo := &fakeRepo{
		listByTarget: func(_ context.Context, target domain.TargetRef, page, perPage int) ([]domain.Review, int, error) {
			assert.Equal(t, domain.TargetKindListing, target.Kind)
			return []domain.Review{
				{ID: "rev-1", AuthorID: "user-1", Target: target, Rating: 5},
			}, 1, nil
		},
	}
	router := newTestRouter(repo, happyGateway())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings/listing-1/reviews?page=1&per_page=20", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data       []domain.EnrichedReview `json:"data"`
		TotalCount int                     `json:"total_count"`
		Page       int                     `json:"page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalCount)
	require.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Data[0].Author)
	assert.Equal(t, "Alex", resp.Data[0].Author.Name)
}

func TestStatsEndpoint(t *testing.T) {
	repo := &fakeRepo{
		listAllByTarget: func(_ context.Context, target domain.TargetRef) ([]domain.Review, error) {
			return []domain.Review{{Rating: 5}, {Rating: 4}, {Rating: 5}, {Rating: 3}, {Rating: 5}}, nil
		},
	}
	router := newTestRouter(repo, happyGateway())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings/listing-1/reviews/stats", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.Aggregate `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4.4, resp.Data.AverageRating)
	assert.Equal(t, 5, resp.Data.ReviewCount)
}

func TestEligibilityEndpoint(t *testing.T) {
	t.Run("401 without identity header", func(t *testing.T) {
		router := newTestRouter(&fakeRepo{}, happyGateway())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/agents/agent-1/reviews/eligibility", nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("allowed for fresh author", func(t *testing.T) {
		repo := &fakeRepo{
			findByAuthorTarget: func(_ context.Context, _ string, target domain.TargetRef) (*domain.Review, error) {
				return nil, apperrors.NotFound("review", target.String())
			},
		}
		router := newTestRouter(repo, happyGateway())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/agents/agent-1/reviews/eligibility", nil)
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"allowed":true`)
	})
}

func TestAdminVerifiedEndpoint(t *testing.T) {
	t.Run("403 without admin role", func(t *testing.T) {
		router := newTestRouter(&fakeRepo{}, happyGateway())

		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/reviews/rev-1/verified", strings.NewReader(`{"verified":true}`))
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("200 with admin role", func(t *testing.T) {
		repo := &fakeRepo{
			setVerified: func(_ context.Context, id string, verified bool) (*domain.Review, error) {
				return &domain.Review{ID: id, Verified: verified}, nil
			},
		}
		router := newTestRouter(repo, happyGateway())

		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/reviews/rev-1/verified", strings.NewReader(`{"verified":true}`))
		req.Header.Set("X-User-ID", "admin-1")
		req.Header.Set("X-User-Role", "admin")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"verified":true`)
	})
}

func TestDeleteReviewEndpoint(t *testing.T) {
	existing := &domain.Review{
		ID:       "rev-1",
		Target:   domain.ListingTarget("listing-1"),
		AuthorID: "user-1",
		Rating:   5,
	}

	t.Run("owner deletes and aggregate zeroes out", func(t *testing.T) {
		repo := &fakeRepo{
			getByID:  func(_ context.Context, id string) (*domain.Review, error) { return existing, nil },
			deleteFn: func(_ context.Context, id string) error { return nil },
			listAllByTarget: func(_ context.Context, _ domain.TargetRef) ([]domain.Review, error) {
				return []domain.Review{}, nil
			},
		}
		router := newTestRouter(repo, happyGateway())

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/reviews/rev-1", nil)
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"review_count":0`)
	})

	t.Run("403 for non-owner", func(t *testing.T) {
		repo := &fakeRepo{
			getByID: func(_ context.Context, id string) (*domain.Review, error) { return existing, nil },
		}
		router := newTestRouter(repo, happyGateway())

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/reviews/rev-1", nil)
		req.Header.Set("X-User-ID", "someone-else")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(&fakeRepo{}, happyGateway())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"up"`)
}
