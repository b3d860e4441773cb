// Package http contains the HTTP transport for the reviews service.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roomhaven/reviews-service/internal/domain"
	"github.com/roomhaven/reviews-service/internal/service"
	apperrors "github.com/roomhaven/reviews-service/pkg/errors"
	"github.com/roomhaven/reviews-service/pkg/httputil"
	"github.com/roomhaven/reviews-service/pkg/pagination"
	"github.com/roomhaven/reviews-service/pkg/validator"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// ReviewHandler exposes the review API over HTTP.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates the review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

type createReviewRequest struct {
	TargetListingID string `json:"target_listing_id" validate:"omitempty,max=64"`
	TargetAgentID   string `json:"target_agent_id" validate:"omitempty,max=64"`
	Rating          int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title           string `json:"title" validate:"required,max=200"`
	Comment         string `json:"comment" validate:"required,max=5000"`
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Comment *string `json:"comment" validate:"omitempty,max=5000"`
}

type setVerifiedRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

// mutationResponse is the body of every successful mutation: the review plus
// the target's recomputed aggregate. aggregate_stale flags a summary that
// could not be written back this call.
type mutationResponse struct {
	Review         *domain.Review   `json:"review"`
	Aggregate      domain.Aggregate `json:"aggregate"`
	AggregateStale bool             `json:"aggregate_stale,omitempty"`
}

func newMutationResponse(result *service.MutationResult) mutationResponse {
	return mutationResponse{
		Review:         result.Review,
		Aggregate:      result.Aggregate,
		AggregateStale: result.AggregateStale,
	}
}

// Create handles POST /api/v1/reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req createReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.CreateReview(r.Context(), service.CreateReviewInput{
		TargetListingID: req.TargetListingID,
		TargetAgentID:   req.TargetAgentID,
		AuthorID:        r.Header.Get("X-User-ID"),
		Rating:          req.Rating,
		Title:           req.Title,
		Comment:         req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: newMutationResponse(result)})
}

// Get handles GET /api/v1/reviews/{reviewID}.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.GetReview(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// Update handles PATCH /api/v1/reviews/{reviewID}.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req updateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.UpdateReview(
		r.Context(),
		chi.URLParam(r, "reviewID"),
		r.Header.Get("X-User-ID"),
		r.Header.Get("X-User-Role"),
		domain.ReviewPatch{Rating: req.Rating, Title: req.Title, Comment: req.Comment},
	)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newMutationResponse(result)})
}

// Delete handles DELETE /api/v1/reviews/{reviewID}.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.DeleteReview(
		r.Context(),
		chi.URLParam(r, "reviewID"),
		r.Header.Get("X-User-ID"),
		r.Header.Get("X-User-Role"),
	)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newMutationResponse(result)})
}

// SetVerified handles PUT /api/v1/admin/reviews/{reviewID}/verified.
func (h *ReviewHandler) SetVerified(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req setVerifiedRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.SetVerified(r.Context(), chi.URLParam(r, "reviewID"), *req.Verified)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// ListByListing handles GET /api/v1/listings/{listingID}/reviews.
func (h *ReviewHandler) ListByListing(w http.ResponseWriter, r *http.Request) {
	h.listByTarget(w, r, domain.ListingTarget(chi.URLParam(r, "listingID")))
}

// ListByAgent handles GET /api/v1/agents/{agentID}/reviews.
func (h *ReviewHandler) ListByAgent(w http.ResponseWriter, r *http.Request) {
	h.listByTarget(w, r, domain.AgentTarget(chi.URLParam(r, "agentID")))
}

func (h *ReviewHandler) listByTarget(w http.ResponseWriter, r *http.Request, target domain.TargetRef) {
	p := pagination.FromRequest(r)

	reviews, total, err := h.service.ListByTarget(r.Context(), target, p.Page, p.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(reviews, total, p.Page, p.PerPage))
}

// ListByAuthor handles GET /api/v1/users/{userID}/reviews.
func (h *ReviewHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r)

	reviews, total, err := h.service.ListByAuthor(r.Context(), chi.URLParam(r, "userID"), p.Page, p.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(reviews, total, p.Page, p.PerPage))
}

// ListingStats handles GET /api/v1/listings/{listingID}/reviews/stats.
func (h *ReviewHandler) ListingStats(w http.ResponseWriter, r *http.Request) {
	h.stats(w, r, domain.ListingTarget(chi.URLParam(r, "listingID")))
}

// AgentStats handles GET /api/v1/agents/{agentID}/reviews/stats.
func (h *ReviewHandler) AgentStats(w http.ResponseWriter, r *http.Request) {
	h.stats(w, r, domain.AgentTarget(chi.URLParam(r, "agentID")))
}

func (h *ReviewHandler) stats(w http.ResponseWriter, r *http.Request, target domain.TargetRef) {
	agg, err := h.service.GetStats(r.Context(), target)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: agg})
}

// ListingEligibility handles GET /api/v1/listings/{listingID}/reviews/eligibility.
func (h *ReviewHandler) ListingEligibility(w http.ResponseWriter, r *http.Request) {
	h.eligibility(w, r, domain.ListingTarget(chi.URLParam(r, "listingID")))
}

// AgentEligibility handles GET /api/v1/agents/{agentID}/reviews/eligibility.
func (h *ReviewHandler) AgentEligibility(w http.ResponseWriter, r *http.Request) {
	h.eligibility(w, r, domain.AgentTarget(chi.URLParam(r, "agentID")))
}

func (h *ReviewHandler) eligibility(w http.ResponseWriter, r *http.Request, target domain.TargetRef) {
	authorID := r.Header.Get("X-User-ID")
	if authorID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("author identity is required"), h.logger)
		return
	}

	result, err := h.service.CanReview(r.Context(), authorID, target)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}
