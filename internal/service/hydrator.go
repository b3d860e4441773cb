package service

import (
	"context"
	"log/slog"

	"github.com/roomhaven/reviews-service/internal/domain"
	"github.com/roomhaven/reviews-service/internal/gateway"
)

// HydrateOptions selects which relationships to attach.
type HydrateOptions struct {
	// Author attaches the reviewer's user snapshot.
	Author bool
	// Target attaches the listing or agent snapshot. Used when listing an
	// author's reviews across mixed targets.
	Target bool
}

// Hydrator attaches lightweight snapshots of related entities onto reviews
// for display.
type Hydrator struct {
	gateway gateway.EntityGateway
	logger  *slog.Logger
}

// NewHydrator creates a relationship hydrator.
func NewHydrator(gw gateway.EntityGateway, logger *slog.Logger) *Hydrator {
	return &Hydrator{gateway: gw, logger: logger}
}

// Hydrate enriches reviews with the requested snapshots. Lookup failures are
// non-fatal: the field is left nil and hydration continues, so a deleted
// author or listing never blocks viewing the review list. Each distinct
// entity is fetched at most once per call.
func (h *Hydrator) Hydrate(ctx context.Context, reviews []domain.Review, opts HydrateOptions) []domain.EnrichedReview {
	enriched := make([]domain.EnrichedReview, len(reviews))

	users := make(map[string]*domain.UserSnapshot)
	listings := make(map[string]*domain.ListingSnapshot)
	agents := make(map[string]*domain.AgentSnapshot)

	for i, rv := range reviews {
		enriched[i] = domain.EnrichedReview{Review: rv}

		if opts.Author {
			enriched[i].Author = h.author(ctx, rv.AuthorID, users)
		}

		if opts.Target {
			switch rv.Target.Kind {
			case domain.TargetKindListing:
				enriched[i].Listing = h.listing(ctx, rv.Target.ID, listings)
			case domain.TargetKindAgent:
				enriched[i].Agent = h.agent(ctx, rv.Target.ID, agents)
			}
		}
	}

	return enriched
}

func (h *Hydrator) author(ctx context.Context, id string, memo map[string]*domain.UserSnapshot) *domain.UserSnapshot {
	if snap, ok := memo[id]; ok {
		return snap
	}

	snap, err := h.gateway.GetUser(ctx, id)
	if err != nil {
		hydrationMissesTotal.WithLabelValues("author").Inc()
		h.logger.DebugContext(ctx, "author hydration miss",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
		snap = nil
	}
	memo[id] = snap
	return snap
}

func (h *Hydrator) listing(ctx context.Context, id string, memo map[string]*domain.ListingSnapshot) *domain.ListingSnapshot {
	if snap, ok := memo[id]; ok {
		return snap
	}

	snap, err := h.gateway.GetListing(ctx, id)
	if err != nil {
		hydrationMissesTotal.WithLabelValues("listing").Inc()
		h.logger.DebugContext(ctx, "listing hydration miss",
			slog.String("listing_id", id),
			slog.String("error", err.Error()),
		)
		snap = nil
	}
	memo[id] = snap
	return snap
}

func (h *Hydrator) agent(ctx context.Context, id string, memo map[string]*domain.AgentSnapshot) *domain.AgentSnapshot {
	if snap, ok := memo[id]; ok {
		return snap
	}

	snap, err := h.gateway.GetAgent(ctx, id)
	if err != nil {
		hydrationMissesTotal.WithLabelValues("agent").Inc()
		h.logger.DebugContext(ctx, "agent hydration miss",
			slog.String("agent_id", id),
			slog.String("error", err.Error()),
		)
		snap = nil
	}
	memo[id] = snap
	return snap
}
