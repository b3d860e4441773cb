// Package gateway provides read and aggregate write-back access to the
// entity stores owned by other Roomhaven services: users, listings, and
// agents. This service never mutates users and touches only the rating
// aggregate fields on listings and agents.
package gateway

import (
	"context"

	"github.com/roomhaven/reviews-service/internal/domain"
)

// EntityGateway is the collaborator contract the review engine consumes.
// Implementations return apperrors.ErrNotFound (wrapped) when the entity does
// not exist.
type EntityGateway interface {
	GetUser(ctx context.Context, id string) (*domain.UserSnapshot, error)
	GetListing(ctx context.Context, id string) (*domain.ListingSnapshot, error)
	GetAgent(ctx context.Context, id string) (*domain.AgentSnapshot, error)

	// UpdateListingAggregate writes the derived rating summary onto a
	// listing, touching no other field.
	UpdateListingAggregate(ctx context.Context, id string, agg domain.Aggregate) error

	// UpdateAgentAggregate writes the derived rating summary onto an agent,
	// touching no other field.
	UpdateAgentAggregate(ctx context.Context, id string, agg domain.Aggregate) error
}
