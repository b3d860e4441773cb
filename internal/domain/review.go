package domain

import (
	"fmt"
	"time"
)

// TargetKind identifies which kind of entity a review is about.
type TargetKind string

const (
	TargetKindListing TargetKind = "listing"
	TargetKindAgent   TargetKind = "agent"
)

// IsValid reports whether the kind is one of the two known values.
func (k TargetKind) IsValid() bool {
	return k == TargetKindListing || k == TargetKindAgent
}

// TargetRef identifies the single entity a review is about. Constructing it
// through NewTargetRef guarantees exactly one of the two foreign keys is set,
// so both-set and neither-set states cannot be represented downstream.
type TargetRef struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// NewTargetRef builds a TargetRef from the two optional wire-level foreign
// keys, rejecting both-set and neither-set inputs.
func NewTargetRef(listingID, agentID string) (TargetRef, error) {
	switch {
	case listingID != "" && agentID != "":
		return TargetRef{}, fmt.Errorf("target_listing_id and target_agent_id are mutually exclusive")
	case listingID != "":
		return TargetRef{Kind: TargetKindListing, ID: listingID}, nil
	case agentID != "":
		return TargetRef{Kind: TargetKindAgent, ID: agentID}, nil
	default:
		return TargetRef{}, fmt.Errorf("one of target_listing_id or target_agent_id is required")
	}
}

// ListingTarget builds a TargetRef for a listing.
func ListingTarget(id string) TargetRef {
	return TargetRef{Kind: TargetKindListing, ID: id}
}

// AgentTarget builds a TargetRef for an agent.
func AgentTarget(id string) TargetRef {
	return TargetRef{Kind: TargetKindAgent, ID: id}
}

// String renders the reference as "kind/id" for logs and error messages.
func (t TargetRef) String() string {
	return string(t.Kind) + "/" + t.ID
}

// ListingID returns the listing FK for storage, or nil for agent targets.
func (t TargetRef) ListingID() *string {
	if t.Kind == TargetKindListing {
		id := t.ID
		return &id
	}
	return nil
}

// AgentID returns the agent FK for storage, or nil for listing targets.
func (t TargetRef) AgentID() *string {
	if t.Kind == TargetKindAgent {
		id := t.ID
		return &id
	}
	return nil
}

// Review is a user-submitted review of a listing or an agent.
type Review struct {
	ID       string    `json:"id"`
	Target   TargetRef `json:"target"`
	AuthorID string    `json:"author_id"`
	Rating   int       `json:"rating"`
	Title    string    `json:"title"`
	Comment  string    `json:"comment"`

	// Verified is toggled only through the administrative path, never by
	// the author.
	Verified bool `json:"verified"`

	// Display-name snapshots captured at creation time so the review list
	// survives later renames or deletions of the related entities. Never
	// used for aggregation.
	AuthorNameSnapshot string `json:"author_name_snapshot,omitempty"`
	TargetNameSnapshot string `json:"target_name_snapshot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewPatch carries a partial update. Target and author are immutable after
// creation, so only rating, title, and comment can change.
type ReviewPatch struct {
	Rating  *int    `json:"rating,omitempty"`
	Title   *string `json:"title,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ReviewPatch) IsEmpty() bool {
	return p.Rating == nil && p.Title == nil && p.Comment == nil
}

// UserSnapshot is the lightweight author projection attached during hydration.
type UserSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ListingSnapshot is the lightweight listing projection attached during hydration.
type ListingSnapshot struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
}

// AgentSnapshot is the lightweight agent projection attached during hydration.
type AgentSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// EnrichedReview is a review plus whatever related snapshots hydration could
// resolve. A nil snapshot means the relationship was not requested or its
// lookup failed; the review itself is always present.
type EnrichedReview struct {
	Review
	Author  *UserSnapshot    `json:"author,omitempty"`
	Listing *ListingSnapshot `json:"listing,omitempty"`
	Agent   *AgentSnapshot   `json:"agent,omitempty"`
}
