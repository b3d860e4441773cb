package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/roomhaven/reviews-service/internal/domain"
	"github.com/roomhaven/reviews-service/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests. Both
// httpclient.Client and httpclient.CircuitBreakerClient satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// HTTPGateway implements EntityGateway against the user, listing, and agent
// services' HTTP APIs.
type HTTPGateway struct {
	client            HTTPDoer
	userServiceURL    string
	listingServiceURL string
	agentServiceURL   string
}

// NewHTTPGateway creates an HTTP-backed entity gateway. Base URLs must not
// have a trailing slash.
func NewHTTPGateway(client HTTPDoer, userServiceURL, listingServiceURL, agentServiceURL string) *HTTPGateway {
	return &HTTPGateway{
		client:            client,
		userServiceURL:    strings.TrimRight(userServiceURL, "/"),
		listingServiceURL: strings.TrimRight(listingServiceURL, "/"),
		agentServiceURL:   strings.TrimRight(agentServiceURL, "/"),
	}
}

// envelope mirrors the standard {"data": ...} response wrapper.
type envelope[T any] struct {
	Data T `json:"data"`
}

// GetUser fetches a lightweight author snapshot from the user service.
func (g *HTTPGateway) GetUser(ctx context.Context, id string) (*domain.UserSnapshot, error) {
	url := fmt.Sprintf("%s/api/v1/users/%s", g.userServiceURL, id)
	return fetchSnapshot[domain.UserSnapshot](ctx, g.client, url, "user-service")
}

// GetListing fetches a lightweight listing snapshot from the listing service.
func (g *HTTPGateway) GetListing(ctx context.Context, id string) (*domain.ListingSnapshot, error) {
	url := fmt.Sprintf("%s/api/v1/listings/%s", g.listingServiceURL, id)
	return fetchSnapshot[domain.ListingSnapshot](ctx, g.client, url, "listing-service")
}

// GetAgent fetches a lightweight agent snapshot from the agent service.
func (g *HTTPGateway) GetAgent(ctx context.Context, id string) (*domain.AgentSnapshot, error) {
	url := fmt.Sprintf("%s/api/v1/agents/%s", g.agentServiceURL, id)
	return fetchSnapshot[domain.AgentSnapshot](ctx, g.client, url, "agent-service")
}

// UpdateListingAggregate writes the rating summary onto a listing through the
// listing service's internal rating endpoint.
func (g *HTTPGateway) UpdateListingAggregate(ctx context.Context, id string, agg domain.Aggregate) error {
	url := fmt.Sprintf("%s/internal/v1/listings/%s/rating", g.listingServiceURL, id)
	return g.patchAggregate(ctx, url, "listing-service", agg)
}

// UpdateAgentAggregate writes the rating summary onto an agent through the
// agent service's internal rating endpoint.
func (g *HTTPGateway) UpdateAgentAggregate(ctx context.Context, id string, agg domain.Aggregate) error {
	url := fmt.Sprintf("%s/internal/v1/agents/%s/rating", g.agentServiceURL, id)
	return g.patchAggregate(ctx, url, "agent-service", agg)
}

func (g *HTTPGateway) patchAggregate(ctx context.Context, url, serviceName string, agg domain.Aggregate) error {
	body, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("marshal aggregate: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create aggregate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call %s: %w", serviceName, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	_ = resp.Body.Close()
	return nil
}

func fetchSnapshot[T any](ctx context.Context, client HTTPDoer, url, serviceName string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", serviceName, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", serviceName, err)
	}

	return &env.Data, nil
}
