package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/subhound/subhound/internal/pkg/env"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com/v1"

// StripeClient talks to the provider API: the event list used by the poll
// fallback and the subscription resource fetched during activation.
type StripeClient struct {
	APIKey     string
	APIBaseURL string

	HTTPClient *http.Client
}

// NewStripeClientFromEnv builds a client from STRIPE_SECRET_KEY and an
// optional STRIPE_API_BASE_URL override. The HTTP client carries no timeout:
// a hung provider call holds its goroutine and one pooled DB connection until
// the provider answers, which is the documented failure mode.
func NewStripeClientFromEnv() *StripeClient {
	return &StripeClient{
		APIKey:     env.MustGetEnv("STRIPE_SECRET_KEY"),
		APIBaseURL: strings.TrimRight(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL), "/"),
		HTTPClient: &http.Client{},
	}
}

// UpstreamError reports a non-success status from the provider API.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider API returned status %d: %s", e.Status, e.Body)
}

type eventListResponse struct {
	Data []Event `json:"data"`
}

// ListEvents fetches events, filtered to created > createdAfter when the
// cursor is set.
func (c *StripeClient) ListEvents(ctx context.Context, createdAfter *int64) ([]Event, error) {
	endpoint := c.APIBaseURL + "/events"
	if createdAfter != nil {
		q := url.Values{}
		q.Set("created[gt]", strconv.FormatInt(*createdAfter, 10))
		endpoint += "?" + q.Encode()
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var out eventListResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse event list: %w", err)
	}
	return out.Data, nil
}

// GetSubscription fetches the subscription resource referenced by a checkout
// session.
func (c *StripeClient) GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionDetail, error) {
	body, err := c.get(ctx, c.APIBaseURL+"/subscriptions/"+url.PathEscape(subscriptionID))
	if err != nil {
		return nil, err
	}

	var out SubscriptionDetail
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse subscription: %w", err)
	}
	return &out, nil
}

func (c *StripeClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
