package billing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *StripeClient {
	return &StripeClient{
		APIKey:     "sk_test_123",
		APIBaseURL: srv.URL,
		HTTPClient: srv.Client(),
	}
}

func TestListEvents(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("created[gt]")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"created":1700000000,"type":"checkout.session.completed","data":{"object":{"id":"cs_1","subscription":"sub_1"}}}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)

	events, err := client.ListEvents(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "/events", gotPath)
	assert.Empty(t, gotQuery)
	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.Equal(t, int64(1700000000), events[0].Created)
	assert.Equal(t, EventCheckoutSessionCompleted, events[0].Type)

	cursor := int64(1699999999)
	_, err = client.ListEvents(context.Background(), &cursor)
	require.NoError(t, err)
	assert.Equal(t, "1699999999", gotQuery)
}

func TestGetSubscription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscriptions/sub_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"created":1700000100,"current_period_end":1702592100}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)

	detail, err := client.GetSubscription(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000100), detail.Created)
	assert.Equal(t, int64(1702592100), detail.CurrentPeriodEnd)
}

func TestGetSubscription_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"try later"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)

	_, err := client.GetSubscription(context.Background(), "sub_1")
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusServiceUnavailable, ue.Status)
	assert.Contains(t, ue.Body, "try later")
}
