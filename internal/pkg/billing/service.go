package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// ErrInvalidPayload marks a structurally broken event payload.
var ErrInvalidPayload = errors.New("invalid event payload")

// SubscriptionFetcher is the provider lookup the activation path needs.
type SubscriptionFetcher interface {
	GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionDetail, error)
}

// Service routes verified events to their handlers and runs the subscription
// activation flow. It performs no verification itself; both channels hand it
// already-authenticated events.
type Service struct {
	repo     Repository
	api      SubscriptionFetcher
	validate *validator.Validate
}

// NewService creates a billing service from an injected repository and
// provider client.
func NewService(repo Repository, api SubscriptionFetcher) *Service {
	return &Service{repo: repo, api: api, validate: validator.New()}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, api SubscriptionFetcher) *Service {
	return NewService(NewRepository(db), api)
}

// HandleEvent dispatches one event by its type tag. Unrecognized tags are a
// no-op success so new provider event types never break ingestion.
func (s *Service) HandleEvent(ctx context.Context, evt Event) error {
	switch evt.Type {
	case EventCheckoutSessionCompleted:
		return s.activateCheckout(ctx, evt)
	default:
		log.Debugf("[Billing] Ignoring event type %s", evt.Type)
		return nil
	}
}

func (s *Service) activateCheckout(ctx context.Context, evt Event) error {
	var session CheckoutSessionPayload
	if err := json.Unmarshal(evt.Data.Object, &session); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := s.validate.Struct(&session); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	detail, err := s.api.GetSubscription(ctx, session.Subscription)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription %s: %w", session.Subscription, err)
	}

	return s.repo.ActivateCheckoutSession(
		ctx,
		session.ID,
		session.Subscription,
		time.Unix(detail.Created, 0),
		time.Unix(detail.CurrentPeriodEnd, 0),
	)
}
