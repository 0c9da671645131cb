package billing

import "encoding/json"

// Event type tags wired to handlers. Anything else resolves to a no-op.
const EventCheckoutSessionCompleted = "checkout.session.completed"

// ObjectWrapper carries the provider's nested payload object untouched until
// a handler knows its concrete shape.
type ObjectWrapper struct {
	Object json.RawMessage `json:"object"`
}

// Event is a provider-produced record of an occurrence, delivered over the
// push listener or re-surfaced by the poll channel. Duplicate delivery is
// expected; the activation transaction absorbs it.
type Event struct {
	Created int64         `json:"created"`
	Type    string        `json:"type"`
	Data    ObjectWrapper `json:"data"`
}

// CheckoutSessionPayload is parsed from Event.Data.Object for
// checkout.session.completed events.
type CheckoutSessionPayload struct {
	ID           string `json:"id" validate:"required"`
	Subscription string `json:"subscription" validate:"required"`
}

// SubscriptionDetail is the slice of the provider's subscription resource the
// activation needs.
type SubscriptionDetail struct {
	Created          int64 `json:"created"`
	CurrentPeriodEnd int64 `json:"current_period_end"`
}
