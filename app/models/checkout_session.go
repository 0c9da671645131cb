package models

import "time"

// CheckoutSession tracks a provider checkout flow that is pending activation.
// The completed flag flips false->true exactly once; the conditional update
// on it is the idempotency guard against duplicate webhook deliveries.
type CheckoutSession struct {
	ExternalID string    `gorm:"type:varchar(191);primaryKey" json:"external_id"`
	Completed  bool      `gorm:"not null;default:false;index" json:"completed"`
	UserID     int       `gorm:"not null;index" json:"user_id"`
	TierID     int       `gorm:"not null" json:"tier_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CheckoutSession) TableName() string {
	return "subscription_checkout_sessions"
}
