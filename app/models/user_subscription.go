package models

import "time"

// UserSubscription is written exactly once per successful checkout
// activation, in the same transaction as the CheckoutSession completed flip.
type UserSubscription struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Tier               int       `gorm:"not null;index" json:"tier"`
	UserID             int       `gorm:"not null;index" json:"user_id"`
	StartTimestamp     time.Time `gorm:"type:timestamp;not null" json:"start_timestamp"`
	EndTimestamp       time.Time `gorm:"type:timestamp;not null" json:"end_timestamp"`
	StripeSubscription string    `gorm:"type:varchar(191);not null;index" json:"stripe_subscription"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}
