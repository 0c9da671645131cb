package billing

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/subhound/subhound/app/models"
)

// ErrSessionAlreadyCompleted is returned when the conditional update matches
// no row: an earlier delivery already activated the session. This is the
// expected outcome for a duplicate delivery, not a failure.
var ErrSessionAlreadyCompleted = errors.New("checkout session already completed")

// Repository provides the storage operations used by the billing service.
type Repository interface {
	ActivateCheckoutSession(ctx context.Context, sessionID, subscriptionID string, start, end time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// ActivateCheckoutSession flips the session's completed flag and records the
// user subscription in one transaction. The `completed = false` predicate is
// the sole concurrency guard: under concurrent duplicate deliveries exactly
// one update affects a row, every other transaction sees zero rows and rolls
// back without touching user_subscriptions.
func (r *gormRepository) ActivateCheckoutSession(ctx context.Context, sessionID, subscriptionID string, start, end time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CheckoutSession{}).
			Where("external_id = ? AND completed = ?", sessionID, false).
			Update("completed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSessionAlreadyCompleted
		}

		// This transaction owns the flip; read the row for its activation
		// target.
		var session models.CheckoutSession
		if err := tx.Where("external_id = ?", sessionID).First(&session).Error; err != nil {
			return err
		}

		return tx.Create(&models.UserSubscription{
			Tier:               session.TierID,
			UserID:             session.UserID,
			StartTimestamp:     start,
			EndTimestamp:       end,
			StripeSubscription: subscriptionID,
		}).Error
	})
}
