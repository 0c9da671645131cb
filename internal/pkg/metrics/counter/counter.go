package counter

import (
	"context"
	"strconv"

	"github.com/subhound/subhound/internal/pkg/cache"
)

const (
	deliveryCountersKey = "webhook:counters:deliveries"
	eventCountersKey    = "webhook:counters:events"
)

// AddDeliveryAccepted increments the accepted-envelope counter for a channel
// ("push" or "poll").
func AddDeliveryAccepted(channel string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, deliveryCountersKey, channel+":accepted", 1).Err()
}

// AddDeliveryRejected increments the rejected-envelope counter for a reason
// bucket (e.g. "signature", "parse").
func AddDeliveryRejected(reason string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, deliveryCountersKey, "rejected:"+reason, 1).Err()
}

// AddEventProcessed increments the processed counter for an event type.
func AddEventProcessed(eventType string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, eventCountersKey, eventType+":processed", 1).Err()
}

// AddEventDuplicate increments the duplicate-delivery counter for an event
// type. Duplicates are an expected outcome, not failures.
func AddEventDuplicate(eventType string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, eventCountersKey, eventType+":duplicate", 1).Err()
}

// AddEventFailed increments the failed counter for an event type.
func AddEventFailed(eventType string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, eventCountersKey, eventType+":failed", 1).Err()
}

// Snapshot returns the current delivery and event counters.
func Snapshot() (map[string]int64, error) {
	ctx := context.Background()
	rdb := cache.GetClient()

	out := make(map[string]int64)
	for _, key := range []string{deliveryCountersKey, eventCountersKey} {
		data, err := rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		for field, raw := range data {
			n, perr := strconv.ParseInt(raw, 10, 64)
			if perr != nil {
				continue
			}
			out[field] = n
		}
	}
	return out, nil
}
