package payments

import (
	"context"
	"time"

	"ai-studyassistant-be/internal/entity"

	"github.com/redis/go-redis/v9"
)

// EventDeduper suppresses cross-request webhook re-deliveries with a Redis
// SETNX keyed by provider event id. It fails open: when Redis is down every
// event is treated as a first delivery and the handlers' own status checks
// absorb the duplicate.
type EventDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventDeduper(client *redis.Client, ttl time.Duration) *EventDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &EventDeduper{client: client, ttl: ttl}
}

// FirstDelivery reports whether this provider event id has not been seen
// before. A nil client (Redis not configured) always reports true.
func (d *EventDeduper) FirstDelivery(ctx context.Context, provider entity.PaymentProvider, eventId string) bool {
	if d == nil || d.client == nil || eventId == "" {
		return true
	}
	key := "webhook:seen:" + string(provider) + ":" + eventId
	ok, err := d.client.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}
