// Package services holds the marketplace use cases. Each operation reads the
// entity, applies a state-machine transition and writes it back with a
// version check, publishing a domain event once the write has committed.
package services

import (
	"context"
	"errors"
	"log"

	"github.com/anjiri1684/tutor_marketplace/events"
	"github.com/anjiri1684/tutor_marketplace/models"
)

var ErrPaymentNotCaptured = models.NewValidationError("payment", "payment has not been captured", models.ErrInvalidStatus)

// withRetry runs fn again once if it lost an optimistic-concurrency race. The
// second run re-reads the entity, so a now-illegal transition fails cleanly.
func withRetry(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if !errors.Is(err, models.ErrConcurrencyConflict) {
		return err
	}
	log.Printf("⚠️ %s lost a concurrent update, retrying: %v", op, err)
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return fn()
}

func publish(ctx context.Context, pub events.Publisher, key string, data any) {
	if err := pub.PublishJSON(ctx, key, events.NewEnvelope(key, data)); err != nil {
		log.Printf("🔥 Failed to publish %s: %v", key, err)
	}
}

func unknownAction(entity, action string) error {
	return models.NewValidationError("action", "unknown "+entity+" action "+action, models.ErrInvalidStatus)
}
