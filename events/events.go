// Package events carries domain events out of the marketplace over a RabbitMQ
// topic exchange and feeds provider callbacks back in.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RKBookingConfirmed = "booking.confirmed"
	RKBookingStarted   = "booking.started"
	RKBookingCompleted = "booking.completed"
	RKBookingCanceled  = "booking.canceled"
	RKBookingRefunded  = "booking.refunded"

	RKPaymentAuthorized = "payment.authorized"
	RKPaymentCaptured   = "payment.captured"
	RKPaymentRefunded   = "payment.refunded"
	RKPaymentFailed     = "payment.failed"

	RKPayoutCreated    = "payout.created"
	RKPayoutProcessing = "payout.processing"
	RKPayoutPaid       = "payout.paid"
	RKPayoutFailed     = "payout.failed"

	RKProviderPaymentCaptured = "provider.payment.captured"
	RKProviderPaymentFailed   = "provider.payment.failed"
)

const envelopeVersion = 1

// ErrDiscard marks a message that can never be processed. The consumer drops
// it instead of requeueing.
var ErrDiscard = errors.New("discard message")

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
	Close() error
}

type Envelope struct {
	Event      string    `json:"event"`
	Version    int       `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func NewEnvelope(key string, data any) Envelope {
	return Envelope{Event: key, Version: envelopeVersion, OccurredAt: time.Now().UTC(), Data: data}
}

type BookingData struct {
	BookingID   uuid.UUID            `json:"booking_id"`
	StudentID   uuid.UUID            `json:"student_id"`
	TutorID     uuid.UUID            `json:"tutor_id"`
	StartAt     time.Time            `json:"start_at"`
	EndAt       time.Time            `json:"end_at"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	Status      models.BookingStatus `json:"status"`
}

func BookingPayload(b *models.Booking) BookingData {
	return BookingData{
		BookingID:   b.ID,
		StudentID:   b.StudentID,
		TutorID:     b.TutorID,
		StartAt:     b.StartAt,
		EndAt:       b.EndAt,
		TotalAmount: b.TotalAmount,
		Status:      b.Status,
	}
}

type PaymentData struct {
	PaymentID     uuid.UUID            `json:"payment_id"`
	BookingID     uuid.UUID            `json:"booking_id"`
	ProviderTxnID string               `json:"provider_txn_id,omitempty"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      string               `json:"currency"`
	Method        models.PaymentMethod `json:"method"`
	Status        models.PaymentStatus `json:"status"`
}

func PaymentPayload(p *models.Payment) PaymentData {
	return PaymentData{
		PaymentID:     p.ID,
		BookingID:     p.BookingID,
		ProviderTxnID: p.ProviderTxnID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Method:        p.Method,
		Status:        p.Status,
	}
}

type PayoutData struct {
	PayoutID  uuid.UUID           `json:"payout_id"`
	TutorID   uuid.UUID           `json:"tutor_id"`
	BookingID uuid.UUID           `json:"booking_id"`
	Amount    decimal.Decimal     `json:"amount"`
	Status    models.PayoutStatus `json:"status"`
}

func PayoutPayload(p *models.Payout) PayoutData {
	return PayoutData{
		PayoutID:  p.ID,
		TutorID:   p.TutorID,
		BookingID: p.BookingID,
		Amount:    p.Amount,
		Status:    p.Status,
	}
}

// ProviderPayment is the callback a payment provider sends once it has
// settled or rejected a transaction.
type ProviderPayment struct {
	Event   string `json:"event"`
	Version int    `json:"version"`
	Data    struct {
		EventID       string `json:"event_id"`
		ProviderTxnID string `json:"provider_txn_id"`
		Reason        string `json:"reason,omitempty"`
	} `json:"data"`
}

func DecodeProviderPayment(body []byte) (ProviderPayment, error) {
	var evt ProviderPayment
	if err := json.Unmarshal(body, &evt); err != nil {
		return evt, fmt.Errorf("decode provider payment: %v: %w", err, ErrDiscard)
	}
	if evt.Data.ProviderTxnID == "" {
		return evt, fmt.Errorf("provider payment without provider_txn_id: %w", ErrDiscard)
	}
	return evt, nil
}

// LogPublisher writes events to the log. It stands in for the broker when no
// RABBIT_URL is configured.
type LogPublisher struct{}

func (LogPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	log.Printf("[events] %s %s", key, b)
	return nil
}

func (LogPublisher) Close() error { return nil }

type Message struct {
	Key  string
	Body []byte
}

// Recorder keeps every published message in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Key: key, Body: b})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *Recorder) Keys() []string {
	msgs := r.Messages()
	keys := make([]string, len(msgs))
	for i, m := range msgs {
		keys[i] = m.Key
	}
	return keys
}
