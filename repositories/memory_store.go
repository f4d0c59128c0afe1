package repositories

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/google/uuid"
)

type memoryState struct {
	bookings map[uuid.UUID]models.Booking
	payments map[uuid.UUID]models.Payment
	payouts  map[uuid.UUID]models.Payout
}

func (s *memoryState) clone() memoryState {
	return memoryState{
		bookings: maps.Clone(s.bookings),
		payments: maps.Clone(s.payments),
		payouts:  maps.Clone(s.payouts),
	}
}

// MemoryStore keeps entities in maps guarded by one mutex. Values are stored
// and returned by copy, so callers never share a live reference.
type MemoryStore struct {
	mu    *sync.Mutex
	state *memoryState
	held  bool
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		state: &memoryState{
			bookings: make(map[uuid.UUID]models.Booking),
			payments: make(map[uuid.UUID]models.Payment),
			payouts:  make(map[uuid.UUID]models.Payout),
		},
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// SetClock replaces the clock used for upcoming-booking queries.
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

func (s *MemoryStore) lock() func() {
	if s.held {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Bookings() BookingRepository { return memoryBookings{s} }
func (s *MemoryStore) Payments() PaymentRepository { return memoryPayments{s} }
func (s *MemoryStore) Payouts() PayoutRepository   { return memoryPayouts{s} }

// WithinTx holds the store lock for the duration of fn and restores the
// previous state when fn fails.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.held {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	tx := &MemoryStore{mu: s.mu, state: s.state, held: true, now: s.now}
	if err := fn(tx); err != nil {
		*s.state = snapshot
		return err
	}
	return nil
}

func conflict(entity string, id uuid.UUID, version int64) error {
	return fmt.Errorf("%s %s at version %d: %w", entity, id, version, models.ErrConcurrencyConflict)
}

func stampCreate(createdAt, updatedAt *time.Time, version *int64) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
	if *version == 0 {
		*version = 1
	}
}

type memoryBookings struct{ s *MemoryStore }

func (r memoryBookings) Add(ctx context.Context, b *models.Booking) error {
	defer r.s.lock()()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if _, ok := r.s.state.bookings[b.ID]; ok {
		return fmt.Errorf("booking %s: %w", b.ID, models.ErrDuplicate)
	}
	stampCreate(&b.CreatedAt, &b.UpdatedAt, &b.Version)
	r.s.state.bookings[b.ID] = *b
	return nil
}

func (r memoryBookings) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	defer r.s.lock()()
	b, ok := r.s.state.bookings[id]
	if !ok {
		return nil, models.NotFound("booking", id)
	}
	return &b, nil
}

func (r memoryBookings) filter(keep func(models.Booking) bool) []models.Booking {
	defer r.s.lock()()
	var out []models.Booking
	for _, b := range r.s.state.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b models.Booking) int {
		if c := a.StartAt.Compare(b.StartAt); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

func (r memoryBookings) GetByStudentID(ctx context.Context, studentID uuid.UUID) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool { return b.StudentID == studentID }), nil
}

func (r memoryBookings) GetByTutorID(ctx context.Context, tutorID uuid.UUID) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool { return b.TutorID == tutorID }), nil
}

func (r memoryBookings) GetByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool { return b.Status == status }), nil
}

func (r memoryBookings) GetByDateRange(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool {
		return !b.StartAt.Before(from) && !b.EndAt.After(to)
	}), nil
}

func (r memoryBookings) GetUpcomingBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	now := r.s.now()
	return r.filter(func(b models.Booking) bool {
		return (b.StudentID == userID || b.TutorID == userID) &&
			b.StartAt.After(now) &&
			slices.Contains(upcomingStatuses, b.Status)
	}), nil
}

func (r memoryBookings) Update(ctx context.Context, b *models.Booking) error {
	defer r.s.lock()()
	stored, ok := r.s.state.bookings[b.ID]
	if !ok {
		return models.NotFound("booking", b.ID)
	}
	if stored.Version != b.Version {
		return conflict("booking", b.ID, b.Version)
	}
	b.Version++
	r.s.state.bookings[b.ID] = *b
	return nil
}

func (r memoryBookings) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if _, ok := r.s.state.bookings[id]; !ok {
		return models.NotFound("booking", id)
	}
	delete(r.s.state.bookings, id)
	return nil
}

type memoryPayments struct{ s *MemoryStore }

func (r memoryPayments) Add(ctx context.Context, p *models.Payment) error {
	defer r.s.lock()()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for _, existing := range r.s.state.payments {
		if existing.ID == p.ID || existing.BookingID == p.BookingID {
			return fmt.Errorf("payment for booking %s: %w", p.BookingID, models.ErrDuplicate)
		}
	}
	stampCreate(&p.CreatedAt, &p.UpdatedAt, &p.Version)
	r.s.state.payments[p.ID] = *p
	return nil
}

func (r memoryPayments) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	defer r.s.lock()()
	p, ok := r.s.state.payments[id]
	if !ok {
		return nil, models.NotFound("payment", id)
	}
	return &p, nil
}

func (r memoryPayments) findOne(entity string, key any, match func(models.Payment) bool) (*models.Payment, error) {
	defer r.s.lock()()
	for _, p := range r.s.state.payments {
		if match(p) {
			return &p, nil
		}
	}
	return nil, models.NotFound(entity, key)
}

func (r memoryPayments) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	return r.findOne("payment for booking", bookingID, func(p models.Payment) bool { return p.BookingID == bookingID })
}

// The store lock held by WithinTx already serialises writers.
func (r memoryPayments) GetByBookingIDForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	return r.GetByBookingID(ctx, bookingID)
}

func (r memoryPayments) GetByProviderTxnID(ctx context.Context, providerTxnID string) (*models.Payment, error) {
	return r.findOne("payment with provider txn", providerTxnID, func(p models.Payment) bool {
		return providerTxnID != "" && p.ProviderTxnID == providerTxnID
	})
}

func (r memoryPayments) GetByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	defer r.s.lock()()
	var out []models.Payment
	for _, p := range r.s.state.payments {
		if p.Status == status {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Payment) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (r memoryPayments) Update(ctx context.Context, p *models.Payment) error {
	defer r.s.lock()()
	stored, ok := r.s.state.payments[p.ID]
	if !ok {
		return models.NotFound("payment", p.ID)
	}
	if stored.Version != p.Version {
		return conflict("payment", p.ID, p.Version)
	}
	p.Version++
	r.s.state.payments[p.ID] = *p
	return nil
}

func (r memoryPayments) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if _, ok := r.s.state.payments[id]; !ok {
		return models.NotFound("payment", id)
	}
	delete(r.s.state.payments, id)
	return nil
}

type memoryPayouts struct{ s *MemoryStore }

func (r memoryPayouts) Add(ctx context.Context, p *models.Payout) error {
	defer r.s.lock()()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, ok := r.s.state.payouts[p.ID]; ok {
		return fmt.Errorf("payout %s: %w", p.ID, models.ErrDuplicate)
	}
	stampCreate(&p.CreatedAt, &p.UpdatedAt, &p.Version)
	r.s.state.payouts[p.ID] = *p
	return nil
}

func (r memoryPayouts) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	defer r.s.lock()()
	p, ok := r.s.state.payouts[id]
	if !ok {
		return nil, models.NotFound("payout", id)
	}
	return &p, nil
}

func (r memoryPayouts) filter(keep func(models.Payout) bool) []models.Payout {
	defer r.s.lock()()
	var out []models.Payout
	for _, p := range r.s.state.payouts {
		if keep(p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Payout) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

func (r memoryPayouts) GetByTutorID(ctx context.Context, tutorID uuid.UUID) ([]models.Payout, error) {
	return r.filter(func(p models.Payout) bool { return p.TutorID == tutorID }), nil
}

func (r memoryPayouts) GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]models.Payout, error) {
	return r.filter(func(p models.Payout) bool { return p.BookingID == bookingID }), nil
}

func (r memoryPayouts) GetByStatus(ctx context.Context, status models.PayoutStatus) ([]models.Payout, error) {
	return r.filter(func(p models.Payout) bool { return p.Status == status }), nil
}

func (r memoryPayouts) GetPendingPayouts(ctx context.Context) ([]models.Payout, error) {
	return r.GetByStatus(ctx, models.PayoutPending)
}

func (r memoryPayouts) Update(ctx context.Context, p *models.Payout) error {
	defer r.s.lock()()
	stored, ok := r.s.state.payouts[p.ID]
	if !ok {
		return models.NotFound("payout", p.ID)
	}
	if stored.Version != p.Version {
		return conflict("payout", p.ID, p.Version)
	}
	p.Version++
	r.s.state.payouts[p.ID] = *p
	return nil
}

func (r memoryPayouts) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if _, ok := r.s.state.payouts[id]; !ok {
		return models.NotFound("payout", id)
	}
	delete(r.s.state.payouts, id)
	return nil
}
