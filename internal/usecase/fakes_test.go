package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/notify"
	"travel-booking/internal/payment"

	"github.com/google/uuid"
)

// memStore backs the repository fakes. It enforces the same conditional
// semantics as the SQL layer: the seat take, the (gateway_ref, status)
// dedup and the state-guarded transitions.
type memStore struct {
	mu         sync.Mutex
	packages   map[uuid.UUID]*entity.TravelPackage
	departures map[uuid.UUID]*entity.Departure
	bookings   map[uuid.UUID]*entity.Booking
	travelers  map[uuid.UUID][]*entity.Traveler
	payments   map[string]*entity.Payment
}

// paymentKey mirrors the (gateway_ref, status) unique constraint on the
// payments table.
func paymentKey(ref string, status entity.PaymentStatus) string {
	return ref + "/" + string(status)
}

func newMemStore() *memStore {
	return &memStore{
		packages:   make(map[uuid.UUID]*entity.TravelPackage),
		departures: make(map[uuid.UUID]*entity.Departure),
		bookings:   make(map[uuid.UUID]*entity.Booking),
		travelers:  make(map[uuid.UUID][]*entity.Traveler),
		payments:   make(map[string]*entity.Payment),
	}
}

func (s *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Package:   &fakePackageRepo{s},
		Departure: &fakeDepartureRepo{s},
		Booking:   &fakeBookingRepo{s},
		Payment:   &fakePaymentRepo{s},
	}
}

type fakePackageRepo struct{ s *memStore }

func (r *fakePackageRepo) Create(ctx context.Context, pkg *entity.TravelPackage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.packages[pkg.ID] = pkg
	return nil
}

func (r *fakePackageRepo) Update(ctx context.Context, pkg *entity.TravelPackage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.packages[pkg.ID]; !ok {
		return fmt.Errorf("package %s not found", pkg.ID.String())
	}
	r.s.packages[pkg.ID] = pkg
	return nil
}

func (r *fakePackageRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.TravelPackage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.packages[id], nil
}

func (r *fakePackageRepo) FindAll(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.TravelPackage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.TravelPackage
	for _, pkg := range r.s.packages {
		if onlyActive && !pkg.IsActive {
			continue
		}
		out = append(out, pkg)
	}
	return out, nil
}

func (r *fakePackageRepo) Count(ctx context.Context, onlyActive bool) (int64, error) {
	pkgs, _ := r.FindAll(ctx, onlyActive, 0, 0)
	return int64(len(pkgs)), nil
}

type fakeDepartureRepo struct{ s *memStore }

func (r *fakeDepartureRepo) Create(ctx context.Context, departure *entity.Departure) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.departures[departure.ID] = departure
	return nil
}

func (r *fakeDepartureRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Departure, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.departures[id], nil
}

func (r *fakeDepartureRepo) FindByPackageAndDate(ctx context.Context, packageID uuid.UUID, date time.Time) (*entity.Departure, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.departures {
		if d.PackageID == packageID && d.DepartDate.Equal(date) {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDepartureRepo) FindByPackageID(ctx context.Context, packageID uuid.UUID) ([]*entity.Departure, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Departure
	for _, d := range r.s.departures {
		if d.PackageID == packageID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDepartureRepo) EnsureForDate(ctx context.Context, packageID uuid.UUID, date time.Time, seatsTotal int) (*entity.Departure, error) {
	if existing, _ := r.FindByPackageAndDate(ctx, packageID, date); existing != nil {
		return existing, nil
	}
	departure := &entity.Departure{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		PackageID:  packageID,
		DepartDate: date,
		SeatsTotal: seatsTotal,
		Status:     entity.DepartureStatusOpen,
	}
	return departure, r.Create(ctx, departure)
}

func (r *fakeDepartureRepo) CompletePast(ctx context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, d := range r.s.departures {
		if d.DepartDate.Before(cutoff) && d.Status != entity.DepartureStatusCompleted {
			d.Status = entity.DepartureStatusCompleted
			n++
		}
	}
	return n, nil
}

type fakeBookingRepo struct{ s *memStore }

func (r *fakeBookingRepo) ReserveAndCreate(ctx context.Context, booking *entity.Booking, travelers []*entity.Traveler) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.departures[booking.DepartureID]
	if !ok {
		return fmt.Errorf("departure %s not found", booking.DepartureID.String())
	}
	if d.Status == entity.DepartureStatusCompleted || d.SeatsBooked+booking.Travelers > d.SeatsTotal {
		return repository.ErrSeatsUnavailable
	}
	d.SeatsBooked += booking.Travelers
	if d.SeatsBooked >= d.SeatsTotal {
		d.Status = entity.DepartureStatusFull
	}
	r.s.bookings[booking.ID] = booking
	r.s.travelers[booking.ID] = travelers
	return nil
}

// FindByID hands back a copy, like a row scan; callers never share the
// stored struct.
func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	row := *b
	return &row, nil
}

func (r *fakeBookingRepo) FindByOrderRef(ctx context.Context, orderRef string) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if b.OrderRef == orderRef {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) Search(ctx context.Context, state entity.BookingState, term string, limit, offset int) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if state != "" && b.State != state {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeBookingRepo) CountSearch(ctx context.Context, state entity.BookingState, term string) (int64, error) {
	out, _ := r.Search(ctx, state, term, 0, 0)
	return int64(len(out)), nil
}

func (r *fakeBookingRepo) TravelersByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Traveler, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.travelers[bookingID], nil
}

func (r *fakeBookingRepo) SumActiveTravelers(ctx context.Context, departureID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := 0
	for _, b := range r.s.bookings {
		if b.DepartureID == departureID && b.State.CountsAgainstInventory() {
			sum += b.Travelers
		}
	}
	return sum, nil
}

func (r *fakeBookingRepo) SetPaymentRef(ctx context.Context, id uuid.UUID, ref string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s not found", id.String())
	}
	b.PaymentRef = &ref
	return nil
}

func (r *fakeBookingRepo) FlagDiscrepancy(ctx context.Context, id uuid.UUID, note string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s not found", id.String())
	}
	b.Discrepancy = true
	b.DiscrepancyNote = &note
	return nil
}

func (r *fakeBookingRepo) ConfirmPaid(ctx context.Context, pay *entity.Payment) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, seen := r.s.payments[paymentKey(pay.GatewayRef, entity.PaymentStatusSuccess)]; seen {
		return false, nil
	}
	b, ok := r.s.bookings[pay.BookingID]
	if !ok || b.State != entity.BookingStatePendingPayment {
		// Mirrors the transactional rollback: no payment row survives
		// a failed confirm.
		return false, repository.ErrStateConflict
	}
	r.s.payments[paymentKey(pay.GatewayRef, entity.PaymentStatusSuccess)] = pay
	ref := pay.GatewayRef
	b.State = entity.BookingStateConfirmed
	b.AmountPaid = pay.Amount
	b.BalanceDue = b.TotalPrice - pay.Amount
	b.PaymentRef = &ref
	return true, nil
}

func (r *fakeBookingRepo) TransitionState(ctx context.Context, id uuid.UUID, from, to entity.BookingState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok || b.State != from {
		return repository.ErrStateConflict
	}
	b.State = to
	return nil
}

func (r *fakeBookingRepo) CancelAndRelease(ctx context.Context, id uuid.UUID, from entity.BookingState, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok || b.State != from {
		return repository.ErrStateConflict
	}
	b.State = entity.BookingStateCancelled
	b.CancelReason = &reason
	if d, ok := r.s.departures[b.DepartureID]; ok {
		d.SeatsBooked -= b.Travelers
		if d.Status == entity.DepartureStatusFull {
			d.Status = entity.DepartureStatusOpen
		}
	}
	return nil
}

func (r *fakeBookingRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s not found", id.String())
	}
	if b.State != entity.BookingStateCancelled {
		if d, ok := r.s.departures[b.DepartureID]; ok {
			d.SeatsBooked -= b.Travelers
		}
	}
	delete(r.s.bookings, id)
	delete(r.s.travelers, id)
	for ref, p := range r.s.payments {
		if p.BookingID == id {
			delete(r.s.payments, ref)
		}
	}
	return nil
}

func (r *fakeBookingRepo) CompletePastDeparted(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakePaymentRepo struct{ s *memStore }

func (r *fakePaymentRepo) Create(ctx context.Context, pay *entity.Payment) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := paymentKey(pay.GatewayRef, pay.Status)
	if _, seen := r.s.payments[key]; seen {
		return false, nil
	}
	r.s.payments[key] = pay
	return true, nil
}

func (r *fakePaymentRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Payment
	for _, p := range r.s.payments {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) LatestSuccessByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	payments, _ := r.FindByBookingID(ctx, bookingID)
	var latest *entity.Payment
	for _, p := range payments {
		if p.Status != entity.PaymentStatusSuccess {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	return latest, nil
}

// fakeGateway hands out sequential checkout references; ParseCallback
// decodes the callback struct straight from the payload and rejects
// the "invalid" signature.
type fakeGateway struct {
	mu           sync.Mutex
	failCheckout bool
	checkouts    int
}

func (g *fakeGateway) CreateCheckout(ctx context.Context, bookingID string, amount int64) (*payment.Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failCheckout {
		return nil, fmt.Errorf("gateway down")
	}
	g.checkouts++
	return &payment.Checkout{
		Reference:      fmt.Sprintf("pi_test_%d", g.checkouts),
		ClientSecret:   fmt.Sprintf("pi_test_%d_secret", g.checkouts),
		PublishableKey: "pk_test",
		Amount:         amount,
		Currency:       "inr",
	}, nil
}

func (g *fakeGateway) ParseCallback(payload []byte, signature string) (*payment.Callback, error) {
	if signature == "invalid" {
		return nil, payment.ErrInvalidSignature
	}
	var cb payment.Callback
	if err := json.Unmarshal(payload, &cb); err != nil {
		return nil, err
	}
	return &cb, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *fakePublisher) Publish(ctx context.Context, event notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) byType(eventType string) []notify.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []notify.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeScheduler struct {
	mu       sync.Mutex
	enqueued []string
}

func (s *fakeScheduler) EnqueueBookingExpire(ctx context.Context, bookingID string, after time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enqueued = append(s.enqueued, bookingID)
	return nil
}
