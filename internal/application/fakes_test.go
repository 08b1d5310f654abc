package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/fixgo-platform/service-booking/internal/domain/booking"
	paymentDomain "github.com/fixgo-platform/service-booking/internal/domain/payment"
	photoDomain "github.com/fixgo-platform/service-booking/internal/domain/photo"
	userDomain "github.com/fixgo-platform/service-booking/internal/domain/user"
	vehicleDomain "github.com/fixgo-platform/service-booking/internal/domain/vehicle"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
	"github.com/fixgo-platform/service-booking/internal/platform/kafka"
	"github.com/fixgo-platform/service-booking/internal/platform/paging"
)

// tables is the row state of the fake database.
type tables struct {
	bookings map[uuid.UUID]bookingDomain.Snapshot
	payments map[uuid.UUID]paymentDomain.Snapshot
	users    map[uuid.UUID]userDomain.Snapshot
}

func (t *tables) clone() *tables {
	c := &tables{
		bookings: make(map[uuid.UUID]bookingDomain.Snapshot, len(t.bookings)),
		payments: make(map[uuid.UUID]paymentDomain.Snapshot, len(t.payments)),
		users:    make(map[uuid.UUID]userDomain.Snapshot, len(t.users)),
	}
	for k, v := range t.bookings {
		c.bookings[k] = v
	}
	for k, v := range t.payments {
		c.payments[k] = v
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	return c
}

// memDB serializes transactions with one mutex, which is stricter than row
// locks and enough to exercise the read-decide-write paths.
type memDB struct {
	mu   sync.Mutex
	data *tables

	photoMu sync.Mutex
	photos  []*photoDomain.BookingPhoto

	vehicleMu sync.Mutex
	vehicles  map[uuid.UUID]*vehicleDomain.Vehicle

	categories   map[uuid.UUID]bool
	vehicleTypes map[uuid.UUID]bool

	commits int
}

func newMemDB() *memDB {
	return &memDB{
		data: &tables{
			bookings: map[uuid.UUID]bookingDomain.Snapshot{},
			payments: map[uuid.UUID]paymentDomain.Snapshot{},
			users:    map[uuid.UUID]userDomain.Snapshot{},
		},
		vehicles:     map[uuid.UUID]*vehicleDomain.Vehicle{},
		categories:   map[uuid.UUID]bool{},
		vehicleTypes: map[uuid.UUID]bool{},
	}
}

// Do implements UnitOfWork on a copy of the tables, swapped in on success.
func (db *memDB) Do(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	work := db.data.clone()
	err := fn(ctx, Stores{
		Bookings: &memBookings{db: db, tx: work},
		Payments: &memPayments{tx: work},
		Users:    &memUsers{db: db, tx: work},
	})
	if err != nil {
		return err
	}
	db.data = work
	db.commits++
	return nil
}

func (db *memDB) view(fn func(t *tables)) {
	db.mu.Lock()
	defer db.mu.Unlock()
	fn(db.data)
}

func (db *memDB) booking(id uuid.UUID) *bookingDomain.Booking {
	var s bookingDomain.Snapshot
	db.view(func(t *tables) { s = t.bookings[id] })
	return bookingDomain.ReconstructBooking(s)
}

func (db *memDB) payment(id uuid.UUID) *paymentDomain.Payment {
	var s paymentDomain.Snapshot
	db.view(func(t *tables) { s = t.payments[id] })
	return paymentDomain.Reconstruct(s)
}

func (db *memDB) user(id uuid.UUID) *userDomain.User {
	var s userDomain.Snapshot
	db.view(func(t *tables) { s = t.users[id] })
	return userDomain.Reconstruct(s)
}

// --- bookings ---

type memBookings struct {
	db *memDB
	tx *tables // nil outside a transaction
}

func (r *memBookings) with(fn func(t *tables) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return fn(r.db.data)
}

func (r *memBookings) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var bk *bookingDomain.Booking
	err := r.with(func(t *tables) error {
		s, ok := t.bookings[id]
		if !ok {
			return apperror.NewNotFoundError("Booking", id.String())
		}
		bk = bookingDomain.ReconstructBooking(s)
		return nil
	})
	return bk, err
}

func (r *memBookings) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *memBookings) filter(keep func(s bookingDomain.Snapshot) bool, asc bool) []*bookingDomain.Booking {
	var out []*bookingDomain.Booking
	_ = r.with(func(t *tables) error {
		for _, s := range t.bookings {
			if keep(s) {
				out = append(out, bookingDomain.ReconstructBooking(s))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if asc {
			return out[i].CreatedAt().Before(out[j].CreatedAt())
		}
		return out[i].CreatedAt().After(out[j].CreatedAt())
	})
	return out
}

func (r *memBookings) ListAll(ctx context.Context, req paging.Request) ([]*bookingDomain.Booking, int64, error) {
	all := r.filter(func(bookingDomain.Snapshot) bool { return true }, req.Order == paging.OrderAsc)
	total := int64(len(all))
	start := req.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + req.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memBookings) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*bookingDomain.Booking, error) {
	return r.filter(func(s bookingDomain.Snapshot) bool { return s.UserID == userID }, false), nil
}

func (r *memBookings) FindByProviderAndApproval(ctx context.Context, providerID uuid.UUID, status bookingDomain.ApprovalStatus) ([]*bookingDomain.Booking, error) {
	return r.filter(func(s bookingDomain.Snapshot) bool {
		return s.ProviderID == providerID && s.ApprovalStatus == status
	}, false), nil
}

func (r *memBookings) FindCompletedByProvider(ctx context.Context, providerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	return r.filter(func(s bookingDomain.Snapshot) bool {
		return s.ProviderID == providerID &&
			s.ApprovalStatus == bookingDomain.ApprovalAccepted &&
			s.WorkStatus == bookingDomain.WorkCompleted
	}, false), nil
}

func (r *memBookings) FindLocations(ctx context.Context) ([]bookingDomain.LocationPoint, error) {
	var points []bookingDomain.LocationPoint
	for _, bk := range r.filter(func(s bookingDomain.Snapshot) bool { return s.Location != nil }, false) {
		points = append(points, bookingDomain.LocationPoint{
			ID:             bk.ID(),
			Latitude:       bk.Location().Latitude,
			Longitude:      bk.Location().Longitude,
			ApprovalStatus: bk.ApprovalStatus(),
			WorkStatus:     bk.WorkStatus(),
		})
	}
	return points, nil
}

func (r *memBookings) FindStuckRefunds(ctx context.Context, before time.Time, limit int) ([]*bookingDomain.Booking, error) {
	out := r.filter(func(s bookingDomain.Snapshot) bool {
		return s.RefundState == bookingDomain.RefundPending && s.UpdatedAt.Before(before)
	}, true)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memBookings) CountStats(ctx context.Context) (*bookingDomain.Stats, error) {
	stats := &bookingDomain.Stats{
		ByApproval: map[bookingDomain.ApprovalStatus]int64{},
		ByWork:     map[bookingDomain.WorkStatus]int64{},
		ByPayment:  map[bookingDomain.PaymentStatus]int64{},
	}
	_ = r.with(func(t *tables) error {
		for _, s := range t.bookings {
			stats.Total++
			stats.ByApproval[s.ApprovalStatus]++
			stats.ByWork[s.WorkStatus]++
			stats.ByPayment[s.PaymentStatus]++
		}
		return nil
	})
	return stats, nil
}

func (r *memBookings) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	return r.with(func(t *tables) error {
		t.bookings[bk.ID()] = bk.Snapshot()
		return nil
	})
}

func (r *memBookings) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	return r.with(func(t *tables) error {
		cur, ok := t.bookings[bk.ID()]
		if !ok || cur.Version != bk.Version()-1 {
			return apperror.NewConflictError("booking was modified by another transaction")
		}
		t.bookings[bk.ID()] = bk.Snapshot()
		return nil
	})
}

// --- payments ---

type memPayments struct {
	tx *tables
}

func (r *memPayments) FindByID(ctx context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	s, ok := r.tx.payments[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Payment", id.String())
	}
	return paymentDomain.Reconstruct(s), nil
}

func (r *memPayments) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	return r.FindByID(ctx, id)
}

func (r *memPayments) Update(ctx context.Context, p *paymentDomain.Payment) error {
	cur, ok := r.tx.payments[p.ID()]
	if !ok || cur.Version != p.Version()-1 {
		return apperror.NewConflictError("payment was modified by another transaction")
	}
	r.tx.payments[p.ID()] = p.Snapshot()
	return nil
}

// --- users ---

type memUsers struct {
	db *memDB
	tx *tables
}

func (r *memUsers) with(fn func(t *tables) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return fn(r.db.data)
}

func (r *memUsers) FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	var u *userDomain.User
	err := r.with(func(t *tables) error {
		s, ok := t.users[id]
		if !ok {
			return apperror.NewNotFoundError("User", id.String())
		}
		u = userDomain.Reconstruct(s)
		return nil
	})
	return u, err
}

func (r *memUsers) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	return r.FindByID(ctx, id)
}

func (r *memUsers) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	_ = r.with(func(t *tables) error {
		_, ok = t.users[id]
		return nil
	})
	return ok, nil
}

func (r *memUsers) UpdateBalance(ctx context.Context, u *userDomain.User) error {
	return r.with(func(t *tables) error {
		cur, ok := t.users[u.ID()]
		if !ok || cur.Version != u.Version()-1 {
			return apperror.NewConflictError("user was modified by another transaction")
		}
		t.users[u.ID()] = u.Snapshot()
		return nil
	})
}

// --- photos, vehicles, references ---

type memPhotos struct{ db *memDB }

func (r *memPhotos) Save(ctx context.Context, p *photoDomain.BookingPhoto) error {
	return r.SaveAll(ctx, []*photoDomain.BookingPhoto{p})
}

func (r *memPhotos) SaveAll(ctx context.Context, photos []*photoDomain.BookingPhoto) error {
	r.db.photoMu.Lock()
	defer r.db.photoMu.Unlock()
	r.db.photos = append(r.db.photos, photos...)
	return nil
}

func (r *memPhotos) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*photoDomain.BookingPhoto, error) {
	r.db.photoMu.Lock()
	defer r.db.photoMu.Unlock()
	var out []*photoDomain.BookingPhoto
	for _, p := range r.db.photos {
		if p.BookingID() == bookingID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memVehicles struct{ db *memDB }

func (r *memVehicles) FindByID(ctx context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	r.db.vehicleMu.Lock()
	defer r.db.vehicleMu.Unlock()
	v, ok := r.db.vehicles[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Vehicle", id.String())
	}
	return v, nil
}

func (r *memVehicles) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*vehicleDomain.Vehicle, error) {
	r.db.vehicleMu.Lock()
	defer r.db.vehicleMu.Unlock()
	var out []*vehicleDomain.Vehicle
	for _, v := range r.db.vehicles {
		if v.IsOwnedBy(ownerID) && v.IsActive() {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memVehicles) Save(ctx context.Context, v *vehicleDomain.Vehicle) error {
	r.db.vehicleMu.Lock()
	defer r.db.vehicleMu.Unlock()
	r.db.vehicles[v.ID()] = v
	return nil
}

func (r *memVehicles) Update(ctx context.Context, v *vehicleDomain.Vehicle) error {
	return r.Save(ctx, v)
}

type memRefs struct{ db *memDB }

func (r *memRefs) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.db.categories[id], nil
}

func (r *memRefs) VehicleTypeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.db.vehicleTypes[id], nil
}

// --- gateway and publisher ---

type fakeGateway struct {
	mu    sync.Mutex
	calls []paymentDomain.RefundRequest
	err   error
}

func (g *fakeGateway) Refund(ctx context.Context, req paymentDomain.RefundRequest) (*paymentDomain.RefundReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	return &paymentDomain.RefundReceipt{RefundID: "re_" + req.ChargeReference, Status: "succeeded"}, nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	err    error
}

func (p *fakePublisher) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// --- fixture ---

type fixture struct {
	db        *memDB
	gateway   *fakeGateway
	publisher *fakePublisher
	service   *BookingService
}

func newFixture() *fixture {
	db := newMemDB()
	gw := &fakeGateway{}
	pub := &fakePublisher{}
	svc := NewBookingService(BookingServiceDeps{
		Bookings:       &memBookings{db: db},
		Photos:         &memPhotos{db: db},
		Users:          &memUsers{db: db},
		Vehicles:       &memVehicles{db: db},
		Refs:           &memRefs{db: db},
		UoW:            db,
		Gateway:        gw,
		Publisher:      pub,
		Logger:         zap.NewNop(),
		GatewayTimeout: time.Second,
	})
	return &fixture{db: db, gateway: gw, publisher: pub, service: svc}
}

func strPtr(s string) *string { return &s }

func (f *fixture) addUser(role userDomain.Role, balance *string) uuid.UUID {
	id := uuid.New()
	f.db.data.users[id] = userDomain.Snapshot{ID: id, Role: role, Balance: balance, Version: 1}
	return id
}

func (f *fixture) providerOf(bookingID uuid.UUID) uuid.UUID {
	return f.db.booking(bookingID).ProviderID()
}

func (f *fixture) customerOf(bookingID uuid.UUID) uuid.UUID {
	return f.db.booking(bookingID).UserID()
}

type bookingSeed struct {
	approval  bookingDomain.ApprovalStatus
	work      bookingDomain.WorkStatus
	payment   bookingDomain.PaymentStatus
	payStatus paymentDomain.Status
	amount    *string
	charge    *string
	noPayment bool
	balance   *string
}

// addBooking seeds a booking with its provider and, unless noPayment, a payment.
func (f *fixture) addBooking(seed bookingSeed) (bookingID, providerID uuid.UUID, paymentID *uuid.UUID) {
	customer := f.addUser(userDomain.RoleCustomer, nil)
	providerID = f.addUser(userDomain.RoleProvider, seed.balance)

	bookingID = uuid.New()
	if !seed.noPayment {
		id := uuid.New()
		paymentID = &id
		f.db.data.payments[id] = paymentDomain.Snapshot{
			ID:              id,
			BookingID:       bookingID,
			Status:          seed.payStatus,
			Amount:          seed.amount,
			Currency:        "usd",
			ChargeReference: seed.charge,
			Version:         1,
		}
	}

	now := time.Now().UTC()
	f.db.data.bookings[bookingID] = bookingDomain.Snapshot{
		ID:             bookingID,
		BookingNumber:  "FX-" + bookingID.String()[:6],
		UserID:         customer,
		ProviderID:     providerID,
		CategoryID:     uuid.New(),
		PaymentID:      paymentID,
		Address:        "Jl. Merdeka 17",
		ApprovalStatus: seed.approval,
		WorkStatus:     seed.work,
		PaymentStatus:  seed.payment,
		RefundState:    bookingDomain.RefundNone,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return bookingID, providerID, paymentID
}
