// Package testutil provides in-memory stand-ins for the Mongo repositories, a rollback-capable
// Transactor and a controllable clock.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wheelhouse/database/repository"
	"wheelhouse/models"
)

type failure struct {
	err       error
	remaining int
}

// Store is the shared state behind every in-memory repository.
type Store struct {
	mu        sync.Mutex
	txMu      sync.Mutex
	bookings  map[string]models.Booking
	vehicles  map[string]models.Vehicle
	drivers   map[string]models.Driver
	users     map[string]models.User
	companies map[string]models.RentalCompany
	failures  map[string]*failure
}

func NewStore() *Store {
	return &Store{
		bookings:  map[string]models.Booking{},
		vehicles:  map[string]models.Vehicle{},
		drivers:   map[string]models.Driver{},
		users:     map[string]models.User{},
		companies: map[string]models.RentalCompany{},
		failures:  map[string]*failure{},
	}
}

// Repository operation names accepted by FailNext.
const (
	OpBookingCreate   = "booking.create"
	OpBookingUpdate   = "booking.update"
	OpBookingFind     = "booking.find"
	OpBookingMarkFlag = "booking.markFlag"
	OpVehicleUpdate   = "vehicle.update"
	OpVehicleRelease  = "vehicle.removeBlackout"
	OpDriverUpdate    = "driver.update"
)

// FailNext makes the next times calls of op return err.
func (s *Store) FailNext(op string, err error, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = &failure{err: err, remaining: times}
}

// injected must be called with s.mu held.
func (s *Store) injected(op string) error {
	f, ok := s.failures[op]
	if !ok || f.remaining == 0 {
		return nil
	}
	f.remaining--
	return f.err
}

func (s *Store) PutVehicle(v models.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = cloneVehicle(v)
}

func (s *Store) PutDriver(d models.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[d.ID] = cloneDriver(d)
}

func (s *Store) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) PutCompany(c models.RentalCompany) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[c.ID] = c
}

func (s *Store) PutBooking(b models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = cloneBooking(b)
}

// Vehicle returns the stored vehicle, or the zero value.
func (s *Store) Vehicle(id string) models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneVehicle(s.vehicles[id])
}

func (s *Store) Driver(id string) models.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDriver(s.drivers[id])
}

func (s *Store) Booking(id string) (models.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	return cloneBooking(b), ok
}

func (s *Store) BookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

// Transactor runs fn against the store and restores the previous state if fn fails.
// Transactions are serialized.
func (s *Store) Transactor() *Transactor {
	return &Transactor{store: s}
}

type Transactor struct {
	store *Store
	// Calls counts WithTransaction invocations.
	Calls int
}

func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s := t.store
	s.txMu.Lock()
	defer s.txMu.Unlock()
	t.Calls++

	s.mu.Lock()
	snapshot := s.snapshot()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.restore(snapshot)
		s.mu.Unlock()
		return err
	}
	return nil
}

type state struct {
	bookings map[string]models.Booking
	vehicles map[string]models.Vehicle
	drivers  map[string]models.Driver
}

// Stored values are cloned on every write, so shallow map copies are enough.
func (s *Store) snapshot() state {
	st := state{
		bookings: make(map[string]models.Booking, len(s.bookings)),
		vehicles: make(map[string]models.Vehicle, len(s.vehicles)),
		drivers:  make(map[string]models.Driver, len(s.drivers)),
	}
	for k, v := range s.bookings {
		st.bookings[k] = v
	}
	for k, v := range s.vehicles {
		st.vehicles[k] = v
	}
	for k, v := range s.drivers {
		st.drivers[k] = v
	}
	return st
}

func (s *Store) restore(st state) {
	s.bookings = st.bookings
	s.vehicles = st.vehicles
	s.drivers = st.drivers
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
}

func conflict(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, repository.ErrVersionConflict)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneBooking(b models.Booking) models.Booking {
	b.AuditLogs = append([]models.AuditEntry(nil), b.AuditLogs...)
	b.Feedback = cloneStrings(b.Feedback)
	b.DamageReports = cloneStrings(b.DamageReports)
	b.ConfirmedAt = cloneTime(b.ConfirmedAt)
	b.HandoverAt = cloneTime(b.HandoverAt)
	b.DeliveredAt = cloneTime(b.DeliveredAt)
	b.ReturnedAt = cloneTime(b.ReturnedAt)
	return b
}

func cloneVehicle(v models.Vehicle) models.Vehicle {
	v.BlackoutDates = cloneStrings(v.BlackoutDates)
	if v.DynamicPricing != nil {
		p := *v.DynamicPricing
		v.DynamicPricing = &p
	}
	if v.Discount != nil {
		d := *v.Discount
		v.Discount = &d
	}
	return v
}

func cloneDriver(d models.Driver) models.Driver {
	d.BlackoutDates = cloneStrings(d.BlackoutDates)
	return d
}
