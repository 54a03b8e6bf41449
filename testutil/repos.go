package testutil

import (
	"context"
	"sort"
	"time"

	bookingRepo "wheelhouse/database/repository/booking"
	companyRepo "wheelhouse/database/repository/company"
	driverRepo "wheelhouse/database/repository/driver"
	userRepo "wheelhouse/database/repository/user"
	vehicleRepo "wheelhouse/database/repository/vehicle"
	"wheelhouse/models"
)

var (
	_ bookingRepo.BookingRepository = (*BookingRepo)(nil)
	_ vehicleRepo.VehicleRepository = (*VehicleRepo)(nil)
	_ driverRepo.DriverRepository   = (*DriverRepo)(nil)
	_ userRepo.UserRepository       = (*UserRepo)(nil)
	_ companyRepo.CompanyRepository = (*CompanyRepo)(nil)
)

func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s: s} }
func (s *Store) Vehicles() *VehicleRepo { return &VehicleRepo{s: s} }
func (s *Store) Drivers() *DriverRepo { return &DriverRepo{s: s} }
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }
func (s *Store) Companies() *CompanyRepo { return &CompanyRepo{s: s} }

type BookingRepo struct{ s *Store }

func (r *BookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, notFound("booking", id)
	}
	c := cloneBooking(b)
	return &c, nil
}

func (r *BookingRepo) Find(_ context.Context, f models.BookingFilter) ([]models.Booking, error) {
	return r.match(func(b *models.Booking) bool {
		if !f.IncludeDeleted && b.IsDeleted {
			return false
		}
		if f.UserID != "" && b.UserID != f.UserID {
			return false
		}
		if f.CompanyID != "" && b.CompanyID != f.CompanyID {
			return false
		}
		if f.VehicleID != "" && b.VehicleID != f.VehicleID {
			return false
		}
		return len(f.Statuses) == 0 || hasStatus(f.Statuses, b.Status)
	})
}

func (r *BookingRepo) FindByVehicle(_ context.Context, vehicleID string, statuses []models.BookingStatus) ([]models.Booking, error) {
	return r.match(func(b *models.Booking) bool {
		return b.VehicleID == vehicleID && hasStatus(statuses, b.Status)
	})
}

func (r *BookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected(OpBookingCreate); err != nil {
		return err
	}
	r.s.bookings[b.ID] = cloneBooking(*b)
	return nil
}

func (r *BookingRepo) Update(_ context.Context, b *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected(OpBookingUpdate); err != nil {
		return err
	}
	stored, ok := r.s.bookings[b.ID]
	if !ok {
		return notFound("booking", b.ID)
	}
	if stored.Version != b.Version {
		return conflict("booking", b.ID)
	}
	b.Version++
	r.s.bookings[b.ID] = cloneBooking(*b)
	return nil
}

func (r *BookingRepo) MarkFlag(_ context.Context, id string, flag models.ReminderFlag) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected(OpBookingMarkFlag); err != nil {
		return false, err
	}
	b, ok := r.s.bookings[id]
	if !ok {
		return false, nil
	}
	var field *bool
	switch flag {
	case models.FlagDeliveryReminder:
		field = &b.DeliveryReminderSent
	case models.FlagReturnReminder:
		field = &b.ReturnReminderSent
	case models.FlagOverdueNotified:
		field = &b.OverdueNotified
	default:
		return false, nil
	}
	if *field {
		return false, nil
	}
	*field = true
	b.Version++
	r.s.bookings[id] = b
	return true, nil
}

func (r *BookingRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return notFound("booking", id)
	}
	delete(r.s.bookings, id)
	return nil
}

func (r *BookingRepo) FindDeliveryRemindersDue(_ context.Context, now, until time.Time) ([]models.Booking, error) {
	return r.match(func(b *models.Booking) bool {
		return b.Status == models.BookingConfirmed && !b.DeliveryReminderSent &&
			b.FromTime.After(now) && !b.FromTime.After(until)
	})
}

func (r *BookingRepo) FindReturnRemindersDue(_ context.Context, now, until time.Time) ([]models.Booking, error) {
	return r.match(func(b *models.Booking) bool {
		return b.Status == models.BookingOngoing && !b.ReturnReminderSent &&
			b.ToTime.After(now) && !b.ToTime.After(until)
	})
}

func (r *BookingRepo) FindOverdue(_ context.Context, now time.Time) ([]models.Booking, error) {
	return r.match(func(b *models.Booking) bool {
		return b.Status == models.BookingOngoing && !b.OverdueNotified && b.ToTime.Before(now)
	})
}

func (r *BookingRepo) FindExpired(_ context.Context, before time.Time) ([]models.Booking, error) {
	return r.match(func(b *models.Booking) bool {
		return (b.Status == models.BookingConfirmed || b.Status == models.BookingOngoing) &&
			b.To.Before(before) && b.ToTime.Before(before)
	})
}

func (r *BookingRepo) match(keep func(b *models.Booking) bool) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected(OpBookingFind); err != nil {
		return nil, err
	}
	var out []models.Booking
	for _, b := range r.s.bookings {
		if keep(&b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FromTime.Before(out[j].FromTime) })
	return out, nil
}

func hasStatus(statuses []models.BookingStatus, st models.BookingStatus) bool {
	for _, s := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

type VehicleRepo struct{ s *Store }

func (r *VehicleRepo) GetByID(_ context.Context, id string) (*models.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vehicles[id]
	if !ok {
		return nil, notFound("vehicle", id)
	}
	c := cloneVehicle(v)
	return &c, nil
}

func (r *VehicleRepo) Update(_ context.Context, v *models.Vehicle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected(OpVehicleUpdate); err != nil {
		return err
	}
	stored, ok := r.s.vehicles[v.ID]
	if !ok {
		return notFound("vehicle", v.ID)
	}
	if stored.Version != v.Version {
		return conflict("vehicle", v.ID)
	}
	// same fields the Mongo repo sets; the rest stays as stored
	stored.Status = v.Status
	stored.BlackoutDates = append([]string(nil), v.BlackoutDates...)
	stored.Trips = v.Trips
	stored.UpdatedAt = v.UpdatedAt
	stored.Version++
	v.Version = stored.Version
	r.s.vehicles[v.ID] = stored
	return nil
}

func (r *VehicleRepo) RemoveBlackoutDates(_ context.Context, id string, dates []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected(OpVehicleRelease); err != nil {
		return err
	}
	v, ok := r.s.vehicles[id]
	if !ok {
		return notFound("vehicle", id)
	}
	v.BlackoutDates = without(v.BlackoutDates, dates)
	v.Version++
	r.s.vehicles[id] = v
	return nil
}

type DriverRepo struct{ s *Store }

func (r *DriverRepo) GetByID(_ context.Context, id string) (*models.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.drivers[id]
	if !ok {
		return nil, notFound("driver", id)
	}
	c := cloneDriver(d)
	return &c, nil
}

func (r *DriverRepo) Update(_ context.Context, d *models.Driver) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected(OpDriverUpdate); err != nil {
		return err
	}
	stored, ok := r.s.drivers[d.ID]
	if !ok {
		return notFound("driver", d.ID)
	}
	if stored.Version != d.Version {
		return conflict("driver", d.ID)
	}
	stored.BlackoutDates = append([]string(nil), d.BlackoutDates...)
	stored.UpdatedAt = d.UpdatedAt
	stored.Version++
	d.Version = stored.Version
	r.s.drivers[d.ID] = stored
	return nil
}

func (r *DriverRepo) RemoveBlackoutDates(_ context.Context, id string, dates []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.drivers[id]
	if !ok {
		return notFound("driver", id)
	}
	d.BlackoutDates = without(d.BlackoutDates, dates)
	d.Version++
	r.s.drivers[id] = d
	return nil
}

func without(list, remove []string) []string {
	drop := make(map[string]bool, len(remove))
	for _, d := range remove {
		drop[d] = true
	}
	out := make([]string, 0, len(list))
	for _, d := range list {
		if !drop[d] {
			out = append(out, d)
		}
	}
	return out
}

type UserRepo struct{ s *Store }

func (r *UserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

type CompanyRepo struct{ s *Store }

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*models.RentalCompany, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, notFound("company", id)
	}
	return &c, nil
}
