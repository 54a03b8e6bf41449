package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"wheelhouse/database/repository"
	"wheelhouse/models"
	"wheelhouse/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	ctx       = context.Background()
	start     = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	rentalDay = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	store  *testutil.Store
	tx     *testutil.Transactor
	events *testutil.RecordingPublisher
	clock  *testutil.Clock
	svc    *DefaultBookingService
}

func newFixture(t *testing.T, policy Policy) *fixture {
	t.Helper()
	store := testutil.NewStore()
	store.PutUser(models.User{ID: "u1", Name: "Ayesha", Email: "ayesha@example.com"})
	store.PutUser(models.User{ID: "blocked", Name: "Blocked", Blocked: true})
	store.PutDriver(models.Driver{ID: "d1", CompanyID: "c1", Name: "Imran"})

	f := &fixture{
		store:  store,
		tx:     store.Transactor(),
		events: &testutil.RecordingPublisher{},
		clock:  testutil.NewClock(start),
	}
	f.addVehicle("v1", models.PolicyFlexible)

	f.svc = NewDefaultBookingService(store.Bookings(), store.Vehicles(), store.Drivers(), store.Users(),
		f.tx, f.events, zap.NewNop(), policy)
	f.svc.Now = f.clock.Now
	return f
}

func (f *fixture) addVehicle(id string, policy models.CancellationPolicy) {
	f.store.PutVehicle(models.Vehicle{
		ID:                 id,
		CompanyID:          "c1",
		Name:               "Corolla",
		Status:             models.VehicleAvailable,
		DynamicPricing:     &models.DynamicPricing{BaseRate: 1000},
		Discount:           &models.Discount{Percent: 10, ValidUntil: start.AddDate(0, 1, 0)},
		CancellationPolicy: policy,
	})
}

func request(vehicleID string, fromH, fromM, toH, toM int) models.CreateBookingRequest {
	return models.CreateBookingRequest{
		UserID:        "u1",
		VehicleID:     vehicleID,
		From:          rentalDay,
		To:            rentalDay,
		FromTime:      rentalDay.Add(time.Duration(fromH)*time.Hour + time.Duration(fromM)*time.Minute),
		ToTime:        rentalDay.Add(time.Duration(toH)*time.Hour + time.Duration(toM)*time.Minute),
		CityName:      "  Lahore ",
		TermsAccepted: true,
		PaymentStatus: models.PaymentPending,
	}
}

func (f *fixture) create(t *testing.T, req models.CreateBookingRequest) *models.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(ctx, req)
	require.NoError(t, err)
	return b
}

func (f *fixture) confirmed(t *testing.T, req models.CreateBookingRequest) *models.Booking {
	t.Helper()
	b := f.create(t, req)
	b, err := f.svc.ConfirmBooking(ctx, b.ID, "admin")
	require.NoError(t, err)
	return b
}

func requireCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, CodeOf(err), "error: %v", err)
}

func actions(b models.Booking) []models.AuditAction {
	var out []models.AuditAction
	for _, e := range b.AuditLogs {
		out = append(out, e.Action)
	}
	return out
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t, Policy{})

	b := f.create(t, request("v1", 10, 0, 12, 0))

	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, "c1", b.CompanyID)
	assert.Equal(t, "lahore", b.CityName)
	assert.Equal(t, models.DefaultBufferMinutes, b.BufferMinutes)
	assert.Equal(t, models.PolicyFlexible, b.CancellationPolicy)
	assert.InDelta(t, 1044, b.PriceDetails.Total, 1e-9)
	require.Len(t, b.AuditLogs, 1)
	assert.Equal(t, models.AuditCreated, b.AuditLogs[0].Action)
	assert.Equal(t, "u1", b.AuditLogs[0].By)

	stored, ok := f.store.Booking(b.ID)
	require.True(t, ok)
	assert.Equal(t, b.PriceDetails, stored.PriceDetails)

	v := f.store.Vehicle("v1")
	assert.Equal(t, models.VehicleBooked, v.Status)
	assert.EqualValues(t, 1, v.Version)

	created := f.events.OfType(models.EventBookingCreated)
	require.Len(t, created, 1)
	assert.Equal(t, b.ID, created[0].BookingID)
}

func TestCreateBooking_PolicySnapshot(t *testing.T) {
	f := newFixture(t, Policy{})
	b := f.create(t, request("v1", 10, 0, 12, 0))

	v := f.store.Vehicle("v1")
	v.CancellationPolicy = models.PolicyStrict
	f.store.PutVehicle(v)

	got, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyFlexible, got.CancellationPolicy)
}

func TestCreateBooking_Validation(t *testing.T) {
	f := newFixture(t, Policy{})

	missing := request("v1", 10, 0, 12, 0)
	missing.FromTime = time.Time{}
	missing.UserID = ""
	_, err := f.svc.CreateBooking(ctx, missing)
	requireCode(t, err, CodeValidation)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "user")
	assert.Contains(t, err.Error(), "fromTime")

	backwards := request("v1", 12, 0, 10, 0)
	_, err = f.svc.CreateBooking(ctx, backwards)
	requireCode(t, err, CodeValidation)

	badPayment := request("v1", 10, 0, 12, 0)
	badPayment.PaymentStatus = "refunded"
	_, err = f.svc.CreateBooking(ctx, badPayment)
	requireCode(t, err, CodeValidation)

	noTerms := request("v1", 10, 0, 12, 0)
	noTerms.TermsAccepted = false
	_, err = f.svc.CreateBooking(ctx, noTerms)
	requireCode(t, err, CodeValidation)

	assert.Zero(t, f.store.BookingCount())
}

func TestCreateBooking_UserAndVehicleChecks(t *testing.T) {
	f := newFixture(t, Policy{})

	req := request("v1", 10, 0, 12, 0)
	req.UserID = "blocked"
	_, err := f.svc.CreateBooking(ctx, req)
	requireCode(t, err, CodeForbidden)

	req.UserID = "nobody"
	_, err = f.svc.CreateBooking(ctx, req)
	requireCode(t, err, CodeNotFound)

	_, err = f.svc.CreateBooking(ctx, request("missing", 10, 0, 12, 0))
	requireCode(t, err, CodeNotFound)

	v := f.store.Vehicle("v1")
	v.IsDeleted = true
	f.store.PutVehicle(v)
	_, err = f.svc.CreateBooking(ctx, request("v1", 10, 0, 12, 0))
	requireCode(t, err, CodeNotFound)
}

func TestCreateBooking_BufferScenario(t *testing.T) {
	f := newFixture(t, Policy{})

	f.create(t, request("v1", 10, 0, 12, 0))

	_, err := f.svc.CreateBooking(ctx, request("v1", 13, 30, 15, 0))
	requireCode(t, err, CodeConflict)

	c := f.create(t, request("v1", 14, 30, 16, 0))
	assert.Equal(t, models.BookingPending, c.Status)
	assert.Equal(t, 2, f.store.BookingCount())
}

func TestCreateBooking_Blackout(t *testing.T) {
	f := newFixture(t, Policy{})
	v := f.store.Vehicle("v1")
	v.BlackoutDates = []string{"2026-05-04"}
	f.store.PutVehicle(v)

	_, err := f.svc.CreateBooking(ctx, request("v1", 10, 0, 12, 0))
	requireCode(t, err, CodeConflict)
	assert.Contains(t, err.Error(), "2026-05-04")
}

func TestCreateBooking_Driver(t *testing.T) {
	f := newFixture(t, Policy{})

	req := request("v1", 10, 0, 12, 0)
	req.DriverID = "ghost"
	_, err := f.svc.CreateBooking(ctx, req)
	requireCode(t, err, CodeNotFound)

	f.store.PutDriver(models.Driver{ID: "d1", BlackoutDates: []string{"2026-05-04"}})
	req.DriverID = "d1"
	_, err = f.svc.CreateBooking(ctx, req)
	requireCode(t, err, CodeConflict)
	assert.Contains(t, err.Error(), "driver")
}

func TestCreateBooking_RollsBackOnWriteFailure(t *testing.T) {
	f := newFixture(t, Policy{})
	f.store.FailNext(testutil.OpVehicleUpdate, errors.New("disk full"), 1)

	_, err := f.svc.CreateBooking(ctx, request("v1", 10, 0, 12, 0))

	requireCode(t, err, CodeTransaction)
	assert.Zero(t, f.store.BookingCount())
	assert.Equal(t, models.VehicleAvailable, f.store.Vehicle("v1").Status)
	assert.Empty(t, f.events.Events())
}

func TestCreateBooking_RetriesVersionConflict(t *testing.T) {
	f := newFixture(t, Policy{MaxRetries: 3})
	f.store.FailNext(testutil.OpVehicleUpdate, fmt.Errorf("vehicle v1: %w", repository.ErrVersionConflict), 1)

	b, err := f.svc.CreateBooking(ctx, request("v1", 10, 0, 12, 0))

	require.NoError(t, err)
	assert.Equal(t, 2, f.tx.Calls)
	assert.Equal(t, 1, f.store.BookingCount())
	_, ok := f.store.Booking(b.ID)
	assert.True(t, ok)
}

func TestCreateBooking_GivesUpAfterRetries(t *testing.T) {
	f := newFixture(t, Policy{MaxRetries: 2})
	f.store.FailNext(testutil.OpVehicleUpdate, repository.ErrVersionConflict, 5)

	_, err := f.svc.CreateBooking(ctx, request("v1", 10, 0, 12, 0))

	requireCode(t, err, CodeConflict)
	assert.Equal(t, 2, f.tx.Calls)
	assert.Zero(t, f.store.BookingCount())
}

func TestCreateBooking_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, Policy{})
	f.events.Err = errors.New("queue down")

	b, err := f.svc.CreateBooking(ctx, request("v1", 10, 0, 12, 0))

	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Len(t, f.events.Events(), 1)
}

func TestConfirmBooking(t *testing.T) {
	f := newFixture(t, Policy{})
	req := request("v1", 10, 0, 12, 0)
	req.To = rentalDay.AddDate(0, 0, 2)
	req.ToTime = req.To.Add(9 * time.Hour)
	req.DriverID = "d1"
	b := f.create(t, req)

	got, err := f.svc.ConfirmBooking(ctx, b.ID, "admin")
	require.NoError(t, err)

	assert.Equal(t, models.BookingConfirmed, got.Status)
	require.NotNil(t, got.ConfirmedAt)
	assert.Equal(t, []models.AuditAction{models.AuditCreated, models.AuditConfirmed}, actions(*got))
	assert.Equal(t, "admin", got.AuditLogs[1].By)

	dates := []string{"2026-05-04", "2026-05-05", "2026-05-06"}
	v := f.store.Vehicle("v1")
	assert.Equal(t, dates, v.BlackoutDates)
	assert.Equal(t, 1, v.Trips)
	assert.Equal(t, models.VehicleBooked, v.Status)
	assert.Equal(t, dates, f.store.Driver("d1").BlackoutDates)

	assert.Len(t, f.events.OfType(models.EventBookingConfirmed), 1)
}

func TestConfirmBooking_VehicleManagedElsewhere(t *testing.T) {
	f := newFixture(t, Policy{})
	// written by vehicle management: no version field, booking-irrelevant fields set
	f.store.PutVehicle(models.Vehicle{
		ID:                 "ext",
		CompanyID:          "c1",
		Name:               "Honda Civic",
		Status:             models.VehicleAvailable,
		DynamicPricing:     &models.DynamicPricing{BaseRate: 2500},
		CancellationPolicy: models.PolicyModerate,
		BufferMinutes:      90,
	})

	b := f.confirmed(t, request("ext", 10, 0, 12, 0))

	assert.Equal(t, models.BookingConfirmed, b.Status)
	v := f.store.Vehicle("ext")
	assert.EqualValues(t, 2, v.Version)
	assert.Equal(t, models.VehicleBooked, v.Status)
	assert.Equal(t, []string{"2026-05-04"}, v.BlackoutDates)
	assert.Equal(t, 1, v.Trips)
	assert.Equal(t, "Honda Civic", v.Name)
	require.NotNil(t, v.DynamicPricing)
	assert.InDelta(t, 2500, v.DynamicPricing.BaseRate, 1e-9)
	assert.Equal(t, models.PolicyModerate, v.CancellationPolicy)
	assert.Equal(t, 90, v.BufferMinutes)
}

func TestConfirmBooking_Twice(t *testing.T) {
	f := newFixture(t, Policy{})
	b := f.confirmed(t, request("v1", 10, 0, 12, 0))

	_, err := f.svc.ConfirmBooking(ctx, b.ID, "admin")

	requireCode(t, err, CodeInvalidTransition)
	assert.Contains(t, err.Error(), "confirmed")
	stored, _ := f.store.Booking(b.ID)
	assert.Len(t, stored.AuditLogs, 2)
	assert.Equal(t, b.Version, stored.Version)
	assert.Equal(t, 1, f.store.Vehicle("v1").Trips)
}

func TestConfirmBooking_NotFound(t *testing.T) {
	f := newFixture(t, Policy{})

	_, err := f.svc.ConfirmBooking(ctx, "nope", "")
	requireCode(t, err, CodeNotFound)
}

func TestConfirmBooking_RollsBackOnDriverFailure(t *testing.T) {
	f := newFixture(t, Policy{})
	req := request("v1", 10, 0, 12, 0)
	req.DriverID = "d1"
	b := f.create(t, req)
	f.store.FailNext(testutil.OpDriverUpdate, errors.New("write failed"), 1)

	_, err := f.svc.ConfirmBooking(ctx, b.ID, "admin")

	requireCode(t, err, CodeTransaction)
	stored, _ := f.store.Booking(b.ID)
	assert.Equal(t, models.BookingPending, stored.Status)
	assert.Len(t, stored.AuditLogs, 1)
	v := f.store.Vehicle("v1")
	assert.Empty(t, v.BlackoutDates)
	assert.Zero(t, v.Trips)
	assert.Empty(t, f.events.OfType(models.EventBookingConfirmed))
}

func TestConfirmBooking_RevalidatesAgainstConfirmed(t *testing.T) {
	f := newFixture(t, Policy{})
	for _, id := range []string{"p1", "p2"} {
		hour := 10
		if id == "p2" {
			hour = 11
		}
		f.store.PutBooking(models.Booking{
			ID: id, VehicleID: "v1", UserID: "u1", Status: models.BookingPending,
			From: rentalDay, To: rentalDay,
			FromTime: rentalDay.Add(time.Duration(hour) * time.Hour), ToTime: rentalDay.Add(time.Duration(hour+2) * time.Hour),
			BufferMinutes: 120,
		})
	}

	_, err := f.svc.ConfirmBooking(ctx, "p1", "admin")
	require.NoError(t, err)

	_, err = f.svc.ConfirmBooking(ctx, "p2", "admin")
	requireCode(t, err, CodeConflict)
	p2, _ := f.store.Booking("p2")
	assert.Equal(t, models.BookingPending, p2.Status)
}

func TestDeliverAndReturn(t *testing.T) {
	f := newFixture(t, Policy{})
	b := f.confirmed(t, request("v1", 10, 0, 12, 0))
	assert.Equal(t, models.VehicleBooked, f.store.Vehicle("v1").Status)

	b, err := f.svc.DeliverBooking(ctx, b.ID, "staff")
	require.NoError(t, err)
	assert.Equal(t, models.BookingOngoing, b.Status)
	assert.NotNil(t, b.DeliveredAt)
	assert.Equal(t, models.VehicleOngoing, f.store.Vehicle("v1").Status)

	b, err = f.svc.ReturnVehicle(ctx, b.ID, "staff")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, b.Status)
	assert.NotNil(t, b.ReturnedAt)
	assert.Equal(t, models.VehicleAvailable, f.store.Vehicle("v1").Status)
	assert.Equal(t, []string{"2026-05-04"}, f.store.Vehicle("v1").BlackoutDates)

	assert.Equal(t, []models.AuditAction{
		models.AuditCreated, models.AuditConfirmed, models.AuditDelivered, models.AuditReturned,
	}, actions(*b))
	assert.Len(t, f.events.OfType(models.EventBookingDelivered), 1)
	assert.Len(t, f.events.OfType(models.EventBookingReturned), 1)
}

func TestDeliver_RequiresConfirmed(t *testing.T) {
	f := newFixture(t, Policy{})
	b := f.create(t, request("v1", 10, 0, 12, 0))

	_, err := f.svc.DeliverBooking(ctx, b.ID, "staff")
	requireCode(t, err, CodeInvalidTransition)

	_, err = f.svc.ReturnVehicle(ctx, b.ID, "staff")
	requireCode(t, err, CodeInvalidTransition)
	assert.Equal(t, models.VehicleBooked, f.store.Vehicle("v1").Status)
}

func TestCompleteBooking(t *testing.T) {
	f := newFixture(t, Policy{})
	b := f.confirmed(t, request("v1", 10, 0, 12, 0))

	got, err := f.svc.CompleteBooking(ctx, b.ID, models.CompleteBookingRequest{
		UserID:          "u1",
		FeedbackID:      "fb1",
		DamageReportIDs: []string{"dr1", "dr2", "dr1"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.BookingCompleted, got.Status)
	assert.NotNil(t, got.HandoverAt)
	assert.NotNil(t, got.ReturnedAt)
	assert.Equal(t, []string{"fb1"}, got.Feedback)
	assert.Equal(t, []string{"dr1", "dr2"}, got.DamageReports)
	assert.Equal(t, models.AuditCompleted, got.AuditLogs[len(got.AuditLogs)-1].Action)
	v := f.store.Vehicle("v1")
	assert.Equal(t, models.VehicleAvailable, v.Status)
	assert.Equal(t, []string{"2026-05-04"}, v.BlackoutDates)

	f.addVehicle("v2", models.PolicyFlexible)
	pending := f.create(t, request("v2", 16, 0, 17, 0))
	_, err = f.svc.CompleteBooking(ctx, pending.ID, models.CompleteBookingRequest{})
	requireCode(t, err, CodeInvalidTransition)
}

func TestCancelBooking_Refunds(t *testing.T) {
	cases := []struct {
		policy models.CancellationPolicy
		refund float64
	}{
		{models.PolicyFlexible, 1044},
		{models.PolicyModerate, 522},
		{models.PolicyStrict, 0},
	}
	for _, tc := range cases {
		t.Run(string(tc.policy), func(t *testing.T) {
			f := newFixture(t, Policy{})
			f.addVehicle("v2", tc.policy)
			b := f.confirmed(t, request("v2", 10, 0, 12, 0))

			got, err := f.svc.CancelBooking(ctx, b.ID, models.CancelBookingRequest{UserID: "u1", Reason: "plans changed"})
			require.NoError(t, err)

			assert.Equal(t, models.BookingCanceled, got.Status)
			assert.InDelta(t, tc.refund, got.RefundAmount, 1e-9)
			assert.Equal(t, "plans changed", got.CancellationReason)
			last := got.AuditLogs[len(got.AuditLogs)-1]
			assert.Equal(t, models.AuditCanceled, last.Action)
			assert.Equal(t, "u1", last.By)
			assert.Equal(t, models.VehicleAvailable, f.store.Vehicle("v2").Status)

			canceled := f.events.OfType(models.EventBookingCanceled)
			require.Len(t, canceled, 1)
			assert.InDelta(t, tc.refund, canceled[0].RefundAmount, 1e-9)
			assert.Equal(t, "plans changed", canceled[0].Reason)
		})
	}
}

func TestCancelBooking_IllegalStates(t *testing.T) {
	f := newFixture(t, Policy{})
	b := f.create(t, request("v1", 10, 0, 12, 0))
	_, err := f.svc.CancelBooking(ctx, b.ID, models.CancelBookingRequest{Reason: "x"})
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(ctx, b.ID, models.CancelBookingRequest{Reason: "again"})
	requireCode(t, err, CodeAlreadyCanceled)

	ongoing := f.confirmed(t, request("v1", 16, 0, 18, 0))
	_, err = f.svc.DeliverBooking(ctx, ongoing.ID, "staff")
	require.NoError(t, err)
	_, err = f.svc.CancelBooking(ctx, ongoing.ID, models.CancelBookingRequest{Reason: "late"})
	requireCode(t, err, CodeInvalidTransition)

	_, err = f.svc.CancelBooking(ctx, "nope", models.CancelBookingRequest{})
	requireCode(t, err, CodeNotFound)
}

func TestCancelBooking_BlackoutPolicy(t *testing.T) {
	req := request("v1", 10, 0, 12, 0)
	req.DriverID = "d1"

	keep := newFixture(t, Policy{})
	b := keep.confirmed(t, req)
	_, err := keep.svc.CancelBooking(ctx, b.ID, models.CancelBookingRequest{Reason: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-05-04"}, keep.store.Vehicle("v1").BlackoutDates)

	release := newFixture(t, Policy{ReleaseBlackoutOnCancel: true})
	b = release.confirmed(t, req)
	_, err = release.svc.CancelBooking(ctx, b.ID, models.CancelBookingRequest{Reason: "x"})
	require.NoError(t, err)
	assert.Empty(t, release.store.Vehicle("v1").BlackoutDates)
	assert.Empty(t, release.store.Driver("d1").BlackoutDates)
	assert.Equal(t, models.VehicleAvailable, release.store.Vehicle("v1").Status)
}

func TestSoftDeleteBooking(t *testing.T) {
	f := newFixture(t, Policy{})
	b := f.create(t, request("v1", 10, 0, 12, 0))
	vehicleVersion := f.store.Vehicle("v1").Version

	got, err := f.svc.SoftDeleteBooking(ctx, b.ID, true, "admin")
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, models.BookingPending, got.Status)

	got, err = f.svc.SoftDeleteBooking(ctx, b.ID, false, "admin")
	require.NoError(t, err)
	assert.False(t, got.IsDeleted)
	assert.Equal(t, []models.AuditAction{models.AuditCreated, models.AuditArchived, models.AuditRestored}, actions(*got))
	assert.Equal(t, vehicleVersion, f.store.Vehicle("v1").Version)
}

func TestAddAdminNote(t *testing.T) {
	f := newFixture(t, Policy{})
	b := f.create(t, request("v1", 10, 0, 12, 0))

	_, err := f.svc.AddAdminNote(ctx, b.ID, models.AdminNoteRequest{Note: "first", By: "ops"})
	require.NoError(t, err)
	got, err := f.svc.AddAdminNote(ctx, b.ID, models.AdminNoteRequest{Note: "VIP customer", By: "ops"})
	require.NoError(t, err)

	assert.Equal(t, "VIP customer", got.AdminNotes)
	assert.Len(t, got.AuditLogs, 3)
	last := got.AuditLogs[2]
	assert.Equal(t, models.AuditNote, last.Action)
	assert.Equal(t, "ops", last.By)
}

func TestDeleteBooking(t *testing.T) {
	f := newFixture(t, Policy{})
	b := f.create(t, request("v1", 10, 0, 12, 0))

	requireCode(t, f.svc.DeleteBooking(ctx, b.ID), CodeConflict)

	_, err := f.svc.CancelBooking(ctx, b.ID, models.CancelBookingRequest{Reason: "x"})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteBooking(ctx, b.ID))
	assert.Zero(t, f.store.BookingCount())

	requireCode(t, f.svc.DeleteBooking(ctx, b.ID), CodeNotFound)
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newFixture(t, Policy{})
	b := f.create(t, request("v1", 10, 0, 12, 0))

	got, err := f.svc.UpdatePaymentStatus(ctx, b.ID, models.PaymentPaid, "pi_123")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, "pi_123", got.PaymentIntentID)
	last := got.AuditLogs[len(got.AuditLogs)-1]
	assert.Equal(t, models.AuditPayment, last.Action)
	assert.Equal(t, models.SystemActor, last.By)

	_, err = f.svc.UpdatePaymentStatus(ctx, b.ID, "", "")
	requireCode(t, err, CodeValidation)
}

func TestListBookings(t *testing.T) {
	f := newFixture(t, Policy{})
	a := f.create(t, request("v1", 10, 0, 12, 0))
	c := f.create(t, request("v1", 15, 0, 16, 0))
	_, err := f.svc.SoftDeleteBooking(ctx, c.ID, true, "admin")
	require.NoError(t, err)

	got, err := f.svc.ListBookings(ctx, models.BookingFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	got, err = f.svc.ListBookings(ctx, models.BookingFilter{CompanyID: "c1", IncludeDeleted: true,
		Statuses: []models.BookingStatus{models.BookingPending}})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAutoCompleteBooking(t *testing.T) {
	f := newFixture(t, Policy{})
	req := request("v1", 10, 0, 12, 0)
	req.DriverID = "d1"
	b := f.confirmed(t, req)

	got, done, err := f.svc.AutoCompleteBooking(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, done)

	assert.Equal(t, models.BookingCompleted, got.Status)
	last := got.AuditLogs[len(got.AuditLogs)-1]
	assert.Equal(t, models.AuditAutoCompleted, last.Action)
	assert.Equal(t, models.SystemActor, last.By)
	assert.Empty(t, f.store.Vehicle("v1").BlackoutDates)
	assert.Empty(t, f.store.Driver("d1").BlackoutDates)

	_, done, err = f.svc.AutoCompleteBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestRefundAmount(t *testing.T) {
	assert.InDelta(t, 200, RefundAmount(models.PolicyFlexible, 200), 1e-9)
	assert.InDelta(t, 100, RefundAmount(models.PolicyModerate, 200), 1e-9)
	assert.Zero(t, RefundAmount(models.PolicyStrict, 200))
	assert.Zero(t, RefundAmount("", 200))
}
