//go:build integration

package integration

import (
	"testing"

	"github.com/Pranav-6954/Carpooling/internal/models"
	"github.com/Pranav-6954/Carpooling/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_AutoPricesAtCeiling(t *testing.T) {
	cleanTables()
	svcs := newServices()

	offering, err := svcs.offerings.CreatePost(t.Context(), service.CreateOfferingCommand{
		DriverEmail:  "driver@example.com",
		FromLocation: "Chennai",
		ToLocation:   "Hyderabad",
		TravelDate:   "2026-09-15",
		Capacity:     4,
	})
	require.NoError(t, err)

	// Offline distance 26km: ceiling (50 + 10*26) / 4 = 77.50.
	assert.Equal(t, 77.5, offering.PricePerSeat)
	assert.Equal(t, 4, offering.AvailableSeats)
}

func TestCreatePost_RejectsPriceAboveCeiling(t *testing.T) {
	cleanTables()
	svcs := newServices()

	_, err := svcs.offerings.CreatePost(t.Context(), service.CreateOfferingCommand{
		DriverEmail:  "driver@example.com",
		FromLocation: "Chennai",
		ToLocation:   "Hyderabad",
		TravelDate:   "2026-09-15",
		PricePerSeat: 500,
		Capacity:     4,
	})
	assert.ErrorIs(t, err, service.ErrPriceAboveCeiling)
}

func TestCreatePost_OverrideBypassesCeiling(t *testing.T) {
	cleanTables()
	svcs := newServices()

	offering, err := svcs.offerings.CreatePost(t.Context(), service.CreateOfferingCommand{
		DriverEmail:   "driver@example.com",
		FromLocation:  "Chennai",
		ToLocation:    "Hyderabad",
		TravelDate:    "2026-09-15",
		PricePerSeat:  500,
		Capacity:      4,
		PriceOverride: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 500.0, offering.PricePerSeat)
}

func TestCreatePost_DriverSelfReservation(t *testing.T) {
	cleanTables()
	svcs := newServices()

	offering, err := svcs.offerings.CreatePost(t.Context(), service.CreateOfferingCommand{
		DriverEmail:  "driver@example.com",
		FromLocation: "Chennai",
		ToLocation:   "Hyderabad",
		TravelDate:   "2026-09-15",
		Capacity:     4,
		SelfSeats:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, offering.AvailableSeats)
}

// Cancelling an offering cascades through every seat-holding booking, one
// transition each, and freezes the seat count.
func TestCancelOffering_CascadesAndFreezesSeats(t *testing.T) {
	cleanTables()
	svcs := newServices()
	offering := createTestOffering(t, svcs, 4)
	ctx := t.Context()

	b1, err := svcs.bookings.CreateBooking(ctx, service.CreateBookingCommand{
		OfferingID: offering.ID, PassengerEmail: "a@example.com", Seats: 2,
	})
	require.NoError(t, err)
	b2, err := svcs.bookings.CreateBooking(ctx, service.CreateBookingCommand{
		OfferingID: offering.ID, PassengerEmail: "b@example.com", Seats: 1,
	})
	require.NoError(t, err)

	// b2 already rejected: its seats are back, the cascade must not touch it
	// a second time.
	_, err = svcs.bookings.Transition(ctx, b2.ID, models.BookingRejected, "no")
	require.NoError(t, err)

	got, err := svcs.offerings.CancelOffering(ctx, offering.ID, "driver@example.com", "car broke down")
	require.NoError(t, err)
	assert.Equal(t, models.OfferingCancelled, got.Status)

	var fresh1, fresh2 models.Booking
	require.NoError(t, testDB.First(&fresh1, b1.ID).Error)
	require.NoError(t, testDB.First(&fresh2, b2.ID).Error)
	assert.Equal(t, models.BookingCancelled, fresh1.Status)
	assert.Equal(t, models.BookingRejected, fresh2.Status)

	assert.Equal(t, 4, availableSeats(offering.ID))
}

func TestCancelOffering_OnlyOwner(t *testing.T) {
	cleanTables()
	svcs := newServices()
	offering := createTestOffering(t, svcs, 4)

	_, err := svcs.offerings.CancelOffering(t.Context(), offering.ID, "intruder@example.com", "hah")
	assert.ErrorIs(t, err, service.ErrNotOfferingOwner)
}

func TestBookingOnTerminalOfferingRejected(t *testing.T) {
	cleanTables()
	svcs := newServices()
	offering := createTestOffering(t, svcs, 4)
	ctx := t.Context()

	_, err := svcs.offerings.CancelOffering(ctx, offering.ID, "driver@example.com", "done")
	require.NoError(t, err)

	_, err = svcs.bookings.CreateBooking(ctx, service.CreateBookingCommand{
		OfferingID: offering.ID, PassengerEmail: "late@example.com", Seats: 1,
	})
	assert.ErrorIs(t, err, service.ErrOfferingClosed)
}

func TestCompleteOffering_SettlesBookings(t *testing.T) {
	cleanTables()
	svcs := newServices()
	offering := createTestOffering(t, svcs, 4)
	ctx := t.Context()

	b, err := svcs.bookings.CreateBooking(ctx, service.CreateBookingCommand{
		OfferingID: offering.ID, PassengerEmail: "a@example.com", Seats: 1,
		PaymentMethod: models.MethodCash,
	})
	require.NoError(t, err)

	got, err := svcs.offerings.CompleteOffering(ctx, offering.ID, "driver@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.OfferingCompleted, got.Status)

	var fresh models.Booking
	require.NoError(t, testDB.First(&fresh, b.ID).Error)
	assert.Equal(t, models.BookingCashPaymentPending, fresh.Status)
}

func TestSearch_MatchesRouteWaypoints(t *testing.T) {
	cleanTables()
	svcs := newServices()
	createTestOffering(t, svcs, 4)

	// Vijayawada is a corridor stop between Chennai and Hyderabad.
	results, err := svcs.offerings.Search(t.Context(), "vijayawada", "", "")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = svcs.offerings.Search(t.Context(), "goa", "", "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

// Only OPEN offerings past their travel date count as expired; closed ones
// and future ones do not.
func TestCountExpired_OnlyPastOpenOfferings(t *testing.T) {
	cleanTables()
	svcs := newServices()

	createTestOffering(t, svcs, 4)

	stale, err := svcs.offerings.CreatePost(t.Context(), service.CreateOfferingCommand{
		DriverEmail:  "driver@example.com",
		FromLocation: "Chennai",
		ToLocation:   "Hyderabad",
		TravelDate:   "2020-01-01",
		Capacity:     4,
	})
	require.NoError(t, err)

	count, err := svcs.offerings.CountExpired(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = svcs.offerings.CancelOffering(t.Context(), stale.ID, "driver@example.com", "stale")
	require.NoError(t, err)

	count, err = svcs.offerings.CountExpired(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
