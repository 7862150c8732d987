//go:build integration

package integration

import (
	"testing"

	"github.com/Pranav-6954/Carpooling/internal/models"
	"github.com/Pranav-6954/Carpooling/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentIntent_ConfirmMovesBookingToPaid(t *testing.T) {
	cleanTables()
	svcs := newServices()
	offering := createTestOffering(t, svcs, 4)
	ctx := t.Context()

	b, err := svcs.bookings.CreateBooking(ctx, service.CreateBookingCommand{
		OfferingID: offering.ID, PassengerEmail: "rider@example.com", Seats: 1,
	})
	require.NoError(t, err)
	_, err = svcs.bookings.Transition(ctx, b.ID, models.BookingAccepted, "")
	require.NoError(t, err)

	payment, secret, err := svcs.payments.CreateIntent(ctx, b.ID, "rider@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.False(t, payment.IsCash())

	confirmed, err := svcs.payments.Confirm(ctx, payment.ExternalRef, "card_visa")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentConfirmed, confirmed.Status)

	fresh, err := svcs.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaid, fresh.Status)
	assert.Equal(t, models.PaymentPaid, fresh.PaymentStatus)
}

func TestConfirm_Idempotent(t *testing.T) {
	cleanTables()
	svcs := newServices()
	offering := createTestOffering(t, svcs, 4)
	ctx := t.Context()

	b, err := svcs.bookings.CreateBooking(ctx, service.CreateBookingCommand{
		OfferingID: offering.ID, PassengerEmail: "rider@example.com", Seats: 1,
	})
	require.NoError(t, err)
	_, err = svcs.bookings.Transition(ctx, b.ID, models.BookingAccepted, "")
	require.NoError(t, err)

	payment, _, err := svcs.payments.CreateIntent(ctx, b.ID, "rider@example.com")
	require.NoError(t, err)

	first, err := svcs.payments.Confirm(ctx, payment.ExternalRef, "card_visa")
	require.NoError(t, err)
	notified := notificationCount()

	second, err := svcs.payments.Confirm(ctx, payment.ExternalRef, "card_visa")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.PaymentConfirmed, second.Status)

	var count int64
	testDB.Model(&models.Payment{}).Where("booking_id = ?", b.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	// The duplicate confirm must not notify anyone a second time.
	assert.Equal(t, notified, notificationCount())
}

// Confirming while the booking waits in PAYMENT_PENDING completes the ride.
func TestConfirm_CompletesPaymentPendingBooking(t *testing.T) {
	cleanTables()
	svcs := newServices()
	offering := createTestOffering(t, svcs, 4)
	ctx := t.Context()

	b, err := svcs.bookings.CreateBooking(ctx, service.CreateBookingCommand{
		OfferingID: offering.ID, PassengerEmail: "rider@example.com", Seats: 1,
	})
	require.NoError(t, err)
	_, err = svcs.bookings.Transition(ctx, b.ID, models.BookingAccepted, "")
	require.NoError(t, err)

	payment, _, err := svcs.payments.CreateIntent(ctx, b.ID, "rider@example.com")
	require.NoError(t, err)

	// Ride ends before the passenger pays.
	got, err := svcs.bookings.Transition(ctx, b.ID, models.BookingCompleted, "")
	require.NoError(t, err)
	require.Equal(t, models.BookingPaymentPending, got.Status)

	_, err = svcs.payments.Confirm(ctx, payment.ExternalRef, "card_visa")
	require.NoError(t, err)

	fresh, err := svcs.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, fresh.Status)
	assert.Equal(t, models.PaymentPaid, fresh.PaymentStatus)
}

func TestConfirm_UnknownRefNotFound(t *testing.T) {
	cleanTables()
	svcs := newServices()

	_, err := svcs.payments.Confirm(t.Context(), "pi_never_existed", "")
	assert.ErrorIs(t, err, service.ErrPaymentNotFound)
}

func TestPaymentHistories(t *testing.T) {
	cleanTables()
	svcs := newServices()
	offering := createTestOffering(t, svcs, 4)
	ctx := t.Context()

	_, err := svcs.bookings.CreateBooking(ctx, service.CreateBookingCommand{
		OfferingID: offering.ID, PassengerEmail: "rider@example.com", Seats: 1,
		PaymentMethod: models.MethodCash,
	})
	require.NoError(t, err)

	mine, err := svcs.payments.ListByPayer(ctx, "rider@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, mine[0].IsCash())

	earned, err := svcs.payments.ListByDriver(ctx, "driver@example.com")
	require.NoError(t, err)
	assert.Len(t, earned, 1)
}
