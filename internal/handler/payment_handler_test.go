package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Pranav-6954/Carpooling/internal/dto"
	"github.com/Pranav-6954/Carpooling/internal/models"
	"github.com/Pranav-6954/Carpooling/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// --- Mock PaymentService ---

type mockPaymentService struct {
	createIntentFn func(ctx context.Context, bookingID uint, payer string) (*models.Payment, string, error)
	confirmFn      func(ctx context.Context, ref, methodRef string) (*models.Payment, error)
	logCashFn      func(ctx context.Context, bookingID uint, payer string, amount float64) (*models.Payment, error)
	byBookingFn    func(ctx context.Context, bookingID uint) (*models.Payment, error)
}

func (m *mockPaymentService) CreateIntent(ctx context.Context, bookingID uint, payer string) (*models.Payment, string, error) {
	return m.createIntentFn(ctx, bookingID, payer)
}
func (m *mockPaymentService) LogIntent(ctx context.Context, bookingID uint, payer string, amount float64, ref string) (*models.Payment, error) {
	return nil, nil
}
func (m *mockPaymentService) LogCash(ctx context.Context, bookingID uint, payer string, amount float64) (*models.Payment, error) {
	return m.logCashFn(ctx, bookingID, payer, amount)
}
func (m *mockPaymentService) Confirm(ctx context.Context, ref, methodRef string) (*models.Payment, error) {
	return m.confirmFn(ctx, ref, methodRef)
}
func (m *mockPaymentService) FindByBooking(ctx context.Context, bookingID uint) (*models.Payment, error) {
	return m.byBookingFn(ctx, bookingID)
}
func (m *mockPaymentService) ListByPayer(ctx context.Context, email string) ([]models.Payment, error) {
	return nil, nil
}
func (m *mockPaymentService) ListByDriver(ctx context.Context, email string) ([]models.Payment, error) {
	return nil, nil
}

// --- Tests ---

func TestCreateIntent_Handler_Success(t *testing.T) {
	svc := &mockPaymentService{
		createIntentFn: func(ctx context.Context, bookingID uint, payer string) (*models.Payment, string, error) {
			return &models.Payment{
				ID:          1,
				BookingID:   bookingID,
				PayerEmail:  payer,
				Amount:      750,
				ExternalRef: "pi_sim_abc",
				Status:      models.PaymentPending,
			}, "pi_sim_abc_secret", nil
		},
	}

	body := `{"booking_id":7}`
	c, rec := newBookingContext(http.MethodPost, "/api/v1/payments/intent", body, "rider@example.com")

	h := NewPaymentHandler(svc)
	assert.NoError(t, h.CreateIntent(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.PaymentIntentResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pi_sim_abc_secret", resp.ClientSecret)
	assert.Equal(t, "online", resp.Payment.Method)
	assert.Equal(t, models.PaymentPending, resp.Payment.Status)
}

func TestCreateIntent_Handler_BookingNotFound(t *testing.T) {
	svc := &mockPaymentService{
		createIntentFn: func(ctx context.Context, bookingID uint, payer string) (*models.Payment, string, error) {
			return nil, "", service.ErrBookingNotFound
		},
	}

	c, _ := newBookingContext(http.MethodPost, "/api/v1/payments/intent", `{"booking_id":999}`, "rider@example.com")

	h := NewPaymentHandler(svc)
	err := h.CreateIntent(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestConfirm_Handler_Success(t *testing.T) {
	svc := &mockPaymentService{
		confirmFn: func(ctx context.Context, ref, methodRef string) (*models.Payment, error) {
			return &models.Payment{
				ID:          1,
				ExternalRef: ref,
				MethodRef:   methodRef,
				Status:      models.PaymentConfirmed,
			}, nil
		},
	}

	body := `{"external_ref":"pi_sim_abc","method_ref":"card_visa"}`
	c, rec := newBookingContext(http.MethodPost, "/api/v1/payments/confirm", body, "")

	h := NewPaymentHandler(svc)
	assert.NoError(t, h.Confirm(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.PaymentResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.PaymentConfirmed, resp.Status)
}

func TestConfirm_Handler_MissingRef(t *testing.T) {
	c, _ := newBookingContext(http.MethodPost, "/api/v1/payments/confirm", `{}`, "")

	h := NewPaymentHandler(nil)
	err := h.Confirm(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestConfirm_Handler_NotFound(t *testing.T) {
	svc := &mockPaymentService{
		confirmFn: func(ctx context.Context, ref, methodRef string) (*models.Payment, error) {
			return nil, service.ErrPaymentNotFound
		},
	}

	c, _ := newBookingContext(http.MethodPost, "/api/v1/payments/confirm", `{"external_ref":"pi_missing"}`, "")

	h := NewPaymentHandler(svc)
	err := h.Confirm(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestLogCash_Handler_TagsRefWithCashPrefix(t *testing.T) {
	svc := &mockPaymentService{
		logCashFn: func(ctx context.Context, bookingID uint, payer string, amount float64) (*models.Payment, error) {
			return &models.Payment{
				ID:          1,
				BookingID:   bookingID,
				PayerEmail:  payer,
				Amount:      amount,
				ExternalRef: "CASH_1726000000000",
				Status:      models.PaymentConfirmed,
			}, nil
		},
	}

	body := `{"booking_id":7,"amount":300}`
	c, rec := newBookingContext(http.MethodPost, "/api/v1/payments/cash", body, "rider@example.com")

	h := NewPaymentHandler(svc)
	assert.NoError(t, h.LogCash(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.PaymentResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cash", resp.Method)
	assert.Equal(t, models.PaymentConfirmed, resp.Status)
}

func TestGetByBooking_Handler_Success(t *testing.T) {
	svc := &mockPaymentService{
		byBookingFn: func(ctx context.Context, bookingID uint) (*models.Payment, error) {
			return &models.Payment{
				ID:          1,
				BookingID:   bookingID,
				Amount:      750,
				ExternalRef: "pi_sim_abc",
				Status:      models.PaymentConfirmed,
			}, nil
		},
	}

	c, rec := newBookingContext(http.MethodGet, "/api/v1/payments/booking/7", "", "rider@example.com")
	c.SetParamNames("id")
	c.SetParamValues("7")

	h := NewPaymentHandler(svc)
	assert.NoError(t, h.GetByBooking(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.PaymentResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(7), resp.BookingID)
	assert.Equal(t, models.PaymentConfirmed, resp.Status)
}

func TestGetByBooking_Handler_NotFound(t *testing.T) {
	svc := &mockPaymentService{
		byBookingFn: func(ctx context.Context, bookingID uint) (*models.Payment, error) {
			return nil, service.ErrPaymentNotFound
		},
	}

	c, _ := newBookingContext(http.MethodGet, "/api/v1/payments/booking/999", "", "rider@example.com")
	c.SetParamNames("id")
	c.SetParamValues("999")

	h := NewPaymentHandler(svc)
	err := h.GetByBooking(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}
