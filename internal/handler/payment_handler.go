package handler

import (
	"errors"
	"net/http"

	"github.com/Pranav-6954/Carpooling/internal/dto"
	"github.com/Pranav-6954/Carpooling/internal/service"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/payments")
	g.POST("/intent", h.CreateIntent)
	g.POST("/confirm", h.Confirm)
	g.POST("/cash", h.LogCash)
	g.GET("/me", h.ListMine)
	g.GET("/driver", h.ListForDriver)
	g.GET("/booking/:id", h.GetByBooking)
}

// GetByBooking returns the latest payment recorded against a booking.
func (h *PaymentHandler) GetByBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	payment, err := h.svc.FindByBooking(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	email, err := actorEmail(c)
	if err != nil {
		return err
	}

	var req dto.CreateIntentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.BookingID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "booking_id is required")
	}

	payment, clientSecret, err := h.svc.CreateIntent(c.Request().Context(), req.BookingID, email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidAmount):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			// Gateway failures are retryable from the client's side.
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.PaymentIntentResponse{
		Payment:      dto.ToPaymentResponse(payment),
		ClientSecret: clientSecret,
	})
}

func (h *PaymentHandler) Confirm(c echo.Context) error {
	var req dto.ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ExternalRef == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "external_ref is required")
	}

	payment, err := h.svc.Confirm(c.Request().Context(), req.ExternalRef, req.MethodRef)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

func (h *PaymentHandler) LogCash(c echo.Context) error {
	email, err := actorEmail(c)
	if err != nil {
		return err
	}

	var req dto.CashPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.BookingID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "booking_id is required")
	}

	payment, err := h.svc.LogCash(c.Request().Context(), req.BookingID, email, req.Amount)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

func (h *PaymentHandler) ListMine(c echo.Context) error {
	email, err := actorEmail(c)
	if err != nil {
		return err
	}

	payments, err := h.svc.ListByPayer(c.Request().Context(), email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		resp[i] = dto.ToPaymentResponse(&payments[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) ListForDriver(c echo.Context) error {
	email, err := actorEmail(c)
	if err != nil {
		return err
	}

	payments, err := h.svc.ListByDriver(c.Request().Context(), email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		resp[i] = dto.ToPaymentResponse(&payments[i])
	}
	return c.JSON(http.StatusOK, resp)
}
