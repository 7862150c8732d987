package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Pranav-6954/Carpooling/internal/dto"
	"github.com/Pranav-6954/Carpooling/internal/service"
	"github.com/labstack/echo/v4"
)

// HeaderUserEmail carries the caller's identity. Authentication itself lives
// upstream; handlers only thread the identity through.
const HeaderUserEmail = "X-User-Email"

func actorEmail(c echo.Context) (string, error) {
	email := c.Request().Header.Get(HeaderUserEmail)
	if email == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "X-User-Email header is required")
	}
	return email, nil
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/bookings")
	g.POST("", h.CreateBooking)
	g.POST("/estimate", h.Estimate)
	g.GET("/me", h.ListMine)
	g.GET("/driver", h.ListForDriver)
	g.GET("/:id", h.GetBooking)
	g.PUT("/:id/status", h.UpdateStatus)
	g.PUT("/:id/cancel", h.CancelBooking)

	e.POST("/api/v1/admin/bookings/fix-stuck", h.FixStuck)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	email, err := actorEmail(c)
	if err != nil {
		return err
	}

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.OfferingID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "offering_id is required")
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), service.CreateBookingCommand{
		OfferingID:      req.OfferingID,
		PassengerEmail:  email,
		Seats:           req.Seats,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		PriceOverride:   req.OfferedPrice,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOfferingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrOfferingClosed):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInsufficientCapacity):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidSeats):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	email, err := actorEmail(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateBookingStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}

	// Status decisions belong to the driver; passengers cancel through the
	// cancel route.
	booking, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	}
	if booking.Offering == nil || booking.Offering.DriverEmail != email {
		return echo.NewHTTPError(http.StatusForbidden, "only the driver may update booking status")
	}

	updated, err := h.svc.Transition(c.Request().Context(), id, req.Status, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrInsufficientCapacity):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(updated))
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	email, err := actorEmail(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.CancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	booking, err := h.svc.Cancel(c.Request().Context(), id, email, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrUnauthorizedActor):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrBookingFinalized):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	booking, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListMine(c echo.Context) error {
	email, err := actorEmail(c)
	if err != nil {
		return err
	}

	bookings, err := h.svc.ListByPassenger(c.Request().Context(), email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = dto.ToBookingResponse(&b)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) ListForDriver(c echo.Context) error {
	email, err := actorEmail(c)
	if err != nil {
		return err
	}

	bookings, err := h.svc.ListByDriver(c.Request().Context(), email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = dto.ToBookingResponse(&b)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) Estimate(c echo.Context) error {
	var req dto.EstimateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.FromLocation == "" || req.ToLocation == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "from_location and to_location are required")
	}
	if req.Seats <= 0 {
		req.Seats = 1
	}

	quote := h.svc.EstimatePrice(c.Request().Context(), req.FromLocation, req.ToLocation, req.Seats)
	return c.JSON(http.StatusOK, quote)
}

func (h *BookingHandler) FixStuck(c echo.Context) error {
	fixed, err := h.svc.FixStuckBookings(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.FixStuckResponse{Fixed: fixed})
}
