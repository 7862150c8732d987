package handler

import (
	"errors"
	"net/http"

	"github.com/Pranav-6954/Carpooling/internal/dto"
	"github.com/Pranav-6954/Carpooling/internal/models"
	"github.com/Pranav-6954/Carpooling/internal/service"
	"github.com/labstack/echo/v4"
)

func toOfferingList(offerings []models.Offering) []dto.OfferingResponse {
	resp := make([]dto.OfferingResponse, len(offerings))
	for i := range offerings {
		resp[i] = dto.ToOfferingResponse(&offerings[i])
	}
	return resp
}

type OfferingHandler struct {
	svc service.OfferingService
}

func NewOfferingHandler(svc service.OfferingService) *OfferingHandler {
	return &OfferingHandler{svc: svc}
}

func (h *OfferingHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/offerings")
	g.POST("", h.CreateOffering)
	g.GET("", h.ListOfferings)
	g.GET("/search", h.Search)
	g.GET("/:id", h.GetOffering)
	g.PUT("/:id", h.UpdateOffering)
	g.PUT("/:id/cancel", h.CancelOffering)
	g.PUT("/:id/complete", h.CompleteOffering)
	e.GET("/api/v1/admin/offerings/expired-count", h.ExpiredCount)
}

// ExpiredCount reports how many OPEN offerings have a travel date in the
// past, for the operator cleanup dashboard.
func (h *OfferingHandler) ExpiredCount(c echo.Context) error {
	count, err := h.svc.CountExpired(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.ExpiredCountResponse{Expired: count})
}

func (h *OfferingHandler) CreateOffering(c echo.Context) error {
	email, err := actorEmail(c)
	if err != nil {
		return err
	}

	var req dto.CreateOfferingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.FromLocation == "" || req.ToLocation == "" || req.TravelDate == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "from_location, to_location and travel_date are required")
	}

	offering, err := h.svc.CreatePost(c.Request().Context(), service.CreateOfferingCommand{
		DriverEmail:   email,
		DriverName:    req.DriverName,
		FromLocation:  req.FromLocation,
		ToLocation:    req.ToLocation,
		TravelDate:    req.TravelDate,
		PricePerSeat:  req.PricePerSeat,
		Capacity:      req.Capacity,
		VehicleType:   req.VehicleType,
		ImageURL:      req.ImageURL,
		SelfSeats:     req.SelfSeats,
		PriceOverride: req.PriceOverride,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCapacity):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPriceAboveCeiling):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToOfferingResponse(offering))
}

func (h *OfferingHandler) UpdateOffering(c echo.Context) error {
	email, err := actorEmail(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateOfferingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	offering, err := h.svc.Update(c.Request().Context(), id, email, service.UpdateOfferingCommand{
		TravelDate:    req.TravelDate,
		PricePerSeat:  req.PricePerSeat,
		VehicleType:   req.VehicleType,
		ImageURL:      req.ImageURL,
		PriceOverride: req.PriceOverride,
	})
	if err != nil {
		return offeringError(err)
	}

	return c.JSON(http.StatusOK, dto.ToOfferingResponse(offering))
}

func (h *OfferingHandler) CancelOffering(c echo.Context) error {
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

	offering, err := h.svc.CancelOffering(c.Request().Context(), id, email, req.Reason)
	if err != nil {
		return offeringError(err)
	}

	return c.JSON(http.StatusOK, dto.ToOfferingResponse(offering))
}

func (h *OfferingHandler) CompleteOffering(c echo.Context) error {
	email, err := actorEmail(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	offering, err := h.svc.CompleteOffering(c.Request().Context(), id, email)
	if err != nil {
		return offeringError(err)
	}

	return c.JSON(http.StatusOK, dto.ToOfferingResponse(offering))
}

func (h *OfferingHandler) GetOffering(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	offering, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "offering not found")
	}

	return c.JSON(http.StatusOK, dto.ToOfferingResponse(offering))
}

// ListOfferings returns OPEN offerings with seats left, or the caller's own
// posts when ?mine=true.
func (h *OfferingHandler) ListOfferings(c echo.Context) error {
	ctx := c.Request().Context()

	if c.QueryParam("mine") == "true" {
		email, err := actorEmail(c)
		if err != nil {
			return err
		}
		offerings, err := h.svc.ListByDriver(ctx, email)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, toOfferingList(offerings))
	}

	offerings, err := h.svc.ListOpen(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toOfferingList(offerings))
}

func (h *OfferingHandler) Search(c echo.Context) error {
	offerings, err := h.svc.Search(c.Request().Context(),
		c.QueryParam("from"), c.QueryParam("to"), c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toOfferingList(offerings))
}

func offeringError(err error) error {
	switch {
	case errors.Is(err, service.ErrOfferingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotOfferingOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrOfferingClosed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPriceAboveCeiling):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
