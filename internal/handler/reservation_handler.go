package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/playzone/reservation-service/internal/dto"
	"github.com/playzone/reservation-service/internal/service"
)

type ReservationHandler struct {
	svc service.ReservationService
}

func NewReservationHandler(svc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

func (h *ReservationHandler) RegisterRoutes(e *echo.Echo) {
	zones := e.Group("/api/v1/zones")
	zones.POST("/:id/reservations", h.CreateReservation)
	zones.GET("/:id/reservations", h.ListReservations)
	zones.GET("/:id/availability", h.GetAvailability)

	res := e.Group("/api/v1/reservations")
	res.GET("/by-reference/:ref", h.GetReservationByReference)
	res.GET("/:id", h.GetReservation)
	res.POST("/:id/payment", h.ReportPaymentOutcome)
	res.DELETE("/:id", h.CancelReservation)
	res.POST("/:id/vendor-decision", h.VendorDecide)
	res.POST("/:id/complete", h.MarkCompleted)

	e.POST("/api/v1/admin/expiry-sweep", h.RunExpirySweep)
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	zoneID, err := pathID(c)
	if err != nil {
		return err
	}

	var req dto.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	in := service.CreateReservationInput{
		ZoneID:        zoneID,
		RequesterID:   req.RequesterID,
		Date:          req.Date,
		StartTime:     req.StartTime,
		DurationHours: req.DurationHours,
		Notes:         req.Notes,
	}
	if len(req.Items) > 0 {
		items := make([]service.PriceItem, len(req.Items))
		for i, it := range req.Items {
			items[i] = service.PriceItem{Label: it.Label, Hours: it.Hours, RatePerHour: it.RatePerHour}
		}
		in.Pricing = service.ItemizedPricing{Items: items}
	}

	res, err := h.svc.CreateReservation(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.ToReservationResponse(res))
}

func (h *ReservationHandler) GetReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res, err := h.svc.GetReservation(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToReservationResponse(res))
}

func (h *ReservationHandler) GetReservationByReference(c echo.Context) error {
	ref := c.Param("ref")
	if ref == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reference")
	}
	res, err := h.svc.GetReservationByReference(c.Request().Context(), ref)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToReservationResponse(res))
}

func (h *ReservationHandler) ListReservations(c echo.Context) error {
	zoneID, err := pathID(c)
	if err != nil {
		return err
	}
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}

	list, err := h.svc.ListReservations(c.Request().Context(), zoneID, date)
	if err != nil {
		return err
	}
	resp := make([]dto.ReservationResponse, len(list))
	for i := range list {
		resp[i] = dto.ToReservationResponse(&list[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) GetAvailability(c echo.Context) error {
	zoneID, err := pathID(c)
	if err != nil {
		return err
	}
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}

	avail, err := h.svc.GetAvailability(c.Request().Context(), zoneID, date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, avail)
}

func (h *ReservationHandler) ReportPaymentOutcome(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.PaymentOutcomeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := h.svc.ReportPaymentOutcome(c.Request().Context(), id, req.Outcome, req.ExternalRef, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToReservationResponse(res))
}

func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.CancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := h.svc.CancelReservation(c.Request().Context(), id, req.ActorID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToReservationResponse(res))
}

func (h *ReservationHandler) VendorDecide(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.VendorDecisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := h.svc.VendorDecide(c.Request().Context(), id, req.ActorID, req.Decision, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToReservationResponse(res))
}

func (h *ReservationHandler) MarkCompleted(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res, err := h.svc.MarkCompleted(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToReservationResponse(res))
}

func (h *ReservationHandler) RunExpirySweep(c echo.Context) error {
	result, err := h.svc.RunExpirySweep(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
