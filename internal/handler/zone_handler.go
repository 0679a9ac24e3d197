package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/playzone/reservation-service/internal/dto"
	"github.com/playzone/reservation-service/internal/models"
	"github.com/playzone/reservation-service/internal/service"
)

type ZoneHandler struct {
	svc service.ZoneService
}

func NewZoneHandler(svc service.ZoneService) *ZoneHandler {
	return &ZoneHandler{svc: svc}
}

func (h *ZoneHandler) RegisterRoutes(e *echo.Echo) {
	zones := e.Group("/api/v1/zones")
	zones.POST("", h.CreateZone)
	zones.GET("", h.ListZones)
	zones.GET("/:id", h.GetZone)
}

func (h *ZoneHandler) CreateZone(c echo.Context) error {
	var req dto.CreateZoneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	zone := &models.Zone{
		Name:            req.Name,
		OpenTime:        req.OpenTime,
		CloseTime:       req.CloseTime,
		RatePerHour:     req.RatePerHour,
		MaxBookingHours: req.MaxBookingHours,
	}
	if zone.MaxBookingHours == 0 {
		zone.MaxBookingHours = 4
	}

	if err := h.svc.CreateZone(c.Request().Context(), zone); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, zone)
}

func (h *ZoneHandler) GetZone(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	zone, err := h.svc.GetZone(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, zone)
}

func (h *ZoneHandler) ListZones(c echo.Context) error {
	zones, err := h.svc.ListZones(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, zones)
}
