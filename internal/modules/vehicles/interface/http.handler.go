package transport

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"rentalWs/internal/modules/vehicles/application"
	"rentalWs/internal/modules/vehicles/domain"
	"rentalWs/internal/shared/httputil"
)

type Handler struct {
	service *application.Service
	errors  *httputil.ErrorMapper
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{
		service: service,
		errors: httputil.NewErrorMapper().
			WithMapping(domain.ErrNotFound, http.StatusNotFound, "vehicle not found").
			WithMapping(domain.ErrInvalidVehicle, http.StatusBadRequest, "invalid vehicle"),
	}
}

// Register mounts the fleet routes. Listing and lookup need authentication;
// mutations are employee only.
func (h *Handler) Register(e *echo.Echo, authMW, employeeMW echo.MiddlewareFunc) {
	vehicles := e.Group("/vehicles", authMW)
	vehicles.GET("", h.find)
	vehicles.GET("/:id", h.get)
	vehicles.POST("", h.create, employeeMW)
	vehicles.PUT("/:id", h.update, employeeMW)
	vehicles.PUT("/:id/status", h.changeStatus, employeeMW)
	vehicles.DELETE("/:id", h.delete, employeeMW)
}

type vehicleRequest struct {
	Name        string  `json:"name"`
	Model       string  `json:"model"`
	Type        string  `json:"vehicle_type"`
	PricePerDay float64 `json:"rental_price_per_day"`
	Status      string  `json:"availability_status"`
	Location    string  `json:"location"`
}

type statusRequest struct {
	Status string `json:"availability_status"`
}

type vehicleResponse struct {
	ID          string  `json:"vehicle_id"`
	Name        string  `json:"name"`
	Model       string  `json:"model"`
	Type        string  `json:"vehicle_type"`
	PricePerDay float64 `json:"rental_price_per_day"`
	Status      string  `json:"availability_status"`
	Location    string  `json:"location"`
}

func toResponse(v *domain.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:          v.ID,
		Name:        v.Name,
		Model:       v.Model,
		Type:        string(v.Type),
		PricePerDay: v.PricePerDay,
		Status:      string(v.Status),
		Location:    v.Location,
	}
}

func (h *Handler) create(c echo.Context) error {
	var req vehicleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	vehicle, err := h.service.Create(c.Request().Context(), req.Name, req.Model, domain.Type(req.Type), req.PricePerDay, domain.Status(req.Status), req.Location)
	if err != nil {
		return h.errors.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, toResponse(vehicle))
}

func (h *Handler) get(c echo.Context) error {
	vehicle, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.errors.HTTPError(err)
	}
	return c.JSON(http.StatusOK, toResponse(vehicle))
}

func (h *Handler) find(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	vehicles, err := h.service.Find(c.Request().Context(), filter)
	if err != nil {
		return h.errors.HTTPError(err)
	}
	out := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, toResponse(v))
	}
	return c.JSON(http.StatusOK, out)
}

func parseFilter(c echo.Context) (domain.Filter, error) {
	filter := domain.Filter{
		Type:     domain.Type(strings.TrimSpace(c.QueryParam("vehicle_type"))),
		Status:   domain.Status(strings.TrimSpace(c.QueryParam("availability_status"))),
		Location: strings.TrimSpace(c.QueryParam("location")),
	}
	for param, target := range map[string]**float64{
		"min_price": &filter.MinPrice,
		"max_price": &filter.MaxPrice,
	} {
		raw := strings.TrimSpace(c.QueryParam(param))
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Filter{}, echo.NewHTTPError(http.StatusBadRequest, "invalid "+param)
		}
		*target = &value
	}
	return filter, nil
}

func (h *Handler) update(c echo.Context) error {
	var req vehicleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	vehicle, err := h.service.Update(c.Request().Context(), c.Param("id"), req.Name, req.Model, domain.Type(req.Type), req.PricePerDay, domain.Status(req.Status), req.Location)
	if err != nil {
		return h.errors.HTTPError(err)
	}
	return c.JSON(http.StatusOK, toResponse(vehicle))
}

func (h *Handler) changeStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.service.ChangeStatus(c.Request().Context(), c.Param("id"), domain.Status(req.Status)); err != nil {
		return h.errors.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.errors.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
