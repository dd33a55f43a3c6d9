package transport

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"rentalWs/internal/modules/rentals/application"
	"rentalWs/internal/modules/rentals/domain"
	vehicles "rentalWs/internal/modules/vehicles/domain"
	"rentalWs/internal/shared/auth"
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
			WithMapping(domain.ErrNotFound, http.StatusNotFound, "rental not found").
			WithMapping(domain.ErrInvalidRental, http.StatusBadRequest, "invalid rental").
			WithMapping(domain.ErrInvalidTransition, http.StatusConflict, "invalid rental status transition").
			WithMapping(domain.ErrVehicleUnavailable, http.StatusConflict, "vehicle not available").
			WithMapping(vehicles.ErrNotFound, http.StatusNotFound, "vehicle not found"),
	}
}

// Register mounts the rental routes. Customers file requests for themselves;
// review, listing and deletion are employee only.
func (h *Handler) Register(e *echo.Echo, authMW, employeeMW echo.MiddlewareFunc) {
	rentals := e.Group("/rentals", authMW)
	rentals.POST("", h.create)
	rentals.GET("", h.list, employeeMW)
	rentals.GET("/:id", h.get)
	rentals.PUT("/:id/status", h.updateStatus, employeeMW)
	rentals.DELETE("/:id", h.delete, employeeMW)

	e.GET("/vehicles/:id/rentals", h.vehicleHistory, authMW, employeeMW)
}

type createRequest struct {
	VehicleID string `json:"vehicle_id"`
	StartDate string `json:"rental_start_date"`
	EndDate   string `json:"rental_end_date"`
}

type statusRequest struct {
	Status string `json:"rental_status"`
}

type rentalResponse struct {
	ID         string    `json:"rental_id"`
	VehicleID  string    `json:"vehicle_id"`
	CustomerID string    `json:"customer_id"`
	StartDate  time.Time `json:"rental_start_date"`
	EndDate    time.Time `json:"rental_end_date"`
	TotalCost  float64   `json:"total_cost"`
	Status     string    `json:"rental_status"`
}

func toResponse(r *domain.Rental) rentalResponse {
	return rentalResponse{
		ID:         r.ID,
		VehicleID:  r.VehicleID,
		CustomerID: r.CustomerID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		TotalCost:  r.TotalCost,
		Status:     string(r.Status),
	}
}

func (h *Handler) create(c echo.Context) error {
	claims := auth.CurrentClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}

	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid rental_start_date")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid rental_end_date")
	}

	rental, err := h.service.Create(c.Request().Context(), claims.Subject, req.VehicleID, start, end)
	if err != nil {
		return h.errors.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, toResponse(rental))
}

// parseDate accepts RFC 3339 timestamps and bare calendar dates.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (h *Handler) get(c echo.Context) error {
	claims := auth.CurrentClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}
	rental, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.errors.HTTPError(err)
	}
	// Customers can only inspect their own rentals.
	if claims.Role != "EMPLOYEE" && rental.CustomerID != claims.Subject {
		return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
	}
	return c.JSON(http.StatusOK, toResponse(rental))
}

func (h *Handler) list(c echo.Context) error {
	rentals, err := h.service.List(c.Request().Context())
	if err != nil {
		return h.errors.HTTPError(err)
	}
	out := make([]rentalResponse, 0, len(rentals))
	for _, r := range rentals {
		out = append(out, toResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) updateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	rental, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), domain.Status(strings.ToUpper(strings.TrimSpace(req.Status))))
	if err != nil {
		return h.errors.HTTPError(err)
	}
	return c.JSON(http.StatusOK, toResponse(rental))
}

func (h *Handler) delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.errors.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) vehicleHistory(c echo.Context) error {
	rentals, err := h.service.HistoryForVehicle(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.errors.HTTPError(err)
	}
	out := make([]rentalResponse, 0, len(rentals))
	for _, r := range rentals {
		out = append(out, toResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}
