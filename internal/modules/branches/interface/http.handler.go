package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rentalWs/internal/modules/branches/application"
	"rentalWs/internal/modules/branches/domain"
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
			WithMapping(domain.ErrNotFound, http.StatusNotFound, "branch not found").
			WithMapping(domain.ErrInvalidBranch, http.StatusBadRequest, "invalid branch"),
	}
}

// Register mounts the branch routes. Reads need authentication; mutations are
// employee only.
func (h *Handler) Register(e *echo.Echo, authMW, employeeMW echo.MiddlewareFunc) {
	branches := e.Group("/branches", authMW)
	branches.GET("", h.list)
	branches.GET("/:id", h.get)
	branches.POST("", h.create, employeeMW)
	branches.PUT("/:id", h.update, employeeMW)
	branches.DELETE("/:id", h.delete, employeeMW)
}

type branchRequest struct {
	Name          string `json:"name"`
	Location      string `json:"location"`
	ContactNumber string `json:"contact_number"`
}

type branchResponse struct {
	ID            string `json:"branch_id"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	ContactNumber string `json:"contact_number"`
}

func toResponse(b *domain.Branch) branchResponse {
	return branchResponse{ID: b.ID, Name: b.Name, Location: b.Location, ContactNumber: b.ContactNumber}
}

func (h *Handler) create(c echo.Context) error {
	var req branchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	branch, err := h.service.Create(c.Request().Context(), req.Name, req.Location, req.ContactNumber)
	if err != nil {
		return h.errors.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, toResponse(branch))
}

func (h *Handler) get(c echo.Context) error {
	branch, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.errors.HTTPError(err)
	}
	return c.JSON(http.StatusOK, toResponse(branch))
}

func (h *Handler) list(c echo.Context) error {
	branches, err := h.service.List(c.Request().Context())
	if err != nil {
		return h.errors.HTTPError(err)
	}
	out := make([]branchResponse, 0, len(branches))
	for _, b := range branches {
		out = append(out, toResponse(b))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) update(c echo.Context) error {
	var req branchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	branch, err := h.service.Update(c.Request().Context(), c.Param("id"), req.Name, req.Location, req.ContactNumber)
	if err != nil {
		return h.errors.HTTPError(err)
	}
	return c.JSON(http.StatusOK, toResponse(branch))
}

func (h *Handler) delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.errors.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
