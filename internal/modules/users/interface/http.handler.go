package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rentalWs/internal/modules/users/application"
	"rentalWs/internal/modules/users/domain"
	"rentalWs/internal/shared/auth"
	"rentalWs/internal/shared/httputil"
)

type Handler struct {
	service *application.Service
	issuer  auth.TokenIssuer
	errors  *httputil.ErrorMapper
}

func NewHandler(service *application.Service, issuer auth.TokenIssuer) *Handler {
	return &Handler{
		service: service,
		issuer:  issuer,
		errors: httputil.NewErrorMapper().
			WithMapping(domain.ErrNotFound, http.StatusNotFound, "user not found").
			WithMapping(domain.ErrEmailTaken, http.StatusBadRequest, "email already registered").
			WithMapping(domain.ErrInvalidUser, http.StatusBadRequest, "invalid user").
			WithMapping(auth.ErrBadCredentials, http.StatusUnauthorized, "invalid credentials"),
	}
}

// Register mounts the auth and user-administration routes. Registration and
// login are public; account administration is employee only.
func (h *Handler) Register(e *echo.Echo, authMW, employeeMW echo.MiddlewareFunc) {
	e.POST("/auth/register", h.register)
	e.POST("/auth/token", h.login)

	users := e.Group("/users", authMW, employeeMW)
	users.GET("", h.list)
	users.GET("/:id", h.get)
	users.PUT("/:id", h.update)
	users.DELETE("/:id", h.delete)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID    string `json:"user_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

func (h *Handler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	role := domain.Role(req.Role)
	if req.Role == "" {
		role = domain.RoleCustomer
	}
	user, err := h.service.Register(c.Request().Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		return h.errors.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, toResponse(user))
}

func (h *Handler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	user, err := h.service.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.errors.HTTPError(err)
	}
	token, err := h.issuer.Issue(user.ID, string(user.Role))
	if err != nil {
		return h.errors.HTTPError(err)
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) list(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return h.errors.HTTPError(err)
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.errors.HTTPError(err)
	}
	return c.JSON(http.StatusOK, toResponse(user))
}

func (h *Handler) update(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	user, err := h.service.Update(c.Request().Context(), c.Param("id"), req.Name, req.Email, req.Password)
	if err != nil {
		return h.errors.HTTPError(err)
	}
	return c.JSON(http.StatusOK, toResponse(user))
}

func (h *Handler) delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.errors.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
