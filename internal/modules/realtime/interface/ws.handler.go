package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"rentalWs/internal/modules/realtime/domain"
	"rentalWs/internal/modules/realtime/infrastructure"
	"rentalWs/internal/shared/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades /ws requests, validates the JWT locally and registers the
// connection under the token's subject.
type Handler struct {
	registry    *infrastructure.Registry
	validator   auth.TokenValidator
	sendTimeout time.Duration
}

func NewHandler(registry *infrastructure.Registry, validator auth.TokenValidator, sendTimeout time.Duration) *Handler {
	return &Handler{registry: registry, validator: validator, sendTimeout: sendTimeout}
}

// Register mounts the websocket endpoint. The token rides either the path,
// the "token" query param or the Authorization header.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/ws", h.connect)
	e.GET("/ws/:token", h.connect)
}

func (h *Handler) connect(c echo.Context) error {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		token = auth.ExtractToken(c.Request())
	}

	claims, err := h.validator.Validate(token)
	if err != nil {
		slog.Warn("ws connect rejected", slog.String("ip", c.RealIP()), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("ws upgrade failed", slog.String("userId", claims.Subject), slog.Any("error", err))
		return err
	}

	client := infrastructure.NewClient(conn, claims.Subject, claims.Role, h.sendTimeout)
	h.registry.Register(client)
	slog.Info("ws connected", slog.String("userId", claims.Subject), slog.String("role", claims.Role))

	go client.Run(func(closed *infrastructure.Client) {
		h.registry.Unregister(closed)
		slog.Info("ws disconnected", slog.String("userId", closed.UserID()))
	})

	if data, err := json.Marshal(domain.ConnectedNotification(claims.Subject)); err == nil {
		if err := client.Send(data); err != nil {
			slog.Warn("ws connected greeting failed", slog.String("userId", claims.Subject), slog.Any("error", err))
		}
	}
	return nil
}
