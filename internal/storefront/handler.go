package storefront

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"bookstore/internal/bookstate"
	"bookstore/internal/httpx"
	"bookstore/internal/platform/crypto"
)

const clientBuffer = 16

// Handler exposes a books store over HTTP and websocket.
type Handler struct {
	store    *bookstate.Store
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewHandler(store *bookstate.Store, hub *Hub, allowedOrigins []string) *Handler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Handler{
		store: store,
		hub:   hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
	}
}

// Register mounts the routes on e. Refresh requires an ADMIN bearer token
// signed with secret.
func (h *Handler) Register(e *echo.Echo, secret string) {
	books := e.Group("/books", echo.WrapMiddleware(httpx.AccessLogMiddleware))
	books.GET("", h.List)
	books.POST("/refresh", h.Refresh,
		echo.WrapMiddleware(httpx.AuthMiddleware(secret)),
		echo.WrapMiddleware(httpx.RequireRole(crypto.RoleAdmin)),
	)
	e.GET("/ws/books", h.Stream)
}

// List handles GET /books with the current selector output.
func (h *Handler) List(c echo.Context) error {
	items := h.store.Books()
	httpx.JSONSuccess(c.Response(), c.Request(), items, map[string]any{"total": len(items)})
	return nil
}

// Refresh handles POST /books/refresh by dispatching BooksGet and waiting
// for it to resolve.
func (h *Handler) Refresh(c echo.Context) error {
	r := c.Request()
	if err := h.store.Dispatch(r.Context(), bookstate.BooksGet{}); err != nil {
		status, code := http.StatusBadGateway, "FETCH_FAILED"
		if errors.Is(err, context.DeadlineExceeded) {
			status, code = http.StatusGatewayTimeout, "FETCH_TIMEOUT"
		}
		slog.Warn("books refresh failed",
			slog.String("request_id", httpx.RequestIDFrom(r)),
			slog.String("user_id", httpx.UserIDFrom(r)),
			slog.Any("error", err),
		)
		httpx.JSONError(c.Response(), r, status, code, "unable to fetch books", nil)
		return nil
	}

	items := h.store.Books()
	httpx.JSONSuccess(c.Response(), r, items, map[string]any{"total": len(items)})
	return nil
}

// Stream handles GET /ws/books. The first frame is the current list, then
// one frame per state replacement.
func (h *Handler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Warn("ws upgrade failed", slog.Any("error", err))
		return nil
	}

	client := NewClient(conn, clientBuffer)
	if err := h.hub.Attach(client, func() ([]byte, error) {
		return encodeBooks(h.store.Books())
	}); err != nil {
		slog.Error("ws initial frame failed", slog.Any("error", err))
		_ = conn.Close()
		return nil
	}

	go client.WritePump()
	client.ReadPump(h.hub)
	return nil
}
