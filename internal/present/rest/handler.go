package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/yamoridev/ideaboard"
	"github.com/yamoridev/ideaboard/internal/domain"
	"github.com/yamoridev/ideaboard/internal/present/rest/presenter"
	"github.com/yamoridev/ideaboard/internal/service"
	"github.com/yamoridev/ideaboard/internal/usecase"
)

// EventSource streams change events until the context is done.
type EventSource interface {
	Realtime(ctx context.Context, output chan<- ideaboard.Event)
}

type Handler struct {
	idea   *usecase.IdeaUsecase
	auth   *service.AuthService
	signal EventSource
}

func NewHandler(
	idea *usecase.IdeaUsecase,
	auth *service.AuthService,
	signal EventSource,
) *Handler {
	return &Handler{
		idea:   idea,
		auth:   auth,
		signal: signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/register", h.handleRegister)
	e.GET("/api/v1/ideas", h.handleListIdeas)
	e.GET("/api/v1/ideas/:id", h.handleGetIdea)
	e.POST("/api/v1/ideas", h.handleCreateIdea)
	e.PATCH("/api/v1/ideas/:id", h.handleUpdateIdea)
	e.PUT("/api/v1/ideas/:id/status", h.handleUpdateStatus)
	e.DELETE("/api/v1/ideas/:id", h.handleDeleteIdea)
	e.GET("/realtime", h.handleRealtime)
}

// requester returns the authenticated identity, or false when the request
// carries no valid token.
func requester(c echo.Context) (ideaboard.Identity, bool) {
	ctx := c.Request().Context()
	id, ok := ctx.Value(domain.RequesterIDCtxKey).(string)
	if !ok || id == "" {
		return ideaboard.Identity{}, false
	}
	name, _ := ctx.Value(domain.RequesterNameCtxKey).(string)
	return ideaboard.Identity{ID: id, DisplayName: name}, true
}

func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ideaboard.ErrValidation):
		return presenter.BadRequest(c, err)
	case errors.Is(err, ideaboard.ErrNotFound):
		return presenter.NotFound(c, "idea not found")
	case errors.Is(err, ideaboard.ErrUnauthorized):
		return presenter.Forbidden(c, "operation rejected")
	default:
		return presenter.InternalError(c, err)
	}
}

func (h *Handler) handleRegister(c echo.Context) error {
	ctx := c.Request().Context()

	var req ideaboard.RegisterRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	if req.ID == "" || req.DisplayName == "" {
		return presenter.BadRequestMessage(c, "id and displayName are required")
	}

	token, err := h.auth.IssueToken(ctx, ideaboard.Identity{
		ID:          req.ID,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, ideaboard.RegisterResponse{Token: token})
}

func (h *Handler) handleListIdeas(c echo.Context) error {
	ctx := c.Request().Context()

	ideas, err := h.idea.List(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, ideas)
}

func (h *Handler) handleGetIdea(c echo.Context) error {
	ctx := c.Request().Context()

	idea, err := h.idea.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, idea)
}

func (h *Handler) handleCreateIdea(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthenticated(c, "authentication required")
	}

	var input ideaboard.CreateIdeaInput
	err := c.Bind(&input)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.idea.Create(ctx, identity, input)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, created)
}

func (h *Handler) handleUpdateIdea(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthenticated(c, "authentication required")
	}

	var input ideaboard.UpdateIdeaInput
	err := c.Bind(&input)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	updated, err := h.idea.UpdateFields(ctx, identity, c.Param("id"), input)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, updated)
}

type statusRequest struct {
	Status ideaboard.IdeaStatus `json:"status"`
}

func (h *Handler) handleUpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthenticated(c, "authentication required")
	}

	var req statusRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	updated, err := h.idea.UpdateStatus(ctx, identity, c.Param("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, updated)
}

func (h *Handler) handleDeleteIdea(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthenticated(c, "authentication required")
	}

	err := h.idea.Delete(ctx, identity, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type socketRequest struct {
	Type string `json:"type"`
}

// handleRealtime streams idea change events over a websocket. The client
// sends periodic {"type":"h"} heartbeats; every other inbound message is
// ignored.
func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	output := make(chan ideaboard.Event)

	go h.signal.Realtime(ctx, output)

	quit := make(chan struct{})

	go func() {
		for {
			var req socketRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.DebugContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				close(quit)
				break
			}

			switch req.Type {
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
