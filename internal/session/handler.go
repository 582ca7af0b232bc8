package session

import (
	"context"
	"strings"

	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/identity"
	"maatram_portal_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Subscriber streams session-state changes for a uid.
type Subscriber interface {
	Subscribe(ctx context.Context, uid string, initial identity.SessionState) <-chan identity.SessionState
}

// Handler exposes routing decisions over HTTP.
type Handler struct {
	router   *Router
	hub      Subscriber
	verifier middleware.SessionVerifier
	logger   *zap.Logger
}

// NewHandler creates a session handler.
func NewHandler(router *Router, hub Subscriber, verifier middleware.SessionVerifier, logger *zap.Logger) *Handler {
	return &Handler{router: router, hub: hub, verifier: verifier, logger: logger}
}

type routeRequest struct {
	Page string `json:"page" binding:"required,oneof=landing student organizer"`
}

// RegisterRoutes mounts /session. optionalAuthMW must attach the identity when
// a valid token is present and let anonymous callers through.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, optionalAuthMW gin.HandlerFunc) {
	group := router.Group("/session")
	{
		group.POST("/route", optionalAuthMW, h.route)
		group.GET("/stream", h.stream)
	}
}

func (h *Handler) route(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithBindError(c, err)
		return
	}
	page, _ := ParsePage(req.Page)

	state := identity.Absent
	if id := middleware.GetIdentityFromContext(c); id != nil {
		state = identity.Present(*id)
	}
	common.RespondOK(c, "Session routed", h.router.Route(c.Request.Context(), page, state))
}

// stream sends a decision now and after every session change as server-sent
// events. EventSource cannot set headers, so the token may come as ?token=.
func (h *Handler) stream(c *gin.Context) {
	page, err := ParsePage(c.Query("page"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	ctx := c.Request.Context()
	var id *identity.Identity
	if token := h.token(c); token != "" {
		if verified, err := h.verifier.VerifySession(ctx, token); err == nil {
			id = verified
		} else {
			h.logger.Debug("Ignoring invalid stream token", zap.Error(err))
		}
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	emit := func(d Decision) {
		c.SSEvent("decision", d)
		c.Writer.Flush()
	}

	if id == nil {
		emit(h.router.Route(ctx, page, identity.Absent))
		return
	}

	states := h.hub.Subscribe(ctx, id.UID, identity.Present(*id))
	if err := h.router.Run(ctx, page, states, emit); err != nil && ctx.Err() == nil {
		h.logger.Warn("Session stream ended", zap.String("uid", id.UID), zap.Error(err))
	}
}

func (h *Handler) token(c *gin.Context) string {
	if t := common.GetTokenFromContext(c); t != "" {
		return t
	}
	return strings.TrimSpace(c.Query("token"))
}
