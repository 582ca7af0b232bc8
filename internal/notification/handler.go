package notification

import (
	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for notification operations.
// profileMW must load the caller's profile (any role).
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, profileMW gin.HandlerFunc) {
	group := router.Group("/notifications")
	group.Use(authMW, profileMW)
	{
		group.GET("/summary", h.getSummary)
		group.GET("/inbox", h.getInbox)
	}
}

func (h *Handler) getSummary(c *gin.Context) {
	p := middleware.GetProfileFromContext(c)
	if p == nil {
		common.RespondWithError(c, common.ErrForbidden.WithMessage("User profile missing"))
		return
	}
	common.RespondOK(c, "Notification summary retrieved successfully.", h.service.Summary(c.Request.Context(), p))
}

func (h *Handler) getInbox(c *gin.Context) {
	uid := common.GetUIDFromContext(c)
	if uid == "" {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}
	common.RespondOK(c, "Notifications retrieved successfully.", h.service.Inbox(c.Request.Context(), uid))
}
