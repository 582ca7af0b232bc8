package broadcast

import (
	"errors"

	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/event"
	"maatram_portal_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves organizer broadcasts.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a broadcast handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type sendRequest struct {
	Message string `json:"message" binding:"max=2000"`
}

// RegisterRoutes mounts /events/:id/messages for organizers and superadmins.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, organizerMW gin.HandlerFunc) {
	router.POST("/events/:id/messages", authMW, organizerMW, h.send)
	router.GET("/events/:id/messages", authMW, organizerMW, h.history)
}

func (h *Handler) send(c *gin.Context) {
	sender := middleware.GetProfileFromContext(c)
	if sender == nil {
		common.RespondWithError(c, common.ErrForbidden.WithMessage("User profile missing"))
		return
	}
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithBindError(c, err)
		return
	}

	result, err := h.service.Send(c.Request.Context(), sender, c.Param("id"), req.Message)
	switch {
	case err == nil:
		common.RespondOKWithNotice(c, "Broadcast complete", NoticeSent, result)
	case errors.Is(err, ErrEmptyMessage):
		common.RespondWithError(c, common.ErrBadRequest.WithMessage(NoticeEmptyMessage))
	case errors.Is(err, ErrNoParticipants):
		common.RespondWithError(c, common.ErrUnprocessableEntity.WithMessage(NoticeNoParticipants))
	case errors.Is(err, ErrNotEventOrganizer):
		common.RespondWithError(c, common.ErrForbidden.WithMessage(NoticeSendFailed))
	case errors.Is(err, event.ErrEventNotFound):
		common.RespondWithError(c, common.ErrNotFound.WithDetails("Event not found"))
	default:
		h.logger.Error("Broadcast failed", zap.String("eventId", c.Param("id")), zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithMessage(NoticeSendFailed).WithDetails(result))
	}
}

func (h *Handler) history(c *gin.Context) {
	messages, err := h.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Loading broadcast history failed", zap.String("eventId", c.Param("id")), zap.Error(err))
		common.RespondOKWithNotice(c, "Messages retrieved", "Unable to load messages (permission).", []Message{})
		return
	}
	common.RespondOK(c, "Messages retrieved", messages)
}
