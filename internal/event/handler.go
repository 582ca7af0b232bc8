package event

import (
	"errors"
	"strings"

	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves event endpoints.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts /events and /organizer/events. organizerMW must admit
// organizers and superadmins.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, organizerMW gin.HandlerFunc) {
	events := router.Group("/events")
	events.Use(authMW)
	{
		events.GET("", h.listEvents)
		events.GET("/search", h.searchEvents)
		events.GET("/:id", h.getEvent)
		events.POST("", organizerMW, h.createEvent)
	}

	router.GET("/organizer/events", authMW, organizerMW, h.listMyEvents)
}

func (h *Handler) listEvents(c *gin.Context) {
	events, notice := h.service.ListEvents(c.Request.Context())
	common.RespondOKWithNotice(c, "Events retrieved", notice, events)
}

func (h *Handler) listMyEvents(c *gin.Context) {
	events, notice := h.service.ListEventsByOrganizer(c.Request.Context(), common.GetUIDFromContext(c))
	common.RespondOKWithNotice(c, "Events retrieved", notice, events)
}

func (h *Handler) getEvent(c *gin.Context) {
	e, err := h.service.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			common.RespondWithError(c, common.ErrNotFound.WithDetails("Event not found"))
			return
		}
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Event retrieved", e)
}

func (h *Handler) searchEvents(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("q is required"))
		return
	}
	events, err := h.service.SearchEvents(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, ErrSearchDisabled) {
			common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails("Event search is not enabled"))
			return
		}
		h.logger.Error("Event search failed", zap.String("q", q), zap.Error(err))
		common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails("Event search failed"))
		return
	}
	common.RespondOK(c, "Events retrieved", events)
}

type createEventResponse struct {
	ID string `json:"id"`
}

func (h *Handler) createEvent(c *gin.Context) {
	organizer := middleware.GetProfileFromContext(c)
	if organizer == nil {
		common.RespondWithError(c, common.ErrForbidden.WithMessage("User profile missing"))
		return
	}
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithBindError(c, err)
		return
	}
	id, err := h.service.CreateEvent(c.Request.Context(), organizer, req)
	if err != nil {
		notice, _ := common.NoticeOf(err)
		common.RespondWithError(c, common.ErrInternalServer.WithMessage(notice))
		return
	}
	common.RespondCreated(c, "Event created", createEventResponse{ID: id})
}
