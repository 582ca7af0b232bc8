package registration

import (
	"errors"
	"net/http"

	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/event"
	"maatram_portal_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CacheResolver hands out the registrations cache of a page session. A
// missing or expired session id yields a fresh cache.
type CacheResolver interface {
	CacheFor(pageSessionID, uid string) *Cache
}

// Handler serves student registration and organizer participant endpoints.
type Handler struct {
	service Service
	events  EventReader
	caches  CacheResolver
	logger  *zap.Logger
}

// NewHandler creates a registration handler.
func NewHandler(service Service, events EventReader, caches CacheResolver, logger *zap.Logger) *Handler {
	return &Handler{service: service, events: events, caches: caches, logger: logger}
}

// RegisterRoutes mounts the student and participant routes. studentMW admits
// students and superadmins; organizerMW admits organizers and superadmins.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, studentMW, organizerMW gin.HandlerFunc) {
	student := router.Group("/student")
	student.Use(authMW, studentMW)
	{
		student.GET("/events", h.recentEvents)
		student.GET("/my-events", h.myEvents)
		student.GET("/registrations", h.myRegistrations)
	}

	router.POST("/events/:id/register", authMW, studentMW, h.register)
	router.GET("/events/:id/registrations", authMW, organizerMW, h.eventRegistrations)
	router.GET("/events/:id/participants", authMW, organizerMW, h.participants)
}

func (h *Handler) cache(c *gin.Context) *Cache {
	return h.caches.CacheFor(common.GetPageSessionID(c), common.GetUIDFromContext(c))
}

func (h *Handler) recentEvents(c *gin.Context) {
	events, notice := h.service.RecentEventsForStudent(c.Request.Context(), h.cache(c), common.GetUIDFromContext(c))
	common.RespondOKWithNotice(c, "Events retrieved", notice, events)
}

func (h *Handler) myEvents(c *gin.Context) {
	events, notice := h.service.MyEvents(c.Request.Context(), h.cache(c), common.GetUIDFromContext(c))
	common.RespondOKWithNotice(c, "Events retrieved", notice, events)
}

func (h *Handler) myRegistrations(c *gin.Context) {
	cache := h.cache(c)
	var notice string
	if err := h.service.LoadMyRegistrations(c.Request.Context(), cache, common.GetUIDFromContext(c)); err != nil {
		notice, _ = common.NoticeOf(err)
	}
	common.RespondOKWithNotice(c, "Registrations retrieved", notice, cache.Registrations())
}

func (h *Handler) register(c *gin.Context) {
	student := middleware.GetProfileFromContext(c)
	if student == nil {
		common.RespondWithError(c, common.ErrForbidden.WithMessage("User profile missing"))
		return
	}
	ev, err := h.events.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			common.RespondWithError(c, common.ErrNotFound.WithDetails("Event not found"))
			return
		}
		common.RespondWithError(c, err)
		return
	}

	reg, err := h.service.RegisterForEvent(c.Request.Context(), h.cache(c), ev, student)
	if err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			common.RespondWithError(c, common.ErrConflict.WithMessage(NoticeAlreadyRegistered))
			return
		}
		notice, _ := common.NoticeOf(err)
		common.RespondWithError(c, common.ErrInternalServer.WithMessage(notice))
		return
	}
	c.JSON(http.StatusCreated, common.SuccessResponse{Status: "success", Message: "Registration created", Notice: NoticeRegistered, Data: reg})
}

func (h *Handler) eventRegistrations(c *gin.Context) {
	regs, notice := h.service.ListRegistrationsForEvent(c.Request.Context(), c.Param("id"))
	common.RespondOKWithNotice(c, "Registrations retrieved", notice, regs)
}

func (h *Handler) participants(c *gin.Context) {
	participants, notice := h.service.Participants(c.Request.Context(), c.Param("id"))
	common.RespondOKWithNotice(c, "Participants retrieved", notice, participants)
}
