package profile

import (
	"errors"

	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/filestorage"
	"maatram_portal_backend/internal/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxPhotoBytes = 5 << 20

// Handler serves the caller's own profile.
type Handler struct {
	service Service
	storage filestorage.Storage
	logger  *zap.Logger
}

// NewHandler creates a profile handler.
func NewHandler(service Service, storage filestorage.Storage, logger *zap.Logger) *Handler {
	return &Handler{service: service, storage: storage, logger: logger}
}

// CompletionResponse tells the client where to go after completing a profile.
type CompletionResponse struct {
	Profile  *UserProfile `json:"profile"`
	Redirect string       `json:"redirect"`
}

// RegisterRoutes mounts /profile. Every route needs a verified identity but
// not an existing profile.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/profile")
	group.Use(authMW)
	{
		group.GET("/me", h.getMe)
		group.PUT("/me", h.updateMe)
		group.POST("/me/photo", h.uploadPhoto)
		group.POST("/complete", h.complete)
		group.POST("/skip", h.skip)
	}
}

func (h *Handler) getMe(c *gin.Context) {
	id := currentIdentity(c)
	if id == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	p, err := h.service.Get(c.Request.Context(), id.UID)
	if err != nil {
		h.respondProfileError(c, err)
		return
	}
	common.RespondOK(c, "Profile retrieved", p)
}

func (h *Handler) updateMe(c *gin.Context) {
	id := currentIdentity(c)
	if id == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	var req Edit
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithBindError(c, err)
		return
	}
	p, err := h.service.UpdateProfile(c.Request.Context(), id.UID, req)
	if err != nil {
		h.logger.Warn("Profile update failed", zap.String("uid", id.UID), zap.Error(err))
		if errors.Is(err, ErrProfileNotFound) {
			h.respondProfileError(c, err)
			return
		}
		common.RespondWithError(c, common.ErrInternalServer.WithMessage("Failed to update profile"))
		return
	}
	common.RespondOKWithNotice(c, "Profile updated", "Profile updated successfully", p)
}

func (h *Handler) complete(c *gin.Context) {
	id := currentIdentity(c)
	if id == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	var req Completion
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithBindError(c, err)
		return
	}
	p, err := h.service.CompleteProfile(c.Request.Context(), *id, req)
	if err != nil {
		if errors.Is(err, ErrNameRequired) {
			common.RespondWithError(c, common.ErrBadRequest.WithMessage("Please enter your full name"))
			return
		}
		h.logger.Error("Profile completion failed", zap.String("uid", id.UID), zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithMessage("Failed to save profile"))
		return
	}
	common.RespondOK(c, "Profile completed", CompletionResponse{Profile: p, Redirect: p.Role.Dashboard()})
}

func (h *Handler) skip(c *gin.Context) {
	id := currentIdentity(c)
	if id == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	p, err := h.service.SkipCompletion(c.Request.Context(), *id)
	if err != nil {
		h.logger.Error("Skipping profile completion failed", zap.String("uid", id.UID), zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithMessage("Failed to save profile"))
		return
	}
	common.RespondOK(c, "Profile completion skipped", CompletionResponse{Profile: p, Redirect: p.Role.Dashboard()})
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	id := currentIdentity(c)
	if id == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	if err := c.Request.ParseMultipartForm(maxPhotoBytes); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request format or file too large: "+err.Error()))
		return
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("photo file is required"))
		return
	}
	if fh.Size > maxPhotoBytes {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("photo must be 5MB or smaller"))
		return
	}

	url, err := h.storage.Save(c.Request.Context(), fh, "profiles/"+id.UID)
	if err != nil {
		h.logger.Warn("Photo upload rejected", zap.String("uid", id.UID), zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	p, err := h.service.SetPhoto(c.Request.Context(), id.UID, url)
	if err != nil {
		h.respondProfileError(c, err)
		return
	}
	common.RespondOK(c, "Photo updated", p)
}

func (h *Handler) respondProfileError(c *gin.Context, err error) {
	if errors.Is(err, ErrProfileNotFound) {
		common.RespondWithError(c, common.ErrNotFound.WithMessage("User profile missing"))
		return
	}
	common.RespondWithError(c, err)
}

func currentIdentity(c *gin.Context) *identity.Identity {
	val, ok := c.Get(common.IdentityKey)
	if !ok {
		return nil
	}
	id, _ := val.(*identity.Identity)
	return id
}
