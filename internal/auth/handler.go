package auth

import (
	"errors"

	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/identity"
	"maatram_portal_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles authentication-related HTTP requests.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new authentication handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", h.signUp)
		authGroup.POST("/login", h.login)
		authGroup.POST("/logout", authMW, h.logout)
	}
}

func (h *Handler) signUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Sign-up binding error", zap.Error(err))
		common.RespondWithBindError(c, err)
		return
	}

	resp, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}
	common.RespondCreated(c, "Account created successfully.", resp)
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Login binding error", zap.Error(err))
		common.RespondWithBindError(c, err)
		return
	}

	cred, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}
	common.RespondOK(c, "Login successful.", cred)
}

func (h *Handler) logout(c *gin.Context) {
	id := middleware.GetIdentityFromContext(c)
	if id == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	if err := h.service.Logout(c.Request.Context(), id.UID, common.GetTokenFromContext(c)); err != nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails(err.Error()))
		return
	}
	common.RespondOK(c, "Signed out.", nil)
}

// respondAuthError passes provider messages through verbatim.
func (h *Handler) respondAuthError(c *gin.Context, err error) {
	var idErr *identity.Error
	switch {
	case errors.Is(err, ErrRegisterNoRequired):
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Please enter your Register Number."))
	case errors.Is(err, identity.ErrEmailExists):
		common.RespondWithError(c, common.ErrConflict.WithDetails(err.Error()))
	case errors.Is(err, identity.ErrInvalidCredentials):
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails(err.Error()))
	case errors.As(err, &idErr):
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(idErr.Message))
	default:
		h.logger.Error("Authentication request failed", zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails(err.Error()))
	}
}
