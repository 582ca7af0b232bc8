package middleware

import (
	"context"
	"errors"

	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/identity"
	"maatram_portal_backend/internal/profile"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionVerifier verifies bearer ID tokens.
type SessionVerifier interface {
	VerifySession(ctx context.Context, idToken string) (*identity.Identity, error)
}

// ProfileLoader loads the caller's profile for role checks.
type ProfileLoader interface {
	Get(ctx context.Context, uid string) (*profile.UserProfile, error)
}

// AuthMiddleware rejects requests without a valid bearer ID token.
func AuthMiddleware(verifier SessionVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(common.AuthorizationHeader) == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}
		token := common.GetTokenFromContext(c)
		if token == "" {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}
		id, err := verifier.VerifySession(c.Request.Context(), token)
		if err != nil {
			logger.Warn("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails(err.Error()))
			return
		}
		setIdentity(c, id)
		logger.Debug("User authenticated successfully", zap.String("uid", id.UID))
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is sent and lets
// anonymous requests through. An invalid token counts as no session.
func OptionalAuth(verifier SessionVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := common.GetTokenFromContext(c); token != "" {
			id, err := verifier.VerifySession(c.Request.Context(), token)
			if err != nil {
				logger.Debug("Ignoring invalid session token", zap.Error(err))
			} else {
				setIdentity(c, id)
			}
		}
		c.Next()
	}
}

// RequireRole loads the caller's profile and allows only the listed roles.
// It must run after AuthMiddleware.
func RequireRole(loader ProfileLoader, logger *zap.Logger, allowed ...profile.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentityFromContext(c)
		if id == nil {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authentication is required."))
			return
		}
		p, err := loader.Get(c.Request.Context(), id.UID)
		if err != nil {
			if errors.Is(err, profile.ErrProfileNotFound) {
				common.RespondWithError(c, common.ErrForbidden.WithMessage("User profile missing"))
				return
			}
			logger.Error("Failed to load profile for role check", zap.String("uid", id.UID), zap.Error(err))
			common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not load user profile."))
			return
		}
		for _, role := range allowed {
			if p.Role == role {
				c.Set(common.ProfileKey, p)
				c.Set(common.UserRoleKey, string(p.Role))
				c.Next()
				return
			}
		}
		logger.Info("Role not permitted", zap.String("uid", id.UID), zap.String("role", string(p.Role)))
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
	}
}

// GetIdentityFromContext returns the verified identity, or nil when anonymous.
func GetIdentityFromContext(c *gin.Context) *identity.Identity {
	val, exists := c.Get(common.IdentityKey)
	if !exists {
		return nil
	}
	id, _ := val.(*identity.Identity)
	return id
}

// GetProfileFromContext returns the profile loaded by RequireRole.
func GetProfileFromContext(c *gin.Context) *profile.UserProfile {
	val, exists := c.Get(common.ProfileKey)
	if !exists {
		return nil
	}
	p, _ := val.(*profile.UserProfile)
	return p
}

func setIdentity(c *gin.Context, id *identity.Identity) {
	c.Set(common.IdentityKey, id)
	c.Set(common.UIDKey, id.UID)
	c.Set(common.UserEmailKey, id.Email)
	c.Set(common.UserNameKey, id.DisplayName)
}
