package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"maatram_portal_backend/internal/identity"
	"maatram_portal_backend/internal/profile"

	"go.uber.org/zap"
)

// ErrRegisterNoRequired is returned when sign-up omits the register number.
var ErrRegisterNoRequired = errors.New("register number required")

// ProfileCreator writes the profile that belongs to a new account.
type ProfileCreator interface {
	CreateOnSignUp(ctx context.Context, id identity.Identity, name string, role profile.Role, registerNo string) (*profile.UserProfile, error)
}

// ContextRevoker drops the page-session contexts of a signed-out user.
type ContextRevoker interface {
	DeleteForUID(uid string) int
}

// Service handles sign-up, sign-in and sign-out.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error)
	Login(ctx context.Context, req LoginRequest) (*identity.Credential, error)
	Logout(ctx context.Context, uid, idToken string) error
}

// ServiceImplementation implements Service on top of an identity provider.
type ServiceImplementation struct {
	provider  identity.Provider
	profiles  ProfileCreator
	contexts  ContextRevoker
	blocklist *TokenBlocklist
	logger    *zap.Logger
}

// NewService creates an auth service. provider should publish session changes
// (identity.NotifyingProvider) so open session streams see sign-in and sign-out.
func NewService(provider identity.Provider, profiles ProfileCreator, contexts ContextRevoker, blocklist *TokenBlocklist, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		provider:  provider,
		profiles:  profiles,
		contexts:  contexts,
		blocklist: blocklist,
		logger:    logger.Named("AuthService"),
	}
}

// SignUp creates the account and then awaits the profile write. The account
// survives a failed profile write; the session router repairs it on first visit.
func (s *ServiceImplementation) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	if strings.TrimSpace(req.RegisterNo) == "" {
		return nil, ErrRegisterNoRequired
	}
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	cred, err := s.provider.CreateAccount(ctx, email, req.Password, name)
	if err != nil {
		s.logger.Info("Account creation rejected", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	role := profile.ParseRole(req.Role)
	p, err := s.profiles.CreateOnSignUp(ctx, cred.Identity, name, role, req.RegisterNo)
	if err != nil {
		return nil, fmt.Errorf("saving profile for %s: %w", cred.UID, err)
	}
	s.logger.Info("Account created", zap.String("uid", cred.UID), zap.String("role", string(p.Role)))
	return &SignUpResponse{Credential: cred, Redirect: p.Role.Dashboard()}, nil
}

func (s *ServiceImplementation) Login(ctx context.Context, req LoginRequest) (*identity.Credential, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	cred, err := s.provider.SignIn(ctx, email, req.Password)
	if err != nil {
		s.logger.Info("Sign-in rejected", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return cred, nil
}

// Logout revokes every session of uid, lists the presented token and drops
// the user's page-session contexts.
func (s *ServiceImplementation) Logout(ctx context.Context, uid, idToken string) error {
	if s.blocklist != nil {
		s.blocklist.Add(idToken, time.Hour)
	}
	if s.contexts != nil {
		if n := s.contexts.DeleteForUID(uid); n > 0 {
			s.logger.Debug("Dropped page-session contexts", zap.String("uid", uid), zap.Int("count", n))
		}
	}
	if err := s.provider.SignOut(ctx, uid); err != nil {
		s.logger.Warn("Sign-out failed", zap.String("uid", uid), zap.Error(err))
		return err
	}
	return nil
}
