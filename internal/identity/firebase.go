package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// adminClient is the subset of *auth.Client the provider uses.
type adminClient interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
}

// passwordVerifier exchanges email and password for tokens.
type passwordVerifier interface {
	VerifyPassword(ctx context.Context, email, password string) (*identitytoolkit.VerifyPasswordResponse, error)
}

// FirebaseProvider implements Provider with Firebase Authentication. The Admin
// SDK cannot check passwords, so sign-in goes through the Identity Toolkit API.
type FirebaseProvider struct {
	admin    adminClient
	password passwordVerifier
	logger   *zap.Logger
}

var _ Provider = (*FirebaseProvider)(nil)

// NewFirebaseProvider builds a provider from an Auth client and a web API key.
func NewFirebaseProvider(ctx context.Context, client *auth.Client, webAPIKey string, logger *zap.Logger) (*FirebaseProvider, error) {
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(webAPIKey))
	if err != nil {
		return nil, fmt.Errorf("creating identity toolkit service: %w", err)
	}
	return &FirebaseProvider{
		admin:    client,
		password: &toolkitVerifier{svc: svc},
		logger:   logger,
	}, nil
}

func (p *FirebaseProvider) CreateAccount(ctx context.Context, email, password, displayName string) (*Credential, error) {
	params := (&auth.UserToCreate{}).Email(email).Password(password)
	if strings.TrimSpace(displayName) != "" {
		params = params.DisplayName(displayName)
	}
	record, err := p.admin.CreateUser(ctx, params)
	if err != nil {
		p.logger.Warn("Firebase account creation failed", zap.String("email", email), zap.Error(err))
		return nil, classifyAdminError(err)
	}
	p.logger.Info("Firebase account created", zap.String("uid", record.UID))
	return p.SignIn(ctx, email, password)
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*Credential, error) {
	resp, err := p.password.VerifyPassword(ctx, email, password)
	if err != nil {
		p.logger.Info("Firebase password sign-in rejected", zap.String("email", email), zap.Error(err))
		return nil, classifyToolkitError(err)
	}
	return &Credential{
		Identity: Identity{
			UID:         resp.LocalId,
			Email:       resp.Email,
			DisplayName: resp.DisplayName,
		},
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

func (p *FirebaseProvider) SignOut(ctx context.Context, uid string) error {
	if err := p.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		p.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

func (p *FirebaseProvider) VerifySession(ctx context.Context, idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, newError(ErrInvalidSession, "ID token must not be empty")
	}
	token, err := p.admin.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		p.logger.Debug("Firebase ID token verification failed", zap.Error(err))
		return nil, newError(ErrInvalidSession, err.Error())
	}
	id := &Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.DisplayName = name
	}
	return id, nil
}

func classifyAdminError(err error) error {
	msg := err.Error()
	switch {
	case auth.IsEmailAlreadyExists(err):
		return newError(ErrEmailExists, msg)
	case auth.IsInvalidEmail(err), strings.Contains(msg, "malformed email"):
		return newError(ErrInvalidEmail, msg)
	case strings.Contains(msg, "password must be"):
		return newError(ErrWeakPassword, msg)
	}
	return fmt.Errorf("creating account: %w", err)
}

func classifyToolkitError(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == 400 {
		return newError(ErrInvalidCredentials, gErr.Message)
	}
	return fmt.Errorf("password sign-in: %w", err)
}

type toolkitVerifier struct {
	svc *identitytoolkit.Service
}

func (v *toolkitVerifier) VerifyPassword(ctx context.Context, email, password string) (*identitytoolkit.VerifyPasswordResponse, error) {
	return v.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
}
