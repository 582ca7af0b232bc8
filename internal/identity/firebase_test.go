package identity

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
)

type mockAdmin struct {
	mock.Mock
}

func (m *mockAdmin) CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.UserRecord), args.Error(1)
}

func (m *mockAdmin) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *mockAdmin) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) VerifyPassword(ctx context.Context, email, password string) (*identitytoolkit.VerifyPasswordResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identitytoolkit.VerifyPasswordResponse), args.Error(1)
}

func newTestFirebaseProvider() (*FirebaseProvider, *mockAdmin, *mockVerifier) {
	admin := new(mockAdmin)
	verifier := new(mockVerifier)
	return &FirebaseProvider{admin: admin, password: verifier, logger: zap.NewNop()}, admin, verifier
}

func TestFirebaseProvider_SignInMapsResponse(t *testing.T) {
	p, _, verifier := newTestFirebaseProvider()
	ctx := context.Background()
	verifier.On("VerifyPassword", ctx, "a@example.com", "secret1").Return(&identitytoolkit.VerifyPasswordResponse{
		LocalId: "U1", Email: "a@example.com", DisplayName: "A", IdToken: "tok", RefreshToken: "ref", ExpiresIn: 3600,
	}, nil)

	cred, err := p.SignIn(ctx, "a@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "U1", cred.UID)
	assert.Equal(t, "tok", cred.IDToken)
	assert.Equal(t, int64(3600), cred.ExpiresIn)
	verifier.AssertExpectations(t)
}

func TestFirebaseProvider_SignInRejectedVerbatim(t *testing.T) {
	p, _, verifier := newTestFirebaseProvider()
	ctx := context.Background()
	verifier.On("VerifyPassword", ctx, "a@example.com", "bad").
		Return(nil, &googleapi.Error{Code: 400, Message: "INVALID_LOGIN_CREDENTIALS"})

	_, err := p.SignIn(ctx, "a@example.com", "bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.Equal(t, "INVALID_LOGIN_CREDENTIALS", err.Error())
}

func TestFirebaseProvider_CreateAccountWeakPassword(t *testing.T) {
	p, admin, _ := newTestFirebaseProvider()
	ctx := context.Background()
	admin.On("CreateUser", ctx, mock.Anything).
		Return(nil, errors.New("password must be a string at least 6 characters long"))

	_, err := p.CreateAccount(ctx, "a@example.com", "123", "A")
	assert.True(t, errors.Is(err, ErrWeakPassword))
	assert.Equal(t, "password must be a string at least 6 characters long", err.Error())
}

func TestFirebaseProvider_VerifySession(t *testing.T) {
	p, admin, _ := newTestFirebaseProvider()
	ctx := context.Background()
	admin.On("VerifyIDTokenAndCheckRevoked", ctx, "good").Return(&auth.Token{
		UID:    "U1",
		Claims: map[string]interface{}{"email": "a@example.com", "name": "A"},
	}, nil)
	admin.On("VerifyIDTokenAndCheckRevoked", ctx, "revoked").Return(nil, errors.New("ID token has been revoked"))

	id, err := p.VerifySession(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, Identity{UID: "U1", Email: "a@example.com", DisplayName: "A"}, *id)

	_, err = p.VerifySession(ctx, "revoked")
	assert.True(t, errors.Is(err, ErrInvalidSession))

	_, err = p.VerifySession(ctx, "")
	assert.True(t, errors.Is(err, ErrInvalidSession))
}

func TestFirebaseProvider_SignOutRevokes(t *testing.T) {
	p, admin, _ := newTestFirebaseProvider()
	ctx := context.Background()
	admin.On("RevokeRefreshTokens", ctx, "U1").Return(nil)
	require.NoError(t, p.SignOut(ctx, "U1"))
	admin.AssertExpectations(t)
}
