package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"maatram_portal_backend/internal/docstore"
	"maatram_portal_backend/internal/identity"
	"maatram_portal_backend/internal/middleware"
	"maatram_portal_backend/internal/profile"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type handlerFixture struct {
	engine   *gin.Engine
	provider *identity.NotifyingProvider
	profiles *profile.ServiceImplementation
}

func newHandlerFixture() *handlerFixture {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	hub := identity.NewHub()
	provider := identity.NewNotifyingProvider(identity.NewMemoryProvider(logger), hub)
	profiles := profile.NewService(profile.NewDocRepository(docstore.NewMemoryStore()), logger)
	router := NewRouter(profiles, provider, NewContextStore(0), logger)

	r := gin.New()
	NewHandler(router, hub, provider, logger).RegisterRoutes(r.Group("/api/v1"), middleware.OptionalAuth(provider, logger))
	return &handlerFixture{engine: r, provider: provider, profiles: profiles}
}

func (f *handlerFixture) route(t *testing.T, page, token string) (int, Decision) {
	body, _ := json.Marshal(map[string]string{"page": page})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/route", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var resp struct {
		Data Decision `json:"data"`
	}
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp.Data
}

func TestRouteHandler(t *testing.T) {
	f := newHandlerFixture()

	code, d := f.route(t, "landing", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, StateUnauthenticated, d.State)
	assert.True(t, d.ShowAuth)

	code, _ = f.route(t, "admin", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	cred, err := f.provider.CreateAccount(context.Background(), "sam@example.org", "secret123", "Sam")
	require.NoError(t, err)

	code, d = f.route(t, "landing", cred.IDToken)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, d.Repaired)
	assert.Equal(t, PageStudent, d.Redirect)
	assert.NotEmpty(t, d.PageSession)

	code, d = f.route(t, "organizer", cred.IDToken)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, StateRoleMismatch, d.State)
	assert.Equal(t, "Not authorized for Organizer portal", d.Notice)

	code, d = f.route(t, "student", "not-a-token")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, StateUnauthenticated, d.State)
	assert.Equal(t, PageLanding, d.Redirect)
}

func TestStreamHandler_Anonymous(t *testing.T) {
	f := newHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/stream?page=organizer", nil)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "event:decision\n"))
	assert.Contains(t, body, `"redirect":"landing"`)
}

func TestStreamHandler_BadPage(t *testing.T) {
	f := newHandlerFixture()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/stream?page=nowhere", nil)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamHandler_SignedInEndsWithRequest(t *testing.T) {
	f := newHandlerFixture()
	cred, err := f.provider.CreateAccount(context.Background(), "sam@example.org", "secret123", "Sam")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/stream?page=student&token="+cred.IDToken, nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		f.engine.ServeHTTP(w, req)
		close(done)
	}()
	require.Eventually(t, func() bool {
		_, err := f.profiles.Get(context.Background(), cred.UID)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "first decision repairs the profile")
	cancel()
	<-done
}
