package profile

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/filestorage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService()
	storage, err := filestorage.NewLocalStorage(t.TempDir(), "/uploads", zap.NewNop())
	require.NoError(t, err)

	fakeAuth := func(c *gin.Context) {
		id := alice
		c.Set(common.IdentityKey, &id)
		c.Next()
	}
	r := gin.New()
	NewHandler(svc, storage, zap.NewNop()).RegisterRoutes(r.Group("/api/v1"), fakeAuth)
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_GetMe_Missing(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(r, http.MethodGet, "/api/v1/profile/me", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User profile missing")
}

func TestHandler_CompleteRedirects(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/profile/complete", Completion{Name: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter your full name")

	w = doJSON(r, http.MethodPost, "/api/v1/profile/complete", Completion{Name: "Alice", Role: "organizer"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data CompletionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "organizer", resp.Data.Redirect)
	assert.Equal(t, RoleOrganizer, resp.Data.Profile.Role)

	w = doJSON(r, http.MethodGet, "/api/v1/profile/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_SkipRedirectsToStudent(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(r, http.MethodPost, "/api/v1/profile/skip", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"student"`)
}

func TestHandler_UpdateMe(t *testing.T) {
	r := newTestRouter(t)
	doJSON(r, http.MethodPost, "/api/v1/profile/skip", nil)

	w := doJSON(r, http.MethodPut, "/api/v1/profile/me", Edit{Name: "Alice", College: "PSG"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Profile updated successfully")
	assert.Contains(t, w.Body.String(), `"college":"PSG"`)
}

func TestHandler_UploadPhoto(t *testing.T) {
	r := newTestRouter(t)
	doJSON(r, http.MethodPost, "/api/v1/profile/skip", nil)

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("photo", "me.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profile/me/photo", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data UserProfile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Data.PhotoURL, "/uploads/profiles/u1/"))
}

