package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tutorias_backend/internal/auth"
	"tutorias_backend/internal/cache"
	"tutorias_backend/internal/models"
	"tutorias_backend/internal/repositories"
	"tutorias_backend/internal/services"
	"tutorias_backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthMiddleware(t *testing.T) {
	db := testutil.NewTestDB(t)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	authService := services.NewAuthService(
		repositories.NewUserRepository(),
		repositories.NewProfileRepository(),
		tokens,
		cache.NoopCache{},
	)
	user, _ := testutil.CreateTutor(t, db, "luis@test.com")

	r := gin.New()
	r.Use(DBMiddleware(db))
	r.GET("/me", AuthMiddleware(authService), func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": p.UserID, "rol": p.Rol})
	})

	do := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("valid token", func(t *testing.T) {
		token, err := tokens.GenerateToken(user.ID, string(models.RolTutor))
		require.NoError(t, err)

		w := do("Bearer " + token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Equal(t, float64(user.ID), body["id"])
		assert.Equal(t, "tutor", body["rol"])
	})

	t.Run("missing header", func(t *testing.T) {
		w := do("")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token no proporcionado", decodeBody(t, w)["message"])
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("Token abc").Code)
		assert.Equal(t, http.StatusUnauthorized, do("Bearer ").Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		other := auth.NewTokenManager("other-secret", time.Hour)
		token, err := other.GenerateToken(user.ID, "tutor")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, do("Bearer "+token).Code)
	})

	t.Run("deleted user", func(t *testing.T) {
		token, err := tokens.GenerateToken(424242, "tutor")
		require.NoError(t, err)
		w := do("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Usuario no existe", decodeBody(t, w)["message"])
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	store := NewLimiterStore(1, 2, time.Minute)

	r := gin.New()
	r.Use(RateLimitMiddleware(store))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "other IPs have their own bucket")
}

func TestLimiterStore_Cleanup(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewLimiterStore(5, 5, time.Minute)
	store.now = func() time.Time { return now }

	store.Get("a")
	now = now.Add(30 * time.Second)
	store.Get("b")
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, store.Cleanup())
	assert.Equal(t, 1, store.Len())
}
