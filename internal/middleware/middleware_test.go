package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/identity"
	"github.com/luminher/luminher-api/internal/models"
)

func TestRequireAPIKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireAPIKey("s3cret", zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		url    string
		header string
		want   int
	}{
		{"header", "/x", "s3cret", http.StatusOK},
		{"query", "/x?key=s3cret", "", http.StatusOK},
		{"missing", "/x", "", http.StatusUnauthorized},
		{"wrong", "/x", "s3cret2", http.StatusUnauthorized},
		{"wrong query", "/x?key=nope", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set(APIKeyHeader, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.JSONEq(t, `{"ok":false,"error":"unauthorized"}`, w.Body.String())
			}
		})
	}
}

func TestRequireAPIKey_EmptyKeyRejectsAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireAPIKey("", zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentityToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	idp := identity.NewMemoryProvider()
	idp.Add(models.UserRecord{UID: "u1", Email: "u1@example.com"}, nil)
	idp.AddToken("opaque-token", "u1")

	var seen *models.Caller
	r := gin.New()
	r.POST("/c", IdentityToken(idp, zap.NewNop()), func(c *gin.Context) {
		seen = CallerFrom(c)
		c.Status(http.StatusOK)
	})

	run := func(header string) *models.Caller {
		seen = nil
		req := httptest.NewRequest(http.MethodPost, "/c", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "the middleware never aborts")
		return seen
	}

	if c := run("Bearer opaque-token"); assert.NotNil(t, c) {
		assert.Equal(t, "u1", c.UID)
		assert.Equal(t, "u1@example.com", c.Email)
	}
	assert.NotNil(t, run("bearer u1"))
	assert.Nil(t, run(""))
	assert.Nil(t, run("Basic dTE6cHc="))
	assert.Nil(t, run("Bearer "))
	assert.Nil(t, run("Bearer unknown"))
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"internal server error"}`, w.Body.String())
}
