package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-tracker-backend/internal/delivery/http/middleware"
	"cv-tracker-backend/internal/delivery/http/response"
	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/internal/repository/memory"
	"cv-tracker-backend/internal/usecase"
	"cv-tracker-backend/pkg/apperror"
	"cv-tracker-backend/pkg/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "pong", nil)
	})

	t.Run("Should generate an id when none is sent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := w.Header().Get(middleware.RequestIDHeader)
		assert.Len(t, id, 32)
		assert.Equal(t, id, decode(t, w).RequestID)
	})

	t.Run("Should reuse the caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("Should replace oversized ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(middleware.RequestIDHeader, strings.Repeat("x", 65))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 32)
	})
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	r.GET("/conflict", func(c *gin.Context) {
		c.Error(apperror.Conflict("Ya existe").WithDetails(map[string]string{"existing_id": "l1"}))
	})
	r.GET("/internal", func(c *gin.Context) {
		c.Error(apperror.Internal(errors.New("pq: connection reset")))
	})
	r.GET("/plain", func(c *gin.Context) {
		c.Error(errors.New("boom"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.String(http.StatusTeapot, "already")
		c.Error(errors.New("late"))
	})

	t.Run("Should return the message and details of an AppError", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conflict", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		body := decode(t, w)
		assert.False(t, body.Success)
		assert.Equal(t, "Ya existe", body.Message)
		assert.Equal(t, map[string]interface{}{"existing_id": "l1"}, body.Error)
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("Should hide internal errors", func(t *testing.T) {
		for _, path := range []string{"/internal", "/plain"} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.NotContains(t, w.Body.String(), "pq:")
			assert.NotContains(t, w.Body.String(), "boom")
			assert.Equal(t, "Ocurrió un error inesperado. Intente nuevamente.", decode(t, w).Message)
		}
	})

	t.Run("Should leave written responses alone", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "already", w.Body.String())
	})
}

func TestCORS(t *testing.T) {
	newRouter := func(release bool) *gin.Engine {
		r := gin.New()
		r.Use(middleware.CORSMiddleware("https://cv.example.com", release))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	t.Run("Should echo an allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://cv.example.com")
		w := httptest.NewRecorder()
		newRouter(true).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://cv.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	})

	t.Run("Should reject preflight from unknown origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		newRouter(true).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Should allow local dev servers only outside release", func(t *testing.T) {
		for release, want := range map[bool]int{false: http.StatusNoContent, true: http.StatusForbidden} {
			req := httptest.NewRequest(http.MethodOptions, "/x", nil)
			req.Header.Set("Origin", "http://localhost:5173")
			w := httptest.NewRecorder()
			newRouter(release).ServeHTTP(w, req)
			assert.Equal(t, want, w.Code)
		}
	})
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SecurityHeadersMiddleware(true, "https://cdn.example.com"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer t")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "img-src 'self' data: https://cdn.example.com")
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}

func TestRateLimitMemoryFallback(t *testing.T) {
	secLog := security.NewNopSecurityLogger()
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(2, time.Minute, secLog)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
	second := call("10.0.0.1")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := call("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.NotEmpty(t, third.Header().Get("Retry-After"))
	assert.Equal(t, "Demasiadas solicitudes. Intente más tarde.", decode(t, third).Message)

	// other clients keep their own budget
	assert.Equal(t, http.StatusOK, call("10.0.0.2").Code)
}

func TestAuthMiddleware(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	authUC := usecase.NewAuthUsecase(memory.NewUserRepository(store), tokens)

	user, err := authUC.Register(ctx, "ana@example.com", "Ana", "password123", domain.RoleAdmin)
	require.NoError(t, err)
	token, _, err := tokens.Issue(user.ID, user.Email, user.Role)
	require.NoError(t, err)
	orphan, _, err := tokens.Issue("deleted-user", "x@example.com", domain.RoleAdmin)
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(tokens, authUC, security.NewNopSecurityLogger()))
	r.GET("/me", func(c *gin.Context) {
		fromCtx, _ := c.Request.Context().Value(domain.KeyUserID).(string)
		c.JSON(http.StatusOK, gin.H{
			"id":   c.GetString(string(domain.KeyUserID)),
			"ctx":  fromCtx,
			"role": c.GetString(string(domain.KeyUserRole)),
		})
	})

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("Should expose the user to handlers", func(t *testing.T) {
		w := call("Bearer " + token)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, user.ID, body["id"])
		assert.Equal(t, user.ID, body["ctx"])
		assert.Equal(t, domain.RoleAdmin, body["role"])
	})

	t.Run("Should reject missing, malformed and orphaned tokens", func(t *testing.T) {
		for _, header := range []string{"", "Token " + token, "Bearer nope", "Bearer " + orphan} {
			assert.Equal(t, http.StatusUnauthorized, call(header).Code, header)
		}
	})
}
