package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/liftlog/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newIdentityRouter(m *Middleware) *gin.Engine {
	router := gin.New()
	router.Use(m.Handler())
	identity := func(c *gin.Context) {
		userID, ok := CallerID(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id":   userID,
			"ok":        ok,
			"auth_type": GetAuthType(c),
		})
	}
	router.GET("/api/whoami", identity)
	router.GET("/health", identity)
	router.GET("/page", identity)
	return router
}

type identityResponse struct {
	UserID   string   `json:"user_id"`
	OK       bool     `json:"ok"`
	AuthType AuthType `json:"auth_type"`
}

func decodeIdentity(t *testing.T, w *httptest.ResponseRecorder) identityResponse {
	t.Helper()
	var resp identityResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestMiddleware_SingleUserMode(t *testing.T) {
	cfg := testAuthConfig(config.AuthModeNone)
	cfg.DefaultUserID = "owner-1"
	router := newIdentityRouter(NewMiddleware(nil, nil, cfg))

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp := decodeIdentity(t, w)
	if resp.UserID != "owner-1" || !resp.OK || resp.AuthType != AuthTypeNone {
		t.Errorf("unexpected identity %+v", resp)
	}
}

func TestMiddleware_UnknownModeRejects(t *testing.T) {
	for _, mode := range []config.AuthMode{"locl", ""} {
		router := newIdentityRouter(NewMiddleware(nil, nil, testAuthConfig(mode)))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("mode %q: expected 401, got %d (%s)", mode, w.Code, w.Body.String())
		}

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/page", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("mode %q: expected 401 for page, got %d", mode, w.Code)
		}

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != http.StatusOK {
			t.Errorf("mode %q: health should stay public, got %d", mode, w.Code)
		}
		if resp := decodeIdentity(t, w); resp.OK || resp.UserID != "" {
			t.Errorf("mode %q: public path resolved an identity %+v", mode, resp)
		}
	}
}

func TestMiddleware_SingleUserModeDefaultsOwner(t *testing.T) {
	cfg := testAuthConfig(config.AuthModeNone)
	cfg.DefaultUserID = ""
	router := newIdentityRouter(NewMiddleware(nil, nil, cfg))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))

	if got := decodeIdentity(t, w).UserID; got != config.DefaultSingleUserID {
		t.Errorf("user_id = %q, want %q", got, config.DefaultSingleUserID)
	}
}

func TestMiddleware_ProxyMode(t *testing.T) {
	router := newIdentityRouter(NewMiddleware(nil, nil, testAuthConfig(config.AuthModeProxy)))

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{name: "identity header", path: "/api/whoami", header: "alice@example.com", wantStatus: http.StatusOK, wantUser: "alice@example.com"},
		{name: "identity is trimmed", path: "/api/whoami", header: "  bob  ", wantStatus: http.StatusOK, wantUser: "bob"},
		{name: "missing header", path: "/api/whoami", wantStatus: http.StatusUnauthorized},
		{name: "blank header", path: "/api/whoami", header: "   ", wantStatus: http.StatusUnauthorized},
		{name: "oversized header", path: "/api/whoami", header: strings.Repeat("x", 256), wantStatus: http.StatusUnauthorized},
		{name: "browser page without header", path: "/page", wantStatus: http.StatusUnauthorized},
		{name: "public path without header", path: "/health", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(config.DefaultProxyHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantUser != "" {
				resp := decodeIdentity(t, w)
				if resp.UserID != tt.wantUser || resp.AuthType != AuthTypeProxy {
					t.Errorf("unexpected identity %+v", resp)
				}
			}
		})
	}
}

func TestMiddleware_ProxyModeCustomHeader(t *testing.T) {
	cfg := testAuthConfig(config.AuthModeProxy)
	cfg.ProxyHeader = "X-Auth-Request-User"
	router := newIdentityRouter(NewMiddleware(nil, nil, cfg))

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set(config.DefaultProxyHeader, "ignored")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 when only the default header is set, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("X-Auth-Request-User", "carol")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := decodeIdentity(t, w).UserID; got != "carol" {
		t.Errorf("user_id = %q, want carol", got)
	}
}

func TestMiddleware_LocalMode(t *testing.T) {
	cfg := testAuthConfig(config.AuthModeLocal)
	svc, _ := setupTestService(t, cfg)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "lifter", "lifter@example.com", testPassword)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	token, err := svc.GenerateToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	router := newIdentityRouter(NewMiddleware(svc, nil, cfg))

	t.Run("valid bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		resp := decodeIdentity(t, w)
		if resp.UserID != user.ID || resp.AuthType != AuthTypeBearer {
			t.Errorf("unexpected identity %+v", resp)
		}
	})

	t.Run("lowercase scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		req.Header.Set("Authorization", "bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("invalid bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		req.Header.Set("Authorization", "Bearer llt_nope")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("proxy header is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		req.Header.Set(config.DefaultProxyHeader, user.ID)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("browser is redirected", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/page", nil))
		if w.Code != http.StatusFound {
			t.Fatalf("Expected 302, got %d", w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/login?next=%2Fpage" {
			t.Errorf("Location = %q", loc)
		}
	})

	t.Run("public path is anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if decodeIdentity(t, w).OK {
			t.Error("public request should carry no identity")
		}
	})
}

func TestMiddleware_RequireAuth(t *testing.T) {
	m := NewMiddleware(nil, nil, testAuthConfig(config.AuthModeLocal))

	router := gin.New()
	router.GET("/api/secret", m.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/api/with-user", func(c *gin.Context) {
		c.Set(ContextKeyUserID, "someone")
		c.Next()
	}, m.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/secret", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/with-user", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestCallerID_Empty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if id, ok := CallerID(c); ok || id != "" {
		t.Errorf("CallerID() = %q, %v; want empty, false", id, ok)
	}
	if GetAuthType(c) != AuthTypeNone {
		t.Errorf("GetAuthType() = %v", GetAuthType(c))
	}
}
