package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"artisanal-futures/internal/domain/logistics"
	"artisanal-futures/internal/pkg/jwt"
	"artisanal-futures/internal/service/passcode"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	claims *jwt.Claims
}

func (s stubVerifier) Verify(token string) (*jwt.Claims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return s.claims, nil
}

func claimsFor(roles ...string) *jwt.Claims {
	return &jwt.Claims{
		Email:            "a@example.org",
		Roles:            roles,
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "user-1", ID: "jti-1"},
	}
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiresBearerToken(t *testing.T) {
	am := NewAuthMiddleware(stubVerifier{claims: claimsFor(jwt.RoleUser)})
	r := gin.New()
	r.GET("/me", am.Auth(), func(c *gin.Context) {
		c.String(http.StatusOK, MustGetUserID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestAdminOnlyRejectsNonAdmin(t *testing.T) {
	am := NewAuthMiddleware(stubVerifier{claims: claimsFor(jwt.RoleArtisan)})
	r := gin.New()
	r.GET("/admin", append(am.AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })...)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer good")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}

func TestOptionalAuthNeverAborts(t *testing.T) {
	am := NewAuthMiddleware(stubVerifier{claims: claimsFor(jwt.RoleUser)})
	r := gin.New()
	r.GET("/x", am.OptionalAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, "%v", IsAuthenticated(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "false", w.Body.String())
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := serve(r, req)
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Body.String())
}

func TestRecoveryReturns500(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.org"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.org")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

type countingLimiter struct {
	hits int64
	err  error
}

func (l *countingLimiter) Allow(_ context.Context, _ string, max int64, _ time.Duration) (bool, int64, error) {
	if l.err != nil {
		return false, 0, l.err
	}
	l.hits++
	if l.hits > max {
		return false, 0, nil
	}
	return true, max - l.hits, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{}
	r := gin.New()
	r.POST("/x", RateLimit(limiter, 2, time.Minute, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/x", nil)).Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := gin.New()
	r.POST("/x", RateLimit(&countingLimiter{err: errors.New("redis down")}, 1, time.Minute, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/x", nil)).Code)
}

type fakeDriverVerifier struct {
	last passcode.Request
}

func (f *fakeDriverVerifier) Verify(_ context.Context, req passcode.Request) passcode.Decision {
	f.last = req
	pc := &logistics.PathContext{Path: &logistics.OptimizedRoutePath{ID: req.PathID}}
	switch {
	case req.Passcode == "fresh":
		return passcode.Decision{State: passcode.StateVerified, SetCookie: "fresh", Path: pc}
	case req.Cookie == "fresh":
		return passcode.Decision{State: passcode.StateVerified, Path: pc}
	default:
		return passcode.Decision{State: passcode.StateRejected}
	}
}

func driverRouter(v DriverVerifier) *gin.Engine {
	r := gin.New()
	cfg := DriverAccessConfig{SandboxPath: "/sandbox", CookieTTL: 720 * time.Minute}
	r.GET("/pathways/:depot_id/route/:route_id/path/:path_id", DriverAccess(v, cfg, nil), func(c *gin.Context) {
		pc, ok := GetDriverPath(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, pc.Path.ID)
	})
	return r
}

func TestDriverAccessSetsCookieOnFreshPasscode(t *testing.T) {
	v := &fakeDriverVerifier{}
	r := driverRouter(v)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/pathways/d1/route/r1/path/p1?pc=fresh&driverId=v1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p1", w.Body.String())
	assert.Equal(t, "d1", v.last.DepotID)
	assert.Equal(t, "r1", v.last.RouteID)
	assert.Equal(t, "v1", v.last.VehicleID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DriverCookieName, cookies[0].Name)
	assert.Equal(t, 720*60, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "/", cookies[0].Path)
}

func TestDriverAccessAcceptsCookie(t *testing.T) {
	r := driverRouter(&fakeDriverVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/pathways/d1/route/r1/path/p1", nil)
	req.AddCookie(&http.Cookie{Name: DriverCookieName, Value: "fresh"})
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestDriverAccessRedirectsToSandbox(t *testing.T) {
	r := driverRouter(&fakeDriverVerifier{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/pathways/d1/route/r1/path/p1?pc=stale", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/sandbox", w.Header().Get("Location"))
}
