package middleware

import (
	"context"
	"net/http"
	"time"

	"artisanal-futures/internal/domain/logistics"
	"artisanal-futures/internal/metrics"
	"artisanal-futures/internal/service/passcode"

	"github.com/gin-gonic/gin"
)

const (
	DriverCookieName = "verifiedDriver"
	ctxDriverPath    = "driver_path"
)

// DriverVerifier decides whether a presented passcode grants access to a path.
type DriverVerifier interface {
	Verify(ctx context.Context, req passcode.Request) passcode.Decision
}

type DriverAccessConfig struct {
	SandboxPath  string
	CookieTTL    time.Duration
	SecureCookie bool
}

// DriverAccess guards routes addressed by :path_id. A verified driver gets
// the path context in gin's context; anyone else is redirected to the
// sandbox.
func DriverAccess(v DriverVerifier, cfg DriverAccessConfig, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(DriverCookieName)

		dec := v.Verify(c.Request.Context(), passcode.Request{
			PathID:    c.Param("path_id"),
			DepotID:   c.Param("depot_id"),
			RouteID:   c.Param("route_id"),
			VehicleID: c.Query("driverId"),
			Passcode:  c.Query("pc"),
			Cookie:    cookie,
		})
		m.DriverVerification(string(dec.State))

		if !dec.Verified() {
			c.Redirect(http.StatusFound, cfg.SandboxPath)
			c.Abort()
			return
		}

		if dec.SetCookie != "" {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(DriverCookieName, dec.SetCookie, int(cfg.CookieTTL.Seconds()), "/", "", cfg.SecureCookie, true)
		}

		c.Set(ctxDriverPath, dec.Path)
		c.Next()
	}
}

// GetDriverPath returns the path context set by DriverAccess.
func GetDriverPath(c *gin.Context) (*logistics.PathContext, bool) {
	v, exists := c.Get(ctxDriverPath)
	if !exists {
		return nil, false
	}
	pc, ok := v.(*logistics.PathContext)
	return pc, ok
}
