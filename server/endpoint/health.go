package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nyayagpt/nyaya/observability"
	"github.com/nyayagpt/nyaya/version"
)

// Health returns a handler that aggregates checkers. A down component
// answers 503; degraded still answers 200.
func Health(serviceName string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.Check(c.Request.Context(), serviceName, version.Version, checkers...)
		status := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, sh)
	}
}
