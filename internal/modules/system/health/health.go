package health

import (
	"net/http"
	"time"

	pkgredis "github.com/daily-darshan/core/internal/pkg/redis"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts liveness endpoints. The store kind tells operators
// whether the process is running against Mongo or the offline file
// fallback.
func RegisterRoutes(rg *gin.RouterGroup, storeKind string, rdb *pkgredis.Client) {
	started := time.Now()

	rg.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	rg.GET("/health", func(c *gin.Context) {
		redisOK := false
		if rdb != nil {
			redisOK = rdb.Healthy(c.Request.Context())
		}

		status := "ok"
		code := http.StatusOK
		if storeKind == "file" {
			// Still serving, but on the degraded offline path.
			status = "degraded"
		}

		c.JSON(code, gin.H{
			"status": status,
			"store":  storeKind,
			"redis":  redisOK,
			"uptime": int64(time.Since(started).Seconds()),
		})
	})
}
