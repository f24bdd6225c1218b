package servertime

import (
	"time"

	"github.com/daily-darshan/core/internal/modules/content/slot"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the clock endpoint. Mobile clients ask the server
// which civil day and session it is instead of trusting the device clock,
// which drifts across the midnight and 6 AM boundaries.
func RegisterRoutes(rg *gin.RouterGroup, cal *slot.Calendar) {
	rg.GET("/server-time", func(c *gin.Context) {
		now := time.Now()
		local := now.In(cal.Location())
		c.JSON(200, gin.H{
			"now":          local.Format(time.RFC3339),
			"unixMs":       now.UnixMilli(),
			"timezone":     cal.Location().String(),
			"date":         cal.DateKey(now),
			"visibleDates": cal.VisibleDates(now),
			"session":      cal.CurrentSession(now),
		})
	})
}
