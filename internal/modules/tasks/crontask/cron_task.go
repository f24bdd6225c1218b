package crontask

import (
	"github.com/gin-gonic/gin"

	pkgcron "github.com/daily-darshan/core/internal/pkg/cron"
	"github.com/daily-darshan/core/internal/pkg/response"
)

// Handler wraps the scheduler for HTTP access.
type Handler struct {
	sched *pkgcron.Scheduler
}

func NewHandler(sched *pkgcron.Scheduler) *Handler {
	return &Handler{sched: sched}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/cron", authMW)
	g.GET("", h.list)
	g.POST("/run/:name", h.run)
}

// GET /cron — list all jobs with last-run state
func (h *Handler) list(c *gin.Context) {
	response.OK(c, h.sched.List())
}

// POST /cron/run/:name — trigger a job now
func (h *Handler) run(c *gin.Context) {
	if err := h.sched.Run(c.Request.Context(), c.Param("name")); err != nil {
		response.NotFoundMsg(c, "cron job not found")
		return
	}
	response.OK(c, gin.H{"message": "job triggered"})
}
