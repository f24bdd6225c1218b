package dashboard

import (
	"github.com/daily-darshan/core/internal/modules/content/grahan"
	"github.com/daily-darshan/core/internal/modules/content/poonam"
	"github.com/daily-darshan/core/internal/modules/content/slot"
	"github.com/daily-darshan/core/internal/modules/content/temple"
	"github.com/daily-darshan/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler aggregates counts and today's upload checklist for the admin
// landing page.
type Handler struct {
	temples *temple.Service
	poonams *poonam.Service
	grahans *grahan.Service
}

func NewHandler(temples *temple.Service, poonams *poonam.Service, grahans *grahan.Service) *Handler {
	return &Handler{temples: temples, poonams: poonams, grahans: grahans}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/dashboard", authMW, h.dashboard)
}

// GET /dashboard
func (h *Handler) dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	templeCount, err := h.temples.Count(ctx)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	poonamCount, err := h.poonams.Count(ctx)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	grahanCount, err := h.grahans.Count(ctx)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	morning, err := h.temples.Tasks(ctx, slot.SessionMorning)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	evening, err := h.temples.Tasks(ctx, slot.SessionEvening)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{
		"counts": gin.H{
			"temples": templeCount,
			"poonams": poonamCount,
			"grahans": grahanCount,
		},
		"tasks": gin.H{
			"morning": morning,
			"evening": evening,
		},
	})
}
