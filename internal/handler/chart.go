package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/mahjong-score-service/internal/service"
	"github.com/maxviazov/mahjong-score-service/pkg/response"
)

// ChartHandler serves rendered PNG charts for a season.
type ChartHandler struct {
	svc service.StatsService
}

func NewChartHandler(svc service.StatsService) *ChartHandler { return &ChartHandler{svc: svc} }

func (h *ChartHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/charts")
	{
		g.GET("/ranking.png", h.render(h.svc.RankingChart))
		g.GET("/rank-distribution.png", h.render(h.svc.RankDistributionChart))
		g.GET("/players/:name/trend.png", h.trend)
	}
}

func (h *ChartHandler) render(fn func(ctx context.Context, season string) ([]byte, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		png, err := fn(c.Request.Context(), season(c))
		if err != nil {
			response.WriteError(c, err)
			return
		}
		response.WritePNG(c, png)
	}
}

func (h *ChartHandler) trend(c *gin.Context) {
	png, err := h.svc.ScoreTrendChart(c.Request.Context(), season(c), c.Param("name"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WritePNG(c, png)
}
