package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/mahjong-score-service/internal/service"
	"github.com/maxviazov/mahjong-score-service/pkg/response"
)

type StatsHandler struct {
	svc service.StatsService
}

func NewStatsHandler(svc service.StatsService) *StatsHandler { return &StatsHandler{svc: svc} }

func (h *StatsHandler) Register(r *gin.RouterGroup) {
	r.GET("/seasons", h.seasons)
	r.GET("/scoring", h.scoring)
	r.GET("/ranking", h.ranking)
	r.GET("/head-to-head", h.headToHead)
	players := r.Group("/players")
	{
		players.GET("", h.players)
		players.GET("/:name/stats", h.playerStats)
		players.GET("/:name/trend", h.playerTrend)
	}
}

func (h *StatsHandler) seasons(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.svc.Seasons())
}

func (h *StatsHandler) scoring(c *gin.Context) {
	response.WriteData(c, http.StatusOK, h.svc.Scoring())
}

func (h *StatsHandler) players(c *gin.Context) {
	names, err := h.svc.ListPlayers(c.Request.Context(), season(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"players": names})
}

func (h *StatsHandler) playerStats(c *gin.Context) {
	name := c.Param("name")
	st, err := h.svc.GetPlayerStatistics(c.Request.Context(), season(c), name)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"name": name, "stats": st})
}

func (h *StatsHandler) playerTrend(c *gin.Context) {
	recent := 0
	if v := c.Query("recent"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "recent", Message: "must be a non-negative integer"}}))
			return
		}
		recent = n
	}
	trend, err := h.svc.GetScoreTrend(c.Request.Context(), season(c), c.Param("name"), recent)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, trend)
}

func (h *StatsHandler) ranking(c *gin.Context) {
	rows, err := h.svc.GetRanking(c.Request.Context(), season(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"ranking": rows})
}

func (h *StatsHandler) headToHead(c *gin.Context) {
	res, err := h.svc.GetHeadToHead(c.Request.Context(), season(c), c.Query("player1"), c.Query("player2"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}
