package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/mahjong-score-service/internal/service"
	"github.com/rs/zerolog"
)

// Deps carries everything Register mounts. Metrics and OpenAPISpecPath are optional.
type Deps struct {
	Pinger          Pinger
	Records         service.RecordService
	Stats           service.StatsService
	Metrics         http.Handler
	OpenAPISpecPath string
	RequestTimeout  time.Duration
	Logger          zerolog.Logger
}

// Register mounts all public routes on the given engine.
func Register(r *gin.Engine, d Deps) {
	r.Use(RequestID(), AccessLog(d.Logger))
	if d.RequestTimeout > 0 {
		r.Use(Timeout(d.RequestTimeout))
	}

	h := NewHealthHandler(d.Pinger)
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	RegisterDocs(r, d.OpenAPISpecPath)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		if d.Records != nil {
			NewRecordHandler(d.Records).Register(api)
		}
		if d.Stats != nil {
			NewStatsHandler(d.Stats).Register(api)
			NewChartHandler(d.Stats).Register(api)
		}
	}
}
