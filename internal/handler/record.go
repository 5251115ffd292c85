package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/mahjong-score-service/internal/service"
	"github.com/maxviazov/mahjong-score-service/pkg/response"
)

type RecordHandler struct {
	svc service.RecordService
}

func NewRecordHandler(svc service.RecordService) *RecordHandler { return &RecordHandler{svc: svc} }

func (h *RecordHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/records")
	{
		g.GET("", h.list)
		g.POST("", h.create)
		g.POST("/import", h.importBatch)
		g.GET("/:row", h.get)
		g.PUT("/:row", h.update)
		g.DELETE("/:row", h.delete)
	}
}

func (h *RecordHandler) list(c *gin.Context) {
	res, err := h.svc.ListRecords(c.Request.Context(), season(c), page(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *RecordHandler) get(c *gin.Context) {
	row, err := rowParam(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	rec, err := h.svc.GetRecord(c.Request.Context(), season(c), row)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, rec)
}

func (h *RecordHandler) create(c *gin.Context) {
	var req service.RecordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, malformedBody())
		return
	}
	rec, err := h.svc.CreateRecord(c.Request.Context(), season(c), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, rec)
}

type importRequest struct {
	Records []service.RecordInput `json:"records"`
}

func (h *RecordHandler) importBatch(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, malformedBody())
		return
	}
	recs, err := h.svc.ImportRecords(c.Request.Context(), season(c), req.Records)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, gin.H{"imported": len(recs), "records": recs})
}

func (h *RecordHandler) update(c *gin.Context) {
	row, err := rowParam(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req service.RecordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, malformedBody())
		return
	}
	rec, err := h.svc.UpdateRecord(c.Request.Context(), season(c), row, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, rec)
}

func (h *RecordHandler) delete(c *gin.Context) {
	row, err := rowParam(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if err := h.svc.DeleteRecord(c.Request.Context(), season(c), row); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
