package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/mahjong-score-service/internal/repository"
	"github.com/maxviazov/mahjong-score-service/internal/service"
)

func season(c *gin.Context) string { return strings.TrimSpace(c.Query("season")) }

func rowParam(c *gin.Context) (int64, error) {
	row, err := strconv.ParseInt(strings.TrimSpace(c.Param("row")), 10, 64)
	if err != nil || row <= 0 {
		return 0, service.NewInvalidInputError([]service.FieldError{{Field: "row", Message: "must be a valid integer > 0"}})
	}
	return row, nil
}

// page ignores unparsable values; the repository clamps them to defaults.
func page(c *gin.Context) repository.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return repository.Page{Limit: limit, Offset: offset}
}

func malformedBody() error {
	return service.NewInvalidInputError([]service.FieldError{{Field: "body", Message: "must be valid JSON"}})
}
