package handler

import (
	_ "embed"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// DefaultOpenAPISpecPath is relative to the working directory of the server.
const DefaultOpenAPISpecPath = "api/openapi.yaml"

// Minimal HTML that loads Swagger UI from a CDN and points to /openapi.yaml.
//
//go:embed swagger.html
var swaggerHTML string

// RegisterDocs mounts documentation endpoints at the root:
//   - GET /openapi.yaml: raw OpenAPI document read from specPath
//   - GET /docs: Swagger UI rendering of that document
func RegisterDocs(r *gin.Engine, specPath string) {
	if specPath == "" {
		specPath = DefaultOpenAPISpecPath
	}
	r.GET("/openapi.yaml", func(c *gin.Context) {
		data, err := os.ReadFile(specPath)
		if err != nil {
			c.String(http.StatusInternalServerError, "failed to read openapi document: %v", err)
			return
		}
		c.Data(http.StatusOK, "application/yaml; charset=utf-8", data)
	})
	r.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})
}
