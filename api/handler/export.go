package handler

import (
	"net/http"

	"github.com/a-thread/elysia-sub000/export"
	"github.com/a-thread/elysia-sub000/models"
	"github.com/gin-gonic/gin"
)

// Export returns a handler for POST /api/v1/recipes/export.
func Export(ex *export.Exporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExportResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		content, err := ex.Render(req.Recipe, req.Format)
		if err != nil {
			se := toScrapeError(err)
			c.JSON(statusForCode(se.Code), models.ExportResponse{
				Success: false,
				Format:  req.Format,
				Error:   se.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusOK, models.ExportResponse{
			Success: true,
			Format:  req.Format,
			Content: content,
		})
	}
}
