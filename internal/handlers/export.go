package handlers

import (
	"net/http"

	"github.com/alimgiray/reviewdesk/internal/services"
	"github.com/alimgiray/reviewdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	commentService *services.CommentService
	exportService  *services.ExportService
	importService  *services.ImportService
}

func NewExportHandler(
	commentService *services.CommentService,
	exportService *services.ExportService,
	importService *services.ImportService,
) *ExportHandler {
	return &ExportHandler{
		commentService: commentService,
		exportService:  exportService,
		importService:  importService,
	}
}

// ExportComments writes every stored comment in the requested format
// (`?format=json|csv|xlsx`, default json). `?metadata=true` appends the diff
// position columns to CSV and XLSX.
func (h *ExportHandler) ExportComments(c *gin.Context) {
	comments, err := h.commentService.GetAllComments()
	if err != nil {
		logger.WithError(err).Error("Failed to load comments for export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}

	includeMetadata := c.Query("metadata") == "true"

	switch c.DefaultQuery("format", "json") {
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="comments.csv"`)
		c.Header("Content-Type", "text/csv")
		err = h.exportService.ExportCSV(c.Writer, comments, includeMetadata)
	case "xlsx":
		c.Header("Content-Disposition", `attachment; filename="comments.xlsx"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = h.exportService.ExportXLSX(c.Writer, comments, includeMetadata)
	case "json":
		c.Header("Content-Disposition", `attachment; filename="comments.json"`)
		c.Header("Content-Type", "application/json")
		err = h.exportService.ExportJSON(c.Writer, comments)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown export format"})
		return
	}

	if err != nil {
		logger.WithError(err).Error("Comment export failed")
	}
}

// ImportComments reads a JSON or CSV export (`?format=`, default json) from
// the request body, stores what parses, and reports per-row problems.
func (h *ExportHandler) ImportComments(c *gin.Context) {
	var result *services.ImportResult
	var err error

	switch c.DefaultQuery("format", "json") {
	case "csv":
		result, err = h.importService.ImportCSV(c.Request.Body)
	case "json":
		result, err = h.importService.ImportJSON(c.Request.Body)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown import format"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("Comment import failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored := h.importService.Store(result)
	c.JSON(http.StatusOK, gin.H{
		"imported":   stored,
		"validation": result.Validation,
	})
}
