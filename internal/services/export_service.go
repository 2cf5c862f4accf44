package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// exportFormatVersion is the envelope version of JSON exports
const exportFormatVersion = "1.0"

// commentCSVHeader is the fixed column order of CSV and XLSX exports. The
// metadata columns are appended only when requested.
var commentCSVHeader = []string{"Id", "Body", "Author", "Type", "CreatedAt", "UpdatedAt", "HtmlUrl"}

var commentCSVMetadataHeader = []string{"FilePath", "Line", "Side"}

// CommentExport is the versioned JSON envelope wrapping an exported comment set
type CommentExport struct {
	Version    string            `json:"version"`
	ExportID   string            `json:"exportId"`
	ExportedAt time.Time         `json:"exportedAt"`
	ExportedBy string            `json:"exportedBy"`
	Comments   []*models.Comment `json:"comments"`
}

// ExportService writes comment sets as JSON, CSV or XLSX
type ExportService struct {
	authService *AuthService
}

func NewExportService(authService *AuthService) *ExportService {
	return &ExportService{authService: authService}
}

func (s *ExportService) exporterIdentity() string {
	if user := s.authService.CurrentUser(); user != nil {
		return user.Login
	}
	return "anonymous"
}

// ExportJSON writes the comments wrapped in a versioned envelope
func (s *ExportService) ExportJSON(w io.Writer, comments []*models.Comment) error {
	envelope := CommentExport{
		Version:    exportFormatVersion,
		ExportID:   uuid.New().String(),
		ExportedAt: time.Now(),
		ExportedBy: s.exporterIdentity(),
		Comments:   comments,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		return fmt.Errorf("failed to write JSON export: %w", err)
	}
	return nil
}

// ExportCSV writes the comments in the fixed column order. Multi-line bodies
// and embedded quotes come out quoted per RFC 4180.
func (s *ExportService) ExportCSV(w io.Writer, comments []*models.Comment, includeMetadata bool) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader(includeMetadata)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, comment := range comments {
		if err := writer.Write(commentToRow(comment, includeMetadata)); err != nil {
			return fmt.Errorf("failed to write CSV row for comment %d: %w", comment.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportXLSX writes the comments as a spreadsheet with the CSV column order
func (s *ExportService) ExportXLSX(w io.Writer, comments []*models.Comment, includeMetadata bool) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Comments"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := csvHeader(includeMetadata)
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}

	for i, comment := range comments {
		row := commentToRow(comment, includeMetadata)
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write XLSX export: %w", err)
	}
	return nil
}

func csvHeader(includeMetadata bool) []string {
	header := append([]string{}, commentCSVHeader...)
	if includeMetadata {
		header = append(header, commentCSVMetadataHeader...)
	}
	return header
}

func commentToRow(c *models.Comment, includeMetadata bool) []string {
	row := []string{
		strconv.FormatInt(c.ID, 10),
		c.Body,
		stringOrEmpty(c.AuthorLogin),
		string(c.Type),
		timeOrEmpty(c.GithubCreatedAt),
		timeOrEmpty(c.GithubUpdatedAt),
		stringOrEmpty(c.HTMLURL),
	}
	if includeMetadata {
		line := ""
		if c.Line != nil {
			line = strconv.Itoa(*c.Line)
		}
		row = append(row, stringOrEmpty(c.FilePath), line, stringOrEmpty(c.Side))
	}
	return row
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeOrEmpty(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
