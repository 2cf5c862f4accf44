package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/pkg/logger"
)

// ImportResult pairs the comments that made it through an import with the
// per-row problems collected along the way.
type ImportResult struct {
	Comments   []*models.Comment        `json:"comments"`
	Validation *models.ValidationResult `json:"validation"`
}

// ImportService parses comment exports best-effort: malformed rows are
// reported in the validation result while the rest import normally.
type ImportService struct {
	commentRepo interface {
		Upsert(c *models.Comment) error
	}
}

func NewImportService(commentRepo interface {
	Upsert(c *models.Comment) error
}) *ImportService {
	return &ImportService{commentRepo: commentRepo}
}

// ImportJSON parses a versioned JSON export envelope
func (s *ImportService) ImportJSON(r io.Reader) (*ImportResult, error) {
	var envelope CommentExport
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to parse JSON import: %w", err)
	}

	result := &ImportResult{Validation: &models.ValidationResult{}}
	if envelope.Version != exportFormatVersion {
		result.Validation.AddWarning("export version %q differs from %q", envelope.Version, exportFormatVersion)
	}

	for i, comment := range envelope.Comments {
		if comment == nil {
			result.Validation.AddError("comment %d: empty record", i+1)
			continue
		}
		result.Comments = append(result.Comments, comment)
	}

	validation := ValidateComments(result.Comments)
	result.Validation.Merge(validation)
	return result, nil
}

// ImportCSV parses a CSV export. Quoted multi-line fields and escaped quotes
// are handled by the reader; rows that fail to parse are collected as errors
// while the remaining rows import.
func (s *ImportService) ImportCSV(r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) < len(commentCSVHeader) {
		return nil, fmt.Errorf("CSV header has %d columns, expected at least %d", len(header), len(commentCSVHeader))
	}
	hasMetadata := len(header) >= len(commentCSVHeader)+len(commentCSVMetadataHeader)

	result := &ImportResult{Validation: &models.ValidationResult{}}
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Validation.AddError("row %d: %v", rowNum, err)
			continue
		}

		comment, err := rowToComment(record, hasMetadata)
		if err != nil {
			result.Validation.AddError("row %d: %v", rowNum, err)
			continue
		}
		result.Comments = append(result.Comments, comment)
	}

	validation := ValidateComments(result.Comments)
	result.Validation.Merge(validation)
	return result, nil
}

// Store upserts imported comments, reporting per-comment failures instead of
// aborting the batch.
func (s *ImportService) Store(result *ImportResult) int {
	stored := 0
	for _, comment := range result.Comments {
		if err := s.commentRepo.Upsert(comment); err != nil {
			logger.WithError(err).Warnf("Failed to store imported comment %d", comment.ID)
			result.Validation.AddError("comment %d: %v", comment.ID, err)
			continue
		}
		stored++
	}
	return stored
}

func rowToComment(record []string, hasMetadata bool) (*models.Comment, error) {
	if len(record) < len(commentCSVHeader) {
		return nil, fmt.Errorf("has %d columns, expected at least %d", len(record), len(commentCSVHeader))
	}

	id, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", record[0])
	}

	comment := &models.Comment{
		ID:   id,
		Body: record[1],
		Type: models.CommentType(record[3]),
	}
	if record[2] != "" {
		author := record[2]
		comment.AuthorLogin = &author
	}
	switch comment.Type {
	case models.CommentTypeIssue, models.CommentTypeReview, models.CommentTypeCommit:
	default:
		return nil, fmt.Errorf("unknown comment type %q", record[3])
	}

	if record[4] != "" {
		createdAt, err := time.Parse(time.RFC3339, record[4])
		if err != nil {
			return nil, fmt.Errorf("invalid CreatedAt %q", record[4])
		}
		comment.GithubCreatedAt = &createdAt
	}
	if record[5] != "" {
		updatedAt, err := time.Parse(time.RFC3339, record[5])
		if err != nil {
			return nil, fmt.Errorf("invalid UpdatedAt %q", record[5])
		}
		comment.GithubUpdatedAt = &updatedAt
	}
	if record[6] != "" {
		htmlURL := record[6]
		comment.HTMLURL = &htmlURL
	}

	if hasMetadata && len(record) >= len(commentCSVHeader)+3 {
		base := len(commentCSVHeader)
		if record[base] != "" {
			path := record[base]
			comment.FilePath = &path
		}
		if record[base+1] != "" {
			line, err := strconv.Atoi(record[base+1])
			if err != nil {
				return nil, fmt.Errorf("invalid Line %q", record[base+1])
			}
			comment.Line = &line
		}
		if record[base+2] != "" {
			side := record[base+2]
			comment.Side = &side
		}
	}

	return comment, nil
}
