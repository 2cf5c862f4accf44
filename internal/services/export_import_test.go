package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleComments() []*models.Comment {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	alice := "alice"
	path := "internal/cache.go"
	line := 12
	side := "RIGHT"
	return []*models.Comment{
		{
			ID:              1,
			PullRequestID:   10,
			Type:            models.CommentTypeIssue,
			Body:            "line one\nline two, with a comma and \"quotes\"",
			AuthorLogin:     &alice,
			GithubCreatedAt: &created,
		},
		{
			ID:              2,
			PullRequestID:   10,
			Type:            models.CommentTypeReview,
			Body:            "rename this",
			AuthorLogin:     &alice,
			FilePath:        &path,
			Line:            &line,
			Side:            &side,
			GithubCreatedAt: &created,
		},
	}
}

func TestExportImportCSVRoundTrip(t *testing.T) {
	exporter := NewExportService(&AuthService{})
	importer := NewImportService(nil)

	var buf bytes.Buffer
	require.NoError(t, exporter.ExportCSV(&buf, sampleComments(), true))

	result, err := importer.ImportCSV(&buf)
	require.NoError(t, err)
	require.Len(t, result.Comments, 2)
	assert.True(t, result.Validation.IsValid())

	first := result.Comments[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "line one\nline two, with a comma and \"quotes\"", first.Body)
	assert.Equal(t, "alice", *first.AuthorLogin)

	second := result.Comments[1]
	require.NotNil(t, second.FilePath)
	assert.Equal(t, "internal/cache.go", *second.FilePath)
	require.NotNil(t, second.Line)
	assert.Equal(t, 12, *second.Line)
}

func TestExportImportJSONRoundTrip(t *testing.T) {
	exporter := NewExportService(&AuthService{})
	importer := NewImportService(nil)

	var buf bytes.Buffer
	require.NoError(t, exporter.ExportJSON(&buf, sampleComments()))

	result, err := importer.ImportJSON(&buf)
	require.NoError(t, err)
	require.Len(t, result.Comments, 2)
	assert.True(t, result.Validation.IsValid())
	assert.Equal(t, sampleComments()[0].Body, result.Comments[0].Body)
}

func TestImportJSONVersionMismatchWarns(t *testing.T) {
	importer := NewImportService(nil)

	payload := `{"version":"0.9","exportId":"x","comments":[]}`
	result, err := importer.ImportJSON(bytes.NewBufferString(payload))
	require.NoError(t, err)
	assert.True(t, result.Validation.IsValid(), "a version mismatch is a warning, not an error")
	assert.NotEmpty(t, result.Validation.Warnings)
}

func TestImportCSVCollectsBadRows(t *testing.T) {
	importer := NewImportService(nil)

	csvData := "Id,Body,Author,Type,CreatedAt,UpdatedAt,HtmlUrl\n" +
		"1,fine,alice,issue,2025-06-01T12:00:00Z,,\n" +
		"not-a-number,broken,bob,issue,,,\n" +
		"3,also fine,carol,review,2025-06-01T12:00:00Z,,\n"

	result, err := importer.ImportCSV(bytes.NewBufferString(csvData))
	require.NoError(t, err)
	assert.Len(t, result.Comments, 2, "good rows import around the bad one")
	assert.False(t, result.Validation.IsValid())
}

func TestImportCSVRejectsUnknownType(t *testing.T) {
	importer := NewImportService(nil)

	csvData := "Id,Body,Author,Type,CreatedAt,UpdatedAt,HtmlUrl\n" +
		"1,body,alice,gossip,2025-06-01T12:00:00Z,,\n"

	result, err := importer.ImportCSV(bytes.NewBufferString(csvData))
	require.NoError(t, err)
	assert.Empty(t, result.Comments)
	assert.False(t, result.Validation.IsValid())
}

func TestImportStoreReportsFailures(t *testing.T) {
	st := newTestStack(t)
	importer := NewImportService(st.commentRepo)

	require.NoError(t, st.repoRepo.Upsert(&models.Repository{ID: 1, Name: "alpha", FullName: "octo/alpha"}))
	require.NoError(t, st.prRepo.Upsert(&models.PullRequest{
		ID: 10, RepositoryID: 1, Number: 1, Title: "First", State: models.PullRequestOpen,
	}))

	created := time.Now()
	result := &ImportResult{
		Validation: &models.ValidationResult{},
		Comments: []*models.Comment{
			{ID: 1, PullRequestID: 10, Type: models.CommentTypeIssue, Body: "ok", GithubCreatedAt: &created},
			{ID: 2, PullRequestID: 999, Type: models.CommentTypeIssue, Body: "dangling pull request", GithubCreatedAt: &created},
		},
	}

	stored := importer.Store(result)
	assert.Equal(t, 1, stored)
	assert.False(t, result.Validation.IsValid())
}

func TestExportXLSXIsReadable(t *testing.T) {
	exporter := NewExportService(&AuthService{})

	var buf bytes.Buffer
	require.NoError(t, exporter.ExportXLSX(&buf, sampleComments(), true))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Comments")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two comments")
	assert.Equal(t, "Id", rows[0][0])
	assert.Equal(t, "rename this", rows[2][1])
}
