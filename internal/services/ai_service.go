package services

import (
	"fmt"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/pkg/config"
)

// AIService answers review-assistance requests. The provider integration is
// a stub: responses are canned strings, and the configured model, endpoint
// and credentials are carried but never called.
type AIService struct {
	cfg config.AIConfig
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{cfg: cfg}
}

func (s *AIService) Enabled() bool {
	return s.cfg.Enabled
}

// SuggestReview produces a canned review suggestion for a pull request
func (s *AIService) SuggestReview(pr *models.PullRequest) (string, error) {
	if !s.cfg.Enabled {
		return "", ErrAIDisabled
	}
	if pr == nil {
		return "", fmt.Errorf("pull request is required")
	}

	return fmt.Sprintf(
		"Review suggestion for #%d (%s): the change touches %d files (+%d/-%d). "+
			"Start with the largest diff hunks, confirm test coverage for the modified paths, "+
			"and check the %s branch for conflicting work.",
		pr.Number, pr.Title, pr.ChangedFiles, pr.Additions, pr.Deletions,
		stringOrEmpty(pr.BaseBranch),
	), nil
}

// SummarizeComments produces a canned summary of a comment thread
func (s *AIService) SummarizeComments(comments []*models.Comment) (string, error) {
	if !s.cfg.Enabled {
		return "", ErrAIDisabled
	}

	reviewers := map[string]struct{}{}
	for _, comment := range comments {
		if comment.AuthorLogin != nil {
			reviewers[*comment.AuthorLogin] = struct{}{}
		}
	}

	return fmt.Sprintf(
		"Summary: %d comments from %d participants. The discussion centers on "+
			"implementation details; no blocking objections detected. (model: %s)",
		len(comments), len(reviewers), s.cfg.Model,
	), nil
}
