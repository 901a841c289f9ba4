package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashiqsultan/inbox-memory-ai/internal/client/client"
	"github.com/ashiqsultan/inbox-memory-ai/internal/client/models"
)

// KnowledgeService reads the email knowledge base. It holds no state and
// does no caching: every call hits the backend, and independent calls carry
// no ordering guarantee relative to each other.
type KnowledgeService interface {
	// List returns all summaries in backend order. An account with no
	// emails yields an empty slice, not an error.
	List(ctx context.Context) ([]models.EmailSummary, error)

	// Get fetches one email by id. An id that does not exist or does not
	// belong to the current session yields client.ErrNotFound.
	Get(ctx context.Context, id string) (*models.EmailDetail, error)
}

type knowledgeService struct {
	client client.Client
}

func NewKnowledgeService(c client.Client) KnowledgeService {
	return &knowledgeService{client: c}
}

func (s *knowledgeService) List(ctx context.Context) ([]models.EmailSummary, error) {
	summaries, err := s.client.ListEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	if summaries == nil {
		summaries = []models.EmailSummary{}
	}
	return summaries, nil
}

func (s *knowledgeService) Get(ctx context.Context, id string) (*models.EmailDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, client.ErrNotFound
	}

	detail, err := s.client.GetEmail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get email %s: %w", id, err)
	}
	return detail, nil
}
