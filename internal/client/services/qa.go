package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ashiqsultan/inbox-memory-ai/internal/client/client"
	"github.com/ashiqsultan/inbox-memory-ai/internal/client/models"
	"github.com/ashiqsultan/inbox-memory-ai/internal/logging"
)

// FallbackAnswer is shown instead of a raw error when a question cannot be
// answered due to a transport failure. QA never leaves the interaction in an
// ambiguous "no answer" state.
const FallbackAnswer = "Sorry, I couldn't answer that right now. Please try again."

// ErrEmptyQuestion is returned for blank input; no request is issued.
var ErrEmptyQuestion = errors.New("question must not be empty")

// QAService manages the question/answer interaction against the knowledge
// base. Only one exchange is kept: each accepted question replaces the
// previous exchange wholesale.
//
// Ordering is by issuance, not arrival: when a new Ask supersedes an
// outstanding one, the late response of the superseded call is discarded on
// arrival and can never overwrite the newer answer.
type QAService struct {
	client client.Client
	log    logging.Logger

	mu      sync.Mutex
	issued  uint64 // issue number handed to the most recent accepted Ask
	applied uint64 // issue number of the exchange currently displayed
	current *models.QAExchange
}

func NewQAService(c client.Client, log logging.Logger) *QAService {
	return &QAService{client: c, log: log}
}

// Ask submits a question and returns the resulting exchange. Blank input is
// rejected locally with ErrEmptyQuestion. A transport failure produces a
// fallback exchange carrying FallbackAnswer instead of an error — except an
// authorization failure, which is propagated: the session is gone and a
// faked answer would mask that.
func (s *QAService) Ask(ctx context.Context, question string) (*models.QAExchange, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	answer, err := s.client.Ask(ctx, question)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return nil, err
		}
		s.log.Warn(ctx, "question failed, using fallback answer", "error", err)
		answer = FallbackAnswer
	}

	exchange := &models.QAExchange{Question: question, Answer: answer}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		// superseded: a newer question has already been answered,
		// or the interaction was cleared after this one was issued
		return exchange, nil
	}
	s.applied = seq
	s.current = exchange
	return exchange, nil
}

// Current returns the exchange that is authoritative for display, or nil
// when there is none.
func (s *QAService) Current() *models.QAExchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Clear resets to no active exchange. Responses of questions issued before
// the clear stay discarded.
func (s *QAService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = s.issued
	s.current = nil
}
