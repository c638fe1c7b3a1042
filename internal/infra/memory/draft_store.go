package memory

import (
	"context"
	"strconv"
	"sync"

	"quizctl/internal/domain"
)

// DraftStore is an in-memory implementation of app.DraftRepository.
// Stored drafts are copied on the way in and out so callers never share maps.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string]domain.Draft
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]domain.Draft)}
}

func (s *DraftStore) Get(_ context.Context, studentEmail string, quizID int64) (domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[key(studentEmail, quizID)]
	if !ok {
		return domain.Draft{}, domain.ErrDraftNotFound
	}
	return cloneDraft(draft), nil
}

func (s *DraftStore) Put(_ context.Context, draft domain.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key(draft.StudentEmail, draft.QuizID)] = cloneDraft(draft)
	return nil
}

func (s *DraftStore) Delete(_ context.Context, studentEmail string, quizID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key(studentEmail, quizID))
	return nil
}

func key(studentEmail string, quizID int64) string {
	return studentEmail + "/" + strconv.FormatInt(quizID, 10)
}

func cloneDraft(d domain.Draft) domain.Draft {
	if d.Answers != nil {
		answers := make(map[int64]int64, len(d.Answers))
		for q, o := range d.Answers {
			answers[q] = o
		}
		d.Answers = answers
	}
	if d.Result != nil {
		result := *d.Result
		d.Result = &result
	}
	return d
}
