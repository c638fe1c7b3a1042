package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizctl/internal/domain"
)

// QuizLoader fetches the student view of a quiz from the remote service.
type QuizLoader interface {
	GetQuizForAttempt(ctx context.Context, quizID int64) (domain.StudentQuiz, error)
}

// QuizRepository keeps one snapshot per quiz for the life of the process,
// or for ttl when ttl is positive. Concurrent loads of the same quiz share
// one request.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	cache map[int64]snapshot
}

type snapshot struct {
	quiz      domain.StudentQuiz
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		cache:  make(map[int64]snapshot),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID int64) (domain.StudentQuiz, error) {
	if quiz, ok := r.lookup(quizID); ok {
		return quiz, nil
	}

	// The shared load outlives any single caller; each caller still stops
	// waiting when its own ctx is done.
	loadCtx := context.WithoutCancel(ctx)
	ch := r.sf.DoChan(flightKey(quizID), func() (interface{}, error) {
		if quiz, ok := r.lookup(quizID); ok {
			return quiz, nil
		}

		quiz, err := r.loader.GetQuizForAttempt(loadCtx, quizID)
		if err != nil {
			return domain.StudentQuiz{}, err
		}

		entry := snapshot{quiz: quiz}
		if r.ttl > 0 {
			entry.expiresAt = r.clock().Add(r.ttl)
		}
		r.mu.Lock()
		r.cache[quizID] = entry
		r.mu.Unlock()
		return quiz, nil
	})
	select {
	case <-ctx.Done():
		return domain.StudentQuiz{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.StudentQuiz{}, res.Err
		}
		return res.Val.(domain.StudentQuiz), nil
	}
}

// Invalidate drops the snapshot of one quiz.
func (r *QuizRepository) Invalidate(quizID int64) {
	r.mu.Lock()
	delete(r.cache, quizID)
	r.mu.Unlock()
}

func (r *QuizRepository) lookup(quizID int64) (domain.StudentQuiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[quizID]
	if !ok {
		return domain.StudentQuiz{}, false
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(r.clock()) {
		return domain.StudentQuiz{}, false
	}
	return entry.quiz, true
}

func flightKey(quizID int64) string {
	return strconv.FormatInt(quizID, 10)
}
