package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"quizctl/internal/domain"
)

// Catalog fetches quizzes for students. Listing is whatever the server
// returns: filtering drafts out is the server's job, not ours.
type Catalog struct {
	api     CatalogAPI
	quizzes QuizRepository
	logger  *zap.Logger
}

func NewCatalog(api CatalogAPI, quizzes QuizRepository, logger *zap.Logger) *Catalog {
	return &Catalog{api: api, quizzes: quizzes, logger: logger.Named("catalog")}
}

func (c *Catalog) List(ctx context.Context) (quizzes []domain.StudentQuiz, err error) {
	defer func(start time.Time) { logOutcome(c.logger, "list quizzes", start, err) }(time.Now())

	quizzes, err = c.api.ListQuizzes(ctx)
	if err != nil {
		return nil, failure("list quizzes", "Failed to load quizzes", err)
	}
	return quizzes, nil
}

// ForAttempt returns the student view of one quiz.
func (c *Catalog) ForAttempt(ctx context.Context, quizID int64) (quiz domain.StudentQuiz, err error) {
	defer func(start time.Time) { logOutcome(c.logger, "load quiz", start, err, zap.Int64("quiz_id", quizID)) }(time.Now())

	quiz, err = c.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.StudentQuiz{}, failure("load quiz", "Failed to load quiz", err)
	}
	return quiz, nil
}
