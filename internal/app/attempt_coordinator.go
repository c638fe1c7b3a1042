package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"quizctl/internal/domain"
)

// AttemptCoordinator drives a student through one quiz attempt:
//
//	NOT_STARTED --Start--> IN_PROGRESS --Submit--> COMPLETED
//
// Answers live in the draft store until submission. Scores come from the
// server only; nothing here recomputes them.
type AttemptCoordinator struct {
	api     AttemptAPI
	quizzes QuizRepository
	drafts  DraftRepository
	logger  *zap.Logger
}

func NewAttemptCoordinator(api AttemptAPI, quizzes QuizRepository, drafts DraftRepository, logger *zap.Logger) *AttemptCoordinator {
	return &AttemptCoordinator{api: api, quizzes: quizzes, drafts: drafts, logger: logger.Named("attempts")}
}

// Start begins an attempt. A failed call leaves the draft as it was.
func (c *AttemptCoordinator) Start(ctx context.Context, studentEmail string, quizID int64) (attempt domain.Attempt, err error) {
	defer func(start time.Time) {
		logOutcome(c.logger, "start attempt", start, err, zap.String("student", studentEmail), zap.Int64("quiz_id", quizID))
	}(time.Now())

	draft, err := c.draft(ctx, studentEmail, quizID)
	if err != nil {
		return domain.Attempt{}, err
	}
	if draft.Status == domain.AttemptInProgress {
		return domain.Attempt{}, domain.ErrAttemptInProgress
	}

	attempt, err = c.api.StartAttempt(ctx, studentEmail, quizID)
	if err != nil {
		return domain.Attempt{}, failure("start attempt", "Failed to start quiz", err)
	}

	// A previous completed attempt is frozen; the new one gets a fresh draft.
	if draft.Status == domain.AttemptCompleted {
		draft = domain.NewDraft(studentEmail, quizID)
	}
	draft.Status = domain.AttemptInProgress
	draft.AttemptID = attempt.ID
	if err := c.drafts.Put(ctx, draft); err != nil {
		return attempt, fmt.Errorf("save draft: %w", err)
	}
	return attempt, nil
}

// RecordAnswer stores optionID as the answer to questionID, replacing any
// earlier choice. The question is not checked against the quiz.
func (c *AttemptCoordinator) RecordAnswer(ctx context.Context, studentEmail string, quizID, questionID, optionID int64) error {
	draft, err := c.draft(ctx, studentEmail, quizID)
	if err != nil {
		return err
	}
	if draft.Status == domain.AttemptCompleted {
		return domain.ErrAttemptCompleted
	}
	if draft.Answers == nil {
		draft.Answers = make(map[int64]int64)
	}
	draft.Answers[questionID] = optionID
	return c.drafts.Put(ctx, draft)
}

// Submit sends one answer per question of the quiz, in question order.
// If any question is unanswered it fails with *domain.UnansweredError and
// nothing is sent. Submissions are never retried.
func (c *AttemptCoordinator) Submit(ctx context.Context, studentEmail string, quizID int64) (result domain.Attempt, err error) {
	defer func(start time.Time) {
		logOutcome(c.logger, "submit attempt", start, err, zap.String("student", studentEmail), zap.Int64("quiz_id", quizID))
	}(time.Now())

	draft, err := c.draft(ctx, studentEmail, quizID)
	if err != nil {
		return domain.Attempt{}, err
	}
	if draft.Status == domain.AttemptCompleted {
		return domain.Attempt{}, domain.ErrAttemptCompleted
	}

	quiz, err := c.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Attempt{}, failure("load quiz", "Failed to load quiz", err)
	}
	answers, remaining := collectAnswers(quiz, draft.Answers)
	if remaining > 0 {
		return domain.Attempt{}, &domain.UnansweredError{Remaining: remaining}
	}

	result, err = c.api.SubmitAttempt(ctx, studentEmail, quizID, answers)
	if err != nil {
		return domain.Attempt{}, failure("submit attempt", "Failed to submit quiz", err)
	}

	draft.Status = domain.AttemptCompleted
	draft.Answers = nil
	if result.ID != 0 {
		draft.AttemptID = result.ID
	}
	draft.Result = &result
	if err := c.drafts.Put(ctx, draft); err != nil {
		return result, fmt.Errorf("save draft: %w", err)
	}
	return result, nil
}

// Status returns the local projection of the attempt.
func (c *AttemptCoordinator) Status(ctx context.Context, studentEmail string, quizID int64) (domain.Draft, error) {
	return c.draft(ctx, studentEmail, quizID)
}

// Discard forgets the local draft. Nothing is sent to the server.
func (c *AttemptCoordinator) Discard(ctx context.Context, studentEmail string, quizID int64) error {
	return c.drafts.Delete(ctx, studentEmail, quizID)
}

func (c *AttemptCoordinator) ListMine(ctx context.Context, studentEmail string) (attempts []domain.Attempt, err error) {
	defer func(start time.Time) { logOutcome(c.logger, "list my attempts", start, err) }(time.Now())
	attempts, err = c.api.MyAttempts(ctx, studentEmail)
	if err != nil {
		return nil, failure("list attempts", "Failed to load attempts", err)
	}
	return attempts, nil
}

func (c *AttemptCoordinator) ListForQuiz(ctx context.Context, quizID int64) (attempts []domain.Attempt, err error) {
	defer func(start time.Time) { logOutcome(c.logger, "list quiz attempts", start, err) }(time.Now())
	attempts, err = c.api.QuizAttempts(ctx, quizID)
	if err != nil {
		return nil, failure("list attempts", "Failed to load attempts", err)
	}
	return attempts, nil
}

func (c *AttemptCoordinator) ListAll(ctx context.Context) (attempts []domain.Attempt, err error) {
	defer func(start time.Time) { logOutcome(c.logger, "list all attempts", start, err) }(time.Now())
	attempts, err = c.api.AllAttempts(ctx)
	if err != nil {
		return nil, failure("list attempts", "Failed to load attempts", err)
	}
	return attempts, nil
}

func (c *AttemptCoordinator) draft(ctx context.Context, studentEmail string, quizID int64) (domain.Draft, error) {
	draft, err := c.drafts.Get(ctx, studentEmail, quizID)
	if errors.Is(err, domain.ErrDraftNotFound) {
		return domain.NewDraft(studentEmail, quizID), nil
	}
	if err != nil {
		return domain.Draft{}, fmt.Errorf("load draft: %w", err)
	}
	return draft, nil
}

// collectAnswers orders recorded answers by the quiz's questions and counts
// the distinct questions still unanswered. Answers to unknown questions are dropped.
func collectAnswers(quiz domain.StudentQuiz, recorded map[int64]int64) ([]domain.Answer, int) {
	answers := make([]domain.Answer, 0, len(quiz.Questions))
	seen := make(map[int64]struct{}, len(quiz.Questions))
	remaining := 0
	for _, q := range quiz.Questions {
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		optionID, ok := recorded[q.ID]
		if !ok {
			remaining++
			continue
		}
		answers = append(answers, domain.Answer{QuestionID: q.ID, OptionID: optionID})
	}
	return answers, remaining
}
