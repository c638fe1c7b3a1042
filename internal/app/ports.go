package app

import (
	"context"

	"quizctl/internal/domain"
)

// SessionRepository holds the authenticated identity between commands.
// Save and Clear must replace or remove the whole record in one step.
type SessionRepository interface {
	// Load returns domain.ErrNotLoggedIn when no session is stored.
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}

// DraftRepository keeps the local state of attempts, keyed by (student, quiz).
type DraftRepository interface {
	// Get returns domain.ErrDraftNotFound for unknown pairs.
	Get(ctx context.Context, studentEmail string, quizID int64) (domain.Draft, error)
	Put(ctx context.Context, draft domain.Draft) error
	Delete(ctx context.Context, studentEmail string, quizID int64) error
}

// QuizRepository loads the student view of a quiz. Invalidate forgets any
// snapshot held for quizID.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID int64) (domain.StudentQuiz, error)
	Invalidate(quizID int64)
}

type AuthAPI interface {
	Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) error
}

type CatalogAPI interface {
	ListQuizzes(ctx context.Context) ([]domain.StudentQuiz, error)
}

type AttemptAPI interface {
	StartAttempt(ctx context.Context, studentEmail string, quizID int64) (domain.Attempt, error)
	SubmitAttempt(ctx context.Context, studentEmail string, quizID int64, answers []domain.Answer) (domain.Attempt, error)
	MyAttempts(ctx context.Context, studentEmail string) ([]domain.Attempt, error)
	QuizAttempts(ctx context.Context, quizID int64) ([]domain.Attempt, error)
	AllAttempts(ctx context.Context) ([]domain.Attempt, error)
}

type AdminAPI interface {
	ListQuizzesWithAnswers(ctx context.Context) ([]domain.Quiz, error)
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
	CreateQuiz(ctx context.Context, adminEmail string, req domain.CreateQuizRequest) (domain.Quiz, error)
	AddQuestion(ctx context.Context, quizID int64, req domain.AddQuestionRequest) (domain.Question, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUserRole(ctx context.Context, userID int64, role domain.Role) (domain.User, error)
}
