package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"quizctl/internal/domain"
)

// AdminService covers quiz authoring and user management. Every call needs
// a stored ADMIN session; the server still enforces the role on its side.
type AdminService struct {
	api       AdminAPI
	sessions  SessionRepository
	quizzes   QuizRepository
	validator *Validator
	logger    *zap.Logger
}

func NewAdminService(api AdminAPI, sessions SessionRepository, quizzes QuizRepository, v *Validator, logger *zap.Logger) *AdminService {
	return &AdminService{api: api, sessions: sessions, quizzes: quizzes, validator: v, logger: logger.Named("admin")}
}

// RequireAdmin returns the stored session if it carries the ADMIN role.
func (s *AdminService) RequireAdmin(ctx context.Context) (domain.Session, error) {
	session, err := s.sessions.Load(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if session.Role != domain.RoleAdmin {
		return domain.Session{}, domain.ErrForbidden
	}
	return session, nil
}

// CreateQuiz creates a quiz owned by the logged-in admin.
func (s *AdminService) CreateQuiz(ctx context.Context, req domain.CreateQuizRequest) (quiz domain.Quiz, err error) {
	defer func(start time.Time) { logOutcome(s.logger, "create quiz", start, err, zap.String("title", req.Title)) }(time.Now())

	session, err := s.RequireAdmin(ctx)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := s.validator.Validate(req); err != nil {
		return domain.Quiz{}, err
	}
	quiz, err = s.api.CreateQuiz(ctx, session.Email, req)
	if err != nil {
		return domain.Quiz{}, failure("create quiz", "Failed to create quiz", err)
	}
	return quiz, nil
}

// AddQuestion appends a question to a quiz and drops the quiz's snapshot so
// the next attempt sees the new question.
func (s *AdminService) AddQuestion(ctx context.Context, quizID int64, req domain.AddQuestionRequest) (question domain.Question, err error) {
	defer func(start time.Time) { logOutcome(s.logger, "add question", start, err, zap.Int64("quiz_id", quizID)) }(time.Now())

	if _, err := s.RequireAdmin(ctx); err != nil {
		return domain.Question{}, err
	}
	if err := s.validator.Validate(req); err != nil {
		return domain.Question{}, err
	}
	question, err = s.api.AddQuestion(ctx, quizID, req)
	if err != nil {
		return domain.Question{}, failure("add question", "Failed to add question", err)
	}
	s.quizzes.Invalidate(quizID)
	return question, nil
}

// Quizzes lists every quiz in the authoring view.
func (s *AdminService) Quizzes(ctx context.Context) (quizzes []domain.Quiz, err error) {
	defer func(start time.Time) { logOutcome(s.logger, "list quizzes", start, err) }(time.Now())

	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	quizzes, err = s.api.ListQuizzesWithAnswers(ctx)
	if err != nil {
		return nil, failure("list quizzes", "Failed to load data", err)
	}
	return quizzes, nil
}

func (s *AdminService) Quiz(ctx context.Context, quizID int64) (quiz domain.Quiz, err error) {
	defer func(start time.Time) { logOutcome(s.logger, "get quiz", start, err, zap.Int64("quiz_id", quizID)) }(time.Now())

	if _, err := s.RequireAdmin(ctx); err != nil {
		return domain.Quiz{}, err
	}
	quiz, err = s.api.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, failure("get quiz", "Failed to load quiz", err)
	}
	return quiz, nil
}

func (s *AdminService) Users(ctx context.Context) (users []domain.User, err error) {
	defer func(start time.Time) { logOutcome(s.logger, "list users", start, err) }(time.Now())

	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	users, err = s.api.ListUsers(ctx)
	if err != nil {
		return nil, failure("list users", "Failed to load data", err)
	}
	return users, nil
}

// UpdateRole changes a user's role.
func (s *AdminService) UpdateRole(ctx context.Context, userID int64, role domain.Role) (user domain.User, err error) {
	defer func(start time.Time) {
		logOutcome(s.logger, "update role", start, err, zap.Int64("user_id", userID), zap.String("role", string(role)))
	}(time.Now())

	if _, err := s.RequireAdmin(ctx); err != nil {
		return domain.User{}, err
	}
	if !role.Valid() {
		return domain.User{}, domain.ValidationErrors{{Field: "role", Message: "must be STUDENT or ADMIN"}}
	}
	user, err = s.api.UpdateUserRole(ctx, userID, role)
	if err != nil {
		return domain.User{}, failure("update role", "Failed to update user role", err)
	}
	return user, nil
}
