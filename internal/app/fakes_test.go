package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"quizctl/internal/app"
	"quizctl/internal/domain"
	"quizctl/internal/infra/memory"
)

// remoteError mimics a transport error carrying a server message.
type remoteError struct {
	status  int
	message string
}

func (e *remoteError) Error() string         { return "request failed" }
func (e *remoteError) ServerMessage() string { return e.message }

type submitCall struct {
	email   string
	quizID  int64
	answers []domain.Answer
}

// fakeAPI implements every app.*API port in memory and records calls.
type fakeAPI struct {
	quizzes map[int64]domain.StudentQuiz

	startErr  error
	submitErr error
	loginErr  error
	loginResp domain.AuthResponse

	startCalls  int
	submits     []submitCall
	loginCalls  int
	registered  []domain.RegisterRequest
	createdBy   string
	roleUpdates int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{quizzes: map[int64]domain.StudentQuiz{1: twoQuestionQuiz()}}
}

func (f *fakeAPI) Login(_ context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return domain.AuthResponse{}, f.loginErr
	}
	return f.loginResp, nil
}

func (f *fakeAPI) Register(_ context.Context, req domain.RegisterRequest) error {
	f.registered = append(f.registered, req)
	return nil
}

func (f *fakeAPI) ListQuizzes(context.Context) ([]domain.StudentQuiz, error) {
	out := make([]domain.StudentQuiz, 0, len(f.quizzes))
	for _, q := range f.quizzes {
		out = append(out, q)
	}
	return out, nil
}

func (f *fakeAPI) GetQuizForAttempt(_ context.Context, quizID int64) (domain.StudentQuiz, error) {
	q, ok := f.quizzes[quizID]
	if !ok {
		return domain.StudentQuiz{}, &remoteError{status: 404, message: "Quiz not found"}
	}
	return q, nil
}

func (f *fakeAPI) StartAttempt(_ context.Context, email string, quizID int64) (domain.Attempt, error) {
	f.startCalls++
	if f.startErr != nil {
		return domain.Attempt{}, f.startErr
	}
	return domain.Attempt{ID: 70 + int64(f.startCalls), QuizID: quizID, StudentEmail: email, Status: domain.AttemptInProgress}, nil
}

func (f *fakeAPI) SubmitAttempt(_ context.Context, email string, quizID int64, answers []domain.Answer) (domain.Attempt, error) {
	f.submits = append(f.submits, submitCall{email: email, quizID: quizID, answers: answers})
	if f.submitErr != nil {
		return domain.Attempt{}, f.submitErr
	}
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	return domain.Attempt{ID: 71, QuizID: quizID, StudentEmail: email, Score: 1, TotalMarks: 2, Status: domain.AttemptCompleted, SubmittedAt: &now}, nil
}

func (f *fakeAPI) MyAttempts(_ context.Context, email string) ([]domain.Attempt, error) {
	return []domain.Attempt{{ID: 1, StudentEmail: email}}, nil
}

func (f *fakeAPI) QuizAttempts(_ context.Context, quizID int64) ([]domain.Attempt, error) {
	return []domain.Attempt{{ID: 1, QuizID: quizID}}, nil
}

func (f *fakeAPI) AllAttempts(context.Context) ([]domain.Attempt, error) {
	return nil, errors.New("connection refused")
}

func (f *fakeAPI) ListQuizzesWithAnswers(context.Context) ([]domain.Quiz, error) {
	return []domain.Quiz{{ID: 1}}, nil
}

func (f *fakeAPI) GetQuiz(_ context.Context, quizID int64) (domain.Quiz, error) {
	return domain.Quiz{ID: quizID}, nil
}

func (f *fakeAPI) CreateQuiz(_ context.Context, adminEmail string, req domain.CreateQuizRequest) (domain.Quiz, error) {
	f.createdBy = adminEmail
	return domain.Quiz{ID: 9, Title: req.Title, Description: req.Description, Status: req.Status, CreatedBy: adminEmail}, nil
}

func (f *fakeAPI) AddQuestion(_ context.Context, quizID int64, req domain.AddQuestionRequest) (domain.Question, error) {
	if quiz, ok := f.quizzes[quizID]; ok {
		quiz.Questions = append(quiz.Questions, domain.StudentQuestion{ID: 12, Text: req.Text, Marks: req.Marks, Type: req.Type})
		f.quizzes[quizID] = quiz
	}
	return domain.Question{ID: 12, Text: req.Text, Marks: req.Marks, Type: req.Type, Options: req.Options}, nil
}

func (f *fakeAPI) ListUsers(context.Context) ([]domain.User, error) {
	return []domain.User{{ID: 1, Email: "a@x.io", Role: domain.RoleAdmin}}, nil
}

func (f *fakeAPI) UpdateUserRole(_ context.Context, userID int64, role domain.Role) (domain.User, error) {
	f.roleUpdates++
	return domain.User{ID: userID, Role: role}, nil
}

// twoQuestionQuiz is quiz {id:1, questions:[{id:10},{id:11}]}.
func twoQuestionQuiz() domain.StudentQuiz {
	return domain.StudentQuiz{
		ID:     1,
		Title:  "Basics",
		Status: domain.QuizPublished,
		Questions: []domain.StudentQuestion{
			{ID: 10, Text: "2 + 2?", Marks: 1, Type: domain.QuestionMCQ, Options: []domain.StudentOption{{ID: 100, Text: "4"}, {ID: 101, Text: "5"}}},
			{ID: 11, Text: "Go is compiled", Marks: 1, Type: domain.QuestionTrueFalse, Options: []domain.StudentOption{{ID: 200, Text: "True"}, {ID: 201, Text: "False"}}},
		},
	}
}

type harness struct {
	api         *fakeAPI
	sessions    *memory.SessionStore
	drafts      *memory.DraftStore
	coordinator *app.AttemptCoordinator
	auth        *app.AuthService
	admin       *app.AdminService
	catalog     *app.Catalog
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	fake := newFakeAPI()
	sessions := memory.NewSessionStore()
	drafts := memory.NewDraftStore()
	quizzes := memory.NewQuizRepository(fake, 0)
	v := app.NewValidator()
	return &harness{
		api:         fake,
		sessions:    sessions,
		drafts:      drafts,
		coordinator: app.NewAttemptCoordinator(fake, quizzes, drafts, logger),
		auth:        app.NewAuthService(fake, sessions, v, logger),
		admin:       app.NewAdminService(fake, sessions, quizzes, v, logger),
		catalog:     app.NewCatalog(fake, quizzes, logger),
	}
}
