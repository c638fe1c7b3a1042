package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"quizctl/internal/domain"
)

func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, req, &out)
	return out, err
}

// Register creates a user. The service answers with an empty body.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/api/users/register", nil, req, nil)
}

// ListQuizzes decodes the catalog into the student view; correctness flags are dropped.
func (c *Client) ListQuizzes(ctx context.Context) ([]domain.StudentQuiz, error) {
	var out []domain.StudentQuiz
	err := c.do(ctx, http.MethodGet, "/api/quizzes", nil, nil, &out)
	return out, err
}

// ListQuizzesWithAnswers reads the same catalog in the authoring view.
func (c *Client) ListQuizzesWithAnswers(ctx context.Context) ([]domain.Quiz, error) {
	var out []domain.Quiz
	err := c.do(ctx, http.MethodGet, "/api/quizzes", nil, nil, &out)
	return out, err
}

func (c *Client) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	var out domain.Quiz
	err := c.do(ctx, http.MethodGet, quizPath(quizID), nil, nil, &out)
	return out, err
}

// GetQuizForAttempt fetches a quiz in the student view.
func (c *Client) GetQuizForAttempt(ctx context.Context, quizID int64) (domain.StudentQuiz, error) {
	var out domain.StudentQuiz
	err := c.do(ctx, http.MethodGet, quizPath(quizID), nil, nil, &out)
	return out, err
}

func (c *Client) CreateQuiz(ctx context.Context, adminEmail string, req domain.CreateQuizRequest) (domain.Quiz, error) {
	var out domain.Quiz
	q := url.Values{"adminEmail": {adminEmail}}
	err := c.do(ctx, http.MethodPost, "/api/quizzes", q, req, &out)
	return out, err
}

func (c *Client) AddQuestion(ctx context.Context, quizID int64, req domain.AddQuestionRequest) (domain.Question, error) {
	var out domain.Question
	err := c.do(ctx, http.MethodPost, quizPath(quizID)+"/questions", nil, req, &out)
	return out, err
}

func (c *Client) StartAttempt(ctx context.Context, studentEmail string, quizID int64) (domain.Attempt, error) {
	var out domain.Attempt
	q := url.Values{
		"studentEmail": {studentEmail},
		"quizId":       {strconv.FormatInt(quizID, 10)},
	}
	err := c.do(ctx, http.MethodPost, "/api/attempts/start", q, nil, &out)
	return out, err
}

func (c *Client) SubmitAttempt(ctx context.Context, studentEmail string, quizID int64, answers []domain.Answer) (domain.Attempt, error) {
	var out domain.Attempt
	q := url.Values{"studentEmail": {studentEmail}}
	err := c.do(ctx, http.MethodPost, attemptsQuizPath(quizID)+"/submit", q, domain.SubmitRequest{Answers: answers}, &out)
	return out, err
}

func (c *Client) MyAttempts(ctx context.Context, studentEmail string) ([]domain.Attempt, error) {
	var out []domain.Attempt
	q := url.Values{"studentEmail": {studentEmail}}
	err := c.do(ctx, http.MethodGet, "/api/attempts/me", q, nil, &out)
	return out, err
}

func (c *Client) QuizAttempts(ctx context.Context, quizID int64) ([]domain.Attempt, error) {
	var out []domain.Attempt
	err := c.do(ctx, http.MethodGet, attemptsQuizPath(quizID), nil, nil, &out)
	return out, err
}

func (c *Client) AllAttempts(ctx context.Context) ([]domain.Attempt, error) {
	var out []domain.Attempt
	err := c.do(ctx, http.MethodGet, "/api/attempts/all", nil, nil, &out)
	return out, err
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateUserRole(ctx context.Context, userID int64, role domain.Role) (domain.User, error) {
	var out domain.User
	q := url.Values{"role": {string(role)}}
	err := c.do(ctx, http.MethodPut, "/api/users/"+strconv.FormatInt(userID, 10)+"/role", q, nil, &out)
	return out, err
}

func quizPath(quizID int64) string {
	return "/api/quizzes/" + strconv.FormatInt(quizID, 10)
}

func attemptsQuizPath(quizID int64) string {
	return "/api/attempts/quiz/" + strconv.FormatInt(quizID, 10)
}
