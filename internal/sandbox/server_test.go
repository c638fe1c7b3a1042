package sandbox_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"quizctl/internal/api"
	"quizctl/internal/app"
	"quizctl/internal/domain"
	"quizctl/internal/infra/memory"
	"quizctl/internal/sandbox"
)

const (
	adminEmail    = "admin@quiz.io"
	adminPassword = "admin-pw"
)

// user is one CLI identity with its own session and draft stores.
type user struct {
	auth     *app.AuthService
	catalog  *app.Catalog
	attempts *app.AttemptCoordinator
	admin    *app.AdminService
}

func newSandbox(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv, err := sandbox.New(sandbox.Options{
		Secret:   "test-secret",
		TokenTTL: time.Hour,
		Admin:    &domain.RegisterRequest{Name: "Admin", Email: adminEmail, Password: adminPassword},
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newUser(t *testing.T, baseURL string) *user {
	t.Helper()
	logger := zaptest.NewLogger(t)
	sessions := memory.NewSessionStore()
	u := &user{}
	client := api.NewClient(baseURL,
		api.WithTokenSource(func(ctx context.Context) (string, error) { return u.auth.Token(ctx) }),
		api.WithLogger(logger),
	)
	v := app.NewValidator()
	quizzes := memory.NewQuizRepository(client, 0)
	u.auth = app.NewAuthService(client, sessions, v, logger)
	u.catalog = app.NewCatalog(client, quizzes, logger)
	u.attempts = app.NewAttemptCoordinator(client, quizzes, memory.NewDraftStore(), logger)
	u.admin = app.NewAdminService(client, sessions, quizzes, v, logger)
	return u
}

// seedQuiz creates a quiz with an MCQ worth 2 and a TRUE_FALSE worth 1.
func seedQuiz(t *testing.T, admin *user, status domain.QuizStatus) domain.Quiz {
	t.Helper()
	ctx := context.Background()
	quiz, err := admin.admin.CreateQuiz(ctx, domain.CreateQuizRequest{Title: "Go basics", Description: "Warm-up", Status: status})
	require.NoError(t, err)

	_, err = admin.admin.AddQuestion(ctx, quiz.ID, domain.AddQuestionRequest{
		Text: "2 + 2?", Marks: 2, Type: domain.QuestionMCQ,
		Options: []domain.Option{{Text: "3"}, {Text: "4", IsCorrect: true}, {Text: "5"}},
	})
	require.NoError(t, err)
	_, err = admin.admin.AddQuestion(ctx, quiz.ID, domain.AddQuestionRequest{
		Text: "Go has generics", Marks: 1, Type: domain.QuestionTrueFalse,
		Options: []domain.Option{{Text: "True", IsCorrect: true}, {Text: "False"}},
	})
	require.NoError(t, err)

	quiz, err = admin.admin.Quiz(ctx, quiz.ID)
	require.NoError(t, err)
	return quiz
}

func TestRegisterThenLoginCarriesRole(t *testing.T) {
	ctx := context.Background()
	ts := newSandbox(t)
	u := newUser(t, ts.URL)

	require.NoError(t, u.auth.Register(ctx, domain.RegisterRequest{Name: "Sam", Email: "sam@quiz.io", Password: "pw", Role: domain.RoleStudent}))
	session, err := u.auth.Login(ctx, domain.LoginRequest{Email: "sam@quiz.io", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, session.Role)
	assert.Equal(t, "sam@quiz.io", session.Email)

	claims, err := u.auth.Claims(ctx)
	require.NoError(t, err)
	assert.Equal(t, "STUDENT", claims.Role)

	err = u.auth.Register(ctx, domain.RegisterRequest{Name: "Sam", Email: "sam@quiz.io", Password: "pw", Role: domain.RoleStudent})
	require.EqualError(t, err, "Email already registered")

	_, err = u.auth.Login(ctx, domain.LoginRequest{Email: "sam@quiz.io", Password: "wrong"})
	require.EqualError(t, err, "Invalid email or password")
	stored, err := u.auth.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, stored)
}

func TestStudentSeesOnlyPublishedQuizzes(t *testing.T) {
	ctx := context.Background()
	ts := newSandbox(t)
	admin := newUser(t, ts.URL)
	_, err := admin.auth.Login(ctx, domain.LoginRequest{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)

	published := seedQuiz(t, admin, domain.QuizPublished)
	draft := seedQuiz(t, admin, domain.QuizDraft)

	all, err := admin.admin.Quizzes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	student := newUser(t, ts.URL)
	require.NoError(t, student.auth.Register(ctx, domain.RegisterRequest{Name: "Sam", Email: "sam@quiz.io", Password: "pw", Role: domain.RoleStudent}))
	_, err = student.auth.Login(ctx, domain.LoginRequest{Email: "sam@quiz.io", Password: "pw"})
	require.NoError(t, err)

	listed, err := student.catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, published.ID, listed[0].ID)

	_, err = student.catalog.ForAttempt(ctx, draft.ID)
	require.EqualError(t, err, "Quiz not found")

	_, err = student.attempts.Start(ctx, "sam@quiz.io", draft.ID)
	require.Error(t, err)

	_, err = student.admin.Users(ctx)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestStudentPayloadHasNoCorrectnessFlags(t *testing.T) {
	ctx := context.Background()
	ts := newSandbox(t)
	admin := newUser(t, ts.URL)
	_, err := admin.auth.Login(ctx, domain.LoginRequest{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	quiz := seedQuiz(t, admin, domain.QuizPublished)

	student := newUser(t, ts.URL)
	require.NoError(t, student.auth.Register(ctx, domain.RegisterRequest{Name: "Sam", Email: "sam@quiz.io", Password: "pw", Role: domain.RoleStudent}))
	_, err = student.auth.Login(ctx, domain.LoginRequest{Email: "sam@quiz.io", Password: "pw"})
	require.NoError(t, err)
	token, err := student.auth.Token(ctx)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/quizzes/"+strconv.FormatInt(quiz.ID, 10), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "isCorrect")
}

func TestAttemptFlowScoredByServer(t *testing.T) {
	ctx := context.Background()
	ts := newSandbox(t)
	admin := newUser(t, ts.URL)
	_, err := admin.auth.Login(ctx, domain.LoginRequest{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	quiz := seedQuiz(t, admin, domain.QuizPublished)
	mcq, tf := quiz.Questions[0], quiz.Questions[1]

	const email = "sam@quiz.io"
	student := newUser(t, ts.URL)
	require.NoError(t, student.auth.Register(ctx, domain.RegisterRequest{Name: "Sam", Email: email, Password: "pw", Role: domain.RoleStudent}))
	_, err = student.auth.Login(ctx, domain.LoginRequest{Email: email, Password: "pw"})
	require.NoError(t, err)

	attempt, err := student.attempts.Start(ctx, email, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptInProgress, attempt.Status)

	// Correct MCQ, wrong TRUE_FALSE: 2 of 3.
	require.NoError(t, student.attempts.RecordAnswer(ctx, email, quiz.ID, mcq.ID, mcq.Options[1].ID))
	_, err = student.attempts.Submit(ctx, email, quiz.ID)
	assert.ErrorIs(t, err, domain.ErrUnansweredQuestions)

	require.NoError(t, student.attempts.RecordAnswer(ctx, email, quiz.ID, tf.ID, tf.Options[1].ID))
	result, err := student.attempts.Submit(ctx, email, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, attempt.ID, result.ID)
	assert.Equal(t, domain.AttemptCompleted, result.Status)
	assert.Equal(t, float64(2), result.Score)
	assert.Equal(t, float64(3), result.TotalMarks)
	require.NotNil(t, result.SubmittedAt)

	mine, err := student.attempts.ListMine(ctx, email)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, result.ID, mine[0].ID)

	byQuiz, err := admin.attempts.ListForQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Len(t, byQuiz, 1)

	_, err = student.attempts.ListForQuiz(ctx, quiz.ID)
	require.Error(t, err)
	var ae *domain.ActionError
	require.ErrorAs(t, err, &ae)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestStudentCannotActForAnotherStudent(t *testing.T) {
	ctx := context.Background()
	ts := newSandbox(t)
	admin := newUser(t, ts.URL)
	_, err := admin.auth.Login(ctx, domain.LoginRequest{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	quiz := seedQuiz(t, admin, domain.QuizPublished)

	student := newUser(t, ts.URL)
	require.NoError(t, student.auth.Register(ctx, domain.RegisterRequest{Name: "Sam", Email: "sam@quiz.io", Password: "pw", Role: domain.RoleStudent}))
	_, err = student.auth.Login(ctx, domain.LoginRequest{Email: "sam@quiz.io", Password: "pw"})
	require.NoError(t, err)

	_, err = student.attempts.Start(ctx, "someone@quiz.io", quiz.ID)
	require.EqualError(t, err, "Cannot act on another student's attempts")
}

func TestUpdateRolePromotesUser(t *testing.T) {
	ctx := context.Background()
	ts := newSandbox(t)
	admin := newUser(t, ts.URL)
	_, err := admin.auth.Login(ctx, domain.LoginRequest{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)

	student := newUser(t, ts.URL)
	require.NoError(t, student.auth.Register(ctx, domain.RegisterRequest{Name: "Sam", Email: "sam@quiz.io", Password: "pw", Role: domain.RoleStudent}))

	users, err := admin.admin.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	var samID int64
	for _, u := range users {
		if u.Email == "sam@quiz.io" {
			samID = u.ID
		}
	}
	require.NotZero(t, samID)

	updated, err := admin.admin.UpdateRole(ctx, samID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)

	session, err := student.auth.Login(ctx, domain.LoginRequest{Email: "sam@quiz.io", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, session.Role)
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	ts := newSandbox(t)

	resp, err := http.Get(ts.URL + "/api/quizzes")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.NotEmpty(t, payload["message"])

	health, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	body, _ := io.ReadAll(health.Body)
	assert.Equal(t, "ok", strings.TrimSpace(string(body)))
}
