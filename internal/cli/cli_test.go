package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"quizctl/internal/domain"
	"quizctl/internal/sandbox"
)

func TestBuildOptions(t *testing.T) {
	opts, err := buildOptions(domain.QuestionTrueFalse, nil, []int{2})
	require.NoError(t, err)
	assert.Equal(t, []domain.Option{{Text: "True"}, {Text: "False", IsCorrect: true}}, opts)

	opts, err = buildOptions(domain.QuestionMCQ, []string{"a", "b", "c"}, []int{1, 3})
	require.NoError(t, err)
	assert.True(t, opts[0].IsCorrect)
	assert.False(t, opts[1].IsCorrect)
	assert.True(t, opts[2].IsCorrect)

	_, err = buildOptions(domain.QuestionMCQ, []string{"a", "b"}, []int{3})
	assert.EqualError(t, err, "--correct 3 is out of range 1..2")
}

// quizctl runs one CLI invocation; state persists in the file store between calls.
func quizctl(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api", apiURL, "--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandsAgainstSandbox(t *testing.T) {
	t.Setenv("QUIZCTL_SESSION_BACKEND", "file")
	t.Setenv("QUIZCTL_STATE_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	gin.SetMode(gin.TestMode)
	srv, err := sandbox.New(sandbox.Options{
		Secret: "cli-test",
		Admin:  &domain.RegisterRequest{Name: "Admin", Email: "admin@quiz.io", Password: "pw"},
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	run := func(args ...string) string {
		t.Helper()
		out, err := quizctl(t, ts.URL, args...)
		require.NoError(t, err, out)
		return out
	}

	out := run("login", "--email", "admin@quiz.io", "--password", "pw")
	assert.Contains(t, out, "Logged in as admin@quiz.io (ADMIN)")

	out = run("quizzes", "create", "--title", "Go", "--description", "Basics", "--status", "published")
	assert.Contains(t, out, `"Go" (PUBLISHED)`)
	// Ids come from one sandbox counter: admin 1, quiz 2, question 3, options 4 and 5.
	run("quizzes", "add-question", "2", "--text", "Go is compiled", "--type", "TRUE_FALSE", "--marks", "2", "--correct", "1")

	out = run("quizzes", "show", "2", "--answers")
	assert.Contains(t, out, "* [4] True")

	out = run("register", "--name", "Sam", "--email", "sam@quiz.io", "--password", "pw")
	assert.Contains(t, out, "Registered sam@quiz.io as STUDENT")
	run("login", "--email", "sam@quiz.io", "--password", "pw")

	out = run("whoami")
	assert.Contains(t, out, "sam@quiz.io (STUDENT)")
	assert.Contains(t, out, "token expires")

	_, err = quizctl(t, ts.URL, "users", "list")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out = run("attempt", "start", "2")
	assert.Contains(t, out, "Go is compiled")
	assert.NotContains(t, out, "*")

	_, err = quizctl(t, ts.URL, "attempt", "submit", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 remaining")

	run("attempt", "answer", "2", "3", "4")
	out = run("attempt", "status", "2")
	assert.Contains(t, out, "IN_PROGRESS")

	out = run("attempt", "submit", "2")
	assert.Contains(t, out, "Score 2/2 (COMPLETED)")

	out = run("attempts", "mine")
	assert.Contains(t, out, "COMPLETED")

	run("logout")
	_, err = quizctl(t, ts.URL, "whoami")
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)

	run("login", "--email", "admin@quiz.io", "--password", "pw")
	xlsx := filepath.Join(t.TempDir(), "attempts.xlsx")
	out = run("attempts", "export", "--quiz", "2", "--out", xlsx)
	assert.Contains(t, out, "Wrote 1 attempts")

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Attempts")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "sam@quiz.io", rows[1][2])

	out = run("users", "list")
	assert.True(t, strings.Contains(out, "admin@quiz.io") && strings.Contains(out, "sam@quiz.io"))
}

func TestAttemptStartLeavesNoDraftWhenQuizFailsToLoad(t *testing.T) {
	t.Setenv("QUIZCTL_SESSION_BACKEND", "file")
	t.Setenv("QUIZCTL_STATE_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	gin.SetMode(gin.TestMode)
	srv, err := sandbox.New(sandbox.Options{
		Secret: "cli-test",
		Admin:  &domain.RegisterRequest{Name: "Admin", Email: "admin@quiz.io", Password: "pw"},
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	var failQuizLoads atomic.Bool
	handler := srv.Handler()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failQuizLoads.Load() && r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/quizzes/") {
			http.Error(w, `{"message":"Quiz service unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		handler.ServeHTTP(w, r)
	}))
	defer ts.Close()

	run := func(args ...string) string {
		t.Helper()
		out, err := quizctl(t, ts.URL, args...)
		require.NoError(t, err, out)
		return out
	}

	run("login", "--email", "admin@quiz.io", "--password", "pw")
	run("quizzes", "create", "--title", "Go", "--description", "Basics", "--status", "published")
	run("quizzes", "add-question", "2", "--text", "Go is compiled", "--type", "TRUE_FALSE", "--marks", "1", "--correct", "1")
	run("register", "--name", "Sam", "--email", "sam@quiz.io", "--password", "pw")
	run("login", "--email", "sam@quiz.io", "--password", "pw")

	failQuizLoads.Store(true)
	_, err = quizctl(t, ts.URL, "attempt", "start", "2")
	require.Error(t, err)
	assert.NotContains(t, run("attempt", "status", "2"), "IN_PROGRESS")

	failQuizLoads.Store(false)
	out := run("attempt", "start", "2")
	assert.Contains(t, out, "Go is compiled")
}
