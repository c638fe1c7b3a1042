package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"quizctl/internal/domain"
)

// run opens the client environment for the duration of one command.
func run(flags *rootFlags, fn func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(flags)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd.Context(), cmd, e, args)
	}
}

// currentEmail returns the logged-in user's email.
func (e *env) currentEmail(ctx context.Context) (string, error) {
	session, err := e.auth.Current(ctx)
	if err != nil {
		return "", err
	}
	return session.Email, nil
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, raw)
	}
	return id, nil
}

func table(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func printAttempts(w io.Writer, attempts []domain.Attempt) error {
	tw := table(w, "ID", "QUIZ", "STUDENT", "SCORE", "STATUS", "SUBMITTED")
	for _, at := range attempts {
		row(tw, at.ID, at.QuizID, at.StudentEmail, formatScore(at), at.Status, formatTime(at.SubmittedAt))
	}
	return tw.Flush()
}

func formatScore(at domain.Attempt) string {
	return strconv.FormatFloat(at.Score, 'f', -1, 64) + "/" + strconv.FormatFloat(at.TotalMarks, 'f', -1, 64)
}
