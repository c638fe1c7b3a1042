package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"quizctl/internal/domain"
	"quizctl/internal/export"
	"quizctl/internal/infra/postgres"
)

func newAttemptsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attempts",
		Short: "List, export and archive attempt records",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "mine",
			Short: "List your attempts",
			RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
				email, err := e.currentEmail(ctx)
				if err != nil {
					return err
				}
				attempts, err := e.attempts.ListMine(ctx, email)
				if err != nil {
					return err
				}
				return printAttempts(cmd.OutOrStdout(), attempts)
			}),
		},
		&cobra.Command{
			Use:   "quiz QUIZ_ID",
			Short: "List attempts on one quiz (admin)",
			Args:  cobra.ExactArgs(1),
			RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
				quizID, err := parseID(args[0], "quiz id")
				if err != nil {
					return err
				}
				attempts, err := e.adminAttempts(ctx, quizID)
				if err != nil {
					return err
				}
				return printAttempts(cmd.OutOrStdout(), attempts)
			}),
		},
		&cobra.Command{
			Use:   "all",
			Short: "List every attempt (admin)",
			RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
				attempts, err := e.adminAttempts(ctx, 0)
				if err != nil {
					return err
				}
				return printAttempts(cmd.OutOrStdout(), attempts)
			}),
		},
		newAttemptsExportCmd(flags),
		newAttemptsArchiveCmd(flags),
		newAttemptsArchivedCmd(flags),
	)
	return cmd
}

// adminAttempts lists attempts for quizID, or all attempts when quizID is 0.
func (e *env) adminAttempts(ctx context.Context, quizID int64) ([]domain.Attempt, error) {
	if _, err := e.admin.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if quizID == 0 {
		return e.attempts.ListAll(ctx)
	}
	return e.attempts.ListForQuiz(ctx, quizID)
}

func newAttemptsExportCmd(flags *rootFlags) *cobra.Command {
	var (
		quizID int64
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write attempts to an XLSX workbook (admin)",
		RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
			attempts, err := e.adminAttempts(ctx, quizID)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.WriteAttempts(f, attempts); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d attempts to %s\n", len(attempts), out)
			return nil
		}),
	}
	cmd.Flags().Int64Var(&quizID, "quiz", 0, "only attempts on this quiz")
	cmd.Flags().StringVarP(&out, "out", "o", "attempts.xlsx", "output file")
	return cmd
}

func newAttemptsArchiveCmd(flags *rootFlags) *cobra.Command {
	var quizID int64
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Copy attempts into the Postgres archive (admin)",
		RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
			attempts, err := e.adminAttempts(ctx, quizID)
			if err != nil {
				return err
			}
			archive, closeArchive, err := openArchive(ctx, e)
			if err != nil {
				return err
			}
			defer closeArchive()

			changed, err := archive.Store(ctx, attempts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %d of %d attempts\n", changed, len(attempts))
			return nil
		}),
	}
	cmd.Flags().Int64Var(&quizID, "quiz", 0, "only attempts on this quiz")
	return cmd
}

func newAttemptsArchivedCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "archived QUIZ_ID",
		Short: "List archived attempts for a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
			quizID, err := parseID(args[0], "quiz id")
			if err != nil {
				return err
			}
			archive, closeArchive, err := openArchive(ctx, e)
			if err != nil {
				return err
			}
			defer closeArchive()

			attempts, err := archive.ByQuiz(ctx, quizID)
			if err != nil {
				return err
			}
			return printAttempts(cmd.OutOrStdout(), attempts)
		}),
	}
}

func openArchive(ctx context.Context, e *env) (*postgres.AttemptArchive, func(), error) {
	if e.cfg.Archive.PostgresURL == "" {
		return nil, nil, errors.New("archive.postgres_url not configured")
	}
	pool, err := pgxpool.Connect(ctx, e.cfg.Archive.PostgresURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect archive: %w", err)
	}
	return postgres.NewAttemptArchive(pool), pool.Close, nil
}
