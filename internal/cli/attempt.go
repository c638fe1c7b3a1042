package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newAttemptCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attempt",
		Short: "Take a quiz as the logged-in student",
	}
	cmd.AddCommand(
		newAttemptStartCmd(flags),
		newAttemptAnswerCmd(flags),
		newAttemptStatusCmd(flags),
		newAttemptSubmitCmd(flags),
		newAttemptDiscardCmd(flags),
	)
	return cmd
}

// quizStep resolves the student and quiz id shared by every attempt subcommand.
func quizStep(fn func(ctx context.Context, cmd *cobra.Command, e *env, email string, quizID int64, rest []string) error) func(context.Context, *cobra.Command, *env, []string) error {
	return func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
		quizID, err := parseID(args[0], "quiz id")
		if err != nil {
			return err
		}
		email, err := e.currentEmail(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, cmd, e, email, quizID, args[1:])
	}
}

func newAttemptStartCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start QUIZ_ID",
		Short: "Start an attempt and show the questions",
		Args:  cobra.ExactArgs(1),
		RunE: run(flags, quizStep(func(ctx context.Context, cmd *cobra.Command, e *env, email string, quizID int64, _ []string) error {
			// The quiz is loaded first so a failed load leaves no attempt behind.
			quiz, err := e.catalog.ForAttempt(ctx, quizID)
			if err != nil {
				return err
			}
			attempt, err := e.attempts.Start(ctx, email, quizID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Attempt %d started\n\n", attempt.ID)
			printStudentQuiz(out, quiz)
			return nil
		})),
	}
}

func newAttemptAnswerCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "answer QUIZ_ID QUESTION_ID OPTION_ID",
		Short: "Record the chosen option for a question",
		Args:  cobra.ExactArgs(3),
		RunE: run(flags, quizStep(func(ctx context.Context, cmd *cobra.Command, e *env, email string, quizID int64, rest []string) error {
			questionID, err := parseID(rest[0], "question id")
			if err != nil {
				return err
			}
			optionID, err := parseID(rest[1], "option id")
			if err != nil {
				return err
			}
			if err := e.attempts.RecordAnswer(ctx, email, quizID, questionID, optionID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Question %d: option %d\n", questionID, optionID)
			return nil
		})),
	}
}

func newAttemptStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status QUIZ_ID",
		Short: "Show the local state of an attempt",
		Args:  cobra.ExactArgs(1),
		RunE: run(flags, quizStep(func(ctx context.Context, cmd *cobra.Command, e *env, email string, quizID int64, _ []string) error {
			draft, err := e.attempts.Status(ctx, email, quizID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Quiz %d: %s\n", quizID, draft.Status)
			if draft.Result != nil {
				fmt.Fprintf(out, "Score %s, submitted %s\n", formatScore(*draft.Result), formatTime(draft.Result.SubmittedAt))
				return nil
			}
			questions := make([]int64, 0, len(draft.Answers))
			for q := range draft.Answers {
				questions = append(questions, q)
			}
			sort.Slice(questions, func(i, j int) bool { return questions[i] < questions[j] })
			tw := table(out, "QUESTION", "OPTION")
			for _, q := range questions {
				row(tw, q, draft.Answers[q])
			}
			return tw.Flush()
		})),
	}
}

func newAttemptSubmitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "submit QUIZ_ID",
		Short: "Submit the recorded answers",
		Args:  cobra.ExactArgs(1),
		RunE: run(flags, quizStep(func(ctx context.Context, cmd *cobra.Command, e *env, email string, quizID int64, _ []string) error {
			result, err := e.attempts.Submit(ctx, email, quizID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted. Score %s (%s)\n", formatScore(result), result.Status)
			return nil
		})),
	}
}

func newAttemptDiscardCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "discard QUIZ_ID",
		Short: "Forget the local draft of an attempt",
		Args:  cobra.ExactArgs(1),
		RunE: run(flags, quizStep(func(ctx context.Context, cmd *cobra.Command, e *env, email string, quizID int64, _ []string) error {
			if err := e.attempts.Discard(ctx, email, quizID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Draft for quiz %d discarded\n", quizID)
			return nil
		})),
	}
}
