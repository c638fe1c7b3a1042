package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"quizctl/internal/domain"
)

func newQuizzesCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "quizzes",
		Aliases: []string{"quiz"},
		Short:   "Browse and author quizzes",
	}
	cmd.AddCommand(
		newQuizzesListCmd(flags),
		newQuizzesShowCmd(flags),
		newQuizzesCreateCmd(flags),
		newQuizzesAddQuestionCmd(flags),
	)
	return cmd
}

func newQuizzesListCmd(flags *rootFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quizzes available to you",
		RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
			tw := table(cmd.OutOrStdout(), "ID", "TITLE", "STATUS", "QUESTIONS", "MARKS", "MINUTES")
			if all {
				quizzes, err := e.admin.Quizzes(ctx)
				if err != nil {
					return err
				}
				for _, q := range quizzes {
					row(tw, q.ID, q.Title, q.Status, len(q.Questions), q.TotalMarks, q.TimeLimit)
				}
				return tw.Flush()
			}
			quizzes, err := e.catalog.List(ctx)
			if err != nil {
				return err
			}
			for _, q := range quizzes {
				row(tw, q.ID, q.Title, q.Status, len(q.Questions), q.TotalMarks, q.TimeLimit)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().BoolVar(&all, "all", false, "include drafts and answers (admin)")
	return cmd
}

func newQuizzesShowCmd(flags *rootFlags) *cobra.Command {
	var answers bool
	cmd := &cobra.Command{
		Use:   "show QUIZ_ID",
		Short: "Show a quiz with its questions",
		Args:  cobra.ExactArgs(1),
		RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
			quizID, err := parseID(args[0], "quiz id")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if answers {
				quiz, err := e.admin.Quiz(ctx, quizID)
				if err != nil {
					return err
				}
				printAuthoringQuiz(out, quiz)
				return nil
			}
			quiz, err := e.catalog.ForAttempt(ctx, quizID)
			if err != nil {
				return err
			}
			printStudentQuiz(out, quiz)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&answers, "answers", false, "mark correct options (admin)")
	return cmd
}

func newQuizzesCreateCmd(flags *rootFlags) *cobra.Command {
	var (
		req    domain.CreateQuizRequest
		status string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a quiz (admin)",
		RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, _ []string) error {
			req.Status = domain.QuizStatus(strings.ToUpper(status))
			quiz, err := e.admin.CreateQuiz(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created quiz %d %q (%s)\n", quiz.ID, quiz.Title, quiz.Status)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "quiz title")
	cmd.Flags().StringVar(&req.Description, "description", "", "quiz description")
	cmd.Flags().StringVar(&status, "status", string(domain.QuizDraft), "DRAFT or PUBLISHED")
	return cmd
}

func newQuizzesAddQuestionCmd(flags *rootFlags) *cobra.Command {
	var (
		req     domain.AddQuestionRequest
		qtype   string
		options []string
		correct []int
	)
	cmd := &cobra.Command{
		Use:   "add-question QUIZ_ID",
		Short: "Append a question to a quiz (admin)",
		Long: `Append a question to a quiz.

Options are given in order with --option and the correct ones are picked by
1-based position with --correct. A TRUE_FALSE question without --option gets
the True/False pair.`,
		Args: cobra.ExactArgs(1),
		RunE: run(flags, func(ctx context.Context, cmd *cobra.Command, e *env, args []string) error {
			quizID, err := parseID(args[0], "quiz id")
			if err != nil {
				return err
			}
			req.Type = domain.QuestionType(strings.ToUpper(qtype))
			req.Options, err = buildOptions(req.Type, options, correct)
			if err != nil {
				return err
			}
			question, err := e.admin.AddQuestion(ctx, quizID, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added question %d (%d marks) to quiz %d\n", question.ID, question.Marks, quizID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Text, "text", "", "question text")
	cmd.Flags().IntVar(&req.Marks, "marks", 1, "marks awarded for a correct answer")
	cmd.Flags().StringVar(&qtype, "type", string(domain.QuestionMCQ), "MCQ or TRUE_FALSE")
	cmd.Flags().StringArrayVar(&options, "option", nil, "option text (repeatable)")
	cmd.Flags().IntSliceVar(&correct, "correct", nil, "1-based position of a correct option (repeatable)")
	return cmd
}

func buildOptions(t domain.QuestionType, texts []string, correct []int) ([]domain.Option, error) {
	opts := domain.DefaultOptions(t)
	if len(texts) > 0 {
		opts = make([]domain.Option, len(texts))
		for i, text := range texts {
			opts[i].Text = text
		}
	}
	for _, pos := range correct {
		if pos < 1 || pos > len(opts) {
			return nil, fmt.Errorf("--correct %d is out of range 1..%d", pos, len(opts))
		}
		opts[pos-1].IsCorrect = true
	}
	return opts, nil
}

func printStudentQuiz(w io.Writer, quiz domain.StudentQuiz) {
	fmt.Fprintf(w, "#%d %s [%s]\n%s\n", quiz.ID, quiz.Title, quiz.Status, quiz.Description)
	fmt.Fprintf(w, "%d marks, %d minutes\n", quiz.TotalMarks, quiz.TimeLimit)
	for i, q := range quiz.Questions {
		fmt.Fprintf(w, "\n%d. %s (question %d, %s, %d marks)\n", i+1, q.Text, q.ID, q.Type, q.Marks)
		for _, o := range q.Options {
			fmt.Fprintf(w, "   [%d] %s\n", o.ID, o.Text)
		}
	}
}

func printAuthoringQuiz(w io.Writer, quiz domain.Quiz) {
	fmt.Fprintf(w, "#%d %s [%s]\n%s\n", quiz.ID, quiz.Title, quiz.Status, quiz.Description)
	fmt.Fprintf(w, "%d marks, %d minutes\n", quiz.TotalMarks, quiz.TimeLimit)
	for i, q := range quiz.Questions {
		fmt.Fprintf(w, "\n%d. %s (question %d, %s, %d marks)\n", i+1, q.Text, q.ID, q.Type, q.Marks)
		for _, o := range q.Options {
			mark := " "
			if o.IsCorrect {
				mark = "*"
			}
			fmt.Fprintf(w, " %s [%d] %s\n", mark, o.ID, o.Text)
		}
	}
}
