package sandbox

import (
	"sort"

	"quizctl/internal/domain"
)

// scoreSubmission sums the marks of questions answered with a correct option.
// Every answer must reference a question of the quiz and one of its options.
func scoreSubmission(quiz domain.Quiz, answers []domain.Answer) (int, error) {
	byID := make(map[int64]*domain.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		byID[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	score := 0
	for _, ans := range answers {
		question, ok := byID[ans.QuestionID]
		if !ok {
			return 0, errQuestionUnknown
		}
		var selected *domain.Option
		for i := range question.Options {
			if question.Options[i].ID == ans.OptionID {
				selected = &question.Options[i]
				break
			}
		}
		if selected == nil {
			return 0, errOptionUnknown
		}
		if selected.IsCorrect {
			score += question.Marks
		}
	}
	return score, nil
}

// studentView strips correctness flags before a quiz leaves the sandbox for a student.
func studentView(q domain.Quiz) domain.StudentQuiz {
	out := domain.StudentQuiz{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		TotalMarks:  q.TotalMarks,
		TimeLimit:   q.TimeLimit,
		Status:      q.Status,
		Questions:   make([]domain.StudentQuestion, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		sq := domain.StudentQuestion{
			ID:      question.ID,
			Text:    question.Text,
			Marks:   question.Marks,
			Type:    question.Type,
			Options: make([]domain.StudentOption, 0, len(question.Options)),
		}
		for _, o := range question.Options {
			sq.Options = append(sq.Options, domain.StudentOption{ID: o.ID, Text: o.Text})
		}
		out.Questions = append(out.Questions, sq)
	}
	return out
}

func sortUsers(users []domain.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
}
