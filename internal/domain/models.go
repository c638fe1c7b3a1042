package domain

import "time"

// Role gates which operations and which fields a user can reach.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

type QuizStatus string

const (
	QuizDraft     QuizStatus = "DRAFT"
	QuizPublished QuizStatus = "PUBLISHED"
)

type QuestionType string

const (
	QuestionMCQ       QuestionType = "MCQ"
	QuestionTrueFalse QuestionType = "TRUE_FALSE"
)

type AttemptStatus string

const (
	// AttemptNotStarted only exists locally; the server never reports it.
	AttemptNotStarted AttemptStatus = "NOT_STARTED"
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
)

// User is an identity record as returned by the user endpoints.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Option is the authoring view of an answer option, including its correctness flag.
type Option struct {
	ID        int64  `json:"id,omitempty"`
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is the authoring view of a question.
type Question struct {
	ID      int64        `json:"id"`
	Text    string       `json:"text"`
	Marks   int          `json:"marks"`
	Type    QuestionType `json:"type"`
	Options []Option     `json:"options"`
}

// Quiz is the admin view of a quiz. Options carry IsCorrect.
type Quiz struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TotalMarks  int        `json:"totalMarks"`
	TimeLimit   int        `json:"timeLimit"`
	Status      QuizStatus `json:"status"`
	Questions   []Question `json:"questions"`
	CreatedBy   string     `json:"createdBy,omitempty"`
}

// StudentOption is what an attempting student can see of an option.
// It has no correctness field, so a payload carrying isCorrect is dropped on decode.
type StudentOption struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type StudentQuestion struct {
	ID      int64           `json:"id"`
	Text    string          `json:"text"`
	Marks   int             `json:"marks"`
	Type    QuestionType    `json:"type"`
	Options []StudentOption `json:"options"`
}

// StudentQuiz is the attempt view of a quiz.
type StudentQuiz struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	TotalMarks  int               `json:"totalMarks"`
	TimeLimit   int               `json:"timeLimit"`
	Status      QuizStatus        `json:"status"`
	Questions   []StudentQuestion `json:"questions"`
}

// Attempt is one student's instance of taking one quiz.
// Score and TotalMarks are computed by the server and never recomputed here.
type Attempt struct {
	ID           int64         `json:"id"`
	QuizID       int64         `json:"quizId"`
	StudentEmail string        `json:"studentEmail"`
	Score        float64       `json:"score"`
	TotalMarks   float64       `json:"totalMarks"`
	Status       AttemptStatus `json:"status"`
	SubmittedAt  *time.Time    `json:"submittedAt,omitempty"`
}

// Answer selects one option for one question.
type Answer struct {
	QuestionID int64 `json:"questionId"`
	OptionID   int64 `json:"optionId"`
}

// Session is the authenticated identity held between commands.
type Session struct {
	Token string `json:"token" yaml:"token"`
	Email string `json:"email" yaml:"email"`
	Role  Role   `json:"role" yaml:"role"`
}

// Draft is the local projection of one attempt: its state and the answers
// collected so far. Answers are discarded once the attempt is submitted.
type Draft struct {
	QuizID       int64           `yaml:"quiz_id"`
	StudentEmail string          `yaml:"student_email"`
	AttemptID    int64           `yaml:"attempt_id,omitempty"`
	Status       AttemptStatus   `yaml:"status"`
	Answers      map[int64]int64 `yaml:"answers,omitempty"`
	Result       *Attempt        `yaml:"result,omitempty"`
}

// NewDraft returns an empty NOT_STARTED draft.
func NewDraft(studentEmail string, quizID int64) Draft {
	return Draft{
		QuizID:       quizID,
		StudentEmail: studentEmail,
		Status:       AttemptNotStarted,
		Answers:      make(map[int64]int64),
	}
}
