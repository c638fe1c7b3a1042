package domain

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is the body returned by a successful login.
type AuthResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,role"`
}

type CreateQuizRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Status      QuizStatus `json:"status" validate:"required,quiz_status"`
}

type AddQuestionRequest struct {
	Text    string       `json:"text" validate:"required"`
	Marks   int          `json:"marks" validate:"gt=0"`
	Type    QuestionType `json:"type" validate:"required,question_type"`
	Options []Option     `json:"options" validate:"required,dive"`
}

type SubmitRequest struct {
	Answers []Answer `json:"answers"`
}

// DefaultOptions returns the blank option set a new question of type t starts with.
func DefaultOptions(t QuestionType) []Option {
	if t == QuestionTrueFalse {
		return []Option{{Text: "True"}, {Text: "False"}}
	}
	return []Option{{}, {}, {}, {}}
}
