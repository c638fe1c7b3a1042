package sandbox

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"quizctl/internal/domain"
)

// apiError is a failure the sandbox reports as {"message": ...} with status.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

var (
	errEmailTaken      = &apiError{http.StatusConflict, "Email already registered"}
	errBadCredentials  = &apiError{http.StatusUnauthorized, "Invalid email or password"}
	errQuizNotFound    = &apiError{http.StatusNotFound, "Quiz not found"}
	errUserNotFound    = &apiError{http.StatusNotFound, "User not found"}
	errQuizNotOpen     = &apiError{http.StatusBadRequest, "Quiz is not published"}
	errQuestionUnknown = &apiError{http.StatusBadRequest, "Question does not belong to this quiz"}
	errOptionUnknown   = &apiError{http.StatusBadRequest, "Option does not belong to this question"}
)

type account struct {
	user         domain.User
	passwordHash []byte
}

// store is the sandbox's entire state. All access goes through mu.
type store struct {
	mu       sync.RWMutex
	now      func() time.Time
	nextID   int64
	accounts map[string]*account // by email
	quizzes  map[int64]*domain.Quiz
	order    []int64
	attempts []*domain.Attempt
}

func newStore(now func() time.Time) *store {
	return &store{
		now:      now,
		accounts: make(map[string]*account),
		quizzes:  make(map[int64]*domain.Quiz),
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *store) register(req domain.RegisterRequest) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[req.Email]; ok {
		return errEmailTaken
	}
	s.accounts[req.Email] = &account{
		user:         domain.User{ID: s.id(), Name: req.Name, Email: req.Email, Role: req.Role},
		passwordHash: hash,
	}
	return nil
}

func (s *store) authenticate(email, password string) (domain.User, error) {
	s.mu.RLock()
	acc, ok := s.accounts[email]
	s.mu.RUnlock()
	if !ok {
		return domain.User{}, errBadCredentials
	}
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return domain.User{}, errBadCredentials
	}
	return acc.user, nil
}

func (s *store) users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc.user)
	}
	sortUsers(out)
	return out
}

func (s *store) setRole(userID int64, role domain.Role) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.ID == userID {
			acc.user.Role = role
			return acc.user, nil
		}
	}
	return domain.User{}, errUserNotFound
}

func (s *store) createQuiz(adminEmail string, req domain.CreateQuizRequest) domain.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz := &domain.Quiz{
		ID:          s.id(),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		TimeLimit:   30,
		Questions:   []domain.Question{},
		CreatedBy:   adminEmail,
	}
	s.quizzes[quiz.ID] = quiz
	s.order = append(s.order, quiz.ID)
	return cloneQuiz(*quiz)
}

func (s *store) addQuestion(quizID int64, req domain.AddQuestionRequest) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Question{}, errQuizNotFound
	}
	q := domain.Question{ID: s.id(), Text: req.Text, Marks: req.Marks, Type: req.Type}
	for _, o := range req.Options {
		q.Options = append(q.Options, domain.Option{ID: s.id(), Text: o.Text, IsCorrect: o.IsCorrect})
	}
	quiz.Questions = append(quiz.Questions, q)
	quiz.TotalMarks += req.Marks
	return q, nil
}

func (s *store) quiz(quizID int64) (domain.Quiz, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, false
	}
	return cloneQuiz(*quiz), true
}

func (s *store) listQuizzes(publishedOnly bool) []domain.Quiz {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.order))
	for _, id := range s.order {
		quiz := s.quizzes[id]
		if publishedOnly && quiz.Status != domain.QuizPublished {
			continue
		}
		out = append(out, cloneQuiz(*quiz))
	}
	return out
}

func (s *store) startAttempt(studentEmail string, quizID int64) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Attempt{}, errQuizNotFound
	}
	if quiz.Status != domain.QuizPublished {
		return domain.Attempt{}, errQuizNotOpen
	}
	at := &domain.Attempt{
		ID:           s.id(),
		QuizID:       quizID,
		StudentEmail: studentEmail,
		TotalMarks:   float64(quiz.TotalMarks),
		Status:       domain.AttemptInProgress,
	}
	s.attempts = append(s.attempts, at)
	return *at, nil
}

// submit scores the latest open attempt of the student for the quiz, opening
// one first when the student never called start.
func (s *store) submit(studentEmail string, quizID int64, answers []domain.Answer) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Attempt{}, errQuizNotFound
	}
	if quiz.Status != domain.QuizPublished {
		return domain.Attempt{}, errQuizNotOpen
	}

	score, err := scoreSubmission(*quiz, answers)
	if err != nil {
		return domain.Attempt{}, err
	}

	var open *domain.Attempt
	for i := len(s.attempts) - 1; i >= 0; i-- {
		at := s.attempts[i]
		if at.StudentEmail == studentEmail && at.QuizID == quizID && at.Status == domain.AttemptInProgress {
			open = at
			break
		}
	}
	if open == nil {
		open = &domain.Attempt{ID: s.id(), QuizID: quizID, StudentEmail: studentEmail}
		s.attempts = append(s.attempts, open)
	}
	submitted := s.now().UTC()
	open.Score = float64(score)
	open.TotalMarks = float64(quiz.TotalMarks)
	open.Status = domain.AttemptCompleted
	open.SubmittedAt = &submitted
	return *open, nil
}

func (s *store) attemptsWhere(match func(*domain.Attempt) bool) []domain.Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Attempt{}
	for _, at := range s.attempts {
		if match(at) {
			out = append(out, *at)
		}
	}
	return out
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]domain.Option(nil), question.Options...)
		questions[i] = question
	}
	q.Questions = questions
	return q
}
