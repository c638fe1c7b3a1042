// Package sandbox is an in-memory stand-in for the remote quiz service. It
// speaks the same HTTP+JSON contract so quizctl can be exercised locally and
// in tests without the real backend.
package sandbox

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quizctl/internal/domain"
)

type Options struct {
	Secret   string
	TokenTTL time.Duration
	// Admin, when set, is registered at startup so the first admin can log in.
	Admin *domain.RegisterRequest
	Now   func() time.Time
}

type Server struct {
	store  *store
	tokens tokenIssuer
	logger *zap.Logger
}

func New(opts Options, logger *zap.Logger) (*Server, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Secret == "" {
		return nil, errors.New("sandbox secret is required")
	}
	s := &Server{
		store:  newStore(opts.Now),
		tokens: tokenIssuer{secret: []byte(opts.Secret), ttl: opts.TokenTTL, now: opts.Now},
		logger: logger.Named("sandbox"),
	}
	if opts.Admin != nil {
		admin := *opts.Admin
		admin.Role = domain.RoleAdmin
		if err := s.store.register(admin); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Handler builds the gin router for the service contract.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/api/auth/login", s.login)
	r.POST("/api/users/register", s.register)

	authed := r.Group("/api", s.tokens.requireAuth())
	admin := requireRole(domain.RoleAdmin)

	authed.GET("/quizzes", s.listQuizzes)
	authed.GET("/quizzes/:id", s.getQuiz)
	authed.POST("/quizzes", admin, s.createQuiz)
	authed.POST("/quizzes/:id/questions", admin, s.addQuestion)

	authed.POST("/attempts/start", s.startAttempt)
	authed.POST("/attempts/quiz/:id/submit", s.submitAttempt)
	authed.GET("/attempts/me", s.myAttempts)
	authed.GET("/attempts/quiz/:id", admin, s.quizAttempts)
	authed.GET("/attempts/all", admin, s.allAttempts)

	authed.GET("/users", admin, s.listUsers)
	authed.PUT("/users/:id/role", admin, s.updateRole)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
		)
	}
}

func (s *Server) login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := s.store.authenticate(req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := s.tokens.issue(user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.AuthResponse{Token: token, Email: user.Email, Role: user.Role})
}

func (s *Server) register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" || !req.Role.Valid() {
		abort(c, http.StatusBadRequest, "Name, email, password and a valid role are required")
		return
	}
	if err := s.store.register(req); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// listQuizzes serves students only published quizzes, without correctness flags.
func (s *Server) listQuizzes(c *gin.Context) {
	if isAdmin(c) {
		c.JSON(http.StatusOK, s.store.listQuizzes(false))
		return
	}
	quizzes := s.store.listQuizzes(true)
	out := make([]domain.StudentQuiz, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, studentView(q))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getQuiz(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	quiz, found := s.store.quiz(id)
	if !found || (!isAdmin(c) && quiz.Status != domain.QuizPublished) {
		fail(c, errQuizNotFound)
		return
	}
	if isAdmin(c) {
		c.JSON(http.StatusOK, quiz)
		return
	}
	c.JSON(http.StatusOK, studentView(quiz))
}

func (s *Server) createQuiz(c *gin.Context) {
	var req domain.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		abort(c, http.StatusBadRequest, "Title is required")
		return
	}
	if req.Status == "" {
		req.Status = domain.QuizDraft
	}
	adminEmail := c.Query("adminEmail")
	if adminEmail == "" {
		adminEmail = c.GetString(ctxEmail)
	}
	c.JSON(http.StatusOK, s.store.createQuiz(adminEmail, req))
}

func (s *Server) addQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" || len(req.Options) == 0 {
		abort(c, http.StatusBadRequest, "Question text and options are required")
		return
	}
	question, err := s.store.addQuestion(id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

func (s *Server) startAttempt(c *gin.Context) {
	quizID, err := strconv.ParseInt(c.Query("quizId"), 10, 64)
	if err != nil {
		abort(c, http.StatusBadRequest, "quizId is required")
		return
	}
	email, ok := s.studentEmail(c)
	if !ok {
		return
	}
	attempt, err := s.store.startAttempt(email, quizID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

func (s *Server) submitAttempt(c *gin.Context) {
	quizID, ok := pathID(c)
	if !ok {
		return
	}
	email, ok := s.studentEmail(c)
	if !ok {
		return
	}
	var req domain.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	attempt, err := s.store.submit(email, quizID, req.Answers)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

func (s *Server) myAttempts(c *gin.Context) {
	email, ok := s.studentEmail(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.store.attemptsWhere(func(a *domain.Attempt) bool { return a.StudentEmail == email }))
}

func (s *Server) quizAttempts(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.store.attemptsWhere(func(a *domain.Attempt) bool { return a.QuizID == id }))
}

func (s *Server) allAttempts(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.attemptsWhere(func(*domain.Attempt) bool { return true }))
}

func (s *Server) listUsers(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.users())
}

func (s *Server) updateRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	role := domain.Role(c.Query("role"))
	if !role.Valid() {
		abort(c, http.StatusBadRequest, "Role must be STUDENT or ADMIN")
		return
	}
	user, err := s.store.setRole(id, role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// studentEmail reads the studentEmail query parameter; a student may only
// act on their own attempts.
func (s *Server) studentEmail(c *gin.Context) (string, bool) {
	email := c.Query("studentEmail")
	if email == "" {
		abort(c, http.StatusBadRequest, "studentEmail is required")
		return "", false
	}
	if !isAdmin(c) && email != c.GetString(ctxEmail) {
		abort(c, http.StatusForbidden, "Cannot act on another student's attempts")
		return "", false
	}
	return email, true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abort(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func fail(c *gin.Context, err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		abort(c, ae.status, ae.message)
		return
	}
	_ = c.Error(err)
	abort(c, http.StatusInternalServerError, "Internal server error")
}
