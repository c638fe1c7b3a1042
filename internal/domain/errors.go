package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotLoggedIn is returned when an operation needs a session and none is stored.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrForbidden is returned when the stored role cannot perform the operation.
	ErrForbidden = errors.New("operation requires the ADMIN role")
	// ErrUnansweredQuestions is matched by *UnansweredError.
	ErrUnansweredQuestions = errors.New("unanswered questions")
	// ErrAttemptCompleted indicates the attempt was already submitted.
	ErrAttemptCompleted = errors.New("attempt already completed")
	// ErrAttemptInProgress indicates an attempt for the quiz is already running.
	ErrAttemptInProgress = errors.New("attempt already in progress")
	// ErrDraftNotFound is returned by draft stores for unknown (student, quiz) pairs.
	ErrDraftNotFound = errors.New("draft not found")
)

// UnansweredError rejects a submission before any request is sent.
type UnansweredError struct {
	Remaining int
}

func (e *UnansweredError) Error() string {
	return fmt.Sprintf("please answer all questions (%d remaining)", e.Remaining)
}

func (e *UnansweredError) Is(target error) bool {
	return target == ErrUnansweredQuestions
}

// ValidationError describes one invalid field of a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects field errors caught before a request is sent.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + e[0].Error()
	}
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, v.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ActionError reports a failed remote action. Message is what the user sees:
// the server's message when it sent one, otherwise a fixed fallback for the
// action. The transport error stays reachable through Unwrap.
type ActionError struct {
	Action  string
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
