package app

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"quizctl/internal/domain"
)

// serverMessenger is implemented by transport errors that carry a message
// from the remote service.
type serverMessenger interface {
	ServerMessage() string
}

// failure turns a remote error into the single user-facing signal for an
// action: the server's message when present, otherwise the fallback.
func failure(action, fallback string, err error) error {
	msg := fallback
	var sm serverMessenger
	if errors.As(err, &sm) && sm.ServerMessage() != "" {
		msg = sm.ServerMessage()
	}
	return &domain.ActionError{Action: action, Message: msg, Err: err}
}

func isLocalRejection(err error) bool {
	var verrs domain.ValidationErrors
	return errors.As(err, &verrs) ||
		errors.Is(err, domain.ErrUnansweredQuestions) ||
		errors.Is(err, domain.ErrNotLoggedIn) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrAttemptCompleted) ||
		errors.Is(err, domain.ErrAttemptInProgress)
}

// logOutcome records one operation with a level matching how it ended.
func logOutcome(logger *zap.Logger, op string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("operation", op), zap.Duration("duration", time.Since(start)))
	switch {
	case err == nil:
		logger.Debug(op+" succeeded", fields...)
	case isLocalRejection(err):
		logger.Info(op+" rejected", append(fields, zap.Error(err))...)
	default:
		var ae *domain.ActionError
		if errors.As(err, &ae) && ae.Err != nil {
			fields = append(fields, zap.NamedError("cause", ae.Err))
		}
		logger.Warn(op+" failed", append(fields, zap.Error(err))...)
	}
}
