package file

import (
	"context"
	"path/filepath"

	"quizctl/internal/domain"
)

// SessionStore keeps the session in {dir}/session.yaml.
type SessionStore struct {
	path string
}

func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{path: filepath.Join(dir, "session.yaml")}
}

func (s *SessionStore) Load(_ context.Context) (domain.Session, error) {
	var session domain.Session
	found, err := readYAML(s.path, &session)
	if err != nil {
		return domain.Session{}, err
	}
	if !found || session.Token == "" {
		return domain.Session{}, domain.ErrNotLoggedIn
	}
	return session, nil
}

func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	return writeYAML(s.path, session)
}

func (s *SessionStore) Clear(_ context.Context) error {
	return remove(s.path)
}
