package file

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"strconv"

	"quizctl/internal/domain"
)

// DraftStore keeps one YAML file per (student, quiz) under {dir}/drafts.
type DraftStore struct {
	dir string
}

func NewDraftStore(dir string) *DraftStore {
	return &DraftStore{dir: filepath.Join(dir, "drafts")}
}

func (s *DraftStore) Get(_ context.Context, studentEmail string, quizID int64) (domain.Draft, error) {
	var draft domain.Draft
	found, err := readYAML(s.path(studentEmail, quizID), &draft)
	if err != nil {
		return domain.Draft{}, err
	}
	if !found {
		return domain.Draft{}, domain.ErrDraftNotFound
	}
	if draft.Answers == nil {
		draft.Answers = make(map[int64]int64)
	}
	return draft, nil
}

func (s *DraftStore) Put(_ context.Context, draft domain.Draft) error {
	return writeYAML(s.path(draft.StudentEmail, draft.QuizID), draft)
}

func (s *DraftStore) Delete(_ context.Context, studentEmail string, quizID int64) error {
	return remove(s.path(studentEmail, quizID))
}

// path hashes the email so arbitrary addresses make safe file names.
func (s *DraftStore) path(studentEmail string, quizID int64) string {
	sum := sha1.Sum([]byte(studentEmail))
	name := hex.EncodeToString(sum[:8]) + "-" + strconv.FormatInt(quizID, 10) + ".yaml"
	return filepath.Join(s.dir, name)
}
