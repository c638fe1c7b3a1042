package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"quizctl/internal/domain"
)

// DraftStore keeps attempt drafts in two hashes per (student, quiz):
//
//	HSET quizctl:draft:{email}:{quizID}         status … attempt_id … result …
//	HSET quizctl:draft:{email}:{quizID}:answers {questionID} {optionID}
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{client: client, ttl: ttl}
}

func (s *DraftStore) Get(ctx context.Context, studentEmail string, quizID int64) (domain.Draft, error) {
	metaKey, answersKey := s.keys(studentEmail, quizID)

	meta, err := s.client.HGetAll(ctx, metaKey).Result()
	if err != nil {
		return domain.Draft{}, fmt.Errorf("load draft: %w", err)
	}
	if len(meta) == 0 {
		return domain.Draft{}, domain.ErrDraftNotFound
	}
	rawAnswers, err := s.client.HGetAll(ctx, answersKey).Result()
	if err != nil {
		return domain.Draft{}, fmt.Errorf("load answers: %w", err)
	}

	draft := domain.NewDraft(studentEmail, quizID)
	draft.Status = domain.AttemptStatus(meta["status"])
	if id, err := strconv.ParseInt(meta["attempt_id"], 10, 64); err == nil {
		draft.AttemptID = id
	}
	if raw := meta["result"]; raw != "" {
		var result domain.Attempt
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return domain.Draft{}, fmt.Errorf("decode result: %w", err)
		}
		draft.Result = &result
	}
	for q, o := range rawAnswers {
		questionID, err := strconv.ParseInt(q, 10, 64)
		if err != nil {
			continue
		}
		optionID, err := strconv.ParseInt(o, 10, 64)
		if err != nil {
			continue
		}
		draft.Answers[questionID] = optionID
	}
	return draft, nil
}

// Put replaces both hashes in one transaction.
func (s *DraftStore) Put(ctx context.Context, draft domain.Draft) error {
	metaKey, answersKey := s.keys(draft.StudentEmail, draft.QuizID)

	meta := map[string]interface{}{
		"status":     string(draft.Status),
		"attempt_id": draft.AttemptID,
	}
	if draft.Result != nil {
		raw, err := json.Marshal(draft.Result)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		meta["result"] = string(raw)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, metaKey, answersKey)
		pipe.HSet(ctx, metaKey, meta)
		if len(draft.Answers) > 0 {
			answers := make(map[string]interface{}, len(draft.Answers))
			for q, o := range draft.Answers {
				answers[strconv.FormatInt(q, 10)] = o
			}
			pipe.HSet(ctx, answersKey, answers)
		}
		if s.ttl > 0 {
			pipe.Expire(ctx, metaKey, s.ttl)
			pipe.Expire(ctx, answersKey, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *DraftStore) Delete(ctx context.Context, studentEmail string, quizID int64) error {
	metaKey, answersKey := s.keys(studentEmail, quizID)
	if err := s.client.Del(ctx, metaKey, answersKey).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (s *DraftStore) keys(studentEmail string, quizID int64) (string, string) {
	meta := "quizctl:draft:" + studentEmail + ":" + strconv.FormatInt(quizID, 10)
	return meta, meta + ":answers"
}
