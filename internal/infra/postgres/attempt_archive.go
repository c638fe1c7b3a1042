package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizctl/internal/domain"
)

// AttemptArchive copies attempt records fetched from the service into a
// local Postgres table for offline reporting. Records are upserted by
// attempt id; a COMPLETED row is never downgraded back to IN_PROGRESS.
type AttemptArchive struct {
	pool *pgxpool.Pool
}

func NewAttemptArchive(pool *pgxpool.Pool) *AttemptArchive {
	return &AttemptArchive{pool: pool}
}

const upsertAttempt = `
INSERT INTO attempt_archive (attempt_id, quiz_id, student_email, score, total_marks, status, submitted_at, archived_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (attempt_id) DO UPDATE SET
    score        = EXCLUDED.score,
    total_marks  = EXCLUDED.total_marks,
    status       = EXCLUDED.status,
    submitted_at = EXCLUDED.submitted_at,
    archived_at  = now()
WHERE attempt_archive.status <> 'COMPLETED'`

// Store upserts attempts in one batch and returns how many rows changed.
func (a *AttemptArchive) Store(ctx context.Context, attempts []domain.Attempt) (int64, error) {
	if len(attempts) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, at := range attempts {
		batch.Queue(upsertAttempt, at.ID, at.QuizID, at.StudentEmail, at.Score, at.TotalMarks, string(at.Status), at.SubmittedAt)
	}

	results := a.pool.SendBatch(ctx, batch)
	defer results.Close()

	var changed int64
	for range attempts {
		tag, err := results.Exec()
		if err != nil {
			return changed, fmt.Errorf("archive attempt: %w", err)
		}
		changed += tag.RowsAffected()
	}
	return changed, nil
}

// ByQuiz reads archived attempts for one quiz, newest submission first.
func (a *AttemptArchive) ByQuiz(ctx context.Context, quizID int64) ([]domain.Attempt, error) {
	rows, err := a.pool.Query(ctx, `
SELECT attempt_id, quiz_id, student_email, score, total_marks, status, submitted_at
FROM attempt_archive WHERE quiz_id = $1
ORDER BY submitted_at DESC NULLS LAST, attempt_id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var out []domain.Attempt
	for rows.Next() {
		var at domain.Attempt
		var status string
		if err := rows.Scan(&at.ID, &at.QuizID, &at.StudentEmail, &at.Score, &at.TotalMarks, &status, &at.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		at.Status = domain.AttemptStatus(status)
		out = append(out, at)
	}
	return out, rows.Err()
}
