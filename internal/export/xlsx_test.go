package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"quizctl/internal/domain"
)

func TestWriteAttempts(t *testing.T) {
	submitted := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)
	attempts := []domain.Attempt{
		{ID: 1, QuizID: 7, StudentEmail: "a@x.io", Score: 3, TotalMarks: 4, Status: domain.AttemptCompleted, SubmittedAt: &submitted},
		{ID: 2, QuizID: 7, StudentEmail: "b@x.io", Status: domain.AttemptInProgress},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAttempts(&buf, attempts))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Attempts"}, f.GetSheetList())

	rows, err := f.GetRows("Attempts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, attemptHeaders, rows[0])
	assert.Equal(t, []string{"1", "7", "a@x.io", "3", "4", "75", "COMPLETED", "2026-05-02T09:30:00Z"}, rows[1])
	assert.Equal(t, "IN_PROGRESS", rows[2][6])
	assert.Equal(t, "", rows[2][5])
}
