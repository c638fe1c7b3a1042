package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"quizctl/internal/domain"
)

const attemptsSheet = "Attempts"

var attemptHeaders = []string{
	"Attempt ID", "Quiz ID", "Student", "Score", "Total Marks", "Percent", "Status", "Submitted At",
}

// WriteAttempts renders attempts as an XLSX workbook with one "Attempts" sheet.
// Percent is a display value derived from the server's score; it is blank when
// total marks are zero.
func WriteAttempts(w io.Writer, attempts []domain.Attempt) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(attemptsSheet)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for i, header := range attemptHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(attemptsSheet, cell, header); err != nil {
			return err
		}
	}

	for r, at := range attempts {
		for c, value := range attemptRow(at) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(attemptsSheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.SetPanes(attemptsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func attemptRow(at domain.Attempt) []interface{} {
	percent := interface{}("")
	if at.TotalMarks > 0 {
		percent = at.Score / at.TotalMarks * 100
	}
	submitted := ""
	if at.SubmittedAt != nil {
		submitted = at.SubmittedAt.UTC().Format(time.RFC3339)
	}
	return []interface{}{
		at.ID, at.QuizID, at.StudentEmail, at.Score, at.TotalMarks, percent, string(at.Status), submitted,
	}
}
