package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/xuri/excelize/v2"
)

func TestCandidatesWorkbookRanksByScore(t *testing.T) {
	job := model.Job{ID: uuid.New(), Title: "Backend Engineer", Company: "Acme"}
	low := model.Application{ID: uuid.New(), CandidateName: "Bob", CandidateEmail: "bob@example.com", Status: model.ApplicationStatusInterviewing, InterviewScore: 40}
	high := model.Application{ID: uuid.New(), CandidateName: "Ada", CandidateEmail: "ada@example.com", Status: model.ApplicationStatusCompletedInterview, InterviewScore: 10}
	reports := []model.InterviewReport{
		{ApplicationID: high.ID, Status: model.ReportStatusCompleted, OverallScore: 92},
	}

	data, err := CandidatesWorkbook(job, NewCandidateRows([]model.Application{low, high}, reports), time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("CandidatesWorkbook() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(candidatesSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "Ada" || rows[1][4] != "92.00" || rows[1][5] != model.ReportStatusCompleted {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[2][1] != "Bob" || rows[2][4] != "40.00" {
		t.Fatalf("unexpected second row: %v", rows[2])
	}

	title, err := f.GetCellValue(summarySheet, "B1")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if title != "Backend Engineer" {
		t.Fatalf("summary title = %q", title)
	}
}

func TestCandidateRowScore(t *testing.T) {
	t.Parallel()

	app := model.Application{InterviewScore: 55}
	pending := CandidateRow{Application: app, Report: &model.InterviewReport{Status: model.ReportStatusPending, OverallScore: 90}}
	if pending.Score() != 55 {
		t.Fatalf("pending report must not override score, got %v", pending.Score())
	}
	done := CandidateRow{Application: app, Report: &model.InterviewReport{Status: model.ReportStatusCompleted, OverallScore: 90}}
	if done.Score() != 90 {
		t.Fatalf("completed report score = %v, want 90", done.Score())
	}
}
