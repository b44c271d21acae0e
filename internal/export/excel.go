package export

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Summary"
	candidatesSheet = "Candidates"
)

// CandidateRow is one application of the exported job.
type CandidateRow struct {
	Application model.Application
	Report      *model.InterviewReport
}

// Score prefers a completed report's score over the application's stored one.
func (r CandidateRow) Score() float64 {
	if r.Report != nil && r.Report.Status == model.ReportStatusCompleted {
		return r.Report.OverallScore
	}
	return r.Application.InterviewScore
}

// NewCandidateRows pairs applications with their reports.
func NewCandidateRows(apps []model.Application, reports []model.InterviewReport) []CandidateRow {
	byApp := make(map[uuid.UUID]*model.InterviewReport, len(reports))
	for i := range reports {
		byApp[reports[i].ApplicationID] = &reports[i]
	}
	rows := make([]CandidateRow, 0, len(apps))
	for _, app := range apps {
		rows = append(rows, CandidateRow{Application: app, Report: byApp[app.ID]})
	}
	return rows
}

// CandidatesWorkbook renders a job's candidates ranked by interview score as xlsx bytes.
func CandidatesWorkbook(job model.Job, rows []CandidateRow, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(candidatesSheet); err != nil {
		return nil, err
	}

	ranked := make([]CandidateRow, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score() > ranked[j].Score() })

	if err := writeSummary(f, job, ranked, generatedAt); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeCandidates(f, ranked); err != nil {
		return nil, fmt.Errorf("failed to create candidates sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, job model.Job, rows []CandidateRow, generatedAt time.Time) error {
	f.SetColWidth(summarySheet, "A", "A", 25)
	f.SetColWidth(summarySheet, "B", "B", 50)

	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	counts := map[string]int{}
	for _, r := range rows {
		counts[r.Application.Status]++
	}

	lines := [][]any{
		{"Job Title:", job.Title},
		{"Company:", job.Company},
		{"Location:", job.Location},
		{"Generated:", generatedAt.Format("2006-01-02 15:04:05")},
		{"Total Candidates:", len(rows)},
	}
	for _, status := range []string{
		model.ApplicationStatusPending,
		model.ApplicationStatusApproved,
		model.ApplicationStatusInterviewing,
		model.ApplicationStatusCompletedInterview,
		model.ApplicationStatusSelected,
		model.ApplicationStatusRejected,
	} {
		lines = append(lines, []any{status + ":", counts[status]})
	}

	for i, line := range lines {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &line); err != nil {
			return err
		}
		f.SetCellStyle(summarySheet, cell, cell, labelStyle)
	}
	return nil
}

func writeCandidates(f *excelize.File, rows []CandidateRow) error {
	widths := map[string]float64{"A": 8, "B": 25, "C": 30, "D": 20, "E": 14, "F": 14, "G": 20, "H": 20}
	for col, w := range widths {
		f.SetColWidth(candidatesSheet, col, col, w)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	headers := []any{"Rank", "Candidate", "Email", "Status", "Score", "Report", "Applied", "Interview Started"}
	if err := f.SetSheetRow(candidatesSheet, "A1", &headers); err != nil {
		return err
	}
	f.SetCellStyle(candidatesSheet, "A1", "H1", headerStyle)

	for i, r := range rows {
		reportStatus := ""
		if r.Report != nil {
			reportStatus = r.Report.Status
		}
		started := ""
		if r.Application.InterviewStartDate != nil {
			started = r.Application.InterviewStartDate.Format("2006-01-02 15:04")
		}
		row := []any{
			i + 1,
			r.Application.CandidateName,
			r.Application.CandidateEmail,
			r.Application.Status,
			fmt.Sprintf("%.2f", r.Score()),
			reportStatus,
			r.Application.CreatedAt.Format("2006-01-02 15:04"),
			started,
		}
		if err := f.SetSheetRow(candidatesSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	if len(rows) > 0 {
		f.AutoFilter(candidatesSheet, fmt.Sprintf("A1:H%d", len(rows)+1), []excelize.AutoFilterOptions{})
	}

	return f.SetPanes(candidatesSheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
