package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByJobAndStatusFiltersBothColumns(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewApplicationRepository(db)
	jobID := uuid.New()

	_, err := repo.FindByJobAndStatus(context.Background(), jobID, model.ApplicationStatusApproved)
	require.NoError(t, err)

	stmt := rec.find(t, `SELECT * FROM "applications"`)
	assert.Equal(t,
		fmt.Sprintf(`SELECT * FROM "applications" WHERE job_id = '%s' AND status = 'Approved'`, jobID),
		stmt,
	)
}

func TestUpdateStatusByIDsTouchesOnlyTheGivenRows(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewApplicationRepository(db)
	a, b := uuid.New(), uuid.New()

	_, err := repo.UpdateStatusByIDs(context.Background(), []uuid.UUID{a, b}, model.ApplicationStatusInterviewing)
	require.NoError(t, err)

	stmt := rec.find(t, `UPDATE "applications" SET`)
	assert.Contains(t, stmt, `"status"='Interviewing'`)
	assert.Contains(t, stmt, fmt.Sprintf(`WHERE id IN ('%s','%s')`, a, b))
}

func TestUpdateStatusByIDsWithoutIDs(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewApplicationRepository(db)

	n, err := repo.UpdateStatusByIDs(context.Background(), nil, model.ApplicationStatusInterviewing)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, rec.all(), "an empty id list must not become an unscoped update")
}

func TestListInterviewsPagesEveryCandidateOrOne(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		wantWhere string
	}{
		{
			name:      "recruiter board",
			wantWhere: `WHERE status IN ('Interviewing','Selected')`,
		},
		{
			name:      "candidate board",
			email:     "ada@example.com",
			wantWhere: `WHERE status IN ('Interviewing','Selected') AND candidate_email = 'ada@example.com'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, rec := newDryRunDB(t)
			repo := NewApplicationRepository(db)

			_, _, err := repo.ListInterviews(context.Background(), InterviewFilter{
				Statuses:       []string{model.ApplicationStatusInterviewing, model.ApplicationStatusSelected},
				CandidateEmail: tt.email,
				Offset:         5,
				Limit:          5,
			})
			require.NoError(t, err)

			count := rec.find(t, `SELECT count(*) FROM "applications"`)
			assert.Equal(t, `SELECT count(*) FROM "applications" `+tt.wantWhere, count)

			page := rec.find(t, `SELECT * FROM "applications"`)
			assert.Equal(t,
				`SELECT * FROM "applications" `+tt.wantWhere+` ORDER BY created_at DESC,id DESC LIMIT 5 OFFSET 5`,
				page,
			)
		})
	}
}
