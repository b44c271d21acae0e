package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepositoryScopesByRecipient(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		run    func(r *NotificationRepository) error
		prefix string
		want   []string
	}{
		{
			name: "mark all read",
			run: func(r *NotificationRepository) error {
				_, err := r.MarkAllRead(ctx, "  ada@example.com ")
				return err
			},
			prefix: `UPDATE "notifications" SET`,
			want: []string{
				`"is_read"=true`,
				`WHERE candidate_email = 'ada@example.com' AND is_read = false`,
			},
		},
		{
			name: "delete all",
			run: func(r *NotificationRepository) error {
				_, err := r.DeleteAll(ctx, "ada@example.com")
				return err
			},
			prefix: `DELETE FROM "notifications"`,
			want:   []string{`DELETE FROM "notifications" WHERE candidate_email = 'ada@example.com'`},
		},
		{
			name: "count unread",
			run: func(r *NotificationRepository) error {
				_, err := r.CountUnread(ctx, "ada@example.com")
				return err
			},
			prefix: `SELECT count(*) FROM "notifications"`,
			want:   []string{`WHERE candidate_email = 'ada@example.com' AND is_read = false`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, rec := newDryRunDB(t)
			require.NoError(t, tt.run(NewNotificationRepository(db)))

			stmts := rec.all()
			require.Len(t, stmts, 1)
			stmt := rec.find(t, tt.prefix)
			for _, fragment := range tt.want {
				assert.Contains(t, stmt, fragment)
			}
		})
	}
}

func TestNotificationRepositoryListsNewestFirst(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewNotificationRepository(db)

	_, _, err := repo.ListByRecipient(context.Background(), "ada@example.com", 20, 10)
	require.NoError(t, err)

	count := rec.find(t, `SELECT count(*) FROM "notifications"`)
	assert.Equal(t, `SELECT count(*) FROM "notifications" WHERE candidate_email = 'ada@example.com'`, count)

	page := rec.find(t, `SELECT * FROM "notifications"`)
	assert.Equal(t,
		`SELECT * FROM "notifications" WHERE candidate_email = 'ada@example.com' ORDER BY created_at DESC,id DESC LIMIT 10 OFFSET 20`,
		page,
	)
}

func TestNotificationRepositoryRequiresRecipient(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	_, err := repo.MarkAllRead(ctx, "   ")
	assert.ErrorIs(t, err, ErrRecipientRequired)
	_, err = repo.DeleteAll(ctx, "")
	assert.ErrorIs(t, err, ErrRecipientRequired)
	_, err = repo.CountUnread(ctx, "")
	assert.ErrorIs(t, err, ErrRecipientRequired)
	_, _, err = repo.ListByRecipient(ctx, "", 0, 10)
	assert.ErrorIs(t, err, ErrRecipientRequired)

	assert.Empty(t, rec.all(), "no statement may run without a recipient")
}
