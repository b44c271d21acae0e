package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/hiremind/hiremind-api/internal/repository"
	"github.com/hiremind/hiremind-api/internal/service"
	"github.com/pgvector/pgvector-go"
)

type fakeJobRepo struct {
	jobs map[uuid.UUID]*model.Job
}

func newFakeJobRepo(jobs ...*model.Job) *fakeJobRepo {
	r := &fakeJobRepo{jobs: map[uuid.UUID]*model.Job{}}
	for _, j := range jobs {
		if j.ID == uuid.Nil {
			j.ID = uuid.New()
		}
		r.jobs[j.ID] = j
	}
	return r
}

func (r *fakeJobRepo) SearchJobs(_ context.Context, _ pgvector.Vector, topK int) ([]model.Job, error) {
	out := []model.Job{}
	for _, j := range r.jobs {
		if j.Embedding != nil && len(out) < topK {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) CreateJob(_ context.Context, job *model.Job) error {
	job.ID = uuid.New()
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) UpdateJob(_ context.Context, job *model.Job) error {
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) FindJobByID(_ context.Context, id uuid.UUID) (*model.Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) GetJobs(_ context.Context, offset, limit int) ([]model.Job, int64, error) {
	all := make([]model.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		all = append(all, *j)
	}
	return page(all, offset, limit), int64(len(all)), nil
}

func (r *fakeJobRepo) FindJobsWithoutEmbedding(_ context.Context, limit int) ([]model.Job, error) {
	out := []model.Job{}
	for _, j := range r.jobs {
		if j.Embedding == nil && j.Description != "" && len(out) < limit {
			out = append(out, *j)
		}
	}
	return out, nil
}

type fakeAppRepo struct {
	mu      sync.Mutex
	apps    map[uuid.UUID]*model.Application
	jobs    *fakeJobRepo
	updates int
	scores  map[uuid.UUID]float64
}

func newFakeAppRepo(jobs *fakeJobRepo, apps ...*model.Application) *fakeAppRepo {
	r := &fakeAppRepo{apps: map[uuid.UUID]*model.Application{}, jobs: jobs, scores: map[uuid.UUID]float64{}}
	for _, a := range apps {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		r.apps[a.ID] = a
	}
	return r
}

func (r *fakeAppRepo) withJob(a model.Application) model.Application {
	if j, ok := r.jobs.jobs[a.JobID]; ok {
		cp := *j
		a.Job = &cp
	}
	return a
}

func (r *fakeAppRepo) Create(_ context.Context, app *model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app.ID = uuid.New()
	app.CreatedAt = time.Now()
	cp := *app
	r.apps[app.ID] = &cp
	return nil
}

func (r *fakeAppRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := r.withJob(*a)
	return &out, nil
}

func (r *fakeAppRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.updates++
	a.Status = status
	return nil
}

func (r *fakeAppRepo) FindByJobAndStatus(_ context.Context, jobID uuid.UUID, status string) ([]model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Application{}
	for _, a := range r.apps {
		if a.JobID == jobID && a.Status == status {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) UpdateStatusByIDs(_ context.Context, ids []uuid.UUID, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if a, ok := r.apps[id]; ok {
			a.Status = status
			n++
		}
	}
	r.updates++
	return n, nil
}

func (r *fakeAppRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Application{}
	for _, a := range r.apps {
		if a.JobID == jobID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) ListInterviews(_ context.Context, filter repository.InterviewFilter) ([]model.Application, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := []model.Application{}
	for _, a := range r.apps {
		if !contains(filter.Statuses, a.Status) {
			continue
		}
		if filter.CandidateEmail != "" && !strings.EqualFold(a.CandidateEmail, filter.CandidateEmail) {
			continue
		}
		all = append(all, r.withJob(*a))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() > all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, filter.Offset, filter.Limit), int64(len(all)), nil
}

func (r *fakeAppRepo) SetInterviewStart(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.InterviewStartDate = &at
	return nil
}

func (r *fakeAppRepo) UpdateInterviewScore(_ context.Context, id uuid.UUID, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.InterviewScore = score
	r.scores[id] = score
	return nil
}

// fakeNotificationRepo keeps rows in insertion order; newest is last.
type fakeNotificationRepo struct {
	rows []*model.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.CandidateEmail == "" {
		return repository.ErrRecipientRequired
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Unix(int64(len(r.rows)), 0)
	r.rows = append(r.rows, n)
	return nil
}

func (r *fakeNotificationRepo) recipientRows(email string) []model.Notification {
	out := []model.Notification{}
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].CandidateEmail == email {
			out = append(out, *r.rows[i])
		}
	}
	return out
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, email string, offset, limit int) ([]model.Notification, int64, error) {
	all := r.recipientRows(email)
	return page(all, offset, limit), int64(len(all)), nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, email string) (int64, error) {
	var n int64
	for _, row := range r.rows {
		if row.CandidateEmail == email && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, email string) (int64, error) {
	var n int64
	for _, row := range r.rows {
		if row.CandidateEmail == email && !row.IsRead {
			row.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) DeleteAll(_ context.Context, email string) (int64, error) {
	kept := r.rows[:0]
	var n int64
	for _, row := range r.rows {
		if row.CandidateEmail == email {
			n++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return n, nil
}

type fakeReportRepo struct {
	reports map[uuid.UUID]model.InterviewReport
	history []string
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[uuid.UUID]model.InterviewReport{}}
}

func (r *fakeReportRepo) Upsert(_ context.Context, report *model.InterviewReport) error {
	r.reports[report.ApplicationID] = *report
	r.history = append(r.history, report.Status)
	return nil
}

func (r *fakeReportRepo) FindByApplicationID(_ context.Context, id uuid.UUID) (*model.InterviewReport, error) {
	rep, ok := r.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rep, nil
}

func (r *fakeReportRepo) FindByApplicationIDs(_ context.Context, ids []uuid.UUID) ([]model.InterviewReport, error) {
	out := []model.InterviewReport{}
	for _, id := range ids {
		if rep, ok := r.reports[id]; ok {
			out = append(out, rep)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	notices []service.Notice
	failFor map[string]bool
}

func (n *fakeNotifier) Notify(_ context.Context, notice service.Notice) error {
	if err := notice.Validate(); err != nil {
		return err
	}
	if n.failFor[notice.Application.CandidateEmail] {
		return errors.New("smtp down")
	}
	n.notices = append(n.notices, notice)
	return nil
}

type fakeEvents struct {
	events []service.StatusEvent
}

func (e *fakeEvents) PublishStatusEvent(_ context.Context, ev service.StatusEvent) error {
	e.events = append(e.events, ev)
	return nil
}

type fakeStorage struct {
	objects     map[string][]byte
	downloadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Upload(_ context.Context, prefix, filename, _ string, data []byte) (string, error) {
	key := service.ObjectKey(prefix, filename, time.Now())
	s.objects[key] = append([]byte(nil), data...)
	return key, nil
}

func (s *fakeStorage) Download(_ context.Context, key string) ([]byte, error) {
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

type fakeQueue struct {
	messages []service.AnalysisMessage
	err      error
}

func (q *fakeQueue) EnqueueAnalysis(_ context.Context, msg service.AnalysisMessage) error {
	if q.err != nil {
		return q.err
	}
	q.messages = append(q.messages, msg)
	return nil
}

type fakeGemini struct {
	json       string
	jsonErr    error
	prompts    []string
	embedding  []float32
	embedErr   error
	transcript string
}

func (g *fakeGemini) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	return g.embedding, g.embedErr
}

func (g *fakeGemini) GenerateJSON(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.json, g.jsonErr
}

func (g *fakeGemini) TranscribeAudio(_ context.Context, _ []byte, _ string) (string, error) {
	return g.transcript, nil
}

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
