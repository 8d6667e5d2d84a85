package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-dashboard/internal/models"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
	"github.com/noah-isme/academic-dashboard/pkg/jobs"
	"github.com/noah-isme/academic-dashboard/pkg/storage"
)

type fakeContents struct {
	items  map[int64]*models.CourseContent
	nextID int64
}

func (f *fakeContents) Create(ctx context.Context, c *models.CourseContent) error {
	f.nextID++
	c.ID = f.nextID
	c.UploadedAt = time.Now().UTC()
	clone := *c
	f.items[c.ID] = &clone
	return nil
}

func (f *fakeContents) FindByID(ctx context.Context, id int64) (*models.CourseContent, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (f *fakeContents) ListByCourse(ctx context.Context, courseID int64) ([]models.CourseContent, error) {
	var out []models.CourseContent
	for _, c := range f.items {
		if c.CourseID == courseID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeContents) MarkProcessed(ctx context.Context, id int64, text *string, at time.Time) error {
	c, ok := f.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.Status = models.ContentProcessed
	c.ExtractedText = text
	c.ProcessedAt = &at
	return nil
}

func (f *fakeContents) MarkFailed(ctx context.Context, id int64, at time.Time) error {
	c, ok := f.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.Status = models.ContentFailed
	c.ProcessedAt = &at
	return nil
}

type recordingQueue struct {
	jobs []jobs.Job
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

type contentFixture struct {
	svc      *ContentService
	worker   *ContentWorker
	contents *fakeContents
	store    *storage.LocalStorage
	queue    *recordingQueue
	audit    *fakeAudit
}

func newContentFixture(t *testing.T, maxSize int64) *contentFixture {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	courses := newFakeCourses(models.Course{ID: 1, Code: "CS101", Name: "Intro", TeacherID: int64Ptr(2)})
	contents := &fakeContents{items: make(map[int64]*models.CourseContent)}
	queue := &recordingQueue{}
	audit := &fakeAudit{}
	enrollments := fakeEnrollments{{student: 3, course: 1}: true}
	signer := storage.NewSignedURLSigner("signing-secret", time.Hour)
	svc := NewContentService(contents, courses, enrollments, store, signer, queue, audit, ContentConfig{APIPrefix: "/api", MaxFileSizeBytes: maxSize}, zap.NewNop())
	worker := NewContentWorker(contents, store, NewMetricsService(), zap.NewNop())
	return &contentFixture{svc: svc, worker: worker, contents: contents, store: store, queue: queue, audit: audit}
}

func TestContentServiceUploadAndProcess(t *testing.T) {
	f := newContentFixture(t, 1024)

	res, err := f.svc.Upload(context.Background(), teacherClaims(2), 1, "notes.txt", strings.NewReader("Photosynthesis converts light.\n\nMitochondria make ATP."), RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "File 'notes.txt' uploaded successfully.", res.Message)
	assert.Equal(t, "notes.txt", res.Content.FileName)
	assert.Equal(t, string(models.ContentPending), res.Content.Status)
	assert.NotEmpty(t, res.Content.DownloadURL)
	require.Len(t, f.queue.jobs, 1)
	require.Len(t, f.audit.logs, 1)

	require.NoError(t, f.worker.Handle(context.Background(), f.queue.jobs[0]))
	stored := f.contents.items[res.Content.ID]
	assert.Equal(t, models.ContentProcessed, stored.Status)
	require.NotNil(t, stored.ExtractedText)
	assert.Contains(t, *stored.ExtractedText, "Mitochondria")
}

func TestContentServiceUploadRejectsExtension(t *testing.T) {
	f := newContentFixture(t, 1024)

	_, err := f.svc.Upload(context.Background(), teacherClaims(2), 1, "virus.exe", strings.NewReader("x"), RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedMedia)
	assert.Empty(t, f.queue.jobs)
}

func TestContentServiceUploadRequiresAssignedTeacher(t *testing.T) {
	f := newContentFixture(t, 1024)

	_, err := f.svc.Upload(context.Background(), teacherClaims(5), 1, "notes.pdf", strings.NewReader("x"), RequestMeta{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 403, appErr.Status)
	assert.Equal(t, "You are not the assigned teacher for this course.", appErr.Message)
	assert.Empty(t, f.contents.items)
}

func TestContentServiceUploadTooLarge(t *testing.T) {
	f := newContentFixture(t, 4)

	_, err := f.svc.Upload(context.Background(), teacherClaims(2), 1, "big.txt", strings.NewReader("0123456789"), RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, 413, appErrors.FromError(err).Status)
	assert.Empty(t, f.contents.items)
}

func TestContentServiceDownload(t *testing.T) {
	f := newContentFixture(t, 1024)
	res, err := f.svc.Upload(context.Background(), teacherClaims(2), 1, "notes.txt", strings.NewReader("hello"), RequestMeta{})
	require.NoError(t, err)

	link, err := url.Parse(res.Content.DownloadURL)
	require.NoError(t, err)
	token := link.Query().Get("token")

	content, file, err := f.svc.Download(context.Background(), res.Content.ID, token, studentClaims(3))
	require.NoError(t, err)
	defer file.Close()
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "notes.txt", content.OriginalName)

	_, _, err = f.svc.Download(context.Background(), res.Content.ID, token, studentClaims(4))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, _, err = f.svc.Download(context.Background(), res.Content.ID+1, token, studentClaims(3))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestContentWorkerGiveUpMarksFailed(t *testing.T) {
	f := newContentFixture(t, 1024)
	f.contents.items[7] = &models.CourseContent{ID: 7, CourseID: 1, OriginalName: "gone.txt", StoredPath: "course_1/missing.txt", Status: models.ContentPending}

	job := jobs.Job{ID: "job-1", Type: JobTypeContentProcess, Payload: int64(7)}
	err := f.worker.Handle(context.Background(), job)
	require.Error(t, err)

	f.worker.GiveUp(context.Background(), job, err)
	assert.Equal(t, models.ContentFailed, f.contents.items[7].Status)
}

func TestContentWorkerRejectsBadPayload(t *testing.T) {
	f := newContentFixture(t, 1024)

	err := f.worker.Handle(context.Background(), jobs.Job{ID: "job-2", Payload: "seven"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, sql.ErrNoRows))
}
