package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-dashboard/internal/dto"
	"github.com/noah-isme/academic-dashboard/internal/models"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
	"github.com/noah-isme/academic-dashboard/pkg/jobs"
	"github.com/noah-isme/academic-dashboard/pkg/storage"
)

// JobTypeContentProcess identifies content processing jobs on the queue.
const JobTypeContentProcess = "content.process"

type contentRepository interface {
	Create(ctx context.Context, c *models.CourseContent) error
	FindByID(ctx context.Context, id int64) (*models.CourseContent, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.CourseContent, error)
	MarkProcessed(ctx context.Context, id int64, text *string, at time.Time) error
	MarkFailed(ctx context.Context, id int64, at time.Time) error
}

type contentStorage interface {
	SaveStream(relPath string, r io.Reader, limit int64) (int64, error)
	Open(relPath string) (*os.File, error)
	ReadAll(relPath string) ([]byte, error)
	Delete(relPath string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ContentConfig tunes uploads.
type ContentConfig struct {
	APIPrefix         string
	MaxFileSizeBytes  int64
	AllowedExtensions []string
}

// ContentService stores teacher uploads and hands them to the processing queue.
type ContentService struct {
	repo        contentRepository
	courses     courseFinder
	enrollments enrollmentChecker
	storage     contentStorage
	signer      *storage.SignedURLSigner
	queue       jobDispatcher
	audit       auditWriter
	logger      *zap.Logger
	cfg         ContentConfig
	allowed     map[string]struct{}
}

// NewContentService constructs a ContentService.
func NewContentService(repo contentRepository, courses courseFinder, enrollments enrollmentChecker, store contentStorage, signer *storage.SignedURLSigner, queue jobDispatcher, audit auditWriter, cfg ContentConfig, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 10 << 20
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{"pdf", "docx", "txt"}
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))] = struct{}{}
	}
	return &ContentService{
		repo:        repo,
		courses:     courses,
		enrollments: enrollments,
		storage:     store,
		signer:      signer,
		queue:       queue,
		audit:       audit,
		logger:      logger,
		cfg:         cfg,
		allowed:     allowed,
	}
}

// Upload stores a file for a course taught by the caller and queues it for processing.
func (s *ContentService) Upload(ctx context.Context, caller *models.JWTClaims, courseID int64, filename string, r io.Reader, meta RequestMeta) (*dto.UploadContentResponse, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fieldError("file", "No file was submitted.")
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if _, ok := s.allowed[ext]; !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, fmt.Sprintf("File type not allowed. Allowed types: %s", strings.Join(s.cfg.AllowedExtensions, ", ")))
	}
	if _, err := ownedCourse(ctx, s.courses, courseID, caller); err != nil {
		return nil, err
	}

	relPath := storage.ContentPath(courseID, name)
	size, err := s.storage.SaveStream(relPath, r, s.cfg.MaxFileSizeBytes)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			return nil, appErrors.New("FILE_TOO_LARGE", http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds the maximum size of %d bytes.", s.cfg.MaxFileSizeBytes))
		}
		return nil, internal(err, "failed to store file")
	}

	content := &models.CourseContent{
		CourseID:     courseID,
		UploadedBy:   caller.UserID,
		OriginalName: name,
		StoredPath:   relPath,
		MimeType:     mimeFor(ext),
		SizeBytes:    size,
		Status:       models.ContentPending,
	}
	if err := s.repo.Create(ctx, content); err != nil {
		if delErr := s.storage.Delete(relPath); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("path", relPath), zap.Error(delErr))
		}
		return nil, internal(err, "failed to record upload")
	}

	if err := s.queue.Enqueue(jobs.Job{Type: JobTypeContentProcess, Payload: content.ID}); err != nil {
		s.logger.Warn("failed to enqueue content processing", zap.Int64("content_id", content.ID), zap.Error(err))
	}
	recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionContentUpload, "course_content", content.ID, map[string]interface{}{
		"course_id": courseID,
		"file_name": name,
		"size":      size,
	}, meta)

	return &dto.UploadContentResponse{
		Message: fmt.Sprintf("File '%s' uploaded successfully.", name),
		Content: s.view(*content),
	}, nil
}

// ListByCourse returns contents of a course taught by the caller with signed download links.
func (s *ContentService) ListByCourse(ctx context.Context, courseID int64, caller *models.JWTClaims) ([]dto.ContentRead, error) {
	if _, err := ownedCourse(ctx, s.courses, courseID, caller); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, internal(err, "failed to list contents")
	}
	out := make([]dto.ContentRead, 0, len(items))
	for _, item := range items {
		out = append(out, s.view(item))
	}
	return out, nil
}

// Download checks the signed token and access to the course, then opens the stored file.
// The caller must close the returned file.
func (s *ContentService) Download(ctx context.Context, id int64, token string, caller *models.JWTClaims) (*models.CourseContent, *os.File, error) {
	contentID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil || contentID != strconv.FormatInt(id, 10) {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "Download link is invalid or has expired.")
	}
	content, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, nil, internal(err, "failed to load content")
	}
	if content.StoredPath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "Download link is invalid or has expired.")
	}
	if err := s.checkReader(ctx, content.CourseID, caller); err != nil {
		return nil, nil, err
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "file no longer available")
		}
		return nil, nil, internal(err, "failed to open file")
	}
	return content, file, nil
}

// checkReader allows the course's teacher and its enrolled students.
func (s *ContentService) checkReader(ctx context.Context, courseID int64, caller *models.JWTClaims) error {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return internal(err, "failed to load course")
	}
	if teaches(course, caller) {
		return nil
	}
	enrolled, err := s.enrollments.IsEnrolled(ctx, caller.UserID, courseID)
	if err != nil {
		return internal(err, "failed to check enrollment")
	}
	if !enrolled {
		return appErrors.ErrForbidden
	}
	return nil
}

func (s *ContentService) view(c models.CourseContent) dto.ContentRead {
	out := dto.ContentFromModel(c)
	if s.signer == nil {
		return out
	}
	token, expiresAt, err := s.signer.Generate(strconv.FormatInt(c.ID, 10), c.StoredPath)
	if err != nil {
		s.logger.Warn("failed to sign content url", zap.Int64("content_id", c.ID), zap.Error(err))
		return out
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api"
	}
	out.DownloadURL = fmt.Sprintf("%s/contents/%d/download?token=%s", prefix, c.ID, token)
	out.URLExpiresAt = expiresAt.UTC().Format(time.RFC3339)
	return out
}

func mimeFor(ext string) string {
	if t := mime.TypeByExtension("." + ext); t != "" {
		return t
	}
	switch ext {
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// ContentWorker bridges queue jobs to content processing. Plain text files have their text
// extracted for the chatbot; other formats are stored without text.
type ContentWorker struct {
	repo    contentRepository
	storage contentStorage
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewContentWorker constructs a worker.
func NewContentWorker(repo contentRepository, store contentStorage, metrics *MetricsService, logger *zap.Logger) *ContentWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentWorker{repo: repo, storage: store, metrics: metrics, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Handle processes a queue job.
func (w *ContentWorker) Handle(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(int64)
	if !ok {
		return fmt.Errorf("content job %s: unexpected payload %T", job.ID, job.Payload)
	}
	content, err := w.repo.FindByID(ctx, id)
	if err != nil {
		w.metrics.RecordContentJob("retry")
		return fmt.Errorf("load content %d: %w", id, err)
	}

	var text *string
	if strings.EqualFold(filepath.Ext(content.OriginalName), ".txt") {
		raw, err := w.storage.ReadAll(content.StoredPath)
		if err != nil {
			w.metrics.RecordContentJob("retry")
			return fmt.Errorf("read content %d: %w", id, err)
		}
		extracted := strings.ToValidUTF8(strings.TrimSpace(string(raw)), "")
		text = &extracted
	}

	if err := w.repo.MarkProcessed(ctx, id, text, w.now()); err != nil {
		w.metrics.RecordContentJob("retry")
		return fmt.Errorf("mark content %d processed: %w", id, err)
	}
	w.metrics.RecordContentJob("processed")
	w.logger.Info("content processed", zap.Int64("content_id", id), zap.Bool("has_text", text != nil))
	return nil
}

// GiveUp marks content as failed once the queue stops retrying it.
func (w *ContentWorker) GiveUp(ctx context.Context, job jobs.Job, cause error) {
	w.metrics.RecordContentJob("failed")
	id, ok := job.Payload.(int64)
	if !ok {
		return
	}
	if err := w.repo.MarkFailed(ctx, id, w.now()); err != nil {
		w.logger.Warn("failed to mark content failed", zap.Int64("content_id", id), zap.Error(err), zap.NamedError("cause", cause))
	}
}
