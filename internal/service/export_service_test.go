package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-dashboard/internal/models"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
)

func newExportFixture() *ExportService {
	f := newGradeFixture()
	submitted := time.Date(2024, 4, 30, 8, 15, 0, 0, time.UTC)
	f.grades.items[1] = &models.Grade{ID: 1, AssignmentID: 10, StudentID: 3, StudentUsername: "alice", Score: float64Ptr(88.5), SubmissionStatus: models.SubmissionGraded, SubmittedAt: &submitted}
	f.grades.items[2] = &models.Grade{ID: 2, AssignmentID: 10, StudentID: 4, StudentUsername: "bob", SubmissionStatus: models.SubmissionMissing}
	svc := NewExportService(f.svc, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportServiceGradeSheetCSV(t *testing.T) {
	svc := newExportFixture()

	file, err := svc.GradeSheet(context.Background(), 1, "csv", teacherClaims(2))
	require.NoError(t, err)
	assert.Equal(t, "grades_cs101_20240502_120000.csv", file.FileName)
	assert.Equal(t, "text/csv", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, gradeSheetHeaders, records[0])

	byStudent := map[string][]string{}
	for _, r := range records[1:] {
		byStudent[r[0]] = r
	}
	assert.Equal(t, []string{"alice", "HW1", "88.50", "100.00", "graded", "2024-04-30 08:15", ""}, byStudent["alice"])
	assert.Equal(t, "N/A", byStudent["bob"][2])
	assert.Equal(t, "N/A", byStudent["bob"][5])
}

func TestExportServiceGradeSheetPDF(t *testing.T) {
	svc := newExportFixture()

	file, err := svc.GradeSheet(context.Background(), 1, "PDF", teacherClaims(2))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportServiceRejectsFormatAndForeignTeacher(t *testing.T) {
	svc := newExportFixture()

	_, err := svc.GradeSheet(context.Background(), 1, "xlsx", teacherClaims(2))
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "format")

	_, err = svc.GradeSheet(context.Background(), 1, "csv", teacherClaims(9))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
