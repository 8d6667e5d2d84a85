package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-dashboard/internal/models"
	"github.com/noah-isme/academic-dashboard/pkg/cache"
)

type fakeStudentData struct {
	enrollments []models.Enrollment
	assignments []models.Assignment
	grades      []models.Grade
	from        time.Time
	calls       int
	err         error
}

func (f *fakeStudentData) ListForStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	f.calls++
	return f.enrollments, f.err
}

func (f *fakeStudentData) ListUpcomingForStudent(ctx context.Context, studentID int64, from time.Time) ([]models.Assignment, error) {
	f.calls++
	f.from = from
	return f.assignments, f.err
}

type fakeStudentGrades struct{ *fakeStudentData }

func (f fakeStudentGrades) ListForStudent(ctx context.Context, studentID int64) ([]models.Grade, error) {
	f.calls++
	return f.grades, f.err
}

func newStudentFixture(data *fakeStudentData, cacheRepo CacheRepository) *StudentService {
	cacheSvc := NewCacheService(cacheRepo, NewMetricsService(), time.Minute, zap.NewNop(), cacheRepo != nil)
	return NewStudentService(data, data, fakeStudentGrades{data}, cacheSvc, zap.NewNop())
}

func TestStudentServiceMyCoursesNestsCourse(t *testing.T) {
	data := &fakeStudentData{enrollments: []models.Enrollment{{
		ID:             1,
		StudentID:      3,
		CourseID:       1,
		EnrollmentDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Course:         models.Course{ID: 1, Code: "CS101", Name: "Intro"},
	}}}
	svc := newStudentFixture(data, nil)

	payload, hit, err := svc.MyCourses(context.Background(), studentClaims(3))
	require.NoError(t, err)
	assert.False(t, hit)

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &out))
	require.Len(t, out, 1)
	course := out[0]["course"].(map[string]interface{})
	assert.Equal(t, "CS101", course["code"])
	assert.Nil(t, course["teacher_username"])
	assert.NotContains(t, course, "teacher_id")
}

func TestStudentServiceCachesCollections(t *testing.T) {
	data := &fakeStudentData{grades: []models.Grade{{ID: 1, AssignmentTitle: "HW1", SubmissionStatus: models.SubmissionPending}}}
	cacheRepo := newFakeCacheRepo()
	svc := newStudentFixture(data, cacheRepo)

	first, hit, err := svc.MyGrades(context.Background(), studentClaims(3))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, cacheRepo.data, cache.StudentKey(3, "grades"))

	second, hit, err := svc.MyGrades(context.Background(), studentClaims(3))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, 1, data.calls)
}

func TestStudentServiceEmptyListsAreArrays(t *testing.T) {
	svc := newStudentFixture(&fakeStudentData{}, nil)

	payload, _, err := svc.MyAssignments(context.Background(), studentClaims(3))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(payload))
}

func TestStudentServiceMyAssignmentsUsesNow(t *testing.T) {
	data := &fakeStudentData{}
	svc := newStudentFixture(data, newFakeCacheRepo())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, hit, err := svc.MyAssignments(context.Background(), studentClaims(3))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, now, data.from)
}

func TestStudentServicePropagatesErrors(t *testing.T) {
	svc := newStudentFixture(&fakeStudentData{err: errors.New("db down")}, newFakeCacheRepo())

	_, _, err := svc.MyCourses(context.Background(), studentClaims(3))
	require.Error(t, err)
}
