package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/noah-isme/academic-dashboard/internal/models"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
)

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }

func teacherClaims(id int64) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Username: fmt.Sprintf("teacher%d", id), Groups: []string{models.GroupTeachers}}
}

func studentClaims(id int64) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Username: fmt.Sprintf("student%d", id), Groups: []string{models.GroupStudents}}
}

type fakeCourses struct {
	items     map[int64]*models.Course
	nextID    int64
	createErr error
}

func newFakeCourses(courses ...models.Course) *fakeCourses {
	f := &fakeCourses{items: make(map[int64]*models.Course), nextID: 100}
	for i := range courses {
		c := courses[i]
		f.items[c.ID] = &c
	}
	return f
}

func (f *fakeCourses) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCourses) ListByTeacher(ctx context.Context, teacherID int64) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.items {
		if c.TeacherID != nil && *c.TeacherID == teacherID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourses) Create(ctx context.Context, course *models.Course) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	course.ID = f.nextID
	clone := *course
	f.items[course.ID] = &clone
	return nil
}

func (f *fakeCourses) Update(ctx context.Context, course *models.Course) error {
	if _, ok := f.items[course.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *course
	f.items[course.ID] = &clone
	return nil
}

type fakeUsers map[int64]*models.User

func (f fakeUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

type fakeAssignments struct {
	items  map[int64]*models.Assignment
	nextID int64
}

func newFakeAssignments(items ...models.Assignment) *fakeAssignments {
	f := &fakeAssignments{items: make(map[int64]*models.Assignment), nextID: 500}
	for i := range items {
		a := items[i]
		f.items[a.ID] = &a
	}
	return f
}

func (f *fakeAssignments) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *a
	return &clone, nil
}

func (f *fakeAssignments) Create(ctx context.Context, a *models.Assignment) error {
	f.nextID++
	a.ID = f.nextID
	clone := *a
	f.items[a.ID] = &clone
	return nil
}

func (f *fakeAssignments) Update(ctx context.Context, a *models.Assignment) error {
	if _, ok := f.items[a.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *a
	f.items[a.ID] = &clone
	return nil
}

type enrollmentKey struct{ student, course int64 }

type fakeEnrollments map[enrollmentKey]bool

func (f fakeEnrollments) IsEnrolled(ctx context.Context, studentID, courseID int64) (bool, error) {
	return f[enrollmentKey{studentID, courseID}], nil
}

type fakeAudit struct {
	logs []*models.AuditLog
}

func (f *fakeAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

type fakeCacheRepo struct {
	data        map[string][]byte
	invalidated []string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{data: make(map[string][]byte)}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	f.invalidated = append(f.invalidated, pattern)
	for key := range f.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(f.data, key)
		}
	}
	return nil
}
