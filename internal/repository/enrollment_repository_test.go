package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListForStudentNestsCourse(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "enrollment_date", "course.id", "course.code", "course.name", "course.teacher_id", "course.teacher_username"}).
		AddRow(1, 9, 7, now, 7, "CS101", "Intro", 3, "mr_smith").
		AddRow(2, 9, 8, now, 8, "MA201", "Algebra", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments e")).WithArgs(int64(9)).WillReturnRows(rows)

	items, err := repo.ListForStudent(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "CS101", items[0].Course.Code)
	require.NotNil(t, items[0].Course.TeacherUsername)
	assert.Equal(t, "mr_smith", *items[0].Course.TeacherUsername)
	assert.Nil(t, items[1].Course.TeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsEnrolled(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)")).
		WithArgs(int64(9), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsEnrolled(context.Background(), 9, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id FROM enrollments WHERE course_id = $1 ORDER BY student_id")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(3).AddRow(9))

	ids, err := repo.StudentIDs(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 9}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
