package dto

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-dashboard/internal/models"
	"github.com/noah-isme/academic-dashboard/internal/projection"
)

func decode(t *testing.T, raw string) map[string]json.RawMessage {
	t.Helper()
	var p map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func strPtr(s string) *string { return &s }
func idPtr(v int64) *int64    { return &v }

func TestCourseNullTeacherHasNoUsername(t *testing.T) {
	course := models.Course{ID: 7, Code: "CS101", Name: "Intro", TeacherID: idPtr(3), TeacherUsername: strPtr("mr_smith")}

	require.NoError(t, CourseSchema.Apply(&course, decode(t, `{"teacher_id": null}`), true))
	assert.Nil(t, course.TeacherID)

	rec := CourseSchema.Read(course)
	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"name":"Intro","code":"CS101","teacher_username":null}`, string(out))
}

func TestCourseOmittedTeacherLeavesAssignment(t *testing.T) {
	course := models.Course{ID: 7, Code: "CS101", Name: "Intro", TeacherID: idPtr(3), TeacherUsername: strPtr("mr_smith")}
	require.NoError(t, CourseSchema.Apply(&course, decode(t, `{"name":"Intro to CS"}`), true))

	assert.Equal(t, idPtr(3), course.TeacherID)
	v, _ := CourseSchema.Read(course).Get("teacher_username")
	assert.Equal(t, strPtr("mr_smith"), v)
}

func TestCourseReadNeverExposesTeacherID(t *testing.T) {
	rec := CourseSchema.Read(models.Course{ID: 1, TeacherID: idPtr(3)})
	assert.False(t, rec.Has("teacher_id"))
}

func TestCourseWriteIgnoresTeacherUsername(t *testing.T) {
	var course models.Course
	require.NoError(t, CourseSchema.Apply(&course, decode(t, `{"name":"Algebra","code":"ma201","teacher_username":"spoof"}`), false))
	assert.Nil(t, course.TeacherUsername)
	assert.Equal(t, "MA201", course.Code)
}

func TestAssignmentReadHidesCourseReference(t *testing.T) {
	a := models.Assignment{ID: 4, CourseID: 7, CourseCode: "CS101", Title: "HW1", DueDate: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), TotalPoints: 100}
	rec := AssignmentSchema.Read(a)

	assert.False(t, rec.Has("course"))
	assert.False(t, rec.Has("course_id"))
	code, _ := rec.Get("course_code")
	assert.Equal(t, "CS101", code)
}

func TestAssignmentWriteRequiresCourse(t *testing.T) {
	var a models.Assignment
	err := AssignmentSchema.Apply(&a, decode(t, `{"title":"HW1","due_date":"2024-05-01T09:00:00Z","course_code":"CS999"}`), false)

	var verr *projection.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{projection.MsgRequired}, verr.Fields["course"])
	assert.NotContains(t, verr.Fields, "course_code")
	assert.Empty(t, a.CourseCode)
}

func TestAssignmentRejectsNonPositivePoints(t *testing.T) {
	var a models.Assignment
	err := AssignmentSchema.Apply(&a, decode(t, `{"course":7,"title":"HW1","due_date":"2024-05-01T09:00:00Z","total_points":0}`), false)

	var verr *projection.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "total_points")
}

func TestGradeDerivedFieldsIgnoredOnWrite(t *testing.T) {
	var g models.Grade
	err := GradeSchema.Apply(&g, decode(t, `{
		"assignment": 4, "student": 9,
		"student_username": "mallory", "assignment_title": "fake", "course_code": "XX",
		"score": "88.5", "submission_status": "Graded", "feedback": null
	}`), false)
	require.NoError(t, err)

	assert.EqualValues(t, 4, g.AssignmentID)
	assert.EqualValues(t, 9, g.StudentID)
	assert.Empty(t, g.StudentUsername)
	assert.Empty(t, g.AssignmentTitle)
	assert.Empty(t, g.CourseCode)
	require.NotNil(t, g.Score)
	assert.Equal(t, 88.5, *g.Score)
	assert.Equal(t, models.SubmissionGraded, g.SubmissionStatus)
	assert.Nil(t, g.Feedback)
}

func TestGradeRejectsUnknownStatus(t *testing.T) {
	g := models.Grade{SubmissionStatus: models.SubmissionPending}
	err := GradeSchema.Apply(&g, decode(t, `{"submission_status":"lost"}`), true)

	var verr *projection.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields["submission_status"][0], "not a valid choice")
	assert.Equal(t, models.SubmissionPending, g.SubmissionStatus)
}

func TestGradeReadView(t *testing.T) {
	g := models.Grade{ID: 1, AssignmentID: 4, StudentID: 9, AssignmentTitle: "HW1", StudentUsername: "alice", CourseCode: "CS101", SubmissionStatus: models.SubmissionMissing}
	out, err := json.Marshal(GradeSchema.Read(g))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"assignment_title":"HW1","student_username":"alice","course_code":"CS101","score":null,"submission_status":"missing","submitted_at":null,"feedback":null}`, string(out))
}

func TestStudentEnrollmentEmbedsCourse(t *testing.T) {
	e := models.Enrollment{
		ID:             2,
		EnrollmentDate: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
		Course:         models.Course{ID: 7, Code: "CS101", Name: "Intro", TeacherID: idPtr(3), TeacherUsername: strPtr("mr_smith")},
	}
	out, err := json.Marshal(StudentEnrollmentSchema.Read(e))
	require.NoError(t, err)

	var decoded EnrollmentRead
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "CS101", decoded.Course.Code)
	assert.Equal(t, strPtr("mr_smith"), decoded.Course.TeacherUsername)
	assert.Equal(t, "2024-01-10T08:00:00Z", decoded.EnrollmentDate)
}

func TestProfileIncludesGroups(t *testing.T) {
	rec := ProfileSchema.Read(models.User{ID: 1, Username: "alice"})
	groups, ok := rec.Get("groups")
	require.True(t, ok)
	assert.Equal(t, []string{}, groups)
	assert.False(t, UserSchema.Read(models.User{}).Has("groups"))

	u := models.User{ID: 1, Username: "alice"}
	require.NoError(t, UserSchema.Decode([]byte(`{"id":9,"username":"mallory"}`), &u, false))
	assert.Equal(t, models.User{ID: 1, Username: "alice"}, u)
}

func TestDecimalAcceptsStringsAndNumbers(t *testing.T) {
	var g GradeRead
	require.NoError(t, json.Unmarshal([]byte(`{"score":"91.50"}`), &g))
	require.NotNil(t, g.Score)
	assert.Equal(t, Decimal(91.5), *g.Score)

	require.NoError(t, json.Unmarshal([]byte(`{"score":null}`), &g))
	assert.Nil(t, g.Score)

	var a AssignmentRead
	require.NoError(t, json.Unmarshal([]byte(`{"total_points":100}`), &a))
	assert.Equal(t, Decimal(100), a.TotalPoints)
}
