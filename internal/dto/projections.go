package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/academic-dashboard/internal/models"
	"github.com/noah-isme/academic-dashboard/internal/projection"
)

// UserSchema is the public, read-only view of a user.
var UserSchema = projection.MustSchema("user", userFields()...)

// ProfileSchema is the caller's own profile as returned by /user/me/.
var ProfileSchema = projection.MustSchema("profile",
	append(userFields(),
		projection.Field[models.User]{Name: "groups", Mode: projection.ReadOnly, Get: func(u models.User) any {
			if u.Groups == nil {
				return []string{}
			}
			return u.Groups
		}},
	)...,
)

func userFields() []projection.Field[models.User] {
	return []projection.Field[models.User]{
		{Name: "id", Mode: projection.ReadOnly, Get: func(u models.User) any { return u.ID }},
		{Name: "username", Mode: projection.ReadOnly, Get: func(u models.User) any { return u.Username }},
		{Name: "first_name", Mode: projection.ReadOnly, Get: func(u models.User) any { return u.FirstName }},
		{Name: "last_name", Mode: projection.ReadOnly, Get: func(u models.User) any { return u.LastName }},
		{Name: "email", Mode: projection.ReadOnly, Get: func(u models.User) any { return u.Email }},
	}
}

// CourseSchema writes teacher_id and reads teacher_username in its place. A null teacher_id
// unassigns the course; omitting it leaves the teacher unchanged.
var CourseSchema = projection.MustSchema("course",
	projection.Field[models.Course]{Name: "id", Mode: projection.ReadOnly, Get: func(c models.Course) any { return c.ID }},
	projection.Field[models.Course]{
		Name: "name", Required: true,
		Get: func(c models.Course) any { return c.Name },
		Set: projection.String(200, func(c *models.Course, v string) { c.Name = v }),
	},
	projection.Field[models.Course]{
		Name: "code", Required: true,
		Get: func(c models.Course) any { return c.Code },
		Set: projection.String(20, func(c *models.Course, v string) { c.Code = strings.ToUpper(v) }),
	},
	projection.Field[models.Course]{
		Name: "teacher_id", Mode: projection.WriteOnly, Nullable: true,
		Set: projection.OptionalID(func(c *models.Course, v *int64) {
			c.TeacherID = v
			c.TeacherUsername = nil
		}),
	},
	projection.Field[models.Course]{
		Name: "teacher_username", Mode: projection.ReadOnly,
		Get: func(c models.Course) any {
			if c.TeacherID == nil {
				return nil
			}
			return c.TeacherUsername
		},
	},
)

// AssignmentSchema writes the parent course by id and reads its code. The course id itself
// never appears in the read view.
var AssignmentSchema = projection.MustSchema("assignment",
	projection.Field[models.Assignment]{Name: "id", Mode: projection.ReadOnly, Get: func(a models.Assignment) any { return a.ID }},
	projection.Field[models.Assignment]{
		Name: "course", Mode: projection.WriteOnly, Required: true,
		Set: projection.ID(func(a *models.Assignment, v int64) {
			a.CourseID = v
			a.CourseCode = ""
		}),
	},
	projection.Field[models.Assignment]{Name: "course_code", Mode: projection.ReadOnly, Get: func(a models.Assignment) any { return a.CourseCode }},
	projection.Field[models.Assignment]{
		Name: "title", Required: true,
		Get: func(a models.Assignment) any { return a.Title },
		Set: projection.String(200, func(a *models.Assignment, v string) { a.Title = v }),
	},
	projection.Field[models.Assignment]{
		Name: "description",
		Get:  func(a models.Assignment) any { return a.Description },
		Set:  projection.Text(func(a *models.Assignment, v string) { a.Description = v }),
	},
	projection.Field[models.Assignment]{
		Name: "due_date", Required: true,
		Get: func(a models.Assignment) any { return a.DueDate },
		Set: projection.Time(func(a *models.Assignment, v time.Time) { a.DueDate = v }),
	},
	projection.Field[models.Assignment]{
		Name: "total_points",
		Get:  func(a models.Assignment) any { return a.TotalPoints },
		Set:  positivePoints,
	},
)

// GradeSchema writes assignment and student ids and reads their derived display values.
// For student submissions the service overwrites StudentID with the caller after Apply.
var GradeSchema = projection.MustSchema("grade",
	projection.Field[models.Grade]{Name: "id", Mode: projection.ReadOnly, Get: func(g models.Grade) any { return g.ID }},
	projection.Field[models.Grade]{
		Name: "assignment", Mode: projection.WriteOnly, Required: true,
		Set: projection.ID(func(g *models.Grade, v int64) {
			g.AssignmentID = v
			g.AssignmentTitle = ""
			g.CourseCode = ""
			g.CourseID = 0
			g.TotalPoints = 0
		}),
	},
	projection.Field[models.Grade]{
		Name: "student", Mode: projection.WriteOnly, Required: true,
		Set: projection.ID(func(g *models.Grade, v int64) {
			g.StudentID = v
			g.StudentUsername = ""
		}),
	},
	projection.Field[models.Grade]{Name: "assignment_title", Mode: projection.ReadOnly, Get: func(g models.Grade) any { return g.AssignmentTitle }},
	projection.Field[models.Grade]{Name: "student_username", Mode: projection.ReadOnly, Get: func(g models.Grade) any { return g.StudentUsername }},
	projection.Field[models.Grade]{Name: "course_code", Mode: projection.ReadOnly, Get: func(g models.Grade) any { return g.CourseCode }},
	projection.Field[models.Grade]{
		Name: "score", Nullable: true,
		Get: func(g models.Grade) any { return g.Score },
		Set: projection.OptionalNumber(func(g *models.Grade, v *float64) { g.Score = v }),
	},
	projection.Field[models.Grade]{
		Name: "submission_status",
		Get:  func(g models.Grade) any { return g.SubmissionStatus },
		Set:  submissionStatus,
	},
	projection.Field[models.Grade]{
		Name: "submitted_at", Nullable: true,
		Get: func(g models.Grade) any { return g.SubmittedAt },
		Set: projection.OptionalTime(func(g *models.Grade, v *time.Time) { g.SubmittedAt = v }),
	},
	projection.Field[models.Grade]{
		Name: "feedback", Nullable: true,
		Get: func(g models.Grade) any { return g.Feedback },
		Set: projection.OptionalText(func(g *models.Grade, v *string) { g.Feedback = v }),
	},
)

// StudentEnrollmentSchema embeds the full course read view in each enrollment.
var StudentEnrollmentSchema = projection.MustSchema("enrollment",
	projection.Field[models.Enrollment]{Name: "id", Mode: projection.ReadOnly, Get: func(e models.Enrollment) any { return e.ID }},
	projection.Nested("course", CourseSchema, func(e models.Enrollment) models.Course { return e.Course }),
	projection.Field[models.Enrollment]{Name: "enrollment_date", Mode: projection.ReadOnly, Get: func(e models.Enrollment) any { return e.EnrollmentDate }},
)

func positivePoints(a *models.Assignment, raw json.RawMessage) error {
	var v float64
	if err := projection.Number(func(_ *models.Assignment, n float64) { v = n })(a, raw); err != nil {
		return err
	}
	if v <= 0 {
		return errors.New("Ensure this value is greater than 0.")
	}
	a.TotalPoints = v
	return nil
}

func submissionStatus(g *models.Grade, raw json.RawMessage) error {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return errors.New(projection.MsgInvalidStr)
	}
	status := models.SubmissionStatus(strings.ToLower(strings.TrimSpace(v)))
	if !status.Valid() {
		return fmt.Errorf("%q is not a valid choice.", v)
	}
	g.SubmissionStatus = status
	return nil
}
