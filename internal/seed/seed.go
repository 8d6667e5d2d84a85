// Package seed loads demo users, courses, enrollments and assignments from YAML fixtures.
package seed

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/academic-dashboard/internal/models"
)

// Fixtures is the YAML document.
type Fixtures struct {
	Users       []User       `yaml:"users"`
	Courses     []Course     `yaml:"courses"`
	Assignments []Assignment `yaml:"assignments"`
}

type User struct {
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	FirstName string   `yaml:"first_name"`
	LastName  string   `yaml:"last_name"`
	Email     string   `yaml:"email"`
	Staff     bool     `yaml:"staff"`
	Groups    []string `yaml:"groups"`
}

// Course names its teacher and students by username.
type Course struct {
	Code     string   `yaml:"code"`
	Name     string   `yaml:"name"`
	Teacher  string   `yaml:"teacher"`
	Students []string `yaml:"students"`
}

// Assignment references its course by code. Due is RFC 3339.
type Assignment struct {
	Course      string  `yaml:"course"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Due         string  `yaml:"due"`
	TotalPoints float64 `yaml:"total_points"`
}

// Load parses and checks a fixture document.
func Load(r io.Reader) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	users := make(map[string]User, len(f.Users))
	for _, u := range f.Users {
		if u.Username == "" || u.Password == "" {
			return fmt.Errorf("user %q: username and password are required", u.Username)
		}
		for _, g := range u.Groups {
			if g != models.GroupTeachers && g != models.GroupStudents {
				return fmt.Errorf("user %q: unknown group %q", u.Username, g)
			}
		}
		users[u.Username] = u
	}

	courses := make(map[string]bool, len(f.Courses))
	for _, c := range f.Courses {
		if c.Code == "" || c.Name == "" {
			return fmt.Errorf("course %q: code and name are required", c.Code)
		}
		courses[strings.ToUpper(c.Code)] = true
		if c.Teacher != "" {
			t, ok := users[c.Teacher]
			if !ok || !hasGroup(t.Groups, models.GroupTeachers) {
				return fmt.Errorf("course %s: teacher %q is not a seeded teacher", c.Code, c.Teacher)
			}
		}
		for _, s := range c.Students {
			st, ok := users[s]
			if !ok || !hasGroup(st.Groups, models.GroupStudents) {
				return fmt.Errorf("course %s: student %q is not a seeded student", c.Code, s)
			}
		}
	}

	for _, a := range f.Assignments {
		if !courses[strings.ToUpper(a.Course)] {
			return fmt.Errorf("assignment %q: unknown course %q", a.Title, a.Course)
		}
		if a.Title == "" {
			return fmt.Errorf("assignment for %s: title is required", a.Course)
		}
		if _, err := time.Parse(time.RFC3339, a.Due); err != nil {
			return fmt.Errorf("assignment %q: due: %w", a.Title, err)
		}
		if a.TotalPoints <= 0 {
			return fmt.Errorf("assignment %q: total_points must be positive", a.Title)
		}
	}
	return nil
}

type userStore interface {
	Upsert(ctx context.Context, user *models.User) error
	AddToGroup(ctx context.Context, userID int64, group string) error
}

type courseStore interface {
	UpsertByCode(ctx context.Context, course *models.Course) error
}

type enrollmentStore interface {
	Enroll(ctx context.Context, studentID, courseID int64) error
}

type assignmentStore interface {
	ListByCourse(ctx context.Context, courseID int64) ([]models.Assignment, error)
	Create(ctx context.Context, a *models.Assignment) error
}

// Summary counts what a run wrote.
type Summary struct {
	Users       int
	Courses     int
	Enrollments int
	Assignments int
}

// Seeder writes fixtures. Every step is idempotent: users and courses are upserted,
// enrollments ignore duplicates and assignments are matched by course and title.
type Seeder struct {
	users       userStore
	courses     courseStore
	enrollments enrollmentStore
	assignments assignmentStore
	logger      *zap.Logger
	cost        int
}

// NewSeeder builds a seeder hashing passwords with bcrypt.DefaultCost.
func NewSeeder(users userStore, courses courseStore, enrollments enrollmentStore, assignments assignmentStore, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{users: users, courses: courses, enrollments: enrollments, assignments: assignments, logger: logger, cost: bcrypt.DefaultCost}
}

// Run applies the fixtures in dependency order.
func (s *Seeder) Run(ctx context.Context, f *Fixtures) (Summary, error) {
	var sum Summary

	userIDs := make(map[string]int64, len(f.Users))
	for _, u := range f.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.cost)
		if err != nil {
			return sum, fmt.Errorf("hash password for %s: %w", u.Username, err)
		}
		user := &models.User{
			Username:     u.Username,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Email:        u.Email,
			PasswordHash: string(hash),
			IsStaff:      u.Staff,
			IsActive:     true,
		}
		if err := s.users.Upsert(ctx, user); err != nil {
			return sum, err
		}
		for _, g := range u.Groups {
			if err := s.users.AddToGroup(ctx, user.ID, g); err != nil {
				return sum, err
			}
		}
		userIDs[u.Username] = user.ID
		sum.Users++
	}

	courseIDs := make(map[string]int64, len(f.Courses))
	for _, c := range f.Courses {
		course := &models.Course{Code: strings.ToUpper(c.Code), Name: c.Name}
		if c.Teacher != "" {
			id := userIDs[c.Teacher]
			course.TeacherID = &id
		}
		if err := s.courses.UpsertByCode(ctx, course); err != nil {
			return sum, err
		}
		courseIDs[course.Code] = course.ID
		sum.Courses++

		for _, student := range c.Students {
			if err := s.enrollments.Enroll(ctx, userIDs[student], course.ID); err != nil {
				return sum, err
			}
			sum.Enrollments++
		}
	}

	existing := make(map[int64]map[string]bool)
	for _, a := range f.Assignments {
		courseID := courseIDs[strings.ToUpper(a.Course)]
		titles, ok := existing[courseID]
		if !ok {
			current, err := s.assignments.ListByCourse(ctx, courseID)
			if err != nil {
				return sum, err
			}
			titles = make(map[string]bool, len(current))
			for _, c := range current {
				titles[c.Title] = true
			}
			existing[courseID] = titles
		}
		if titles[a.Title] {
			s.logger.Debug("assignment exists", zap.String("course", a.Course), zap.String("title", a.Title))
			continue
		}

		due, _ := time.Parse(time.RFC3339, a.Due)
		assignment := &models.Assignment{
			CourseID:    courseID,
			Title:       a.Title,
			Description: a.Description,
			DueDate:     due.UTC(),
			TotalPoints: a.TotalPoints,
		}
		if err := s.assignments.Create(ctx, assignment); err != nil {
			return sum, err
		}
		titles[a.Title] = true
		sum.Assignments++
	}

	s.logger.Info("fixtures applied",
		zap.Int("users", sum.Users),
		zap.Int("courses", sum.Courses),
		zap.Int("enrollments", sum.Enrollments),
		zap.Int("assignments", sum.Assignments),
	)
	return sum, nil
}

func hasGroup(groups []string, name string) bool {
	for _, g := range groups {
		if g == name {
			return true
		}
	}
	return false
}
