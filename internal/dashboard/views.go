package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/noah-isme/academic-dashboard/internal/client"
)

// Placeholder stands in for absent or unparsable values.
const Placeholder = "N/A"

const displayLayout = "2006-01-02 15:04"

// Section is one independently fetched table. A section with Err set renders only the error;
// one with Info set and no rows renders only the info line.
type Section struct {
	Title   string
	Headers []string
	Rows    [][]string
	Info    string
	Err     string
}

type row = map[string]interface{}

func studentCourses(items []row, err error) Section {
	s := Section{Title: "My Courses", Headers: []string{"Course Code", "Course Name", "Teacher"}}
	if err != nil {
		s.Err = fetchMessage(err)
		return s
	}
	if len(items) == 0 {
		s.Info = "You are not currently enrolled in any courses."
		return s
	}
	for _, item := range items {
		course, ok := item["course"].(map[string]interface{})
		if !ok || !hasColumns(course, "code", "name", "teacher_username") {
			return incorrect(s, "Course data structure seems incorrect or incomplete.")
		}
		s.Rows = append(s.Rows, []string{text(course["code"]), text(course["name"]), text(course["teacher_username"])})
	}
	return s
}

func studentAssignments(items []row, err error) Section {
	s := Section{Title: "My Upcoming Assignments", Headers: []string{"Course", "Title", "Due Date", "Points"}}
	if err != nil {
		s.Err = fetchMessage(err)
		return s
	}
	if len(items) == 0 {
		s.Info = "No upcoming assignments found."
		return s
	}

	type dated struct {
		due  time.Time
		cols []string
	}
	rows := make([]dated, 0, len(items))
	for _, item := range items {
		if !hasColumns(item, "course_code", "title", "due_date", "total_points") {
			return incorrect(s, "Assignments data structure seems incorrect.")
		}
		due, ok := parseTime(item["due_date"])
		if !ok {
			s.Err = fmt.Sprintf("Error processing assignments data: invalid due_date %v", item["due_date"])
			return s
		}
		rows = append(rows, dated{due: due, cols: []string{
			text(item["course_code"]), text(item["title"]), due.Format(displayLayout), text(item["total_points"]),
		}})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].due.Before(rows[j].due) })
	for _, r := range rows {
		s.Rows = append(s.Rows, r.cols)
	}
	return s
}

func studentGrades(items []row, err error) Section {
	s := Section{Title: "My Grades", Headers: []string{"Course", "Assignment", "Score", "Status", "Submitted"}}
	if err != nil {
		s.Err = fetchMessage(err)
		return s
	}
	if len(items) == 0 {
		s.Info = "No grades found for you yet."
		return s
	}
	for _, item := range items {
		if !hasColumns(item, "course_code", "assignment_title", "score", "submission_status", "submitted_at") {
			return incorrect(s, "Grades data structure seems incorrect.")
		}
		score, err := formatScore(item["score"])
		if err != nil {
			s.Err = "Error processing grades data: " + err.Error()
			return s
		}
		submitted := Placeholder
		if at, ok := parseTime(item["submitted_at"]); ok {
			submitted = at.Format(displayLayout)
		}
		s.Rows = append(s.Rows, []string{
			text(item["course_code"]), text(item["assignment_title"]), score, text(item["submission_status"]), submitted,
		})
	}
	return s
}

func teacherCourses(items []row, err error) Section {
	s := Section{Title: "My Courses & Content Upload", Headers: []string{"ID", "Code", "Name"}}
	if err != nil {
		s.Err = fetchMessage(err)
		return s
	}
	if len(items) == 0 {
		s.Info = "You are not currently assigned to teach any courses."
		return s
	}
	for _, item := range items {
		id := Placeholder
		if v, ok := item["id"].(float64); ok && v > 0 {
			id = strconv.FormatInt(int64(v), 10)
		}
		s.Rows = append(s.Rows, []string{id, orPlaceholder(item["code"]), orPlaceholder(item["name"])})
	}
	s.Info = "Upload with: upload <course-id> <path> (PDF, DOCX, TXT)"
	return s
}

func incorrect(s Section, msg string) Section {
	s.Rows = nil
	s.Info = msg
	return s
}

// fetchMessage renders a failed protected fetch. 401 never reaches here; the caller logs out.
func fetchMessage(err error) string {
	var statusErr *client.StatusError
	var netErr *client.NetworkError
	switch {
	case errors.Is(err, client.ErrAuthorizationDenied):
		return "Error fetching data: Access denied (Status code 403)"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Error fetching data: Status code %d", statusErr.Code)
	case errors.As(err, &netErr):
		return fmt.Sprintf("Network error fetching data: %v", netErr.Err)
	case errors.Is(err, client.ErrMalformedResponse):
		return "Error fetching data: data structure seems incorrect"
	default:
		return "Error fetching data: " + err.Error()
	}
}

func hasColumns(item map[string]interface{}, cols ...string) bool {
	for _, c := range cols {
		if _, ok := item[c]; !ok {
			return false
		}
	}
	return true
}

func text(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func orPlaceholder(v interface{}) string {
	if s := text(v); s != "" {
		return s
	}
	return Placeholder
}

// formatScore renders two decimals, or the placeholder for a null score. Decimal scores may
// arrive as JSON numbers or strings.
func formatScore(v interface{}) (string, error) {
	switch t := v.(type) {
	case nil:
		return Placeholder, nil
	case float64:
		return strconv.FormatFloat(t, 'f', 2, 64), nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return "", fmt.Errorf("invalid score %q", t)
		}
		return strconv.FormatFloat(f, 'f', 2, 64), nil
	default:
		return "", fmt.Errorf("invalid score %v", t)
	}
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// parseTime is lenient: anything it cannot read reports false.
func parseTime(v interface{}) (time.Time, bool) {
	raw, ok := v.(string)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
