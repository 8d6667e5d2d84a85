package projection

import (
	"fmt"
	"sort"
	"strings"
)

// Messages reported per field.
const (
	MsgRequired     = "This field is required."
	MsgNull         = "This field may not be null."
	MsgBlank        = "This field may not be blank."
	MsgInvalidInt   = "A valid integer is required."
	MsgInvalidNum   = "A valid number is required."
	MsgInvalidStr   = "Not a valid string."
	MsgInvalidTime  = "Datetime has wrong format. Use RFC 3339, e.g. 2024-05-01T09:00:00Z."
	MsgNotObject    = "Invalid data. Expected a dictionary."
	NonFieldErrors  = "non_field_errors"
	msgMaxLengthFmt = "Ensure this field has no more than %d characters."
)

// ValidationError collects per-field messages for a rejected write.
type ValidationError struct {
	Fields map[string][]string
}

// Add records a message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// HasErrors reports whether any message was recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
