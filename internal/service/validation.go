package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/academic-dashboard/internal/projection"
	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
)

// validationError turns validator and projection failures into a 400 carrying per-field
// messages.
func validationError(err error, message string) error {
	var verr *projection.ValidationError
	if errors.As(err, &verr) {
		return appErrors.WithFields(verr.Fields, err)
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string][]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			name := jsonName(fe.Field())
			fields[name] = append(fields[name], describeTag(fe))
		}
		out := appErrors.WithFields(fields, err)
		out.Message = message
		return out
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return projection.MsgRequired
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// jsonName maps a Go field name such as CourseID to course_id.
func jsonName(field string) string {
	var b strings.Builder
	runes := []rune(field)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
