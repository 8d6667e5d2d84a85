package projection

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Setter helpers decode one JSON value and hand it to an assign func. The Optional variants
// also accept null and pass nil through.

// String accepts a non-blank string of at most maxLen runes (0 means unlimited).
func String[E any](maxLen int, assign func(*E, string)) func(*E, json.RawMessage) error {
	return func(e *E, raw json.RawMessage) error {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return errors.New(MsgInvalidStr)
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return errors.New(MsgBlank)
		}
		if maxLen > 0 && utf8.RuneCountInString(v) > maxLen {
			return fmt.Errorf(msgMaxLengthFmt, maxLen)
		}
		assign(e, v)
		return nil
	}
}

// Text accepts any string, including an empty one.
func Text[E any](assign func(*E, string)) func(*E, json.RawMessage) error {
	return func(e *E, raw json.RawMessage) error {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return errors.New(MsgInvalidStr)
		}
		assign(e, v)
		return nil
	}
}

// OptionalText accepts a string or null.
func OptionalText[E any](assign func(*E, *string)) func(*E, json.RawMessage) error {
	return func(e *E, raw json.RawMessage) error {
		if isNull(raw) {
			assign(e, nil)
			return nil
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return errors.New(MsgInvalidStr)
		}
		assign(e, &v)
		return nil
	}
}

// ID accepts a positive integer reference.
func ID[E any](assign func(*E, int64)) func(*E, json.RawMessage) error {
	return func(e *E, raw json.RawMessage) error {
		v, err := decodeInt(raw)
		if err != nil {
			return err
		}
		assign(e, v)
		return nil
	}
}

// OptionalID accepts a positive integer reference or null.
func OptionalID[E any](assign func(*E, *int64)) func(*E, json.RawMessage) error {
	return func(e *E, raw json.RawMessage) error {
		if isNull(raw) {
			assign(e, nil)
			return nil
		}
		v, err := decodeInt(raw)
		if err != nil {
			return err
		}
		assign(e, &v)
		return nil
	}
}

// Number accepts a JSON number or a numeric string.
func Number[E any](assign func(*E, float64)) func(*E, json.RawMessage) error {
	return func(e *E, raw json.RawMessage) error {
		v, err := decodeNumber(raw)
		if err != nil {
			return err
		}
		assign(e, v)
		return nil
	}
}

// OptionalNumber accepts a number, a numeric string or null.
func OptionalNumber[E any](assign func(*E, *float64)) func(*E, json.RawMessage) error {
	return func(e *E, raw json.RawMessage) error {
		if isNull(raw) {
			assign(e, nil)
			return nil
		}
		v, err := decodeNumber(raw)
		if err != nil {
			return err
		}
		assign(e, &v)
		return nil
	}
}

// Time accepts an RFC 3339 timestamp.
func Time[E any](assign func(*E, time.Time)) func(*E, json.RawMessage) error {
	return func(e *E, raw json.RawMessage) error {
		v, err := decodeTime(raw)
		if err != nil {
			return err
		}
		assign(e, v)
		return nil
	}
}

// OptionalTime accepts an RFC 3339 timestamp or null.
func OptionalTime[E any](assign func(*E, *time.Time)) func(*E, json.RawMessage) error {
	return func(e *E, raw json.RawMessage) error {
		if isNull(raw) {
			assign(e, nil)
			return nil
		}
		v, err := decodeTime(raw)
		if err != nil {
			return err
		}
		assign(e, &v)
		return nil
	}
}

func decodeInt(raw json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, errors.New(MsgInvalidInt)
	}
	v, err := n.Int64()
	if err != nil || v <= 0 {
		return 0, errors.New(MsgInvalidInt)
	}
	return v, nil
}

func decodeNumber(raw json.RawMessage) (float64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, errors.New(MsgInvalidNum)
	}
	v, err := n.Float64()
	if err != nil {
		return 0, errors.New(MsgInvalidNum)
	}
	return v, nil
}

func decodeTime(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, errors.New(MsgInvalidTime)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New(MsgInvalidTime)
	}
	return t.UTC(), nil
}
