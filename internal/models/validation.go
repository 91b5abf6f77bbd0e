package models

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

const DateLayout = "2006-01-02"

var ErrValidation = errors.New("validation failed")

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

// ValidationError names the field that was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", err.Field, err.Reason)
}

func (err *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidField(field string, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func withField(err error, field string) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return &ValidationError{Field: field, Reason: validationErr.Reason}
	}
	return err
}

func prefixField(err error, prefix string) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return &ValidationError{Field: prefix + "." + validationErr.Field, Reason: validationErr.Reason}
	}
	return err
}

// ParseDate accepts only real calendar dates in YYYY-MM-DD form.
func ParseDate(raw string) (time.Time, error) {
	if !datePattern.MatchString(raw) {
		return time.Time{}, invalidField("date", "%q must use YYYY-MM-DD", raw)
	}
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, invalidField("date", "%q is not a calendar date", raw)
	}
	return parsed, nil
}

func ValidateDate(field string, raw string) error {
	if _, err := ParseDate(raw); err != nil {
		return withField(err, field)
	}
	return nil
}

// ValidateDateRange requires both bounds to be valid and start <= end.
func ValidateDateRange(start string, end string) error {
	if err := ValidateDate("start", start); err != nil {
		return err
	}
	if err := ValidateDate("end", end); err != nil {
		return err
	}
	if end < start {
		return invalidField("end", "%s is before start %s", end, start)
	}
	return nil
}

// ParseClock parses a wall-clock HH:MM value into minutes since midnight.
func ParseClock(raw string) (int, error) {
	matches := clockPattern.FindStringSubmatch(raw)
	if len(matches) != 3 {
		return 0, invalidField("time", "%q must use HH:MM", raw)
	}
	hours := int(matches[1][0]-'0')*10 + int(matches[1][1]-'0')
	minutes := int(matches[2][0]-'0')*10 + int(matches[2][1]-'0')
	return hours*60 + minutes, nil
}
