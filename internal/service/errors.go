package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bassinifit/coach-app/internal/repository"
)

// --- Shared Error Definitions ---
var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrPlanNotFound        = errors.New("plan not found")
	ErrEntryNotFound       = errors.New("plan entry not found")
	ErrExerciseNotFound    = errors.New("exercise not found")
	ErrMuscleGroupNotFound = errors.New("muscle group not found")
	ErrPhotoNotFound       = errors.New("photo not found")

	ErrPlanAccessDenied  = errors.New("plan does not belong to this student")
	ErrEntryAccessDenied = errors.New("plan entry does not belong to this student")
	ErrPhotoAccessDenied = errors.New("photo does not belong to this student")
)

// ValidationError is returned before any write when input is missing or malformed.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

func invalidFields(message string, fields map[string]string) error {
	return &ValidationError{Message: message, Fields: fields}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// notFound maps repository.ErrNotFound to the service-level sentinel and passes other errors through.
func notFound(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}
