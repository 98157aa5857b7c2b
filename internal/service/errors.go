package service

import (
	"errors"
	"fmt"
	"lessonhub/internal/storage"
)

// --- Error Definitions ---
var (
	ErrValidationFailed  = errors.New("validation failed")
	ErrCourseNotFound    = errors.New("course not found")
	ErrLessonNotFound    = errors.New("lesson not found")
	ErrLessonNotInCourse = errors.New("lesson does not belong to course")
	ErrUserNotFound      = errors.New("user not found")
	ErrCourseConflict    = errors.New("a course with this slug, order or lesson id already exists")
	ErrStorageDisabled   = storage.ErrStorageDisabled
)

// ErrLessonIDConflict is a course conflict on a lesson id owned by another course.
var ErrLessonIDConflict = fmt.Errorf("%w: lesson id is used by another course", ErrCourseConflict)

// validationError wraps ErrValidationFailed with a field level message.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}
