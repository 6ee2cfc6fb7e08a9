package course

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrCourseNotFound is returned when no course matches the requested name.
	ErrCourseNotFound = errors.New("course not found")
	// ErrInvalidCourse is returned for malformed catalog entries and unknown difficulties.
	ErrInvalidCourse = errors.New("invalid course")
)
