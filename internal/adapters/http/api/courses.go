package api

import (
	"context"
	"net/http"

	"github.com/okian/scorecard/internal/domain/course"
)

// CourseDependencies defines the course catalog read.
type CourseDependencies interface {
	Courses(ctx context.Context) ([]course.Course, error)
}

// CourseHandler handles course catalog requests.
type CourseHandler struct {
	deps CourseDependencies
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(deps CourseDependencies) *CourseHandler {
	return &CourseHandler{deps: deps}
}

// HandleListCourses handles GET /courses requests.
func (h *CourseHandler) HandleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.deps.Courses(r.Context())
	if err != nil {
		writeFailure(w, r, "api.list_courses", err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}
