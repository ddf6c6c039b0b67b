package memory

import (
	"context"
	"sync"

	"coursedeck-service/internal/domain"
)

// CourseStore is an in-memory implementation of app.CourseRepository.
type CourseStore struct {
	mu      sync.RWMutex
	courses map[string]domain.Course
}

func NewCourseStore() *CourseStore {
	return &CourseStore{courses: make(map[string]domain.Course)}
}

func (s *CourseStore) GetCourse(_ context.Context, courseID string) (domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[courseID]
	if !ok {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	return course.Clone(), nil
}

func (s *CourseStore) SaveCourse(_ context.Context, course domain.Course) (domain.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[course.ID] = course.Clone()
	return course, nil
}

func (s *CourseStore) ListCourses(_ context.Context) ([]domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	courses := make([]domain.Course, 0, len(s.courses))
	for _, c := range s.courses {
		courses = append(courses, c.Clone())
	}
	return courses, nil
}

func (s *CourseStore) DeleteCourse(_ context.Context, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[courseID]; !ok {
		return domain.ErrCourseNotFound
	}
	delete(s.courses, courseID)
	return nil
}
