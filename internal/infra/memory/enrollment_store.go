package memory

import (
	"context"
	"sync"

	"coursedeck-service/internal/domain"
)

// EnrollmentStore is an in-memory implementation of app.EnrollmentRepository.
type EnrollmentStore struct {
	mu          sync.RWMutex
	enrollments map[enrollmentKey]domain.Enrollment
}

type enrollmentKey struct {
	userID   string
	courseID string
}

func NewEnrollmentStore() *EnrollmentStore {
	return &EnrollmentStore{enrollments: make(map[enrollmentKey]domain.Enrollment)}
}

func (s *EnrollmentStore) GetEnrollment(_ context.Context, userID, courseID string) (domain.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enrollment, ok := s.enrollments[enrollmentKey{userID, courseID}]
	if !ok {
		return domain.Enrollment{}, domain.ErrEnrollmentNotFound
	}
	return enrollment.Clone(), nil
}

func (s *EnrollmentStore) SaveEnrollment(_ context.Context, enrollment domain.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments[enrollmentKey{enrollment.UserID, enrollment.CourseID}] = enrollment.Clone()
	return nil
}

func (s *EnrollmentStore) ListEnrollments(_ context.Context, userID string) ([]domain.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var enrollments []domain.Enrollment
	for key, e := range s.enrollments {
		if key.userID == userID {
			enrollments = append(enrollments, e.Clone())
		}
	}
	return enrollments, nil
}
