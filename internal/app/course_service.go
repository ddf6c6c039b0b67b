package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"coursedeck-service/internal/domain"
	"coursedeck-service/internal/editor"
)

// CourseReader is the read path for course documents. Caching layers
// (in-memory, Redis) implement it in front of a slower store.
type CourseReader interface {
	GetCourse(ctx context.Context, courseID string) (domain.Course, error)
}

// CourseInvalidator is optionally implemented by caching readers so saves
// can evict stale documents.
type CourseInvalidator interface {
	Invalidate(ctx context.Context, courseID string)
}

// CourseRepository abstracts how course documents are stored (in-memory,
// Postgres). Saves replace the whole nested document.
type CourseRepository interface {
	CourseReader
	SaveCourse(ctx context.Context, course domain.Course) (domain.Course, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
	DeleteCourse(ctx context.Context, courseID string) error
}

// CourseService contains the admin-side course use cases.
type CourseService struct {
	courses CourseRepository
	reader  CourseReader
	clock   func() time.Time
	log     *zap.Logger
}

func NewCourseService(courses CourseRepository, reader CourseReader, log *zap.Logger) *CourseService {
	if reader == nil {
		reader = courses
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CourseService{courses: courses, reader: reader, clock: time.Now, log: log}
}

// CreateCourse validates and persists a brand-new course owned by creatorID.
func (s *CourseService) CreateCourse(ctx context.Context, creatorID string, course domain.Course) (domain.Course, error) {
	course.ID = domain.NewID()
	course.CreatorID = creatorID
	course.Status = domain.StatusActive
	course.CreatedAt = s.clock()
	course.UpdatedAt = course.CreatedAt
	editor.ApplyMediaPlaceholders(&course)
	if err := course.Validate(); err != nil {
		return domain.Course{}, err
	}
	return s.courses.SaveCourse(ctx, course)
}

// UpdateCourse replaces the whole course document. Concurrent edits are not
// reconciled: last save wins.
func (s *CourseService) UpdateCourse(ctx context.Context, course domain.Course) (domain.Course, error) {
	existing, err := s.courses.GetCourse(ctx, course.ID)
	if err != nil {
		return domain.Course{}, err
	}
	course.CreatorID = existing.CreatorID
	course.CreatedAt = existing.CreatedAt
	course.Status = existing.Status
	course.DeletedAt = existing.DeletedAt
	course.UpdatedAt = s.clock()
	editor.ApplyMediaPlaceholders(&course)
	if err := course.Validate(); err != nil {
		return domain.Course{}, err
	}
	saved, err := s.courses.SaveCourse(ctx, course)
	if err != nil {
		return domain.Course{}, err
	}
	s.invalidate(ctx, course.ID)
	return saved, nil
}

// GetCourse serves a course document through the cached read path.
func (s *CourseService) GetCourse(ctx context.Context, courseID string) (domain.Course, error) {
	return s.reader.GetCourse(ctx, courseID)
}

// ListPublicCourses returns active public courses for the catalog.
func (s *CourseService) ListPublicCourses(ctx context.Context) ([]domain.Course, error) {
	all, err := s.courses.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	courses := make([]domain.Course, 0, len(all))
	for _, c := range all {
		if c.IsPublic && c.Status == domain.StatusActive {
			courses = append(courses, c)
		}
	}
	return courses, nil
}

// ListAllCourses returns every course including soft-deleted ones, for the
// admin dashboard and its recycle bin.
func (s *CourseService) ListAllCourses(ctx context.Context) ([]domain.Course, error) {
	return s.courses.ListCourses(ctx)
}

// SoftDeleteCourse moves a course to the recycle bin.
func (s *CourseService) SoftDeleteCourse(ctx context.Context, courseID string) error {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	now := s.clock()
	course.Status = domain.StatusDeleted
	course.DeletedAt = &now
	if _, err := s.courses.SaveCourse(ctx, course); err != nil {
		return err
	}
	s.invalidate(ctx, courseID)
	return nil
}

// RestoreCourse pulls a course back out of the recycle bin.
func (s *CourseService) RestoreCourse(ctx context.Context, courseID string) error {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	course.Status = domain.StatusActive
	course.DeletedAt = nil
	if _, err := s.courses.SaveCourse(ctx, course); err != nil {
		return err
	}
	s.invalidate(ctx, courseID)
	return nil
}

// PermanentlyDeleteCourse removes the document for good.
func (s *CourseService) PermanentlyDeleteCourse(ctx context.Context, courseID string) error {
	if err := s.courses.DeleteCourse(ctx, courseID); err != nil {
		return err
	}
	s.invalidate(ctx, courseID)
	return nil
}

// PurgeExpired permanently deletes courses whose recycle-bin window has
// lapsed and returns how many were removed.
func (s *CourseService) PurgeExpired(ctx context.Context) (int, error) {
	all, err := s.courses.ListCourses(ctx)
	if err != nil {
		return 0, err
	}
	now := s.clock()
	purged := 0
	for _, c := range all {
		if !c.RecycleBinExpired(now) {
			continue
		}
		if err := s.courses.DeleteCourse(ctx, c.ID); err != nil {
			s.log.Warn("purge course failed", zap.String("courseId", c.ID), zap.Error(err))
			continue
		}
		s.invalidate(ctx, c.ID)
		purged++
	}
	return purged, nil
}

func (s *CourseService) invalidate(ctx context.Context, courseID string) {
	if inv, ok := s.reader.(CourseInvalidator); ok {
		inv.Invalidate(ctx, courseID)
	}
}
