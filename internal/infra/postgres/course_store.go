package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"coursedeck-service/internal/domain"
)

// CourseStore persists course documents as JSONB rows.
type CourseStore struct {
	pool *pgxpool.Pool
}

func NewCourseStore(pool *pgxpool.Pool) *CourseStore {
	return &CourseStore{pool: pool}
}

func (s *CourseStore) GetCourse(ctx context.Context, courseID string) (domain.Course, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM courses WHERE id=$1`, courseID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	if err != nil {
		return domain.Course{}, fmt.Errorf("load course: %w", err)
	}
	var course domain.Course
	if err := json.Unmarshal(raw, &course); err != nil {
		return domain.Course{}, fmt.Errorf("unmarshal course: %w", err)
	}
	return course, nil
}

func (s *CourseStore) SaveCourse(ctx context.Context, course domain.Course) (domain.Course, error) {
	raw, err := json.Marshal(course)
	if err != nil {
		return domain.Course{}, fmt.Errorf("marshal course: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO courses (id, data) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
		course.ID, raw)
	if err != nil {
		return domain.Course{}, fmt.Errorf("save course: %w", err)
	}
	return course, nil
}

func (s *CourseStore) ListCourses(ctx context.Context) ([]domain.Course, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM courses ORDER BY data->>'createdAt' DESC`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		var course domain.Course
		if err := json.Unmarshal(raw, &course); err != nil {
			return nil, fmt.Errorf("unmarshal course: %w", err)
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

func (s *CourseStore) DeleteCourse(ctx context.Context, courseID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM courses WHERE id=$1`, courseID)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}
