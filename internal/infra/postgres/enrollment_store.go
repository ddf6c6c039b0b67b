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

// EnrollmentStore persists enrollment records as JSONB rows keyed by
// (user_id, course_id).
type EnrollmentStore struct {
	pool *pgxpool.Pool
}

func NewEnrollmentStore(pool *pgxpool.Pool) *EnrollmentStore {
	return &EnrollmentStore{pool: pool}
}

func (s *EnrollmentStore) GetEnrollment(ctx context.Context, userID, courseID string) (domain.Enrollment, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM enrollments WHERE user_id=$1 AND course_id=$2`,
		userID, courseID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Enrollment{}, domain.ErrEnrollmentNotFound
	}
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("load enrollment: %w", err)
	}
	var enrollment domain.Enrollment
	if err := json.Unmarshal(raw, &enrollment); err != nil {
		return domain.Enrollment{}, fmt.Errorf("unmarshal enrollment: %w", err)
	}
	return enrollment, nil
}

func (s *EnrollmentStore) SaveEnrollment(ctx context.Context, enrollment domain.Enrollment) error {
	raw, err := json.Marshal(enrollment)
	if err != nil {
		return fmt.Errorf("marshal enrollment: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO enrollments (user_id, course_id, data) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, course_id) DO UPDATE SET data = EXCLUDED.data`,
		enrollment.UserID, enrollment.CourseID, raw)
	if err != nil {
		return fmt.Errorf("save enrollment: %w", err)
	}
	return nil
}

func (s *EnrollmentStore) ListEnrollments(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM enrollments WHERE user_id=$1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []domain.Enrollment
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		var enrollment domain.Enrollment
		if err := json.Unmarshal(raw, &enrollment); err != nil {
			return nil, fmt.Errorf("unmarshal enrollment: %w", err)
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, rows.Err()
}
