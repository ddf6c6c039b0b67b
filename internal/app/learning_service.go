package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"coursedeck-service/internal/domain"
	"coursedeck-service/internal/player"
)

// EnrollmentRepository stores per-user enrollment records keyed by
// (userID, courseID).
type EnrollmentRepository interface {
	GetEnrollment(ctx context.Context, userID, courseID string) (domain.Enrollment, error)
	SaveEnrollment(ctx context.Context, enrollment domain.Enrollment) error
	ListEnrollments(ctx context.Context, userID string) ([]domain.Enrollment, error)
}

// CheckoutProvider creates hosted checkout sessions for paid courses and
// verifies the completion callback against the pending session.
type CheckoutProvider interface {
	CreateCheckout(ctx context.Context, userID string, course domain.Course) (string, error)
	Confirm(sessionID string) (userID, courseID string, ok bool)
}

// CertificateRenderer produces a completion certificate artifact and
// returns a reference to it (a URL or data URI).
type CertificateRenderer interface {
	Render(ctx context.Context, userName string, course domain.Course) (string, error)
}

// LearningService contains the learner-side use cases: enrollment, quiz
// submission, resume tracking and certificates.
type LearningService struct {
	courses     CourseReader
	enrollments EnrollmentRepository
	checkout    CheckoutProvider
	certs       CertificateRenderer

	// requireRegularCompletion locks the final exam until every regular
	// quiz in the course has been passed.
	requireRegularCompletion bool

	log *zap.Logger
}

func NewLearningService(courses CourseReader, enrollments EnrollmentRepository, checkout CheckoutProvider, certs CertificateRenderer, requireRegularCompletion bool, log *zap.Logger) *LearningService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LearningService{
		courses:                  courses,
		enrollments:              enrollments,
		checkout:                 checkout,
		certs:                    certs,
		requireRegularCompletion: requireRegularCompletion,
		log:                      log,
	}
}

// Enroll creates an enrollment for a free course. Paid courses must go
// through checkout.
func (s *LearningService) Enroll(ctx context.Context, userID, courseID string) (domain.Enrollment, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return domain.Enrollment{}, err
	}
	if course.Price > 0 {
		return domain.Enrollment{}, domain.ErrCourseNotFree
	}
	return s.enroll(ctx, userID, courseID)
}

func (s *LearningService) enroll(ctx context.Context, userID, courseID string) (domain.Enrollment, error) {
	if _, err := s.enrollments.GetEnrollment(ctx, userID, courseID); err == nil {
		return domain.Enrollment{}, domain.ErrAlreadyEnrolled
	}
	enrollment := domain.Enrollment{UserID: userID, CourseID: courseID}
	if err := s.enrollments.SaveEnrollment(ctx, enrollment); err != nil {
		return domain.Enrollment{}, err
	}
	return enrollment, nil
}

// CreateCheckout starts a hosted checkout session for a paid course and
// returns its URL.
func (s *LearningService) CreateCheckout(ctx context.Context, userID, courseID string) (string, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return "", err
	}
	if course.Price <= 0 {
		return "", fmt.Errorf("course %s is free, enroll directly", courseID)
	}
	if _, err := s.enrollments.GetEnrollment(ctx, userID, courseID); err == nil {
		return "", domain.ErrAlreadyEnrolled
	}
	return s.checkout.CreateCheckout(ctx, userID, course)
}

// CompleteCheckout enrolls the user after a successful payment callback.
// The callback carries the checkout session ID, which must resolve to the
// same (user, course) pair the caller claims.
func (s *LearningService) CompleteCheckout(ctx context.Context, userID, courseID, sessionID string) (domain.Enrollment, error) {
	paidUser, paidCourse, ok := s.checkout.Confirm(sessionID)
	if !ok || paidUser != userID || paidCourse != courseID {
		return domain.Enrollment{}, domain.ErrCheckoutNotFound
	}
	if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
		return domain.Enrollment{}, err
	}
	return s.enroll(ctx, userID, courseID)
}

// GetEnrollment returns the user's enrollment for a course.
func (s *LearningService) GetEnrollment(ctx context.Context, userID, courseID string) (domain.Enrollment, error) {
	return s.enrollments.GetEnrollment(ctx, userID, courseID)
}

// ListEnrollments returns every enrollment for a user.
func (s *LearningService) ListEnrollments(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	return s.enrollments.ListEnrollments(ctx, userID)
}

// SubmitQuiz grades a regular quiz submission. Progress is persisted only
// when the answer is correct; an incorrect attempt changes nothing.
func (s *LearningService) SubmitQuiz(ctx context.Context, userID, courseID, lessonID, slideID string, sub domain.QuizSubmission) (domain.GradeResult, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return domain.GradeResult{}, err
	}
	quiz, err := findQuiz(course, lessonID, slideID)
	if err != nil {
		return domain.GradeResult{}, err
	}
	if sub.IsEmpty(quiz.Kind) {
		return domain.GradeResult{}, domain.ErrEmptySubmission
	}
	if !player.Grade(quiz, sub) {
		return domain.GradeResult{Correct: false, Message: player.MessageIncorrect}, nil
	}
	enrollment, err := s.enrollments.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		return domain.GradeResult{}, err
	}
	enrollment.RecordProgress(lessonID, slideID, true)
	if err := s.enrollments.SaveEnrollment(ctx, enrollment); err != nil {
		return domain.GradeResult{}, err
	}
	return domain.GradeResult{Correct: true, Message: player.MessageCorrect}, nil
}

// SubmitFinalExam grades the final exam. A correct answer marks the
// enrollment completed. When the regular-completion gate is enabled,
// submissions are rejected until every regular quiz has been passed.
func (s *LearningService) SubmitFinalExam(ctx context.Context, userID, courseID string, sub domain.QuizSubmission) (domain.GradeResult, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return domain.GradeResult{}, err
	}
	exam, ok := course.FinalExamLesson()
	if !ok || len(exam.Slides) == 0 || exam.Slides[0].Quiz == nil {
		return domain.GradeResult{}, domain.ErrFinalExamNotFound
	}
	enrollment, err := s.enrollments.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		return domain.GradeResult{}, err
	}
	if s.requireRegularCompletion && !player.FinalExamReachable(&course, &enrollment) {
		return domain.GradeResult{}, domain.ErrExamLocked
	}
	quiz := exam.Slides[0].Quiz
	if sub.IsEmpty(quiz.Kind) {
		return domain.GradeResult{}, domain.ErrEmptySubmission
	}
	if !player.Grade(quiz, sub) {
		return domain.GradeResult{Correct: false, Message: player.MessageIncorrect}, nil
	}
	enrollment.RecordProgress(exam.ID, exam.Slides[0].ID, true)
	enrollment.IsCompleted = true
	if err := s.enrollments.SaveEnrollment(ctx, enrollment); err != nil {
		return domain.GradeResult{}, err
	}
	return domain.GradeResult{Correct: true, Message: player.MessageFinalExamPassed}, nil
}

// UpdateProgress persists the resume pointer. Callers treat it as
// fire-and-forget: a failed update only costs the resume position.
func (s *LearningService) UpdateProgress(ctx context.Context, userID, courseID, lessonID string, slideIndex int) error {
	enrollment, err := s.enrollments.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		return err
	}
	enrollment.LastViewedLesson = lessonID
	enrollment.LastViewedSlideIndex = slideIndex
	return s.enrollments.SaveEnrollment(ctx, enrollment)
}

// IssueCertificate renders and stores a completion certificate. It is
// idempotent: a previously issued certificate is returned as-is.
func (s *LearningService) IssueCertificate(ctx context.Context, userID, userName, courseID string) (string, error) {
	enrollment, err := s.enrollments.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		return "", err
	}
	if !enrollment.IsCompleted {
		return "", domain.ErrExamLocked
	}
	if enrollment.Certificate != "" {
		return enrollment.Certificate, nil
	}
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return "", err
	}
	cert, err := s.certs.Render(ctx, userName, course)
	if err != nil {
		return "", err
	}
	enrollment.Certificate = cert
	if err := s.enrollments.SaveEnrollment(ctx, enrollment); err != nil {
		return "", err
	}
	return cert, nil
}

// SaveCertificate stores a client-rendered certificate artifact.
func (s *LearningService) SaveCertificate(ctx context.Context, userID, courseID, certificate string) error {
	enrollment, err := s.enrollments.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if !enrollment.IsCompleted {
		return domain.ErrExamLocked
	}
	enrollment.Certificate = certificate
	return s.enrollments.SaveEnrollment(ctx, enrollment)
}

// PlaybackState loads the course and enrollment and opens a playback
// session resumed at the learner's last viewed position.
func (s *LearningService) PlaybackState(ctx context.Context, userID, courseID string) (*player.Session, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.enrollments.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	sess := player.NewSession(course, enrollment)
	sess.Resume()
	return sess, nil
}

func findQuiz(course domain.Course, lessonID, slideID string) (*domain.Quiz, error) {
	lesson, ok := course.Lesson(lessonID)
	if !ok {
		return nil, domain.ErrLessonNotFound
	}
	slide, ok := lesson.Slide(slideID)
	if !ok {
		return nil, domain.ErrSlideNotFound
	}
	if slide.Quiz == nil {
		return nil, domain.ErrQuizNotFound
	}
	return slide.Quiz, nil
}
