package app

import (
	"context"
	"errors"
	neturl "net/url"
	"strings"
	"testing"

	"coursedeck-service/internal/domain"
	"coursedeck-service/internal/infra/memory"
	"coursedeck-service/internal/player"
)

func learnableCourse() domain.Course {
	return domain.Course{
		ID:          "course-1",
		Title:       "Radiology",
		Description: "Reading images.",
		Level:       domain.LevelAdvanced,
		Specialty:   "Medicine",
		Status:      domain.StatusActive,
		IsPublic:    true,
		Lessons: []domain.Lesson{
			{
				ID: "l1",
				Slides: []domain.Slide{
					{ID: "s1"},
					{ID: "s2", Quiz: &domain.Quiz{
						Kind: domain.QuizSingleChoice,
						Answers: []domain.Answer{
							{ID: "a1", IsCorrect: true},
							{ID: "a2"},
						},
					}},
				},
			},
			{
				ID:          "exam",
				IsFinalExam: true,
				Slides: []domain.Slide{{ID: "s3", Quiz: &domain.Quiz{
					Kind: domain.QuizSingleChoice,
					Answers: []domain.Answer{
						{ID: "x1", IsCorrect: true},
						{ID: "x2"},
					},
				}}},
			},
		},
	}
}

func newLearningFixture(t *testing.T, requireRegularCompletion bool) (*LearningService, *memory.EnrollmentStore) {
	t.Helper()
	courses := memory.NewCourseStore()
	if _, err := courses.SaveCourse(context.Background(), learnableCourse()); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	enrollments := memory.NewEnrollmentStore()
	service := NewLearningService(
		courses,
		enrollments,
		memory.NewHostedCheckout("https://pay.example/checkout"),
		memory.NewCertificateRenderer(),
		requireRegularCompletion,
		nil,
	)
	return service, enrollments
}

func TestEnrollFreeCourse(t *testing.T) {
	service, _ := newLearningFixture(t, false)
	ctx := context.Background()

	enrollment, err := service.Enroll(ctx, "user-1", "course-1")
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if enrollment.UserID != "user-1" || enrollment.CourseID != "course-1" {
		t.Fatalf("enrollment = %+v", enrollment)
	}

	if _, err := service.Enroll(ctx, "user-1", "course-1"); !errors.Is(err, domain.ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}
}

func TestEnrollPaidCourseRequiresCheckout(t *testing.T) {
	courses := memory.NewCourseStore()
	paid := learnableCourse()
	paid.Price = 99
	if _, err := courses.SaveCourse(context.Background(), paid); err != nil {
		t.Fatalf("seed: %v", err)
	}
	service := NewLearningService(courses, memory.NewEnrollmentStore(),
		memory.NewHostedCheckout("https://pay.example/checkout"),
		memory.NewCertificateRenderer(), false, nil)
	ctx := context.Background()

	if _, err := service.Enroll(ctx, "user-1", "course-1"); !errors.Is(err, domain.ErrCourseNotFree) {
		t.Fatalf("expected ErrCourseNotFree, got %v", err)
	}

	checkoutURL, err := service.CreateCheckout(ctx, "user-1", "course-1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !strings.HasPrefix(checkoutURL, "https://pay.example/checkout?") {
		t.Fatalf("checkout url = %q", checkoutURL)
	}

	// Completion without a paid session must not enroll.
	if _, err := service.CompleteCheckout(ctx, "user-1", "course-1", "forged"); !errors.Is(err, domain.ErrCheckoutNotFound) {
		t.Fatalf("expected ErrCheckoutNotFound, got %v", err)
	}
	if _, err := service.GetEnrollment(ctx, "user-1", "course-1"); !errors.Is(err, domain.ErrEnrollmentNotFound) {
		t.Fatalf("forged completion should not enroll, got %v", err)
	}

	sessionID := checkoutSessionID(t, checkoutURL)

	// The session belongs to user-1; nobody else can redeem it.
	if _, err := service.CompleteCheckout(ctx, "user-2", "course-1", sessionID); !errors.Is(err, domain.ErrCheckoutNotFound) {
		t.Fatalf("expected ErrCheckoutNotFound for wrong user, got %v", err)
	}

	// The rejected redemption consumed the session; start over for the real one.
	checkoutURL, err = service.CreateCheckout(ctx, "user-1", "course-1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if _, err := service.CompleteCheckout(ctx, "user-1", "course-1", checkoutSessionID(t, checkoutURL)); err != nil {
		t.Fatalf("complete checkout: %v", err)
	}
	if _, err := service.GetEnrollment(ctx, "user-1", "course-1"); err != nil {
		t.Fatalf("enrollment missing after checkout: %v", err)
	}
}

func checkoutSessionID(t *testing.T, checkoutURL string) string {
	t.Helper()
	parsed, err := neturl.Parse(checkoutURL)
	if err != nil {
		t.Fatalf("parse checkout url: %v", err)
	}
	sessionID := parsed.Query().Get("session")
	if sessionID == "" {
		t.Fatalf("checkout url %q has no session id", checkoutURL)
	}
	return sessionID
}

func TestSubmitQuizPersistsOnlyCorrectAnswers(t *testing.T) {
	service, enrollments := newLearningFixture(t, false)
	ctx := context.Background()
	if _, err := service.Enroll(ctx, "user-1", "course-1"); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	result, err := service.SubmitQuiz(ctx, "user-1", "course-1", "l1", "s2", domain.QuizSubmission{AnswerID: "a2"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Correct || result.Message != player.MessageIncorrect {
		t.Fatalf("result = %+v", result)
	}
	e, _ := enrollments.GetEnrollment(ctx, "user-1", "course-1")
	if len(e.Progress) != 0 {
		t.Fatalf("incorrect answer must persist nothing, got %+v", e.Progress)
	}

	result, err = service.SubmitQuiz(ctx, "user-1", "course-1", "l1", "s2", domain.QuizSubmission{AnswerID: "a1"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct || result.Message != player.MessageCorrect {
		t.Fatalf("result = %+v", result)
	}
	e, _ = enrollments.GetEnrollment(ctx, "user-1", "course-1")
	if !e.HasPassed("l1", "s2") {
		t.Fatalf("progress not recorded: %+v", e.Progress)
	}

	if _, err := service.SubmitQuiz(ctx, "user-1", "course-1", "l1", "s2", domain.QuizSubmission{}); !errors.Is(err, domain.ErrEmptySubmission) {
		t.Fatalf("expected ErrEmptySubmission, got %v", err)
	}
}

func TestSubmitFinalExamCompletesEnrollment(t *testing.T) {
	service, enrollments := newLearningFixture(t, false)
	ctx := context.Background()
	if _, err := service.Enroll(ctx, "user-1", "course-1"); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	// The gate is off: the exam is submittable with regular quizzes unpassed.
	result, err := service.SubmitFinalExam(ctx, "user-1", "course-1", domain.QuizSubmission{AnswerID: "x1"})
	if err != nil {
		t.Fatalf("submit exam: %v", err)
	}
	if !result.Correct || result.Message != player.MessageFinalExamPassed {
		t.Fatalf("result = %+v", result)
	}
	e, _ := enrollments.GetEnrollment(ctx, "user-1", "course-1")
	if !e.IsCompleted || !e.HasPassed("exam", "s3") {
		t.Fatalf("completion not recorded: %+v", e)
	}
}

func TestSubmitFinalExamGateWhenConfigured(t *testing.T) {
	service, _ := newLearningFixture(t, true)
	ctx := context.Background()
	if _, err := service.Enroll(ctx, "user-1", "course-1"); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if _, err := service.SubmitFinalExam(ctx, "user-1", "course-1", domain.QuizSubmission{AnswerID: "x1"}); !errors.Is(err, domain.ErrExamLocked) {
		t.Fatalf("expected ErrExamLocked, got %v", err)
	}

	// Passing every regular quiz opens the gate.
	if _, err := service.SubmitQuiz(ctx, "user-1", "course-1", "l1", "s2", domain.QuizSubmission{AnswerID: "a1"}); err != nil {
		t.Fatalf("submit quiz: %v", err)
	}
	result, err := service.SubmitFinalExam(ctx, "user-1", "course-1", domain.QuizSubmission{AnswerID: "x1"})
	if err != nil {
		t.Fatalf("submit exam: %v", err)
	}
	if !result.Correct {
		t.Fatalf("result = %+v", result)
	}
}

func TestUpdateProgressMovesResumePointer(t *testing.T) {
	service, enrollments := newLearningFixture(t, false)
	ctx := context.Background()
	if _, err := service.Enroll(ctx, "user-1", "course-1"); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if err := service.UpdateProgress(ctx, "user-1", "course-1", "l1", 1); err != nil {
		t.Fatalf("update progress: %v", err)
	}
	e, _ := enrollments.GetEnrollment(ctx, "user-1", "course-1")
	if e.LastViewedLesson != "l1" || e.LastViewedSlideIndex != 1 {
		t.Fatalf("resume pointer = %q/%d", e.LastViewedLesson, e.LastViewedSlideIndex)
	}
}

func TestIssueCertificate(t *testing.T) {
	service, _ := newLearningFixture(t, false)
	ctx := context.Background()
	if _, err := service.Enroll(ctx, "user-1", "course-1"); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	// Not completed yet.
	if _, err := service.IssueCertificate(ctx, "user-1", "Dana", "course-1"); !errors.Is(err, domain.ErrExamLocked) {
		t.Fatalf("expected ErrExamLocked, got %v", err)
	}

	if _, err := service.SubmitFinalExam(ctx, "user-1", "course-1", domain.QuizSubmission{AnswerID: "x1"}); err != nil {
		t.Fatalf("submit exam: %v", err)
	}
	cert, err := service.IssueCertificate(ctx, "user-1", "Dana", "course-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !strings.HasPrefix(cert, "data:image/svg+xml;base64,") {
		t.Fatalf("certificate = %q", cert)
	}

	// Idempotent: the second call returns the stored artifact.
	again, err := service.IssueCertificate(ctx, "user-1", "Dana", "course-1")
	if err != nil {
		t.Fatalf("issue again: %v", err)
	}
	if again != cert {
		t.Fatalf("certificate should be stable across calls")
	}
}

func TestPlaybackStateResumes(t *testing.T) {
	service, _ := newLearningFixture(t, false)
	ctx := context.Background()
	if _, err := service.Enroll(ctx, "user-1", "course-1"); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if err := service.UpdateProgress(ctx, "user-1", "course-1", "l1", 1); err != nil {
		t.Fatalf("update progress: %v", err)
	}

	sess, err := service.PlaybackState(ctx, "user-1", "course-1")
	if err != nil {
		t.Fatalf("playback: %v", err)
	}
	if sess.LessonIndex != 0 || sess.SlideIndex != 1 {
		t.Fatalf("resume position = (%d,%d), want (0,1)", sess.LessonIndex, sess.SlideIndex)
	}
	if sess.State() != player.StateQuizOpen {
		t.Fatalf("state = %v, want quiz-open", sess.State())
	}
}
