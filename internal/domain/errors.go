package domain

import "errors"

var (
	// ErrCourseNotFound is returned when a course ID does not resolve.
	ErrCourseNotFound = errors.New("course not found")
	// ErrLessonNotFound is returned when a lesson ID does not resolve within the course.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrSlideNotFound is returned when a slide ID does not resolve within the lesson.
	ErrSlideNotFound = errors.New("slide not found")
	// ErrQuizNotFound indicates the addressed slide carries no quiz.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrFinalExamNotFound indicates the course has no final-exam lesson with a quiz.
	ErrFinalExamNotFound = errors.New("final exam not found")
	// ErrEnrollmentNotFound is returned when a user acts on a course they never enrolled in.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	// ErrAlreadyEnrolled rejects double enrollment.
	ErrAlreadyEnrolled = errors.New("user is already enrolled in this course")
	// ErrCourseNotFree rejects free enrollment into a priced course.
	ErrCourseNotFree = errors.New("course is not free")
	// ErrCheckoutNotFound rejects a completion callback whose session does
	// not resolve to the claimed user and course.
	ErrCheckoutNotFound = errors.New("checkout session not found")
	// ErrEmptySubmission rejects quiz submissions with zero selections before grading.
	ErrEmptySubmission = errors.New("please select an answer")
	// ErrDuplicateFinalExam rejects any mutation leaving two final-exam lessons.
	ErrDuplicateFinalExam = errors.New("course already has a final-exam lesson")
	// ErrMatchOptionInUse rejects removing a match option some prompt still depends on.
	ErrMatchOptionInUse = errors.New("match option is referenced by a prompt")
	// ErrExamLocked is returned when the final exam is gated behind unfinished regular quizzes.
	ErrExamLocked = errors.New("final exam requires all regular quizzes to be passed")
	// ErrNoActiveSlide is returned by editor operations that need a selected slide.
	ErrNoActiveSlide = errors.New("no active slide selected")
	// ErrNoActiveLesson is returned by editor operations that need a selected lesson.
	ErrNoActiveLesson = errors.New("no active lesson selected")
	// ErrElementNotFound is returned when an element index is out of range.
	ErrElementNotFound = errors.New("element not found")
)
