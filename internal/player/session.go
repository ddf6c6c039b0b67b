package player

import "coursedeck-service/internal/domain"

// State is the playback state for the active (lesson, slide) pair.
type State string

const (
	// StateViewing: slide content visible, no graded quiz pending.
	StateViewing State = "viewing"
	// StateQuizOpen: quiz overlay active, not yet graded.
	StateQuizOpen State = "quiz-open"
	// StateGradedCorrect: feedback shown, forward navigation unlocked.
	StateGradedCorrect State = "graded-correct"
	// StateGradedIncorrect: feedback shown, retry expected.
	StateGradedIncorrect State = "graded-incorrect"
	// StateExamPassed: final-exam slide entered with the enrollment already
	// completed; a static passed message replaces the quiz UI.
	StateExamPassed State = "exam-passed"
)

// Session is the playback state machine for one learner working through one
// course. It reads the content model, never writes it; durable progress is
// the service's job, the session only tracks what was passed in-session and
// what prior progress records say.
type Session struct {
	course     domain.Course
	enrollment domain.Enrollment

	LessonIndex int
	SlideIndex  int

	state  State
	passed map[domain.QuizRef]bool
}

// NewSession starts playback at the first slide of the first lesson.
func NewSession(course domain.Course, enrollment domain.Enrollment) *Session {
	s := &Session{
		course:     course,
		enrollment: enrollment,
		passed:     make(map[domain.QuizRef]bool),
	}
	s.enter()
	return s
}

// Resume positions the session at the enrollment's resume pointer when it
// still resolves, otherwise stays at the start.
func (s *Session) Resume() {
	for i, lesson := range s.course.Lessons {
		if lesson.ID == s.enrollment.LastViewedLesson {
			s.LessonIndex = i
			s.SlideIndex = 0
			if s.enrollment.LastViewedSlideIndex >= 0 && s.enrollment.LastViewedSlideIndex < len(lesson.Slides) {
				s.SlideIndex = s.enrollment.LastViewedSlideIndex
			}
			break
		}
	}
	s.enter()
}

// Goto jumps straight to a (lesson, slide) pair, as the content sidebar does.
func (s *Session) Goto(lessonIndex, slideIndex int) bool {
	if lessonIndex < 0 || lessonIndex >= len(s.course.Lessons) {
		return false
	}
	if slideIndex < 0 || slideIndex >= len(s.course.Lessons[lessonIndex].Slides) {
		return false
	}
	s.LessonIndex = lessonIndex
	s.SlideIndex = slideIndex
	s.enter()
	return true
}

// State reports the current playback state.
func (s *Session) State() State { return s.state }

func (s *Session) lesson() *domain.Lesson {
	if s.LessonIndex < 0 || s.LessonIndex >= len(s.course.Lessons) {
		return nil
	}
	return &s.course.Lessons[s.LessonIndex]
}

// Slide returns the active slide, nil for an empty course.
func (s *Session) Slide() *domain.Slide {
	lesson := s.lesson()
	if lesson == nil || s.SlideIndex < 0 || s.SlideIndex >= len(lesson.Slides) {
		return nil
	}
	return &lesson.Slides[s.SlideIndex]
}

// enter recomputes the state on arrival at a slide: a quiz auto-opens unless
// already passed; a final-exam slide on a completed enrollment shows the
// static passed message.
func (s *Session) enter() {
	s.state = StateViewing
	lesson := s.lesson()
	slide := s.Slide()
	if lesson == nil || slide == nil || slide.Quiz == nil {
		return
	}
	if lesson.IsFinalExam && s.enrollment.IsCompleted {
		s.state = StateExamPassed
		return
	}
	if s.quizPassed(lesson.ID, slide.ID) {
		return
	}
	s.state = StateQuizOpen
}

func (s *Session) quizPassed(lessonID, slideID string) bool {
	if s.passed[domain.QuizRef{LessonID: lessonID, SlideID: slideID}] {
		return true
	}
	return s.enrollment.HasPassed(lessonID, slideID)
}

// Submit grades a submission locally and advances the state machine. The
// durable progress record is written by the service from the same grading
// result; unlocking never waits on that write. Empty submissions are
// rejected and do not count as an attempt.
func (s *Session) Submit(sub domain.QuizSubmission) (domain.GradeResult, error) {
	slide := s.Slide()
	lesson := s.lesson()
	if slide == nil || slide.Quiz == nil || lesson == nil {
		return domain.GradeResult{}, domain.ErrQuizNotFound
	}
	if sub.IsEmpty(slide.Quiz.Kind) {
		return domain.GradeResult{}, domain.ErrEmptySubmission
	}
	if Grade(slide.Quiz, sub) {
		s.passed[domain.QuizRef{LessonID: lesson.ID, SlideID: slide.ID}] = true
		s.state = StateGradedCorrect
		if lesson.IsFinalExam {
			s.enrollment.IsCompleted = true
			return domain.GradeResult{Correct: true, Message: MessageFinalExamPassed}, nil
		}
		return domain.GradeResult{Correct: true, Message: MessageCorrect}, nil
	}
	s.state = StateGradedIncorrect
	return domain.GradeResult{Correct: false, Message: MessageIncorrect}, nil
}

// atEnd reports whether the session sits on the last slide of the last lesson.
func (s *Session) atEnd() bool {
	lesson := s.lesson()
	if lesson == nil {
		return true
	}
	return s.LessonIndex == len(s.course.Lessons)-1 && s.SlideIndex == len(lesson.Slides)-1
}

// NextDisabled reports whether forward navigation is locked: the slide has a
// quiz not yet answered correctly, or there is simply nowhere further to go.
func (s *Session) NextDisabled() bool {
	lesson := s.lesson()
	slide := s.Slide()
	if lesson == nil || slide == nil {
		return true
	}
	if slide.Quiz != nil {
		if lesson.IsFinalExam {
			return !s.enrollment.IsCompleted
		}
		return !s.quizPassed(lesson.ID, slide.ID)
	}
	return s.atEnd()
}

// PreviousDisabled reports whether backward navigation is at the absolute start.
func (s *Session) PreviousDisabled() bool {
	return s.LessonIndex <= 0 && s.SlideIndex <= 0
}

// Next advances one slide, crossing into the next lesson's first slide at a
// lesson boundary. No-op at the absolute end or while gated.
func (s *Session) Next() bool {
	if s.NextDisabled() || s.atEnd() {
		return false
	}
	lesson := s.lesson()
	if s.SlideIndex+1 < len(lesson.Slides) {
		s.SlideIndex++
	} else {
		s.LessonIndex++
		s.SlideIndex = 0
	}
	s.enter()
	return true
}

// Previous retreats one slide, crossing to the previous lesson's last slide
// at a boundary. No-op at the absolute start.
func (s *Session) Previous() bool {
	if s.PreviousDisabled() {
		return false
	}
	if s.SlideIndex > 0 {
		s.SlideIndex--
	} else {
		s.LessonIndex--
		s.SlideIndex = len(s.course.Lessons[s.LessonIndex].Slides) - 1
	}
	s.enter()
	return true
}

// FinalExamReachable reports whether every regular quiz in the course has
// been answered correctly at least once. This gates how the final exam is
// presented in navigation; it is not enforced at grading time unless the
// service is configured to.
func (s *Session) FinalExamReachable() bool {
	return FinalExamReachable(&s.course, &s.enrollment)
}

// FinalExamReachable compares the set of regular quiz slides against the
// passed progress records.
func FinalExamReachable(course *domain.Course, enrollment *domain.Enrollment) bool {
	for _, ref := range course.RegularQuizRefs() {
		if !enrollment.HasPassed(ref.LessonID, ref.SlideID) {
			return false
		}
	}
	return true
}
