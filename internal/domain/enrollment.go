package domain

// QuizProgress records one graded quiz outcome. At most one record exists per
// (lesson, slide) pair; regrading overwrites IsCorrect in place.
type QuizProgress struct {
	LessonID  string `json:"lessonId"`
	SlideID   string `json:"slideId"`
	IsCorrect bool   `json:"isCorrect"`
}

// Enrollment is one user's relationship to a course: resume pointer,
// completion flag, certificate payload and per-quiz progress.
type Enrollment struct {
	UserID               string         `json:"userId"`
	CourseID             string         `json:"courseId"`
	LastViewedLesson     string         `json:"lastViewedLesson"`
	LastViewedSlideIndex int            `json:"lastViewedSlideIndex"`
	IsCompleted          bool           `json:"isCompleted"`
	Certificate          string         `json:"certificate,omitempty"`
	Progress             []QuizProgress `json:"progress"`
}

// RecordProgress upserts the progress record for (lessonID, slideID).
func (e *Enrollment) RecordProgress(lessonID, slideID string, correct bool) {
	for i := range e.Progress {
		if e.Progress[i].LessonID == lessonID && e.Progress[i].SlideID == slideID {
			e.Progress[i].IsCorrect = correct
			return
		}
	}
	e.Progress = append(e.Progress, QuizProgress{LessonID: lessonID, SlideID: slideID, IsCorrect: correct})
}

// HasPassed reports whether the quiz on (lessonID, slideID) was ever answered
// correctly.
func (e *Enrollment) HasPassed(lessonID, slideID string) bool {
	for _, p := range e.Progress {
		if p.LessonID == lessonID && p.SlideID == slideID && p.IsCorrect {
			return true
		}
	}
	return false
}

// Clone returns a deep copy; stores hand out clones so callers cannot alias
// the persisted progress slice.
func (e Enrollment) Clone() Enrollment {
	out := e
	out.Progress = append([]QuizProgress(nil), e.Progress...)
	return out
}
