package domain

// QuizSubmission carries a learner's answer set for one quiz. Exactly one of
// the fields is meaningful depending on the quiz kind.
type QuizSubmission struct {
	// AnswerID is the selected answer for single-choice quizzes.
	AnswerID string `json:"answerId,omitempty"`
	// AnswerIDs is the selected answer set for multiple-choice quizzes.
	AnswerIDs []string `json:"answerIds,omitempty"`
	// Matches maps prompt ID to the chosen option for matching quizzes.
	Matches map[string]string `json:"matches,omitempty"`
}

// IsEmpty reports whether the submission carries zero selections for the
// given quiz kind. Empty submissions are rejected before grading and do not
// count as an attempt.
func (s QuizSubmission) IsEmpty(kind QuizKind) bool {
	switch kind {
	case QuizSingleChoice:
		return s.AnswerID == ""
	case QuizMultipleChoice:
		return len(s.AnswerIDs) == 0
	case QuizMatching:
		return len(s.Matches) == 0
	}
	return true
}

// GradeResult is the outcome of grading one submission.
type GradeResult struct {
	Correct bool   `json:"correct"`
	Message string `json:"message"`
}
