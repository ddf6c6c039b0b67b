// Package player implements the read-only side of the platform: quiz
// grading, the lesson playback state machine with its gating rules, and the
// projection of the logical authoring canvas onto a live viewport.
package player

import "coursedeck-service/internal/domain"

const (
	MessageCorrect         = "Correct!"
	MessageIncorrect       = "Incorrect, please try again."
	MessageFinalExamPassed = "Final Exam Passed! Your certificate is now available."
)

// Grade evaluates a submission against a quiz with the exact-match rule per
// kind. An incompletely authored quiz (no correct answer flagged, matching
// with no prompts) has no correct mapping and always grades incorrect.
func Grade(quiz *domain.Quiz, sub domain.QuizSubmission) bool {
	if quiz == nil {
		return false
	}
	switch quiz.Kind {
	case domain.QuizSingleChoice:
		return gradeSingleChoice(quiz, sub.AnswerID)
	case domain.QuizMultipleChoice:
		return gradeMultipleChoice(quiz, sub.AnswerIDs)
	case domain.QuizMatching:
		return gradeMatching(quiz, sub.Matches)
	}
	return false
}

func gradeSingleChoice(quiz *domain.Quiz, answerID string) bool {
	for _, ans := range quiz.Answers {
		if ans.IsCorrect {
			return ans.ID == answerID
		}
	}
	return false
}

// gradeMultipleChoice requires the submitted set to equal the correct set
// exactly: same size, same members, order-independent.
func gradeMultipleChoice(quiz *domain.Quiz, answerIDs []string) bool {
	correct := make(map[string]bool)
	for _, ans := range quiz.Answers {
		if ans.IsCorrect {
			correct[ans.ID] = true
		}
	}
	if len(correct) == 0 {
		return false
	}
	submitted := make(map[string]bool)
	for _, id := range answerIDs {
		submitted[id] = true
	}
	if len(submitted) != len(correct) {
		return false
	}
	for id := range correct {
		if !submitted[id] {
			return false
		}
	}
	return true
}

// gradeMatching requires every prompt to be mapped to its correct match,
// compared case-sensitively.
func gradeMatching(quiz *domain.Quiz, matches map[string]string) bool {
	if len(quiz.MatchPrompts) == 0 {
		return false
	}
	for _, prompt := range quiz.MatchPrompts {
		if matches[prompt.ID] != prompt.CorrectMatch {
			return false
		}
	}
	return true
}
