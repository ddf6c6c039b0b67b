package editor

import "coursedeck-service/internal/domain"

// ToggleQuiz attaches a seeded single-choice quiz to the active slide, or
// removes the existing one.
func (s *Session) ToggleQuiz() error {
	return s.update(false, func(c *domain.Course) error {
		slide, err := s.activeSlide(c)
		if err != nil {
			return err
		}
		if slide.Quiz != nil {
			slide.Quiz = nil
			return nil
		}
		slide.Quiz = &domain.Quiz{
			Kind:     domain.QuizSingleChoice,
			Question: "New Question",
			Answers: []domain.Answer{
				{ID: domain.NewID(), Text: "Correct Answer", IsCorrect: true},
				{ID: domain.NewID(), Text: "Incorrect Answer"},
			},
			Explanation: "Add an explanation.",
		}
		return nil
	})
}

// SetQuizKind switches the quiz kind. Switching to matching seeds one prompt
// and a two-option set when no matching fields exist yet; switching away
// keeps the matching data around for a switch-back, it is simply inert for
// grading until then.
func (s *Session) SetQuizKind(kind domain.QuizKind) error {
	return s.withQuiz(false, func(q *domain.Quiz) error {
		q.Kind = kind
		if kind == domain.QuizMatching && len(q.MatchPrompts) == 0 {
			q.MatchPrompts = []domain.MatchPrompt{{ID: domain.NewID(), Prompt: "Label 1", CorrectMatch: "A"}}
			q.MatchOptions = []string{"A", "B"}
		}
		return nil
	})
}

// SetQuizQuestion updates the question text; commit=false stages it.
func (s *Session) SetQuizQuestion(question string, commit bool) error {
	return s.withQuiz(!commit, func(q *domain.Quiz) error {
		q.Question = question
		return nil
	})
}

// SetQuizExplanation updates the explanation text; commit=false stages it.
func (s *Session) SetQuizExplanation(explanation string, commit bool) error {
	return s.withQuiz(!commit, func(q *domain.Quiz) error {
		q.Explanation = explanation
		return nil
	})
}

// AddAnswer appends an answer to a choice quiz.
func (s *Session) AddAnswer() error {
	return s.withQuiz(false, func(q *domain.Quiz) error {
		q.Answers = append(q.Answers, domain.Answer{ID: domain.NewID(), Text: "New Answer"})
		return nil
	})
}

// RemoveAnswer splices the answer at index out.
func (s *Session) RemoveAnswer(index int) error {
	return s.withQuiz(false, func(q *domain.Quiz) error {
		if index < 0 || index >= len(q.Answers) {
			return domain.ErrQuizNotFound
		}
		q.Answers = append(q.Answers[:index], q.Answers[index+1:]...)
		return nil
	})
}

// SetAnswerText updates one answer's text; commit=false stages it.
func (s *Session) SetAnswerText(index int, text string, commit bool) error {
	return s.withQuiz(!commit, func(q *domain.Quiz) error {
		if index < 0 || index >= len(q.Answers) {
			return domain.ErrQuizNotFound
		}
		q.Answers[index].Text = text
		return nil
	})
}

// SetAnswerCorrect toggles an answer's correctness. For single-choice
// quizzes marking one answer correct clears the flag on every other answer,
// so exactly one stays correct. Correctness commits immediately.
func (s *Session) SetAnswerCorrect(index int, correct bool) error {
	return s.withQuiz(false, func(q *domain.Quiz) error {
		if index < 0 || index >= len(q.Answers) {
			return domain.ErrQuizNotFound
		}
		if q.Kind == domain.QuizSingleChoice && correct {
			for i := range q.Answers {
				q.Answers[i].IsCorrect = i == index
			}
			return nil
		}
		q.Answers[index].IsCorrect = correct
		return nil
	})
}

// AddMatchPrompt appends a prompt row to a matching quiz.
func (s *Session) AddMatchPrompt() error {
	return s.withQuiz(false, func(q *domain.Quiz) error {
		q.MatchPrompts = append(q.MatchPrompts, domain.MatchPrompt{ID: domain.NewID(), Prompt: "New Label", CorrectMatch: "A"})
		return nil
	})
}

// RemoveMatchPrompt splices the prompt at index out.
func (s *Session) RemoveMatchPrompt(index int) error {
	return s.withQuiz(false, func(q *domain.Quiz) error {
		if index < 0 || index >= len(q.MatchPrompts) {
			return domain.ErrQuizNotFound
		}
		q.MatchPrompts = append(q.MatchPrompts[:index], q.MatchPrompts[index+1:]...)
		return nil
	})
}

// SetMatchPrompt updates one prompt row; commit=false stages it.
func (s *Session) SetMatchPrompt(index int, prompt, correctMatch string, commit bool) error {
	return s.withQuiz(!commit, func(q *domain.Quiz) error {
		if index < 0 || index >= len(q.MatchPrompts) {
			return domain.ErrQuizNotFound
		}
		q.MatchPrompts[index].Prompt = prompt
		q.MatchPrompts[index].CorrectMatch = correctMatch
		return nil
	})
}

// AddMatchOption appends an option to a matching quiz.
func (s *Session) AddMatchOption(option string) error {
	return s.withQuiz(false, func(q *domain.Quiz) error {
		q.MatchOptions = append(q.MatchOptions, option)
		return nil
	})
}

// RemoveMatchOption splices the option at index out. The removal is rejected
// while any prompt still names the option as its correct match, otherwise the
// quiz would become unwinnable with no visible cause.
func (s *Session) RemoveMatchOption(index int) error {
	return s.withQuiz(false, func(q *domain.Quiz) error {
		if index < 0 || index >= len(q.MatchOptions) {
			return domain.ErrQuizNotFound
		}
		option := q.MatchOptions[index]
		for _, p := range q.MatchPrompts {
			if p.CorrectMatch == option {
				return domain.ErrMatchOptionInUse
			}
		}
		q.MatchOptions = append(q.MatchOptions[:index], q.MatchOptions[index+1:]...)
		return nil
	})
}

// SetMatchOption renames the option at index; commit=false stages it.
func (s *Session) SetMatchOption(index int, option string, commit bool) error {
	return s.withQuiz(!commit, func(q *domain.Quiz) error {
		if index < 0 || index >= len(q.MatchOptions) {
			return domain.ErrQuizNotFound
		}
		q.MatchOptions[index] = option
		return nil
	})
}

func (s *Session) withQuiz(preventPush bool, mutate func(q *domain.Quiz) error) error {
	return s.update(preventPush, func(c *domain.Course) error {
		slide, err := s.activeSlide(c)
		if err != nil {
			return err
		}
		if slide.Quiz == nil {
			return domain.ErrQuizNotFound
		}
		return mutate(slide.Quiz)
	})
}
