package domain

import "fmt"

// ValidationError marks a document that must not be saved.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid course: %s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Validate checks the structural invariants a course must satisfy before it
// is persisted. Quiz completeness is deliberately not checked here: an
// incomplete quiz is saveable and simply grades incorrect until authored.
func (c *Course) Validate() error {
	if c.Title == "" {
		return invalid("title", "is required")
	}
	if c.Description == "" {
		return invalid("description", "is required")
	}
	switch c.Level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
	default:
		return invalid("level", fmt.Sprintf("%q is not a known level", c.Level))
	}
	if c.Specialty == "" {
		return invalid("specialty", "is required")
	}
	if c.Price < 0 {
		return invalid("price", "must not be negative")
	}
	switch c.Status {
	case StatusActive, StatusDeleted, "":
	default:
		return invalid("status", fmt.Sprintf("%q is not a known status", c.Status))
	}

	finalExams := 0
	for li := range c.Lessons {
		lesson := &c.Lessons[li]
		if lesson.IsFinalExam {
			finalExams++
		}
		for si := range lesson.Slides {
			for ei := range lesson.Slides[si].Elements {
				el := &lesson.Slides[si].Elements[ei]
				switch el.Type {
				case ElementText, ElementImage, ElementVideo:
				default:
					return invalid("element.type", fmt.Sprintf("%q is not a known kind", el.Type))
				}
				if el.Content == "" {
					return invalid("element.content", "must not be empty")
				}
			}
		}
	}
	if finalExams > 1 {
		return ErrDuplicateFinalExam
	}
	return nil
}
