package domain

import (
	"time"

	"github.com/google/uuid"
)

// BaseCanvasWidth is the fixed logical width of the authoring canvas.
// Element positions and sizes are always expressed in this coordinate space;
// the player projects them onto the live viewport at render time.
const BaseCanvasWidth = 960.0

// RecycleBinWindow is how long a soft-deleted course stays restorable.
const RecycleBinWindow = 3 * 24 * time.Hour

type ElementKind string

const (
	ElementText  ElementKind = "text"
	ElementImage ElementKind = "image"
	ElementVideo ElementKind = "video"
)

type QuizKind string

const (
	QuizSingleChoice   QuizKind = "single-choice"
	QuizMultipleChoice QuizKind = "multiple-choice"
	QuizMatching       QuizKind = "matching"
)

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

type CourseStatus string

const (
	StatusActive  CourseStatus = "active"
	StatusDeleted CourseStatus = "deleted"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Element is a single positioned content unit on a slide. Position and size
// live in the logical canvas space; Rotation is degrees, ZIndex is paint order.
type Element struct {
	ID        string      `json:"id"`
	Type      ElementKind `json:"type"`
	Content   string      `json:"content"`
	Position  Position    `json:"position"`
	Size      Size        `json:"size"`
	Rotation  float64     `json:"rotation"`
	ZIndex    int         `json:"zIndex"`
	IsVisible bool        `json:"isVisible"`

	// Text styling; unused for image/video elements.
	FontSize float64 `json:"fontSize,omitempty"`
	Color    string  `json:"color,omitempty"`
	IsBold   bool    `json:"isBold,omitempty"`
	IsItalic bool    `json:"isItalic,omitempty"`
}

type Answer struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type MatchPrompt struct {
	ID           string `json:"id"`
	Prompt       string `json:"prompt"`
	CorrectMatch string `json:"correctMatch"`
}

// Quiz covers all three kinds; kind-specific fields are simply unused by the
// other kinds so that switching kinds in the editor never loses data.
type Quiz struct {
	Kind         QuizKind      `json:"type"`
	Question     string        `json:"question"`
	Explanation  string        `json:"explanation"`
	Answers      []Answer      `json:"answers"`
	MatchPrompts []MatchPrompt `json:"matchPrompts"`
	MatchOptions []string      `json:"matchOptions"`
}

type Slide struct {
	ID              string    `json:"id"`
	Title           string    `json:"title,omitempty"`
	BackgroundColor string    `json:"backgroundColor"`
	Elements        []Element `json:"elements"`
	Quiz            *Quiz     `json:"quiz"`
}

type Lesson struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	IsFinalExam bool    `json:"isFinalExam"`
	Slides      []Slide `json:"slides"`
}

// Course is the whole nested content document. Lessons are stored in delivery
// order; saves replace the document atomically.
type Course struct {
	ID                    string       `json:"id"`
	Title                 string       `json:"title"`
	Description           string       `json:"description"`
	Level                 Level        `json:"level"`
	Specialty             string       `json:"specialty"`
	Price                 float64      `json:"price"`
	ImageURL              string       `json:"imageUrl"`
	Tags                  []string     `json:"tags"`
	InstructorWelcomeNote string       `json:"instructorWelcomeNote,omitempty"`
	IsPublic              bool         `json:"isPublic"`
	Status                CourseStatus `json:"status"`
	DeletedAt             *time.Time   `json:"deletedAt,omitempty"`
	CreatorID             string       `json:"creatorId"`
	Lessons               []Lesson     `json:"lessons"`
	CreatedAt             time.Time    `json:"createdAt"`
	UpdatedAt             time.Time    `json:"updatedAt"`
}

// NewID returns a fresh identifier for any content node.
func NewID() string {
	return uuid.NewString()
}

// FinalExamLesson returns the course's final-exam lesson, if any.
func (c *Course) FinalExamLesson() (*Lesson, bool) {
	for i := range c.Lessons {
		if c.Lessons[i].IsFinalExam {
			return &c.Lessons[i], true
		}
	}
	return nil, false
}

// Lesson looks a lesson up by ID.
func (c *Course) Lesson(id string) (*Lesson, bool) {
	for i := range c.Lessons {
		if c.Lessons[i].ID == id {
			return &c.Lessons[i], true
		}
	}
	return nil, false
}

// Slide looks a slide up by ID within a lesson.
func (l *Lesson) Slide(id string) (*Slide, bool) {
	for i := range l.Slides {
		if l.Slides[i].ID == id {
			return &l.Slides[i], true
		}
	}
	return nil, false
}

// QuizRef identifies one quiz-bearing slide.
type QuizRef struct {
	LessonID string
	SlideID  string
}

// RegularQuizRefs lists every quiz-bearing slide outside final-exam lessons.
// The player compares this set against passed progress records to decide
// whether the final exam is reachable.
func (c *Course) RegularQuizRefs() []QuizRef {
	var refs []QuizRef
	for _, lesson := range c.Lessons {
		if lesson.IsFinalExam {
			continue
		}
		for _, slide := range lesson.Slides {
			if slide.Quiz != nil {
				refs = append(refs, QuizRef{LessonID: lesson.ID, SlideID: slide.ID})
			}
		}
	}
	return refs
}

// RecycleBinExpired reports whether a soft-deleted course has outlived the
// restore window.
func (c *Course) RecycleBinExpired(now time.Time) bool {
	return c.Status == StatusDeleted && c.DeletedAt != nil && now.Sub(*c.DeletedAt) > RecycleBinWindow
}

// Clone returns a deep copy of the course. The editor mutates clones and
// swaps whole documents, so snapshots must not share slices.
func (c Course) Clone() Course {
	out := c
	if c.DeletedAt != nil {
		t := *c.DeletedAt
		out.DeletedAt = &t
	}
	out.Tags = append([]string(nil), c.Tags...)
	out.Lessons = make([]Lesson, len(c.Lessons))
	for i, lesson := range c.Lessons {
		out.Lessons[i] = lesson.Clone()
	}
	return out
}

func (l Lesson) Clone() Lesson {
	out := l
	out.Slides = make([]Slide, len(l.Slides))
	for i, slide := range l.Slides {
		out.Slides[i] = slide.Clone()
	}
	return out
}

func (s Slide) Clone() Slide {
	out := s
	out.Elements = append([]Element(nil), s.Elements...)
	if s.Quiz != nil {
		q := s.Quiz.Clone()
		out.Quiz = &q
	}
	return out
}

func (q Quiz) Clone() Quiz {
	out := q
	out.Answers = append([]Answer(nil), q.Answers...)
	out.MatchPrompts = append([]MatchPrompt(nil), q.MatchPrompts...)
	out.MatchOptions = append([]string(nil), q.MatchOptions...)
	return out
}
