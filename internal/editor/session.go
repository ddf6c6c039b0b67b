package editor

import (
	"fmt"
	"sync"

	"coursedeck-service/internal/domain"
)

// Placeholder media URLs substituted on save for elements that never got
// content attached, so the persisted document always carries non-empty
// element content.
const (
	PlaceholderImageURL = "https://placehold.co/440x260/e2e8f0/94a3b8?text=Image"
	PlaceholderVideoURL = "https://www.w3schools.com/html/mov_bbb.mp4"
)

// Session is one in-memory authoring session over a course document. Every
// mutation clones the present snapshot, edits the clone and swaps it in
// through the history store, so concurrent readers never observe a torn
// document. The store hands the same session to every connection editing a
// course, so all operations take the session lock. Free-text setters take a
// commit flag: uncommitted edits replace the present without creating an
// undo step (live typing), the commit at blur time creates one.
type Session struct {
	mu      sync.RWMutex
	history *History[domain.Course]

	// Active selection, -1 when nothing is selected. Concurrent readers go
	// through Selection.
	ActiveLesson  int
	ActiveSlide   int
	ActiveElement int
}

// NewSession starts an authoring session on a deep copy of the course.
func NewSession(course domain.Course) *Session {
	s := &Session{
		history:       NewHistory(course.Clone()),
		ActiveLesson:  -1,
		ActiveSlide:   -1,
		ActiveElement: -1,
	}
	if len(course.Lessons) > 0 {
		s.ActiveLesson = 0
		if len(course.Lessons[0].Slides) > 0 {
			s.ActiveSlide = 0
		}
	}
	return s
}

// Course returns a deep copy of the present snapshot.
func (s *Session) Course() domain.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Present().Clone()
}

// Selection returns the active lesson, slide and element indexes.
func (s *Session) Selection() (lesson, slide, element int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ActiveLesson, s.ActiveSlide, s.ActiveElement
}

// CourseForSave returns the present snapshot with media placeholders filled
// in, ready for validation and persistence.
func (s *Session) CourseForSave() domain.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course := s.history.Present().Clone()
	ApplyMediaPlaceholders(&course)
	return course
}

// ApplyMediaPlaceholders substitutes placeholder URLs for media elements that
// never got content attached.
func ApplyMediaPlaceholders(c *domain.Course) {
	for li := range c.Lessons {
		for si := range c.Lessons[li].Slides {
			elements := c.Lessons[li].Slides[si].Elements
			for ei := range elements {
				if elements[ei].Content != "" {
					continue
				}
				switch elements[ei].Type {
				case domain.ElementImage:
					elements[ei].Content = PlaceholderImageURL
				case domain.ElementVideo:
					elements[ei].Content = PlaceholderVideoURL
				}
			}
		}
	}
}

func (s *Session) Undo() domain.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	course := s.history.Undo()
	s.clampSelection(&course)
	return course.Clone()
}

func (s *Session) Redo() domain.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	course := s.history.Redo()
	s.clampSelection(&course)
	return course.Clone()
}

func (s *Session) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanRedo()
}

// update clones the present document, applies the mutation and swaps the
// clone in. The mutation returning an error leaves the history untouched.
func (s *Session) update(preventPush bool, mutate func(c *domain.Course) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft := s.history.Present().Clone()
	if err := mutate(&draft); err != nil {
		return err
	}
	s.history.Set(draft, preventPush)
	return nil
}

// clampSelection pulls the active pointers back into range after undo/redo
// shrinks the document.
func (s *Session) clampSelection(c *domain.Course) {
	if s.ActiveLesson >= len(c.Lessons) {
		s.ActiveLesson = len(c.Lessons) - 1
		s.ActiveSlide = -1
		s.ActiveElement = -1
	}
	if s.ActiveLesson < 0 {
		s.ActiveSlide = -1
		s.ActiveElement = -1
		return
	}
	slides := c.Lessons[s.ActiveLesson].Slides
	if s.ActiveSlide >= len(slides) {
		s.ActiveSlide = len(slides) - 1
		s.ActiveElement = -1
	}
	if s.ActiveSlide < 0 {
		s.ActiveElement = -1
		return
	}
	if s.ActiveElement >= len(slides[s.ActiveSlide].Elements) {
		s.ActiveElement = -1
	}
}

func (s *Session) activeLesson(c *domain.Course) (*domain.Lesson, error) {
	if s.ActiveLesson < 0 || s.ActiveLesson >= len(c.Lessons) {
		return nil, domain.ErrNoActiveLesson
	}
	return &c.Lessons[s.ActiveLesson], nil
}

func (s *Session) activeSlide(c *domain.Course) (*domain.Slide, error) {
	lesson, err := s.activeLesson(c)
	if err != nil {
		return nil, err
	}
	if s.ActiveSlide < 0 || s.ActiveSlide >= len(lesson.Slides) {
		return nil, domain.ErrNoActiveSlide
	}
	return &lesson.Slides[s.ActiveSlide], nil
}

// SelectLesson focuses a lesson and its first slide.
func (s *Session) SelectLesson(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course := s.history.Present()
	if index < 0 || index >= len(course.Lessons) {
		return
	}
	s.ActiveLesson = index
	s.ActiveSlide = -1
	s.ActiveElement = -1
	if len(course.Lessons[index].Slides) > 0 {
		s.ActiveSlide = 0
	}
}

// SelectSlide focuses a slide within the active lesson.
func (s *Session) SelectSlide(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course := s.history.Present()
	if s.ActiveLesson < 0 || s.ActiveLesson >= len(course.Lessons) {
		return
	}
	if index < 0 || index >= len(course.Lessons[s.ActiveLesson].Slides) {
		return
	}
	s.ActiveSlide = index
	s.ActiveElement = -1
}

// SelectElement focuses an element on the active slide; -1 clears.
func (s *Session) SelectElement(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ActiveElement = index
}

// AddLesson appends an empty lesson and focuses it.
func (s *Session) AddLesson() error {
	return s.update(false, func(c *domain.Course) error {
		c.Lessons = append(c.Lessons, domain.Lesson{
			ID:    domain.NewID(),
			Title: fmt.Sprintf("New Lesson %d", len(c.Lessons)+1),
		})
		s.ActiveLesson = len(c.Lessons) - 1
		s.ActiveSlide = -1
		s.ActiveElement = -1
		return nil
	})
}

// AddFinalExamLesson appends the course's final-exam lesson: one slide with
// one seeded single-choice quiz. Any prior final-exam lesson is replaced so
// the at-most-one invariant holds.
func (s *Session) AddFinalExamLesson() error {
	return s.update(false, func(c *domain.Course) error {
		kept := c.Lessons[:0]
		for _, lesson := range c.Lessons {
			if !lesson.IsFinalExam {
				kept = append(kept, lesson)
			}
		}
		c.Lessons = append(kept, domain.Lesson{
			ID:          domain.NewID(),
			Title:       "Final Exam",
			IsFinalExam: true,
			Slides: []domain.Slide{{
				ID:              domain.NewID(),
				BackgroundColor: "#FFFFFF",
				Quiz: &domain.Quiz{
					Kind:     domain.QuizSingleChoice,
					Question: "Final Exam Question",
				},
			}},
		})
		s.ActiveLesson = len(c.Lessons) - 1
		s.ActiveSlide = 0
		s.ActiveElement = -1
		return nil
	})
}

// DeleteLesson removes the lesson at index and moves the selection to the
// nearest surviving lesson.
func (s *Session) DeleteLesson(index int) error {
	return s.update(false, func(c *domain.Course) error {
		if index < 0 || index >= len(c.Lessons) {
			return domain.ErrLessonNotFound
		}
		c.Lessons = append(c.Lessons[:index], c.Lessons[index+1:]...)
		switch {
		case len(c.Lessons) == 0:
			s.ActiveLesson = -1
			s.ActiveSlide = -1
		case s.ActiveLesson >= index:
			s.ActiveLesson = max(0, s.ActiveLesson-1)
			if len(c.Lessons[s.ActiveLesson].Slides) > 0 {
				s.ActiveSlide = 0
			} else {
				s.ActiveSlide = -1
			}
		}
		s.ActiveElement = -1
		return nil
	})
}

// SetLessonTitle renames a lesson. commit=false stages the edit without an
// undo step.
func (s *Session) SetLessonTitle(index int, title string, commit bool) error {
	return s.update(!commit, func(c *domain.Course) error {
		if index < 0 || index >= len(c.Lessons) {
			return domain.ErrLessonNotFound
		}
		c.Lessons[index].Title = title
		return nil
	})
}

// ReorderLessons splices the lesson at src out and reinserts it at dst. The
// active pointer follows the moved lesson.
func (s *Session) ReorderLessons(src, dst int) error {
	return s.update(false, func(c *domain.Course) error {
		if err := splice(&c.Lessons, src, dst); err != nil {
			return err
		}
		s.ActiveLesson = dst
		return nil
	})
}

// AddSlide appends a slide with the default element layout to the active
// lesson and focuses it.
func (s *Session) AddSlide() error {
	return s.update(false, func(c *domain.Course) error {
		lesson, err := s.activeLesson(c)
		if err != nil {
			return err
		}
		lesson.Slides = append(lesson.Slides, defaultSlide(len(lesson.Slides)+1))
		s.ActiveSlide = len(lesson.Slides) - 1
		s.ActiveElement = -1
		return nil
	})
}

// DeleteSlide removes the slide at index within the active lesson.
func (s *Session) DeleteSlide(index int) error {
	return s.update(false, func(c *domain.Course) error {
		lesson, err := s.activeLesson(c)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(lesson.Slides) {
			return domain.ErrSlideNotFound
		}
		lesson.Slides = append(lesson.Slides[:index], lesson.Slides[index+1:]...)
		switch {
		case len(lesson.Slides) == 0:
			s.ActiveSlide = -1
		case s.ActiveSlide >= index:
			s.ActiveSlide = max(0, s.ActiveSlide-1)
		}
		s.ActiveElement = -1
		return nil
	})
}

// SetSlideTitle renames a slide within the active lesson.
func (s *Session) SetSlideTitle(index int, title string, commit bool) error {
	return s.update(!commit, func(c *domain.Course) error {
		lesson, err := s.activeLesson(c)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(lesson.Slides) {
			return domain.ErrSlideNotFound
		}
		lesson.Slides[index].Title = title
		return nil
	})
}

// SetSlideBackground sets the active slide's background color.
func (s *Session) SetSlideBackground(color string) error {
	return s.update(false, func(c *domain.Course) error {
		slide, err := s.activeSlide(c)
		if err != nil {
			return err
		}
		slide.BackgroundColor = color
		return nil
	})
}

// ReorderSlides splices the slide at src out of the active lesson and
// reinserts it at dst; the active pointer follows.
func (s *Session) ReorderSlides(src, dst int) error {
	return s.update(false, func(c *domain.Course) error {
		lesson, err := s.activeLesson(c)
		if err != nil {
			return err
		}
		if err := splice(&lesson.Slides, src, dst); err != nil {
			return err
		}
		s.ActiveSlide = dst
		return nil
	})
}

// SetMetadata applies a partial metadata update to the course header fields.
// Nil fields are left untouched. commit=false stages without an undo step.
func (s *Session) SetMetadata(patch MetadataPatch, commit bool) error {
	return s.update(!commit, func(c *domain.Course) error {
		patch.apply(c)
		return nil
	})
}

// MetadataPatch is a partial update over the course header.
type MetadataPatch struct {
	Title                 *string
	Description           *string
	Level                 *domain.Level
	Specialty             *string
	Price                 *float64
	ImageURL              *string
	InstructorWelcomeNote *string
	IsPublic              *bool
}

func (p MetadataPatch) apply(c *domain.Course) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
	if p.Specialty != nil {
		c.Specialty = *p.Specialty
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.ImageURL != nil {
		c.ImageURL = *p.ImageURL
	}
	if p.InstructorWelcomeNote != nil {
		c.InstructorWelcomeNote = *p.InstructorWelcomeNote
	}
	if p.IsPublic != nil {
		c.IsPublic = *p.IsPublic
	}
}

// AddTag appends a tag unless it is already present.
func (s *Session) AddTag(tag string) error {
	return s.update(false, func(c *domain.Course) error {
		for _, existing := range c.Tags {
			if existing == tag {
				return nil
			}
		}
		c.Tags = append(c.Tags, tag)
		return nil
	})
}

// RemoveTag drops a tag by value.
func (s *Session) RemoveTag(tag string) error {
	return s.update(false, func(c *domain.Course) error {
		for i, existing := range c.Tags {
			if existing == tag {
				c.Tags = append(c.Tags[:i], c.Tags[i+1:]...)
				return nil
			}
		}
		return nil
	})
}

// defaultSlide mirrors the stock layout a new slide starts from: a title, a
// body text block and media placeholders, stacked in z order.
func defaultSlide(number int) domain.Slide {
	return domain.Slide{
		ID:              domain.NewID(),
		Title:           fmt.Sprintf("Slide %d", number),
		BackgroundColor: "#FFFFFF",
		Elements: []domain.Element{
			{
				ID: domain.NewID(), Type: domain.ElementText, Content: "Title",
				Position: domain.Position{X: 40, Y: 30}, Size: domain.Size{Width: 880, Height: 60},
				ZIndex: 1, IsVisible: true, FontSize: 32, Color: "#000000", IsBold: true,
			},
			{
				ID: domain.NewID(), Type: domain.ElementText, Content: "New Text",
				Position: domain.Position{X: 40, Y: 110}, Size: domain.Size{Width: 440, Height: 260},
				ZIndex: 2, IsVisible: true, FontSize: 16, Color: "#000000",
			},
			{
				ID: domain.NewID(), Type: domain.ElementImage, Content: PlaceholderImageURL,
				Position: domain.Position{X: 500, Y: 110}, Size: domain.Size{Width: 440, Height: 180},
				ZIndex: 3, IsVisible: true,
			},
			{
				ID: domain.NewID(), Type: domain.ElementVideo, Content: PlaceholderVideoURL,
				Position: domain.Position{X: 500, Y: 310}, Size: domain.Size{Width: 440, Height: 180},
				ZIndex: 4, IsVisible: true,
			},
		},
	}
}

// splice removes the item at src and reinserts it at dst.
func splice[T any](items *[]T, src, dst int) error {
	n := len(*items)
	if src < 0 || src >= n || dst < 0 || dst >= n {
		return fmt.Errorf("reorder out of range: src=%d dst=%d len=%d", src, dst, n)
	}
	s := *items
	moved := s[src]
	s = append(s[:src], s[src+1:]...)
	rest := append(s[:dst:dst], moved)
	*items = append(rest, s[dst:]...)
	return nil
}
