package editor

import (
	"math"

	"coursedeck-service/internal/domain"
)

// AddElement appends a new element of the given kind to the active slide at
// the default position with per-kind defaults. The new element always paints
// on top: zIndex is the element count plus one.
func (s *Session) AddElement(kind domain.ElementKind) error {
	return s.update(false, func(c *domain.Course) error {
		slide, err := s.activeSlide(c)
		if err != nil {
			return err
		}
		el := domain.Element{
			ID:        domain.NewID(),
			Type:      kind,
			Position:  domain.Position{X: 50, Y: 50},
			Size:      domain.Size{Width: 320, Height: 180},
			ZIndex:    len(slide.Elements) + 1,
			IsVisible: true,
		}
		if kind == domain.ElementText {
			el.Content = "New Text"
			el.Size = domain.Size{Width: 250, Height: 100}
			el.FontSize = 16
			el.Color = "#000000"
		}
		slide.Elements = append(slide.Elements, el)
		s.ActiveElement = len(slide.Elements) - 1
		return nil
	})
}

// MoveElement replaces the element's position with the drag-stop value.
// Repeating the call with the same rectangle is a history no-op.
func (s *Session) MoveElement(index int, pos domain.Position) error {
	return s.updateElement(index, func(el *domain.Element) {
		el.Position = pos
	})
}

// ResizeElement replaces the element's size and position with the
// resize-stop values.
func (s *Session) ResizeElement(index int, size domain.Size, pos domain.Position) error {
	return s.updateElement(index, func(el *domain.Element) {
		el.Size = size
		el.Position = pos
	})
}

// RotateElement sets the element's rotation in degrees. Rotation capture is
// continuous while the pointer is held, so these intermediate states bypass
// the undo stack.
func (s *Session) RotateElement(index int, degrees float64) error {
	return s.update(true, func(c *domain.Course) error {
		slide, err := s.activeSlide(c)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(slide.Elements) {
			return domain.ErrElementNotFound
		}
		slide.Elements[index].Rotation = degrees
		return nil
	})
}

// RotationFromPointer converts a captured pointer position and the element's
// screen-space center into a rotation: atan2 of the offset, shifted by -90
// degrees so a pointer straight below the center reads as zero.
func RotationFromPointer(pointerX, pointerY, centerX, centerY float64) float64 {
	return math.Atan2(pointerY-centerY, pointerX-centerX)*180/math.Pi - 90
}

// DeleteElement removes the element at index. The active selection is
// cleared when it referenced the removed element.
func (s *Session) DeleteElement(index int) error {
	return s.update(false, func(c *domain.Course) error {
		slide, err := s.activeSlide(c)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(slide.Elements) {
			return domain.ErrElementNotFound
		}
		slide.Elements = append(slide.Elements[:index], slide.Elements[index+1:]...)
		switch {
		case s.ActiveElement == index:
			s.ActiveElement = -1
		case s.ActiveElement > index:
			s.ActiveElement--
		}
		return nil
	})
}

// ToggleElementVisibility flips visibility. A hidden element stays in the
// sequence so authors can re-show it.
func (s *Session) ToggleElementVisibility(index int) error {
	return s.updateElement(index, func(el *domain.Element) {
		el.IsVisible = !el.IsVisible
	})
}

// SetElementContent replaces element content: edited text, or an uploaded
// media URL/data URL.
func (s *Session) SetElementContent(index int, content string, commit bool) error {
	return s.update(!commit, func(c *domain.Course) error {
		slide, err := s.activeSlide(c)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(slide.Elements) {
			return domain.ErrElementNotFound
		}
		slide.Elements[index].Content = content
		return nil
	})
}

// TextStylePatch is a partial update over an element's text styling.
type TextStylePatch struct {
	FontSize *float64
	Color    *string
	IsBold   *bool
	IsItalic *bool
}

// SetTextStyle applies a styling patch to a text element.
func (s *Session) SetTextStyle(index int, patch TextStylePatch) error {
	return s.updateElement(index, func(el *domain.Element) {
		if patch.FontSize != nil {
			el.FontSize = *patch.FontSize
		}
		if patch.Color != nil {
			el.Color = *patch.Color
		}
		if patch.IsBold != nil {
			el.IsBold = *patch.IsBold
		}
		if patch.IsItalic != nil {
			el.IsItalic = *patch.IsItalic
		}
	})
}

func (s *Session) updateElement(index int, apply func(*domain.Element)) error {
	return s.update(false, func(c *domain.Course) error {
		slide, err := s.activeSlide(c)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(slide.Elements) {
			return domain.ErrElementNotFound
		}
		apply(&slide.Elements[index])
		return nil
	})
}

// Layer is one row of the layers outline: the element's 1-based position in
// the slide sequence and its kind, listed by paint order.
type Layer struct {
	Position int                `json:"position"`
	Type     domain.ElementKind `json:"type"`
	ZIndex   int                `json:"zIndex"`
}

// Layers projects the element list into an outline sorted by descending
// zIndex. Purely a read-only view.
func Layers(elements []domain.Element) []Layer {
	layers := make([]Layer, 0, len(elements))
	for i, el := range elements {
		layers = append(layers, Layer{Position: i + 1, Type: el.Type, ZIndex: el.ZIndex})
	}
	for i := 1; i < len(layers); i++ {
		for j := i; j > 0 && layers[j].ZIndex > layers[j-1].ZIndex; j-- {
			layers[j], layers[j-1] = layers[j-1], layers[j]
		}
	}
	return layers
}

// Layers returns the outline for the active slide.
func (s *Session) Layers() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course := s.history.Present()
	slide, err := s.activeSlide(&course)
	if err != nil {
		return nil
	}
	return Layers(slide.Elements)
}
