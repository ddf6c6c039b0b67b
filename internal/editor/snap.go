package editor

import (
	"math"

	"coursedeck-service/internal/domain"
)

// SnapThreshold is the screen-space distance, in pixels, under which an
// alignment guide activates.
const SnapThreshold = 5.0

// Guide is a renderable alignment line: a vertical guide at Offset pixels
// from the left edge, or a horizontal one at Offset pixels from the top.
// Guides are hints only; they never move the element.
type Guide struct {
	Axis   string  `json:"axis"` // "v" or "h"
	Offset float64 `json:"offset"`
}

// SnapGuides computes the active alignment guides for a dragged element.
// Candidate lines come from the canvas center on both axes and from every
// other visible, non-rotated element's edges and centers. All comparison
// happens at screen scale: canvasWidth/canvasHeight are the rendered surface
// size and scale maps logical canvas coordinates onto it. A rotated dragged
// element produces no guides, its edges are ambiguous for snapping.
func SnapGuides(active domain.Element, others []domain.Element, canvasWidth, canvasHeight, scale float64) []Guide {
	if active.Rotation != 0 {
		return nil
	}

	candidates := []Guide{
		{Axis: "v", Offset: canvasWidth / 2},
		{Axis: "h", Offset: canvasHeight / 2},
	}
	for _, el := range others {
		if !el.IsVisible || el.Rotation != 0 {
			continue
		}
		candidates = append(candidates, edgeGuides(el, scale)...)
	}

	var guides []Guide
	for _, a := range edgeGuides(active, scale) {
		for _, t := range candidates {
			if a.Axis != t.Axis {
				continue
			}
			if math.Abs(a.Offset-t.Offset) < SnapThreshold {
				guides = append(guides, t)
			}
		}
	}
	return guides
}

// SnapGuidesFor computes drag guides for the element at index on the active
// slide.
func (s *Session) SnapGuidesFor(index int, canvasWidth, canvasHeight, scale float64) []Guide {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course := s.history.Present()
	slide, err := s.activeSlide(&course)
	if err != nil || index < 0 || index >= len(slide.Elements) {
		return nil
	}
	others := make([]domain.Element, 0, len(slide.Elements)-1)
	for i, el := range slide.Elements {
		if i != index {
			others = append(others, el)
		}
	}
	return SnapGuides(slide.Elements[index], others, canvasWidth, canvasHeight, scale)
}

// edgeGuides returns the element's left/center/right vertical lines and
// top/center/bottom horizontal lines in screen coordinates.
func edgeGuides(el domain.Element, scale float64) []Guide {
	x := el.Position.X * scale
	y := el.Position.Y * scale
	w := el.Size.Width * scale
	h := el.Size.Height * scale
	return []Guide{
		{Axis: "v", Offset: x},
		{Axis: "v", Offset: x + w/2},
		{Axis: "v", Offset: x + w},
		{Axis: "h", Offset: y},
		{Axis: "h", Offset: y + h/2},
		{Axis: "h", Offset: y + h},
	}
}
