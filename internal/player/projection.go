package player

import "coursedeck-service/internal/domain"

// Projector maps the fixed logical authoring canvas onto a live viewport.
// It is purely a read-time transform and never mutates the content model.
type Projector struct {
	// BaseWidth is the logical authoring canvas width; zero means the
	// platform default.
	BaseWidth float64
}

func (p Projector) baseWidth() float64 {
	if p.BaseWidth > 0 {
		return p.BaseWidth
	}
	return domain.BaseCanvasWidth
}

// ScaleFor computes the render scale for a viewport width. With two panes
// sharing the surface (quiz overlay beside a final-exam slide) each pane gets
// half the width.
func (p Projector) ScaleFor(viewportWidth float64, panes int) float64 {
	if panes > 1 {
		viewportWidth /= 2
	}
	return viewportWidth / p.baseWidth()
}

// ProjectedElement is an element in viewport pixels, ready to render.
type ProjectedElement struct {
	ID       string             `json:"id"`
	Type     domain.ElementKind `json:"type"`
	Content  string             `json:"content"`
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
	Width    float64            `json:"width"`
	Height   float64            `json:"height"`
	Rotation float64            `json:"rotation"`
	ZIndex   int                `json:"zIndex"`
	FontSize float64            `json:"fontSize,omitempty"`
	Color    string             `json:"color,omitempty"`
	IsBold   bool               `json:"isBold,omitempty"`
	IsItalic bool               `json:"isItalic,omitempty"`
}

// Project converts one element into viewport coordinates. Position, size and
// font size scale; rotation is scale-invariant and passes through.
func (p Projector) Project(el domain.Element, scale float64) ProjectedElement {
	return ProjectedElement{
		ID:       el.ID,
		Type:     el.Type,
		Content:  el.Content,
		X:        el.Position.X * scale,
		Y:        el.Position.Y * scale,
		Width:    el.Size.Width * scale,
		Height:   el.Size.Height * scale,
		Rotation: el.Rotation,
		ZIndex:   el.ZIndex,
		FontSize: el.FontSize * scale,
		Color:    el.Color,
		IsBold:   el.IsBold,
		IsItalic: el.IsItalic,
	}
}

// ProjectSlide projects every visible element of a slide, skipping hidden
// ones entirely.
func (p Projector) ProjectSlide(slide domain.Slide, scale float64) []ProjectedElement {
	out := make([]ProjectedElement, 0, len(slide.Elements))
	for _, el := range slide.Elements {
		if !el.IsVisible {
			continue
		}
		out = append(out, p.Project(el, scale))
	}
	return out
}
