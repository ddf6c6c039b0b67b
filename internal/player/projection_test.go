package player

import (
	"testing"

	"coursedeck-service/internal/domain"
)

func TestScaleFor(t *testing.T) {
	p := Projector{}

	if got := p.ScaleFor(480, 1); got != 0.5 {
		t.Fatalf("scale = %v, want 0.5", got)
	}
	if got := p.ScaleFor(960, 1); got != 1.0 {
		t.Fatalf("scale = %v, want 1.0", got)
	}
	// Two panes split the viewport.
	if got := p.ScaleFor(960, 2); got != 0.5 {
		t.Fatalf("two-pane scale = %v, want 0.5", got)
	}
}

func TestScaleForCustomBaseWidth(t *testing.T) {
	p := Projector{BaseWidth: 1200}
	if got := p.ScaleFor(600, 1); got != 0.5 {
		t.Fatalf("scale = %v, want 0.5", got)
	}
}

func TestProjectElement(t *testing.T) {
	p := Projector{}
	el := domain.Element{
		ID:       "e1",
		Type:     domain.ElementText,
		Content:  "hello",
		Position: domain.Position{X: 100, Y: 60},
		Size:     domain.Size{Width: 200, Height: 80},
		Rotation: 30,
		ZIndex:   2,
		FontSize: 16,
		Color:    "#112233",
	}

	got := p.Project(el, 0.5)
	if got.X != 50 || got.Y != 30 || got.Width != 100 || got.Height != 40 {
		t.Fatalf("geometry wrong: %+v", got)
	}
	if got.FontSize != 8 {
		t.Fatalf("fontSize should scale, got %v", got.FontSize)
	}
	if got.Rotation != 30 {
		t.Fatalf("rotation must pass through, got %v", got.Rotation)
	}
	if got.ZIndex != 2 || got.Color != "#112233" || got.Content != "hello" {
		t.Fatalf("passthrough fields wrong: %+v", got)
	}
}

func TestProjectSlideSkipsHiddenElements(t *testing.T) {
	p := Projector{}
	slide := domain.Slide{
		Elements: []domain.Element{
			{ID: "visible", IsVisible: true},
			{ID: "hidden", IsVisible: false},
		},
	}
	out := p.ProjectSlide(slide, 1.0)
	if len(out) != 1 || out[0].ID != "visible" {
		t.Fatalf("projected = %+v, want only the visible element", out)
	}
}
