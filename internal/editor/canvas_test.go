package editor

import (
	"math"
	"testing"

	"coursedeck-service/internal/domain"
)

func TestAddElementDefaults(t *testing.T) {
	s := NewSession(testCourse())

	if err := s.AddElement(domain.ElementText); err != nil {
		t.Fatalf("add text: %v", err)
	}
	if err := s.AddElement(domain.ElementImage); err != nil {
		t.Fatalf("add image: %v", err)
	}

	elements := s.Course().Lessons[0].Slides[0].Elements
	if len(elements) != 2 {
		t.Fatalf("elements = %d, want 2", len(elements))
	}

	text := elements[0]
	if text.Content != "New Text" || text.Size.Width != 250 || text.Size.Height != 100 || text.FontSize != 16 {
		t.Fatalf("text defaults wrong: %+v", text)
	}
	image := elements[1]
	if image.Content != "" || image.Size.Width != 320 || image.Size.Height != 180 {
		t.Fatalf("image defaults wrong: %+v", image)
	}
	if text.ZIndex != 1 || image.ZIndex != 2 {
		t.Fatalf("new elements must paint on top: z=%d,%d", text.ZIndex, image.ZIndex)
	}
	if s.ActiveElement != 1 {
		t.Fatalf("last added element should be selected, got %d", s.ActiveElement)
	}
}

func TestMoveAndResizeElement(t *testing.T) {
	s := NewSession(testCourse())
	if err := s.AddElement(domain.ElementText); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.MoveElement(0, domain.Position{X: 120, Y: 90}); err != nil {
		t.Fatalf("move: %v", err)
	}
	el := s.Course().Lessons[0].Slides[0].Elements[0]
	if el.Position.X != 120 || el.Position.Y != 90 {
		t.Fatalf("position = %+v", el.Position)
	}

	if err := s.ResizeElement(0, domain.Size{Width: 400, Height: 200}, domain.Position{X: 100, Y: 80}); err != nil {
		t.Fatalf("resize: %v", err)
	}
	el = s.Course().Lessons[0].Slides[0].Elements[0]
	if el.Size.Width != 400 || el.Position.X != 100 {
		t.Fatalf("resize not applied: %+v", el)
	}

	// Drag-stop at the same rectangle must not burn an undo step.
	if err := s.MoveElement(0, domain.Position{X: 100, Y: 80}); err != nil {
		t.Fatalf("no-op move: %v", err)
	}
	s.Undo()
	el = s.Course().Lessons[0].Slides[0].Elements[0]
	if el.Size.Width != 250 {
		t.Fatalf("undo should revert the resize, got width %v", el.Size.Width)
	}
}

func TestRotateElementSkipsHistory(t *testing.T) {
	s := NewSession(testCourse())
	if err := s.AddElement(domain.ElementText); err != nil {
		t.Fatalf("add: %v", err)
	}
	undoDepthBefore := s.CanUndo()

	for deg := 5.0; deg <= 45; deg += 5 {
		if err := s.RotateElement(0, deg); err != nil {
			t.Fatalf("rotate: %v", err)
		}
	}
	el := s.Course().Lessons[0].Slides[0].Elements[0]
	if el.Rotation != 45 {
		t.Fatalf("rotation = %v, want 45", el.Rotation)
	}

	// Continuous capture must not grow the undo stack beyond the add.
	if s.CanUndo() != undoDepthBefore {
		t.Fatalf("rotation should not push undo steps")
	}
	s.Undo()
	if got := len(s.Course().Lessons[0].Slides[0].Elements); got != 0 {
		t.Fatalf("undo should revert the element add, %d elements left", got)
	}
}

func TestRotationFromPointer(t *testing.T) {
	cases := []struct {
		px, py float64
		want   float64
	}{
		{100, 50, -180}, // pointer straight up
		{150, 100, -90}, // pointer to the right
		{100, 150, 0},   // pointer straight down
	}
	for _, tc := range cases {
		got := RotationFromPointer(tc.px, tc.py, 100, 100)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("rotation(%v,%v) = %v, want %v", tc.px, tc.py, got, tc.want)
		}
	}
}

func TestDeleteElementAdjustsSelection(t *testing.T) {
	s := NewSession(testCourse())
	for i := 0; i < 3; i++ {
		if err := s.AddElement(domain.ElementText); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	s.SelectElement(2)
	if err := s.DeleteElement(0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.ActiveElement != 1 {
		t.Fatalf("selection should shift down, got %d", s.ActiveElement)
	}

	if err := s.DeleteElement(1); err != nil {
		t.Fatalf("delete selected: %v", err)
	}
	if s.ActiveElement != -1 {
		t.Fatalf("deleting the selected element should clear selection, got %d", s.ActiveElement)
	}

	if err := s.DeleteElement(9); err != domain.ErrElementNotFound {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
}

func TestToggleElementVisibility(t *testing.T) {
	s := NewSession(testCourse())
	if err := s.AddElement(domain.ElementText); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.ToggleElementVisibility(0); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if s.Course().Lessons[0].Slides[0].Elements[0].IsVisible {
		t.Fatalf("element should be hidden")
	}
	if err := s.ToggleElementVisibility(0); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if !s.Course().Lessons[0].Slides[0].Elements[0].IsVisible {
		t.Fatalf("element should be visible again")
	}
}

func TestSetTextStyle(t *testing.T) {
	s := NewSession(testCourse())
	if err := s.AddElement(domain.ElementText); err != nil {
		t.Fatalf("add: %v", err)
	}

	size := 24.0
	bold := true
	if err := s.SetTextStyle(0, TextStylePatch{FontSize: &size, IsBold: &bold}); err != nil {
		t.Fatalf("style: %v", err)
	}
	el := s.Course().Lessons[0].Slides[0].Elements[0]
	if el.FontSize != 24 || !el.IsBold {
		t.Fatalf("style not applied: %+v", el)
	}
	if el.Color != "#000000" {
		t.Fatalf("untouched style fields must stay, got %q", el.Color)
	}
}

func TestLayersSortByDescendingZIndex(t *testing.T) {
	elements := []domain.Element{
		{Type: domain.ElementText, ZIndex: 1},
		{Type: domain.ElementImage, ZIndex: 3},
		{Type: domain.ElementVideo, ZIndex: 2},
	}
	layers := Layers(elements)
	if len(layers) != 3 {
		t.Fatalf("layers = %d, want 3", len(layers))
	}
	if layers[0].ZIndex != 3 || layers[1].ZIndex != 2 || layers[2].ZIndex != 1 {
		t.Fatalf("not sorted by zIndex: %+v", layers)
	}
	if layers[0].Position != 2 || layers[0].Type != domain.ElementImage {
		t.Fatalf("top layer should be the image at position 2, got %+v", layers[0])
	}
}
