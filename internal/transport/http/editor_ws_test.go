package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"coursedeck-service/internal/app"
	"coursedeck-service/internal/domain"
	"coursedeck-service/internal/infra/memory"
)

func editableCourse() domain.Course {
	return domain.Course{
		ID:          "course-1",
		Title:       "Cardiology",
		Description: "The heart and its vessels.",
		Level:       domain.LevelBeginner,
		Specialty:   "Medicine",
		Status:      domain.StatusActive,
		Lessons: []domain.Lesson{
			{
				ID:    "l1",
				Title: "Lesson 1",
				Slides: []domain.Slide{{
					ID:              "s1",
					Title:           "Slide 1",
					BackgroundColor: "#FFFFFF",
				}},
			},
		},
	}
}

func newEditorServer(t *testing.T) (*httptest.Server, *memory.CourseStore) {
	t.Helper()
	store := memory.NewCourseStore()
	if _, err := store.SaveCourse(context.Background(), editableCourse()); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	courseService := app.NewCourseService(store, nil, nil)
	handler := NewEditorWSHandler(courseService, memory.NewEditorStore(), nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/editor", handler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, store
}

func dialEditor(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws/editor?courseId=course-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(conn *websocket.Conn, t *testing.T, expect string) map[string]any {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (payload %v)", expect, msg.Type, msg.Payload)
	}
	return msg.Payload
}

func TestEditorWebSocketEditFlow(t *testing.T) {
	server, _ := newEditorServer(t)
	conn := dialEditor(t, server)

	// Initial snapshot arrives on connect.
	snapshot := readMessage(conn, t, "course")
	course := snapshot["course"].(map[string]any)
	if course["title"] != "Cardiology" {
		t.Fatalf("course title = %v", course["title"])
	}
	if snapshot["canUndo"] != false {
		t.Fatalf("fresh session should have no undo history")
	}

	// Add a lesson and expect the snapshot to grow.
	if err := conn.WriteJSON(map[string]any{"type": "addLesson"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	snapshot = readMessage(conn, t, "course")
	course = snapshot["course"].(map[string]any)
	lessons := course["lessons"].([]any)
	if len(lessons) != 2 {
		t.Fatalf("lessons = %d, want 2", len(lessons))
	}
	if snapshot["canUndo"] != true {
		t.Fatalf("edit should enable undo")
	}

	// Undo restores the original document.
	if err := conn.WriteJSON(map[string]any{"type": "undo"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	snapshot = readMessage(conn, t, "course")
	course = snapshot["course"].(map[string]any)
	if got := len(course["lessons"].([]any)); got != 1 {
		t.Fatalf("after undo lessons = %d, want 1", got)
	}
}

func TestEditorWebSocketSavePersists(t *testing.T) {
	server, store := newEditorServer(t)
	conn := dialEditor(t, server)
	readMessage(conn, t, "course")

	if err := conn.WriteJSON(map[string]any{
		"type":    "setMetadata",
		"payload": map[string]any{"Title": "Cardiology II"},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readMessage(conn, t, "course")

	if err := conn.WriteJSON(map[string]any{"type": "save"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readMessage(conn, t, "saved")

	saved, err := store.GetCourse(context.Background(), "course-1")
	if err != nil {
		t.Fatalf("get saved: %v", err)
	}
	if saved.Title != "Cardiology II" {
		t.Fatalf("save did not persist, title = %q", saved.Title)
	}
}

func TestEditorWebSocketRejectsUnknownCourse(t *testing.T) {
	server, _ := newEditorServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws/editor?courseId=missing"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail for unknown course")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %+v", resp)
	}
}

func TestEditorWebSocketReportsFailedOperations(t *testing.T) {
	server, _ := newEditorServer(t)
	conn := dialEditor(t, server)
	readMessage(conn, t, "course")

	// Deleting a lesson that does not exist must come back as an error, not
	// a silent unchanged snapshot.
	if err := conn.WriteJSON(map[string]any{
		"type":    "deleteLesson",
		"payload": map[string]any{"index": 5},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	payload := readMessage(conn, t, "error")
	if payload["message"] != "lesson not found" {
		t.Fatalf("error payload = %v", payload)
	}

	// Quiz edits without a quiz on the active slide fail the same way.
	if err := conn.WriteJSON(map[string]any{"type": "addAnswer"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	payload = readMessage(conn, t, "error")
	if payload["message"] != "quiz not found" {
		t.Fatalf("error payload = %v", payload)
	}

	// The session still works after a failed gesture.
	if err := conn.WriteJSON(map[string]any{"type": "addLesson"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readMessage(conn, t, "course")
}

func TestEditorWebSocketErrorPayload(t *testing.T) {
	server, _ := newEditorServer(t)
	conn := dialEditor(t, server)
	readMessage(conn, t, "course")

	if err := conn.WriteJSON(map[string]any{"type": "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	payload := readMessage(conn, t, "error")
	if payload["message"] != "unsupported message type" {
		t.Fatalf("error payload = %v", payload)
	}
}
