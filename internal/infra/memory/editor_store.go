package memory

import (
	"sync"

	"coursedeck-service/internal/domain"
	"coursedeck-service/internal/editor"
)

// EditorStore holds one live editing session per course. Sessions are
// in-process only: the undo/redo history lives with the instance that
// opened it.
type EditorStore struct {
	mu       sync.RWMutex
	sessions map[string]*editor.Session
}

func NewEditorStore() *EditorStore {
	return &EditorStore{sessions: make(map[string]*editor.Session)}
}

func (s *EditorStore) GetOrCreate(course domain.Course) *editor.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[course.ID]; ok {
		return session
	}
	session := editor.NewSession(course)
	s.sessions[course.ID] = session
	return session
}

func (s *EditorStore) Get(courseID string) (*editor.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[courseID]
	return session, ok
}

func (s *EditorStore) Delete(courseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, courseID)
}
