package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"coursedeck-service/internal/domain"
	"coursedeck-service/internal/editor"
)

// EditorStore is a Redis-aware editor session store.
// Notes:
//   - It still keeps a local in-memory map of sessions because undo/redo
//     history is an in-process structure.
//   - Redis marks which courses have a live editor, so other instances can
//     warn before opening a second editor on the same course.
type EditorStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*editor.Session
}

func NewEditorStore(client *redis.Client, ttl time.Duration) *EditorStore {
	return &EditorStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*editor.Session),
	}
}

func (s *EditorStore) GetOrCreate(course domain.Course) *editor.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[course.ID]; ok {
		return session
	}
	session := editor.NewSession(course)
	s.sessions[course.ID] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(course.ID), "1", s.ttl).Err()
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
	_ = s.client.Del(context.Background(), s.key(courseID)).Err()
}

// BeingEdited reports whether any instance holds an editor for the course.
func (s *EditorStore) BeingEdited(ctx context.Context, courseID string) bool {
	n, err := s.client.Exists(ctx, s.key(courseID)).Result()
	return err == nil && n > 0
}

func (s *EditorStore) key(courseID string) string {
	return "course:editing:" + courseID
}
