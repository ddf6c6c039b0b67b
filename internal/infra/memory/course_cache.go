package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"coursedeck-service/internal/domain"
)

// CourseLoader fetches course documents from a backing store (e.g., Postgres).
type CourseLoader interface {
	GetCourse(ctx context.Context, courseID string) (domain.Course, error)
}

// CourseCache caches course documents with TTL to avoid repeated DB hits
// during playback, where every slide change re-reads the course.
type CourseCache struct {
	loader CourseLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCourse
}

type cachedCourse struct {
	course    domain.Course
	expiresAt time.Time
}

func NewCourseCache(loader CourseLoader, ttl time.Duration) *CourseCache {
	return &CourseCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCourse),
	}
}

func (c *CourseCache) GetCourse(ctx context.Context, courseID string) (domain.Course, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[courseID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.course.Clone(), nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(courseID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[courseID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.course.Clone(), nil
		}
		c.mu.RUnlock()

		course, err := c.loader.GetCourse(ctx, courseID)
		if err != nil {
			return domain.Course{}, err
		}

		c.mu.Lock()
		c.cache[courseID] = cachedCourse{
			course:    course.Clone(),
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return course, nil
	})
	if err != nil {
		return domain.Course{}, err
	}
	return result.(domain.Course), nil
}

// Invalidate drops a cached document after a save or delete.
func (c *CourseCache) Invalidate(_ context.Context, courseID string) {
	c.mu.Lock()
	delete(c.cache, courseID)
	c.mu.Unlock()
}

func (c *CourseCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticCourseLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticCourseLoader struct {
	courses map[string]domain.Course
}

func NewStaticCourseLoader(courses map[string]domain.Course) *StaticCourseLoader {
	return &StaticCourseLoader{courses: courses}
}

func (l *StaticCourseLoader) GetCourse(_ context.Context, courseID string) (domain.Course, error) {
	if course, ok := l.courses[courseID]; ok {
		return course, nil
	}
	return domain.Course{}, domain.ErrCourseNotFound
}
