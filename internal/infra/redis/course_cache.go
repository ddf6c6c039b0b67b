package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"coursedeck-service/internal/domain"
)

// CourseLoader fetches course documents from a backing store (e.g., Postgres).
type CourseLoader interface {
	GetCourse(ctx context.Context, courseID string) (domain.Course, error)
}

// CourseCache caches whole course documents in Redis as JSON and falls back
// to a loader on cache miss. Documents are stored as:
// SET course:{courseID}:doc {json}
type CourseCache struct {
	client *redis.Client
	loader CourseLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCourseCache(client *redis.Client, loader CourseLoader, ttl time.Duration) *CourseCache {
	return &CourseCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CourseCache) GetCourse(ctx context.Context, courseID string) (domain.Course, error) {
	key := c.docKey(courseID)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var course domain.Course
		if err := json.Unmarshal(raw, &course); err == nil {
			return course, nil
		}
	}

	result, err, _ := c.sf.Do(courseID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var course domain.Course
			if err := json.Unmarshal(raw, &course); err == nil {
				return course, nil
			}
		}

		course, err := c.loader.GetCourse(ctx, courseID)
		if err != nil {
			return domain.Course{}, err
		}

		if raw, err := json.Marshal(course); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return course, nil
	})
	if err != nil {
		return domain.Course{}, err
	}
	return result.(domain.Course), nil
}

// Invalidate drops the cached document after a save or delete.
func (c *CourseCache) Invalidate(ctx context.Context, courseID string) {
	_ = c.client.Del(ctx, c.docKey(courseID)).Err()
}

func (c *CourseCache) docKey(courseID string) string {
	return "course:" + courseID + ":doc"
}

func (c *CourseCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
