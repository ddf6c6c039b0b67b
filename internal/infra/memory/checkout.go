package memory

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"coursedeck-service/internal/domain"
)

// HostedCheckout builds hosted checkout URLs and remembers the pending
// session so the completion callback can be verified. It stands in for a
// real payment provider.
type HostedCheckout struct {
	baseURL string

	mu      sync.Mutex
	pending map[string]pendingCheckout
}

type pendingCheckout struct {
	userID   string
	courseID string
}

func NewHostedCheckout(baseURL string) *HostedCheckout {
	return &HostedCheckout{
		baseURL: baseURL,
		pending: make(map[string]pendingCheckout),
	}
}

func (c *HostedCheckout) CreateCheckout(_ context.Context, userID string, course domain.Course) (string, error) {
	sessionID := domain.NewID()
	c.mu.Lock()
	c.pending[sessionID] = pendingCheckout{userID: userID, courseID: course.ID}
	c.mu.Unlock()

	q := url.Values{}
	q.Set("session", sessionID)
	q.Set("courseId", course.ID)
	q.Set("amount", fmt.Sprintf("%.2f", course.Price))
	return c.baseURL + "?" + q.Encode(), nil
}

// Confirm validates a completed checkout session and returns what it was for.
func (c *HostedCheckout) Confirm(sessionID string) (userID, courseID string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[sessionID]
	if !ok {
		return "", "", false
	}
	delete(c.pending, sessionID)
	return p.userID, p.courseID, true
}
