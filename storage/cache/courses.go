package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nicolascodet/canvas-remake/core"
	"github.com/nicolascodet/canvas-remake/core/lms"
)

// Courses is the process-wide list of the student's courses.
// It is loaded once at startup and replaced on every successful Refresh; subscribers get each new list.
type Courses struct {
	store  *Store
	logger core.Logger

	mu        sync.RWMutex
	list      []lms.Course
	loaded    bool
	updatedAt time.Time
	subs      map[int]chan []lms.Course
	nextSub   int
}

func NewCourses(store *Store, logger core.Logger) *Courses {
	return &Courses{
		store:  store,
		logger: logger,
		subs:   make(map[int]chan []lms.Course),
	}
}

// Init performs the first load.
func (c *Courses) Init(ctx context.Context) error {
	_, err := c.Refresh(ctx)
	return err
}

// Refresh refetches the list from the API, bypassing the store's cache.
// On failure the last good list is kept and the error returned.
func (c *Courses) Refresh(ctx context.Context) ([]lms.Course, error) {
	c.store.Invalidate(ResCourses)
	list, err := c.store.Courses(ctx)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("refreshing courses: %v", err), err)
		return c.List(), err
	}

	c.mu.Lock()
	c.list = list
	c.loaded = true
	c.updatedAt = nowFunc()
	for _, ch := range c.subs {
		publish(ch, clone(list))
	}
	c.mu.Unlock()
	return clone(list), nil
}

// publish replaces whatever the subscriber has not consumed yet with list.
func publish(ch chan []lms.Course, list []lms.Course) {
	select {
	case ch <- list:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- list:
	default:
	}
}

// List returns the last good list, empty before the first successful load.
func (c *Courses) List() []lms.Course {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.list)
}

func (c *Courses) Find(id string) (lms.Course, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lms.FindCourse(c.list, id)
}

func (c *Courses) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Courses) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// Subscribe returns a channel receiving every refreshed list. Only the latest list is buffered.
// cancel closes the channel.
func (c *Courses) Subscribe() (updates <-chan []lms.Course, cancel func()) {
	ch := make(chan []lms.Course, 1)
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}
