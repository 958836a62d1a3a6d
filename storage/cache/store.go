package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nicolascodet/canvas-remake/core/lms"
)

// API is what the store reads through to. *lmsapi.Client implements it.
type API interface {
	Courses(ctx context.Context) ([]lms.Course, error)
	Course(ctx context.Context, id string) (lms.Course, error)
	Assignments(ctx context.Context) ([]lms.Assignment, error)
	Assignment(ctx context.Context, id string) (lms.Assignment, error)
	Events(ctx context.Context) ([]lms.Event, error)
	Announcements(ctx context.Context) ([]lms.Announcement, error)
	Dashboard(ctx context.Context) (lms.Dashboard, error)
	CourseDiscussions(ctx context.Context, courseID string) ([]lms.DiscussionPost, error)
	CreateDiscussion(ctx context.Context, courseID, title, content string) (lms.DiscussionPost, error)
	DiscussionReplies(ctx context.Context, postID string) ([]lms.DiscussionReply, error)
	CreateReply(ctx context.Context, postID, content string) (lms.DiscussionReply, error)
	CourseQuizzes(ctx context.Context, courseID string) ([]lms.Quiz, error)
	Quiz(ctx context.Context, id string) (lms.Quiz, error)
	SubmitQuiz(ctx context.Context, quizID string, answers []int) (lms.QuizSubmission, error)
}

// cached resources
const (
	ResCourses       = "courses"
	ResCourse        = "course"
	ResAssignments   = "assignments"
	ResAssignment    = "assignment"
	ResEvents        = "events"
	ResAnnouncements = "announcements"
	ResDashboard     = "dashboard"
	ResDiscussions   = "discussions"
	ResReplies       = "replies"
	ResQuizzes       = "quizzes"
	ResQuiz          = "quiz"
)

// nowFunc is mockable in tests.
var nowFunc = time.Now

// Key builds the cache key of resource, scoped by id when given.
func Key(resource string, id ...string) string {
	if len(id) == 0 || id[0] == "" {
		return resource
	}
	return resource + "/" + id[0]
}

func clone[T any](s []T) []T {
	return append(make([]T, 0, len(s)), s...)
}

type entry struct {
	value   interface{}
	expires time.Time
}

// Store is the read-through data access layer in front of the API.
// Concurrent reads of the same key share one request; successful results are kept for ttl.
// Errors are never cached. A ttl <= 0 disables caching but keeps de-duplication.
//
// Cached values are shared: slices handed out are fresh copies but their elements must be treated as read-only.
type Store struct {
	api   API
	ttl   time.Duration
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry
	gen     uint64 // bumped on every invalidation; fetches started before it are not stored
}

func NewStore(api API, ttl time.Duration) *Store {
	return &Store{
		api:     api,
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

func (s *Store) cached(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || !nowFunc().Before(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *Store) put(key string, value interface{}, gen uint64) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.entries[key] = entry{value: value, expires: nowFunc().Add(s.ttl)}
}

// load returns the cached value of key or fetches it, joining any identical fetch in flight.
// The shared fetch is detached from the cancellation of whichever caller started it;
// each caller stops waiting when its own ctx is done.
func (s *Store) load(ctx context.Context, key string, fetch func(context.Context) (interface{}, error)) (interface{}, error) {
	if v, ok := s.cached(key); ok {
		return v, nil
	}
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		if v, ok := s.cached(key); ok {
			return v, nil
		}
		gen := s.generation()
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		s.put(key, v, gen)
		return v, nil
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the cached value of (resource, id).
func (s *Store) Invalidate(resource string, id ...string) {
	key := Key(resource, id...)
	s.mu.Lock()
	s.gen++
	delete(s.entries, key)
	s.mu.Unlock()
	s.group.Forget(key)
}

// InvalidateResource drops every cached value of resource, whatever its id.
func (s *Store) InvalidateResource(resource string) {
	prefix := resource + "/"
	s.mu.Lock()
	s.gen++
	for key := range s.entries {
		if key == resource || strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			s.group.Forget(key)
		}
	}
	s.mu.Unlock()
}

func (s *Store) InvalidateAll() {
	s.mu.Lock()
	s.gen++
	for key := range s.entries {
		s.group.Forget(key)
	}
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	now := nowFunc()
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if now.Before(e.expires) {
			n++
		}
	}
	return n
}

func (s *Store) Courses(ctx context.Context) ([]lms.Course, error) {
	v, err := s.load(ctx, Key(ResCourses), func(ctx context.Context) (interface{}, error) {
		return s.api.Courses(ctx)
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]lms.Course)), nil
}

func (s *Store) Course(ctx context.Context, id string) (lms.Course, error) {
	v, err := s.load(ctx, Key(ResCourse, id), func(ctx context.Context) (interface{}, error) {
		return s.api.Course(ctx, id)
	})
	if err != nil {
		return lms.Course{}, err
	}
	return v.(lms.Course), nil
}

func (s *Store) Assignments(ctx context.Context) ([]lms.Assignment, error) {
	v, err := s.load(ctx, Key(ResAssignments), func(ctx context.Context) (interface{}, error) {
		return s.api.Assignments(ctx)
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]lms.Assignment)), nil
}

// CourseAssignments returns a fresh list of the assignments of courseID.
func (s *Store) CourseAssignments(ctx context.Context, courseID string) ([]lms.Assignment, error) {
	all, err := s.Assignments(ctx)
	if err != nil {
		return nil, err
	}
	return lms.AssignmentsForCourse(all, courseID), nil
}

func (s *Store) Assignment(ctx context.Context, id string) (lms.Assignment, error) {
	v, err := s.load(ctx, Key(ResAssignment, id), func(ctx context.Context) (interface{}, error) {
		return s.api.Assignment(ctx, id)
	})
	if err != nil {
		return lms.Assignment{}, err
	}
	return v.(lms.Assignment), nil
}

func (s *Store) Events(ctx context.Context) ([]lms.Event, error) {
	v, err := s.load(ctx, Key(ResEvents), func(ctx context.Context) (interface{}, error) {
		return s.api.Events(ctx)
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]lms.Event)), nil
}

func (s *Store) Announcements(ctx context.Context) ([]lms.Announcement, error) {
	v, err := s.load(ctx, Key(ResAnnouncements), func(ctx context.Context) (interface{}, error) {
		return s.api.Announcements(ctx)
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]lms.Announcement)), nil
}

func (s *Store) Dashboard(ctx context.Context) (lms.Dashboard, error) {
	v, err := s.load(ctx, Key(ResDashboard), func(ctx context.Context) (interface{}, error) {
		return s.api.Dashboard(ctx)
	})
	if err != nil {
		return lms.Dashboard{}, err
	}
	dash := v.(lms.Dashboard)
	return lms.Dashboard{
		Courses:  clone(dash.Courses),
		Upcoming: clone(dash.Upcoming),
	}, nil
}

func (s *Store) CourseDiscussions(ctx context.Context, courseID string) ([]lms.DiscussionPost, error) {
	v, err := s.load(ctx, Key(ResDiscussions, courseID), func(ctx context.Context) (interface{}, error) {
		return s.api.CourseDiscussions(ctx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]lms.DiscussionPost)), nil
}

func (s *Store) DiscussionReplies(ctx context.Context, postID string) ([]lms.DiscussionReply, error) {
	v, err := s.load(ctx, Key(ResReplies, postID), func(ctx context.Context) (interface{}, error) {
		return s.api.DiscussionReplies(ctx, postID)
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]lms.DiscussionReply)), nil
}

func (s *Store) CourseQuizzes(ctx context.Context, courseID string) ([]lms.Quiz, error) {
	v, err := s.load(ctx, Key(ResQuizzes, courseID), func(ctx context.Context) (interface{}, error) {
		return s.api.CourseQuizzes(ctx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]lms.Quiz)), nil
}

func (s *Store) Quiz(ctx context.Context, id string) (lms.Quiz, error) {
	v, err := s.load(ctx, Key(ResQuiz, id), func(ctx context.Context) (interface{}, error) {
		return s.api.Quiz(ctx, id)
	})
	if err != nil {
		return lms.Quiz{}, err
	}
	return v.(lms.Quiz), nil
}

// CreateDiscussion posts through to the API and drops the course's cached discussion list.
func (s *Store) CreateDiscussion(ctx context.Context, courseID, title, content string) (lms.DiscussionPost, error) {
	post, err := s.api.CreateDiscussion(ctx, courseID, title, content)
	if err != nil {
		return lms.DiscussionPost{}, err
	}
	s.Invalidate(ResDiscussions, courseID)
	return post, nil
}

// CreateReply posts through to the API. Reply counts live on the posts, so every discussion list goes too.
func (s *Store) CreateReply(ctx context.Context, postID, content string) (lms.DiscussionReply, error) {
	reply, err := s.api.CreateReply(ctx, postID, content)
	if err != nil {
		return lms.DiscussionReply{}, err
	}
	s.Invalidate(ResReplies, postID)
	s.InvalidateResource(ResDiscussions)
	return reply, nil
}

func (s *Store) SubmitQuiz(ctx context.Context, quizID string, answers []int) (lms.QuizSubmission, error) {
	sub, err := s.api.SubmitQuiz(ctx, quizID, answers)
	if err != nil {
		return lms.QuizSubmission{}, err
	}
	s.Invalidate(ResQuiz, quizID)
	return sub, nil
}
