package lmsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/nicolascodet/canvas-remake/core"
	"github.com/nicolascodet/canvas-remake/core/lms"
)

const defaultTimeout = 10 * time.Second

type Options struct {
	BaseURL string
	Timeout time.Duration

	// SessionCookie, when set, is sent verbatim as the Cookie header of every request ("name=value").
	SessionCookie string

	// HTTPClient overrides the client built from Timeout. Its Jar is left untouched.
	HTTPClient *http.Client
}

// Client talks to the LMS REST API. It has no retries and no caching: one operation, one request.
type Client struct {
	baseURL string
	headers map[string]string
	rest    *rest.Client
}

func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing API base URL")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("API base URL %q must be absolute", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "creating cookie jar")
		}
		httpClient = &http.Client{Timeout: timeout, Jar: jar}
	}

	headers := map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	}
	if opts.SessionCookie != "" {
		headers["Cookie"] = opts.SessionCookie
	}

	return &Client{
		baseURL: base.String(),
		headers: headers,
		rest:    &rest.Client{HTTPClient: httpClient},
	}, nil
}

func NewClientFromConfig(conf *core.Config) (*Client, error) {
	return NewClient(Options{
		BaseURL:       conf.API.BaseURL,
		Timeout:       conf.API.Timeout,
		SessionCookie: conf.API.SessionCookie,
	})
}

func (c *Client) BaseURL() string { return c.baseURL }

// do sends one request; in, when non-nil, is the JSON body and out receives the decoded response.
func (c *Client) do(ctx context.Context, method rest.Method, path string, in, out interface{}) error {
	req := rest.Request{
		Method:  method,
		BaseURL: c.baseURL + path,
		Headers: c.headers,
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "encoding %s %s", method, path)
		}
		req.Body = body
	}

	hreq, err := rest.BuildRequestObject(req)
	if err != nil {
		return errors.Wrapf(err, "building %s %s", method, path)
	}
	hres, err := c.rest.MakeRequest(hreq.WithContext(ctx))
	if err != nil {
		return &RequestError{Method: string(method), Path: path, Err: err}
	}
	res, err := rest.BuildResponse(hres)
	if err != nil {
		return &RequestError{Method: string(method), Path: path, Err: err}
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return &RequestError{Method: string(method), Path: path, StatusCode: res.StatusCode, Body: res.Body}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(res.Body), out); err != nil {
		return errors.Wrapf(err, "decoding %s %s", method, path)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, rest.Get, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	return c.do(ctx, rest.Post, path, in, out)
}

func seg(s string) string { return url.PathEscape(s) }

func (c *Client) Courses(ctx context.Context) ([]lms.Course, error) {
	courses := make([]lms.Course, 0)
	if err := c.get(ctx, "/courses", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *Client) Course(ctx context.Context, id string) (lms.Course, error) {
	var course lms.Course
	err := c.get(ctx, "/courses/"+seg(id), &course)
	return course, err
}

func (c *Client) Assignments(ctx context.Context) ([]lms.Assignment, error) {
	assignments := make([]lms.Assignment, 0)
	if err := c.get(ctx, "/assignments", &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (c *Client) Assignment(ctx context.Context, id string) (lms.Assignment, error) {
	var assignment lms.Assignment
	err := c.get(ctx, "/assignments/"+seg(id), &assignment)
	return assignment, err
}

func (c *Client) Events(ctx context.Context) ([]lms.Event, error) {
	events := make([]lms.Event, 0)
	if err := c.get(ctx, "/events", &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) Announcements(ctx context.Context) ([]lms.Announcement, error) {
	announcements := make([]lms.Announcement, 0)
	if err := c.get(ctx, "/announcements", &announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}

// Dashboard returns the courses and the upcoming feed as laid out by the server.
func (c *Client) Dashboard(ctx context.Context) (lms.Dashboard, error) {
	var dash lms.Dashboard
	if err := c.get(ctx, "/dashboard", &dash); err != nil {
		return lms.Dashboard{}, err
	}
	if dash.Courses == nil {
		dash.Courses = []lms.Course{}
	}
	if dash.Upcoming == nil {
		dash.Upcoming = []lms.DashboardItem{}
	}
	return dash, nil
}

func (c *Client) CourseDiscussions(ctx context.Context, courseID string) ([]lms.DiscussionPost, error) {
	posts := make([]lms.DiscussionPost, 0)
	if err := c.get(ctx, "/courses/"+seg(courseID)+"/discussions", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

type newDiscussion struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (c *Client) CreateDiscussion(ctx context.Context, courseID, title, content string) (lms.DiscussionPost, error) {
	var post lms.DiscussionPost
	err := c.post(ctx, "/courses/"+seg(courseID)+"/discussions", newDiscussion{Title: title, Content: content}, &post)
	return post, err
}

func (c *Client) DiscussionReplies(ctx context.Context, postID string) ([]lms.DiscussionReply, error) {
	replies := make([]lms.DiscussionReply, 0)
	if err := c.get(ctx, "/discussions/"+seg(postID)+"/replies", &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

type newReply struct {
	Content string `json:"content"`
}

func (c *Client) CreateReply(ctx context.Context, postID, content string) (lms.DiscussionReply, error) {
	var reply lms.DiscussionReply
	err := c.post(ctx, "/discussions/"+seg(postID)+"/replies", newReply{Content: content}, &reply)
	return reply, err
}

func (c *Client) CourseQuizzes(ctx context.Context, courseID string) ([]lms.Quiz, error) {
	quizzes := make([]lms.Quiz, 0)
	if err := c.get(ctx, "/courses/"+seg(courseID)+"/quizzes", &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (c *Client) Quiz(ctx context.Context, id string) (lms.Quiz, error) {
	var quiz lms.Quiz
	err := c.get(ctx, "/quizzes/"+seg(id), &quiz)
	return quiz, err
}

type quizAnswers struct {
	Answers []int `json:"answers"`
}

// SubmitQuiz sends the whole answer vector, unanswered slots included.
func (c *Client) SubmitQuiz(ctx context.Context, quizID string, answers []int) (lms.QuizSubmission, error) {
	if answers == nil {
		answers = []int{}
	}
	var sub lms.QuizSubmission
	err := c.post(ctx, "/quizzes/"+seg(quizID)+"/submit", quizAnswers{Answers: answers}, &sub)
	return sub, err
}
