package echoportal

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/nicolascodet/canvas-remake/core/lms"
)

type discussionsData struct {
	page
	Posts    []lms.DiscussionPost
	Selected *lms.DiscussionPost
	Replies  []lms.DiscussionReply

	// the forms, redisplayed with the user's input when a submission fails
	NewPost     postForm
	PostErrors  map[string]string
	NewReply    replyForm
	ReplyErrors map[string]string
	FormError   string
}

func discussionsURL(courseID, postID string) string {
	u := "/courses/" + url.PathEscape(courseID) + "/discussions"
	if postID != "" {
		u += "?post=" + url.QueryEscape(postID)
	}
	return u
}

// discussionsPage loads the course's posts and, when selected names one of them, its replies.
func (s *Server) discussionsPage(ctx echo.Context, course lms.Course, selected string) discussionsData {
	data := discussionsData{page: s.coursePage(course, "discussions")}
	rctx := ctx.Request().Context()

	posts, err := s.Store.CourseDiscussions(rctx, course.ID)
	if err != nil {
		s.logFetch(ctx, "loading discussions of "+course.ID, err)
		data.Notice = tryAgainLater
		posts = []lms.DiscussionPost{}
	}
	data.Posts = posts

	for i := range posts {
		if posts[i].ID == selected {
			data.Selected = &posts[i]
			break
		}
	}
	if data.Selected == nil {
		return data
	}

	replies, err := s.Store.DiscussionReplies(rctx, selected)
	if err != nil {
		s.logFetch(ctx, "loading replies of "+selected, err)
		data.Notice = tryAgainLater
		replies = []lms.DiscussionReply{}
	}
	data.Replies = replies
	return data
}

func (s *Server) discussions(ctx echo.Context) error {
	course, err := s.course(ctx)
	if err != nil {
		return err
	}
	return ctx.Render(http.StatusOK, "discussions", s.discussionsPage(ctx, course, ctx.QueryParam("post")))
}

func (s *Server) createDiscussion(ctx echo.Context) error {
	course, err := s.course(ctx)
	if err != nil {
		return err
	}
	var form postForm
	if err := bind(ctx, &form); err != nil {
		return err
	}

	if err := s.validate(form); err != nil {
		data := s.discussionsPage(ctx, course, "")
		data.NewPost = form
		data.PostErrors = fieldErrors(err)
		return ctx.Render(http.StatusBadRequest, "discussions", data)
	}

	post, err := s.Store.CreateDiscussion(ctx.Request().Context(), course.ID, form.Title, form.Content)
	if err != nil {
		s.logFetch(ctx, "creating discussion in "+course.ID, err)
		data := s.discussionsPage(ctx, course, "")
		data.NewPost = form
		data.FormError = "Your post could not be published. " + tryAgainLater
		return ctx.Render(http.StatusBadGateway, "discussions", data)
	}
	return ctx.Redirect(http.StatusSeeOther, discussionsURL(course.ID, post.ID))
}

func (s *Server) createReply(ctx echo.Context) error {
	course, err := s.course(ctx)
	if err != nil {
		return err
	}
	postID := ctx.Param("postID")
	var form replyForm
	if err := bind(ctx, &form); err != nil {
		return err
	}

	if err := s.validate(form); err != nil {
		data := s.discussionsPage(ctx, course, postID)
		data.NewReply = form
		data.ReplyErrors = fieldErrors(err)
		return ctx.Render(http.StatusBadRequest, "discussions", data)
	}

	if _, err := s.Store.CreateReply(ctx.Request().Context(), postID, form.Content); err != nil {
		s.logFetch(ctx, "replying to "+postID, err)
		data := s.discussionsPage(ctx, course, postID)
		data.NewReply = form
		data.FormError = "Your reply could not be posted. " + tryAgainLater
		return ctx.Render(http.StatusBadGateway, "discussions", data)
	}
	return ctx.Redirect(http.StatusSeeOther, discussionsURL(course.ID, postID))
}
