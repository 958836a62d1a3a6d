package lms

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// AssignmentStatus is the submission state of an Assignment.
type AssignmentStatus string

const (
	StatusNotSubmitted AssignmentStatus = "not submitted"
	StatusSubmitted    AssignmentStatus = "submitted"
	StatusGraded       AssignmentStatus = "graded"
)

type (
	Course struct {
		ID          string `json:"id"`
		Code        string `json:"code"`
		Name        string `json:"name"`
		Color       string `json:"color,omitempty"`
		Section     string `json:"section,omitempty"`
		Term        string `json:"term,omitempty"`
		Description string `json:"description,omitempty"`
	}

	Assignment struct {
		ID          string           `json:"id"`
		CourseID    string           `json:"course_id"`
		Title       string           `json:"title"`
		DueDate     Time             `json:"due_date"`
		Points      *int             `json:"points,omitempty"`
		Status      AssignmentStatus `json:"status,omitempty"`
		Description string           `json:"description,omitempty"`
	}

	Event struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		StartTime   Time   `json:"start_time"`
		EndTime     Time   `json:"end_time"`
		Location    string `json:"location,omitempty"`
		CourseID    string `json:"course_id,omitempty"`
		Description string `json:"description,omitempty"`
	}

	Announcement struct {
		ID      string `json:"id"`
		Source  string `json:"source"`
		Title   string `json:"title"`
		Content string `json:"content"`
		Date    Time   `json:"date"`
	}

	DiscussionPost struct {
		ID           string `json:"id"`
		CourseID     string `json:"course_id"`
		Title        string `json:"title"`
		Content      string `json:"content"`
		Author       string `json:"author"`
		CreatedAt    Time   `json:"created_at"`
		RepliesCount int    `json:"replies_count"`
	}

	DiscussionReply struct {
		ID        string `json:"id"`
		PostID    string `json:"post_id"`
		Content   string `json:"content"`
		Author    string `json:"author"`
		CreatedAt Time   `json:"created_at"`
	}

	QuizQuestion struct {
		ID            string   `json:"id"`
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectOption int      `json:"correct_option"`
		Points        int      `json:"points"`
	}

	Quiz struct {
		ID               string         `json:"id"`
		CourseID         string         `json:"course_id"`
		Title            string         `json:"title"`
		Description      string         `json:"description,omitempty"`
		DueDate          Time           `json:"due_date"`
		TimeLimitMinutes *int           `json:"time_limit_minutes,omitempty"`
		Questions        []QuizQuestion `json:"questions"`
		TotalPoints      int            `json:"total_points"`
	}

	QuizSubmission struct {
		QuizID      string   `json:"quiz_id"`
		StudentID   string   `json:"student_id"`
		Answers     []int    `json:"answers"`
		Score       *float64 `json:"score,omitempty"`
		SubmittedAt Time     `json:"submitted_at"`
	}

	Dashboard struct {
		Courses  []Course        `json:"courses"`
		Upcoming []DashboardItem `json:"upcoming"`
	}
)

// PointsValue returns the point value of the assignment, 0 when it has none.
func (a Assignment) PointsValue() int {
	if a.Points == nil {
		return 0
	}
	return *a.Points
}

// TimeLimitSeconds returns the declared time limit in seconds, 0 when the quiz is untimed.
func (q Quiz) TimeLimitSeconds() int {
	if q.TimeLimitMinutes == nil || *q.TimeLimitMinutes <= 0 {
		return 0
	}
	return *q.TimeLimitMinutes * 60
}

// ItemKind discriminates the variants of a DashboardItem.
type ItemKind string

const (
	KindAssignment   ItemKind = "assignment"
	KindEvent        ItemKind = "event"
	KindAnnouncement ItemKind = "announcement"
)

var errUnknownItemKind = errors.New("unknown dashboard item type")

// DashboardItem is one of Assignment, Event or Announcement, tagged by Kind.
// Exactly the field matching Kind is set.
type DashboardItem struct {
	Kind         ItemKind
	Assignment   *Assignment
	Event        *Event
	Announcement *Announcement
}

func AssignmentItem(a Assignment) DashboardItem {
	return DashboardItem{Kind: KindAssignment, Assignment: &a}
}

func EventItem(e Event) DashboardItem {
	return DashboardItem{Kind: KindEvent, Event: &e}
}

func AnnouncementItem(a Announcement) DashboardItem {
	return DashboardItem{Kind: KindAnnouncement, Announcement: &a}
}

// When returns the timestamp the item is filed under: start time for events,
// due date for assignments and the announcement date otherwise.
func (it DashboardItem) When() Time {
	switch it.Kind {
	case KindEvent:
		if it.Event != nil {
			return it.Event.StartTime
		}
	case KindAssignment:
		if it.Assignment != nil {
			return it.Assignment.DueDate
		}
	case KindAnnouncement:
		if it.Announcement != nil {
			return it.Announcement.Date
		}
	}
	return Time{}
}

func (it DashboardItem) ID() string {
	switch {
	case it.Event != nil:
		return it.Event.ID
	case it.Assignment != nil:
		return it.Assignment.ID
	case it.Announcement != nil:
		return it.Announcement.ID
	}
	return ""
}

func (it DashboardItem) Title() string {
	switch {
	case it.Event != nil:
		return it.Event.Title
	case it.Assignment != nil:
		return it.Assignment.Title
	case it.Announcement != nil:
		return it.Announcement.Title
	}
	return ""
}

func (it DashboardItem) MarshalJSON() ([]byte, error) {
	switch it.Kind {
	case KindAssignment:
		return json.Marshal(struct {
			Type ItemKind `json:"type"`
			*Assignment
		}{it.Kind, it.Assignment})
	case KindEvent:
		return json.Marshal(struct {
			Type ItemKind `json:"type"`
			*Event
		}{it.Kind, it.Event})
	case KindAnnouncement:
		return json.Marshal(struct {
			Type ItemKind `json:"type"`
			*Announcement
		}{it.Kind, it.Announcement})
	}
	return nil, errors.Wrapf(errUnknownItemKind, "%q", it.Kind)
}

func (it *DashboardItem) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type ItemKind `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return errors.Wrap(err, "decoding dashboard item type")
	}

	*it = DashboardItem{Kind: tag.Type}
	switch tag.Type {
	case KindAssignment:
		it.Assignment = new(Assignment)
		return errors.Wrap(json.Unmarshal(data, it.Assignment), "decoding assignment item")
	case KindEvent:
		it.Event = new(Event)
		return errors.Wrap(json.Unmarshal(data, it.Event), "decoding event item")
	case KindAnnouncement:
		it.Announcement = new(Announcement)
		return errors.Wrap(json.Unmarshal(data, it.Announcement), "decoding announcement item")
	}
	return errors.Wrapf(errUnknownItemKind, "%q", tag.Type)
}
