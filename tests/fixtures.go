package testutil

import (
	"time"

	"github.com/nicolascodet/canvas-remake/core/lms"
)

// Fixtures is the data served by a FakeAPI.
type Fixtures struct {
	Courses       []lms.Course
	Assignments   []lms.Assignment
	Events        []lms.Event
	Announcements []lms.Announcement
	Discussions   []lms.DiscussionPost
	Replies       []lms.DiscussionReply
	Quizzes       []lms.Quiz
}

// FixtureNow is the instant fixture timestamps are relative to: Monday, March 3 2025 at noon,
// in lms.Location() at the time NewFixtures is called.
func FixtureNow() time.Time {
	return time.Date(2025, time.March, 3, 12, 0, 0, 0, lms.Location())
}

func intPtr(i int) *int { return &i }

func at(d time.Duration) lms.Time { return lms.NewTime(FixtureNow().Add(d)) }

const (
	hour = time.Hour
	day  = 24 * time.Hour
)

// NewFixtures returns a fresh copy of the sample data.
func NewFixtures() Fixtures {
	return Fixtures{
		Courses: []lms.Course{
			{ID: "MEME-420", Code: "MEME-420", Name: "Advanced Memeology", Color: "#4682b4", Section: "Section 69", Term: "Spring 2025",
				Description: "A comprehensive study of internet culture, from Doge to modern TikTok trends."},
			{ID: "NAPS-303", Code: "NAPS-303", Name: "Strategic Napping Techniques", Color: "#32cd32", Section: "Section ZZZ", Term: "Spring 2025",
				Description: "Master the art of sleeping through meetings while appearing attentive."},
			{ID: "PROCR-101", Code: "PROCR-101", Name: "Professional Netflix Binging", Color: "#6a5acd", Section: "Section 404", Term: "Spring 2025",
				Description: "Optimize your streaming schedule while maintaining the illusion of productivity."},
			{ID: "PIZZA-505", Code: "PIZZA-505", Name: "Advanced Pizza Studies", Color: "#dc143c", Section: "Section NOM", Term: "Spring 2025",
				Description: "The pineapple debate and optimal crust thickness."},
		},
		Assignments: []lms.Assignment{
			{ID: "hw1", CourseID: "PROCR-101", Title: "Binge Watch Entire Series of The Office", DueDate: at(day), Points: intPtr(69), Status: lms.StatusNotSubmitted},
			{ID: "hw2", CourseID: "MEME-420", Title: "Create a Viral Cat Meme Portfolio", DueDate: at(4 * hour), Points: intPtr(42), Status: lms.StatusGraded},
			{ID: "hw3", CourseID: "MEME-420", Title: "Translate Doge Into Latin", DueDate: at(3 * day), Points: intPtr(30), Status: lms.StatusNotSubmitted},
			{ID: "hw4", CourseID: "NAPS-303", Title: "Perfect the Art of Looking Awake in Zoom Meetings", DueDate: at(2 * day), Points: intPtr(50), Status: lms.StatusNotSubmitted},
			{ID: "hw5", CourseID: "MEME-420", Title: "Reflection: My Favourite Reaction GIF", DueDate: at(-2 * day), Status: lms.StatusGraded},
			{ID: "hw6", CourseID: "PIZZA-505", Title: "Debate: Pineapple on Pizza Ethics", DueDate: at(6 * hour), Points: intPtr(75), Status: lms.StatusSubmitted},
		},
		Events: []lms.Event{
			{ID: "event1", Title: "Emergency Meme Review", StartTime: at(day + 2*hour), EndTime: at(day + 4*hour), Location: "Virtual Meme Lab", CourseID: "MEME-420"},
			{ID: "event2", Title: "Advanced Napping Workshop", StartTime: at(2 * day), EndTime: at(2*day + 3*hour), Location: "Comfy Couch Auditorium", CourseID: "NAPS-303"},
			{ID: "event3", Title: "Pizza vs Pineapple Debate", StartTime: at(3 * day), EndTime: at(3*day + 2*hour), Location: "Virtual Pizza Kitchen", CourseID: "PIZZA-505"},
			{ID: "event4", Title: "Netflix Marathon Training", StartTime: at(4 * day), EndTime: at(4*day + 8*hour), Location: "Your Favorite Couch", CourseID: "PROCR-101"},
		},
		Announcements: []lms.Announcement{
			{ID: "ann1", Source: "DEPARTMENT OF MEMEOLOGY", Title: "URGENT: New Meme Format Just Dropped", Content: "Study the latest viral cat meme.", Date: at(-2 * hour)},
			{ID: "ann2", Source: "PROCRASTINATION STUDIES", Title: "Deadline Extension Workshop", Content: "Crafting the perfect 'my dog ate my homework' email.", Date: at(-hour)},
			{ID: "ann3", Source: "CRAFT BEER STUDIES", Title: "Beer Tasting Lab Rescheduled", Content: "Moved to tomorrow.", Date: at(-30 * time.Minute)},
		},
		Discussions: []lms.DiscussionPost{
			{ID: "disc1", CourseID: "MEME-420", Title: "The Philosophy of Doge", Content: "Much discuss, very academic.", Author: "Meme Scholar", CreatedAt: at(-2 * day), RepliesCount: 2},
			{ID: "disc2", CourseID: "MEME-420", Title: "Evolution of SpongeBob Memes", Content: "From 'Imagination' to 'Mocking SpongeBob'.", Author: "Bikini Bottom Researcher", CreatedAt: at(-day), RepliesCount: 1},
			{ID: "disc3", CourseID: "MEME-420", Title: "Cat Memes: A Scientific Classification", Content: "A new taxonomy for cat memes.", Author: "Feline Memeologist", CreatedAt: at(-5 * hour)},
			{ID: "disc4", CourseID: "NAPS-303", Title: "Best Positions for Zoom Naps", Content: "Share your tried and tested positions.", Author: "Professional Napper", CreatedAt: at(-day), RepliesCount: 1},
		},
		Replies: []lms.DiscussionReply{
			{ID: "reply1", PostID: "disc1", Content: "Wow, such insight, very academic!", Author: "Doge Fan", CreatedAt: at(-day)},
			{ID: "reply2", PostID: "disc1", Content: "Doge's longevity lies in its versatility.", Author: "Meme Historian", CreatedAt: at(-12 * hour)},
			{ID: "reply3", PostID: "disc2", Content: "The meta-commentary era was fascinating.", Author: "Meme Anthropologist", CreatedAt: at(-6 * hour)},
			{ID: "reply4", PostID: "disc4", Content: "Thoughtful nodding while sleeping never fails.", Author: "Sleep Expert", CreatedAt: at(-6 * hour)},
		},
		Quizzes: []lms.Quiz{
			{
				ID: "quiz1", CourseID: "MEME-420", Title: "Meme History 101", Description: "Test your knowledge of classic memes",
				DueDate: at(7 * day), TimeLimitMinutes: intPtr(30), TotalPoints: 15,
				Questions: []lms.QuizQuestion{
					{ID: "q1", Question: "What year did the 'Doge' meme first appear?", Options: []string{"2010", "2013", "2015", "2017"}, CorrectOption: 1, Points: 5},
					{ID: "q2", Question: "Which platform popularized 'Rickrolling'?", Options: []string{"4chan", "Reddit", "YouTube", "MySpace"}, CorrectOption: 0, Points: 5},
					{ID: "q3", Question: "Who was the original 'Grumpy Cat'?", Options: []string{"Tardar Sauce", "Colonel Meow", "Lil Bub", "Maru"}, CorrectOption: 0, Points: 5},
				},
			},
			{
				ID: "quiz2", CourseID: "MEME-420", Title: "Reaction GIF Pop Quiz",
				DueDate: at(5 * day), TotalPoints: 10,
				Questions: []lms.QuizQuestion{
					{ID: "q1", Question: "Which GIF means 'I told you so'?", Options: []string{"Kermit sipping tea", "Dancing baby"}, CorrectOption: 0, Points: 5},
					{ID: "q2", Question: "Which cat plays the keyboard?", Options: []string{"Fatso", "Nyan Cat"}, CorrectOption: 0, Points: 5},
				},
			},
			{
				ID: "quiz3", CourseID: "NAPS-303", Title: "Power Nap Fundamentals",
				DueDate: at(3 * day), TimeLimitMinutes: intPtr(10), TotalPoints: 20,
				Questions: []lms.QuizQuestion{
					{ID: "q1", Question: "Optimal power nap length?", Options: []string{"5 minutes", "20 minutes", "3 hours"}, CorrectOption: 1, Points: 20},
				},
			},
		},
	}
}
