package core

type (
	// Logger is any structured logger.
	// args may hold errors, maps of extras and at most one Person.
	Logger interface {
		Debug(msg string, args ...interface{})
		Info(msg string, args ...interface{})
		Warn(msg string, args ...interface{})
		Error(msg string, args ...interface{})
		Fatal(msg string, args ...interface{})
	}

	// Person identifies who was browsing when something got logged.
	Person struct {
		ID       string
		Username string
		Email    string
	}
)
