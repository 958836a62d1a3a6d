package lms

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	locMu sync.RWMutex
	loc   = time.Local

	// layouts accepted from the API, most specific first.
	// the LMS backend emits zone-less ISO timestamps.
	zonedLayouts = []string{time.RFC3339Nano, time.RFC3339}
	localLayouts = []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}
)

// SetLocation sets the location zone-less timestamps are interpreted in.
func SetLocation(l *time.Location) {
	if l == nil {
		return
	}
	locMu.Lock()
	loc = l
	locMu.Unlock()
}

// Location returns the location zone-less timestamps are interpreted in.
func Location() *time.Location {
	locMu.RLock()
	defer locMu.RUnlock()
	return loc
}

// Time is a timestamp as exchanged with the API.
type Time struct {
	time.Time
}

func NewTime(t time.Time) Time { return Time{t} }

// ParseTime parses any of the timestamp layouts the API emits.
func ParseTime(s string) (Time, error) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Time{t}, nil
		}
	}
	l := Location()
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, l); err == nil {
			return Time{t}, nil
		}
	}
	return Time{}, errors.Errorf("unsupported timestamp %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "decoding timestamp")
	}
	if s == "" {
		*t = Time{}
		return nil
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
