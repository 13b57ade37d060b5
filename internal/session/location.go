package session

import (
	"net/url"
	"strings"
)

// LocationParam is the query parameter that carries the active chat id
const LocationParam = "chat"

// Location is the navigational state: which chat a link or relaunch resumes.
type Location struct {
	ChatID string
}

// String renders "?chat=<id>", or "" for the new chat view
func (l Location) String() string {
	if l.ChatID == "" {
		return ""
	}
	q := url.Values{}
	q.Set(LocationParam, l.ChatID)
	return "?" + q.Encode()
}

// ParseLocation accepts a bare chat id, "?chat=<id>", or a full URL carrying the parameter.
func ParseLocation(s string) Location {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}
	}
	if !strings.ContainsAny(s, "?=/") {
		return Location{ChatID: s}
	}
	raw := s
	if i := strings.Index(s, "?"); i >= 0 {
		raw = s[i+1:]
	} else if !strings.Contains(s, "=") {
		return Location{}
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return Location{}
	}
	return Location{ChatID: q.Get(LocationParam)}
}

// LocationStore remembers the last location between runs
type LocationStore interface {
	SaveLocation(Location) error
}
