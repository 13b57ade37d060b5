package session

import (
	"time"
	"unicode/utf8"

	"pinned/internal/models"
)

// ViewState selects what the conversation area shows
type ViewState int

const (
	ViewWelcome ViewState = iota
	ViewChatLoading
	ViewChatReady
)

func (v ViewState) String() string {
	switch v {
	case ViewWelcome:
		return "welcome"
	case ViewChatLoading:
		return "loading"
	case ViewChatReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Entry is one rendered transcript line. Revealed counts the runes shown so far by
// the typing animation.
type Entry struct {
	models.Message
	Revealed  int
	Synthetic bool
	At        time.Time
}

func newEntry(role models.Role, content string, at time.Time) Entry {
	return Entry{
		Message:  models.Message{Role: role, Content: content},
		Revealed: utf8.RuneCountInString(content),
		At:       at,
	}
}

// Text returns the part of the content revealed so far
func (e Entry) Text() string {
	if e.Revealed <= 0 {
		return ""
	}
	n := 0
	for i := range e.Content {
		if n == e.Revealed {
			return e.Content[:i]
		}
		n++
	}
	return e.Content
}

// Typing reports whether the animation is still revealing this entry
func (e Entry) Typing() bool {
	return e.Revealed < utf8.RuneCountInString(e.Content)
}

func (e *Entry) revealAll() {
	e.Revealed = utf8.RuneCountInString(e.Content)
}

// State is the session's view state. Snapshot returns a deep copy.
type State struct {
	ActiveChatID    string
	ActiveTitle     string
	ChatList        []models.ChatSummary
	AwaitingReply   bool
	PendingDeleteID string
	PendingEditID   string
	View            ViewState
	Transcript      []Entry
	Model           string
	Models          []models.ModelOption
}

// HasActiveChat is false on the welcome / new chat view
func (s State) HasActiveChat() bool {
	return s.ActiveChatID != ""
}

// Chat looks up a cached chat summary
func (s State) Chat(id string) (models.ChatSummary, bool) {
	for _, c := range s.ChatList {
		if c.ID == id {
			return c, true
		}
	}
	return models.ChatSummary{}, false
}

// LastReply returns the newest assistant message that is not a synthetic error
func (s State) LastReply() (string, bool) {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		e := s.Transcript[i]
		if e.Role == models.RoleAssistant && !e.Synthetic {
			return e.Content, true
		}
	}
	return "", false
}

func (s State) clone() State {
	out := s
	out.ChatList = append([]models.ChatSummary(nil), s.ChatList...)
	out.Transcript = append([]Entry(nil), s.Transcript...)
	out.Models = append([]models.ModelOption(nil), s.Models...)
	return out
}

// EventKind distinguishes state changes from notifications
type EventKind int

const (
	EventStateChanged EventKind = iota
	EventNotification
)

type Event struct {
	Kind         EventKind
	Notification models.Notification
}
