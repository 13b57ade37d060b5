package models

import (
	"sort"
	"strings"
	"time"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatSummary is one row of the chat list. Only ID and Title are guaranteed by the API.
type ChatSummary struct {
	ID           string `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	Model        string `json:"model,omitempty" yaml:"model,omitempty"`
	CreatedAt    string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	MessageCount int    `json:"message_count,omitempty" yaml:"message_count,omitempty"`
}

type ChatDetail struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Model     string    `json:"model" yaml:"model"`
	CreatedAt string    `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt string    `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Messages  []Message `json:"messages" yaml:"messages"`
}

type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// Visible reports whether a message belongs in the rendered transcript
func (m Message) Visible() bool {
	return m.Role == RoleUser || m.Role == RoleAssistant
}

// serverTimeLayouts covers the naive ISO timestamps the API emits
var serverTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseServerTime parses an API timestamp. Naive timestamps are read as local time.
func ParseServerTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range serverTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ModelOption is an entry of the model picker: the alias sent to /chat and the backend id.
type ModelOption struct {
	Alias string `json:"alias" yaml:"alias"`
	ID    string `json:"id" yaml:"id"`
}

// DefaultModels is used until /models answers
var DefaultModels = []ModelOption{
	{Alias: "deepseek-70b", ID: "deepseek-r1-distill-llama-70b"},
	{Alias: "llama3-3-70b", ID: "llama-3.3-70b-versatile"},
	{Alias: "llama3-70b", ID: "llama3-70b-8192"},
	{Alias: "llama3-8b", ID: "llama3-8b-8192"},
	{Alias: "mixtral-8x7b", ID: "mixtral-8x7b-32768"},
}

const DefaultModelAlias = "llama3-8b"

// ModelOptionsFromMap converts the /models payload into a stable, alias-sorted slice
func ModelOptionsFromMap(m map[string]string) []ModelOption {
	out := make([]ModelOption, 0, len(m))
	for alias, id := range m {
		out = append(out, ModelOption{Alias: alias, ID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}

// MatchModelAlias finds the picker alias for a backend model id. An exact alias or id
// match wins; otherwise the longest alias contained in the id is used.
func MatchModelAlias(options []ModelOption, modelID string) (string, bool) {
	if modelID == "" {
		return "", false
	}
	for _, opt := range options {
		if opt.Alias == modelID || opt.ID == modelID {
			return opt.Alias, true
		}
	}
	best := ""
	for _, opt := range options {
		if strings.Contains(modelID, opt.Alias) && len(opt.Alias) > len(best) {
			best = opt.Alias
		}
	}
	return best, best != ""
}

// NotificationKind selects toast styling
type NotificationKind int

const (
	NotifySuccess NotificationKind = iota
	NotifyError
	NotifyInfo
)

func (k NotificationKind) String() string {
	switch k {
	case NotifySuccess:
		return "success"
	case NotifyError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a transient, non-blocking message for the user
type Notification struct {
	Kind NotificationKind
	Text string
	At   time.Time
}

// SoundCue names a sound effect played on session events
type SoundCue int

const (
	CueSend SoundCue = iota
	CueReply
	CueError
)
