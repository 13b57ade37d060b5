package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pinned/internal/models"
	"pinned/internal/session"
)

func TestWrappedLineCount(t *testing.T) {
	tests := []struct {
		value string
		width int
		want  int
	}{
		{"", 10, 1},
		{"short", 10, 1},
		{"exactly ten", 11, 1},
		{"0123456789abc", 10, 2},
		{"a\nb\n", 10, 3},
		{"日本語日本語", 4, 3},
		{"anything", 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WrappedLineCount(tt.value, tt.width), "%q/%d", tt.value, tt.width)
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "hello", TruncateRunes("hello", 5))
	assert.Equal(t, "hel…", TruncateRunes("hello", 4))
	assert.Equal(t, "…", TruncateRunes("hello", 1))
	assert.Equal(t, "", TruncateRunes("hello", 0))
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "just now", RelativeTime(now.Add(-10*time.Second)))
	assert.Equal(t, "5 mins ago", RelativeTime(now.Add(-5*time.Minute)))
	assert.Equal(t, "1 hr ago", RelativeTime(now.Add(-61*time.Minute)))
	assert.Equal(t, "3 days ago", RelativeTime(now.Add(-72*time.Hour)))
	assert.Equal(t, "3 weeks ago", RelativeTime(now.Add(-21*24*time.Hour)))
}

func TestChatTimeWithoutTimestamps(t *testing.T) {
	assert.Empty(t, ChatTime(models.ChatSummary{ID: "a", Title: "Foo"}))
	assert.Empty(t, ChatTime(models.ChatSummary{ID: "a", UpdatedAt: "yesterday"}))

	ts := time.Now().Add(-2 * time.Minute).Format("2006-01-02T15:04:05")
	assert.Equal(t, "2 mins ago", ChatTime(models.ChatSummary{ID: "a", CreatedAt: ts}))
}

func TestChatForExportSkipsSyntheticReplies(t *testing.T) {
	state := session.State{
		ActiveChatID: "a",
		ActiveTitle:  "Foo",
		Model:        "llama3-8b",
		ChatList:     []models.ChatSummary{{ID: "a", Title: "Foo", Model: "llama3-8b-8192", CreatedAt: "2024-05-01T10:00:00"}},
		Transcript: []session.Entry{
			{Message: models.Message{Role: models.RoleUser, Content: "hi"}},
			{Message: models.Message{Role: models.RoleAssistant, Content: "Sorry"}, Synthetic: true},
			{Message: models.Message{Role: models.RoleUser, Content: "again"}},
			{Message: models.Message{Role: models.RoleAssistant, Content: "hello"}},
		},
	}

	chat := ChatForExport(state)

	assert.Equal(t, "a", chat.ID)
	assert.Equal(t, "llama3-8b-8192", chat.Model)
	assert.Equal(t, "2024-05-01T10:00:00", chat.CreatedAt)
	assert.Equal(t, []models.Message{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleUser, Content: "again"},
		{Role: models.RoleAssistant, Content: "hello"},
	}, chat.Messages)
}
