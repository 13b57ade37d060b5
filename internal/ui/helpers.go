package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"pinned/internal/models"
	"pinned/internal/session"
	"pinned/internal/styles"
)

func WrappedLineCount(value string, width int) int {
	if width <= 0 {
		return 1
	}
	lines := strings.Split(value, "\n")
	if len(lines) == 0 {
		return 1
	}
	count := 0
	for _, line := range lines {
		w := runewidth.StringWidth(line)
		if w == 0 {
			count++
			continue
		}
		count += (w-1)/width + 1
	}
	return count
}

// TruncateRunes cuts s to max display cells, ending in an ellipsis when cut
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return runewidth.Truncate(s, max, "…")
}

func RelativeTime(t time.Time) string {
	d := time.Since(t)
	if d < 0 {
		d = -d
	}
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	}
	if d < 24*time.Hour {
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1 hr ago"
		}
		return fmt.Sprintf("%d hrs ago", hrs)
	}
	days := int(d.Hours() / 24)
	if days < 14 {
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
	weeks := days / 7
	if weeks == 1 {
		return "1 week ago"
	}
	return fmt.Sprintf("%d weeks ago", weeks)
}

// ChatTime renders a chat's last update for the list, or "" when the server sent none
func ChatTime(c models.ChatSummary) string {
	ts := c.UpdatedAt
	if ts == "" {
		ts = c.CreatedAt
	}
	t, ok := models.ParseServerTime(ts)
	if !ok {
		return ""
	}
	return RelativeTime(t)
}

func messageTime(at time.Time) string {
	if at.IsZero() {
		return ""
	}
	return " " + styles.TimeStyle.Render(at.Format("15:04"))
}

func FormatUserMessage(content string, width int, at time.Time, isFirst bool) string {
	label := styles.UserLabelStyle.Render("YOU") + messageTime(at)
	msg := styles.UserMsgStyle.Width(width - 4).Render(content)
	if isFirst {
		return fmt.Sprintf("\n%s\n%s", label, msg)
	}
	return fmt.Sprintf("%s\n%s", label, msg)
}

func FormatAIMessage(content string, at time.Time) string {
	label := styles.AiLabelStyle.Render("PINNED") + messageTime(at)
	msg := styles.AiMsgStyle.Render(content)
	return fmt.Sprintf("%s\n%s", label, msg)
}

func FormatErrorMessage(content string, at time.Time) string {
	label := styles.AiLabelStyle.Render("PINNED") + messageTime(at)
	return fmt.Sprintf("%s\n%s", label, styles.ErrorStyle.Render(content))
}

// ChatForExport rebuilds the open chat from the session state. Synthetic error
// replies are left out.
func ChatForExport(s session.State) models.ChatDetail {
	chat := models.ChatDetail{
		ID:    s.ActiveChatID,
		Title: s.ActiveTitle,
		Model: s.Model,
	}
	if sum, ok := s.Chat(s.ActiveChatID); ok {
		chat.CreatedAt = sum.CreatedAt
		chat.UpdatedAt = sum.UpdatedAt
		if sum.Model != "" {
			chat.Model = sum.Model
		}
	}
	for _, e := range s.Transcript {
		if e.Synthetic {
			continue
		}
		chat.Messages = append(chat.Messages, e.Message)
	}
	return chat
}
