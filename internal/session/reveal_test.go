package session_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinned/internal/api"
	"pinned/internal/models"
	"pinned/internal/session"
)

func lastEntry(t *testing.T, s session.State) session.Entry {
	t.Helper()
	require.NotEmpty(t, s.Transcript)
	return s.Transcript[len(s.Transcript)-1]
}

func TestReplyIsRevealedGradually(t *testing.T) {
	f := newFixture(t, session.WithTypingDelay(5*time.Millisecond))
	f.srv.SetReply(func(string) string { return strings.Repeat("ab", 20) })

	require.NoError(t, f.ctrl.SendMessage(context.Background(), "hello", ""))
	assert.Less(t, len(lastEntry(t, f.ctrl.Snapshot()).Text()), 40)

	require.Eventually(t, func() bool {
		return !lastEntry(t, f.ctrl.Snapshot()).Typing()
	}, 2*time.Second, 5*time.Millisecond)
	e := lastEntry(t, f.ctrl.Snapshot())
	assert.Equal(t, e.Content, e.Text())
}

func TestNextSendFinishesRunningReveal(t *testing.T) {
	f := newFixture(t, session.WithTypingDelay(time.Hour))
	long := strings.Repeat("x", 500)
	f.srv.SetReply(func(string) string { return long })

	require.NoError(t, f.ctrl.SendMessage(context.Background(), "one", ""))
	assert.True(t, lastEntry(t, f.ctrl.Snapshot()).Typing())

	f.srv.SetReply(func(string) string { return "short" })
	f.ctrl.SetTypingDelay(0)
	require.NoError(t, f.ctrl.SendMessage(context.Background(), "two", ""))

	s := f.ctrl.Snapshot()
	require.Len(t, s.Transcript, 4)
	assert.False(t, s.Transcript[1].Typing())
	assert.Equal(t, long, s.Transcript[1].Text())
}

func TestNavigationStopsReveal(t *testing.T) {
	f := newFixture(t, session.WithTypingDelay(time.Hour))
	f.srv.SetReply(func(string) string { return "a reply that is still typing" })

	require.NoError(t, f.ctrl.SendMessage(context.Background(), "hello", ""))
	require.True(t, lastEntry(t, f.ctrl.Snapshot()).Typing())

	f.ctrl.StartNewChat()
	s := f.ctrl.Snapshot()
	assert.Empty(t, s.Transcript)
	assert.Equal(t, session.ViewWelcome, s.View)
}

func TestCallerCancelFinishesReveal(t *testing.T) {
	f := newFixture(t, session.WithTypingDelay(time.Hour))
	f.srv.SetReply(func(string) string { return "partial" })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.ctrl.SendMessage(ctx, "hello", ""))
	cancel()

	require.Eventually(t, func() bool {
		return !lastEntry(t, f.ctrl.Snapshot()).Typing()
	}, time.Second, time.Millisecond)
}

func TestStartNewChatCancelsPendingSend(t *testing.T) {
	f := newFixture(t)
	release := f.srv.HoldSends()
	t.Cleanup(release)

	done := make(chan error, 1)
	go func() { done <- f.ctrl.SendMessage(context.Background(), "hello", "") }()
	require.Eventually(t, func() bool { return f.srv.Calls("POST /chat") == 1 }, time.Second, time.Millisecond)

	f.ctrl.StartNewChat()
	err := <-done
	require.Error(t, err)
	assert.True(t, api.IsCanceled(err))

	s := f.ctrl.Snapshot()
	assert.False(t, s.AwaitingReply)
	assert.Empty(t, s.Transcript)
	assert.Equal(t, session.ViewWelcome, s.View)
	assert.NotContains(t, f.rec.texts(), "Failed to get response from AI")

	// the next send goes through normally
	release()
	require.NoError(t, f.ctrl.SendMessage(context.Background(), "again", ""))
	assert.Len(t, f.ctrl.Snapshot().Transcript, 2)
}

func TestEntryText(t *testing.T) {
	e := session.Entry{Message: models.Message{Role: models.RoleAssistant, Content: "héllo"}}
	assert.Equal(t, "", e.Text())
	assert.True(t, e.Typing())

	e.Revealed = 2
	assert.Equal(t, "hé", e.Text())

	e.Revealed = 5
	assert.Equal(t, "héllo", e.Text())
	assert.False(t, e.Typing())
}

func TestLocation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"?chat=abc", "abc"},
		{"chat=abc", "abc"},
		{"https://pinnedthoughts.onrender.com/?chat=abc&x=1", "abc"},
		{"https://pinnedthoughts.onrender.com/", ""},
		{"?other=1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, session.ParseLocation(tt.in).ChatID)
		})
	}

	assert.Equal(t, "", session.Location{}.String())
	assert.Equal(t, "?chat=abc", session.Location{ChatID: "abc"}.String())
	assert.Equal(t, "a b", session.ParseLocation(session.Location{ChatID: "a b"}.String()).ChatID)
}

func TestViewStateString(t *testing.T) {
	assert.Equal(t, "welcome", session.ViewWelcome.String())
	assert.Equal(t, "loading", session.ViewChatLoading.String())
	assert.Equal(t, "ready", session.ViewChatReady.String())
}
