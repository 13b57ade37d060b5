package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pinned/internal/models"
)

func TestToastsExpire(t *testing.T) {
	q := NewToasts(3)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	q.Push(models.Notification{Kind: models.NotifySuccess, Text: "Conversation deleted", At: at})

	active := q.Active(at.Add(time.Second))
	require.Len(t, active, 1)
	assert.Equal(t, "Conversation deleted", active[0].Text)
	assert.Equal(t, at.Add(ToastLifetime), active[0].Expires)

	assert.Empty(t, q.Active(at.Add(ToastLifetime)))
}

func TestToastsKeepNewest(t *testing.T) {
	q := NewToasts(2)
	at := time.Now()
	for _, text := range []string{"one", "two", "three"} {
		q.Push(models.Notification{Text: text, At: at})
	}
	active := q.Active(at)
	require.Len(t, active, 2)
	assert.Equal(t, "two", active[0].Text)
	assert.Equal(t, "three", active[1].Text)
}

func TestToastsDismiss(t *testing.T) {
	q := NewToasts(0)
	a := q.Push(models.Notification{Text: "a"})
	q.Push(models.Notification{Text: "b"})
	q.Dismiss(a.ID)

	active := q.Active(time.Now())
	require.Len(t, active, 1)
	assert.Equal(t, "b", active[0].Text)
}

func TestSoundPlay(t *testing.T) {
	var played []float64
	s := NewSound(false, nil)
	s.beep = func(freq float64, duration int) error {
		played = append(played, freq)
		return nil
	}

	s.Play(models.CueSend)
	assert.Empty(t, played)

	s.SetEnabled(true)
	assert.True(t, s.Enabled())
	s.Play(models.CueSend)
	s.Play(models.CueReply)
	s.Play(models.CueError)
	assert.Equal(t, []float64{660, 880, 220}, played)
}

func TestSoundFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewSound(true, zap.New(core))
	s.beep = func(float64, int) error { return errors.New("no audio device") }

	s.Play(models.CueError)
	assert.Equal(t, 1, logs.FilterMessage("beep failed").Len())
}

func TestDesktop(t *testing.T) {
	var gotTitle, gotMsg string
	SetNotifier(func(title, message string, icon any) error {
		gotTitle, gotMsg = title, message
		return nil
	})
	defer ResetNotifier()

	require.NoError(t, Desktop("pinned", "New reply in Foo"))
	assert.Equal(t, "pinned", gotTitle)
	assert.Equal(t, "New reply in Foo", gotMsg)
}
