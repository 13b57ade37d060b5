package notify

import (
	"sync/atomic"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"pinned/internal/models"
)

type beepFunc func(freq float64, duration int) error

type notifyFunc func(title, message string, icon any) error

var notifier notifyFunc = beeep.Notify

// SetNotifier replaces the desktop notifier, for tests
func SetNotifier(fn func(title, message string, icon any) error) {
	notifier = fn
}

// ResetNotifier restores beeep.Notify
func ResetNotifier() {
	notifier = beeep.Notify
}

// Desktop sends a desktop notification
func Desktop(title, message string) error {
	// empty icon, beeep picks the platform default
	return notifier(title, message, "")
}

type tone struct {
	freq     float64
	duration int
}

var cueTones = map[models.SoundCue]tone{
	models.CueSend:  {freq: 660, duration: 40},
	models.CueReply: {freq: 880, duration: 60},
	models.CueError: {freq: 220, duration: 150},
}

// Sound plays short beeps for session cues when enabled
type Sound struct {
	enabled atomic.Bool
	beep    beepFunc
	logger  *zap.Logger
}

func NewSound(enabled bool, logger *zap.Logger) *Sound {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sound{beep: beeep.Beep, logger: logger}
	s.enabled.Store(enabled)
	return s
}

func (s *Sound) SetEnabled(on bool) {
	s.enabled.Store(on)
}

func (s *Sound) Enabled() bool {
	return s.enabled.Load()
}

// Play beeps for cue. Failures are logged and otherwise ignored.
func (s *Sound) Play(cue models.SoundCue) {
	if !s.enabled.Load() {
		return
	}
	t, ok := cueTones[cue]
	if !ok {
		return
	}
	if err := s.beep(t.freq, t.duration); err != nil {
		s.logger.Debug("beep failed", zap.Int("cue", int(cue)), zap.Error(err))
	}
}
