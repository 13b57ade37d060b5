package models

import (
	"fmt"
	"time"
)

type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

func (f FontSize) Valid() bool {
	switch f {
	case FontSmall, FontMedium, FontLarge:
		return true
	}
	return false
}

type TypingSpeed string

const (
	TypingSlow   TypingSpeed = "slow"
	TypingMedium TypingSpeed = "medium"
	TypingFast   TypingSpeed = "fast"
)

func (s TypingSpeed) Valid() bool {
	switch s {
	case TypingSlow, TypingMedium, TypingFast:
		return true
	}
	return false
}

// Multiplier scales the per-character animation delay
func (s TypingSpeed) Multiplier() float64 {
	switch s {
	case TypingSlow:
		return 2
	case TypingFast:
		return 0.5
	default:
		return 1
	}
}

// Scale applies the multiplier to a base delay
func (s TypingSpeed) Scale(base time.Duration) time.Duration {
	return time.Duration(float64(base) * s.Multiplier())
}

// Themes lists the palette ids in picker order
var Themes = []string{"default", "dark", "forest", "ocean", "sunset"}

// Settings are presentation preferences kept in the local store
type Settings struct {
	Theme        string
	FontSize     FontSize
	TypingSpeed  TypingSpeed
	AutoScroll   bool
	SoundEffects bool
}

func DefaultSettings() Settings {
	return Settings{
		Theme:        "default",
		FontSize:     FontMedium,
		TypingSpeed:  TypingMedium,
		AutoScroll:   true,
		SoundEffects: false,
	}
}

// Validate rejects values no picker can produce
func (s Settings) Validate() error {
	if !ValidTheme(s.Theme) {
		return fmt.Errorf("unknown theme %q", s.Theme)
	}
	if !s.FontSize.Valid() {
		return fmt.Errorf("unknown font size %q", s.FontSize)
	}
	if !s.TypingSpeed.Valid() {
		return fmt.Errorf("unknown typing speed %q", s.TypingSpeed)
	}
	return nil
}

func ValidTheme(id string) bool {
	for _, t := range Themes {
		if t == id {
			return true
		}
	}
	return false
}

// NextTheme cycles through Themes
func NextTheme(id string) string {
	for i, t := range Themes {
		if t == id {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// NextFontSize cycles small -> medium -> large
func NextFontSize(f FontSize) FontSize {
	switch f {
	case FontSmall:
		return FontMedium
	case FontMedium:
		return FontLarge
	default:
		return FontSmall
	}
}

// NextTypingSpeed cycles slow -> medium -> fast
func NextTypingSpeed(s TypingSpeed) TypingSpeed {
	switch s {
	case TypingSlow:
		return TypingMedium
	case TypingMedium:
		return TypingFast
	default:
		return TypingSlow
	}
}
