package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchModelAlias(t *testing.T) {
	tests := []struct {
		name    string
		modelID string
		want    string
		ok      bool
	}{
		{name: "exact id", modelID: "llama3-8b-8192", want: "llama3-8b", ok: true},
		{name: "exact alias", modelID: "mixtral-8x7b", want: "mixtral-8x7b", ok: true},
		{name: "contained alias", modelID: "llama3-70b-preview", want: "llama3-70b", ok: true},
		{name: "unknown", modelID: "gemma-7b-it", ok: false},
		{name: "empty", modelID: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchModelAlias(DefaultModels, tt.modelID)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModelOptionsFromMapSorted(t *testing.T) {
	opts := ModelOptionsFromMap(map[string]string{
		"mixtral-8x7b": "mixtral-8x7b-32768",
		"gemma-7b":     "gemma-7b-it",
		"llama3-8b":    "llama3-8b-8192",
	})
	require.Len(t, opts, 3)
	assert.Equal(t, "gemma-7b", opts[0].Alias)
	assert.Equal(t, "llama3-8b", opts[1].Alias)
	assert.Equal(t, "mixtral-8x7b", opts[2].Alias)
}

func TestParseServerTime(t *testing.T) {
	got, ok := ParseServerTime("2024-05-01T10:20:30.123456")
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.May, got.Month())
	assert.Equal(t, 30, got.Second())

	_, ok = ParseServerTime("yesterday")
	assert.False(t, ok)
	_, ok = ParseServerTime("")
	assert.False(t, ok)
}

func TestMessageVisible(t *testing.T) {
	assert.True(t, Message{Role: RoleUser}.Visible())
	assert.True(t, Message{Role: RoleAssistant}.Visible())
	assert.False(t, Message{Role: RoleSystem}.Visible())
}

func TestSettingsValidate(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())

	s := DefaultSettings()
	s.Theme = "neon"
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.FontSize = "huge"
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.TypingSpeed = "instant"
	assert.Error(t, s.Validate())
}

func TestTypingSpeedScale(t *testing.T) {
	base := 10 * time.Millisecond
	assert.Equal(t, 20*time.Millisecond, TypingSlow.Scale(base))
	assert.Equal(t, 10*time.Millisecond, TypingMedium.Scale(base))
	assert.Equal(t, 5*time.Millisecond, TypingFast.Scale(base))
}

func TestCycles(t *testing.T) {
	assert.Equal(t, "dark", NextTheme("default"))
	assert.Equal(t, "default", NextTheme("sunset"))
	assert.Equal(t, "default", NextTheme("bogus"))
	assert.Equal(t, FontLarge, NextFontSize(FontMedium))
	assert.Equal(t, FontSmall, NextFontSize(FontLarge))
	assert.Equal(t, TypingFast, NextTypingSpeed(TypingMedium))
	assert.Equal(t, TypingSlow, NextTypingSpeed(TypingFast))
}
