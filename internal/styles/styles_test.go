package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pinned/internal/models"
)

func TestChatWidth(t *testing.T) {
	tests := []struct {
		font   models.FontSize
		window int
		want   int
	}{
		{models.FontMedium, 200, 100},
		{models.FontSmall, 200, 140},
		{models.FontLarge, 200, 80},
		{models.FontLarge, 60, 56},
		{models.FontMedium, 10, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChatWidth(tt.font, tt.window), "%s/%d", tt.font, tt.window)
	}
}

func TestSetTheme(t *testing.T) {
	defer SetTheme("default")

	for _, id := range models.Themes {
		if id == "default" {
			continue
		}
		_, ok := Themes[id]
		assert.True(t, ok, "palette for %s", id)
	}

	SetTheme("ocean")
	assert.Equal(t, "ocean", CurrentThemeID())
	assert.Equal(t, OceanTheme, CurrentTheme)

	SetTheme("forest")
	assert.Equal(t, ForestTheme.Primary, CurrentTheme.Primary)
}
