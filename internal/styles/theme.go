package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines a complete color scheme for the application
type Theme struct {
	// Core colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Text colors
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// UI element colors
	Border    lipgloss.Color
	Selection lipgloss.Color
	OnAccent  lipgloss.Color

	// Markdown style name for glamour
	Glamour string
}

// DarkTheme is the dark mode color scheme
var DarkTheme = Theme{
	Primary:   lipgloss.Color("#818CF8"), // Indigo 400
	Secondary: lipgloss.Color("#22D3EE"), // Cyan 400
	Accent:    lipgloss.Color("#F472B6"), // Pink 400

	TextPrimary:   lipgloss.Color("#F1F5F9"), // Slate 100
	TextSecondary: lipgloss.Color("#94A3B8"), // Slate 400
	TextMuted:     lipgloss.Color("#64748B"), // Slate 500

	Success: lipgloss.Color("#34D399"), // Emerald 400
	Warning: lipgloss.Color("#FBBF24"), // Amber 400
	Error:   lipgloss.Color("#FB7185"), // Rose 400
	Info:    lipgloss.Color("#60A5FA"), // Blue 400

	Border:    lipgloss.Color("#27272A"),
	Selection: lipgloss.Color("#3F3F5A"),
	OnAccent:  lipgloss.Color("#FFFFFF"),

	Glamour: "dark",
}

// LightTheme is used for "default" on light terminals
var LightTheme = Theme{
	Primary:   lipgloss.Color("#4F46E5"), // Indigo 600
	Secondary: lipgloss.Color("#0891B2"), // Cyan 600
	Accent:    lipgloss.Color("#DB2777"), // Pink 600

	TextPrimary:   lipgloss.Color("#18181B"),
	TextSecondary: lipgloss.Color("#52525B"),
	TextMuted:     lipgloss.Color("#A1A1AA"),

	Success: lipgloss.Color("#10B981"),
	Warning: lipgloss.Color("#F59E0B"),
	Error:   lipgloss.Color("#EF4444"),
	Info:    lipgloss.Color("#3B82F6"),

	Border:    lipgloss.Color("#E4E4E7"),
	Selection: lipgloss.Color("#C7D2FE"),
	OnAccent:  lipgloss.Color("#FFFFFF"),

	Glamour: "light",
}

// PinboardTheme is the "default" palette on dark terminals: cork and sticky notes
var PinboardTheme = Theme{
	Primary:   lipgloss.Color("#B39DDB"),
	Secondary: lipgloss.Color("#90CAF9"),
	Accent:    lipgloss.Color("#FFCC80"),

	TextPrimary:   lipgloss.Color("#E0E0E0"),
	TextSecondary: lipgloss.Color("#9E9E9E"),
	TextMuted:     lipgloss.Color("#545454"),

	Success: lipgloss.Color("#A5D6A7"),
	Warning: lipgloss.Color("#FFF59D"),
	Error:   lipgloss.Color("#EF9A9A"),
	Info:    lipgloss.Color("#81D4FA"),

	Border:    lipgloss.Color("#333333"),
	Selection: lipgloss.Color("#5C5C7A"),
	OnAccent:  lipgloss.Color("#FFFFFF"),

	Glamour: "dark",
}

var ForestTheme = Theme{
	Primary:   lipgloss.Color("#81C784"),
	Secondary: lipgloss.Color("#AED581"),
	Accent:    lipgloss.Color("#FFD54F"),

	TextPrimary:   lipgloss.Color("#E8F5E9"),
	TextSecondary: lipgloss.Color("#A5BFA7"),
	TextMuted:     lipgloss.Color("#5F7461"),

	Success: lipgloss.Color("#66BB6A"),
	Warning: lipgloss.Color("#FFCA28"),
	Error:   lipgloss.Color("#E57373"),
	Info:    lipgloss.Color("#4DB6AC"),

	Border:    lipgloss.Color("#2E3B2F"),
	Selection: lipgloss.Color("#33691E"),
	OnAccent:  lipgloss.Color("#0B1A0C"),

	Glamour: "dark",
}

var OceanTheme = Theme{
	Primary:   lipgloss.Color("#4FC3F7"),
	Secondary: lipgloss.Color("#80DEEA"),
	Accent:    lipgloss.Color("#F06292"),

	TextPrimary:   lipgloss.Color("#E1F5FE"),
	TextSecondary: lipgloss.Color("#90A4AE"),
	TextMuted:     lipgloss.Color("#546E7A"),

	Success: lipgloss.Color("#4DB6AC"),
	Warning: lipgloss.Color("#FFB74D"),
	Error:   lipgloss.Color("#FF8A80"),
	Info:    lipgloss.Color("#64B5F6"),

	Border:    lipgloss.Color("#1C313A"),
	Selection: lipgloss.Color("#01579B"),
	OnAccent:  lipgloss.Color("#FFFFFF"),

	Glamour: "dark",
}

var SunsetTheme = Theme{
	Primary:   lipgloss.Color("#FF8A65"),
	Secondary: lipgloss.Color("#FFB74D"),
	Accent:    lipgloss.Color("#BA68C8"),

	TextPrimary:   lipgloss.Color("#FFF3E0"),
	TextSecondary: lipgloss.Color("#BCAAA4"),
	TextMuted:     lipgloss.Color("#795548"),

	Success: lipgloss.Color("#AED581"),
	Warning: lipgloss.Color("#FFD54F"),
	Error:   lipgloss.Color("#E57373"),
	Info:    lipgloss.Color("#F48FB1"),

	Border:    lipgloss.Color("#3E2723"),
	Selection: lipgloss.Color("#BF360C"),
	OnAccent:  lipgloss.Color("#1A0E0A"),

	Glamour: "dark",
}

// Themes maps the theme preference to its palette. "default" is resolved by ThemeFor.
var Themes = map[string]Theme{
	"dark":   DarkTheme,
	"forest": ForestTheme,
	"ocean":  OceanTheme,
	"sunset": SunsetTheme,
}

// CurrentTheme holds the active theme
var CurrentTheme = PinboardTheme

var currentThemeID = "default"

// ThemeFor returns the palette of a theme id. "default" follows the terminal background.
func ThemeFor(id string) Theme {
	if t, ok := Themes[id]; ok {
		return t
	}
	if lipgloss.HasDarkBackground() {
		return PinboardTheme
	}
	return LightTheme
}

// SetTheme switches the palette and rebuilds every style
func SetTheme(id string) {
	currentThemeID = id
	CurrentTheme = ThemeFor(id)
	build(CurrentTheme)
}

func CurrentThemeID() string {
	return currentThemeID
}
