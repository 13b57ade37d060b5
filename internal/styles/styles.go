package styles

import (
	"github.com/charmbracelet/lipgloss"

	"pinned/internal/models"
)

var (
	ContentWidth = 54
)

var (
	TitleStyle           lipgloss.Style
	InfoStyle            lipgloss.Style
	UserLabelStyle       lipgloss.Style
	UserMsgStyle         lipgloss.Style
	AiLabelStyle         lipgloss.Style
	AiMsgStyle           lipgloss.Style
	ErrorStyle           lipgloss.Style
	TimeStyle            lipgloss.Style
	InputBoxStyle        lipgloss.Style
	WelcomeArtStyle      lipgloss.Style
	WelcomeSubtitleStyle lipgloss.Style
	SuggestionStyle      lipgloss.Style
	SuggestionSelStyle   lipgloss.Style
	ModalStyle           lipgloss.Style
	ModalTitleStyle      lipgloss.Style
	ModalItemStyle       lipgloss.Style
	ModalSelectedStyle   lipgloss.Style
	KeyStyle             lipgloss.Style
	ToastSuccessStyle    lipgloss.Style
	ToastErrorStyle      lipgloss.Style
	ToastInfoStyle       lipgloss.Style

	HintColor lipgloss.Color
)

func init() {
	build(CurrentTheme)
}

func build(t Theme) {
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		Padding(0, 1)

	InfoStyle = lipgloss.NewStyle().
		Foreground(t.TextMuted)

	UserLabelStyle = lipgloss.NewStyle().
		Foreground(t.OnAccent).
		Background(t.Secondary).
		Bold(true).
		Padding(0, 1).
		MarginRight(1)

	UserMsgStyle = lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		PaddingLeft(2).
		BorderLeft(true).
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(t.Secondary)

	AiLabelStyle = lipgloss.NewStyle().
		Foreground(t.OnAccent).
		Background(t.Primary).
		Bold(true).
		Padding(0, 1).
		MarginRight(1)

	AiMsgStyle = lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		PaddingTop(1).
		BorderLeft(true).
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(t.Primary)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)

	TimeStyle = lipgloss.NewStyle().
		Foreground(t.TextMuted)

	InputBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1)

	WelcomeArtStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	WelcomeSubtitleStyle = lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Italic(true)

	SuggestionStyle = lipgloss.NewStyle().
		Foreground(t.TextSecondary).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	SuggestionSelStyle = SuggestionStyle.
		Foreground(t.TextPrimary).
		BorderForeground(t.Accent)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2)

	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	ModalItemStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(t.TextPrimary)

	ModalSelectedStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(t.Selection).
		Foreground(t.OnAccent)

	KeyStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true).
		Width(12)

	toast := lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(t.OnAccent)
	ToastSuccessStyle = toast.Background(t.Success)
	ToastErrorStyle = toast.Background(t.Error)
	ToastInfoStyle = toast.Background(t.Info)

	HintColor = t.TextMuted
}

// MaxChatWidth is the widest transcript column for a font size preference. Larger text
// means a narrower column.
func MaxChatWidth(f models.FontSize) int {
	switch f {
	case models.FontSmall:
		return 140
	case models.FontLarge:
		return 80
	default:
		return 100
	}
}

// ChatWidth fits the transcript column into the window
func ChatWidth(f models.FontSize, windowWidth int) int {
	w := windowWidth - 4
	if limit := MaxChatWidth(f); w > limit {
		w = limit
	}
	if w < 20 {
		w = 20
	}
	return w
}
