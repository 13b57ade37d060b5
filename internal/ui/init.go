package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"pinned/internal/config"
	"pinned/internal/models"
	"pinned/internal/notify"
	"pinned/internal/session"
	"pinned/internal/styles"
)

// Deps are the collaborators of the UI
type Deps struct {
	Ctrl            *session.Controller
	Prefs           SettingsStore
	Sound           *notify.Sound
	Logger          *zap.Logger
	Features        config.Features
	ExportDir       string
	BaseTypingDelay time.Duration
	Initial         session.Location
}

func InitialModel(d Deps) *Model {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	settings := models.DefaultSettings()
	if d.Prefs != nil {
		s, err := d.Prefs.LoadSettings()
		if err != nil {
			logger.Warn("loading settings failed", zap.Error(err))
		}
		settings = s
	}

	ti := textarea.New()
	ti.Placeholder = "Type your message..."
	ti.Prompt = "❯ "
	ti.ShowLineNumbers = false
	ti.CharLimit = 0
	ti.MaxHeight = 6
	ti.SetHeight(2)
	ti.SetWidth(80)
	ti.Focus()

	title := textinput.New()
	title.Placeholder = "Chat title"
	title.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		Ctrl:            d.Ctrl,
		Prefs:           d.Prefs,
		Toasts:          notify.NewToasts(3),
		Sound:           d.Sound,
		Logger:          logger,
		Features:        d.Features,
		ExportDir:       d.ExportDir,
		BaseTypingDelay: d.BaseTypingDelay,
		Initial:         d.Initial,
		Settings:        settings,
		Viewport:        viewport.New(60, 15),
		ModelViewport:   viewport.New(ModalWidth-4, 10),
		TextInput:       ti,
		TitleInput:      title,
		Spinner:         sp,
		rendered:        make(map[string]string),
		SuggestionIdx:   -1,
		ctx:             ctx,
		cancel:          cancel,
	}
	m.applySettings()
	m.subscribe()
	m.State = m.Ctrl.Snapshot()
	return m
}

// applySettings pushes the presentation preferences into styles, the controller and sound
func (m *Model) applySettings() {
	styles.SetTheme(m.Settings.Theme)
	t := styles.CurrentTheme
	m.TextInput.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	m.TextInput.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	m.TextInput.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(t.TextMuted)
	m.TextInput.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(t.TextMuted)
	m.TextInput.FocusedStyle.CursorLine = lipgloss.NewStyle()
	m.TextInput.BlurredStyle.CursorLine = lipgloss.NewStyle()
	m.Spinner.Style = lipgloss.NewStyle().Foreground(t.Primary)

	if m.Ctrl != nil {
		m.Ctrl.SetTypingDelay(m.Settings.TypingSpeed.Scale(m.BaseTypingDelay))
	}
	if m.Sound != nil {
		m.Sound.SetEnabled(m.Features.SoundEffects && m.Settings.SoundEffects)
	}
	m.rebuildRenderer()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.TextInput.Cursor.BlinkCmd(),
		m.Spinner.Tick,
		m.bootstrap(),
		m.waitForEvent(),
		toastTick(),
	)
}

// Close releases the controller subscription and cancels pending commands
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.cancel()
}

func NewProgram(m *Model) *tea.Program {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	m.Program = p
	return p
}
