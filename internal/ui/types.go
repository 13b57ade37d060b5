package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"pinned/internal/config"
	"pinned/internal/models"
	"pinned/internal/notify"
	"pinned/internal/session"
)

const (
	CompactWidthThresh = 100 // Width below which the sidebar is hidden
	SidebarWidth       = 30

	ToastTick = 500 * time.Millisecond
)

// ModalWidth follows the window size
var ModalWidth = 60

// Suggestions fill the input from the welcome screen
var Suggestions = []string{
	"Explain a concept like I'm five",
	"Help me plan my week",
	"Give me a creative writing prompt",
	"Summarize the pros and cons of remote work",
}

type ErrMsg error

// SessionEventMsg means the controller state or toasts changed
type SessionEventMsg struct{}

type (
	BootstrappedMsg struct{ Err error }
	ChatOpenedMsg   struct {
		ID  string
		Err error
	}
	SentMsg struct {
		Err error
	}
	OpDoneMsg   struct{ Err error }
	ExportedMsg struct {
		Path string
		Err  error
	}
	CopiedMsg     struct{ Err error }
	ToastTickMsg  time.Time
	SettingsSaved struct{ Err error }
)

// SettingsStore persists presentation preferences
type SettingsStore interface {
	LoadSettings() (models.Settings, error)
	SaveSettings(models.Settings) error
}

// SettingsRow is one line of the settings panel
type SettingsRow int

const (
	RowTheme SettingsRow = iota
	RowFontSize
	RowTypingSpeed
	RowAutoScroll
	RowSoundEffects
	settingsRowCount
)

type Model struct {
	Ctrl     *session.Controller
	Prefs    SettingsStore
	Toasts   *notify.Toasts
	Sound    *notify.Sound
	Logger   *zap.Logger
	Features config.Features
	// ExportDir receives ctrl+e exports
	ExportDir string
	// BaseTypingDelay is scaled by the typing speed setting
	BaseTypingDelay time.Duration
	Initial         session.Location

	Settings models.Settings
	State    session.State

	Viewport      viewport.Model
	ModelViewport viewport.Model
	TextInput     textarea.Model
	TitleInput    textinput.Model
	Spinner       spinner.Model
	Renderer      *glamour.TermRenderer
	rendered      map[string]string
	Err           error

	WindowWidth  int
	WindowHeight int
	Blurred      bool

	ListOpen           bool
	ListSelectedIdx    int
	ModelSelectorOpen  bool
	SelectedModelIndex int
	ShortcutsOpen      bool
	SettingsOpen       bool
	SettingsIdx        SettingsRow
	SuggestionIdx      int

	ctx         context.Context
	cancel      context.CancelFunc
	Program     *tea.Program
	events      chan struct{}
	unsubscribe func()
}
