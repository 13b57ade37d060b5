package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"pinned/internal/models"
	"pinned/internal/session"
	"pinned/internal/styles"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.Spinner, spCmd = m.Spinner.Update(msg)
		if m.State.AwaitingReply || m.State.View == session.ViewChatLoading {
			m.UpdateViewport()
		}
		return m, spCmd

	case SessionEventMsg:
		m.refresh()
		return m, m.waitForEvent()

	case BootstrappedMsg:
		if msg.Err != nil && !quiet(msg.Err) {
			m.Logger.Warn("bootstrap failed", zap.Error(msg.Err))
		}
		m.refresh()
		return m, nil

	case ChatOpenedMsg:
		if msg.Err != nil && !quiet(msg.Err) {
			m.Logger.Debug("open chat failed", zap.String("chat_id", msg.ID), zap.Error(msg.Err))
		}
		m.refresh()
		return m, nil

	case SentMsg:
		m.refresh()
		if msg.Err == nil && m.Blurred && m.Features.DesktopNotify {
			return m, m.desktopNotify(m.State.ActiveTitle)
		}
		return m, nil

	case OpDoneMsg:
		m.refresh()
		return m, nil

	case ExportedMsg:
		if msg.Err != nil {
			m.Logger.Warn("export failed", zap.Error(msg.Err))
			m.toast(models.NotifyError, "Failed to export conversation")
		} else {
			m.toast(models.NotifySuccess, "Exported to "+msg.Path)
		}
		return m, nil

	case CopiedMsg:
		if msg.Err != nil {
			m.Logger.Debug("clipboard write failed", zap.Error(msg.Err))
			m.toast(models.NotifyError, "Failed to copy reply")
		} else {
			m.toast(models.NotifySuccess, "Reply copied to clipboard")
		}
		return m, nil

	case SettingsSaved:
		if msg.Err != nil {
			m.Logger.Warn("saving settings failed", zap.Error(msg.Err))
			m.toast(models.NotifyError, "Failed to save settings")
		}
		return m, nil

	case ToastTickMsg:
		m.Toasts.Active(time.Time(msg))
		return m, toastTick()

	case tea.FocusMsg:
		m.Blurred = false
		return m, nil

	case tea.BlurMsg:
		m.Blurred = true
		return m, nil

	case ErrMsg:
		m.Err = msg
		return m, nil

	case tea.KeyMsg:
		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.WindowWidth = msg.Width
		m.WindowHeight = msg.Height

		ModalWidth = msg.Width - 10
		if ModalWidth > 60 {
			ModalWidth = 60
		}
		if ModalWidth < 30 {
			ModalWidth = 30
		}
		styles.ContentWidth = ModalWidth - 6

		m.ModelViewport.Width = styles.ContentWidth
		m.ModelViewport.Height = msg.Height - 15
		if m.ModelViewport.Height > 20 {
			m.ModelViewport.Height = 20
		}
		if m.ModelViewport.Height < 5 {
			m.ModelViewport.Height = 5
		}

		m.updateInputLayout()
		m.rebuildRenderer()
		m.UpdateViewport()
		return m, nil
	}

	if m.State.PendingEditID != "" {
		m.TitleInput, tiCmd = m.TitleInput.Update(msg)
		return m, tiCmd
	}

	m.TextInput, tiCmd = m.TextInput.Update(msg)
	m.updateInputLayout()

	// Filter out terminal background color queries and cursor reference codes that leak into the input
	val := m.TextInput.Value()
	if strings.Contains(val, "]11;rgb:") || strings.Contains(val, "1;rgb:") || strings.Contains(val, "[1;1R") {
		m.TextInput.Reset()
	}

	m.Viewport, vpCmd = m.Viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

// handleKey routes a key press to the topmost open surface. It reports false when the
// key should reach the text input.
func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return true, tea.Quit
	}

	switch {
	case m.State.PendingDeleteID != "":
		return true, m.deleteConfirmKey(msg)
	case m.State.PendingEditID != "":
		return m.renameKey(msg)
	case m.SettingsOpen:
		return true, m.settingsKey(msg)
	case m.ModelSelectorOpen:
		return true, m.modelSelectorKey(msg)
	case m.ListOpen:
		return true, m.listKey(msg)
	case m.ShortcutsOpen:
		switch msg.String() {
		case "esc", "enter", "?", "ctrl+s":
			m.ShortcutsOpen = false
		}
		return true, nil
	}

	switch msg.String() {
	case "esc":
		return true, tea.Quit

	case "ctrl+n":
		m.Ctrl.StartNewChat()
		m.TextInput.Reset()
		m.SuggestionIdx = -1
		m.updateInputLayout()
		m.refresh()
		m.Viewport.GotoTop()
		return true, nil

	case "ctrl+b":
		m.closeModals()
		m.ModelSelectorOpen = true
		m.SelectedModelIndex = 0
		for i, opt := range m.State.Models {
			if opt.Alias == m.State.Model {
				m.SelectedModelIndex = i
			}
		}
		m.UpdateModelSelectorContent()
		m.SyncModelViewportScroll()
		return true, nil

	case "ctrl+h":
		m.closeModals()
		m.ListOpen = true
		m.ListSelectedIdx = 0
		for i, c := range m.State.ChatList {
			if c.ID == m.State.ActiveChatID {
				m.ListSelectedIdx = i
			}
		}
		return true, m.refreshChats()

	case "ctrl+s":
		m.closeModals()
		m.ShortcutsOpen = true
		return true, nil

	case "ctrl+o":
		if !m.Features.SettingsPanel {
			return true, nil
		}
		m.closeModals()
		m.SettingsOpen = true
		m.SettingsIdx = RowTheme
		return true, nil

	case "ctrl+e":
		if !m.Features.Export || !m.State.HasActiveChat() {
			return true, nil
		}
		return true, m.exportChat()

	case "ctrl+y":
		return true, m.copyLastReply()

	case "ctrl+r":
		if m.State.HasActiveChat() {
			m.Ctrl.RequestRename(m.State.ActiveChatID)
			m.refresh()
		}
		return true, nil

	case "ctrl+d":
		if m.State.HasActiveChat() {
			m.Ctrl.RequestDelete(m.State.ActiveChatID)
			m.refresh()
		}
		return true, nil

	case "tab":
		if m.State.View != session.ViewWelcome || len(Suggestions) == 0 {
			return true, nil
		}
		m.SuggestionIdx = (m.SuggestionIdx + 1) % len(Suggestions)
		m.TextInput.SetValue(Suggestions[m.SuggestionIdx])
		m.TextInput.CursorEnd()
		m.updateInputLayout()
		m.UpdateViewport()
		return true, nil
	}

	if isNewlineShortcut(msg) {
		m.TextInput.InsertString("\n")
		m.updateInputLayout()
		return true, nil
	}

	if msg.Type == tea.KeyEnter {
		input := strings.TrimSpace(m.TextInput.Value())
		if input == "" || m.State.AwaitingReply {
			return true, nil
		}
		m.TextInput.Reset()
		m.SuggestionIdx = -1
		m.updateInputLayout()
		return true, tea.Batch(m.send(input), m.Spinner.Tick)
	}

	return false, nil
}

func (m *Model) deleteConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y", "enter":
		return m.confirmDelete()
	case "n", "N", "esc":
		m.Ctrl.CancelDelete()
		m.refresh()
	}
	return nil
}

func (m *Model) renameKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.Ctrl.CancelRename()
		m.refresh()
		return true, nil
	case tea.KeyEnter:
		title := strings.TrimSpace(m.TitleInput.Value())
		if title == "" {
			return true, nil
		}
		return true, m.confirmRename(title)
	}
	return false, nil
}

func (m *Model) listKey(msg tea.KeyMsg) tea.Cmd {
	chats := m.State.ChatList
	switch msg.String() {
	case "esc", "ctrl+h":
		m.ListOpen = false
	case "up", "k":
		if len(chats) > 0 {
			m.ListSelectedIdx--
			if m.ListSelectedIdx < 0 {
				m.ListSelectedIdx = len(chats) - 1
			}
		}
	case "down", "j":
		if len(chats) > 0 {
			m.ListSelectedIdx++
			if m.ListSelectedIdx >= len(chats) {
				m.ListSelectedIdx = 0
			}
		}
	case "enter":
		if len(chats) == 0 {
			return nil
		}
		m.ListOpen = false
		id := chats[m.ListSelectedIdx].ID
		if id == m.State.ActiveChatID && m.State.View == session.ViewChatReady {
			return nil
		}
		return m.openChat(id)
	case "n":
		m.ListOpen = false
		m.Ctrl.StartNewChat()
		m.refresh()
	case "r":
		if len(chats) > 0 {
			m.Ctrl.RequestRename(chats[m.ListSelectedIdx].ID)
			m.refresh()
		}
	case "d":
		if len(chats) > 0 {
			m.Ctrl.RequestDelete(chats[m.ListSelectedIdx].ID)
			m.refresh()
		}
	}
	return nil
}

func (m *Model) modelSelectorKey(msg tea.KeyMsg) tea.Cmd {
	opts := m.State.Models
	switch msg.String() {
	case "esc", "ctrl+b":
		m.ModelSelectorOpen = false
	case "up", "k":
		if len(opts) > 0 {
			m.SelectedModelIndex--
			if m.SelectedModelIndex < 0 {
				m.SelectedModelIndex = len(opts) - 1
			}
		}
	case "down", "j":
		if len(opts) > 0 {
			m.SelectedModelIndex++
			if m.SelectedModelIndex >= len(opts) {
				m.SelectedModelIndex = 0
			}
		}
	case "enter":
		if len(opts) > 0 {
			m.Ctrl.SelectModel(opts[m.SelectedModelIndex].Alias)
			m.refresh()
		}
		m.ModelSelectorOpen = false
		return nil
	}
	m.UpdateModelSelectorContent()
	m.SyncModelViewportScroll()
	return nil
}

func (m *Model) settingsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+o":
		m.SettingsOpen = false
		return nil
	case "up", "k":
		m.SettingsIdx--
		if m.SettingsIdx < 0 {
			m.SettingsIdx = settingsRowCount - 1
		}
		return nil
	case "down", "j":
		m.SettingsIdx = (m.SettingsIdx + 1) % settingsRowCount
		return nil
	case "enter", " ", "right", "l":
		m.cycleSetting(m.SettingsIdx)
		m.applySettings()
		m.updateInputLayout()
		m.UpdateViewport()
		return m.saveSettings()
	}
	return nil
}

// cycleSetting advances one row of the settings panel to its next value
func (m *Model) cycleSetting(row SettingsRow) {
	s := &m.Settings
	switch row {
	case RowTheme:
		s.Theme = models.NextTheme(s.Theme)
	case RowFontSize:
		s.FontSize = models.NextFontSize(s.FontSize)
	case RowTypingSpeed:
		s.TypingSpeed = models.NextTypingSpeed(s.TypingSpeed)
	case RowAutoScroll:
		s.AutoScroll = !s.AutoScroll
	case RowSoundEffects:
		s.SoundEffects = !s.SoundEffects
	}
}

func (m *Model) closeModals() {
	m.ListOpen = false
	m.ModelSelectorOpen = false
	m.ShortcutsOpen = false
	m.SettingsOpen = false
}

// refresh re-reads the controller snapshot and syncs the inputs with the open editors
func (m *Model) refresh() {
	prevEdit := m.State.PendingEditID
	m.State = m.Ctrl.Snapshot()

	switch {
	case m.State.PendingEditID != "" && m.State.PendingEditID != prevEdit:
		title := ""
		if c, ok := m.State.Chat(m.State.PendingEditID); ok {
			title = c.Title
		}
		m.TitleInput.SetValue(title)
		m.TitleInput.CursorEnd()
		m.TitleInput.Focus()
		m.TextInput.Blur()
	case m.State.PendingEditID == "" && prevEdit != "":
		m.TitleInput.Blur()
		m.TitleInput.Reset()
		m.TextInput.Focus()
	}

	if n := len(m.State.ChatList); m.ListSelectedIdx >= n {
		m.ListSelectedIdx = n - 1
	}
	if m.ListSelectedIdx < 0 {
		m.ListSelectedIdx = 0
	}
	if n := len(m.State.Models); m.SelectedModelIndex >= n {
		m.SelectedModelIndex = 0
	}
	m.UpdateViewport()
}

func isNewlineShortcut(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "shift+enter", "shift+return", "ctrl+j", "alt+enter":
		return true
	default:
		return false
	}
}

// mainWidth is the window width left for the conversation column
func (m *Model) mainWidth() int {
	w := m.WindowWidth
	if w == 0 {
		w = 80
	}
	if m.showSidebar() {
		w -= SidebarWidth
	}
	return w
}

func (m *Model) showSidebar() bool {
	return m.WindowWidth >= CompactWidthThresh
}

func (m *Model) chatWidth() int {
	return styles.ChatWidth(m.Settings.FontSize, m.mainWidth()-2)
}

func (m *Model) updateInputLayout() {
	if m.WindowWidth == 0 || m.WindowHeight == 0 {
		return
	}

	inputWidth := m.chatWidth() - 4
	if inputWidth < 20 {
		inputWidth = 20
	}
	contentWidth := inputWidth - 2
	if contentWidth < 1 {
		contentWidth = 1
	}

	maxInputHeight := 6
	lineCount := WrappedLineCount(m.TextInput.Value(), contentWidth)
	if lineCount < 1 {
		lineCount = 1
	}
	if lineCount > maxInputHeight {
		lineCount = maxInputHeight
	}

	m.TextInput.MaxHeight = maxInputHeight
	m.TextInput.SetWidth(inputWidth)
	m.TextInput.SetHeight(lineCount)
	m.TitleInput.Width = styles.ContentWidth - 4

	inputBoxHeight := m.TextInput.Height() + 2
	reserved := inputBoxHeight + 6
	viewportHeight := m.WindowHeight - reserved
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	m.Viewport.Width = m.chatWidth()
	m.Viewport.Height = viewportHeight
}

// rebuildRenderer recreates the markdown renderer for the current theme and width.
// Rendered replies are cached per content and dropped here.
func (m *Model) rebuildRenderer() {
	wrap := m.chatWidth() - 6
	if wrap < 10 {
		wrap = 10
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(styles.CurrentTheme.Glamour),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.Logger.Debug("markdown renderer unavailable", zap.Error(err))
		r = nil
	}
	m.Renderer = r
	m.rendered = make(map[string]string)
}

// renderMarkdown renders a finished reply, falling back to the raw text
func (m *Model) renderMarkdown(content string) string {
	if m.Renderer == nil {
		return content
	}
	if out, ok := m.rendered[content]; ok {
		return out
	}
	out, err := m.Renderer.Render(content)
	if err != nil {
		m.Logger.Debug("markdown render failed", zap.Error(err))
		return content
	}
	out = strings.TrimSpace(out)
	m.rendered[content] = out
	return out
}

func (m *Model) settingValue(row SettingsRow) string {
	s := m.Settings
	switch row {
	case RowTheme:
		return s.Theme
	case RowFontSize:
		return string(s.FontSize)
	case RowTypingSpeed:
		return string(s.TypingSpeed)
	case RowAutoScroll:
		return onOff(s.AutoScroll)
	case RowSoundEffects:
		if !m.Features.SoundEffects {
			return "unavailable"
		}
		return onOff(s.SoundEffects)
	}
	return ""
}

func (r SettingsRow) String() string {
	switch r {
	case RowTheme:
		return "Theme"
	case RowFontSize:
		return "Font size"
	case RowTypingSpeed:
		return "Typing speed"
	case RowAutoScroll:
		return "Auto-scroll"
	case RowSoundEffects:
		return "Sound effects"
	}
	return fmt.Sprintf("SettingsRow(%d)", int(r))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
