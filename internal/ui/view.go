package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"pinned/internal/models"
	"pinned/internal/notify"
	"pinned/internal/session"
	"pinned/internal/styles"
)

func (m *Model) UpdateModelSelectorContent() {
	items := make([]string, 0, len(m.State.Models))
	for i, opt := range m.State.Models {
		isSelected := i == m.SelectedModelIndex
		isCurrent := opt.Alias == m.State.Model

		displayName := "  " + opt.Alias
		if isCurrent {
			displayName = "● " + opt.Alias
		}
		id := lipgloss.NewStyle().Foreground(styles.HintColor).Render(" " + opt.ID)
		displayName = TruncateRunes(displayName, styles.ContentWidth/2) + id

		var styledItem string
		if isSelected {
			styledItem = styles.ModalSelectedStyle.Width(styles.ContentWidth).Render(displayName)
		} else {
			style := styles.ModalItemStyle.Width(styles.ContentWidth)
			if isCurrent {
				style = style.Foreground(styles.CurrentTheme.Primary)
			}
			styledItem = style.Render(displayName)
		}
		items = append(items, styledItem)
	}
	m.ModelViewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, items...))
}

// SyncModelViewportScroll keeps the selected model row visible
func (m *Model) SyncModelViewportScroll() {
	h := m.ModelViewport.Height
	if h <= 0 {
		return
	}
	off := m.ModelViewport.YOffset
	switch {
	case m.SelectedModelIndex < off:
		m.ModelViewport.SetYOffset(m.SelectedModelIndex)
	case m.SelectedModelIndex >= off+h:
		m.ModelViewport.SetYOffset(m.SelectedModelIndex - h + 1)
	}
}

func (m *Model) RenderModelSelector() string {
	title := styles.ModalTitleStyle.Render("Select AI Model")
	content := lipgloss.JoinVertical(lipgloss.Left, title, m.ModelViewport.View())
	return lipgloss.JoinVertical(lipgloss.Left, content, hint("↑/↓: navigate • Enter: select • Esc: close"))
}

func (m *Model) RenderChatList() string {
	chats := m.State.ChatList
	title := styles.ModalTitleStyle.Render(fmt.Sprintf("Conversations (%d)", len(chats)))

	var body string
	if len(chats) == 0 {
		body = styles.ModalItemStyle.Render(lipgloss.NewStyle().Foreground(styles.HintColor).Render("No conversations yet"))
	} else {
		items := make([]string, 0, len(chats))
		for i, chat := range chats {
			cursor := "  "
			switch {
			case i == m.ListSelectedIdx:
				cursor = "> "
			case chat.ID == m.State.ActiveChatID:
				cursor = "● "
			}
			timeStr := ChatTime(chat)
			available := styles.ContentWidth - 2 - len(cursor) - 1 - len(timeStr)
			name := TruncateRunes(displayTitle(chat.Title), available)
			line := fmt.Sprintf("%s%s %s", cursor, name, lipgloss.NewStyle().Foreground(styles.HintColor).Render(timeStr))
			if i == m.ListSelectedIdx {
				items = append(items, styles.ModalSelectedStyle.Render(line))
			} else {
				items = append(items, styles.ModalItemStyle.Render(line))
			}
		}
		body = lipgloss.JoinVertical(lipgloss.Left, items...)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, body)
	return lipgloss.JoinVertical(lipgloss.Left, content,
		hint("↑/↓: navigate • Enter: open • n: new • r: rename • d: delete • Esc: close"))
}

func (m *Model) RenderDeleteConfirm() string {
	name := "this conversation"
	if c, ok := m.State.Chat(m.State.PendingDeleteID); ok && c.Title != "" {
		name = fmt.Sprintf("%q", TruncateRunes(c.Title, styles.ContentWidth-20))
	}
	title := styles.ModalTitleStyle.Render("Delete Conversation")
	body := styles.ModalItemStyle.Width(styles.ContentWidth).
		Render(fmt.Sprintf("Delete %s? This cannot be undone.", name))
	return lipgloss.JoinVertical(lipgloss.Left, title, body, hint("y/Enter: delete • n/Esc: cancel"))
}

func (m *Model) RenderRenameEditor() string {
	title := styles.ModalTitleStyle.Render("Rename Conversation")
	field := styles.InputBoxStyle.Width(styles.ContentWidth).Render(m.TitleInput.View())
	return lipgloss.JoinVertical(lipgloss.Left, title, field, hint("Enter: save • Esc: cancel"))
}

func (m *Model) RenderSettings() string {
	title := styles.ModalTitleStyle.Render("Settings")
	items := make([]string, 0, settingsRowCount)
	for row := RowTheme; row < settingsRowCount; row++ {
		label := lipgloss.NewStyle().Width(16).Render(row.String())
		line := label + m.settingValue(row)
		if row == m.SettingsIdx {
			items = append(items, styles.ModalSelectedStyle.Width(styles.ContentWidth).Render("> "+line))
		} else {
			items = append(items, styles.ModalItemStyle.Width(styles.ContentWidth).Render("  "+line))
		}
	}
	content := lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, items...)...)
	return lipgloss.JoinVertical(lipgloss.Left, content, hint("↑/↓: navigate • Enter: change • Esc: close"))
}

func (m *Model) RenderShortcutsModal() string {
	title := styles.ModalTitleStyle.Render("Keyboard Shortcuts")

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send Message"},
		{"Shift+Enter", "New Line"},
		{"Tab", "Cycle Suggestions"},
		{"Ctrl+N", "New Chat"},
		{"Ctrl+H", "Conversations"},
		{"Ctrl+B", "Select AI Model"},
		{"Ctrl+R", "Rename Chat"},
		{"Ctrl+D", "Delete Chat"},
		{"Ctrl+Y", "Copy Last Reply"},
	}
	if m.Features.Export {
		shortcuts = append(shortcuts, struct{ key, desc string }{"Ctrl+E", "Export Chat"})
	}
	if m.Features.SettingsPanel {
		shortcuts = append(shortcuts, struct{ key, desc string }{"Ctrl+O", "Settings"})
	}
	shortcuts = append(shortcuts,
		struct{ key, desc string }{"Ctrl+S", "View Shortcuts (this menu)"},
		struct{ key, desc string }{"Ctrl+C", "Quit Application"},
	)

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		line := fmt.Sprintf("%s %s", styles.KeyStyle.Width(13).Render(s.key), s.desc)
		items = append(items, styles.ModalItemStyle.Render(line))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, items...))
	return lipgloss.JoinVertical(lipgloss.Left, content, hint("Esc/Enter: close"))
}

func hint(text string) string {
	return lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render(text)
}

func displayTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Untitled"
	}
	return title
}

// RenderSidebar lists the conversations next to the chat on wide terminals
func (m *Model) RenderSidebar() string {
	width := SidebarWidth - 2
	lines := []string{styles.InfoStyle.Render("Conversations"), ""}
	if len(m.State.ChatList) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.HintColor).Render("No conversations yet"))
	}
	for _, chat := range m.State.ChatList {
		name := TruncateRunes(displayTitle(chat.Title), width-2)
		if chat.ID == m.State.ActiveChatID {
			name = styles.ModalSelectedStyle.Render(name)
		}
		lines = append(lines, name)
		if when := ChatTime(chat); when != "" {
			lines = append(lines, "  "+lipgloss.NewStyle().Foreground(styles.HintColor).Render(when))
		}
	}
	height := m.WindowHeight - 2
	if height < 1 {
		height = 1
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxHeight(height).
		BorderRight(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.CurrentTheme.Border).
		PaddingRight(1).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) RenderToasts() string {
	active := m.Toasts.Active(time.Now())
	if len(active) == 0 {
		return ""
	}
	parts := make([]string, 0, len(active))
	for _, t := range active {
		parts = append(parts, toastStyle(t).Render(t.Text))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func toastStyle(t notify.Toast) lipgloss.Style {
	switch t.Kind {
	case models.NotifySuccess:
		return styles.ToastSuccessStyle
	case models.NotifyError:
		return styles.ToastErrorStyle
	default:
		return styles.ToastInfoStyle
	}
}

func (m *Model) RenderBottomBar() string {
	model := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.CurrentTheme.OnAccent).
		Background(styles.CurrentTheme.Primary).
		Padding(0, 1).
		Render(m.State.Model)

	title := "New chat"
	if m.State.HasActiveChat() {
		title = displayTitle(m.State.ActiveTitle)
	}
	title = TruncateRunes(title, 40)
	chat := lipgloss.NewStyle().Foreground(styles.CurrentTheme.TextSecondary).Render(title)

	status := ""
	if m.State.AwaitingReply {
		status = lipgloss.NewStyle().Foreground(styles.CurrentTheme.Warning).Render("waiting for reply")
	}
	help := lipgloss.NewStyle().Foreground(styles.HintColor).Render("Help: ^S")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, model, "  ", chat)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Center, status, "  ", help)

	availableWidth := m.WindowWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide) - 2
	if availableWidth < 0 {
		availableWidth = 0
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Center, leftSide, strings.Repeat(" ", availableWidth), rightSide)

	return lipgloss.NewStyle().
		Width(m.WindowWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.CurrentTheme.Border).
		Padding(0, 1).
		Render(bar)
}

func (m *Model) welcomeScreen() string {
	art := `
 ┌─────────────────────────────┐
 │  📌  P I N N E D            │
 │      T H O U G H T S        │
 └─────────────────────────────┘
`
	styledArt := styles.WelcomeArtStyle.Render(art)
	subtitle := styles.WelcomeSubtitleStyle.Italic(true).Render("Ask anything. Press Tab for ideas.")

	rows := make([]string, 0, len(Suggestions))
	for i, s := range Suggestions {
		if i == m.SuggestionIdx {
			rows = append(rows, styles.SuggestionSelStyle.Render("› "+s))
		} else {
			rows = append(rows, styles.SuggestionStyle.Render("  "+s))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Center, styledArt, subtitle, "", lipgloss.JoinVertical(lipgloss.Left, rows...))
	return lipgloss.Place(m.Viewport.Width, m.Viewport.Height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) transcript() string {
	parts := make([]string, 0, len(m.State.Transcript)+1)
	for i, e := range m.State.Transcript {
		switch {
		case e.Role == models.RoleUser:
			parts = append(parts, FormatUserMessage(e.Content, m.Viewport.Width, e.At, i == 0))
		case e.Synthetic:
			parts = append(parts, FormatErrorMessage(e.Content, e.At))
		case e.Typing():
			parts = append(parts, FormatAIMessage(e.Text()+"▌", e.At))
		default:
			parts = append(parts, FormatAIMessage(m.renderMarkdown(e.Content), e.At))
		}
	}
	if m.State.AwaitingReply {
		parts = append(parts, styles.AiLabelStyle.Render("PINNED")+"\n"+m.Spinner.View()+" Thinking...")
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) UpdateViewport() {
	switch {
	case m.State.View == session.ViewWelcome:
		m.Viewport.SetContent(m.welcomeScreen())
		m.Viewport.GotoTop()
		return
	case m.State.View == session.ViewChatLoading && len(m.State.Transcript) == 0:
		loading := m.Spinner.View() + " Loading conversation..."
		m.Viewport.SetContent(lipgloss.Place(m.Viewport.Width, m.Viewport.Height, lipgloss.Center, lipgloss.Center, loading))
		return
	}

	m.Viewport.SetContent(m.transcript())
	if m.Settings.AutoScroll {
		m.Viewport.GotoBottom()
	}
}

func (m *Model) modal() string {
	switch {
	case m.State.PendingDeleteID != "":
		return m.RenderDeleteConfirm()
	case m.State.PendingEditID != "":
		return m.RenderRenameEditor()
	case m.SettingsOpen:
		return m.RenderSettings()
	case m.ModelSelectorOpen:
		return m.RenderModelSelector()
	case m.ListOpen:
		return m.RenderChatList()
	case m.ShortcutsOpen:
		return m.RenderShortcutsModal()
	}
	return ""
}

func (m *Model) View() string {
	if modal := m.modal(); modal != "" {
		modal = styles.ModalStyle.Width(ModalWidth).Render(modal)
		return lipgloss.Place(m.WindowWidth, m.WindowHeight, lipgloss.Center, lipgloss.Center, modal)
	}

	width := m.chatWidth()
	inputBox := styles.InputBoxStyle.Width(width - 2).Render(m.TextInput.View())

	chatContent := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render("PINNED THOUGHTS"),
		"",
		m.Viewport.View(),
		m.RenderToasts(),
		inputBox,
	)
	chatArea := lipgloss.PlaceHorizontal(m.mainWidth(), lipgloss.Center, chatContent)
	if m.showSidebar() {
		chatArea = lipgloss.JoinHorizontal(lipgloss.Top, m.RenderSidebar(), chatArea)
	}

	return lipgloss.JoinVertical(lipgloss.Left, chatArea, m.RenderBottomBar())
}
