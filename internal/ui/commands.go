package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"pinned/internal/export"
	"pinned/internal/models"
	"pinned/internal/notify"
	"pinned/internal/session"
)

// clipboardWrite is swapped out in tests
var clipboardWrite = clipboard.WriteAll

// subscribe forwards controller events to the program. Notifications go straight to the
// toast queue; the program only hears that something changed and re-reads the snapshot.
func (m *Model) subscribe() {
	m.events = make(chan struct{}, 1)
	m.unsubscribe = m.Ctrl.Subscribe(func(ev session.Event) {
		if ev.Kind == session.EventNotification {
			m.Toasts.Push(ev.Notification)
		}
		select {
		case m.events <- struct{}{}:
		default:
		}
	})
}

func (m *Model) waitForEvent() tea.Cmd {
	events, ctx := m.events, m.ctx
	return func() tea.Msg {
		select {
		case <-events:
			return SessionEventMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func toastTick() tea.Cmd {
	return tea.Tick(ToastTick, func(t time.Time) tea.Msg { return ToastTickMsg(t) })
}

func (m *Model) bootstrap() tea.Cmd {
	ctrl, ctx, loc := m.Ctrl, m.ctx, m.Initial
	return func() tea.Msg {
		return BootstrappedMsg{Err: ctrl.Bootstrap(ctx, loc)}
	}
}

func (m *Model) openChat(id string) tea.Cmd {
	ctrl, ctx := m.Ctrl, m.ctx
	return func() tea.Msg {
		_, err := ctrl.OpenChat(ctx, id)
		return ChatOpenedMsg{ID: id, Err: err}
	}
}

func (m *Model) send(text string) tea.Cmd {
	ctrl, ctx := m.Ctrl, m.ctx
	return func() tea.Msg {
		return SentMsg{Err: ctrl.SendMessage(ctx, text, "")}
	}
}

func (m *Model) refreshChats() tea.Cmd {
	ctrl, ctx := m.Ctrl, m.ctx
	return func() tea.Msg {
		_, err := ctrl.ListChats(ctx)
		return OpDoneMsg{Err: err}
	}
}

func (m *Model) confirmRename(title string) tea.Cmd {
	ctrl, ctx := m.Ctrl, m.ctx
	return func() tea.Msg {
		return OpDoneMsg{Err: ctrl.ConfirmRename(ctx, title)}
	}
}

func (m *Model) confirmDelete() tea.Cmd {
	ctrl, ctx := m.Ctrl, m.ctx
	return func() tea.Msg {
		return OpDoneMsg{Err: ctrl.ConfirmDelete(ctx)}
	}
}

func (m *Model) exportChat() tea.Cmd {
	chat := ChatForExport(m.State)
	dir := m.ExportDir
	return func() tea.Msg {
		path, err := export.ToFile(chat, export.NewMarkdownExporter(export.DefaultOptions()), dir)
		return ExportedMsg{Path: path, Err: err}
	}
}

func (m *Model) copyLastReply() tea.Cmd {
	reply, ok := m.State.LastReply()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return CopiedMsg{Err: clipboardWrite(reply)}
	}
}

func (m *Model) saveSettings() tea.Cmd {
	if m.Prefs == nil {
		return nil
	}
	prefs, s := m.Prefs, m.Settings
	return func() tea.Msg {
		return SettingsSaved{Err: prefs.SaveSettings(s)}
	}
}

func (m *Model) desktopNotify(title string) tea.Cmd {
	logger := m.Logger
	if title == "" {
		title = "New chat"
	}
	return func() tea.Msg {
		if err := notify.Desktop("Pinned Thoughts", fmt.Sprintf("New reply in %s", title)); err != nil {
			logger.Debug("desktop notification failed", zap.Error(err))
		}
		return nil
	}
}

func (m *Model) toast(kind models.NotificationKind, text string) {
	m.Toasts.Push(models.Notification{Kind: kind, Text: text, At: time.Now()})
}

// quiet reports errors the controller already surfaced or that need no feedback
func quiet(err error) bool {
	return err == nil ||
		errors.Is(err, session.ErrSuperseded) ||
		errors.Is(err, session.ErrAwaitingReply) ||
		errors.Is(err, session.ErrEmptyMessage)
}
