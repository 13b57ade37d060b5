package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"pinned/internal/export"
	"pinned/internal/models"
	"pinned/internal/session"
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List conversations",
	Args:  cobra.NoArgs,
	RunE:  runChats,
}

var showCmd = &cobra.Command{
	Use:   "show <id|link>",
	Short: "Print a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models the service offers",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the service is up",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(chatsCmd, showCmd, modelsCmd, healthCmd)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Headers(headers...)
}

func runChats(cmd *cobra.Command, args []string) error {
	chats, err := newClient().ListChats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load chat history: %w", err)
	}
	if len(chats) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No conversations yet")
		return nil
	}
	t := newTable("ID", "TITLE", "MODEL", "UPDATED")
	for _, c := range chats {
		updated := c.UpdatedAt
		if ts, ok := models.ParseServerTime(c.UpdatedAt); ok {
			updated = ts.Format("2006-01-02 15:04")
		}
		t.Row(c.ID, c.Title, c.Model, updated)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}

// chatID accepts a bare id or a link carrying ?chat=<id>
func chatID(arg string) (string, error) {
	id := session.ParseLocation(arg).ChatID
	if id == "" {
		return "", errors.New("no chat id in " + arg)
	}
	return id, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := chatID(args[0])
	if err != nil {
		return err
	}
	chat, err := newClient().GetChat(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}
	opts := export.DefaultOptions()
	opts.IncludeMetadata = false
	out, err := export.NewMarkdownExporter(opts).Export(chat)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runModels(cmd *cobra.Command, args []string) error {
	options, err := newClient().ListModels(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}
	t := newTable("", "ALIAS", "MODEL")
	for _, o := range options {
		mark := ""
		if o.Alias == cfg.DefaultModel {
			mark = "*"
		}
		t.Row(mark, o.Alias, o.ID)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	h, err := newClient().Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("service unreachable: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s", cfg.APIURL, h.Status)
	if h.Timestamp != "" {
		fmt.Fprintf(cmd.OutOrStdout(), " (%s)", h.Timestamp)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
