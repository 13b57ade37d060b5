package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pinned/internal/export"
)

var (
	exportFormat   string
	exportOutput   string
	exportMetadata bool
)

var exportCmd = &cobra.Command{
	Use:   "export <id|link>",
	Short: "Export a conversation to a file",
	Long: `Export a conversation as markdown, JSON or YAML.

Without -o the file is written to the configured export directory (or the
current directory) under a name derived from the chat title. Use -o - to
write to standard output.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Format: "+strings.Join(export.Formats, ", "))
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file, or - for stdout")
	exportCmd.Flags().BoolVar(&exportMetadata, "metadata", true, "Include title, model and dates")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	id, err := chatID(args[0])
	if err != nil {
		return err
	}
	opts := export.DefaultOptions()
	opts.IncludeMetadata = exportMetadata
	e, err := export.ForFormat(exportFormat, opts)
	if err != nil {
		return err
	}

	chat, err := newClient().GetChat(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	switch exportOutput {
	case "-":
		out, err := e.Export(chat)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	case "":
		path, err := export.ToFile(chat, e, cfg.UI.ExportDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	}

	out, err := e.Export(chat)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(exportOutput); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(exportOutput, out, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), exportOutput)
	return nil
}
