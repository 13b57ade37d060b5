// Package export writes a chat transcript to Markdown, JSON or YAML.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"pinned/internal/models"
)

// Exporter converts a chat to one file format
type Exporter interface {
	Export(chat models.ChatDetail) ([]byte, error)
	FileExtension() string
	MimeType() string
}

type Options struct {
	// IncludeMetadata adds the frontmatter / metadata block
	IncludeMetadata bool
	// SystemMessages keeps system messages that the transcript view hides
	SystemMessages bool
	Now            func() time.Time
}

func DefaultOptions() Options {
	return Options{IncludeMetadata: true, Now: time.Now}
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o Options) messages(chat models.ChatDetail) []models.Message {
	if o.SystemMessages {
		return chat.Messages
	}
	out := make([]models.Message, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		if m.Visible() {
			out = append(out, m)
		}
	}
	return out
}

// Formats lists the names accepted by ForFormat
var Formats = []string{"md", "json", "yaml"}

// ForFormat returns the exporter for "md", "json" or "yaml"
func ForFormat(name string, opts Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	case "yaml", "yml":
		return NewYAMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want one of %s)", name, strings.Join(Formats, ", "))
	}
}

// ToFile exports chat into dir and returns the written path
func ToFile(chat models.ChatDetail, e Exporter, dir string) (string, error) {
	content, err := e.Export(chat)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, Filename(chat, e))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Filename builds "chat_<title>_<id><ext>" from filesystem-safe characters
func Filename(chat models.ChatDetail, e Exporter) string {
	name := unsafeChars.ReplaceAllString(strings.TrimSpace(chat.Title), "_")
	name = strings.Trim(name, "_")
	if r := []rune(name); len(r) > 40 {
		name = string(r[:40])
	}
	if name == "" {
		name = "untitled"
	}
	id := unsafeChars.ReplaceAllString(chat.ID, "")
	if id == "" {
		return fmt.Sprintf("chat_%s%s", name, e.FileExtension())
	}
	return fmt.Sprintf("chat_%s_%s%s", name, id, e.FileExtension())
}

func validate(chat models.ChatDetail) error {
	if chat.ID == "" {
		return fmt.Errorf("chat has no id")
	}
	return nil
}
