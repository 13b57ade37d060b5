package export

import (
	"fmt"
	"strings"
	"time"

	"pinned/internal/models"
)

type MarkdownExporter struct {
	options Options
}

func NewMarkdownExporter(opts Options) *MarkdownExporter {
	return &MarkdownExporter{options: opts}
}

func (e *MarkdownExporter) Export(chat models.ChatDetail) ([]byte, error) {
	if err := validate(chat); err != nil {
		return nil, err
	}
	msgs := e.options.messages(chat)

	var sb strings.Builder
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", quoteYAML(chat.Title))
		fmt.Fprintf(&sb, "chat_id: %s\n", quoteYAML(chat.ID))
		if chat.Model != "" {
			fmt.Fprintf(&sb, "model: %s\n", quoteYAML(chat.Model))
		}
		if t, ok := models.ParseServerTime(chat.CreatedAt); ok {
			fmt.Fprintf(&sb, "created: %s\n", t.Format(time.RFC3339))
		}
		if t, ok := models.ParseServerTime(chat.UpdatedAt); ok {
			fmt.Fprintf(&sb, "updated: %s\n", t.Format(time.RFC3339))
		}
		fmt.Fprintf(&sb, "messages: %d\n", len(msgs))
		fmt.Fprintf(&sb, "exported: %s\n", e.options.now().Format(time.RFC3339))
		sb.WriteString("---\n\n")
	}

	title := strings.TrimSpace(chat.Title)
	if title == "" {
		title = "Untitled chat"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	for i, m := range msgs {
		fmt.Fprintf(&sb, "### %s\n\n", roleLabel(m.Role))
		sb.WriteString(strings.TrimSpace(m.Content))
		sb.WriteString("\n\n")
		if i < len(msgs)-1 {
			sb.WriteString("---\n\n")
		}
	}
	return []byte(sb.String()), nil
}

func (e *MarkdownExporter) FileExtension() string { return ".md" }

func (e *MarkdownExporter) MimeType() string { return "text/markdown" }

func roleLabel(r models.Role) string {
	switch r {
	case models.RoleUser:
		return "You"
	case models.RoleAssistant:
		return "Assistant"
	case models.RoleSystem:
		return "System"
	case "":
		return "Unknown"
	default:
		s := string(r)
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

// quoteYAML quotes frontmatter values that YAML would misread
func quoteYAML(s string) string {
	if s == "" || strings.ContainsAny(s, ":#'\"{}[]|>&*!%@`,\n") || strings.TrimSpace(s) != s {
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s) + `"`
	}
	return s
}
