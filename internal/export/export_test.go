package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"pinned/internal/models"
)

func sampleChat() models.ChatDetail {
	return models.ChatDetail{
		ID:        "abc-123",
		Title:     "Go: channels & select",
		Model:     "llama3-8b-8192",
		CreatedAt: "2024-05-01T10:00:00.000000",
		UpdatedAt: "2024-05-01T10:05:00.000000",
		Messages: []models.Message{
			{Role: models.RoleSystem, Content: "You are helpful."},
			{Role: models.RoleUser, Content: "How does select work?"},
			{Role: models.RoleAssistant, Content: "It waits on several channels.\n\n```go\nselect {}\n```"},
		},
	}
}

func fixedOptions() Options {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return opts
}

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter(fixedOptions()).Export(sampleChat())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, `title: "Go: channels & select"`)
	assert.Contains(t, md, "chat_id: abc-123\n")
	assert.Contains(t, md, "messages: 2\n")
	assert.Contains(t, md, "exported: 2024-06-01T09:00:00Z\n")
	assert.Contains(t, md, "# Go: channels & select\n")
	assert.Contains(t, md, "### You\n\nHow does select work?")
	assert.Contains(t, md, "```go\nselect {}\n```")
	assert.NotContains(t, md, "You are helpful.")
}

func TestMarkdownWithoutMetadata(t *testing.T) {
	opts := fixedOptions()
	opts.IncludeMetadata = false
	opts.SystemMessages = true
	out, err := NewMarkdownExporter(opts).Export(sampleChat())
	require.NoError(t, err)
	md := string(out)
	assert.True(t, strings.HasPrefix(md, "# Go: channels & select"))
	assert.Contains(t, md, "### System\n\nYou are helpful.")
}

func TestJSONExport(t *testing.T) {
	out, err := NewJSONExporter(fixedOptions()).Export(sampleChat())
	require.NoError(t, err)

	var doc document
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "abc-123", doc.ID)
	assert.Equal(t, "llama3-8b-8192", doc.Model)
	assert.Equal(t, "2024-06-01T09:00:00Z", doc.ExportedAt)
	require.Len(t, doc.Messages, 2)
	assert.Equal(t, models.RoleUser, doc.Messages[0].Role)
}

func TestYAMLExport(t *testing.T) {
	out, err := NewYAMLExporter(fixedOptions()).Export(sampleChat())
	require.NoError(t, err)

	var doc document
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "Go: channels & select", doc.Title)
	require.Len(t, doc.Messages, 2)
	assert.Contains(t, doc.Messages[1].Content, "select {}")
}

func TestExportRequiresID(t *testing.T) {
	for _, name := range Formats {
		e, err := ForFormat(name, DefaultOptions())
		require.NoError(t, err)
		_, err = e.Export(models.ChatDetail{Title: "x"})
		assert.Error(t, err, name)
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		mime string
	}{
		{"md", ".md", "text/markdown"},
		{"Markdown", ".md", "text/markdown"},
		{"json", ".json", "application/json"},
		{"yml", ".yaml", "application/yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ForFormat(tt.name, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.ext, e.FileExtension())
			assert.Equal(t, tt.mime, e.MimeType())
		})
	}

	_, err := ForFormat("pdf", DefaultOptions())
	assert.ErrorContains(t, err, "unknown export format")
}

func TestToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := ToFile(sampleChat(), NewMarkdownExporter(fixedOptions()), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chat_Go_channels_select_abc-123.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "How does select work?")
}

func TestFilenameFallback(t *testing.T) {
	name := Filename(models.ChatDetail{ID: "x1", Title: "  ???  "}, NewJSONExporter(DefaultOptions()))
	assert.Equal(t, "chat_untitled_x1.json", name)
}
