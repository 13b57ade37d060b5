package export

import (
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"

	"pinned/internal/models"
)

// document is the JSON / YAML shape of an exported chat
type document struct {
	ID         string           `json:"id" yaml:"id"`
	Title      string           `json:"title" yaml:"title"`
	Model      string           `json:"model,omitempty" yaml:"model,omitempty"`
	CreatedAt  string           `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt  string           `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	ExportedAt string           `json:"exported_at,omitempty" yaml:"exported_at,omitempty"`
	Messages   []models.Message `json:"messages" yaml:"messages"`
}

func newDocument(chat models.ChatDetail, opts Options) document {
	d := document{
		ID:       chat.ID,
		Title:    chat.Title,
		Messages: opts.messages(chat),
	}
	if opts.IncludeMetadata {
		d.Model = chat.Model
		d.CreatedAt = chat.CreatedAt
		d.UpdatedAt = chat.UpdatedAt
		d.ExportedAt = opts.now().Format(time.RFC3339)
	}
	return d
}

type JSONExporter struct {
	options Options
}

func NewJSONExporter(opts Options) *JSONExporter {
	return &JSONExporter{options: opts}
}

func (e *JSONExporter) Export(chat models.ChatDetail) ([]byte, error) {
	if err := validate(chat); err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(newDocument(chat, e.options), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func (e *JSONExporter) FileExtension() string { return ".json" }

func (e *JSONExporter) MimeType() string { return "application/json" }

type YAMLExporter struct {
	options Options
}

func NewYAMLExporter(opts Options) *YAMLExporter {
	return &YAMLExporter{options: opts}
}

func (e *YAMLExporter) Export(chat models.ChatDetail) ([]byte, error) {
	if err := validate(chat); err != nil {
		return nil, err
	}
	return yaml.Marshal(newDocument(chat, e.options))
}

func (e *YAMLExporter) FileExtension() string { return ".yaml" }

func (e *YAMLExporter) MimeType() string { return "application/yaml" }
