// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/genstudio-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports chats to JSON. Metadata and timestamp options do not
// apply; the full chat record is always written.
type JSONExporter struct {
	options *Options
}

// jsonExport is the document JSONExporter writes.
type jsonExport struct {
	Chat       *model.ChatDetail `json:"chat"`
	ExportedAt time.Time         `json:"exported_at"`
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a chat to indented JSON.
func (e *JSONExporter) Export(chat *model.ChatDetail) ([]byte, error) {
	msgs, err := turns(chat)
	if err != nil {
		return nil, err
	}
	out := *chat
	out.Messages = msgs
	data, err := json.MarshalIndent(jsonExport{Chat: &out, ExportedAt: e.options.now().UTC()}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
