// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/jeranaias/genstudio-tui/internal/model"
)

// Upload is a file sent with a generate request.
type Upload struct {
	// CorrelationID is echoed back on the stored attachment.
	CorrelationID string
	Name          string
	MimeType      string
	Body          io.Reader
}

// GenerateRequest is one chat turn. A zero ChatID asks the server to
// create a new chat.
type GenerateRequest struct {
	ChatID      model.ID `json:"chat_id"`
	Prompt      string   `json:"prompt"`
	Model       string   `json:"model"`
	Temperature float64  `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
	Files       []Upload `json:"-"`
}

// GenerateResponse is the server's answer to a chat turn.
type GenerateResponse struct {
	ChatID    model.ID        `json:"chat_id"`
	ChatTitle string          `json:"chat_title"`
	Messages  []model.Message `json:"messages"`
}

// LastAssistant returns the final assistant message of the response.
func (r *GenerateResponse) LastAssistant() (model.Message, bool) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == model.RoleAssistant {
			return r.Messages[i], true
		}
	}
	return model.Message{}, false
}

// LastUser returns the final user message of the response, which carries
// the stored attachments of the turn.
func (r *GenerateResponse) LastUser() (model.Message, bool) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == model.RoleUser {
			return r.Messages[i], true
		}
	}
	return model.Message{}, false
}

// GenerateText sends a chat turn. Requests without files are JSON; with
// files they are multipart with one "files" part per upload and the
// matching correlation ids as repeated "attachment_ids" fields.
func (c *Client) GenerateText(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var (
		body        io.Reader
		contentType string
	)
	if len(req.Files) == 0 {
		data, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	} else {
		buf, ct, err := encodeMultipart(req)
		if err != nil {
			return nil, err
		}
		body = buf
		contentType = ct
	}

	resp, err := c.Request(ctx, http.MethodPost, "/api/ai/generate-text", body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out GenerateResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeMultipart(req GenerateRequest) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := [][2]string{
		{"prompt", req.Prompt},
		{"model", req.Model},
		{"temperature", strconv.FormatFloat(req.Temperature, 'f', -1, 64)},
		{"max_tokens", strconv.Itoa(req.MaxTokens)},
	}
	if !req.ChatID.IsZero() {
		fields = append(fields, [2]string{"chat_id", req.ChatID.String()})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}

	for _, up := range req.Files {
		if err := w.WriteField("attachment_ids", up.CorrelationID); err != nil {
			return nil, "", fmt.Errorf("failed to write attachment id: %w", err)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(up.Name)))
		mt := up.MimeType
		if mt == "" {
			mt = "application/octet-stream"
		}
		h.Set("Content-Type", mt)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part for %s: %w", up.Name, err)
		}
		if up.Body != nil {
			if _, err := io.Copy(part, up.Body); err != nil {
				return nil, "", fmt.Errorf("failed to read %s: %w", up.Name, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
