package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/statement-extractor/constants"
	"github.com/joseph-ayodele/statement-extractor/internal/validate"
)

var (
	extractSchema = validate.MustCompile("extract.json", map[string]any{
		"type":     "object",
		"required": []any{"content"},
		"properties": map[string]any{
			"content": map[string]any{"type": []any{"string", "null"}},
		},
	})
	submitSchema = validate.MustCompile("submit.json", map[string]any{
		"type":     "object",
		"required": []any{"record_id"},
		"properties": map[string]any{
			"record_id": map[string]any{"type": []any{"string", "number"}},
		},
	})
	pollSchema = validate.MustCompile("poll.json", map[string]any{
		"type":     "object",
		"required": []any{"processing_status"},
		"properties": map[string]any{
			"processing_status": map[string]any{"type": "string"},
			"content":           map[string]any{"type": []any{"string", "null"}},
		},
	})
)

// PollResult is the remote state of one async record.
type PollResult struct {
	Status  string
	Content string
}

// Completed reports whether the remote job finished successfully.
func (p PollResult) Completed() bool { return constants.IsRemoteCompleted(p.Status) }

// Failed reports whether the remote job reached a failure state.
func (p PollResult) Failed() bool { return constants.IsRemoteFailed(p.Status) }

// Extract runs a synchronous financial-markdown extraction and returns its content.
func (c *Client) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	raw, err := c.postMultipart(ctx, "/extract", upload{
		filename: filename,
		data:     data,
		fields: map[string]string{
			"output_type": constants.OutputTypeFinancialMarkdown,
			"model":       c.cfg.Model,
		},
	})
	if err != nil {
		return "", err
	}
	var out struct {
		Content *string `json:"content"`
	}
	if err := decode(raw, extractSchema, &out); err != nil {
		return "", err
	}
	if out.Content == nil {
		return "", nil
	}
	return *out.Content, nil
}

// Submit starts an async field extraction for one chunk and returns the record id.
func (c *Client) Submit(ctx context.Context, filename string, data []byte, fields string) (string, error) {
	raw, err := c.postMultipart(ctx, "/extract-async", upload{
		filename: filename,
		data:     data,
		fields: map[string]string{
			"output_type":      constants.OutputTypeSpecifiedFields,
			"model":            c.cfg.Model,
			"specified_fields": fields,
		},
	})
	if err != nil {
		return "", err
	}
	var out struct {
		RecordID json.RawMessage `json:"record_id"`
	}
	if err := decode(raw, submitSchema, &out); err != nil {
		return "", err
	}
	id := recordID(out.RecordID)
	if id == "" {
		return "", fmt.Errorf("%w: empty record_id", ErrMalformedResponse)
	}
	return id, nil
}

// Poll fetches the current status and content of an async record.
func (c *Client) Poll(ctx context.Context, recordID string) (PollResult, error) {
	raw, err := c.get(ctx, "/files/"+url.PathEscape(recordID))
	if err != nil {
		return PollResult{}, err
	}
	var out struct {
		ProcessingStatus string  `json:"processing_status"`
		Content          *string `json:"content"`
	}
	if err := decode(raw, pollSchema, &out); err != nil {
		return PollResult{}, err
	}
	res := PollResult{Status: out.ProcessingStatus}
	if out.Content != nil {
		res.Content = *out.Content
	}
	return res, nil
}

// recordID accepts both string and numeric ids.
func recordID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

// decode validates raw against schema before unmarshalling it into dst.
func decode(raw []byte, schema *jsonschema.Schema, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := validate.Value(schema, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
