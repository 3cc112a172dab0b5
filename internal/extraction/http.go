package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/statement-extractor/constants"
)

// StatusError is a non-2xx response from the extraction service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("extraction service status %d: %s", e.StatusCode, e.Body)
}

// ErrMalformedResponse marks a 2xx response whose body is not the expected JSON shape.
var ErrMalformedResponse = errors.New("malformed extraction response")

// upload is one multipart file + form fields request body.
type upload struct {
	filename string
	data     []byte
	fields   map[string]string
}

func (u upload) encode() (*bytes.Buffer, string, error) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, u.filename))
	h.Set("Content-Type", constants.PDFMimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(u.data); err != nil {
		return nil, "", err
	}
	for k, v := range u.fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

// postMultipart sends an upload and returns the raw response body.
func (c *Client) postMultipart(ctx context.Context, path string, u upload) ([]byte, error) {
	body, contentType, err := u.encode()
	if err != nil {
		return nil, fmt.Errorf("encode multipart: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.send(req, body.Len())
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.send(req, 0)
}

// send waits on the rate limiter, attaches the bearer credential and logs the exchange.
func (c *Client) send(req *http.Request, contentLength int) ([]byte, error) {
	reqID := uuid.New().String()

	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	start := time.Now()

	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("extraction.http.request",
		"req_id", reqID,
		"method", req.Method,
		"path", req.URL.Path,
		"content_length", contentLength,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("extraction.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("extraction http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.Warn("extraction.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("extraction.http.response",
		"req_id", reqID,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
