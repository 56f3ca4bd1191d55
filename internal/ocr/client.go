package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const secretHeader = "X-OCR-SECRET"

// UpstreamError describes a non-2xx reply from the OCR service. Details
// carries the upstream body, JSON-decoded when possible, else the raw text.
type UpstreamError struct {
	StatusCode int
	Details    any
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream OCR status %d", e.StatusCode)
}

// Client issues single multipart recognition requests to the OCR service.
type Client struct {
	url        string
	secret     string
	httpClient *http.Client
}

// NewClient constructs a Client. The request timeout defaults to 30s and can
// be overridden with OCR_TIMEOUT_SECONDS.
func NewClient(url, secret string) *Client {
	timeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OCR_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		url:    strings.TrimSpace(url),
		secret: strings.TrimSpace(secret),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether both the endpoint URL and the shared secret are
// set. Callers must check this before attempting any I/O.
func (c *Client) Configured() bool {
	return c != nil && c.url != "" && c.secret != ""
}

// Recognize sends one recognition request and returns the upstream JSON
// payload verbatim. No retries: the call is at-most-once.
func (c *Client) Recognize(ctx context.Context, image []byte, fileName, format string) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("ocr client is not configured")
	}

	envelope, err := json.Marshal(newEnvelope(format))
	if err != nil {
		return nil, fmt.Errorf("marshal request envelope: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("message", string(envelope)); err != nil {
		return nil, fmt.Errorf("write message field: %w", err)
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create file field: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write file field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set(secretHeader, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ocr response read: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Details:    decodeDetails(raw),
		}
	}

	if !json.Valid(raw) {
		return nil, fmt.Errorf("ocr response parse: not valid JSON")
	}
	return json.RawMessage(raw), nil
}

// decodeDetails returns the body as structured data when it parses as JSON,
// else as the raw text.
func decodeDetails(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var parsed any
	if err := json.Unmarshal(trimmed, &parsed); err == nil {
		return parsed
	}
	return string(trimmed)
}
