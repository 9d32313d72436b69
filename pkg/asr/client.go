package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client fetches word-level recogniser output from a running whisper-server
// binary (whisper.cpp's REST frontend, POST /inference). The audio pipeline
// runs one server per worker host; the background alignment job submits the
// generated speech track once and receives per-word timestamps.
//
// Client is safe for concurrent use.
type Client struct {
	serverURL  string
	language   string
	httpClient *http.Client
}

// ClientOption is a functional option for [Client].
type ClientOption func(*Client)

// WithLanguage sets the recognition language hint sent to the server
// (e.g., "de"). When empty the server auto-detects.
func WithLanguage(language string) ClientOption {
	return func(c *Client) {
		c.language = language
	}
}

// WithHTTPClient replaces the underlying HTTP client. The default has a
// 5-minute timeout sized for full-article audio tracks.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient returns a Client for the whisper-server at serverURL
// (e.g., "http://localhost:8080"). A trailing slash is stripped.
func NewClient(serverURL string, opts ...ClientOption) (*Client, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("asr: server URL must not be empty")
	}
	c := &Client{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// inferenceResponse is the verbose_json response body of POST /inference,
// reduced to the fields the aligner needs.
type inferenceResponse struct {
	Segments []struct {
		Words []struct {
			Word  string  `json:"word"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			P     float64 `json:"probability"`
		} `json:"words"`
	} `json:"segments"`
}

// Recognize submits the WAV-encoded audio track in r and returns the
// word-level recogniser output in playback order.
func (c *Client) Recognize(ctx context.Context, r io.Reader) ([]RecognizedWord, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "track.wav")
	if err != nil {
		return nil, fmt.Errorf("asr: create form file: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("asr: copy audio: %w", err)
	}
	fields := map[string]string{
		"response_format": "verbose_json",
		"word_timestamps": "true",
	}
	if c.language != "" {
		fields["language"] = c.language
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("asr: write field %q: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("asr: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/inference", &body)
	if err != nil {
		return nil, fmt.Errorf("asr: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("asr: http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asr: unexpected status %d", resp.StatusCode)
	}

	var result inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("asr: decode response: %w", err)
	}

	var words []RecognizedWord
	for _, seg := range result.Segments {
		for _, w := range seg.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" {
				continue
			}
			words = append(words, RecognizedWord{
				Text:       text,
				Start:      w.Start,
				End:        w.End,
				Confidence: w.P,
			})
		}
	}
	return words, nil
}
