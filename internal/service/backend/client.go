// Package backend talks to the chat widget's backend endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	ChatPath   = "/api/chat"
	SpeechPath = "/api/speech"

	// maxErrorBody 错误响应体最多保留的字节数
	maxErrorBody = 512
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Response *string `json:"response,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// SpeechRequest is the body of POST /api/speech. Voice is optional and
// accepts a voice ID or a premade alias.
type SpeechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// Client issues exactly one request per call and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = timeout
	}
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string, options ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

// Chat sends message and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	resp, err := c.post(ctx, ChatPath, ChatRequest{Message: message})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(ChatPath, resp); err != nil {
		return "", err
	}

	var payload ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &DecodeError{Endpoint: ChatPath, Err: err}
	}
	if payload.Error != "" {
		return "", &AppError{Endpoint: ChatPath, Message: payload.Error}
	}
	if payload.Response == nil {
		return "", &AppError{Endpoint: ChatPath, Message: "response field missing"}
	}
	return *payload.Response, nil
}

// Speech asks the backend to synthesize text and returns the raw audio.
func (c *Client) Speech(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.post(ctx, SpeechPath, SpeechRequest{Text: text})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(SpeechPath, resp); err != nil {
		return nil, err
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: SpeechPath, Err: err}
	}
	if len(audio) == 0 {
		return nil, &DecodeError{Endpoint: SpeechPath, Err: errors.New("empty audio payload")}
	}
	return audio, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s request", path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "create %s request", path)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: path, Err: err}
	}
	return resp, nil
}

func checkStatus(endpoint string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
