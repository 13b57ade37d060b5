// Package api is the HTTP client for the Pinned Thoughts chat service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pinned/internal/models"
)

const DefaultBaseURL = "https://pinnedthoughts.onrender.com"

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// SendRequest is the body of POST /chat. A nil ChatID starts a new chat.
type SendRequest struct {
	Message string  `json:"message"`
	ChatID  *string `json:"chat_id"`
	Model   string  `json:"model,omitempty"`
}

type SendResponse struct {
	ChatID   string `json:"chat_id"`
	Message  string `json:"message,omitempty"`
	Response string `json:"response"`
}

type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type modelsResponse struct {
	Models map[string]string `json:"models"`
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// Client talks to the remote chat API. It applies no timeout and never retries;
// callers bound requests with their context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ListChats(ctx context.Context) ([]models.ChatSummary, error) {
	var chats []models.ChatSummary
	if err := c.do(ctx, "list chats", http.MethodGet, "/chats", nil, nil, &chats); err != nil {
		return nil, err
	}
	if chats == nil {
		chats = []models.ChatSummary{}
	}
	return chats, nil
}

func (c *Client) GetChat(ctx context.Context, id string) (models.ChatDetail, error) {
	var chat models.ChatDetail
	err := c.do(ctx, "get chat", http.MethodGet, "/chats/"+url.PathEscape(id), nil, nil, &chat)
	return chat, err
}

func (c *Client) RenameChat(ctx context.Context, id, title string) error {
	q := url.Values{}
	q.Set("title", title)
	return c.do(ctx, "rename chat", http.MethodPut, "/chats/"+url.PathEscape(id)+"/title", q, nil, nil)
}

func (c *Client) DeleteChat(ctx context.Context, id string) error {
	return c.do(ctx, "delete chat", http.MethodDelete, "/chats/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Send(ctx context.Context, req SendRequest) (SendResponse, error) {
	var resp SendResponse
	if err := c.do(ctx, "send message", http.MethodPost, "/chat", nil, req, &resp); err != nil {
		return SendResponse{}, err
	}
	if resp.ChatID == "" {
		return SendResponse{}, &ParseError{Op: "send message", Cause: fmt.Errorf("response has no chat_id")}
	}
	return resp, nil
}

func (c *Client) ListModels(ctx context.Context) ([]models.ModelOption, error) {
	var body modelsResponse
	if err := c.do(ctx, "list models", http.MethodGet, "/models", nil, nil, &body); err != nil {
		return nil, err
	}
	return models.ModelOptionsFromMap(body.Models), nil
}

func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var h HealthStatus
	err := c.do(ctx, "health", http.MethodGet, "/health", nil, nil, &h)
	return h, err
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &NetworkError{Op: op, Cause: err}
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.With(zap.String("op", op), zap.String("request_id", reqID))
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &NetworkError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Cause: err}
	}
	log.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{Op: op, StatusCode: resp.StatusCode, Detail: parseDetail(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		if out != nil {
			return &ParseError{Op: op, Cause: io.ErrUnexpectedEOF}
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ParseError{Op: op, Cause: err}
	}
	return nil
}

// parseDetail extracts FastAPI's {"detail": ...}. Validation errors send a list.
func parseDetail(data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	return string(body.Detail)
}
