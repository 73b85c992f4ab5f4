package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const DefaultTimeout = 30 * time.Second

// answerFields are tried in order to find the text of a chatflow response.
var answerFields = []string{"text", "answer", "message", "content", "response"}

// ChatflowClient posts {"question": prompt} to a chatflow prediction endpoint.
type ChatflowClient struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
}

type ChatflowOption func(*ChatflowClient)

func WithTimeout(d time.Duration) ChatflowOption {
	return func(c *ChatflowClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) ChatflowOption {
	return func(c *ChatflowClient) {
		c.client = hc
	}
}

func NewChatflowClient(endpoint string, opts ...ChatflowOption) *ChatflowClient {
	c := &ChatflowClient{
		endpoint: endpoint,
		client:   http.DefaultClient,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ChatflowClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"question": prompt})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chatflow request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chatflow error %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	text := extractText(data)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// extractText pulls the answer out of the first known field. Bodies that are a
// bare JSON string are returned as is, anything else is returned raw.
func extractText(data []byte) string {
	if !gjson.ValidBytes(data) {
		return string(data)
	}
	root := gjson.ParseBytes(data)
	if root.Type == gjson.String {
		return root.String()
	}
	for _, field := range answerFields {
		if v := root.Get(field); v.Exists() && v.Type != gjson.Null {
			return v.String()
		}
	}
	return root.Raw
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
