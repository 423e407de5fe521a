package expo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// BatchLimit is the maximum number of messages the Expo push API accepts in
// one request.
const BatchLimit = 100

// Message is a single push message addressed to one device token.
type Message struct {
	To    string                 `json:"to"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
	Sound string                 `json:"sound,omitempty"`
	Badge *int                   `json:"badge,omitempty"`
}

// Sender posts push message batches to the gateway.
type Sender interface {
	Publish(ctx context.Context, messages []Message) error
}

type client struct {
	httpClient *http.Client
	url        string
}

func NewClient(url string) Sender {
	return &client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		url:        url,
	}
}

// Publish sends one batch of messages. Callers are responsible for keeping
// batches within BatchLimit.
func (c *client) Publish(ctx context.Context, messages []Message) error {
	body, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal push batch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push gateway returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

// IsPushToken reports whether the string looks like an Expo device token.
// Tokens that don't match are dropped before batching.
func IsPushToken(token string) bool {
	return (strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")) &&
		strings.HasSuffix(token, "]")
}
