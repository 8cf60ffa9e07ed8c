// Package notify contains the SMS gateway client. Sending is best
// effort; the sale that triggered a message never waits on it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SMSClient talks to an external SMS gateway over HTTP.
type SMSClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSMSClient creates a client for the gateway at baseURL. An empty
// baseURL yields a disabled client whose Send is a no-op.
func NewSMSClient(baseURL, apiKey string) *SMSClient {
	return &SMSClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send posts one message to the gateway.
func (c *SMSClient) Send(ctx context.Context, mobile, message string) error {
	if c == nil || c.baseURL == "" {
		return nil
	}

	body, err := json.Marshal(sendRequest{To: mobile, Message: message})
	if err != nil {
		return fmt.Errorf("marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
