package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Result is the gateway's per-device outcome.
type Result struct {
	Sent   int
	Failed int
	Reason string
}

// Gateway delivers a composed payload to one device.
type Gateway interface {
	Send(ctx context.Context, p Payload, deviceToken string) (Result, error)
}

// --------------------------------------------------------------------------
// FCM-style HTTP gateway
// --------------------------------------------------------------------------

const fcmTimeout = 10 * time.Second

// FCMClient sends pushes through an FCM-compatible HTTP endpoint using a
// server key. Nil-safe: an unconfigured client drops sends with a logged
// notice instead of failing the cycle.
type FCMClient struct {
	endpoint   string
	serverKey  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFCMClient creates a gateway client. Returns nil when serverKey is
// empty (push delivery disabled, e.g. local development).
func NewFCMClient(endpoint, serverKey string, logger *slog.Logger) *FCMClient {
	if serverKey == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FCMClient{
		endpoint:   endpoint,
		serverKey:  serverKey,
		httpClient: &http.Client{Timeout: fcmTimeout},
		logger:     logger,
	}
}

type fcmMessage struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Sound    string `json:"sound,omitempty"`
	Badge    int    `json:"badge,omitempty"`
	Tag      string `json:"tag,omitempty"`
	ImageURL string `json:"image,omitempty"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		Error string `json:"error"`
	} `json:"results"`
}

// Send delivers one payload to one device token.
func (c *FCMClient) Send(ctx context.Context, p Payload, deviceToken string) (Result, error) {
	if c == nil {
		return Result{}, nil // push disabled
	}

	msg := fcmMessage{
		To: deviceToken,
		Notification: fcmNotification{
			Title:    p.Title,
			Body:     p.Body,
			Sound:    p.Sound,
			Badge:    p.Badge,
			Tag:      p.ThreadID,
			ImageURL: p.ImageURL,
		},
		Data: p.Data,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return Result{}, fmt.Errorf("marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Failed: 1, Reason: "network"}, fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Failed: 1, Reason: "read"}, fmt.Errorf("read push response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{Failed: 1, Reason: fmt.Sprintf("http %d", resp.StatusCode)},
			fmt.Errorf("push gateway returned %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var parsed fcmResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{Sent: 1}, nil // delivered; response shape drifted
	}
	res := Result{Sent: parsed.Success, Failed: parsed.Failure}
	if parsed.Failure > 0 && len(parsed.Results) > 0 {
		res.Reason = parsed.Results[0].Error
	}
	return res, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
