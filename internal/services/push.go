package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/utils"
)

const expoDeviceNotRegistered = "DeviceNotRegistered"

// PushMessage is one Expo push notification.
type PushMessage struct {
	To    string         `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Sound string         `json:"sound,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// PushTicket is Expo's per-message receipt.
type PushTicket struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

// DeviceNotRegistered reports whether the ticket means the token is
// dead and should be deactivated.
func (t PushTicket) DeviceNotRegistered() bool {
	return t.Status == "error" && t.Details.Error == expoDeviceNotRegistered
}

type PushClient interface {
	Send(ctx context.Context, messages []PushMessage) ([]PushTicket, error)
}

type expoPushClient struct {
	log         *logger.Logger
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

func NewExpoPushClient(log *logger.Logger) PushClient {
	timeout := time.Duration(utils.GetEnvAsInt("EXPO_PUSH_TIMEOUT_SECONDS", 15, nil)) * time.Second
	return &expoPushClient{
		log:         log.With("client", "ExpoPush"),
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     utils.GetEnv("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send", nil),
		accessToken: utils.GetEnv("EXPO_ACCESS_TOKEN", "", nil),
	}
}

func (c *expoPushClient) Send(ctx context.Context, messages []PushMessage) ([]PushTicket, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode push messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read push response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("push endpoint returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed struct {
		Data []PushTicket `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode push response: %w", err)
	}
	return parsed.Data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
