// Package notify delivers reminder messages to user devices.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrEmptyDeviceToken is returned when a send has no target device.
var ErrEmptyDeviceToken = errors.New("device token is empty")

// Notifier sends a titled message to one device.
type Notifier interface {
	Send(ctx context.Context, deviceToken, title, body string) error
}

// PushNotifier posts messages to an HTTP push gateway.
type PushNotifier struct {
	url    string
	apiKey string
	client *http.Client
	logger *zap.Logger
}

type pushMessage struct {
	Token        string           `json:"token"`
	Notification pushNotification `json:"notification"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NewPushNotifier creates a PushNotifier. A zero timeout leaves the client unbounded.
func NewPushNotifier(url, apiKey string, timeout time.Duration, logger *zap.Logger) *PushNotifier {
	return &PushNotifier{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Send implements Notifier
func (n *PushNotifier) Send(ctx context.Context, deviceToken, title, body string) error {
	if deviceToken == "" {
		return ErrEmptyDeviceToken
	}

	payload, err := json.Marshal(pushMessage{
		Token:        deviceToken,
		Notification: pushNotification{Title: title, Body: body},
	})
	if err != nil {
		return fmt.Errorf("failed to encode push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("push gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push gateway returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	n.logger.Debug("Push notification sent", zap.String("title", title))
	return nil
}

// LogNotifier writes messages to the log instead of delivering them.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send implements Notifier
func (n *LogNotifier) Send(_ context.Context, deviceToken, title, body string) error {
	if deviceToken == "" {
		return ErrEmptyDeviceToken
	}
	n.logger.Info("Notification",
		zap.String("device", mask(deviceToken)),
		zap.String("title", title),
		zap.String("body", body),
	)
	return nil
}

// mask keeps only the last four characters of a token.
func mask(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
