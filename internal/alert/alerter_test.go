package alert

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAlert() Alert {
	return Alert{
		Type:      AlertTypeDeadLetter,
		Component: "consumer",
		Subject:   "uniswap",
		Title:     "Generation job dead-lettered",
		Message:   "retry budget exhausted",
		Fields: map[string]string{
			"airdrop_id": "42",
			"retries":    "3",
		},
	}
}

// TestMultiAlerter_Send_AllChannels verifies that MultiAlerter fans out to
// every registered alerter (Telegram + webhook) on a single Send call.
func TestMultiAlerter_Send_AllChannels(t *testing.T) {
	var telegramReceived atomic.Int32
	var webhookReceived atomic.Int32

	telegramSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		telegramReceived.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer telegramSrv.Close()

	webhookSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		webhookReceived.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer webhookSrv.Close()

	telegram := NewTelegramAlerter("token", "chat")
	telegram.apiURL = telegramSrv.URL
	webhook := NewWebhookAlerter(webhookSrv.URL)

	multi := NewMultiAlerter(time.Hour, testLogger(), telegram, webhook)

	err := multi.Send(context.Background(), testAlert())
	require.NoError(t, err)

	assert.Equal(t, int32(1), telegramReceived.Load(), "Telegram server should receive exactly 1 request")
	assert.Equal(t, int32(1), webhookReceived.Load(), "Webhook server should receive exactly 1 request")
}

// TestMultiAlerter_CooldownDedup verifies that sending the same alert twice
// within the cooldown window only dispatches one actual request.
func TestMultiAlerter_CooldownDedup(t *testing.T) {
	var received atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	webhook := NewWebhookAlerter(srv.URL)
	multi := NewMultiAlerter(time.Second, testLogger(), webhook)

	alert := testAlert()

	err := multi.Send(context.Background(), alert)
	require.NoError(t, err)

	// Send the same alert again immediately; should be suppressed.
	err = multi.Send(context.Background(), alert)
	require.NoError(t, err)

	assert.Equal(t, int32(1), received.Load(), "Only the first send should go through; second should be deduped by cooldown")
}

// TestMultiAlerter_CooldownExpiry verifies that after the cooldown window
// expires, a duplicate alert is dispatched again.
func TestMultiAlerter_CooldownExpiry(t *testing.T) {
	var received atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	webhook := NewWebhookAlerter(srv.URL)
	// Use a very short cooldown so the test runs fast.
	multi := NewMultiAlerter(time.Millisecond, testLogger(), webhook)

	alert := testAlert()

	err := multi.Send(context.Background(), alert)
	require.NoError(t, err)

	// Wait for the cooldown to expire.
	time.Sleep(5 * time.Millisecond)

	err = multi.Send(context.Background(), alert)
	require.NoError(t, err)

	assert.Equal(t, int32(2), received.Load(), "Both sends should go through after cooldown expires")
}

// TestMultiAlerter_PartialFailure verifies that when one alerter fails,
// the MultiAlerter returns an error but the working alerter still receives
// the alert.
func TestMultiAlerter_PartialFailure(t *testing.T) {
	var goodReceived atomic.Int32

	// Failing server returns 500.
	failSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failSrv.Close()

	// Good server returns 200.
	goodSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		goodReceived.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer goodSrv.Close()

	failAlerter := NewWebhookAlerter(failSrv.URL)
	goodAlerter := NewWebhookAlerter(goodSrv.URL)

	multi := NewMultiAlerter(time.Hour, testLogger(), failAlerter, goodAlerter)

	err := multi.Send(context.Background(), testAlert())
	assert.Error(t, err, "MultiAlerter should return error when one alerter fails")
	assert.Equal(t, int32(1), goodReceived.Load(), "Good alerter should still receive the alert despite partial failure")
}

// TestTelegramAlerter_PayloadFormat verifies the JSON payload sent to the
// Telegram API contains chat_id and a text field with type, component,
// subject, title, message, and fields.
func TestTelegramAlerter_PayloadFormat(t *testing.T) {
	var capturedBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		capturedBody = body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	telegram := NewTelegramAlerter("token", "-100123")
	telegram.apiURL = srv.URL

	err := telegram.Send(context.Background(), testAlert())
	require.NoError(t, err)
	require.NotEmpty(t, capturedBody, "Server should have received a request body")

	var payload map[string]string
	err = json.Unmarshal(capturedBody, &payload)
	require.NoError(t, err, "Payload should be valid JSON")

	assert.Equal(t, "-100123", payload["chat_id"])

	text, ok := payload["text"]
	require.True(t, ok, "Payload must have a 'text' field")
	assert.Contains(t, text, string(AlertTypeDeadLetter))
	assert.Contains(t, text, "consumer/uniswap")
	assert.Contains(t, text, "Generation job dead-lettered")
	assert.Contains(t, text, "retry budget exhausted")
	assert.Contains(t, text, "airdrop_id: 42")
}

// TestWebhookAlerter_PayloadFormat verifies the JSON payload sent to the
// generic webhook contains type, component, subject, title, message,
// fields, and time.
func TestWebhookAlerter_PayloadFormat(t *testing.T) {
	var capturedBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		capturedBody = body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	webhook := NewWebhookAlerter(srv.URL)

	beforeSend := time.Now().UTC().Truncate(time.Second)
	err := webhook.Send(context.Background(), testAlert())
	require.NoError(t, err)
	require.NotEmpty(t, capturedBody, "Server should have received a request body")

	var payload map[string]any
	err = json.Unmarshal(capturedBody, &payload)
	require.NoError(t, err, "Payload should be valid JSON")

	assert.Equal(t, string(AlertTypeDeadLetter), payload["type"])
	assert.Equal(t, "consumer", payload["component"])
	assert.Equal(t, "uniswap", payload["subject"])
	assert.Equal(t, "Generation job dead-lettered", payload["title"])
	assert.Equal(t, "retry budget exhausted", payload["message"])

	fields, ok := payload["fields"].(map[string]any)
	require.True(t, ok, "Payload must have a 'fields' object")
	assert.Equal(t, "42", fields["airdrop_id"])
	assert.Equal(t, "3", fields["retries"])

	// Verify time field is a valid RFC3339 timestamp close to now.
	timeStr, ok := payload["time"].(string)
	require.True(t, ok, "Payload must have a 'time' string field")
	parsedTime, err := time.Parse(time.RFC3339, timeStr)
	require.NoError(t, err, "Time field must be valid RFC3339")
	assert.False(t, parsedTime.Before(beforeSend), "Timestamp should not be before the send call")
	assert.WithinDuration(t, time.Now().UTC(), parsedTime, 5*time.Second, "Timestamp should be close to now")
}
