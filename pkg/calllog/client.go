// Package calllog posts finished-call records to the external call-log sink.
package calllog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/atlascommand/voice-bridge/internal/httpc"
)

// StatusCompleted is the default record status.
const StatusCompleted = "COMPLETED"

// Record is the call-log payload. Absent fields are serialized as explicit
// null, which is why everything optional is a pointer without omitempty.
type Record struct {
	TwilioCallSID            *string    `json:"twilio_call_sid"`
	OrgID                    *string    `json:"org_id"`
	ProspectID               *string    `json:"prospect_id"`
	Status                   string     `json:"status"`
	Direction                *string    `json:"direction"`
	ToNumber                 *string    `json:"to_number"`
	FromNumber               *string    `json:"from_number"`
	Transcript               *string    `json:"transcript"`
	AISummary                *string    `json:"ai_summary"`
	StartedAt                *time.Time `json:"started_at"`
	EndedAt                  *time.Time `json:"ended_at"`
	Model                    *string    `json:"model"`
	RecordingURL             *string    `json:"recording_url"`
	RecordingDurationSeconds *float64   `json:"recording_duration_seconds"`
}

// String returns a pointer to s, for optional record fields.
func String(s string) *string { return &s }

// Time returns a pointer to t, for optional record fields.
func Time(t time.Time) *time.Time { return &t }

// Client posts records to the sink endpoint.
type Client struct {
	url     string
	anonKey string
	secret  string
	http    *http.Client
}

// New creates a sink client. The shared secret is sent on every request so
// the sink can authenticate the bridge.
func New(url, anonKey, secret string) *Client {
	return &Client{
		url:     url,
		anonKey: anonKey,
		secret:  secret,
		http:    httpc.NewClient(15 * time.Second),
	}
}

// Post writes one record. A missing status defaults to COMPLETED.
func (c *Client) Post(ctx context.Context, rec Record) error {
	if rec.Status == "" {
		rec.Status = StatusCompleted
	}

	body, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("calllog: encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("calllog: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("X-Webhook-Secret", c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calllog: post record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("calllog: sink returned status %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
