// Package realtime provides the outbound WebSocket link to the speech/LLM
// realtime service: session configuration, input audio append, and the typed
// event stream coming back.
package realtime

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

// DefaultURL is the realtime service endpoint; the model is passed as a
// query parameter on dial.
const DefaultURL = "wss://api.openai.com/v1/realtime"

// Common errors returned by the client.
var (
	ErrNotConnected = errors.New("realtime: not connected")
)

// Client manages one WebSocket session to the realtime service. A session
// owns exactly one Client for its lifetime; there is no reconnection.
type Client struct {
	apiKey string
	model  string
	url    string

	ws   *websocket.Conn
	wsMu sync.Mutex

	mu        sync.Mutex
	connected bool
	closed    bool

	// Callbacks, set before Connect. All fire on the read-loop goroutine.
	OnSessionCreated func()
	OnSpeechStarted  func()
	OnSpeechStopped  func()
	OnAudioDelta     func(audioB64 string) // base64 µ-law 8 kHz
	OnTextDelta      func(delta string)
	OnResponseDone   func()
	OnTranscript     func(text string)
	OnError          func(err error)
	OnClose          func(err error)
}

// NewClient creates a client for the given API key and model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		url:    DefaultURL,
	}
}

// serverEvent is the subset of the event stream the bridge consumes. All
// other event types are ignored.
type serverEvent struct {
	Type       string    `json:"type"`
	Delta      string    `json:"delta,omitempty"`
	Transcript string    `json:"transcript,omitempty"`
	Error      *APIError `json:"error,omitempty"`
}

// APIError is the error object carried by an error event.
type APIError struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("realtime: api error %s: %s", e.Code, e.Message)
}

// clientEvent is the envelope for everything the bridge sends.
type clientEvent struct {
	Type     string          `json:"type"`
	Session  *SessionConfig  `json:"session,omitempty"`
	Audio    string          `json:"audio,omitempty"`
	Response *ResponseConfig `json:"response,omitempty"`
}

// Connect dials the realtime endpoint and starts the read loop.
func (c *Client) Connect() error {
	url := fmt.Sprintf("%s?model=%s", c.url, c.model)

	header := make(map[string][]string)
	header["Authorization"] = []string{"Bearer " + c.apiKey}
	header["OpenAI-Beta"] = []string{"realtime=v1"}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	ws, _, err := dialer.Dial(url, header)
	if err != nil {
		return fmt.Errorf("realtime: connect: %w", err)
	}

	ws.SetPingHandler(func(appData string) error {
		c.wsMu.Lock()
		defer c.wsMu.Unlock()
		return ws.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})
	ws.SetReadDeadline(time.Now().Add(120 * time.Second))

	c.mu.Lock()
	c.ws = ws
	c.connected = true
	c.mu.Unlock()

	go c.handleMessages()
	go c.keepAlive()

	return nil
}

// keepAlive sends periodic pings so idle links are not reaped by proxies.
func (c *Client) keepAlive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}

		c.wsMu.Lock()
		err := c.ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second))
		c.wsMu.Unlock()
		if err != nil {
			return
		}
	}
}

// UpdateSession sends a session.update event. It must be sent before any
// audio is appended.
func (c *Client) UpdateSession(cfg SessionConfig) error {
	return c.sendJSON(clientEvent{Type: "session.update", Session: &cfg})
}

// CreateResponse asks the peer to produce a response following the given
// instructions.
func (c *Client) CreateResponse(instructions string) error {
	return c.sendJSON(clientEvent{
		Type:     "response.create",
		Response: &ResponseConfig{Instructions: instructions},
	})
}

// AppendAudio appends one frame of 16 kHz PCM16 audio to the peer's input
// buffer. Turn boundaries are detected server-side; no commit is sent.
func (c *Client) AppendAudio(pcm16 []byte) error {
	return c.sendJSON(clientEvent{
		Type:  "input_audio_buffer.append",
		Audio: base64.StdEncoding.EncodeToString(pcm16),
	})
}

// IsConnected reports whether the link is open.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected && !c.closed
}

// Close closes the link. It is safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.connected = false
	ws := c.ws
	c.mu.Unlock()

	if ws != nil {
		ws.Close()
	}
}

// handleMessages reads and dispatches events until the link closes.
func (c *Client) handleMessages() {
	for {
		c.mu.Lock()
		closed := c.closed
		ws := c.ws
		c.mu.Unlock()
		if closed {
			return
		}

		ws.SetReadDeadline(time.Now().Add(120 * time.Second))
		_, message, err := ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.connected = false
			c.mu.Unlock()
			if !closed && c.OnClose != nil {
				c.OnClose(err)
			}
			return
		}

		c.dispatch(message)
	}
}

// dispatch routes one raw event to the matching callback. Unrecognized
// types are ignored; a malformed event is dropped.
func (c *Client) dispatch(message []byte) {
	var ev serverEvent
	if err := sonic.Unmarshal(message, &ev); err != nil {
		return
	}

	switch ev.Type {
	case "session.created":
		if c.OnSessionCreated != nil {
			c.OnSessionCreated()
		}

	case "input_audio_buffer.speech_started":
		if c.OnSpeechStarted != nil {
			c.OnSpeechStarted()
		}

	case "input_audio_buffer.speech_stopped":
		if c.OnSpeechStopped != nil {
			c.OnSpeechStopped()
		}

	case "response.audio.delta":
		if ev.Delta != "" && c.OnAudioDelta != nil {
			c.OnAudioDelta(ev.Delta)
		}

	case "response.output_text.delta", "response.audio_transcript.delta":
		// Voiced replies stream their text as audio_transcript deltas;
		// text-modality replies as output_text deltas. Both feed the
		// same buffer.
		if ev.Delta != "" && c.OnTextDelta != nil {
			c.OnTextDelta(ev.Delta)
		}

	case "response.completed", "response.done":
		if c.OnResponseDone != nil {
			c.OnResponseDone()
		}

	case "conversation.item.input_audio_transcription.completed":
		if c.OnTranscript != nil {
			c.OnTranscript(ev.Transcript)
		}

	case "error":
		if ev.Error != nil && c.OnError != nil {
			c.OnError(ev.Error)
		}
	}
}

// sendJSON encodes and writes one event. Writes are serialized because both
// the session task and callbacks may send.
func (c *Client) sendJSON(v any) error {
	c.mu.Lock()
	if !c.connected || c.closed {
		c.mu.Unlock()
		return ErrNotConnected
	}
	ws := c.ws
	c.mu.Unlock()

	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("realtime: encode event: %w", err)
	}

	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	return ws.WriteMessage(websocket.TextMessage, data)
}
