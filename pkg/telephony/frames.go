// Package telephony defines the framed JSON protocol spoken by the media
// stream provider over its WebSocket connection.
//
// Inbound frames carry an event tag (start, media, mark, stop); outbound
// frames are media frames addressed by stream SID. Frames arrive at ~50 Hz
// per call, so encoding and decoding go through sonic rather than
// encoding/json.
package telephony

import (
	"encoding/base64"
	"fmt"

	"github.com/bytedance/sonic"
)

// Event identifies the type of a telephony frame.
type Event string

const (
	EventStart Event = "start"
	EventMedia Event = "media"
	EventMark  Event = "mark"
	EventStop  Event = "stop"
)

// Frame is the wire representation of one telephony WebSocket message.
type Frame struct {
	Event     Event         `json:"event"`
	StreamSID string        `json:"streamSid,omitempty"`
	Start     *StartPayload `json:"start,omitempty"`
	Media     *MediaPayload `json:"media,omitempty"`
	Mark      *MarkPayload  `json:"mark,omitempty"`
}

// StartPayload carries the call identifiers and the custom parameters set on
// the stream by the dialer.
type StartPayload struct {
	StreamSID        string            `json:"streamSid"`
	CallSID          string            `json:"callSid"`
	CustomParameters map[string]string `json:"customParameters,omitempty"`
}

// MediaPayload carries one frame of base64-encoded µ-law 8 kHz audio.
type MediaPayload struct {
	Payload string `json:"payload"`
}

// MarkPayload carries a playback marker name.
type MarkPayload struct {
	Name string `json:"name"`
}

// ParseFrame decodes one inbound WebSocket message.
func ParseFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := sonic.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("telephony: parse frame: %w", err)
	}
	return &f, nil
}

// AudioBytes decodes the µ-law payload of a media frame.
func (f *Frame) AudioBytes() ([]byte, error) {
	if f.Media == nil {
		return nil, fmt.Errorf("telephony: frame has no media payload")
	}
	raw, err := base64.StdEncoding.DecodeString(f.Media.Payload)
	if err != nil {
		return nil, fmt.Errorf("telephony: decode media payload: %w", err)
	}
	return raw, nil
}

// MediaFrame encodes an outbound media frame carrying µ-law audio for the
// given stream.
func MediaFrame(streamSID string, mulaw []byte) ([]byte, error) {
	return MediaFramePayload(streamSID, base64.StdEncoding.EncodeToString(mulaw))
}

// MediaFramePayload encodes an outbound media frame from an already
// base64-encoded µ-law payload. The realtime peer emits audio deltas in that
// form, so the egress path forwards them without a decode/re-encode cycle.
func MediaFramePayload(streamSID, payload string) ([]byte, error) {
	f := Frame{
		Event:     EventMedia,
		StreamSID: streamSID,
		Media:     &MediaPayload{Payload: payload},
	}
	data, err := sonic.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("telephony: encode media frame: %w", err)
	}
	return data, nil
}
