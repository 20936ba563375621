// Package bridge implements the per-call bridging engine: the session
// orchestrator binding the telephony and realtime links, the turn-taking
// gate, and the end-of-call finalization pipeline.
package bridge

import (
	"github.com/atlascommand/voice-bridge/pkg/telephony"
)

// Direction is which way the call was placed.
type Direction string

const (
	DirectionInbound  Direction = "INBOUND"
	DirectionOutbound Direction = "OUTBOUND"
)

// CallType distinguishes a first conversation from a follow-up.
type CallType string

const (
	CallFirst    CallType = "FIRST"
	CallFollowup CallType = "FOLLOWUP"
)

// ParseDirection maps a custom-parameter value to a Direction.
// Unknown values default to OUTBOUND.
func ParseDirection(s string) Direction {
	if s == string(DirectionInbound) {
		return DirectionInbound
	}
	return DirectionOutbound
}

// ParseCallType maps a custom-parameter value to a CallType.
// Unknown values default to FIRST.
func ParseCallType(s string) CallType {
	if s == string(CallFollowup) {
		return CallFollowup
	}
	return CallFirst
}

// CallMeta is the call metadata captured from the telephony start event.
type CallMeta struct {
	StreamSID string
	CallSID   string
	Direction Direction
	CallType  CallType

	// Prior-call context for follow-up calls.
	LastSummary    string
	LastTranscript string
}

// MetaFromStart extracts call metadata from a start payload.
func MetaFromStart(p *telephony.StartPayload) CallMeta {
	params := p.CustomParameters
	return CallMeta{
		StreamSID:      p.StreamSID,
		CallSID:        p.CallSID,
		Direction:      ParseDirection(params["direction"]),
		CallType:       ParseCallType(params["call_type"]),
		LastSummary:    params["last_summary"],
		LastTranscript: params["last_transcript"],
	}
}
