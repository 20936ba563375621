package bridge

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/atlascommand/voice-bridge/internal/config"
	applog "github.com/atlascommand/voice-bridge/internal/log"
	"github.com/atlascommand/voice-bridge/pkg/audio"
	"github.com/atlascommand/voice-bridge/pkg/realtime"
	"github.com/atlascommand/voice-bridge/pkg/telephony"
	"github.com/atlascommand/voice-bridge/pkg/transcript"
	"github.com/atlascommand/voice-bridge/pkg/vad"
)

// State is the session lifecycle position.
type State int

const (
	StateInit State = iota
	StateConfiguring
	StateActive
	StateFinalizing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateConfiguring:
		return "CONFIGURING"
	case StateActive:
		return "ACTIVE"
	case StateFinalizing:
		return "FINALIZING"
	case StateClosed:
		return "CLOSED"
	}
	return "UNKNOWN"
}

// telephonyConn is the session's view of the inbound WebSocket. The fiber
// websocket connection satisfies it.
type telephonyConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// realtimeLink is the session's view of the realtime client.
type realtimeLink interface {
	UpdateSession(cfg realtime.SessionConfig) error
	CreateResponse(instructions string) error
	AppendAudio(pcm16 []byte) error
	Close()
}

// Session bridges one telephone call. It owns both peer links and all
// per-call mutable state; every mutation is serialized on mu so the two
// event streams (telephony reads, realtime callbacks) never race.
type Session struct {
	connID    string
	cfg       *config.Config
	finalizer *Finalizer
	log       *slog.Logger

	conn    telephonyConn
	writeMu sync.Mutex

	// dial opens the realtime link; replaced in tests.
	dial func(*Session) (realtimeLink, error)

	mu        sync.Mutex
	state     State
	meta      CallMeta
	rt        realtimeLink
	rtReady   bool
	vad       *vad.Detector
	tr        transcript.Builder
	counters  Counters
	finalized bool
}

// NewSession creates a session for one accepted telephony connection.
func NewSession(cfg *config.Config, conn telephonyConn, finalizer *Finalizer) *Session {
	s := &Session{
		connID:    uuid.NewString(),
		cfg:       cfg,
		finalizer: finalizer,
		conn:      conn,
		vad:       vad.New(cfg.EnergyThreshold, cfg.SpeechHangover),
		state:     StateInit,
	}
	s.dial = dialRealtime
	s.log = applog.With("call_id", s.connID)
	return s
}

// correlationID is the stable per-call identifier: the first non-empty of
// call SID, stream SID, and the locally minted connection id.
func (s *Session) correlationID() string {
	if s.meta.CallSID != "" {
		return s.meta.CallSID
	}
	if s.meta.StreamSID != "" {
		return s.meta.StreamSID
	}
	return s.connID
}

// Run consumes the telephony frame stream until the call ends. It blocks for
// the lifetime of the call and must be called exactly once.
func (s *Session) Run() {
	s.log.Info("call connected")
	defer s.shutdown()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			// Abnormal close: no stop frame arrived. Finalization is
			// still attempted with whatever transcript exists.
			s.log.Warn("telephony socket closed", "error", err)
			return
		}

		frame, err := telephony.ParseFrame(data)
		if err != nil {
			s.log.Warn("dropping malformed frame", "error", err)
			continue
		}

		switch frame.Event {
		case telephony.EventStart:
			s.handleStart(frame.Start)
		case telephony.EventMedia:
			s.handleMedia(frame)
		case telephony.EventMark:
			if frame.Mark != nil {
				s.log.Debug("mark", "name", frame.Mark.Name)
			}
		case telephony.EventStop:
			s.log.Info("stop received")
			s.finalize()
			return
		default:
			s.log.Debug("ignoring event", "event", string(frame.Event))
		}
	}
}

// handleStart captures call metadata and opens the realtime link.
func (s *Session) handleStart(p *telephony.StartPayload) {
	if p == nil {
		s.log.Warn("start frame without payload")
		return
	}

	s.mu.Lock()
	if s.state != StateInit {
		s.mu.Unlock()
		s.log.Warn("duplicate start frame")
		return
	}
	s.meta = MetaFromStart(p)
	s.state = StateConfiguring
	s.log = applog.With("call_id", s.correlationID())
	s.mu.Unlock()

	s.log.Info("call started",
		"stream_sid", p.StreamSID,
		"direction", string(s.meta.Direction),
		"call_type", string(s.meta.CallType))

	link, err := s.dial(s)
	if err != nil {
		// The call continues without an agent; media is dropped until stop.
		s.log.Error("realtime connect failed", "error", err)
		return
	}

	s.mu.Lock()
	s.rt = link
	s.mu.Unlock()
}

// dialRealtime opens the production realtime link and wires its event
// stream into the session.
func dialRealtime(s *Session) (realtimeLink, error) {
	c := realtime.NewClient(s.cfg.OpenAIKey, s.cfg.RealtimeModel)
	c.OnSessionCreated = s.configureRealtime
	c.OnSpeechStarted = s.handleSpeechStarted
	c.OnSpeechStopped = s.handleSpeechStopped
	c.OnAudioDelta = s.handleAudioDelta
	c.OnTextDelta = s.handleTextDelta
	c.OnResponseDone = s.handleResponseDone
	c.OnTranscript = s.handleCallerTranscript
	c.OnError = s.handleRealtimeError
	c.OnClose = s.handleRealtimeClosed

	// Install the link before dialing: the peer's created event can fire on
	// the read loop before Connect returns.
	s.mu.Lock()
	s.rt = c
	s.mu.Unlock()

	if err := c.Connect(); err != nil {
		s.mu.Lock()
		s.rt = nil
		s.mu.Unlock()
		return nil, err
	}
	return c, nil
}

// configureRealtime sends the session configuration and the opening
// directive, in that order, then opens the audio path. Runs on the realtime
// read-loop goroutine once the peer reports ready.
func (s *Session) configureRealtime() {
	s.mu.Lock()
	link := s.rt
	meta := s.meta
	s.mu.Unlock()
	if link == nil {
		return
	}

	instructions := ComposeInstructions(s.cfg.BasePrompt, meta)
	cfg := realtime.NewSessionConfig(instructions, s.cfg.Voice, s.cfg.TranscriptionModel)
	if err := link.UpdateSession(cfg); err != nil {
		s.log.Error("session update failed", "error", err)
		return
	}
	if err := link.CreateResponse(OpeningDirective(meta)); err != nil {
		s.log.Error("opening directive failed", "error", err)
		return
	}

	s.mu.Lock()
	s.rtReady = true
	s.state = StateActive
	s.mu.Unlock()
	s.log.Info("realtime session configured")
}

// handleMedia runs the audio ingress pipeline for one telephony frame:
// µ-law decode, VAD update, upsample, forward. Frames arriving before the
// realtime link is ready are dropped; the telephony peer's pacing is the
// only rate source and nothing is queued.
func (s *Session) handleMedia(frame *telephony.Frame) {
	mulaw, err := frame.AudioBytes()
	if err != nil {
		s.log.Warn("dropping bad media frame", "error", err)
		return
	}

	pcm8k := audio.DecodeMuLaw(mulaw)

	s.mu.Lock()
	s.vad.ProcessFrame(pcm8k)
	link := s.rt
	ready := s.rtReady
	if !ready || link == nil {
		s.counters.DroppedLinkDown++
		s.mu.Unlock()
		return
	}
	s.counters.MediaIn++
	s.mu.Unlock()

	if err := link.AppendAudio(audio.Upsample8kTo16k(pcm8k)); err != nil {
		s.log.Warn("audio append failed", "error", err)
	}
}

// handleAudioDelta runs the egress pipeline for one realtime audio delta.
// The barge-in gate drops the frame whenever the human is speaking: the
// peer interrupts itself server-side on user speech, but keeps flushing
// buffered audio for a short window, and forwarding that window would talk
// over the caller.
func (s *Session) handleAudioDelta(audioB64 string) {
	s.mu.Lock()
	if s.vad.Speaking() {
		s.counters.DroppedBargeIn++
		dropped := s.counters.DroppedBargeIn
		s.mu.Unlock()
		s.log.Debug("barge-in: dropped agent audio", "dropped_total", dropped)
		return
	}
	streamSID := s.meta.StreamSID
	s.counters.MediaOut++
	s.mu.Unlock()

	data, err := telephony.MediaFramePayload(streamSID, audioB64)
	if err != nil {
		s.log.Error("encode media frame failed", "error", err)
		return
	}

	s.writeMu.Lock()
	err = s.conn.WriteMessage(websocket.TextMessage, data)
	s.writeMu.Unlock()
	if err != nil {
		s.log.Warn("telephony write failed", "error", err)
	}
}

func (s *Session) handleSpeechStarted() {
	s.mu.Lock()
	s.vad.PeerSpeechStarted()
	s.mu.Unlock()
	s.log.Debug("peer vad: speech started")
}

func (s *Session) handleSpeechStopped() {
	s.mu.Lock()
	s.vad.PeerSpeechStopped()
	s.mu.Unlock()
	s.log.Debug("peer vad: speech stopped")
}

func (s *Session) handleTextDelta(delta string) {
	s.mu.Lock()
	s.tr.AppendAgentDelta(delta)
	s.mu.Unlock()
}

func (s *Session) handleResponseDone() {
	s.mu.Lock()
	s.tr.CommitAgent()
	s.mu.Unlock()
}

func (s *Session) handleCallerTranscript(text string) {
	s.mu.Lock()
	s.tr.AddCaller(text)
	s.mu.Unlock()
}

// handleRealtimeError logs peer error events. The call continues; it may
// still be useful audio-only.
func (s *Session) handleRealtimeError(err error) {
	s.log.Error("realtime peer error", "error", err)
}

// handleRealtimeClosed clears the ready flag when the realtime link dies
// mid-call. This does not finalize: the telephony side is drained until its
// own stop or close, and ingress frames are dropped meanwhile.
func (s *Session) handleRealtimeClosed(err error) {
	s.mu.Lock()
	s.rtReady = false
	s.rt = nil
	s.mu.Unlock()
	s.log.Warn("realtime link closed", "error", err)
}

// finalize runs the post-call pipeline exactly once, then closes the
// realtime link. The call-log post happens before any socket is closed.
func (s *Session) finalize() {
	s.mu.Lock()
	if s.finalized {
		s.mu.Unlock()
		return
	}
	s.finalized = true
	s.state = StateFinalizing
	meta := s.meta
	text := s.tr.Final()
	link := s.rt
	counters := s.counters
	s.mu.Unlock()

	s.log.Info("finalizing call",
		"media_in", counters.MediaIn,
		"media_out", counters.MediaOut,
		"dropped_barge_in", counters.DroppedBargeIn,
		"dropped_link_down", counters.DroppedLinkDown)

	s.finalizer.Finalize(meta, text, s.log)

	if link != nil {
		link.Close()
	}

	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()
}

// shutdown finalizes if the call ended without a stop frame and releases
// the telephony socket.
func (s *Session) shutdown() {
	s.finalize()
	s.conn.Close()
	s.log.Info("call closed")
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
