// Package vad implements the two-source voice activity detector used for
// turn-taking. A cheap per-frame energy estimate is fused with the realtime
// peer's own speech events into a single human-speaking predicate: the local
// estimator reacts within one frame, covering the gap before the peer commits
// a speech-started event, and the hangover keeps short pauses from releasing
// the floor mid-sentence.
package vad

import (
	"time"

	"github.com/atlascommand/voice-bridge/pkg/audio"
)

// Detector tracks whether the human on the call is currently speaking.
// It is not goroutine-safe; the owning session serializes access.
type Detector struct {
	threshold float64
	hangover  time.Duration

	speaking     bool
	lastSpeechAt time.Time
}

// New creates a Detector. threshold is the mean-absolute-sample energy above
// which a frame counts as speech; hangover is how long after the last
// energetic frame the speaking state is held.
func New(threshold float64, hangover time.Duration) *Detector {
	return &Detector{
		threshold: threshold,
		hangover:  hangover,
	}
}

// ProcessFrame updates the detector with one frame of 8 kHz PCM16 audio and
// returns the resulting speaking state.
func (d *Detector) ProcessFrame(pcm []byte) bool {
	now := time.Now()
	if audio.MeanAbs(pcm) > d.threshold {
		d.speaking = true
		d.lastSpeechAt = now
		return true
	}
	if d.speaking && now.Sub(d.lastSpeechAt) > d.hangover {
		d.speaking = false
	}
	return d.speaking
}

// PeerSpeechStarted records a speech-started event from the realtime peer.
func (d *Detector) PeerSpeechStarted() {
	d.speaking = true
	d.lastSpeechAt = time.Now()
}

// PeerSpeechStopped records a speech-stopped event from the realtime peer.
// The peer's end-of-speech decision is authoritative; the state clears
// without waiting out the hangover.
func (d *Detector) PeerSpeechStopped() {
	d.speaking = false
}

// Speaking reports the current speaking state without updating it.
func (d *Detector) Speaking() bool {
	return d.speaking
}

// LastSpeechAt returns when speech was last detected, or the zero time if it
// never was.
func (d *Detector) LastSpeechAt() time.Time {
	return d.lastSpeechAt
}
