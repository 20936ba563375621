package realtime

// SessionConfig is the session.update payload. The bridge always configures
// the same audio topology: linear PCM16 at 16 kHz in, µ-law 8 kHz out, with
// input transcription and server-side turn detection enabled.
type SessionConfig struct {
	Modalities              []string            `json:"modalities"`
	Instructions            string              `json:"instructions"`
	Voice                   string              `json:"voice"`
	InputAudioFormat        string              `json:"input_audio_format"`
	OutputAudioFormat       string              `json:"output_audio_format"`
	InputAudioTranscription *AudioTranscription `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection      `json:"turn_detection,omitempty"`
}

// AudioTranscription selects the speech-to-text model for input audio.
type AudioTranscription struct {
	Model string `json:"model"`
}

// TurnDetection configures the peer's server-side VAD.
type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
}

// ResponseConfig carries the instructions for a response.create event.
type ResponseConfig struct {
	Instructions string `json:"instructions,omitempty"`
}

// Server VAD parameters. The silence window is kept short so the agent
// answers quickly on the phone.
const (
	vadThreshold         = 0.5
	vadPrefixPaddingMs   = 300
	vadSilenceDurationMs = 300
)

// NewSessionConfig builds the standard bridge session configuration.
func NewSessionConfig(instructions, voice, transcriptionModel string) SessionConfig {
	return SessionConfig{
		Modalities:        []string{"audio", "text"},
		Instructions:      instructions,
		Voice:             voice,
		InputAudioFormat:  "pcm16",
		OutputAudioFormat: "g711_ulaw",
		InputAudioTranscription: &AudioTranscription{
			Model: transcriptionModel,
		},
		TurnDetection: &TurnDetection{
			Type:              "server_vad",
			Threshold:         vadThreshold,
			PrefixPaddingMs:   vadPrefixPaddingMs,
			SilenceDurationMs: vadSilenceDurationMs,
		},
	}
}
