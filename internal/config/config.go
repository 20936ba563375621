// Package config loads voice-bridge configuration from the environment.
// A .env file in the working directory is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for optional settings.
const (
	DefaultPort               = "8080"
	DefaultRealtimeModel      = "gpt-4o-realtime-preview-2024-12-17"
	DefaultTranscriptionModel = "whisper-1"
	DefaultSummaryModel       = "gpt-4o-mini"
	DefaultVoice              = "alloy"

	DefaultEnergyThreshold = 500.0
	DefaultSpeechHangover  = 600 * time.Millisecond
)

// Config holds all process-wide settings. It is loaded once at startup and
// passed by reference to each session; nothing in it is mutated afterwards.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string // "json" or "text"

	// Realtime LLM peer.
	OpenAIKey          string
	RealtimeModel      string
	TranscriptionModel string
	Voice              string

	// Post-call summarization.
	SummaryModel   string
	SummaryBaseURL string // optional override for the chat-completion endpoint

	// Call-log sink.
	CallLogURL     string
	CallLogAnonKey string
	CallLogSecret  string
	OrgID          string // optional

	// Prompt texts, loaded once at startup.
	BasePrompt    string
	SummaryPrompt string

	// Turn-taking tunables.
	EnergyThreshold float64
	SpeechHangover  time.Duration
}

// Load reads configuration from the environment. It returns an error when a
// required value is missing; callers are expected to treat that as fatal
// before accepting any calls.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               envOr("PORT", DefaultPort),
		LogLevel:           envOr("LOG_LEVEL", "info"),
		LogFormat:          envOr("LOG_FORMAT", "text"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		RealtimeModel:      envOr("REALTIME_MODEL", DefaultRealtimeModel),
		TranscriptionModel: envOr("TRANSCRIPTION_MODEL", DefaultTranscriptionModel),
		Voice:              envOr("AGENT_VOICE", DefaultVoice),
		SummaryModel:       envOr("SUMMARY_MODEL", DefaultSummaryModel),
		SummaryBaseURL:     os.Getenv("SUMMARY_BASE_URL"),
		CallLogURL:         os.Getenv("CALL_LOG_URL"),
		CallLogAnonKey:     os.Getenv("CALL_LOG_ANON_KEY"),
		CallLogSecret:      sharedSecret(),
		OrgID:              os.Getenv("ORG_ID"),
		EnergyThreshold:    envFloatOr("VAD_ENERGY_THRESHOLD", DefaultEnergyThreshold),
		SpeechHangover:     envDurationOr("VAD_SPEECH_HANGOVER", DefaultSpeechHangover),
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("config: OPENAI_API_KEY is required")
	}
	if cfg.CallLogURL == "" {
		return nil, fmt.Errorf("config: CALL_LOG_URL is required")
	}
	if cfg.CallLogSecret == "" {
		return nil, fmt.Errorf("config: CALL_LOG_SHARED_SECRET or SHARED_WEBHOOK_SECRET is required")
	}

	cfg.BasePrompt = promptOr("BASE_PROMPT_PATH", fallbackBasePrompt)
	cfg.SummaryPrompt = promptOr("SUMMARY_PROMPT_PATH", fallbackSummaryPrompt)

	return cfg, nil
}

// sharedSecret resolves the call-log shared secret from either of the two
// accepted environment names. CALL_LOG_SHARED_SECRET wins when both are set.
func sharedSecret() string {
	if s := os.Getenv("CALL_LOG_SHARED_SECRET"); s != "" {
		return s
	}
	return os.Getenv("SHARED_WEBHOOK_SECRET")
}

// promptOr reads the prompt file named by the env var, falling back to the
// built-in text when the var is unset or the file is unreadable.
func promptOr(envName, fallback string) string {
	path := os.Getenv(envName)
	if path == "" {
		return fallback
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return fallback
	}
	return string(data)
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envFloatOr(name string, def float64) float64 {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDurationOr(name string, def time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

const fallbackBasePrompt = `You are Dipsy, a friendly and professional voice assistant on a phone call. Keep your answers short and conversational, one or two sentences at a time. Never mention that you are an AI model.`

const fallbackSummaryPrompt = `You summarize phone call transcripts. Write a concise summary of the conversation below: who was called, what was discussed, objections raised, and agreed next steps. Use plain prose, no headings.`
