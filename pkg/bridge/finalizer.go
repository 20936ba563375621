package bridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/atlascommand/voice-bridge/pkg/calllog"
)

// finalizeTimeout bounds the whole finalization pipeline (summary request
// plus call-log post) so a slow sink cannot leak sessions.
const finalizeTimeout = 60 * time.Second

// summarizer is the summary half of finalization.
type summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// sink is the call-log half of finalization.
type sink interface {
	Post(ctx context.Context, rec calllog.Record) error
}

// Finalizer runs the once-per-call post-call pipeline: summarize the
// transcript, then post the call-log record. Both halves are best-effort;
// a summary failure yields a null summary and a sink failure is logged.
type Finalizer struct {
	summarizer summarizer
	sink       sink
	model      string
	orgID      string
}

// NewFinalizer creates a finalizer. model is recorded on the call-log entry
// as the summarization model identifier; orgID may be empty.
func NewFinalizer(s summarizer, sink sink, model, orgID string) *Finalizer {
	return &Finalizer{
		summarizer: s,
		sink:       sink,
		model:      model,
		orgID:      orgID,
	}
}

// Finalize runs the pipeline for one finished call. transcript must already
// be trimmed. When the call id is missing or the transcript is empty there
// is nothing to persist: the skip is logged and no HTTP calls are made.
func (f *Finalizer) Finalize(meta CallMeta, transcript string, logger *slog.Logger) {
	if meta.CallSID == "" || transcript == "" {
		logger.Info("skipping call log",
			"has_call_sid", meta.CallSID != "",
			"transcript_len", len(transcript))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	var summary *string
	if len(transcript) >= MinSummaryTranscript {
		text, err := f.summarizer.Summarize(ctx, transcript)
		if err != nil {
			logger.Error("summary failed", "error", err)
		} else {
			summary = &text
		}
	} else {
		logger.Info("transcript below summary threshold", "transcript_len", len(transcript))
	}

	rec := calllog.Record{
		TwilioCallSID: calllog.String(meta.CallSID),
		Status:        calllog.StatusCompleted,
		Direction:     calllog.String(string(meta.Direction)),
		Transcript:    calllog.String(transcript),
		AISummary:     summary,
		EndedAt:       calllog.Time(time.Now().UTC()),
		Model:         calllog.String(f.model),
	}
	if f.orgID != "" {
		rec.OrgID = calllog.String(f.orgID)
	}

	if err := f.sink.Post(ctx, rec); err != nil {
		logger.Error("call log post failed", "error", err)
		return
	}
	logger.Info("call log posted", "summarized", summary != nil)
}
