package bridge

import (
	"errors"
	"strings"
	"testing"

	applog "github.com/atlascommand/voice-bridge/internal/log"
)

func TestFinalizerPostsSummaryAndRecord(t *testing.T) {
	sum := &fakeSummarizer{summary: "they agreed to a demo next week"}
	sk := &fakeSink{}
	f := NewFinalizer(sum, sk, "gpt-4o-mini", "org-7")

	transcript := strings.Repeat("Caller: tell me more. ", 4)
	f.Finalize(CallMeta{CallSID: "CA1", Direction: DirectionInbound}, strings.TrimSpace(transcript), applog.L())

	if sum.callCount() != 1 {
		t.Errorf("summarizer calls = %d, want 1", sum.callCount())
	}
	if sk.recordCount() != 1 {
		t.Fatalf("sink records = %d, want 1", sk.recordCount())
	}
	rec := sk.record(0)
	if rec.AISummary == nil || *rec.AISummary != "they agreed to a demo next week" {
		t.Errorf("ai_summary = %v", rec.AISummary)
	}
	if rec.OrgID == nil || *rec.OrgID != "org-7" {
		t.Errorf("org_id = %v", rec.OrgID)
	}
	if rec.Model == nil || *rec.Model != "gpt-4o-mini" {
		t.Errorf("model = %v", rec.Model)
	}
	if rec.EndedAt == nil {
		t.Error("ended_at missing")
	}
	if rec.Status != "COMPLETED" {
		t.Errorf("status = %q", rec.Status)
	}
	if rec.Direction == nil || *rec.Direction != "INBOUND" {
		t.Errorf("direction = %v", rec.Direction)
	}
}

func TestFinalizerSummaryFailureYieldsNull(t *testing.T) {
	sum := &fakeSummarizer{err: errors.New("upstream 500")}
	sk := &fakeSink{}
	f := NewFinalizer(sum, sk, "m", "")

	f.Finalize(CallMeta{CallSID: "CA2"}, strings.Repeat("x", 50), applog.L())

	if sk.recordCount() != 1 {
		t.Fatalf("sink records = %d, want 1 despite summary failure", sk.recordCount())
	}
	if got := sk.record(0).AISummary; got != nil {
		t.Errorf("ai_summary = %v, want null", *got)
	}
}

func TestFinalizerShortTranscriptSkipsSummary(t *testing.T) {
	sum := &fakeSummarizer{summary: "should not be requested"}
	sk := &fakeSink{}
	f := NewFinalizer(sum, sk, "m", "")

	f.Finalize(CallMeta{CallSID: "CA3"}, "Caller: hi", applog.L())

	if sum.callCount() != 0 {
		t.Error("summary requested below the length threshold")
	}
	if sk.recordCount() != 1 {
		t.Fatalf("sink records = %d, want 1", sk.recordCount())
	}
	if sk.record(0).AISummary != nil {
		t.Error("ai_summary should be null without a summary request")
	}
}

func TestFinalizerSkipsWithoutCallID(t *testing.T) {
	sum := &fakeSummarizer{}
	sk := &fakeSink{}
	f := NewFinalizer(sum, sk, "m", "")

	f.Finalize(CallMeta{}, strings.Repeat("x", 50), applog.L())
	f.Finalize(CallMeta{CallSID: "CA4"}, "", applog.L())

	if sum.callCount() != 0 || sk.recordCount() != 0 {
		t.Error("finalizer made HTTP calls for an unidentifiable or empty call")
	}
}

func TestFinalizerSinkFailureIsContained(t *testing.T) {
	sk := &fakeSink{err: errors.New("sink down")}
	f := NewFinalizer(&fakeSummarizer{summary: "s"}, sk, "m", "")

	// Must not panic; the error is logged and absorbed.
	f.Finalize(CallMeta{CallSID: "CA5"}, strings.Repeat("x", 50), applog.L())

	if sk.recordCount() != 1 {
		t.Errorf("sink attempts = %d, want 1", sk.recordCount())
	}
}
