package transcript

import (
	"strings"
	"testing"
)

func TestCallerLine(t *testing.T) {
	var b Builder
	b.AddCaller("hello there")

	want := "\nCaller: hello there\n"
	if got := b.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestCallerLineTrimmed(t *testing.T) {
	var b Builder
	b.AddCaller("  hi  \n")

	if got := b.Text(); got != "\nCaller: hi\n" {
		t.Errorf("Text() = %q", got)
	}
}

func TestEmptyCallerIgnored(t *testing.T) {
	var b Builder
	b.AddCaller("")
	b.AddCaller("   ")

	if !b.Empty() {
		t.Errorf("empty caller text should not produce lines, got %q", b.Text())
	}
}

func TestAgentDeltasCommitAsOneLine(t *testing.T) {
	var b Builder
	b.AppendAgentDelta("Hi,")
	b.AppendAgentDelta(" this is Dipsy")

	// Partial deltas must not appear before the commit.
	if got := b.Text(); got != "" {
		t.Fatalf("uncommitted deltas leaked into transcript: %q", got)
	}

	b.CommitAgent()
	if got := b.Text(); got != "\nDipsy: Hi, this is Dipsy\n" {
		t.Errorf("Text() = %q", got)
	}
}

func TestCommitEmptyBufferIsNoOp(t *testing.T) {
	var b Builder
	b.AppendAgentDelta("hello")
	b.CommitAgent()
	before := b.Text()

	b.CommitAgent()
	if got := b.Text(); got != before {
		t.Errorf("second commit changed transcript: %q", got)
	}

	b.AppendAgentDelta("   ")
	b.CommitAgent()
	if got := b.Text(); got != before {
		t.Errorf("whitespace-only commit changed transcript: %q", got)
	}
}

func TestNoEmptyAgentSegments(t *testing.T) {
	var b Builder
	b.AddCaller("hi")
	b.CommitAgent()
	b.AppendAgentDelta(" \t ")
	b.CommitAgent()

	if strings.Contains(b.Text(), AgentLabel) {
		t.Errorf("transcript contains an agent segment with empty text: %q", b.Text())
	}
}

func TestInterleavedConversation(t *testing.T) {
	var b Builder
	b.AddCaller("hello there")
	b.AppendAgentDelta("Hi,")
	b.AppendAgentDelta(" this is Dipsy")
	b.CommitAgent()

	want := "\nCaller: hello there\n\nDipsy: Hi, this is Dipsy\n"
	if got := b.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	wantFinal := "Caller: hello there\n\nDipsy: Hi, this is Dipsy"
	if got := b.Final(); got != wantFinal {
		t.Errorf("Final() = %q, want %q", got, wantFinal)
	}
}

func TestEmpty(t *testing.T) {
	var b Builder
	if !b.Empty() {
		t.Error("new builder should be empty")
	}
	b.AppendAgentDelta("buffered but uncommitted")
	if !b.Empty() {
		t.Error("uncommitted deltas should not count as content")
	}
	b.AddCaller("hi")
	if b.Empty() {
		t.Error("builder with a caller line should not be empty")
	}
}
