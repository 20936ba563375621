// Package transcript assembles the bilingual call transcript: caller lines
// from input transcription events and agent lines from buffered text deltas.
package transcript

import "strings"

// Speaker labels as they appear in the serialized transcript.
const (
	CallerLabel = "Caller"
	AgentLabel  = "Dipsy"
)

// Builder accumulates transcript lines in arrival order. Agent text arrives
// as streaming deltas and is committed as a single line only when the
// response completes; partial deltas never reach the transcript.
//
// Builder is not goroutine-safe; the owning session serializes access.
type Builder struct {
	text     strings.Builder
	agentBuf strings.Builder
}

// AddCaller appends a caller line. Empty or whitespace-only text is ignored.
func (b *Builder) AddCaller(text string) {
	line := strings.TrimSpace(text)
	if line == "" {
		return
	}
	b.text.WriteString("\n" + CallerLabel + ": " + line + "\n")
}

// AppendAgentDelta buffers a fragment of the agent's in-flight response.
func (b *Builder) AppendAgentDelta(delta string) {
	b.agentBuf.WriteString(delta)
}

// CommitAgent flushes the buffered agent text as one line and clears the
// buffer. Committing an empty buffer is a no-op, so a stray
// response-completed event after a flush does nothing.
func (b *Builder) CommitAgent() {
	line := strings.TrimSpace(b.agentBuf.String())
	b.agentBuf.Reset()
	if line == "" {
		return
	}
	b.text.WriteString("\n" + AgentLabel + ": " + line + "\n")
}

// Text returns the raw transcript as accumulated so far. Uncommitted agent
// deltas are not included.
func (b *Builder) Text() string {
	return b.text.String()
}

// Final returns the transcript trimmed of leading and trailing whitespace,
// the form transmitted to the call-log sink.
func (b *Builder) Final() string {
	return strings.TrimSpace(b.text.String())
}

// Empty reports whether the trimmed transcript has no content.
func (b *Builder) Empty() bool {
	return b.Final() == ""
}
