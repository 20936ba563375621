package bridge

import "strings"

// Placeholders used when a follow-up call has no prior artifacts on file.
const (
	noSummaryPlaceholder    = "(no summary on file)"
	noTranscriptPlaceholder = "(no transcript on file)"
)

const firstCallNote = `This is your first conversation with this person. You have no prior memory of them; treat the call as a first-time introduction.`

// ComposeInstructions builds the session instructions from the base prompt
// and the call context. Follow-up calls inline the previous call's summary
// and transcript so the agent can pick up where it left off.
func ComposeInstructions(basePrompt string, meta CallMeta) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n")

	if meta.CallType == CallFollowup {
		summary := meta.LastSummary
		if summary == "" {
			summary = noSummaryPlaceholder
		}
		transcript := meta.LastTranscript
		if transcript == "" {
			transcript = noTranscriptPlaceholder
		}
		b.WriteString("You have spoken with this person before. Summary of the previous call:\n")
		b.WriteString(summary)
		b.WriteString("\n\nTranscript of the previous call:\n")
		b.WriteString(transcript)
		b.WriteString("\n\nAcknowledge the earlier conversation naturally and do not repeat the baseline qualification questions you already asked.")
	} else {
		b.WriteString(firstCallNote)
	}

	return b.String()
}

// OpeningDirective selects the instruction for the agent's first utterance,
// keyed by call direction and type.
func OpeningDirective(meta CallMeta) string {
	switch {
	case meta.Direction == DirectionInbound && meta.CallType == CallFollowup:
		return "Greet the caller warmly, mention that you remember the previous conversation, and ask what you can help with today."
	case meta.Direction == DirectionInbound:
		return "Greet the caller warmly, introduce yourself as Dipsy, and ask how you can help."
	case meta.CallType == CallFollowup:
		return "Say hello, remind them who you are and that you spoke before, and continue from where the last call ended."
	default:
		return "Say hello, introduce yourself as Dipsy, explain briefly why you are calling, and ask if now is a good time."
	}
}
