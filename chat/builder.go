package chat

import "fmt"

// SystemPosition controls where the synthetic reference-document turn is
// placed in a provider request.
type SystemPosition int

const (
	// SystemPrepend places the reference turn before the history window.
	SystemPrepend SystemPosition = iota
	// SystemAppend places the reference turn after the history window.
	SystemAppend
)

// DefaultWindow is the number of most recent turns included in a request.
const DefaultWindow = 10

// RequestPolicy configures provider request assembly.
type RequestPolicy struct {
	// Window bounds the request to the most recent N transcript turns.
	// Older turns are dropped, not summarized. Zero means DefaultWindow.
	Window int
	// Position is where the synthetic reference turn is injected.
	Position SystemPosition
}

// DefaultRequestPolicy returns the stock policy: last 10 turns, reference
// document prepended.
func DefaultRequestPolicy() RequestPolicy {
	return RequestPolicy{Window: DefaultWindow, Position: SystemPrepend}
}

// BuildRequest assembles the ordered message sequence sent to a provider:
// the most recent policy.Window turns of the transcript, plus exactly one
// synthetic system turn carrying the reference document when one is
// attached. The reference is injected fresh on every call and is never
// written back into the transcript.
func BuildRequest(turns []Turn, reference string, policy RequestPolicy) []Turn {
	window := policy.Window
	if window <= 0 {
		window = DefaultWindow
	}
	if len(turns) > window {
		turns = turns[len(turns)-window:]
	}

	if reference == "" {
		out := make([]Turn, len(turns))
		copy(out, turns)
		return out
	}

	ref := Turn{Role: RoleSystem, Content: fmt.Sprintf("Reference Document: %s", reference)}
	out := make([]Turn, 0, len(turns)+1)
	if policy.Position == SystemPrepend {
		out = append(out, ref)
		out = append(out, turns...)
	} else {
		out = append(out, turns...)
		out = append(out, ref)
	}
	return out
}
