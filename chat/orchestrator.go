package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Completer is the provider boundary consumed by the orchestrator. Chat
// returns the complete assistant content; ChatStream yields content
// fragments and closes both channels when the stream is exhausted.
type Completer interface {
	Chat(ctx context.Context, messages []Turn) (string, error)
	ChatStream(ctx context.Context, messages []Turn) (<-chan string, <-chan error)
}

// State is the orchestrator's position in the exchange cycle.
type State int

const (
	StateIdle State = iota
	StateDispatching
	StateStreaming
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateStreaming:
		return "streaming"
	case StateCommitted:
		return "committed"
	}
	return "unknown"
}

// Orchestrator sequences one user input into exactly one committed
// assistant turn: append user turn, build the bounded request, invoke the
// provider, commit the assistant turn. Provider failures are folded into a
// well-formed assistant turn so the transcript never carries an unpaired
// user turn and the caller's render loop never sees an error.
type Orchestrator struct {
	// mu owns the context store. The session shares it for its own
	// accessors, so session state has exactly one lock.
	mu       sync.Mutex
	store    *ContextStore
	provider Completer
	policy   RequestPolicy
	stream   bool
	state    State
}

// NewOrchestrator creates an orchestrator over the given context store.
// When stream is true, exchanges use the provider's streaming mode and
// fragments are delivered through the Exchange callback.
func NewOrchestrator(store *ContextStore, provider Completer, policy RequestPolicy, stream bool) *Orchestrator {
	return &Orchestrator{
		store:    store,
		provider: provider,
		policy:   policy,
		stream:   stream,
		state:    StateIdle,
	}
}

// State returns the current state. Outside of an Exchange call this is
// always StateIdle.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Exchange runs one full input cycle and returns the committed assistant
// turn. Empty or whitespace-only input is rejected before any state
// transition: no provider call, no transcript change, ok is false.
// onFragment, when non-nil, receives streamed fragments as they arrive;
// their concatenation equals the committed content. The mutex serializes
// exchanges so a session never has two in-flight provider calls.
func (o *Orchestrator) Exchange(ctx context.Context, input string, onFragment func(string)) (assistant Turn, ok bool) {
	if IsBlank(input) {
		return Turn{}, false
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = StateDispatching
	o.store.AppendTurn(RoleUser, input)
	request := BuildRequest(o.store.Snapshot(), o.store.ReferenceContext(), o.policy)

	var content string
	if o.stream {
		o.state = StateStreaming
		content = o.streamCompletion(ctx, request, onFragment)
	} else {
		reply, err := o.provider.Chat(ctx, request)
		if err != nil {
			slog.Warn("provider call failed", "error", err)
			reply = errorContent(err)
		}
		content = reply
	}

	o.state = StateCommitted
	o.store.AppendTurn(RoleAssistant, content)
	assistant = Turn{Role: RoleAssistant, Content: content}
	o.state = StateIdle
	return assistant, true
}

// streamCompletion drains the provider stream, forwarding fragments to the
// callback. On a mid-stream error the fragments received so far stand as
// the committed content; an error before any fragment produces a diagnostic
// turn instead.
func (o *Orchestrator) streamCompletion(ctx context.Context, request []Turn, onFragment func(string)) string {
	fragments, errs := o.provider.ChatStream(ctx, request)

	var sb strings.Builder
	for fragment := range fragments {
		sb.WriteString(fragment)
		if onFragment != nil {
			onFragment(fragment)
		}
	}
	err := <-errs

	if err != nil && sb.Len() == 0 {
		slog.Warn("provider stream failed", "error", err)
		content := errorContent(err)
		if onFragment != nil {
			onFragment(content)
		}
		return content
	}
	if err != nil {
		slog.Warn("provider stream ended early", "error", err, "partial_len", sb.Len())
	}
	return sb.String()
}

// errorContent formats a provider failure as user-visible assistant content.
func errorContent(err error) string {
	return fmt.Sprintf("Error: %v", err)
}
