package llm

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the bounded conversation history sent with a request.
type Turn struct {
	Role    Role
	Content string
}

type Provider interface {
	// StreamChat opens a generation stream for the given system instructions
	// and history (the last turn is the new user message). Incremental text
	// tokens arrive on chunks; errs carries at most one error. Both channels
	// are closed when generation ends.
	StreamChat(ctx context.Context, system string, history []Turn) (chunks <-chan string, errs <-chan error)
	Close() error
}
