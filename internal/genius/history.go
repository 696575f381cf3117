package genius

import (
	"github.com/villageofwisdom/genius-backend/internal/models"
	"github.com/villageofwisdom/genius-backend/internal/providers/llm"
)

// History windowing keeps the prompt bounded while preserving near-term
// fidelity: the most recent turns are passed verbatim, an older window keeps
// topical continuity with long assistant replies clipped, and anything
// before that is dropped.
const (
	recentTurns        = 6 // 3 back-and-forth exchanges, verbatim
	olderTurns         = 14
	olderAssistantCap  = 200
	truncationEllipsis = "…"
)

// WindowHistory converts a transcript into the bounded (role, text) pairs
// included in a generation request.
func WindowHistory(messages []models.Message) []llm.Turn {
	filtered := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if m.Sender == models.SenderUser || m.Sender == models.SenderAssistant {
			filtered = append(filtered, m)
		}
	}

	recentStart := max(0, len(filtered)-recentTurns)
	olderStart := max(0, recentStart-olderTurns)

	out := make([]llm.Turn, 0, recentTurns+olderTurns)
	for _, m := range filtered[olderStart:recentStart] {
		t := toTurn(m)
		if t.Role == llm.RoleAssistant && len([]rune(t.Content)) > olderAssistantCap {
			t.Content = string([]rune(t.Content)[:olderAssistantCap]) + truncationEllipsis
		}
		out = append(out, t)
	}
	for _, m := range filtered[recentStart:] {
		out = append(out, toTurn(m))
	}
	return out
}

func toTurn(m models.Message) llm.Turn {
	role := llm.RoleAssistant
	if m.Sender == models.SenderUser {
		role = llm.RoleUser
	}
	return llm.Turn{Role: role, Content: m.Text}
}
