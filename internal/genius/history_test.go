package genius

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villageofwisdom/genius-backend/internal/models"
	"github.com/villageofwisdom/genius-backend/internal/providers/llm"
)

func transcript(n int) []models.Message {
	out := make([]models.Message, 0, n)
	for i := 0; i < n; i++ {
		m := models.Message{Sender: models.SenderUser, Text: fmt.Sprintf("user turn %d", i)}
		if i%2 == 0 {
			m = models.Message{Sender: models.SenderAssistant, Text: fmt.Sprintf("guide turn %d", i)}
		}
		out = append(out, m)
	}
	return out
}

func TestWindowHistoryShortTranscript(t *testing.T) {
	turns := WindowHistory(transcript(4))
	require.Len(t, turns, 4)
	assert.Equal(t, llm.RoleAssistant, turns[0].Role)
	assert.Equal(t, "guide turn 0", turns[0].Content)
	assert.Equal(t, llm.RoleUser, turns[3].Role)
	assert.Equal(t, "user turn 3", turns[3].Content)
}

func TestWindowHistoryDropsBeyondWindow(t *testing.T) {
	turns := WindowHistory(transcript(30))
	require.Len(t, turns, 20)
	// turns 0-9 dropped, window starts at turn 10
	assert.Equal(t, "guide turn 10", turns[0].Content)
	assert.Equal(t, "user turn 29", turns[19].Content)
}

func TestWindowHistoryClipsOlderAssistantTurns(t *testing.T) {
	long := strings.Repeat("ab", 150) // 300 runes
	msgs := transcript(12)
	msgs[2].Text = long  // assistant, lands in the older window
	msgs[10].Text = long // assistant, lands in the recent window

	turns := WindowHistory(msgs)
	require.Len(t, turns, 12)

	clipped := turns[2].Content
	assert.Equal(t, 201, len([]rune(clipped)))
	assert.True(t, strings.HasSuffix(clipped, "…"))
	assert.Equal(t, string([]rune(long)[:200]), strings.TrimSuffix(clipped, "…"))

	// recent turns are verbatim regardless of length
	assert.Equal(t, long, turns[10].Content)
}

func TestWindowHistoryKeepsOlderUserTurnsVerbatim(t *testing.T) {
	long := strings.Repeat("x", 300)
	msgs := transcript(12)
	msgs[3].Text = long // user turn in the older window

	turns := WindowHistory(msgs)
	assert.Equal(t, long, turns[3].Content)
}

func TestWindowHistoryFiltersUnknownSenders(t *testing.T) {
	msgs := transcript(4)
	msgs = append(msgs, models.Message{Sender: "system", Text: "should not appear"})

	turns := WindowHistory(msgs)
	require.Len(t, turns, 4)
	for _, turn := range turns {
		assert.NotEqual(t, "should not appear", turn.Content)
	}
}

func TestWindowHistoryEmpty(t *testing.T) {
	assert.Empty(t, WindowHistory(nil))
}
