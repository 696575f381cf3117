package genius

import (
	"errors"
	"strings"
	"sync/atomic"
)

// ErrStreamActive is returned by FullText before the update sequence has
// been fully consumed.
var ErrStreamActive = errors.New("genius: stream not yet exhausted")

// FieldMessage and FieldSectionContent are the reply fields extracted while
// the stream is in flight.
const (
	FieldMessage        = "message"
	FieldSectionContent = "sectionContent"
)

// Update is one increment of a streaming reply. Reply and Draft only ever
// grow; Delta is the reply text newly revealed by this update and is empty
// when only the draft moved.
type Update struct {
	Delta string
	Reply string
	Draft string
}

// ReplyStream is the two-part result of a generation call: a lazy,
// single-consumption sequence of updates, plus accessors that become valid
// once the sequence is exhausted. Consume Updates with range; then FullText
// returns the raw accumulated text and Err any generation failure.
type ReplyStream struct {
	updates chan Update

	done atomic.Bool
	full string
	err  error
}

// NewReplyStream wires a provider token stream through the field extractor.
// Both input channels must be closed by the producer when generation ends.
func NewReplyStream(chunks <-chan string, errs <-chan error) *ReplyStream {
	s := &ReplyStream{updates: make(chan Update)}
	go s.run(chunks, errs)
	return s
}

func (s *ReplyStream) run(chunks <-chan string, errs <-chan error) {
	var raw strings.Builder
	var lastReply, lastDraft string

	for chunk := range chunks {
		raw.WriteString(chunk)
		buf := raw.String()

		reply, _ := ExtractField(buf, FieldMessage)
		draft, _ := ExtractField(buf, FieldSectionContent)
		if reply == lastReply && draft == lastDraft {
			continue
		}

		u := Update{Reply: reply, Draft: draft}
		if len(reply) > len(lastReply) {
			u.Delta = reply[len(lastReply):]
		}
		s.updates <- u
		lastReply, lastDraft = reply, draft
	}

	// errs is closed with chunks; a buffered error survives the close
	if err := <-errs; err != nil {
		s.err = err
	}
	s.full = raw.String()
	s.done.Store(true)
	close(s.updates)
}

// Updates returns the single-consumption update sequence.
func (s *ReplyStream) Updates() <-chan Update { return s.updates }

// Err reports the generation failure, if any. Valid once Updates is closed.
func (s *ReplyStream) Err() error {
	if !s.done.Load() {
		return ErrStreamActive
	}
	return s.err
}

// FullText returns the complete raw text accumulated from the stream. It
// fails until the update sequence has been exhausted.
func (s *ReplyStream) FullText() (string, error) {
	if !s.done.Load() {
		return "", ErrStreamActive
	}
	return s.full, nil
}
