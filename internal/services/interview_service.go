package services

import (
	"context"

	"github.com/villageofwisdom/genius-backend/internal/genius"
	"github.com/villageofwisdom/genius-backend/internal/models"
	"github.com/villageofwisdom/genius-backend/internal/providers/llm"
)

// InterviewService runs one generation cycle: instruction payload from the
// profile and the fixed active section, bounded history from the transcript,
// and a token stream wired through the field extractor.
type InterviewService interface {
	StreamReply(ctx context.Context, profile *models.Profile, conv *models.Conversation, section, userText string) *genius.ReplyStream
}

type interviewService struct {
	provider llm.Provider
}

func NewInterviewService(provider llm.Provider) InterviewService {
	return &interviewService{provider: provider}
}

func (s *interviewService) StreamReply(ctx context.Context, profile *models.Profile, conv *models.Conversation, section, userText string) *genius.ReplyStream {
	system := genius.BuildSystemPrompt(profile, section)

	history := genius.WindowHistory(conv.Messages)
	history = append(history, llm.Turn{Role: llm.RoleUser, Content: userText})

	chunks, errs := s.provider.StreamChat(ctx, system, history)
	return genius.NewReplyStream(chunks, errs)
}
