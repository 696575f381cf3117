package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/villageofwisdom/genius-backend/internal/genius"
	"github.com/villageofwisdom/genius-backend/internal/models"
	mongorepo "github.com/villageofwisdom/genius-backend/internal/repositories/mongo"
	"github.com/villageofwisdom/genius-backend/internal/utils"
)

type ConversationService interface {
	// CreateForProfile opens the interview conversation for a new profile,
	// seeded with the guide's greeting and the first section as current.
	CreateForProfile(ctx context.Context, p *models.Profile) (*models.Conversation, error)
	Get(ctx context.Context, id string) (*models.Conversation, error)
	GetOwned(ctx context.Context, id, userID string) (*models.Conversation, error)
	AppendUserMessage(ctx context.Context, conversationID, text string) (models.Message, error)
	// AppendAssistantMessage also advances the current-section marker when
	// nextSection is non-empty.
	AppendAssistantMessage(ctx context.Context, conversationID, text, nextSection string) (models.Message, error)
}

type conversationService struct {
	convos mongorepo.ConversationRepository
}

func NewConversationService(convos mongorepo.ConversationRepository) ConversationService {
	return &conversationService{convos: convos}
}

func (s *conversationService) CreateForProfile(ctx context.Context, p *models.Profile) (*models.Conversation, error) {
	const op = "ConversationService.CreateForProfile"

	if p == nil || p.ID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "profile is required", nil)
	}

	greeting := fmt.Sprintf(
		"Welcome! I'm here to help build %s's Genius Profile. Let's start by exploring their interests. What activities or subjects does %s enjoy the most?",
		p.StudentName, p.StudentName,
	)

	c := &models.Conversation{
		ProfileID:      p.ID,
		UserID:         p.UserID,
		CurrentSection: genius.SectionOrder[0],
		Messages: []models.Message{{
			Sender:     models.SenderAssistant,
			SenderName: models.AssistantDisplayName,
			Text:       greeting,
			Timestamp:  time.Now().UTC(),
		}},
	}
	if err := s.convos.Create(ctx, c); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create conversation", err)
	}
	return c, nil
}

func (s *conversationService) Get(ctx context.Context, id string) (*models.Conversation, error) {
	const op = "ConversationService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "conversation id is required", nil)
	}
	c, err := s.convos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "conversation not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get conversation", err)
	}
	return c, nil
}

func (s *conversationService) GetOwned(ctx context.Context, id, userID string) (*models.Conversation, error) {
	const op = "ConversationService.GetOwned"

	if id == "" || userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "conversation id and user id are required", nil)
	}
	c, err := s.convos.GetOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "conversation not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get conversation", err)
	}
	return c, nil
}

func (s *conversationService) AppendUserMessage(ctx context.Context, conversationID, text string) (models.Message, error) {
	const op = "ConversationService.AppendUserMessage"

	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, utils.E(utils.CodeInvalidArgument, op, "message text is required", nil)
	}

	msg, err := s.convos.AppendMessage(ctx, conversationID, models.Message{
		Sender:     models.SenderUser,
		SenderName: models.UserDisplayName,
		Text:       text,
	}, "")
	if err != nil {
		return models.Message{}, utils.E(utils.CodeInternal, op, "failed to append message", err)
	}
	return msg, nil
}

func (s *conversationService) AppendAssistantMessage(ctx context.Context, conversationID, text, nextSection string) (models.Message, error) {
	const op = "ConversationService.AppendAssistantMessage"

	// unlike user input, assistant text may be empty: a degenerate model
	// reply still has to close its turn (and carry any section transition)
	msg, err := s.convos.AppendMessage(ctx, conversationID, models.Message{
		Sender:     models.SenderAssistant,
		SenderName: models.AssistantDisplayName,
		Text:       text,
	}, nextSection)
	if err != nil {
		return models.Message{}, utils.E(utils.CodeInternal, op, "failed to append message", err)
	}
	return msg, nil
}
