package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/datatypes"

	"github.com/villageofwisdom/genius-backend/internal/genius"
	"github.com/villageofwisdom/genius-backend/internal/models"
	"github.com/villageofwisdom/genius-backend/internal/services"
	"github.com/villageofwisdom/genius-backend/internal/utils"
)

var errNotScripted = errors.New("not scripted for this test")

type fakeProfileService struct {
	mu      sync.Mutex
	profile models.Profile
	marked  []string
}

func newFakeProfileService(p models.Profile) *fakeProfileService {
	return &fakeProfileService{profile: p}
}

func (s *fakeProfileService) snapshot() models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *fakeProfileService) Create(context.Context, string, services.CreateProfileInput) (*models.Profile, error) {
	return nil, errNotScripted
}

func (s *fakeProfileService) Get(_ context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.profile.ID {
		return nil, utils.E(utils.CodeNotFound, "fake", "profile not found", nil)
	}
	cp := s.profile
	return &cp, nil
}

func (s *fakeProfileService) GetOwned(ctx context.Context, id, userID string) (*models.Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, "fake", "forbidden", nil)
	}
	return p, nil
}

func (s *fakeProfileService) ListByUser(context.Context, string) ([]models.Profile, error) {
	return nil, errNotScripted
}

func (s *fakeProfileService) MarkSectionInProgress(_ context.Context, profileID, section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, section)
	sections := s.profile.Sections.Data()
	if sec := models.FindSection(sections, section); sec != nil && sec.Status == models.SectionNotStarted {
		sec.Status = models.SectionInProgress
		s.profile.Sections = datatypes.NewJSONType(sections)
	}
	return nil
}

func (s *fakeProfileService) ApplyProgress(_ context.Context, profileID, section string, reply genius.Reply) (*models.Profile, error) {
	if !reply.SectionComplete {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sections := s.profile.Sections.Data()
	if sec := models.FindSection(sections, section); sec != nil {
		sec.Status = models.SectionComplete
		sec.Description = reply.SectionContent
	}
	allComplete := true
	for _, sec := range sections {
		if sec.Status != models.SectionComplete {
			allComplete = false
		}
	}
	s.profile.Sections = datatypes.NewJSONType(sections)
	s.profile.PercentComplete = genius.PercentComplete(sections)
	if allComplete {
		s.profile.Status = models.ProfileComplete
	}
	cp := s.profile
	return &cp, nil
}

type fakeConversationService struct {
	mu   sync.Mutex
	conv models.Conversation
}

func newFakeConversationService(c models.Conversation) *fakeConversationService {
	return &fakeConversationService{conv: c}
}

func (s *fakeConversationService) snapshot() models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.conv
	cp.Messages = append([]models.Message(nil), s.conv.Messages...)
	return cp
}

func (s *fakeConversationService) CreateForProfile(context.Context, *models.Profile) (*models.Conversation, error) {
	return nil, errNotScripted
}

func (s *fakeConversationService) Get(_ context.Context, id string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.conv.ID.Hex() {
		return nil, utils.E(utils.CodeNotFound, "fake", "conversation not found", nil)
	}
	cp := s.conv
	cp.Messages = append([]models.Message(nil), s.conv.Messages...)
	return &cp, nil
}

func (s *fakeConversationService) GetOwned(ctx context.Context, id, userID string) (*models.Conversation, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, utils.E(utils.CodeNotFound, "fake", "conversation not found", nil)
	}
	return c, nil
}

func (s *fakeConversationService) append(sender, senderName, text, nextSection string) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := models.Message{
		ID:         primitive.NewObjectID(),
		Sender:     sender,
		SenderName: senderName,
		Text:       text,
		Timestamp:  time.Now().UTC(),
	}
	s.conv.Messages = append(s.conv.Messages, msg)
	if nextSection != "" {
		s.conv.CurrentSection = nextSection
	}
	return msg
}

func (s *fakeConversationService) AppendUserMessage(_ context.Context, _, text string) (models.Message, error) {
	return s.append(models.SenderUser, models.UserDisplayName, text, ""), nil
}

func (s *fakeConversationService) AppendAssistantMessage(_ context.Context, _, text, nextSection string) (models.Message, error) {
	return s.append(models.SenderAssistant, models.AssistantDisplayName, text, nextSection), nil
}

// scriptedInterview replays canned token streams, one per turn.
type scriptedInterview struct {
	mu      sync.Mutex
	scripts [][]string
	errs    []error
	calls   int
}

func (s *scriptedInterview) StreamReply(_ context.Context, _ *models.Profile, _ *models.Conversation, _, _ string) *genius.ReplyStream {
	s.mu.Lock()
	i := s.calls
	s.calls++
	s.mu.Unlock()

	ch := make(chan string)
	errs := make(chan error, 1)
	go func() {
		if i < len(s.scripts) {
			for _, chunk := range s.scripts[i] {
				ch <- chunk
			}
		}
		if i < len(s.errs) && s.errs[i] != nil {
			errs <- s.errs[i]
		}
		close(errs)
		close(ch)
	}()
	return genius.NewReplyStream(ch, errs)
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
	deny bool
	err  error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) TryLock(_ context.Context, conversationID string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.deny || l.held[conversationID] {
		return false, nil
	}
	l.held[conversationID] = true
	return true, nil
}

func (l *fakeLocker) Unlock(_ context.Context, conversationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, conversationID)
	return nil
}
