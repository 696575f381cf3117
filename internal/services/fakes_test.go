package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/villageofwisdom/genius-backend/internal/models"
	"github.com/villageofwisdom/genius-backend/internal/utils"
)

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]models.Profile
	getCalls int
	saves    int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]models.Profile{}}
}

func (r *fakeProfileRepo) Create(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = *p
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	p, ok := r.profiles[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (r *fakeProfileRepo) ListByUser(_ context.Context, userID string) ([]models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Profile
	for _, p := range r.profiles {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) Save(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.profiles[p.ID] = *p
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := u
	return &cp, nil
}

type fakeConversationRepo struct {
	mu     sync.Mutex
	convos map[string]models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{convos: map[string]models.Conversation{}}
}

func (r *fakeConversationRepo) Create(_ context.Context, c *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	for i := range c.Messages {
		if c.Messages[i].ID.IsZero() {
			c.Messages[i].ID = primitive.NewObjectID()
		}
		if c.Messages[i].Timestamp.IsZero() {
			c.Messages[i].Timestamp = now
		}
	}
	r.convos[c.ID.Hex()] = *c
	return nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convos[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := c
	cp.Messages = append([]models.Message(nil), c.Messages...)
	return &cp, nil
}

func (r *fakeConversationRepo) GetOwned(ctx context.Context, id, userID string) (*models.Conversation, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, utils.ErrNotFound
	}
	return c, nil
}

func (r *fakeConversationRepo) AppendMessage(_ context.Context, id string, msg models.Message, nextSection string) (models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convos[id]
	if !ok {
		return models.Message{}, utils.ErrNotFound
	}
	msg.ID = primitive.NewObjectID()
	msg.Timestamp = time.Now().UTC()
	c.Messages = append(c.Messages, msg)
	if nextSection != "" {
		c.CurrentSection = nextSection
	}
	c.UpdatedAt = msg.Timestamp
	r.convos[id] = c
	return msg, nil
}

// fakeCache stores marshaled JSON, mirroring the round-trip behavior of the
// real store.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}
