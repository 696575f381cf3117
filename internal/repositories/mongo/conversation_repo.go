package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/villageofwisdom/genius-backend/internal/models"
	"github.com/villageofwisdom/genius-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ConversationRepository interface {
	Create(ctx context.Context, c *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	// GetOwned returns the conversation only if it belongs to userID.
	GetOwned(ctx context.Context, id, userID string) (*models.Conversation, error)
	// AppendMessage pushes an immutable message onto the transcript and, when
	// nextSection is non-empty, advances the current-section marker in the
	// same update. The message ID and timestamp are assigned here.
	AppendMessage(ctx context.Context, id string, msg models.Message, nextSection string) (models.Message, error)
}

type conversationRepo struct {
	col *mongo.Collection
}

func NewConversationRepo(db *mongo.Database) ConversationRepository {
	return &conversationRepo{col: db.Collection("conversations")}
}

func (r *conversationRepo) Create(ctx context.Context, c *models.Conversation) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Messages == nil {
		c.Messages = []models.Message{}
	}
	for i := range c.Messages {
		if c.Messages[i].ID.IsZero() {
			c.Messages[i].ID = primitive.NewObjectID()
		}
		if c.Messages[i].Timestamp.IsZero() {
			c.Messages[i].Timestamp = now
		}
	}

	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.ErrNotFound
	}

	var c models.Conversation
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *conversationRepo) GetOwned(ctx context.Context, id, userID string) (*models.Conversation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.ErrNotFound
	}

	var c models.Conversation
	err = r.col.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *conversationRepo) AppendMessage(ctx context.Context, id string, msg models.Message, nextSection string) (models.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Message{}, utils.ErrNotFound
	}

	msg.ID = primitive.NewObjectID()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if nextSection != "" {
		set["current_section"] = nextSection
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  set,
		},
	)
	if err != nil {
		return models.Message{}, err
	}
	if res.MatchedCount == 0 {
		return models.Message{}, utils.ErrNotFound
	}
	return msg, nil
}
