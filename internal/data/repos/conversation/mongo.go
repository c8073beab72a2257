package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

const mongoCollection = "conversations"

type mongoRepo struct {
	coll *mongo.Collection
	log  *logger.Logger
}

// NewMongoRepo stores one document per session. It creates the unique
// session_id index and the user listing index.
func NewMongoRepo(ctx context.Context, db *mongo.Database, log *logger.Logger) (Repo, error) {
	coll := db.Collection(mongoCollection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("create conversation indexes: %w", err)
	}
	return &mongoRepo{coll: coll, log: log.With("repo", "MongoConversationRepo")}, nil
}

func (r *mongoRepo) Get(ctx context.Context, sessionID string) (*chat.Conversation, error) {
	var c chat.Conversation
	err := r.coll.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &c, nil
}

func (r *mongoRepo) Create(ctx context.Context, c *chat.Conversation) error {
	if c.Turns == nil {
		c.Turns = []chat.Turn{}
	}
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	return nil
}

func (r *mongoRepo) Update(ctx context.Context, c *chat.Conversation) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"session_id": c.SessionID},
		bson.M{"$set": bson.M{
			"turns":      c.Turns,
			"title":      c.Title,
			"updated_at": c.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepo) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"session_id": sessionID}); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

func (r *mongoRepo) ListByUser(ctx context.Context, userID string) ([]*chat.Conversation, error) {
	out := []*chat.Conversation{}
	if strings.TrimSpace(userID) == "" {
		return out, nil
	}
	cursor, err := r.coll.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer cursor.Close(ctx)
	for cursor.Next(ctx) {
		var c chat.Conversation
		if err := cursor.Decode(&c); err != nil {
			r.log.Warn("skipping undecodable conversation", "error", err)
			continue
		}
		out = append(out, &c)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return out, nil
}
