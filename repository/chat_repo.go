package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nishcheyk/infinity-workspace/types"
)

type ChatRepo interface {
	CreateSession(ctx context.Context, session *types.ChatSession) error
	GetSession(ctx context.Context, id string) (*types.ChatSession, error)
	GetUserSession(ctx context.Context, id, userID string) (*types.ChatSession, error)
	// ListSessions returns the user's sessions most recently active first.
	ListSessions(ctx context.Context, userID string) ([]*types.ChatSession, error)
	UpdateSessionTitle(ctx context.Context, id, title string) error
	// TouchSession bumps updated_at; called on every new exchange.
	TouchSession(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, id string) error

	CreateMessage(ctx context.Context, message *types.ChatMessage) error
	// ListMessages returns up to limit messages in chronological order.
	// limit <= 0 means no limit.
	ListMessages(ctx context.Context, sessionID string, limit int) ([]types.ChatMessage, error)
	DeleteMessages(ctx context.Context, sessionID string) error
}

type chatRepo struct {
	sessions *mongo.Collection
	messages *mongo.Collection
}

func NewChatRepo(db *mongo.Database) ChatRepo {
	sessions := db.Collection("chat_sessions")
	messages := db.Collection("chat_messages")
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "timestamp", Value: 1}}},
	}
	if _, err := messages.Indexes().CreateMany(context.Background(), indexes); err != nil {
		// best-effort
	}
	return &chatRepo{
		sessions: sessions,
		messages: messages,
	}
}

func (r *chatRepo) CreateSession(ctx context.Context, session *types.ChatSession) error {
	if session.ID == "" {
		session.ID = bson.NewObjectID().Hex()
	}
	now := time.Now().Unix()
	if session.CreatedAt == 0 {
		session.CreatedAt = now
	}
	if session.UpdatedAt == 0 {
		session.UpdatedAt = now
	}
	if session.Title == "" {
		session.Title = types.DefaultSessionTitle
	}
	_, err := r.sessions.InsertOne(ctx, session)
	return err
}

func (r *chatRepo) GetSession(ctx context.Context, id string) (*types.ChatSession, error) {
	var session types.ChatSession
	err := r.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *chatRepo) GetUserSession(ctx context.Context, id, userID string) (*types.ChatSession, error) {
	var session types.ChatSession
	err := r.sessions.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *chatRepo) ListSessions(ctx context.Context, userID string) ([]*types.ChatSession, error) {
	cursor, err := r.sessions.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*types.ChatSession
	for cursor.Next(ctx) {
		var session types.ChatSession
		if err := cursor.Decode(&session); err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}
	return sessions, cursor.Err()
}

func (r *chatRepo) UpdateSessionTitle(ctx context.Context, id, title string) error {
	_, err := r.sessions.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"title": title, "updated_at": time.Now().Unix()}})
	return err
}

func (r *chatRepo) TouchSession(ctx context.Context, id string) error {
	_, err := r.sessions.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"updated_at": time.Now().Unix()}})
	return err
}

func (r *chatRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.sessions.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *chatRepo) CreateMessage(ctx context.Context, message *types.ChatMessage) error {
	if message.ID == "" {
		message.ID = bson.NewObjectID().Hex()
	}
	if message.Timestamp == 0 {
		message.Timestamp = time.Now().UnixMilli()
	}
	_, err := r.messages.InsertOne(ctx, message)
	return err
}

func (r *chatRepo) ListMessages(ctx context.Context, sessionID string, limit int) ([]types.ChatMessage, error) {
	// A limit means the most recent messages, so fetch newest-first and
	// flip back to chronological order.
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	if limit > 0 {
		opts = options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetLimit(int64(limit))
	}
	cursor, err := r.messages.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []types.ChatMessage
	for cursor.Next(ctx) {
		var message types.ChatMessage
		if err := cursor.Decode(&message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	if limit > 0 {
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	}
	return messages, nil
}

func (r *chatRepo) DeleteMessages(ctx context.Context, sessionID string) error {
	_, err := r.messages.DeleteMany(ctx, bson.M{"session_id": sessionID})
	return err
}
