package repositories

import (
	"context"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository stores direct messages between users.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	Conversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error)
	Thread(ctx context.Context, conversationID string, skip, limit int64) ([]models.Message, int64, error)
	MarkThreadRead(ctx context.Context, conversationID string, receiver primitive.ObjectID, at time.Time) (int64, error)
	MarkRead(ctx context.Context, id string, receiver primitive.ObjectID, at time.Time) (*models.Message, error)
	UnreadCount(ctx context.Context, receiver primitive.ObjectID) (int64, error)
}

type MongoMessageRepository struct {
	collection *mongo.Collection
}

func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

func (r *MongoMessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "isRead", Value: 1}}},
	})
	return err
}

func (r *MongoMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	msg.ID = primitive.NewObjectID()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

// Conversations returns one entry per thread userID takes part in, with the
// latest message and the count of messages userID has not read. Threads
// with the newest activity come first.
func (r *MongoMessageRepository) Conversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{bson.M{"sender": userID}, bson.M{"receiver": userID}}}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$conversationId",
			"lastMessage": bson.M{"$first": "$$ROOT"},
			"unreadCount": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$receiver", userID}},
					bson.M{"$eq": bson.A{"$isRead", false}},
				}},
				1, 0,
			}}},
		}}},
		{{Key: "$addFields", Value: bson.M{"otherUserId": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$lastMessage.sender", userID}},
			"$lastMessage.receiver",
			"$lastMessage.sender",
		}}}}},
		{{Key: "$sort", Value: bson.M{"lastMessage.createdAt": -1}}},
	}
	out := []models.Conversation{}
	err := runAggregate(ctx, r.collection, pipeline, &out)
	return out, err
}

// Thread pages a conversation oldest first.
func (r *MongoMessageRepository) Thread(ctx context.Context, conversationID string, skip, limit int64) ([]models.Message, int64, error) {
	msgs := []models.Message{}
	total, err := findPage(ctx, r.collection, bson.M{"conversationId": conversationID}, bson.D{{Key: "createdAt", Value: 1}}, skip, limit, &msgs)
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

// MarkThreadRead marks every unread message addressed to receiver in the
// conversation as read.
func (r *MongoMessageRepository) MarkThreadRead(ctx context.Context, conversationID string, receiver primitive.ObjectID, at time.Time) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"conversationId": conversationID, "receiver": receiver, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "readAt": at}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// MarkRead marks one message read. Only its receiver may do so; any other
// caller sees not found.
func (r *MongoMessageRepository) MarkRead(ctx context.Context, id string, receiver primitive.ObjectID, at time.Time) (*models.Message, error) {
	objID, err := objectID(id, "message")
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"isRead": true, "readAt": at}}

	var msg models.Message
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID, "receiver": receiver}, update, opts).Decode(&msg); err != nil {
		return nil, notFound(err, "message")
	}
	return &msg, nil
}

func (r *MongoMessageRepository) UnreadCount(ctx context.Context, receiver primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"receiver": receiver, "isRead": false})
}
