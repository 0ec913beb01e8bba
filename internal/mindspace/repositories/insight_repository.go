package repositories

import (
	"context"
	"time"

	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsightRepository defines the interface for generated insight storage
type InsightRepository interface {
	CreateInsight(ctx context.Context, insight *models.Insight) error
	GetInsight(ctx context.Context, userID, id string) (*models.Insight, error)
	ListInsights(ctx context.Context, filter models.InsightFilter) ([]models.Insight, int64, error)
	MarkRead(ctx context.Context, userID, id string) (*models.Insight, error)
	SetFavorite(ctx context.Context, userID, id string, favorite bool) error
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	HighPriorityUnread(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Insight, error)
}

// MongoInsightRepository implements InsightRepository for MongoDB
type MongoInsightRepository struct {
	collection *mongo.Collection
}

// NewMongoInsightRepository creates a new MongoInsightRepository
func NewMongoInsightRepository(db *mongo.Database) *MongoInsightRepository {
	return &MongoInsightRepository{collection: db.Collection("insights")}
}

func (r *MongoInsightRepository) CreateInsight(ctx context.Context, insight *models.Insight) error {
	now := time.Now()
	insight.ID = primitive.NewObjectID()
	if insight.CreatedAt.IsZero() {
		insight.CreatedAt = now
	}
	insight.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, insight)
	return err
}

func insightOwnedBy(userID, id string) (bson.M, error) {
	uid, err := objectID(userID, "user")
	if err != nil {
		return nil, err
	}
	iid, err := objectID(id, "insight")
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": iid, "user": uid}, nil
}

func (r *MongoInsightRepository) GetInsight(ctx context.Context, userID, id string) (*models.Insight, error) {
	filter, err := insightOwnedBy(userID, id)
	if err != nil {
		return nil, err
	}
	var insight models.Insight
	if err := r.collection.FindOne(ctx, filter).Decode(&insight); err != nil {
		return nil, notFound(err, "insight")
	}
	return &insight, nil
}

func (r *MongoInsightRepository) find(ctx context.Context, query bson.M, findOptions *options.FindOptions) ([]models.Insight, error) {
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	insights := []models.Insight{}
	if err = cursor.All(ctx, &insights); err != nil {
		return nil, err
	}
	return insights, nil
}

func (r *MongoInsightRepository) ListInsights(ctx context.Context, f models.InsightFilter) ([]models.Insight, int64, error) {
	query := bson.M{"user": f.UserID}
	if f.Type != "" {
		query["type"] = f.Type
	}
	if f.IsRead != nil {
		query["isRead"] = *f.IsRead
	}
	if f.Since != nil {
		query["createdAt"] = bson.M{"$gte": *f.Since}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	findOptions := options.Find().SetSkip(f.Skip).SetLimit(f.Limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	insights, err := r.find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	return insights, total, nil
}

func (r *MongoInsightRepository) MarkRead(ctx context.Context, userID, id string) (*models.Insight, error) {
	filter, err := insightOwnedBy(userID, id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var insight models.Insight
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now()}}, opts).Decode(&insight)
	if err != nil {
		return nil, notFound(err, "insight")
	}
	return &insight, nil
}

func (r *MongoInsightRepository) SetFavorite(ctx context.Context, userID, id string, favorite bool) error {
	filter, err := insightOwnedBy(userID, id)
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"isFavorite": favorite, "updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "insight")
	}
	return nil
}

func (r *MongoInsightRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user": userID, "isRead": false})
}

func (r *MongoInsightRepository) HighPriorityUnread(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Insight, error) {
	return r.find(ctx, bson.M{"user": userID, "priority": "high", "isRead": false}, options.Find().SetLimit(limit))
}
