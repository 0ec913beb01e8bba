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

type FollowRepository interface {
	Follow(ctx context.Context, follow *models.Follow) error
	Unfollow(ctx context.Context, follower, following primitive.ObjectID) error
	IsFollowing(ctx context.Context, follower, following primitive.ObjectID) (bool, error)
	CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Following(ctx context.Context, follower primitive.ObjectID) ([]models.FollowedVendor, error)
}

type MongoFollowRepository struct {
	collection *mongo.Collection
}

func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection("follows")}
}

func (r *MongoFollowRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "follower", Value: 1}, {Key: "following", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "following", Value: 1}}},
	})
	return err
}

func (r *MongoFollowRepository) Follow(ctx context.Context, f *models.Follow) error {
	f.ID = primitive.NewObjectID()
	f.FollowedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, f)
	return duplicate(err)
}

func (r *MongoFollowRepository) Unfollow(ctx context.Context, follower, following primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"follower": follower, "following": following})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "follow")
	}
	return nil
}

func (r *MongoFollowRepository) IsFollowing(ctx context.Context, follower, following primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"follower": follower, "following": following}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoFollowRepository) CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"following": userID})
}

// Following lists the vendor accounts follower follows, joined with their
// user profile and shop.
func (r *MongoFollowRepository) Following(ctx context.Context, follower primitive.ObjectID) ([]models.FollowedVendor, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"follower": follower}}},
		{{Key: "$sort", Value: bson.M{"followedAt": -1}}},
		{{Key: "$lookup", Value: bson.M{"from": "users", "localField": "following", "foreignField": "_id", "as": "user"}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$lookup", Value: bson.M{"from": "vendors", "localField": "following", "foreignField": "userId", "as": "shop"}}},
		{{Key: "$unwind", Value: bson.M{"path": "$shop", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"_id":        "$user._id",
			"name":       "$user.name",
			"avatar":     "$user.avatar",
			"followedAt": 1,
			"shop":       1,
		}}},
	}
	out := []models.FollowedVendor{}
	err := runAggregate(ctx, r.collection, pipeline, &out)
	return out, err
}
