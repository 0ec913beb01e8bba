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

type FavoriteRepository interface {
	Add(ctx context.Context, fav *models.Favorite) error
	Remove(ctx context.Context, userID, productID primitive.ObjectID) error
	List(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.FavoriteView, int64, error)
	Exists(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
	CountByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error)
}

type MongoFavoriteRepository struct {
	collection *mongo.Collection
}

func NewMongoFavoriteRepository(db *mongo.Database) *MongoFavoriteRepository {
	return &MongoFavoriteRepository{collection: db.Collection("favorites")}
}

func (r *MongoFavoriteRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "product", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoFavoriteRepository) Add(ctx context.Context, fav *models.Favorite) error {
	fav.ID = primitive.NewObjectID()
	fav.AddedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, fav)
	return duplicate(err)
}

func (r *MongoFavoriteRepository) Remove(ctx context.Context, userID, productID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"user": userID, "product": productID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "favorite")
	}
	return nil
}

// List pages a user's favorites, newest first, each joined with its product.
func (r *MongoFavoriteRepository) List(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.FavoriteView, int64, error) {
	filter := bson.M{"user": userID}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.M{"addedAt": -1}}},
		{{Key: "$skip", Value: skip}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "products",
			"localField":   "product",
			"foreignField": "_id",
			"as":           "productDetails",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$productDetails", "preserveNullAndEmptyArrays": true}}},
	)

	favs := []models.FavoriteView{}
	if err := runAggregate(ctx, r.collection, pipeline, &favs); err != nil {
		return nil, 0, err
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return favs, total, nil
}

func (r *MongoFavoriteRepository) Exists(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"user": userID, "product": productID}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoFavoriteRepository) CountByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"product": productID})
}
