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

// ReviewRepository stores product reviews and computes rating summaries.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	ListByProduct(ctx context.Context, productID primitive.ObjectID, skip, limit int64) ([]models.Review, int64, error)
	ListByProducts(ctx context.Context, productIDs []primitive.ObjectID, skip, limit int64) ([]models.Review, int64, error)
	ProductRating(ctx context.Context, productID primitive.ObjectID) (models.RatingSummary, error)
	VendorRating(ctx context.Context, vendorID primitive.ObjectID) (models.RatingSummary, error)
	Update(ctx context.Context, review *models.Review) error
}

type MongoReviewRepository struct {
	collection *mongo.Collection
}

func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{collection: db.Collection("reviews")}
}

// EnsureIndexes allows one review per customer and product.
func (r *MongoReviewRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "customerId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

func (r *MongoReviewRepository) Create(ctx context.Context, review *models.Review) error {
	now := time.Now()
	review.ID = primitive.NewObjectID()
	review.IsActive = true
	if review.HelpfulVotes == nil {
		review.HelpfulVotes = []models.HelpfulVote{}
	}
	review.CreatedAt = now
	review.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, review)
	return duplicate(err)
}

func (r *MongoReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	objID, err := objectID(id, "review")
	if err != nil {
		return nil, err
	}
	var review models.Review
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID, "isActive": true}).Decode(&review); err != nil {
		return nil, notFound(err, "review")
	}
	return &review, nil
}

func (r *MongoReviewRepository) page(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Review, int64, error) {
	reviews := []models.Review{}
	total, err := findPage(ctx, r.collection, filter, bson.D{{Key: "createdAt", Value: -1}}, skip, limit, &reviews)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *MongoReviewRepository) ListByProduct(ctx context.Context, productID primitive.ObjectID, skip, limit int64) ([]models.Review, int64, error) {
	return r.page(ctx, bson.M{"productId": productID, "isActive": true}, skip, limit)
}

// ListByProducts pages the reviews left on any of a shop's products.
func (r *MongoReviewRepository) ListByProducts(ctx context.Context, productIDs []primitive.ObjectID, skip, limit int64) ([]models.Review, int64, error) {
	if len(productIDs) == 0 {
		return []models.Review{}, 0, nil
	}
	return r.page(ctx, bson.M{"productId": bson.M{"$in": productIDs}, "isActive": true}, skip, limit)
}

func (r *MongoReviewRepository) summarize(ctx context.Context, pipeline mongo.Pipeline) (models.RatingSummary, error) {
	var rows []models.RatingSummary
	if err := runAggregate(ctx, r.collection, pipeline, &rows); err != nil {
		return models.RatingSummary{}, err
	}
	if len(rows) == 0 {
		return models.RatingSummary{}, nil
	}
	return rows[0], nil
}

var ratingGroup = bson.D{{Key: "$group", Value: bson.M{
	"_id":        nil,
	"avgRating":  bson.M{"$avg": "$rating"},
	"numReviews": bson.M{"$sum": 1},
}}}

// ProductRating averages the active reviews of one product. A product with
// no reviews yields the zero summary.
func (r *MongoReviewRepository) ProductRating(ctx context.Context, productID primitive.ObjectID) (models.RatingSummary, error) {
	return r.summarize(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID, "isActive": true}}},
		ratingGroup,
	})
}

// VendorRating averages the active reviews across a shop's products.
func (r *MongoReviewRepository) VendorRating(ctx context.Context, vendorID primitive.ObjectID) (models.RatingSummary, error) {
	return r.summarize(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isActive": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "products",
			"localField":   "productId",
			"foreignField": "_id",
			"as":           "product",
		}}},
		{{Key: "$unwind", Value: "$product"}},
		{{Key: "$match", Value: bson.M{"product.vendorId": vendorID}}},
		ratingGroup,
	})
}

func (r *MongoReviewRepository) Update(ctx context.Context, review *models.Review) error {
	review.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": review.ID}, review)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "review")
	}
	return nil
}
