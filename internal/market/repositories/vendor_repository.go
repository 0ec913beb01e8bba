package repositories

import (
	"context"
	"regexp"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VendorRepository stores shops.
type VendorRepository interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	GetByID(ctx context.Context, id string) (*models.Vendor, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Vendor, error)
	List(ctx context.Context, filter models.VendorFilter) ([]models.Vendor, int64, error)
	Update(ctx context.Context, vendor *models.Vendor) error
	SetApproved(ctx context.Context, id string, approved bool) (*models.Vendor, error)
	SetRating(ctx context.Context, id primitive.ObjectID, summary models.RatingSummary) error
	AddSales(ctx context.Context, id primitive.ObjectID, quantity int) error
	Count(ctx context.Context, approved *bool) (int64, error)
}

type MongoVendorRepository struct {
	collection *mongo.Collection
}

func NewMongoVendorRepository(db *mongo.Database) *MongoVendorRepository {
	return &MongoVendorRepository{collection: db.Collection("vendors")}
}

// EnsureIndexes keeps one shop per user.
func (r *MongoVendorRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "isApproved", Value: 1}}},
	})
	return err
}

func (r *MongoVendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	now := time.Now()
	vendor.ID = primitive.NewObjectID()
	if vendor.CommissionRate == 0 {
		vendor.CommissionRate = models.DefaultCommissionRate
	}
	if vendor.Tags == nil {
		vendor.Tags = []string{}
	}
	vendor.IsActive = true
	vendor.CreatedAt = now
	vendor.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, vendor)
	return duplicate(err)
}

func (r *MongoVendorRepository) findOne(ctx context.Context, filter bson.M) (*models.Vendor, error) {
	var v models.Vendor
	if err := r.collection.FindOne(ctx, filter).Decode(&v); err != nil {
		return nil, notFound(err, "vendor")
	}
	return &v, nil
}

func (r *MongoVendorRepository) GetByID(ctx context.Context, id string) (*models.Vendor, error) {
	objID, err := objectID(id, "vendor")
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *MongoVendorRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Vendor, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

// List returns active shops, best rated first. Search matches shop name,
// description and tags case-insensitively.
func (r *MongoVendorRepository) List(ctx context.Context, f models.VendorFilter) ([]models.Vendor, int64, error) {
	filter := bson.M{"isActive": true}
	if f.Approved != nil {
		filter["isApproved"] = *f.Approved
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"shopName": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}

	vendors := []models.Vendor{}
	sort := bson.D{{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}}
	total, err := findPage(ctx, r.collection, filter, sort, f.Skip, f.Limit, &vendors)
	if err != nil {
		return nil, 0, err
	}
	return vendors, total, nil
}

func (r *MongoVendorRepository) Update(ctx context.Context, vendor *models.Vendor) error {
	vendor.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": vendor.ID}, vendor)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "vendor")
	}
	return nil
}

func (r *MongoVendorRepository) SetApproved(ctx context.Context, id string, approved bool) (*models.Vendor, error) {
	objID, err := objectID(id, "vendor")
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"isApproved": approved, "updatedAt": time.Now()}}

	var v models.Vendor
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&v); err != nil {
		return nil, notFound(err, "vendor")
	}
	return &v, nil
}

func (r *MongoVendorRepository) SetRating(ctx context.Context, id primitive.ObjectID, s models.RatingSummary) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"rating":      s.Average,
		"reviewCount": s.Count,
		"updatedAt":   time.Now(),
	}})
	return err
}

func (r *MongoVendorRepository) AddSales(ctx context.Context, id primitive.ObjectID, quantity int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"totalSales": quantity}})
	return err
}

func (r *MongoVendorRepository) Count(ctx context.Context, approved *bool) (int64, error) {
	filter := bson.M{}
	if approved != nil {
		filter["isApproved"] = *approved
	}
	return r.collection.CountDocuments(ctx, filter)
}
