package repositories

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	featuredLimit   = 8
	suggestionLimit = 5
)

var sortableFields = map[string]bool{"price": true, "rating": true, "createdAt": true, "soldCount": true}

// ProductRepository stores listings.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
	Featured(ctx context.Context) ([]models.Product, error)
	CategoryCounts(ctx context.Context) ([]models.CategoryCount, error)
	Suggestions(ctx context.Context, q string) ([]models.Suggestion, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	Update(ctx context.Context, product *models.Product) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	ApplySale(ctx context.Context, id primitive.ObjectID, quantity int) error
	SetRating(ctx context.Context, id primitive.ObjectID, summary models.RatingSummary) error
	Count(ctx context.Context) (int64, error)
}

type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

// EnsureIndexes creates the text index used by catalogue search.
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}, {Key: "tags", Value: "text"}}},
		{Keys: bson.D{{Key: "vendorId", Value: 1}, {Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "price", Value: 1}}},
	})
	return err
}

func (r *MongoProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.IsActive = true
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, p)
	return err
}

func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	objID, err := objectID(id, "product")
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&p); err != nil {
		return nil, notFound(err, "product")
	}
	return &p, nil
}

// SortSpec turns "field" or "-field" into a sort document. Unknown fields
// fall back to newest first.
func SortSpec(s string) bson.D {
	dir := 1
	field := s
	if strings.HasPrefix(s, "-") {
		dir = -1
		field = s[1:]
	}
	if !sortableFields[field] {
		return bson.D{{Key: "createdAt", Value: -1}}
	}
	return bson.D{{Key: field, Value: dir}}
}

func (r *MongoProductRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	filter := bson.M{"isActive": true}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.VendorID != nil {
		filter["vendorId"] = *f.VendorID
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}
	if f.Search != "" {
		filter["$text"] = bson.M{"$search": f.Search}
	}

	products := []models.Product{}
	total, err := findPage(ctx, r.collection, filter, SortSpec(f.Sort), f.Skip, f.Limit, &products)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *MongoProductRepository) Featured(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetLimit(featuredLimit)
	err := findAll(ctx, r.collection, bson.M{"isActive": true, "isFeatured": true}, &products, opts)
	return products, err
}

// CategoryCounts groups active listings by category, largest first.
func (r *MongoProductRepository) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isActive": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$category",
			"count":     bson.M{"$sum": 1},
			"avgPrice":  bson.M{"$avg": "$price"},
			"avgRating": bson.M{"$avg": "$rating"},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	counts := []models.CategoryCount{}
	err := runAggregate(ctx, r.collection, pipeline, &counts)
	return counts, err
}

// Suggestions matches active product names by case-insensitive substring.
func (r *MongoProductRepository) Suggestions(ctx context.Context, q string) ([]models.Suggestion, error) {
	filter := bson.M{
		"isActive": true,
		"name":     primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"},
	}
	opts := options.Find().
		SetProjection(bson.M{"name": 1, "category": 1}).
		SetSort(bson.D{{Key: "soldCount", Value: -1}}).
		SetLimit(suggestionLimit)
	out := []models.Suggestion{}
	err := findAll(ctx, r.collection, filter, &out, opts)
	return out, err
}

func (r *MongoProductRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"viewCount": 1}})
	return err
}

func (r *MongoProductRepository) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "product")
	}
	return nil
}

// Deactivate hides a listing. Orders keep referencing it.
func (r *MongoProductRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "product")
	}
	return nil
}

func (r *MongoProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	var products []models.Product
	if err := findAll(ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}}, &products); err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// ApplySale takes quantity off stock and adds it to soldCount. The stock
// guard makes concurrent checkouts unable to oversell.
func (r *MongoProductRepository) ApplySale(ctx context.Context, id primitive.ObjectID, quantity int) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": quantity}},
		bson.M{
			"$inc": bson.M{"stock": -quantity, "soldCount": quantity},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *MongoProductRepository) SetRating(ctx context.Context, id primitive.ObjectID, s models.RatingSummary) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"rating":      s.Average,
		"reviewCount": s.Count,
	}})
	return err
}

func (r *MongoProductRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"isActive": true})
}
