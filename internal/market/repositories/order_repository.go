package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderRepository stores checkouts and their per-shop splits.
type OrderRepository interface {
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByPaymentIntent(ctx context.Context, customerID primitive.ObjectID, intentID string) (*models.Order, error)
	FindByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID, skip, limit int64) ([]models.Order, int64, error)
	ListByVendor(ctx context.Context, vendorID primitive.ObjectID, status string, skip, limit int64) ([]models.Order, int64, error)
	HasPurchased(ctx context.Context, customerID, productID primitive.ObjectID) (bool, error)
	Update(ctx context.Context, order *models.Order) error
	SetPaymentState(ctx context.Context, intentID, paymentStatus, status string) (*models.Order, error)
	Revenue(ctx context.Context) (float64, error)
	Count(ctx context.Context) (int64, error)
}

type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{collection: db.Collection("orders")}
}

func (r *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "paymentIntentId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "vendorOrders.vendorId", Value: 1}}},
	})
	return err
}

// CountBetween counts orders created in [from, to). It seeds the daily
// order number sequence.
func (r *MongoOrderRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": from, "$lt": to}})
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = order.CreatedAt
	_, err := r.collection.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), "paymentIntentId") {
		return fmt.Errorf("%w: %s", ErrOrderExists, order.PaymentIntentID)
	}
	return duplicate(err)
}

func (r *MongoOrderRepository) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	var o models.Order
	if err := r.collection.FindOne(ctx, filter).Decode(&o); err != nil {
		return nil, notFound(err, "order")
	}
	return &o, nil
}

func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	objID, err := objectID(id, "order")
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// GetByPaymentIntent returns the customer's order for an intent.
func (r *MongoOrderRepository) GetByPaymentIntent(ctx context.Context, customerID primitive.ObjectID, intentID string) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"paymentIntentId": intentID, "customerId": customerID})
}

func (r *MongoOrderRepository) FindByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"paymentIntentId": intentID})
}

func (r *MongoOrderRepository) page(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Order, int64, error) {
	orders := []models.Order{}
	total, err := findPage(ctx, r.collection, filter, bson.D{{Key: "createdAt", Value: -1}}, skip, limit, &orders)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *MongoOrderRepository) ListByCustomer(ctx context.Context, customerID primitive.ObjectID, skip, limit int64) ([]models.Order, int64, error) {
	return r.page(ctx, bson.M{"customerId": customerID}, skip, limit)
}

// ListByVendor pages the orders containing a shop's items, optionally
// narrowed to one order status.
func (r *MongoOrderRepository) ListByVendor(ctx context.Context, vendorID primitive.ObjectID, status string, skip, limit int64) ([]models.Order, int64, error) {
	filter := bson.M{"vendorOrders.vendorId": vendorID}
	if status != "" {
		filter["status"] = status
	}
	return r.page(ctx, filter, skip, limit)
}

// HasPurchased reports whether the customer has a paid order for productID.
func (r *MongoOrderRepository) HasPurchased(ctx context.Context, customerID, productID primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{
		"customerId":      customerID,
		"items.productId": productID,
		"paymentStatus":   models.PaymentPaid,
	}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoOrderRepository) Update(ctx context.Context, order *models.Order) error {
	order.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": order.ID}, order)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "order")
	}
	return nil
}

// SetPaymentState records the processor's verdict on an intent and returns
// the updated order.
func (r *MongoOrderRepository) SetPaymentState(ctx context.Context, intentID, paymentStatus, status string) (*models.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"paymentStatus": paymentStatus, "status": status, "updatedAt": time.Now()}}

	var o models.Order
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"paymentIntentId": intentID}, update, opts).Decode(&o); err != nil {
		return nil, notFound(err, "order")
	}
	return &o, nil
}

// Revenue sums the totals of paid orders.
func (r *MongoOrderRepository) Revenue(ctx context.Context) (float64, error) {
	var rows []struct {
		Total float64 `bson:"total"`
	}
	err := runAggregate(ctx, r.collection, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"paymentStatus": models.PaymentPaid}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}}}},
	}, &rows)
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	return rows[0].Total, nil
}

func (r *MongoOrderRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
