package repositories

import (
	"context"
	"time"

	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AdminRepository serves moderation, analytics and export queries.
type AdminRepository interface {
	CountPrompts(ctx context.Context, userCreatedOnly bool) (int64, error)
	DailyGrowth(ctx context.Context, collection string, since time.Time) ([]models.DayCount, error)
	PopularCategories(ctx context.Context, since time.Time, limit int64) ([]models.TagCount, error)
	ListJournals(ctx context.Context, filter models.ContentFilter) ([]models.Journal, int64, error)
	DeleteJournal(ctx context.Context, id string) error
	ExportUsers(ctx context.Context, since time.Time) ([]models.User, error)
	ExportJournals(ctx context.Context, since time.Time) ([]models.Journal, error)
	MoodIntensity(ctx context.Context, since time.Time) (*models.IntensityRange, error)
	DailyMoods(ctx context.Context, since time.Time) ([]models.DailyMood, error)
}

// MongoAdminRepository implements AdminRepository for MongoDB
type MongoAdminRepository struct {
	db *mongo.Database
}

func NewMongoAdminRepository(db *mongo.Database) *MongoAdminRepository {
	return &MongoAdminRepository{db: db}
}

func (r *MongoAdminRepository) CountPrompts(ctx context.Context, userCreatedOnly bool) (int64, error) {
	query := bson.M{"isActive": true}
	if userCreatedOnly {
		query = bson.M{"isSystemPrompt": false}
	}
	return r.db.Collection("prompts").CountDocuments(ctx, query)
}

// DailyGrowth counts documents created per day in the users or journals
// collection, oldest day first.
func (r *MongoAdminRepository) DailyGrowth(ctx context.Context, collection string, since time.Time) ([]models.DayCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$createdAt"},
				"month": bson.M{"$month": "$createdAt"},
				"day":   bson.M{"$dayOfMonth": "$createdAt"},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}, {Key: "_id.day", Value: 1}}}},
		{{Key: "$project", Value: dayProjection}},
	}
	days := []models.DayCount{}
	if err := runAggregate(ctx, r.db.Collection(collection), pipeline, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// PopularCategories ranks prompt categories by prompted entries in the window.
func (r *MongoAdminRepository) PopularCategories(ctx context.Context, since time.Time, limit int64) ([]models.TagCount, error) {
	pipeline := bson.A{
		bson.M{"$match": bson.M{"createdAt": bson.M{"$gte": since}, "prompt": bson.M{"$exists": true, "$ne": nil}}},
		bson.M{"$lookup": bson.M{"from": "prompts", "localField": "prompt", "foreignField": "_id", "as": "promptData"}},
		bson.M{"$unwind": "$promptData"},
		bson.M{"$group": bson.M{"_id": "$promptData.category", "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.M{"count": -1}},
		bson.M{"$limit": limit},
	}
	rows := []models.TagCount{}
	if err := runAggregate(ctx, r.db.Collection("journals"), pipeline, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListJournals pages through every user's entries for moderation.
func (r *MongoAdminRepository) ListJournals(ctx context.Context, f models.ContentFilter) ([]models.Journal, int64, error) {
	query := bson.M{"user": bson.M{"$exists": true}}
	switch f.Status {
	case "shared":
		query["isPrivate"] = false
	case "private":
		query["isPrivate"] = true
	}
	if f.Since != nil {
		query["createdAt"] = bson.M{"$gte": *f.Since}
	}

	coll := r.db.Collection("journals")
	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	cursor, err := coll.Find(ctx, query, options.Find().SetSkip(f.Skip).SetLimit(f.Limit).SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	journals := []models.Journal{}
	if err = cursor.All(ctx, &journals); err != nil {
		return nil, 0, err
	}
	return journals, total, nil
}

func (r *MongoAdminRepository) DeleteJournal(ctx context.Context, id string) error {
	objID, err := objectID(id, "journal")
	if err != nil {
		return err
	}
	res, err := r.db.Collection("journals").DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "journal")
	}
	return nil
}

// ExportUsers returns accounts created since the given time without
// credentials or Google ids.
func (r *MongoAdminRepository) ExportUsers(ctx context.Context, since time.Time) ([]models.User, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetProjection(bson.M{"password": 0, "googleId": 0, "resetPasswordToken": 0, "resetPasswordExpires": 0})
	cursor, err := r.db.Collection("users").Find(ctx, bson.M{"createdAt": bson.M{"$gte": since}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoAdminRepository) ExportJournals(ctx context.Context, since time.Time) ([]models.Journal, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetProjection(bson.M{"aiAnalysis.keywords": 0})
	cursor, err := r.db.Collection("journals").Find(ctx, bson.M{"createdAt": bson.M{"$gte": since}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	journals := []models.Journal{}
	if err = cursor.All(ctx, &journals); err != nil {
		return nil, err
	}
	return journals, nil
}

// MoodIntensity returns the average, minimum and maximum intensity in the
// window. It is zero valued when there are no entries.
func (r *MongoAdminRepository) MoodIntensity(ctx context.Context, since time.Time) (*models.IntensityRange, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"avgIntensity": bson.M{"$avg": "$moodIntensity"},
			"minIntensity": bson.M{"$min": "$moodIntensity"},
			"maxIntensity": bson.M{"$max": "$moodIntensity"},
		}}},
	}
	var rows []models.IntensityRange
	if err := runAggregate(ctx, r.db.Collection("journals"), pipeline, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &models.IntensityRange{}, nil
	}
	return &rows[0], nil
}

func (r *MongoAdminRepository) DailyMoods(ctx context.Context, since time.Time) ([]models.DailyMood, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$createdAt"},
				"month": bson.M{"$month": "$createdAt"},
				"day":   bson.M{"$dayOfMonth": "$createdAt"},
				"mood":  "$mood",
			},
			"count":        bson.M{"$sum": 1},
			"avgIntensity": bson.M{"$avg": "$moodIntensity"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}, {Key: "_id.day", Value: 1}}}},
		{{Key: "$project", Value: bson.M{
			"_id": 0, "year": "$_id.year", "month": "$_id.month", "day": "$_id.day", "mood": "$_id.mood",
			"count": 1, "avgIntensity": 1,
		}}},
	}
	rows := []models.DailyMood{}
	if err := runAggregate(ctx, r.db.Collection("journals"), pipeline, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
