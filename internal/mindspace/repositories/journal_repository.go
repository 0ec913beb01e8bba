package repositories

import (
	"context"
	"regexp"
	"time"

	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"github.com/anonto42/webapps/backend/pkg/ai"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JournalRepository defines the interface for journal entry storage
type JournalRepository interface {
	CreateJournal(ctx context.Context, journal *models.Journal) error
	GetJournal(ctx context.Context, userID, id string) (*models.Journal, error)
	ListJournals(ctx context.Context, filter models.JournalFilter) ([]models.Journal, int64, error)
	UpdateJournal(ctx context.Context, journal *models.Journal) error
	DeleteJournal(ctx context.Context, userID, id string) error
	SetFavorite(ctx context.Context, userID, id string, favorite bool) error
	SetPrivate(ctx context.Context, userID, id string, private bool) (*models.Journal, error)
	SetAnalysis(ctx context.Context, id primitive.ObjectID, analysis *ai.Sentiment) error
	SearchJournals(ctx context.Context, userID, q string, skip, limit int64) ([]models.Journal, int64, error)
	MoodStats(ctx context.Context, userID string, start, end time.Time) ([]models.MoodStat, error)
	WritingDays(ctx context.Context, userID string, limit int64) ([]models.DayCount, error)
	CountJournals(ctx context.Context, userID string, since time.Time, favoritesOnly bool) (int64, error)
	AverageWordCount(ctx context.Context, userID string, since time.Time) (float64, error)
	RecentJournals(ctx context.Context, userID string, since time.Time, limit int64) ([]models.Journal, error)
}

// MongoJournalRepository implements JournalRepository for MongoDB
type MongoJournalRepository struct {
	collection *mongo.Collection
}

// NewMongoJournalRepository creates a new MongoJournalRepository
func NewMongoJournalRepository(db *mongo.Database) *MongoJournalRepository {
	return &MongoJournalRepository{collection: db.Collection("journals")}
}

// EnsureIndexes creates the per-user listing indexes and the search text index.
func (r *MongoJournalRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "mood", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "isPrivate", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

func (r *MongoJournalRepository) CreateJournal(ctx context.Context, journal *models.Journal) error {
	now := time.Now()
	journal.ID = primitive.NewObjectID()
	journal.CreatedAt = now
	journal.UpdatedAt = now
	journal.ComputeMetrics()
	if journal.Tags == nil {
		journal.Tags = []string{}
	}
	_, err := r.collection.InsertOne(ctx, journal)
	return err
}

func ownedBy(userID, id string) (bson.M, error) {
	uid, err := objectID(userID, "user")
	if err != nil {
		return nil, err
	}
	jid, err := objectID(id, "journal")
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": jid, "user": uid}, nil
}

// GetJournal returns an entry only when it belongs to userID.
func (r *MongoJournalRepository) GetJournal(ctx context.Context, userID, id string) (*models.Journal, error) {
	filter, err := ownedBy(userID, id)
	if err != nil {
		return nil, err
	}
	var journal models.Journal
	if err := r.collection.FindOne(ctx, filter).Decode(&journal); err != nil {
		return nil, notFound(err, "journal")
	}
	return &journal, nil
}

func journalQuery(f models.JournalFilter) bson.M {
	query := bson.M{"user": f.UserID}
	if f.Mood != "" {
		query["mood"] = f.Mood
	}
	if f.StartDate != nil || f.EndDate != nil {
		created := bson.M{}
		if f.StartDate != nil {
			created["$gte"] = *f.StartDate
		}
		if f.EndDate != nil {
			created["$lte"] = *f.EndDate
		}
		query["createdAt"] = created
	}
	if len(f.Tags) > 0 {
		query["tags"] = bson.M{"$in": f.Tags}
	}
	return query
}

var journalSortFields = map[string]string{
	"createdAt":     "createdAt",
	"updatedAt":     "updatedAt",
	"mood":          "mood",
	"moodIntensity": "moodIntensity",
	"wordCount":     "wordCount",
}

func (r *MongoJournalRepository) ListJournals(ctx context.Context, f models.JournalFilter) ([]models.Journal, int64, error) {
	query := journalQuery(f)

	field, ok := journalSortFields[f.SortBy]
	if !ok {
		field = "createdAt"
	}
	dir := 1
	if f.SortDesc {
		dir = -1
	}
	findOptions := options.Find().SetSkip(f.Skip).SetLimit(f.Limit).SetSort(bson.D{{Key: field, Value: dir}})

	return r.findPage(ctx, query, findOptions)
}

func (r *MongoJournalRepository) findPage(ctx context.Context, query bson.M, findOptions *options.FindOptions) ([]models.Journal, int64, error) {
	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	cursor, err := r.collection.Find(ctx, query, findOptions)
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

// UpdateJournal stores the editable fields of journal and refreshes its metrics.
func (r *MongoJournalRepository) UpdateJournal(ctx context.Context, journal *models.Journal) error {
	journal.ComputeMetrics()
	journal.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":         journal.Title,
			"content":       journal.Content,
			"mood":          journal.Mood,
			"moodIntensity": journal.MoodIntensity,
			"tags":          journal.Tags,
			"isPrivate":     journal.IsPrivate,
			"prompt":        journal.Prompt,
			"wordCount":     journal.WordCount,
			"readingTime":   journal.ReadingTime,
			"updatedAt":     journal.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": journal.ID, "user": journal.User}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "journal")
	}
	return nil
}

func (r *MongoJournalRepository) DeleteJournal(ctx context.Context, userID, id string) error {
	filter, err := ownedBy(userID, id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "journal")
	}
	return nil
}

func (r *MongoJournalRepository) SetFavorite(ctx context.Context, userID, id string, favorite bool) error {
	filter, err := ownedBy(userID, id)
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"isFavorite": favorite, "updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "journal")
	}
	return nil
}

// SetPrivate shares or unshares an entry and returns the updated document.
func (r *MongoJournalRepository) SetPrivate(ctx context.Context, userID, id string, private bool) (*models.Journal, error) {
	filter, err := ownedBy(userID, id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var journal models.Journal
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{"isPrivate": private, "updatedAt": time.Now()}}, opts).Decode(&journal)
	if err != nil {
		return nil, notFound(err, "journal")
	}
	return &journal, nil
}

func (r *MongoJournalRepository) SetAnalysis(ctx context.Context, id primitive.ObjectID, analysis *ai.Sentiment) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"aiAnalysis": analysis}})
	return err
}

// SearchJournals matches q case-insensitively against title, content and tags.
func (r *MongoJournalRepository) SearchJournals(ctx context.Context, userID, q string, skip, limit int64) ([]models.Journal, int64, error) {
	uid, err := objectID(userID, "user")
	if err != nil {
		return nil, 0, err
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	query := bson.M{
		"user": uid,
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
			bson.M{"tags": bson.M{"$in": bson.A{pattern}}},
		},
	}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findPage(ctx, query, findOptions)
}

func (r *MongoJournalRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// MoodStats groups a user's entries between start and end by mood.
func (r *MongoJournalRepository) MoodStats(ctx context.Context, userID string, start, end time.Time) ([]models.MoodStat, error) {
	uid, err := objectID(userID, "user")
	if err != nil {
		return nil, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": uid, "createdAt": bson.M{"$gte": start, "$lte": end}}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$mood",
			"count":        bson.M{"$sum": 1},
			"avgIntensity": bson.M{"$avg": "$moodIntensity"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}
	stats := []models.MoodStat{}
	if err := r.aggregate(ctx, pipeline, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// WritingDays counts entries per calendar day, most recent day first.
func (r *MongoJournalRepository) WritingDays(ctx context.Context, userID string, limit int64) ([]models.DayCount, error) {
	uid, err := objectID(userID, "user")
	if err != nil {
		return nil, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": uid}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$createdAt"},
				"month": bson.M{"$month": "$createdAt"},
				"day":   bson.M{"$dayOfMonth": "$createdAt"},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: -1}, {Key: "_id.month", Value: -1}, {Key: "_id.day", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: dayProjection}},
	}
	days := []models.DayCount{}
	if err := r.aggregate(ctx, pipeline, &days); err != nil {
		return nil, err
	}
	return days, nil
}

var dayProjection = bson.M{"_id": 0, "year": "$_id.year", "month": "$_id.month", "day": "$_id.day", "count": 1}

func (r *MongoJournalRepository) CountJournals(ctx context.Context, userID string, since time.Time, favoritesOnly bool) (int64, error) {
	uid, err := objectID(userID, "user")
	if err != nil {
		return 0, err
	}
	query := bson.M{"user": uid, "createdAt": bson.M{"$gte": since}}
	if favoritesOnly {
		query["isFavorite"] = true
	}
	return r.collection.CountDocuments(ctx, query)
}

func (r *MongoJournalRepository) AverageWordCount(ctx context.Context, userID string, since time.Time) (float64, error) {
	uid, err := objectID(userID, "user")
	if err != nil {
		return 0, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": uid, "createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$wordCount"}}}},
	}
	var rows []struct {
		Avg float64 `bson:"avg"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Avg, nil
}

// RecentJournals returns non-empty entries since the given time, newest first.
func (r *MongoJournalRepository) RecentJournals(ctx context.Context, userID string, since time.Time, limit int64) ([]models.Journal, error) {
	uid, err := objectID(userID, "user")
	if err != nil {
		return nil, err
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{
		"user":      uid,
		"createdAt": bson.M{"$gte": since},
		"content":   bson.M{"$exists": true, "$ne": ""},
	}, findOptions)
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
