package repositories

import (
	"context"
	"regexp"
	"time"

	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommunityRepository serves the anonymized cross-user views.
type CommunityRepository interface {
	Leaderboard(ctx context.Context, since time.Time, limit int64) ([]models.LeaderboardEntry, error)
	UserPosition(ctx context.Context, userID string, since time.Time) (*models.UserPosition, error)
	CountUsers(ctx context.Context, filter models.UserCountFilter) (int64, error)
	SharedEntries(ctx context.Context, filter models.SharedFilter) ([]models.Journal, int64, error)
	CountEntries(ctx context.Context, since time.Time, sharedOnly bool) (int64, error)
	MoodDistribution(ctx context.Context, since time.Time, limit int64) ([]models.MoodStat, error)
	PopularTags(ctx context.Context, since time.Time, limit int64) ([]models.TagCount, error)
	TrendingPrompts(ctx context.Context, since time.Time, limit int64) ([]models.TrendingPrompt, error)
}

// MongoCommunityRepository implements CommunityRepository across the users,
// journals and prompts collections.
type MongoCommunityRepository struct {
	users    *mongo.Collection
	journals *mongo.Collection
}

func NewMongoCommunityRepository(db *mongo.Database) *MongoCommunityRepository {
	return &MongoCommunityRepository{
		users:    db.Collection("users"),
		journals: db.Collection("journals"),
	}
}

func sharingUsers() bson.M {
	return bson.M{"isActive": true, "preferences.privacy.shareAnonymously": true}
}

func entriesSince(since time.Time) bson.M {
	return bson.M{"$lookup": bson.M{
		"from": "journals",
		"let":  bson.M{"uid": "$_id"},
		"pipeline": bson.A{
			bson.M{"$match": bson.M{"$expr": bson.M{"$and": bson.A{
				bson.M{"$eq": bson.A{"$user", "$$uid"}},
				bson.M{"$gte": bson.A{"$createdAt", since}},
			}}}},
			bson.M{"$project": bson.M{"_id": 1}},
		},
		"as": "entries",
	}}
}

var leaderboardProjection = bson.M{"$project": bson.M{
	"streak":        "$streak.current",
	"entryCount":    bson.M{"$size": "$entries"},
	"longestStreak": "$streak.longest",
}}

func runAggregate(ctx context.Context, coll *mongo.Collection, pipeline interface{}, out interface{}) error {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// Leaderboard ranks sharing users by current streak, then entries in the
// window, then longest streak.
func (r *MongoCommunityRepository) Leaderboard(ctx context.Context, since time.Time, limit int64) ([]models.LeaderboardEntry, error) {
	pipeline := bson.A{
		bson.M{"$match": sharingUsers()},
		entriesSince(since),
		leaderboardProjection,
		bson.M{"$sort": bson.D{{Key: "streak", Value: -1}, {Key: "entryCount", Value: -1}, {Key: "longestStreak", Value: -1}}},
		bson.M{"$limit": limit},
	}
	entries := []models.LeaderboardEntry{}
	if err := runAggregate(ctx, r.users, pipeline, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].DisplayName = models.AnonymousName(entries[i].UserID)
	}
	return entries, nil
}

// UserPosition places one user among the sharing users. The position counts
// users with a better current streak, or an equal one and a better longest.
// Entry count is not a tiebreaker here although Leaderboard sorts by it, so
// the returned position can differ from the caller's row in that list.
func (r *MongoCommunityRepository) UserPosition(ctx context.Context, userID string, since time.Time) (*models.UserPosition, error) {
	uid, err := objectID(userID, "user")
	if err != nil {
		return nil, err
	}
	pipeline := bson.A{
		bson.M{"$match": bson.M{"_id": uid}},
		entriesSince(since),
		leaderboardProjection,
	}
	var rows []models.LeaderboardEntry
	if err := runAggregate(ctx, r.users, pipeline, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound(mongo.ErrNoDocuments, "user")
	}
	me := rows[0]

	better := sharingUsers()
	better["$or"] = bson.A{
		bson.M{"streak.current": bson.M{"$gt": me.Streak}},
		bson.M{"streak.current": me.Streak, "streak.longest": bson.M{"$gt": me.LongestStreak}},
	}
	ahead, err := r.users.CountDocuments(ctx, better)
	if err != nil {
		return nil, err
	}
	return &models.UserPosition{
		Position:      ahead + 1,
		Streak:        me.Streak,
		EntryCount:    me.EntryCount,
		LongestStreak: me.LongestStreak,
	}, nil
}

func (r *MongoCommunityRepository) CountUsers(ctx context.Context, f models.UserCountFilter) (int64, error) {
	query := bson.M{}
	if f.ActiveOnly {
		query["isActive"] = true
	}
	if f.SharingOnly {
		query["preferences.privacy.shareAnonymously"] = true
	}
	if f.WroteSince != nil {
		query["streak.lastEntryDate"] = bson.M{"$gte": *f.WroteSince}
	}
	if f.CreatedSince != nil {
		query["createdAt"] = bson.M{"$gte": *f.CreatedSince}
	}
	return r.users.CountDocuments(ctx, query)
}

// SharedEntries pages through non-private entries written by active users
// who share anonymously. Type "prompts" keeps only prompted entries and
// Category matches tags case-insensitively.
func (r *MongoCommunityRepository) SharedEntries(ctx context.Context, f models.SharedFilter) ([]models.Journal, int64, error) {
	authors, err := r.users.Distinct(ctx, "_id", sharingUsers())
	if err != nil {
		return nil, 0, err
	}
	if len(authors) == 0 {
		return []models.Journal{}, 0, nil
	}

	query := bson.M{"isPrivate": false, "user": bson.M{"$in": authors}}
	switch f.Type {
	case "prompts":
		query["prompt"] = bson.M{"$exists": true, "$ne": nil}
	case "entries":
		query["content"] = bson.M{"$exists": true, "$ne": ""}
	}
	if f.Category != "" {
		query["tags"] = bson.M{"$in": bson.A{primitive.Regex{Pattern: regexp.QuoteMeta(f.Category), Options: "i"}}}
	}

	total, err := r.journals.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	findOptions := options.Find().
		SetSkip(f.Skip).
		SetLimit(f.Limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"content": 1, "mood": 1, "tags": 1, "prompt": 1, "createdAt": 1, "wordCount": 1})
	cursor, err := r.journals.Find(ctx, query, findOptions)
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

func (r *MongoCommunityRepository) CountEntries(ctx context.Context, since time.Time, sharedOnly bool) (int64, error) {
	query := bson.M{"createdAt": bson.M{"$gte": since}}
	if sharedOnly {
		query["isPrivate"] = false
	}
	return r.journals.CountDocuments(ctx, query)
}

// MoodDistribution groups every entry since the given time by mood. A
// non-positive limit returns all moods.
func (r *MongoCommunityRepository) MoodDistribution(ctx context.Context, since time.Time, limit int64) ([]models.MoodStat, error) {
	pipeline := bson.A{
		bson.M{"$match": bson.M{"createdAt": bson.M{"$gte": since}}},
		bson.M{"$group": bson.M{
			"_id":          "$mood",
			"count":        bson.M{"$sum": 1},
			"avgIntensity": bson.M{"$avg": "$moodIntensity"},
		}},
		bson.M{"$sort": bson.M{"count": -1}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": limit})
	}
	stats := []models.MoodStat{}
	if err := runAggregate(ctx, r.journals, pipeline, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *MongoCommunityRepository) PopularTags(ctx context.Context, since time.Time, limit int64) ([]models.TagCount, error) {
	pipeline := bson.A{
		bson.M{"$match": bson.M{"createdAt": bson.M{"$gte": since}, "tags": bson.M{"$exists": true, "$ne": bson.A{}}}},
		bson.M{"$unwind": "$tags"},
		bson.M{"$group": bson.M{"_id": "$tags", "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.M{"count": -1}},
		bson.M{"$limit": limit},
	}
	tags := []models.TagCount{}
	if err := runAggregate(ctx, r.journals, pipeline, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// TrendingPrompts ranks prompts by how many entries used them in the window.
func (r *MongoCommunityRepository) TrendingPrompts(ctx context.Context, since time.Time, limit int64) ([]models.TrendingPrompt, error) {
	pipeline := bson.A{
		bson.M{"$match": bson.M{"createdAt": bson.M{"$gte": since}, "prompt": bson.M{"$exists": true, "$ne": nil}}},
		bson.M{"$group": bson.M{"_id": "$prompt", "count": bson.M{"$sum": 1}}},
		bson.M{"$lookup": bson.M{"from": "prompts", "localField": "_id", "foreignField": "_id", "as": "promptData"}},
		bson.M{"$unwind": "$promptData"},
		bson.M{"$project": bson.M{
			"_id":        0,
			"promptId":   "$_id",
			"title":      "$promptData.title",
			"category":   "$promptData.category",
			"usageCount": "$count",
		}},
		bson.M{"$sort": bson.M{"usageCount": -1}},
		bson.M{"$limit": limit},
	}
	prompts := []models.TrendingPrompt{}
	if err := runAggregate(ctx, r.journals, pipeline, &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}
