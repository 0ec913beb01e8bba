package repositories

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for mindspace account storage
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdateStreak(ctx context.Context, id primitive.ObjectID, streak models.Streak) error
	SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error
	SetActive(ctx context.Context, id string, active bool) (*models.User, error)
	AddGoal(ctx context.Context, userID primitive.ObjectID, goal models.WellnessGoal) error
	UpdateGoal(ctx context.Context, userID primitive.ObjectID, goal models.WellnessGoal) error
	DeleteGoal(ctx context.Context, userID primitive.ObjectID, goalID string) error
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.UserWithStats, int64, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// EnsureIndexes creates the unique email and sparse googleId indexes.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "googleId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	return err
}

func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.WellnessGoals == nil {
		user.WellnessGoals = []models.WellnessGoal{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return duplicate(err)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := objectID(id, "user")
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *MongoUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"googleId": googleID})
}

// GetUserByResetToken finds the account holding an unexpired reset token hash.
func (r *MongoUserRepository) GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	return r.findOne(ctx, bson.M{
		"resetPasswordToken":   tokenHash,
		"resetPasswordExpires": bson.M{"$gt": now},
	})
}

// UpdateUser replaces the stored document with user.
func (r *MongoUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return duplicate(err)
	}
	if res.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "user")
	}
	return nil
}

func (r *MongoUserRepository) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "user")
	}
	return nil
}

func (r *MongoUserRepository) UpdateStreak(ctx context.Context, id primitive.ObjectID, streak models.Streak) error {
	return r.set(ctx, id, bson.M{"streak": streak})
}

func (r *MongoUserRepository) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.set(ctx, id, bson.M{"lastLogin": at})
}

func (r *MongoUserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	return r.set(ctx, id, bson.M{"resetPasswordToken": tokenHash, "resetPasswordExpires": expires})
}

// SetActive flips the account status and returns the updated user.
func (r *MongoUserRepository) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	objID, err := objectID(id, "user")
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now()}}

	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&user); err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *MongoUserRepository) AddGoal(ctx context.Context, userID primitive.ObjectID, goal models.WellnessGoal) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"wellnessGoals": goal}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "user")
	}
	return nil
}

// UpdateGoal rewrites one embedded goal through the positional operator.
func (r *MongoUserRepository) UpdateGoal(ctx context.Context, userID primitive.ObjectID, goal models.WellnessGoal) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "wellnessGoals._id": goal.ID},
		bson.M{"$set": bson.M{"wellnessGoals.$": goal, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "goal")
	}
	return nil
}

func (r *MongoUserRepository) DeleteGoal(ctx context.Context, userID primitive.ObjectID, goalID string) error {
	gid, err := objectID(goalID, "goal")
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "wellnessGoals._id": gid},
		bson.M{"$pull": bson.M{"wellnessGoals": bson.M{"_id": gid}}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "goal")
	}
	return nil
}

func userQuery(f models.UserFilter) bson.M {
	query := bson.M{}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"email": pattern}}
	}
	if f.IsActive != nil {
		query["isActive"] = *f.IsActive
	}
	if f.Role != "" {
		query["role"] = f.Role
	}
	if f.Since != nil {
		query["createdAt"] = bson.M{"$gte": *f.Since}
	}
	return query
}

// ListUsers pages through accounts with their journal counts attached.
func (r *MongoUserRepository) ListUsers(ctx context.Context, f models.UserFilter) ([]models.UserWithStats, int64, error) {
	query := userQuery(f)
	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: query}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: f.Skip}},
	}
	if f.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: f.Limit}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": "journals",
			"let":  bson.M{"uid": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$user", "$$uid"}}}},
				bson.M{"$sort": bson.M{"createdAt": -1}},
				bson.M{"$project": bson.M{"createdAt": 1}},
			},
			"as": "entries",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{"stats": bson.M{
			"entryCount":    bson.M{"$size": "$entries"},
			"lastEntryDate": bson.M{"$arrayElemAt": bson.A{"$entries.createdAt", 0}},
			"currentStreak": "$streak.current",
			"longestStreak": "$streak.longest",
		}}}},
		bson.D{{Key: "$project", Value: bson.M{"entries": 0, "password": 0}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	users := []models.UserWithStats{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
