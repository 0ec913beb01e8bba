package repositories

import (
	"context"
	"time"

	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PromptRepository defines the interface for journaling prompt storage
type PromptRepository interface {
	CreatePrompt(ctx context.Context, prompt *models.Prompt) error
	GetPrompt(ctx context.Context, id string) (*models.Prompt, error)
	ListPrompts(ctx context.Context, filter models.PromptFilter) ([]models.Prompt, error)
	RandomPrompts(ctx context.Context, filter models.PromptFilter) ([]models.Prompt, error)
	PopularPrompts(ctx context.Context, limit int64) ([]models.Prompt, error)
	IncrementUsage(ctx context.Context, id primitive.ObjectID) error
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PromptSummary, error)
	DeletePrompt(ctx context.Context, id string) error
	ListUserPrompts(ctx context.Context, skip, limit int64) ([]models.Prompt, int64, error)
	SeedSystemPrompts(ctx context.Context, prompts []models.Prompt) (int64, error)
}

// MongoPromptRepository implements PromptRepository for MongoDB
type MongoPromptRepository struct {
	collection *mongo.Collection
}

// NewMongoPromptRepository creates a new MongoPromptRepository
func NewMongoPromptRepository(db *mongo.Database) *MongoPromptRepository {
	return &MongoPromptRepository{collection: db.Collection("prompts")}
}

func (r *MongoPromptRepository) CreatePrompt(ctx context.Context, prompt *models.Prompt) error {
	now := time.Now()
	prompt.ID = primitive.NewObjectID()
	prompt.CreatedAt = now
	prompt.UpdatedAt = now
	applyPromptDefaults(prompt)
	_, err := r.collection.InsertOne(ctx, prompt)
	return err
}

func applyPromptDefaults(p *models.Prompt) {
	if p.Difficulty == "" {
		p.Difficulty = "beginner"
	}
	if p.EstimatedTime == 0 {
		p.EstimatedTime = 5
	}
	if p.Language == "" {
		p.Language = "en"
	}
	if p.TargetAudience == "" {
		p.TargetAudience = "all"
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

func (r *MongoPromptRepository) GetPrompt(ctx context.Context, id string) (*models.Prompt, error) {
	objID, err := objectID(id, "prompt")
	if err != nil {
		return nil, err
	}
	var prompt models.Prompt
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID, "isActive": true}).Decode(&prompt); err != nil {
		return nil, notFound(err, "prompt")
	}
	return &prompt, nil
}

func promptQuery(f models.PromptFilter) bson.M {
	query := bson.M{"isActive": true}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Difficulty != "" {
		query["difficulty"] = f.Difficulty
	}
	return query
}

func (r *MongoPromptRepository) find(ctx context.Context, query bson.M, findOptions *options.FindOptions) ([]models.Prompt, error) {
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	prompts := []models.Prompt{}
	if err = cursor.All(ctx, &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

func (r *MongoPromptRepository) ListPrompts(ctx context.Context, f models.PromptFilter) ([]models.Prompt, error) {
	findOptions := options.Find().SetSkip(f.Skip).SetLimit(f.Limit).SetSort(bson.D{{Key: "usageCount", Value: -1}, {Key: "createdAt", Value: -1}})
	return r.find(ctx, promptQuery(f), findOptions)
}

// RandomPrompts draws Limit active prompts with $sample.
func (r *MongoPromptRepository) RandomPrompts(ctx context.Context, f models.PromptFilter) ([]models.Prompt, error) {
	size := f.Limit
	if size <= 0 {
		size = 1
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: promptQuery(f)}},
		{{Key: "$sample", Value: bson.M{"size": size}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	prompts := []models.Prompt{}
	if err = cursor.All(ctx, &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

func (r *MongoPromptRepository) PopularPrompts(ctx context.Context, limit int64) ([]models.Prompt, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "usageCount", Value: -1}})
	return r.find(ctx, bson.M{"isActive": true}, findOptions)
}

func (r *MongoPromptRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"usageCount": 1}})
	return err
}

// Summaries loads the title, content and category for each id.
func (r *MongoPromptRepository) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PromptSummary, error) {
	out := make(map[primitive.ObjectID]models.PromptSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	findOptions := options.Find().SetProjection(bson.M{"title": 1, "content": 1, "category": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []models.PromptSummary
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.ID] = s
	}
	return out, nil
}

func (r *MongoPromptRepository) DeletePrompt(ctx context.Context, id string) error {
	objID, err := objectID(id, "prompt")
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound(mongo.ErrNoDocuments, "prompt")
	}
	return nil
}

// ListUserPrompts pages through prompts that were not seeded by the system.
func (r *MongoPromptRepository) ListUserPrompts(ctx context.Context, skip, limit int64) ([]models.Prompt, int64, error) {
	query := bson.M{"isSystemPrompt": false}
	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	prompts, err := r.find(ctx, query, options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	return prompts, total, err
}

// SeedSystemPrompts inserts each prompt whose title is not stored yet and
// reports how many were added.
func (r *MongoPromptRepository) SeedSystemPrompts(ctx context.Context, prompts []models.Prompt) (int64, error) {
	var added int64
	now := time.Now()
	for i := range prompts {
		p := prompts[i]
		applyPromptDefaults(&p)
		p.IsSystemPrompt = true
		p.IsActive = true
		p.CreatedAt = now
		p.UpdatedAt = now

		res, err := r.collection.UpdateOne(ctx,
			bson.M{"title": p.Title, "isSystemPrompt": true},
			bson.M{"$setOnInsert": p},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return added, err
		}
		if res.UpsertedCount > 0 {
			added++
		}
	}
	return added, nil
}
