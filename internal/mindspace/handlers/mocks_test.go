package handlers

import (
	"context"
	"time"

	"github.com/anonto42/webapps/backend/internal/mindspace/models"
	"github.com/anonto42/webapps/backend/pkg/ai"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) user(args mock.Arguments) (*models.User, error) {
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}
func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.user(m.Called(ctx, email))
}
func (m *MockUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return m.user(m.Called(ctx, googleID))
}
func (m *MockUserRepository) GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	return m.user(m.Called(ctx, tokenHash, now))
}
func (m *MockUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepository) UpdateStreak(ctx context.Context, id primitive.ObjectID, streak models.Streak) error {
	return m.Called(ctx, id, streak).Error(0)
}
func (m *MockUserRepository) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}
func (m *MockUserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	return m.Called(ctx, id, tokenHash, expires).Error(0)
}
func (m *MockUserRepository) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	return m.user(m.Called(ctx, id, active))
}
func (m *MockUserRepository) AddGoal(ctx context.Context, userID primitive.ObjectID, goal models.WellnessGoal) error {
	return m.Called(ctx, userID, goal).Error(0)
}
func (m *MockUserRepository) UpdateGoal(ctx context.Context, userID primitive.ObjectID, goal models.WellnessGoal) error {
	return m.Called(ctx, userID, goal).Error(0)
}
func (m *MockUserRepository) DeleteGoal(ctx context.Context, userID primitive.ObjectID, goalID string) error {
	return m.Called(ctx, userID, goalID).Error(0)
}
func (m *MockUserRepository) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.UserWithStats, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.UserWithStats), args.Get(1).(int64), args.Error(2)
}

type MockJournalRepository struct{ mock.Mock }

func (m *MockJournalRepository) journal(args mock.Arguments) (*models.Journal, error) {
	if j := args.Get(0); j != nil {
		return j.(*models.Journal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJournalRepository) CreateJournal(ctx context.Context, journal *models.Journal) error {
	return m.Called(ctx, journal).Error(0)
}
func (m *MockJournalRepository) GetJournal(ctx context.Context, userID, id string) (*models.Journal, error) {
	return m.journal(m.Called(ctx, userID, id))
}
func (m *MockJournalRepository) ListJournals(ctx context.Context, filter models.JournalFilter) ([]models.Journal, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Journal), args.Get(1).(int64), args.Error(2)
}
func (m *MockJournalRepository) UpdateJournal(ctx context.Context, journal *models.Journal) error {
	return m.Called(ctx, journal).Error(0)
}
func (m *MockJournalRepository) DeleteJournal(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}
func (m *MockJournalRepository) SetFavorite(ctx context.Context, userID, id string, favorite bool) error {
	return m.Called(ctx, userID, id, favorite).Error(0)
}
func (m *MockJournalRepository) SetPrivate(ctx context.Context, userID, id string, private bool) (*models.Journal, error) {
	return m.journal(m.Called(ctx, userID, id, private))
}
func (m *MockJournalRepository) SetAnalysis(ctx context.Context, id primitive.ObjectID, analysis *ai.Sentiment) error {
	return m.Called(ctx, id, analysis).Error(0)
}
func (m *MockJournalRepository) SearchJournals(ctx context.Context, userID, q string, skip, limit int64) ([]models.Journal, int64, error) {
	args := m.Called(ctx, userID, q, skip, limit)
	return args.Get(0).([]models.Journal), args.Get(1).(int64), args.Error(2)
}
func (m *MockJournalRepository) MoodStats(ctx context.Context, userID string, start, end time.Time) ([]models.MoodStat, error) {
	args := m.Called(ctx, userID, start, end)
	return args.Get(0).([]models.MoodStat), args.Error(1)
}
func (m *MockJournalRepository) WritingDays(ctx context.Context, userID string, limit int64) ([]models.DayCount, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]models.DayCount), args.Error(1)
}
func (m *MockJournalRepository) CountJournals(ctx context.Context, userID string, since time.Time, favoritesOnly bool) (int64, error) {
	args := m.Called(ctx, userID, since, favoritesOnly)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockJournalRepository) AverageWordCount(ctx context.Context, userID string, since time.Time) (float64, error) {
	args := m.Called(ctx, userID, since)
	return args.Get(0).(float64), args.Error(1)
}
func (m *MockJournalRepository) RecentJournals(ctx context.Context, userID string, since time.Time, limit int64) ([]models.Journal, error) {
	args := m.Called(ctx, userID, since, limit)
	return args.Get(0).([]models.Journal), args.Error(1)
}

type MockPromptRepository struct{ mock.Mock }

func (m *MockPromptRepository) CreatePrompt(ctx context.Context, prompt *models.Prompt) error {
	return m.Called(ctx, prompt).Error(0)
}
func (m *MockPromptRepository) GetPrompt(ctx context.Context, id string) (*models.Prompt, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Prompt), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockPromptRepository) ListPrompts(ctx context.Context, filter models.PromptFilter) ([]models.Prompt, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Prompt), args.Error(1)
}
func (m *MockPromptRepository) RandomPrompts(ctx context.Context, filter models.PromptFilter) ([]models.Prompt, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Prompt), args.Error(1)
}
func (m *MockPromptRepository) PopularPrompts(ctx context.Context, limit int64) ([]models.Prompt, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.Prompt), args.Error(1)
}
func (m *MockPromptRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockPromptRepository) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PromptSummary, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[primitive.ObjectID]models.PromptSummary), args.Error(1)
}
func (m *MockPromptRepository) DeletePrompt(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockPromptRepository) ListUserPrompts(ctx context.Context, skip, limit int64) ([]models.Prompt, int64, error) {
	args := m.Called(ctx, skip, limit)
	return args.Get(0).([]models.Prompt), args.Get(1).(int64), args.Error(2)
}
func (m *MockPromptRepository) SeedSystemPrompts(ctx context.Context, prompts []models.Prompt) (int64, error) {
	args := m.Called(ctx, prompts)
	return args.Get(0).(int64), args.Error(1)
}

type MockInsightRepository struct{ mock.Mock }

func (m *MockInsightRepository) insight(args mock.Arguments) (*models.Insight, error) {
	if i := args.Get(0); i != nil {
		return i.(*models.Insight), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInsightRepository) CreateInsight(ctx context.Context, insight *models.Insight) error {
	return m.Called(ctx, insight).Error(0)
}
func (m *MockInsightRepository) GetInsight(ctx context.Context, userID, id string) (*models.Insight, error) {
	return m.insight(m.Called(ctx, userID, id))
}
func (m *MockInsightRepository) ListInsights(ctx context.Context, filter models.InsightFilter) ([]models.Insight, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Insight), args.Get(1).(int64), args.Error(2)
}
func (m *MockInsightRepository) MarkRead(ctx context.Context, userID, id string) (*models.Insight, error) {
	return m.insight(m.Called(ctx, userID, id))
}
func (m *MockInsightRepository) SetFavorite(ctx context.Context, userID, id string, favorite bool) error {
	return m.Called(ctx, userID, id, favorite).Error(0)
}
func (m *MockInsightRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockInsightRepository) HighPriorityUnread(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Insight, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]models.Insight), args.Error(1)
}

type MockCommunityRepository struct{ mock.Mock }

func (m *MockCommunityRepository) Leaderboard(ctx context.Context, since time.Time, limit int64) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx, since, limit)
	return args.Get(0).([]models.LeaderboardEntry), args.Error(1)
}
func (m *MockCommunityRepository) UserPosition(ctx context.Context, userID string, since time.Time) (*models.UserPosition, error) {
	args := m.Called(ctx, userID, since)
	if p := args.Get(0); p != nil {
		return p.(*models.UserPosition), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockCommunityRepository) CountUsers(ctx context.Context, filter models.UserCountFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockCommunityRepository) SharedEntries(ctx context.Context, filter models.SharedFilter) ([]models.Journal, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Journal), args.Get(1).(int64), args.Error(2)
}
func (m *MockCommunityRepository) CountEntries(ctx context.Context, since time.Time, sharedOnly bool) (int64, error) {
	args := m.Called(ctx, since, sharedOnly)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockCommunityRepository) MoodDistribution(ctx context.Context, since time.Time, limit int64) ([]models.MoodStat, error) {
	args := m.Called(ctx, since, limit)
	return args.Get(0).([]models.MoodStat), args.Error(1)
}
func (m *MockCommunityRepository) PopularTags(ctx context.Context, since time.Time, limit int64) ([]models.TagCount, error) {
	args := m.Called(ctx, since, limit)
	return args.Get(0).([]models.TagCount), args.Error(1)
}
func (m *MockCommunityRepository) TrendingPrompts(ctx context.Context, since time.Time, limit int64) ([]models.TrendingPrompt, error) {
	args := m.Called(ctx, since, limit)
	return args.Get(0).([]models.TrendingPrompt), args.Error(1)
}

type MockAdminRepository struct{ mock.Mock }

func (m *MockAdminRepository) CountPrompts(ctx context.Context, userCreatedOnly bool) (int64, error) {
	args := m.Called(ctx, userCreatedOnly)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockAdminRepository) DailyGrowth(ctx context.Context, collection string, since time.Time) ([]models.DayCount, error) {
	args := m.Called(ctx, collection, since)
	return args.Get(0).([]models.DayCount), args.Error(1)
}
func (m *MockAdminRepository) PopularCategories(ctx context.Context, since time.Time, limit int64) ([]models.TagCount, error) {
	args := m.Called(ctx, since, limit)
	return args.Get(0).([]models.TagCount), args.Error(1)
}
func (m *MockAdminRepository) ListJournals(ctx context.Context, filter models.ContentFilter) ([]models.Journal, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Journal), args.Get(1).(int64), args.Error(2)
}
func (m *MockAdminRepository) DeleteJournal(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockAdminRepository) ExportUsers(ctx context.Context, since time.Time) ([]models.User, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]models.User), args.Error(1)
}
func (m *MockAdminRepository) ExportJournals(ctx context.Context, since time.Time) ([]models.Journal, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]models.Journal), args.Error(1)
}
func (m *MockAdminRepository) MoodIntensity(ctx context.Context, since time.Time) (*models.IntensityRange, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(*models.IntensityRange), args.Error(1)
}
func (m *MockAdminRepository) DailyMoods(ctx context.Context, since time.Time) ([]models.DailyMood, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]models.DailyMood), args.Error(1)
}

type MockAssistant struct{ mock.Mock }

func (m *MockAssistant) CheckHealth(ctx context.Context) ai.Health {
	return m.Called(ctx).Get(0).(ai.Health)
}
func (m *MockAssistant) AnalyzeSentiment(ctx context.Context, text string) ai.Sentiment {
	return m.Called(ctx, text).Get(0).(ai.Sentiment)
}
func (m *MockAssistant) BatchAnalyzeSentiment(ctx context.Context, entries []ai.EntryText) []ai.EntryAnalysis {
	return m.Called(ctx, entries).Get(0).([]ai.EntryAnalysis)
}
func (m *MockAssistant) GenerateWellnessTips(ctx context.Context, moodData interface{}, preferences interface{}) ai.WellnessTips {
	return m.Called(ctx, moodData, preferences).Get(0).(ai.WellnessTips)
}
func (m *MockAssistant) GenerateJournalPrompts(ctx context.Context, category, mood string) ai.PromptSet {
	return m.Called(ctx, category, mood).Get(0).(ai.PromptSet)
}
