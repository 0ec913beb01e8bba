package handlers

import (
	"context"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func count(args mock.Arguments) (int64, error) {
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
func (m *MockUserRepository) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	args := m.Called(ctx, ids)
	s, _ := args.Get(0).(map[primitive.ObjectID]models.UserSummary)
	return s, args.Error(1)
}
func (m *MockUserRepository) Count(ctx context.Context, role string) (int64, error) {
	return count(m.Called(ctx, role))
}
func (m *MockUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, req models.UpdateProfileRequest) (*models.User, error) {
	args := m.Called(ctx, id, req)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
func (m *MockUserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}
func (m *MockUserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	return m.Called(ctx, id, tokenHash, expires).Error(0)
}
func (m *MockUserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	args := m.Called(ctx, tokenHash, now)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
func (m *MockUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type MockVendorRepository struct{ mock.Mock }

func (m *MockVendorRepository) vendor(args mock.Arguments) (*models.Vendor, error) {
	v, _ := args.Get(0).(*models.Vendor)
	return v, args.Error(1)
}
func (m *MockVendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	return m.Called(ctx, vendor).Error(0)
}
func (m *MockVendorRepository) GetByID(ctx context.Context, id string) (*models.Vendor, error) {
	return m.vendor(m.Called(ctx, id))
}
func (m *MockVendorRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Vendor, error) {
	return m.vendor(m.Called(ctx, userID))
}
func (m *MockVendorRepository) List(ctx context.Context, filter models.VendorFilter) ([]models.Vendor, int64, error) {
	args := m.Called(ctx, filter)
	v, _ := args.Get(0).([]models.Vendor)
	return v, args.Get(1).(int64), args.Error(2)
}
func (m *MockVendorRepository) Update(ctx context.Context, vendor *models.Vendor) error {
	return m.Called(ctx, vendor).Error(0)
}
func (m *MockVendorRepository) SetApproved(ctx context.Context, id string, approved bool) (*models.Vendor, error) {
	return m.vendor(m.Called(ctx, id, approved))
}
func (m *MockVendorRepository) SetRating(ctx context.Context, id primitive.ObjectID, summary models.RatingSummary) error {
	return m.Called(ctx, id, summary).Error(0)
}
func (m *MockVendorRepository) AddSales(ctx context.Context, id primitive.ObjectID, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}
func (m *MockVendorRepository) Count(ctx context.Context, approved *bool) (int64, error) {
	return count(m.Called(ctx, approved))
}

type MockProductRepository struct{ mock.Mock }

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}
func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}
func (m *MockProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	args := m.Called(ctx, filter)
	p, _ := args.Get(0).([]models.Product)
	return p, args.Get(1).(int64), args.Error(2)
}
func (m *MockProductRepository) Featured(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]models.Product)
	return p, args.Error(1)
}
func (m *MockProductRepository) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]models.CategoryCount)
	return c, args.Error(1)
}
func (m *MockProductRepository) Suggestions(ctx context.Context, q string) ([]models.Suggestion, error) {
	args := m.Called(ctx, q)
	s, _ := args.Get(0).([]models.Suggestion)
	return s, args.Error(1)
}
func (m *MockProductRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}
func (m *MockProductRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	args := m.Called(ctx, ids)
	p, _ := args.Get(0).(map[primitive.ObjectID]models.Product)
	return p, args.Error(1)
}
func (m *MockProductRepository) ApplySale(ctx context.Context, id primitive.ObjectID, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}
func (m *MockProductRepository) SetRating(ctx context.Context, id primitive.ObjectID, summary models.RatingSummary) error {
	return m.Called(ctx, id, summary).Error(0)
}
func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	return count(m.Called(ctx))
}

type MockReviewRepository struct{ mock.Mock }

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}
func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.Review)
	return r, args.Error(1)
}
func (m *MockReviewRepository) ListByProduct(ctx context.Context, productID primitive.ObjectID, skip, limit int64) ([]models.Review, int64, error) {
	args := m.Called(ctx, productID, skip, limit)
	r, _ := args.Get(0).([]models.Review)
	return r, args.Get(1).(int64), args.Error(2)
}
func (m *MockReviewRepository) ListByProducts(ctx context.Context, productIDs []primitive.ObjectID, skip, limit int64) ([]models.Review, int64, error) {
	args := m.Called(ctx, productIDs, skip, limit)
	r, _ := args.Get(0).([]models.Review)
	return r, args.Get(1).(int64), args.Error(2)
}
func (m *MockReviewRepository) ProductRating(ctx context.Context, productID primitive.ObjectID) (models.RatingSummary, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(models.RatingSummary), args.Error(1)
}
func (m *MockReviewRepository) VendorRating(ctx context.Context, vendorID primitive.ObjectID) (models.RatingSummary, error) {
	args := m.Called(ctx, vendorID)
	return args.Get(0).(models.RatingSummary), args.Error(1)
}
func (m *MockReviewRepository) Update(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) order(args mock.Arguments) (*models.Order, error) {
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}
func (m *MockOrderRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return count(m.Called(ctx, from, to))
}
func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}
func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return m.order(m.Called(ctx, id))
}
func (m *MockOrderRepository) GetByPaymentIntent(ctx context.Context, customerID primitive.ObjectID, intentID string) (*models.Order, error) {
	return m.order(m.Called(ctx, customerID, intentID))
}
func (m *MockOrderRepository) FindByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error) {
	return m.order(m.Called(ctx, intentID))
}
func (m *MockOrderRepository) ListByCustomer(ctx context.Context, customerID primitive.ObjectID, skip, limit int64) ([]models.Order, int64, error) {
	args := m.Called(ctx, customerID, skip, limit)
	o, _ := args.Get(0).([]models.Order)
	return o, args.Get(1).(int64), args.Error(2)
}
func (m *MockOrderRepository) ListByVendor(ctx context.Context, vendorID primitive.ObjectID, status string, skip, limit int64) ([]models.Order, int64, error) {
	args := m.Called(ctx, vendorID, status, skip, limit)
	o, _ := args.Get(0).([]models.Order)
	return o, args.Get(1).(int64), args.Error(2)
}
func (m *MockOrderRepository) HasPurchased(ctx context.Context, customerID, productID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, customerID, productID)
	return args.Bool(0), args.Error(1)
}
func (m *MockOrderRepository) Update(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}
func (m *MockOrderRepository) SetPaymentState(ctx context.Context, intentID, paymentStatus, status string) (*models.Order, error) {
	return m.order(m.Called(ctx, intentID, paymentStatus, status))
}
func (m *MockOrderRepository) Revenue(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}
func (m *MockOrderRepository) Count(ctx context.Context) (int64, error) {
	return count(m.Called(ctx))
}

type MockFavoriteRepository struct{ mock.Mock }

func (m *MockFavoriteRepository) Add(ctx context.Context, fav *models.Favorite) error {
	return m.Called(ctx, fav).Error(0)
}
func (m *MockFavoriteRepository) Remove(ctx context.Context, userID, productID primitive.ObjectID) error {
	return m.Called(ctx, userID, productID).Error(0)
}
func (m *MockFavoriteRepository) List(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.FavoriteView, int64, error) {
	args := m.Called(ctx, userID, skip, limit)
	f, _ := args.Get(0).([]models.FavoriteView)
	return f, args.Get(1).(int64), args.Error(2)
}
func (m *MockFavoriteRepository) Exists(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}
func (m *MockFavoriteRepository) CountByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error) {
	return count(m.Called(ctx, productID))
}

type MockFollowRepository struct{ mock.Mock }

func (m *MockFollowRepository) Follow(ctx context.Context, follow *models.Follow) error {
	return m.Called(ctx, follow).Error(0)
}
func (m *MockFollowRepository) Unfollow(ctx context.Context, follower, following primitive.ObjectID) error {
	return m.Called(ctx, follower, following).Error(0)
}
func (m *MockFollowRepository) IsFollowing(ctx context.Context, follower, following primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, follower, following)
	return args.Bool(0), args.Error(1)
}
func (m *MockFollowRepository) CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return count(m.Called(ctx, userID))
}
func (m *MockFollowRepository) Following(ctx context.Context, follower primitive.ObjectID) ([]models.FollowedVendor, error) {
	args := m.Called(ctx, follower)
	f, _ := args.Get(0).([]models.FollowedVendor)
	return f, args.Error(1)
}

type MockMessageRepository struct{ mock.Mock }

func (m *MockMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *MockMessageRepository) Conversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).([]models.Conversation)
	return c, args.Error(1)
}
func (m *MockMessageRepository) Thread(ctx context.Context, conversationID string, skip, limit int64) ([]models.Message, int64, error) {
	args := m.Called(ctx, conversationID, skip, limit)
	msgs, _ := args.Get(0).([]models.Message)
	return msgs, args.Get(1).(int64), args.Error(2)
}
func (m *MockMessageRepository) MarkThreadRead(ctx context.Context, conversationID string, receiver primitive.ObjectID, at time.Time) (int64, error) {
	return count(m.Called(ctx, conversationID, receiver, at))
}
func (m *MockMessageRepository) MarkRead(ctx context.Context, id string, receiver primitive.ObjectID, at time.Time) (*models.Message, error) {
	args := m.Called(ctx, id, receiver, at)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}
func (m *MockMessageRepository) UnreadCount(ctx context.Context, receiver primitive.ObjectID) (int64, error) {
	return count(m.Called(ctx, receiver))
}
