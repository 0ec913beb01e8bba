package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Favorite struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	User    primitive.ObjectID `json:"user" bson:"user"`
	Product primitive.ObjectID `json:"product" bson:"product"`
	AddedAt time.Time          `json:"addedAt" bson:"addedAt"`
}

// FavoriteView is a favorite joined with its product.
type FavoriteView struct {
	Favorite `bson:",inline"`
	Details  *Product `json:"productDetails,omitempty" bson:"productDetails,omitempty"`
}

// Follow links a customer to a vendor account.
type Follow struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Follower   primitive.ObjectID `json:"follower" bson:"follower"`
	Following  primitive.ObjectID `json:"following" bson:"following"`
	FollowedAt time.Time          `json:"followedAt" bson:"followedAt"`
}

// FollowedVendor is a followed account with its shop, when it has one.
type FollowedVendor struct {
	UserID     primitive.ObjectID `json:"userId" bson:"_id"`
	Name       string             `json:"name" bson:"name"`
	Avatar     string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	FollowedAt time.Time          `json:"followedAt" bson:"followedAt"`
	Shop       *Vendor            `json:"shop,omitempty" bson:"shop,omitempty"`
}

// Message is a direct chat message between two users.
type Message struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	ConversationID string              `json:"conversationId" bson:"conversationId"`
	Sender         primitive.ObjectID  `json:"sender" bson:"sender"`
	Receiver       primitive.ObjectID  `json:"receiver" bson:"receiver"`
	Content        string              `json:"content" bson:"content"`
	ProductID      *primitive.ObjectID `json:"productId,omitempty" bson:"productId,omitempty"`
	IsRead         bool                `json:"isRead" bson:"isRead"`
	ReadAt         *time.Time          `json:"readAt,omitempty" bson:"readAt,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
}

type MessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required,objectid"`
	Content    string `json:"content" validate:"required,max=1000"`
	ProductID  string `json:"productId,omitempty" validate:"omitempty,objectid"`
}

// Conversation summarizes one chat thread for the inbox.
type Conversation struct {
	ConversationID string             `json:"conversationId" bson:"_id"`
	LastMessage    Message            `json:"lastMessage" bson:"lastMessage"`
	UnreadCount    int                `json:"unreadCount" bson:"unreadCount"`
	OtherUserID    primitive.ObjectID `json:"otherUserId" bson:"otherUserId"`
	OtherUser      *UserSummary       `json:"otherUser,omitempty" bson:"-"`
}

type UserSummary struct {
	ID     primitive.ObjectID `json:"id" bson:"_id"`
	Name   string             `json:"name" bson:"name"`
	Avatar string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Role   string             `json:"role" bson:"role"`
}

// MarketStats backs the admin dashboard.
type MarketStats struct {
	TotalUsers     int64   `json:"totalUsers"`
	TotalVendors   int64   `json:"totalVendors"`
	PendingVendors int64   `json:"pendingVendors"`
	TotalProducts  int64   `json:"totalProducts"`
	TotalOrders    int64   `json:"totalOrders"`
	TotalRevenue   float64 `json:"totalRevenue"`
}
