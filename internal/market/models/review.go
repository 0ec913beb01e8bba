package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HelpfulVote struct {
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	IsHelpful bool               `json:"isHelpful" bson:"isHelpful"`
	VotedAt   time.Time          `json:"votedAt" bson:"votedAt"`
}

type VendorResponse struct {
	Comment     string    `json:"comment" bson:"comment"`
	RespondedAt time.Time `json:"respondedAt" bson:"respondedAt"`
}

// Review is a customer's rating of a product. One per customer and product.
type Review struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID      primitive.ObjectID `json:"productId" bson:"productId"`
	CustomerID     primitive.ObjectID `json:"customerId" bson:"customerId"`
	CustomerName   string             `json:"customerName" bson:"customerName"`
	CustomerAvatar string             `json:"customerAvatar,omitempty" bson:"customerAvatar,omitempty"`
	Rating         int                `json:"rating" bson:"rating"`
	Title          string             `json:"title,omitempty" bson:"title,omitempty"`
	Comment        string             `json:"comment" bson:"comment"`
	IsVerified     bool               `json:"isVerified" bson:"isVerified"`
	IsHelpful      int                `json:"isHelpful" bson:"isHelpful"`
	HelpfulVotes   []HelpfulVote      `json:"helpfulVotes" bson:"helpfulVotes"`
	VendorResponse *VendorResponse    `json:"vendorResponse,omitempty" bson:"vendorResponse,omitempty"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title,omitempty" validate:"max=100"`
	Comment string `json:"comment" validate:"required,max=1000"`
}

type ReviewResponseRequest struct {
	Comment string `json:"comment" validate:"required,max=1000"`
}

type HelpfulRequest struct {
	IsHelpful *bool `json:"isHelpful"`
}

// RatingSummary is the result of averaging active reviews.
type RatingSummary struct {
	Average float64 `bson:"avgRating"`
	Count   int     `bson:"numReviews"`
}
