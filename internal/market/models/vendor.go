package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Categories shared by shops and products.
var Categories = []string{"Jewelry", "Home Decor", "Art & Prints", "Clothing", "Pottery", "Textiles", "Other"}

const DefaultCommissionRate = 0.10

type Location struct {
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

type ContactInfo struct {
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
	Website string `json:"website,omitempty" bson:"website,omitempty"`
}

type Policies struct {
	Shipping     string `json:"shipping,omitempty" bson:"shipping,omitempty"`
	Returns      string `json:"returns,omitempty" bson:"returns,omitempty"`
	CustomOrders string `json:"customOrders,omitempty" bson:"customOrders,omitempty"`
}

// Vendor is a shop. Each vendor user owns at most one.
type Vendor struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	ShopName       string             `json:"shopName" bson:"shopName"`
	Description    string             `json:"description" bson:"description"`
	Logo           string             `json:"logo" bson:"logo"`
	Banner         string             `json:"banner" bson:"banner"`
	Category       string             `json:"category" bson:"category"`
	Tags           []string           `json:"tags" bson:"tags"`
	Location       Location           `json:"location" bson:"location"`
	ContactInfo    ContactInfo        `json:"contactInfo" bson:"contactInfo"`
	Policies       Policies           `json:"policies" bson:"policies"`
	IsApproved     bool               `json:"isApproved" bson:"isApproved"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	Rating         float64            `json:"rating" bson:"rating"`
	ReviewCount    int                `json:"reviewCount" bson:"reviewCount"`
	TotalSales     int                `json:"totalSales" bson:"totalSales"`
	CommissionRate float64            `json:"commissionRate" bson:"commissionRate"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type VendorRequest struct {
	ShopName    string      `json:"shopName" validate:"required,max=100"`
	Description string      `json:"description" validate:"required,max=1000"`
	Logo        string      `json:"logo,omitempty"`
	Banner      string      `json:"banner,omitempty"`
	Category    string      `json:"category" validate:"required,oneof='Jewelry' 'Home Decor' 'Art & Prints' 'Clothing' 'Pottery' 'Textiles' 'Other'"`
	Tags        []string    `json:"tags,omitempty"`
	Location    Location    `json:"location"`
	ContactInfo ContactInfo `json:"contactInfo"`
	Policies    Policies    `json:"policies"`
}

// Apply copies the editable shop fields from req.
func (v *Vendor) Apply(req *VendorRequest) {
	v.ShopName = req.ShopName
	v.Description = req.Description
	v.Logo = req.Logo
	v.Banner = req.Banner
	v.Category = req.Category
	v.Tags = req.Tags
	if v.Tags == nil {
		v.Tags = []string{}
	}
	v.Location = req.Location
	v.ContactInfo = req.ContactInfo
	v.Policies = req.Policies
}

type VendorFilter struct {
	Category string
	Search   string
	Approved *bool
	Skip     int64
	Limit    int64
}
