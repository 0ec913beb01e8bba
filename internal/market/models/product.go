package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Dimensions struct {
	Length float64 `json:"length,omitempty" bson:"length,omitempty"`
	Width  float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height float64 `json:"height,omitempty" bson:"height,omitempty"`
	Weight float64 `json:"weight,omitempty" bson:"weight,omitempty"`
	Unit   string  `json:"unit,omitempty" bson:"unit,omitempty"`
}

// Product is a listing. Deleting a product only clears IsActive.
type Product struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name"`
	Description    string             `json:"description" bson:"description"`
	Price          float64            `json:"price" bson:"price"`
	ComparePrice   float64            `json:"comparePrice,omitempty" bson:"comparePrice,omitempty"`
	Images         []string           `json:"images" bson:"images"`
	Category       string             `json:"category" bson:"category"`
	Subcategory    string             `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
	Tags           []string           `json:"tags" bson:"tags"`
	VendorID       primitive.ObjectID `json:"vendorId" bson:"vendorId"`
	VendorName     string             `json:"vendorName" bson:"vendorName"`
	Stock          int                `json:"stock" bson:"stock"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	IsFeatured     bool               `json:"isFeatured" bson:"isFeatured"`
	Dimensions     *Dimensions        `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Materials      []string           `json:"materials" bson:"materials"`
	Colors         []string           `json:"colors,omitempty" bson:"colors,omitempty"`
	Sizes          []string           `json:"sizes,omitempty" bson:"sizes,omitempty"`
	Rating         float64            `json:"rating" bson:"rating"`
	ReviewCount    int                `json:"reviewCount" bson:"reviewCount"`
	SoldCount      int                `json:"soldCount" bson:"soldCount"`
	ViewCount      int                `json:"viewCount" bson:"viewCount"`
	IsHandmade     bool               `json:"isHandmade" bson:"isHandmade"`
	ProductionTime int                `json:"productionTime" bson:"productionTime"`
	ReturnPolicy   string             `json:"returnPolicy,omitempty" bson:"returnPolicy,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// DiscountPercentage is the rounded saving against ComparePrice, or 0.
func (p *Product) DiscountPercentage() int {
	if p.ComparePrice > p.Price && p.ComparePrice > 0 {
		return int(math.Round((p.ComparePrice - p.Price) / p.ComparePrice * 100))
	}
	return 0
}

// ProductView adds computed fields to the stored listing.
type ProductView struct {
	Product
	DiscountPercentage int `json:"discountPercentage"`
}

func (p *Product) View() ProductView {
	return ProductView{Product: *p, DiscountPercentage: p.DiscountPercentage()}
}

func Views(products []Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for i := range products {
		out = append(out, products[i].View())
	}
	return out
}

type ProductRequest struct {
	Name           string      `json:"name" validate:"required,max=100"`
	Description    string      `json:"description" validate:"required,max=2000"`
	Price          float64     `json:"price" validate:"gte=0"`
	ComparePrice   float64     `json:"comparePrice,omitempty" validate:"gte=0"`
	Images         []string    `json:"images" validate:"required,min=1"`
	Category       string      `json:"category" validate:"required,oneof='Jewelry' 'Home Decor' 'Art & Prints' 'Clothing' 'Pottery' 'Textiles' 'Other'"`
	Subcategory    string      `json:"subcategory,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	Stock          int         `json:"stock" validate:"gte=0"`
	IsFeatured     bool        `json:"isFeatured,omitempty"`
	Dimensions     *Dimensions `json:"dimensions,omitempty"`
	Materials      []string    `json:"materials,omitempty"`
	Colors         []string    `json:"colors,omitempty"`
	Sizes          []string    `json:"sizes,omitempty"`
	IsHandmade     *bool       `json:"isHandmade,omitempty"`
	ProductionTime int         `json:"productionTime,omitempty" validate:"gte=0"`
	ReturnPolicy   string      `json:"returnPolicy,omitempty" validate:"max=500"`
}

// Apply copies the editable listing fields from req.
func (p *Product) Apply(req *ProductRequest) {
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.ComparePrice = req.ComparePrice
	p.Images = req.Images
	p.Category = req.Category
	p.Subcategory = req.Subcategory
	p.Tags = nonNil(req.Tags)
	p.Stock = req.Stock
	p.IsFeatured = req.IsFeatured
	p.Dimensions = req.Dimensions
	p.Materials = nonNil(req.Materials)
	p.Colors = req.Colors
	p.Sizes = req.Sizes
	p.IsHandmade = req.IsHandmade == nil || *req.IsHandmade
	p.ProductionTime = req.ProductionTime
	p.ReturnPolicy = req.ReturnPolicy
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ProductFilter drives the public catalogue listing.
type ProductFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Search   string
	VendorID *primitive.ObjectID
	Sort     string
	Skip     int64
	Limit    int64
}

type CategoryCount struct {
	Name      string  `json:"name" bson:"_id"`
	Count     int     `json:"count" bson:"count"`
	AvgPrice  float64 `json:"avgPrice" bson:"avgPrice"`
	AvgRating float64 `json:"avgRating" bson:"avgRating"`
}

type Suggestion struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Name     string             `json:"name" bson:"name"`
	Category string             `json:"category" bson:"category"`
}
