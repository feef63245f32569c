package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type Property struct {
	ID          string   `gorm:"type:varchar(64);primaryKey" bson:"_id" json:"id"`
	Title       string   `gorm:"type:text;not null" bson:"title" json:"title"`
	Description string   `gorm:"type:text" bson:"description" json:"description"`
	Price       float64  `gorm:"type:decimal(15,2);not null;index" bson:"price" json:"price"`
	Location    string   `gorm:"type:varchar(255);not null" bson:"location" json:"location"`
	Bedrooms    int      `gorm:"type:int;not null;default:0;index" bson:"bedrooms" json:"bedrooms"`
	Bathrooms   float64  `gorm:"type:decimal(4,1);not null;default:0" bson:"bathrooms" json:"bathrooms"`
	SquareFeet  int      `gorm:"type:int;not null;default:0" bson:"squareFeet" json:"squareFeet"`
	Images      []string `gorm:"type:text;serializer:json" bson:"images" json:"images"`

	Status  PropertyStatus `gorm:"type:varchar(20);not null;default:'for_sale';index" bson:"status" json:"status"`
	OwnerID string         `gorm:"column:owner_id;type:varchar(64);not null;index" bson:"owner_id" json:"owner_id"`

	// Sole sort key, newest first.
	CreatedAt time.Time `gorm:"type:datetime(3);not null;index:idx_properties_created_at,sort:desc" bson:"createdAt" json:"createdAt"`
}

// PropertyStatus is the sale state of a listing
type PropertyStatus string

const (
	PropertyStatusForSale PropertyStatus = "for_sale"
	PropertyStatusSold    PropertyStatus = "sold"
)

// TableName specifies the table name
func (Property) TableName() string {
	return "properties"
}

// CoverImage returns the first image URL, or "" when the listing has none
func (p *Property) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// IsForSale reports whether the listing is still on the market
func (p *Property) IsForSale() bool {
	return p.Status == PropertyStatusForSale
}

// PropertyDraft is the caller-supplied part of a listing.
// ID, CreatedAt and Status are always assigned by the store.
type PropertyDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Location    string   `json:"location"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   float64  `json:"bathrooms"`
	SquareFeet  int      `json:"squareFeet"`
	Images      []string `json:"images"`
}

var ErrInvalidDraft = errors.New("invalid listing")

// Validate checks the draft before it is sent to the store
func (d *PropertyDraft) Validate() error {
	switch {
	case strings.TrimSpace(d.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidDraft)
	case strings.TrimSpace(d.Location) == "":
		return fmt.Errorf("%w: location is required", ErrInvalidDraft)
	case d.Price < 0 || math.IsNaN(d.Price) || math.IsInf(d.Price, 0):
		return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidDraft)
	case d.Bedrooms < 0:
		return fmt.Errorf("%w: bedrooms must not be negative", ErrInvalidDraft)
	case d.SquareFeet < 0:
		return fmt.Errorf("%w: square feet must not be negative", ErrInvalidDraft)
	case d.Bathrooms < 0 || d.Bathrooms*2 != math.Trunc(d.Bathrooms*2):
		return fmt.Errorf("%w: bathrooms must be a non-negative half step", ErrInvalidDraft)
	}
	return nil
}

// ToProperty builds the record the store will persist
func (d *PropertyDraft) ToProperty(ownerID string, createdAt time.Time) Property {
	images := make([]string, len(d.Images))
	copy(images, d.Images)
	return Property{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Price:       d.Price,
		Location:    strings.TrimSpace(d.Location),
		Bedrooms:    d.Bedrooms,
		Bathrooms:   d.Bathrooms,
		SquareFeet:  d.SquareFeet,
		Images:      images,
		Status:      PropertyStatusForSale,
		OwnerID:     ownerID,
		CreatedAt:   createdAt,
	}
}
