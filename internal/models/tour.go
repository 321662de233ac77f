package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Tour difficulties.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// DefaultRatingsAverage is used for tours with no reviews yet.
const DefaultRatingsAverage = 4.5

// Tour is a bookable product.
type Tour struct {
	ID           string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name         string  `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=10,max=40"`
	Slug         string  `json:"slug" gorm:"index;type:varchar(120)"`
	Duration     int     `json:"duration" validate:"required,gt=0"`
	MaxGroupSize int     `json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty   string  `json:"difficulty" gorm:"type:varchar(20)" validate:"required,oneof=easy medium difficult"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	// PriceDiscount must stay below Price; enforced in the tour service
	// because the comparison spans two fields.
	PriceDiscount float64 `json:"priceDiscount,omitempty" validate:"omitempty,gt=0"`

	RatingsAverage  float64 `json:"ratingsAverage" gorm:"default:4.5"`
	RatingsQuantity int     `json:"ratingsQuantity" gorm:"default:0"`

	Summary     string         `json:"summary" validate:"required"`
	Description string         `json:"description,omitempty"`
	ImageCover  string         `json:"imageCover" validate:"required"`
	Images      datatypes.JSON `json:"images,omitempty"`

	// Secret tours are excluded from default listings and aggregations.
	Secret bool `json:"secret" gorm:"default:false"`

	StartLat         float64 `json:"startLat"`
	StartLng         float64 `json:"startLng"`
	StartAddress     string  `json:"startAddress,omitempty"`
	StartDescription string  `json:"startDescription,omitempty"`

	StartDates []TourStartDate `json:"startDates,omitempty" gorm:"foreignKey:TourID;constraint:OnDelete:CASCADE"`
	Locations  []Location      `json:"locations,omitempty" gorm:"foreignKey:TourID;constraint:OnDelete:CASCADE"`
	Guides     []User          `json:"guides,omitempty" gorm:"many2many:tour_guides"`
	Reviews    []Review        `json:"reviews,omitempty" gorm:"foreignKey:TourID"`

	gorm.Model // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// TourStartDate is one scheduled departure of a tour. Kept as rows rather
// than an embedded array so the monthly plan can query them.
type TourStartDate struct {
	ID       uint      `json:"-" gorm:"primaryKey"`
	TourID   string    `json:"-" gorm:"index;type:varchar(36)"`
	StartsAt time.Time `json:"startsAt"`
}

// Location is an itinerary stop on a tour.
type Location struct {
	ID          uint    `json:"-" gorm:"primaryKey"`
	TourID      string  `json:"-" gorm:"index;type:varchar(36)"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Address     string  `json:"address,omitempty"`
	Description string  `json:"description,omitempty"`
	Day         int     `json:"day"`
}

// TourStats is the global ratings/price aggregate over non-secret tours.
type TourStats struct {
	NumTours   int     `json:"numTours"`
	NumRatings int     `json:"numRatings"`
	AvgRating  float64 `json:"avgRating"`
	AvgPrice   float64 `json:"avgPrice"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
}

// MonthPlan is one month's entry of the monthly plan report.
type MonthPlan struct {
	Month         int      `json:"month"`
	NumTourStarts int      `json:"numTourStarts"`
	Tours         []string `json:"tours"`
}

// TourDistance is one entry of the nearest-first distances report.
type TourDistance struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}
