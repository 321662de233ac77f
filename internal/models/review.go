package models

import "time"

// Review is user feedback on a tour. The composite unique index keeps each
// (tour, user) pair to at most one review. Reviews are removed for real on
// delete, so no soft-delete column here: a lingering row would keep the
// unique index from accepting a fresh review by the same user.
type Review struct {
	ID     string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Review string `json:"review" validate:"required"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	TourID string `json:"tourId" gorm:"uniqueIndex:idx_reviews_tour_user;type:varchar(36)" validate:"required"`
	UserID string `json:"userId" gorm:"uniqueIndex:idx_reviews_tour_user;type:varchar(36)" validate:"required"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
