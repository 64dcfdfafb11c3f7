package model

import (
	"strings"

	"meal-review-bot/internal/domain"
)

// Dish belongs to a restaurant by id. ImageRef is the transport's file
// reference of the dish photo, nil when the operator skipped the photo.
type Dish struct {
	ID           int64   `json:"id"`
	RestaurantID int64   `json:"restaurant_id"`
	Name         string  `json:"name"`
	ImageRef     *string `json:"image,omitempty"`
}

func NewDish(restaurantID int64, name string, imageRef *string) (*Dish, error) {
	name = strings.TrimSpace(name)
	if restaurantID <= 0 || name == "" {
		return nil, domain.ErrInvalidArgument
	}
	if imageRef != nil && strings.TrimSpace(*imageRef) == "" {
		imageRef = nil
	}
	return &Dish{RestaurantID: restaurantID, Name: name, ImageRef: imageRef}, nil
}

func (d *Dish) HasImage() bool { return d != nil && d.ImageRef != nil }
