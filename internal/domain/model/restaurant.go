package model

import (
	"strings"

	"meal-review-bot/internal/domain"
)

// Restaurant is a catalogue entry operators manage from the chat.
type Restaurant struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (r *Restaurant) IsZero() bool { return r == nil || r.ID == 0 }

// NewRestaurant validates and constructs a restaurant that is not stored yet.
func NewRestaurant(name, address string) (*Restaurant, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	if name == "" || address == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Restaurant{Name: name, Address: address}, nil
}

// RestaurantField names the column a restaurant edit targets.
type RestaurantField string

const (
	RestaurantFieldName    RestaurantField = "name"
	RestaurantFieldAddress RestaurantField = "address"
)

func (f RestaurantField) Valid() bool {
	return f == RestaurantFieldName || f == RestaurantFieldAddress
}

// RestaurantFilterKind selects which restaurants FindRestaurants returns.
type RestaurantFilterKind int

const (
	FilterAll RestaurantFilterKind = iota
	FilterByID
	FilterByRange
)

// RestaurantFilter is All, ByID(ID) or ByRange(From..To inclusive).
type RestaurantFilter struct {
	Kind RestaurantFilterKind
	ID   int64
	From int64
	To   int64
}

func AllRestaurants() RestaurantFilter         { return RestaurantFilter{Kind: FilterAll} }
func RestaurantByID(id int64) RestaurantFilter { return RestaurantFilter{Kind: FilterByID, ID: id} }
func RestaurantsBetween(from, to int64) RestaurantFilter {
	return RestaurantFilter{Kind: FilterByRange, From: from, To: to}
}
