package restaurant

import (
	"time"

	"github.com/google/uuid"
)

type Restaurant struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	Name         string    `json:"restaurantName"`
	City         string    `json:"city"`
	Country      string    `json:"country"`
	DeliveryTime int       `json:"deliveryTime"`
	Cuisines     []string  `json:"cuisines"`
	ImageURL     string    `json:"imageUrl"`
	Menus        []Menu    `json:"menus"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Menu struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurantId"`
	Position     int       `json:"position"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        int64     `json:"price"`
	ImageURL     string    `json:"image"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Input is the owner editable part of a restaurant.
type Input struct {
	Name         string
	City         string
	Country      string
	DeliveryTime int
	Cuisines     []string
}

type SearchParams struct {
	SearchText  string
	SearchQuery string
	Cuisines    []string
}

type MenuInput struct {
	Name        string
	Description string
	Price       int64
}

// MenuUpdate is a partial update; nil fields keep their stored value.
type MenuUpdate struct {
	Name        *string
	Description *string
	Price       *int64
	ImageURL    *string
}
