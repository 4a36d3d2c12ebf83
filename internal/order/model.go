package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"foodhub-be/internal/cart"

	"github.com/google/uuid"
)

// DeliveryDetails is the address snapshot taken at checkout. It is stored as
// JSONB on the order row.
type DeliveryDetails struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	Country string `json:"country,omitempty"`
	Contact string `json:"contact,omitempty"`
}

func (d DeliveryDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *DeliveryDetails) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = DeliveryDetails{}
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("delivery details: unsupported type %T", src)
	}
}

// Item is a line-item snapshot. Price is the menu price at checkout in major
// units.
type Item struct {
	MenuID   uuid.UUID `json:"menuId"`
	Name     string    `json:"name"`
	Image    string    `json:"image"`
	Price    int64     `json:"price"`
	Quantity int       `json:"quantity"`
}

type Order struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"userId"`
	RestaurantID      uuid.UUID       `json:"restaurantId"`
	RestaurantName    string          `json:"restaurantName,omitempty"`
	DeliveryDetails   DeliveryDetails `json:"deliveryDetails"`
	Items             []Item          `json:"cartItems"`
	Status            Status          `json:"status"`
	TotalAmount       int64           `json:"totalAmount"`
	CheckoutSessionID string          `json:"checkoutSessionId,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

type CheckoutRequest struct {
	CartItems       []cart.Item     `json:"cartItems" binding:"required,min=1,dive"`
	DeliveryDetails DeliveryDetails `json:"deliveryDetails" binding:"required"`
	RestaurantID    uuid.UUID       `json:"restaurantId" binding:"required"`
}

type CheckoutSessionResult struct {
	OrderID   uuid.UUID `json:"orderId"`
	SessionID string    `json:"id"`
	URL       string    `json:"url"`
}
