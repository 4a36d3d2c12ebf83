package cart

import "github.com/google/uuid"

// Item is one line of a cart. Name, image and price are display values only;
// checkout re-prices every line from the stored menu.
type Item struct {
	MenuID   uuid.UUID `json:"menuId" binding:"required"`
	Name     string    `json:"name"`
	Image    string    `json:"image"`
	Price    int64     `json:"price"`
	Quantity int       `json:"quantity" binding:"required,gt=0"`
}
