package cart

import "github.com/google/uuid"

// Cart keeps items in insertion order with at most one line per menu id.
// The zero value is an empty cart ready to use. Cart is not safe for
// concurrent use.
type Cart struct {
	items []Item
}

// FromItems builds a cart by adding every item in order, so repeated menu ids
// are merged into one line.
func FromItems(items []Item) (*Cart, error) {
	c := &Cart{}
	for _, it := range items {
		if err := c.Add(it); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Cart) indexOf(menuID uuid.UUID) int {
	for i := range c.items {
		if c.items[i].MenuID == menuID {
			return i
		}
	}
	return -1
}

// Add appends item, or increments the existing line's quantity by
// item.Quantity (at least one) when the menu is already present.
func (c *Cart) Add(item Item) error {
	if item.MenuID == uuid.Nil {
		return ErrInvalidMenuID
	}
	if item.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	if i := c.indexOf(item.MenuID); i >= 0 {
		c.items[i].Quantity += item.Quantity
		return nil
	}
	c.items = append(c.items, item)
	return nil
}

func (c *Cart) Remove(menuID uuid.UUID) error {
	i := c.indexOf(menuID)
	if i < 0 {
		return ErrCartItemNotFound
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

func (c *Cart) Increment(menuID uuid.UUID) error {
	i := c.indexOf(menuID)
	if i < 0 {
		return ErrCartItemNotFound
	}
	c.items[i].Quantity++
	return nil
}

// Decrement lowers the quantity by one and drops the line when it reaches zero.
func (c *Cart) Decrement(menuID uuid.UUID) error {
	i := c.indexOf(menuID)
	if i < 0 {
		return ErrCartItemNotFound
	}
	if c.items[i].Quantity <= 1 {
		return c.Remove(menuID)
	}
	c.items[i].Quantity--
	return nil
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) Quantity(menuID uuid.UUID) int {
	if i := c.indexOf(menuID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Total is the sum of price times quantity over all lines.
func (c *Cart) Total() int64 {
	var total int64
	for _, it := range c.items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}
