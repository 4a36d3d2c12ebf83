package order

type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "outfordelivery"
	StatusDelivered      Status = "delivered"
)

// fulfilment lists the statuses an owner may move an order to. Only the
// payment processor confirms a pending order.
var fulfilment = map[Status][]Status{
	StatusConfirmed:      {StatusPreparing, StatusOutForDelivery, StatusDelivered},
	StatusPreparing:      {StatusOutForDelivery, StatusDelivered},
	StatusOutForDelivery: {StatusDelivered},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusOutForDelivery, StatusDelivered:
		return true
	}
	return false
}

// Paid reports whether the order has been confirmed by the processor.
func (s Status) Paid() bool {
	return s.Valid() && s != StatusPending
}

func CanTransition(from, to Status) bool {
	for _, next := range fulfilment[from] {
		if next == to {
			return true
		}
	}
	return false
}
