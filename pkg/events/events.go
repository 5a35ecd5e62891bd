package events

import "time"

const (
	TypeOrderPlaced    = "order_placed"
	TypeBookingCreated = "booking_created"
)

// Event is the payload published on the storefront topic.
type Event struct {
	Type        string      `json:"type"`
	OrderID     string      `json:"order_id,omitempty"`
	OrderNumber int         `json:"order_number,omitempty"`
	Total       int64       `json:"total,omitempty"`
	Items       []EventItem `json:"items,omitempty"`
	BookingCode string      `json:"booking_code,omitempty"`
	Branch      string      `json:"branch,omitempty"`
	Date        string      `json:"date,omitempty"`
	Guests      int         `json:"guests,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

type EventItem struct {
	DishID   string `json:"dish_id"`
	Quantity int    `json:"quantity"`
}

// Redis keys maintained by agg-svc.
const (
	PopularDishesKey   = "analytics:popular"
	DailyDishesPrefix  = "analytics:daily:"
	DailyBookingPrefix = "analytics:bookings:"
)
