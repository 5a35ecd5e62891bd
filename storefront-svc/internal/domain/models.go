package domain

import "time"

const (
	DefaultImage  = "/anh_cac_mon/default-food.jpg"
	DefaultBranch = "main"

	// BookingSchemaVersion is stamped on every booking written by this service.
	BookingSchemaVersion = 2
)

type CartItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	ImageRef  string `json:"imageRef"`
	Quantity  int    `json:"quantity"`
}

func (c CartItem) LineTotal() int64 {
	return c.UnitPrice * int64(c.Quantity)
}

// CartCandidate is what a menu "add to cart" button submits.
type CartCandidate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	ImageRef  string `json:"imageRef"`
}

type CartSummary struct {
	Items    []CartItem `json:"items"`
	Count    int        `json:"count"`
	Subtotal int64      `json:"subtotal"`
	Discount int64      `json:"discount"`
	Total    int64      `json:"total"`
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type BookingRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Branch  string `json:"branch,omitempty"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Guests  int    `json:"guests"`
	Message string `json:"message,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

type Booking struct {
	BookingRequest
	ID            string        `json:"id"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	BookingCode   string        `json:"bookingCode"`
	SchemaVersion int           `json:"schemaVersion"`
}

type OrderStatus string

const OrderConfirmed OrderStatus = "confirmed"

type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "cod"
	PaymentCard    PaymentMethod = "card"
	PaymentEWallet PaymentMethod = "ewallet"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCOD, PaymentCard, PaymentEWallet:
		return true
	}
	return false
}

type OrderUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Order struct {
	ID            string        `json:"id"`
	OrderNumber   int           `json:"orderNumber"`
	Items         []CartItem    `json:"items"`
	Subtotal      int64         `json:"subtotal"`
	Discount      int64         `json:"discount"`
	Total         int64         `json:"total"`
	User          OrderUser     `json:"user"`
	UserID        string        `json:"userId,omitempty"`
	Status        OrderStatus   `json:"status"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// User is the session record kept under currentUser.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// UserRecord is a registered account.
type UserRecord struct {
	User
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// DishPopularity is one row of the most-ordered ranking.
type DishPopularity struct {
	DishID  string `json:"dish_id"`
	Ordered int    `json:"ordered"`
}
