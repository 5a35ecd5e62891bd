package service

import (
	"math/rand"
	"strconv"
	"strings"

	"huongque-storefront/pkg/events"
	"huongque-storefront/storefront-svc/internal/domain"
	"huongque-storefront/storefront-svc/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ordersKey         = "orders"
	userOrdersPrefix  = "userOrders:"
	minOrderNumber    = 100000
	orderNumberSpread = 899999
)

func userOrdersKey(userID string) string {
	return userOrdersPrefix + userID
}

type CheckoutService struct {
	session Session
}

func NewCheckoutService(session Session) *CheckoutService {
	return &CheckoutService{session: session.withDefaults()}
}

// Checkout turns the cart into a confirmed order for user. Order history
// and the emptied cart are written together; if that write fails nothing
// changes and the *StoreWriteError is returned.
func (s *CheckoutService) Checkout(cart *CartEngine, user *domain.User, method domain.PaymentMethod) (*domain.Order, error) {
	if user == nil {
		s.session.Notify.Notify("Please log in to checkout", SeverityError)
		s.session.rejected("checkout")
		return nil, ErrAuthRequired
	}
	if cart == nil || cart.IsEmpty() {
		s.session.Notify.Notify("Your cart is empty", SeverityError)
		s.session.rejected("checkout")
		return nil, ErrEmptyCart
	}

	method = domain.PaymentMethod(strings.ToLower(strings.TrimSpace(string(method))))
	if method == "" {
		method = domain.PaymentCOD
	}
	if !method.Valid() {
		s.session.rejected("checkout")
		return nil, invalid("paymentMethod", "Unsupported payment method")
	}

	summary := cart.Summary()
	order := &domain.Order{
		ID:          uuid.NewString(),
		OrderNumber: minOrderNumber + rand.Intn(orderNumberSpread),
		Items:       summary.Items,
		Subtotal:    summary.Subtotal,
		Discount:    summary.Discount,
		Total:       summary.Total,
		User: domain.OrderUser{
			Name:  user.Name,
			Email: user.Email,
			Phone: user.Phone,
		},
		UserID:        user.ID,
		Status:        domain.OrderConfirmed,
		PaymentMethod: method,
		CreatedAt:     s.session.now(),
	}

	orders := prepend(s.Orders(), *order)
	userOrders := prepend(s.OrdersForUser(user.ID), *order)

	err := s.session.Store.SaveAll(map[string]any{
		ordersKey:              orders,
		userOrdersKey(user.ID): userOrders,
		cartKey:                []domain.CartItem{},
	})
	if err != nil {
		s.session.Notify.Notify("Something went wrong, please try again!", SeverityError)
		return nil, err
	}

	cart.resetAfterCheckout()

	s.session.Logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.Int("order_number", order.OrderNumber),
		zap.Int64("total", order.Total),
		zap.String("payment_method", string(order.PaymentMethod)))
	s.session.Notify.Notify("Payment successful! Thank you for your order.", SeveritySuccess)

	s.afterCheckout(order)
	return order, nil
}

// afterCheckout mirrors the order to the archive and the event stream.
// Neither can fail the checkout.
func (s *CheckoutService) afterCheckout(order *domain.Order) {
	if s.session.Metrics != nil {
		s.session.Metrics.Orders.Inc()
		s.session.Metrics.OrderRevenue.Add(float64(order.Total))
	}

	if s.session.Archive != nil {
		if err := s.session.Archive.ArchiveOrder(order); err != nil {
			s.session.Logger.Warn("failed to archive order",
				zap.String("order_id", order.ID),
				zap.Error(err))
		}
	}

	items := make([]events.EventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, events.EventItem{DishID: item.ID, Quantity: item.Quantity})
	}
	s.session.publish(events.Event{
		Type:        events.TypeOrderPlaced,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Total:       order.Total,
		Items:       items,
		Timestamp:   order.CreatedAt,
	})
}

// Orders is the visitor's order history, newest first.
func (s *CheckoutService) Orders() []domain.Order {
	return storage.Load(s.session.Store, ordersKey, []domain.Order{})
}

func (s *CheckoutService) OrdersForUser(userID string) []domain.Order {
	return storage.Load(s.session.Store, userOrdersKey(userID), []domain.Order{})
}

// FindOrder matches either the order id or its printed order number.
func (s *CheckoutService) FindOrder(ref string) (*domain.Order, error) {
	ref = strings.TrimSpace(ref)
	for _, order := range s.Orders() {
		if order.ID == ref || strconv.Itoa(order.OrderNumber) == ref {
			return &order, nil
		}
	}
	return nil, ErrNotFound
}

func prepend(orders []domain.Order, order domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(orders)+1)
	out = append(out, order)
	return append(out, orders...)
}
