package service

import (
	"fmt"
	"strings"

	"huongque-storefront/storefront-svc/internal/domain"
	"huongque-storefront/storefront-svc/internal/storage"

	"github.com/google/uuid"
)

const (
	cartKey          = "cart"
	fallbackDishName = "Dish"

	promptZeroQuantity = "Quantity reached 0. Remove this item from the cart?"
	promptRemoveItem   = "Remove this item from the cart?"
)

type discountTier struct {
	over   int64
	amount int64
}

// Highest threshold first.
var discountTiers = []discountTier{
	{over: 500000, amount: 50000},
	{over: 300000, amount: 30000},
}

// Discount is the flat discount earned by a subtotal. Thresholds are exclusive.
func Discount(subtotal int64) int64 {
	for _, tier := range discountTiers {
		if subtotal > tier.over {
			return tier.amount
		}
	}
	return 0
}

// CartEngine owns the visitor's cart. Every mutation is persisted before
// the method returns.
type CartEngine struct {
	session Session
	promos  PromoCatalog
	items   []domain.CartItem
}

func NewCartEngine(session Session, promos PromoCatalog) *CartEngine {
	session = session.withDefaults()
	if promos == nil {
		promos = DefaultPromoCatalog()
	}
	stored := storage.Load(session.Store, cartKey, []domain.CartItem{})
	return &CartEngine{
		session: session,
		promos:  promos,
		items:   domain.NormalizeCart(stored),
	}
}

func (c *CartEngine) AddItem(candidate domain.CartCandidate) domain.CartItem {
	id := strings.TrimSpace(candidate.ID)
	if id == "" {
		id = "p_" + uuid.NewString()
	}
	name := strings.TrimSpace(candidate.Name)
	if name == "" {
		name = fallbackDishName
	}
	price := candidate.UnitPrice
	if price < 0 {
		price = 0
	}

	var added domain.CartItem
	if i := c.indexOf(id); i >= 0 {
		c.items[i].Quantity++
		added = c.items[i]
	} else {
		added = domain.CartItem{
			ID:        id,
			Name:      name,
			UnitPrice: price,
			ImageRef:  NormalizeImagePath(candidate.ImageRef),
			Quantity:  1,
		}
		c.items = append(c.items, added)
	}

	c.persist()
	c.session.Notify.Notify(fmt.Sprintf("Added %q to cart!", name), SeveritySuccess)
	return added
}

// ChangeQuantity adds delta to the item's quantity. Dropping to zero or
// below asks for confirmation: yes removes the item, no leaves one.
func (c *CartEngine) ChangeQuantity(id string, delta int) {
	i := c.indexOf(id)
	if i < 0 {
		return
	}

	quantity := c.items[i].Quantity + delta
	if quantity <= 0 {
		if c.session.Confirm.Confirm(promptZeroQuantity) {
			c.items = append(c.items[:i], c.items[i+1:]...)
		} else {
			c.items[i].Quantity = 1
		}
	} else {
		c.items[i].Quantity = quantity
	}

	c.persist()
}

// RemoveItem deletes the item after confirmation and reports whether it did.
func (c *CartEngine) RemoveItem(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	if !c.session.Confirm.Confirm(promptRemoveItem) {
		return false
	}

	c.items = append(c.items[:i], c.items[i+1:]...)
	c.persist()
	c.session.Notify.Notify("Item removed from cart", SeverityInfo)
	return true
}

func (c *CartEngine) Clear() {
	c.items = []domain.CartItem{}
	c.persist()
}

func (c *CartEngine) Items() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *CartEngine) IsEmpty() bool {
	return len(c.items) == 0
}

// Count is the number of dishes, used for the cart badge.
func (c *CartEngine) Count() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

func (c *CartEngine) Subtotal() int64 {
	var subtotal int64
	for _, item := range c.items {
		subtotal += item.LineTotal()
	}
	return subtotal
}

func (c *CartEngine) Discount() int64 {
	return Discount(c.Subtotal())
}

func (c *CartEngine) Total() int64 {
	subtotal := c.Subtotal()
	return subtotal - Discount(subtotal)
}

func (c *CartEngine) Summary() domain.CartSummary {
	subtotal := c.Subtotal()
	discount := Discount(subtotal)
	return domain.CartSummary{
		Items:    c.Items(),
		Count:    c.Count(),
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal - discount,
	}
}

// ApplyPromoCode checks the code against the catalog. The total is not
// changed: promotions are validated only.
func (c *CartEngine) ApplyPromoCode(code string) (Promotion, error) {
	if strings.TrimSpace(code) == "" {
		c.session.Notify.Notify("Please enter a promo code", SeverityError)
		return Promotion{}, invalid("code", "Please enter a promo code")
	}

	promo, ok := c.promos.Lookup(code)
	if !ok {
		c.session.Notify.Notify("Invalid promo code!", SeverityError)
		return Promotion{}, ErrInvalidPromoCode
	}

	c.session.Notify.Notify("Promo code applied!", SeveritySuccess)
	return promo, nil
}

// resetAfterCheckout empties the in-memory cart once checkout has already
// persisted the empty cart.
func (c *CartEngine) resetAfterCheckout() {
	c.items = []domain.CartItem{}
}

func (c *CartEngine) indexOf(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the cart. Failures are logged by the store and the
// in-memory cart stays authoritative for the session.
func (c *CartEngine) persist() {
	_ = c.session.Store.Save(cartKey, c.items)
}
