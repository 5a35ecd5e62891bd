package domain

import "strings"

// NormalizeCart applies load-time defaults so the engine only ever sees
// items with an id, a positive quantity and an image, one entry per id.
func NormalizeCart(items []CartItem) []CartItem {
	out := make([]CartItem, 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			continue
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if item.UnitPrice < 0 {
			item.UnitPrice = 0
		}
		if strings.TrimSpace(item.ImageRef) == "" {
			item.ImageRef = DefaultImage
		}

		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

// Migrate upgrades a stored booking to the current schema.
func (b *Booking) Migrate() {
	if b.Guests < 1 {
		b.Guests = 1
	}
	if b.SchemaVersion >= BookingSchemaVersion {
		return
	}
	if b.Status == "" {
		b.Status = BookingPending
	}
	if b.Branch == "" {
		b.Branch = DefaultBranch
	}
	b.SchemaVersion = BookingSchemaVersion
}
