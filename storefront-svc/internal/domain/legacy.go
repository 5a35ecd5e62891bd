package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// flexInt decodes numbers written either as JSON numbers or numeric strings.
// Anything else decodes as 0 so one bad field cannot discard the whole
// stored list; load-time defaults repair the record.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = 0
		return nil
	}
	*f = flexInt(v)
	return nil
}

// UnmarshalJSON accepts both the current field names and the legacy
// price/image names written by the first storefront release.
func (c *CartItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		UnitPrice *flexInt `json:"unitPrice"`
		Price     *flexInt `json:"price"`
		ImageRef  string   `json:"imageRef"`
		Image     string   `json:"image"`
		Quantity  flexInt  `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = CartItem{
		ID:       raw.ID,
		Name:     raw.Name,
		ImageRef: raw.ImageRef,
		Quantity: int(raw.Quantity),
	}
	switch {
	case raw.UnitPrice != nil:
		c.UnitPrice = int64(*raw.UnitPrice)
	case raw.Price != nil:
		c.UnitPrice = int64(*raw.Price)
	}
	if c.ImageRef == "" {
		c.ImageRef = raw.Image
	}
	return nil
}

// UnmarshalJSON tolerates guests stored as a string.
func (b *Booking) UnmarshalJSON(data []byte) error {
	type plain Booking
	var raw struct {
		plain
		Guests flexInt `json:"guests"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Booking(raw.plain)
	b.Guests = int(raw.Guests)
	return nil
}
