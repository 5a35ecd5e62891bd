package service

import (
	"fmt"
	"time"
)

const (
	DefaultOpening  = "10:00"
	DefaultClosing  = "21:00"
	DefaultSlotStep = 30 * time.Minute

	slotLayout = "15:04"
)

// SlotCatalog is the ordered list of bookable times of day, opening and
// closing included.
type SlotCatalog struct {
	slots []string
	index map[string]int
}

func NewSlotCatalog(opening, closing string, step time.Duration) (SlotCatalog, error) {
	open, err := time.Parse(slotLayout, opening)
	if err != nil {
		return SlotCatalog{}, fmt.Errorf("parse opening time %q: %w", opening, err)
	}
	end, err := time.Parse(slotLayout, closing)
	if err != nil {
		return SlotCatalog{}, fmt.Errorf("parse closing time %q: %w", closing, err)
	}
	if step <= 0 {
		return SlotCatalog{}, fmt.Errorf("slot step must be positive, got %s", step)
	}
	if end.Before(open) {
		return SlotCatalog{}, fmt.Errorf("closing time %s is before opening time %s", closing, opening)
	}

	catalog := SlotCatalog{index: make(map[string]int)}
	for t := open; !t.After(end); t = t.Add(step) {
		slot := t.Format(slotLayout)
		catalog.index[slot] = len(catalog.slots)
		catalog.slots = append(catalog.slots, slot)
	}
	return catalog, nil
}

func DefaultSlotCatalog() SlotCatalog {
	catalog, err := NewSlotCatalog(DefaultOpening, DefaultClosing, DefaultSlotStep)
	if err != nil {
		panic(err)
	}
	return catalog
}

func (c SlotCatalog) Slots() []string {
	out := make([]string, len(c.slots))
	copy(out, c.slots)
	return out
}

func (c SlotCatalog) Contains(slot string) bool {
	_, ok := c.index[slot]
	return ok
}

// After returns the slots strictly later than the given minute of the day.
func (c SlotCatalog) After(hour, minute int) []string {
	current := hour*60 + minute
	out := make([]string, 0, len(c.slots))
	for _, slot := range c.slots {
		t, _ := time.Parse(slotLayout, slot)
		if t.Hour()*60+t.Minute() > current {
			out = append(out, slot)
		}
	}
	return out
}
