package service

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"slices"
	"strings"
	"time"

	"huongque-storefront/pkg/events"
	"huongque-storefront/storefront-svc/internal/domain"
	"huongque-storefront/storefront-svc/internal/storage"

	"go.uber.org/zap"
)

const (
	bookingsKey = "bookings"

	MaxGuests = 20

	dateLayout         = "2006-01-02"
	bookingCodePrefix  = "HQB"
	bookingCodeLength  = 6
	bookingCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	phonePattern = regexp.MustCompile(`^(84|0)[35789][0-9]{8}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func ValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

type BookingEngine struct {
	session Session
	slots   SlotCatalog
}

func NewBookingEngine(session Session, slots SlotCatalog) *BookingEngine {
	if len(slots.slots) == 0 {
		slots = DefaultSlotCatalog()
	}
	return &BookingEngine{session: session.withDefaults(), slots: slots}
}

func (b *BookingEngine) Slots() []string {
	return b.slots.Slots()
}

// AvailableSlots lists the bookable times for date. Today only offers
// slots after the current minute; a past date offers nothing.
func (b *BookingEngine) AvailableSlots(date time.Time) []string {
	now := b.session.now()
	day := truncateDay(date.In(now.Location()))
	today := truncateDay(now)

	switch {
	case day.Before(today):
		return []string{}
	case day.Equal(today):
		return b.slots.After(now.Hour(), now.Minute())
	default:
		return b.slots.Slots()
	}
}

// ValidateDate returns the date to use for a candidate. A past candidate
// yields today together with a *PastDateError.
func (b *BookingEngine) ValidateDate(candidate time.Time) (time.Time, error) {
	now := b.session.now()
	day := truncateDay(candidate.In(now.Location()))
	today := truncateDay(now)

	if day.Before(today) {
		b.session.Notify.Notify("Cannot book a table in the past!", SeverityError)
		return today, &PastDateError{Date: day, Today: today}
	}
	return day, nil
}

// ParseDate reads a YYYY-MM-DD date in the engine's time zone.
func (b *BookingEngine) ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(value), b.session.now().Location())
}

// Submit validates the request and, on success, appends a pending booking
// to the visitor's history. The first failing rule wins.
func (b *BookingEngine) Submit(req domain.BookingRequest) (*domain.Booking, error) {
	req, err := b.validate(req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			b.session.Notify.Notify(verr.Message, SeverityError)
		}
		b.session.rejected("booking")
		return nil, err
	}

	now := b.session.now()
	bookings := b.load()

	booking := domain.Booking{
		BookingRequest: req,
		ID:             nextBookingID(now, bookings),
		Status:         domain.BookingPending,
		CreatedAt:      now,
		BookingCode:    newBookingCode(),
		SchemaVersion:  domain.BookingSchemaVersion,
	}
	if booking.Branch == "" {
		booking.Branch = domain.DefaultBranch
	}

	bookings = append(bookings, booking)
	_ = b.session.Store.Save(bookingsKey, bookings)

	b.session.Logger.Info("booking created",
		zap.String("booking_code", booking.BookingCode),
		zap.String("date", booking.Date),
		zap.String("time", booking.Time),
		zap.Int("guests", booking.Guests))
	b.session.Notify.Notify("Table booked successfully!", SeveritySuccess)

	if b.session.Metrics != nil {
		b.session.Metrics.Bookings.Inc()
	}
	b.session.publish(events.Event{
		Type:        events.TypeBookingCreated,
		BookingCode: booking.BookingCode,
		Branch:      booking.Branch,
		Date:        booking.Date,
		Guests:      booking.Guests,
		Timestamp:   now,
	})

	return &booking, nil
}

func (b *BookingEngine) validate(req domain.BookingRequest) (domain.BookingRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)

	if req.Name == "" {
		return req, invalid("name", "Please enter your name")
	}
	if req.Phone == "" {
		return req, invalid("phone", "Please enter a phone number")
	}
	if !ValidPhone(req.Phone) {
		return req, invalid("phone", "Invalid phone number")
	}
	if req.Email != "" && !ValidEmail(req.Email) {
		return req, invalid("email", "Invalid email address")
	}

	if req.Date == "" || req.Time == "" {
		return req, invalid("date", "Please choose a date and time")
	}
	loc := b.session.now().Location()
	at, err := time.ParseInLocation(dateLayout+" "+slotLayout, req.Date+" "+req.Time, loc)
	if err != nil {
		return req, &ValidationError{Field: "date", Message: "Please choose a date and time", Err: err}
	}

	if req.Guests < 1 {
		return req, invalid("guests", "Please choose the number of guests")
	}
	if req.Guests > MaxGuests {
		req.Guests = MaxGuests
		b.session.Notify.Notify(fmt.Sprintf("The maximum number of guests is %d", MaxGuests), SeverityInfo)
	}

	if at.Before(b.session.now()) {
		return req, &ValidationError{Field: "time", Message: "Cannot book a table in the past!", Err: ErrPastBooking}
	}

	if !slices.Contains(b.AvailableSlots(at), req.Time) {
		return req, invalid("time", "Please choose an available time slot")
	}

	return req, nil
}

func (b *BookingEngine) load() []domain.Booking {
	bookings := storage.Load(b.session.Store, bookingsKey, []domain.Booking{})
	for i := range bookings {
		bookings[i].Migrate()
	}
	return bookings
}

func (b *BookingEngine) Bookings() []domain.Booking {
	return b.load()
}

func (b *BookingEngine) BookingsForUser(userID string) []domain.Booking {
	out := []domain.Booking{}
	for _, booking := range b.load() {
		if booking.UserID == userID {
			out = append(out, booking)
		}
	}
	return out
}

func (b *BookingEngine) FindByCode(code string) (*domain.Booking, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, booking := range b.load() {
		if booking.BookingCode == code {
			return &booking, nil
		}
	}
	return nil, ErrNotFound
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// nextBookingID is BK followed by the creation time in milliseconds,
// bumped until it does not collide with an existing booking.
func nextBookingID(now time.Time, existing []domain.Booking) string {
	taken := make(map[string]struct{}, len(existing))
	for _, booking := range existing {
		taken[booking.ID] = struct{}{}
	}

	millis := now.UnixMilli()
	for {
		id := fmt.Sprintf("BK%d", millis)
		if _, ok := taken[id]; !ok {
			return id
		}
		millis++
	}
}

func newBookingCode() string {
	var sb strings.Builder
	sb.WriteString(bookingCodePrefix)
	for i := 0; i < bookingCodeLength; i++ {
		sb.WriteByte(bookingCodeCharset[rand.Intn(len(bookingCodeCharset))])
	}
	return sb.String()
}
