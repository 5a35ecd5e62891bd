package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"huongque-storefront/pkg/metrics"
	"huongque-storefront/storefront-svc/internal/domain"
	"huongque-storefront/storefront-svc/internal/service"
	"huongque-storefront/storefront-svc/internal/storage"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	defaultPopularLimit = 10
	maxPopularLimit     = 50
)

type Delays struct {
	Booking  service.Delay
	Checkout service.Delay
	Auth     service.Delay
}

type Options struct {
	Store      *storage.KV
	Registry   *storage.KV
	Slots      service.SlotCatalog
	Promos     service.PromoCatalog
	Clock      service.Clock
	Delays     Delays
	BaseURL    string
	QR         service.QRGenerator
	Popularity service.PopularityReader
	Archive    service.OrderArchive
	Publisher  service.EventPublisher
	Metrics    *metrics.DomainMetrics
	Logger     *zap.Logger
}

type Handler struct {
	store      *storage.KV
	registry   *storage.KV
	slots      service.SlotCatalog
	promos     service.PromoCatalog
	clock      service.Clock
	delays     Delays
	baseURL    string
	qr         service.QRGenerator
	popularity service.PopularityReader
	archive    service.OrderArchive
	publisher  service.EventPublisher
	metrics    *metrics.DomainMetrics
	logger     *zap.Logger
	visitors   *visitorLocks
}

func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.QR == nil {
		opts.QR = service.DefaultQRGenerator{}
	}
	if len(opts.Slots.Slots()) == 0 {
		opts.Slots = service.DefaultSlotCatalog()
	}
	if opts.Promos == nil {
		opts.Promos = service.DefaultPromoCatalog()
	}
	return &Handler{
		store:      opts.Store,
		registry:   opts.Registry,
		slots:      opts.Slots,
		promos:     opts.Promos,
		clock:      opts.Clock,
		delays:     opts.Delays,
		baseURL:    opts.BaseURL,
		qr:         opts.QR,
		popularity: opts.Popularity,
		archive:    opts.Archive,
		publisher:  opts.Publisher,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		visitors:   newVisitorLocks(),
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/cart", h.getCart).Methods("GET")
	r.HandleFunc("/api/cart", h.clearCart).Methods("DELETE")
	r.HandleFunc("/api/cart/items", h.addCartItem).Methods("POST")
	r.HandleFunc("/api/cart/items/{id}", h.changeQuantity).Methods("PATCH")
	r.HandleFunc("/api/cart/items/{id}", h.removeCartItem).Methods("DELETE")
	r.HandleFunc("/api/cart/promo", h.applyPromo).Methods("POST")

	r.HandleFunc("/api/checkout", h.checkout).Methods("POST")
	r.HandleFunc("/api/orders", h.getOrders).Methods("GET")
	r.HandleFunc("/api/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")

	r.HandleFunc("/api/bookings/slots", h.getSlots).Methods("GET")
	r.HandleFunc("/api/bookings", h.createBooking).Methods("POST")
	r.HandleFunc("/api/bookings", h.getBookings).Methods("GET")
	r.HandleFunc("/api/bookings/{code}/qrcode", h.getBookingQRCode).Methods("GET")

	r.HandleFunc("/api/auth/register", h.register).Methods("POST")
	r.HandleFunc("/api/auth/login", h.login).Methods("POST")
	r.HandleFunc("/api/auth/logout", h.logout).Methods("POST")
	r.HandleFunc("/api/auth/me", h.me).Methods("GET")

	r.HandleFunc("/api/menu/popular", h.getPopular).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "storefront-svc",
		"timestamp": h.clock().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) cart(v *visit) *service.CartEngine {
	return service.NewCartEngine(v.session, h.promos)
}

func (h *Handler) auth(v *visit) *service.AuthService {
	return service.NewAuthService(v.session, h.registry)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var summary domain.CartSummary
	h.locked(v, func() {
		summary = h.cart(v).Summary()
	})
	writeJSON(w, http.StatusOK, v, summary)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var candidate domain.CartCandidate
	if err := decode(r, &candidate); err != nil {
		h.writeError(w, v, err)
		return
	}

	var summary domain.CartSummary
	h.locked(v, func() {
		cart := h.cart(v)
		cart.AddItem(candidate)
		summary = cart.Summary()
	})
	writeJSON(w, http.StatusOK, v, summary)
}

type quantityChange struct {
	Delta int `json:"delta"`
}

func (h *Handler) changeQuantity(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var change quantityChange
	if err := decode(r, &change); err != nil {
		h.writeError(w, v, err)
		return
	}

	var summary domain.CartSummary
	h.locked(v, func() {
		cart := h.cart(v)
		cart.ChangeQuantity(mux.Vars(r)["id"], change.Delta)
		summary = cart.Summary()
	})
	writeJSON(w, http.StatusOK, v, summary)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var (
		removed bool
		summary domain.CartSummary
	)
	h.locked(v, func() {
		cart := h.cart(v)
		removed = cart.RemoveItem(mux.Vars(r)["id"])
		summary = cart.Summary()
	})
	writeJSON(w, http.StatusOK, v, map[string]interface{}{
		"removed": removed,
		"cart":    summary,
	})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var summary domain.CartSummary
	h.locked(v, func() {
		cart := h.cart(v)
		cart.Clear()
		summary = cart.Summary()
	})
	writeJSON(w, http.StatusOK, v, summary)
}

type promoRequest struct {
	Code string `json:"code"`
}

func (h *Handler) applyPromo(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var req promoRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, v, err)
		return
	}

	var (
		promo service.Promotion
		err   error
	)
	h.locked(v, func() {
		promo, err = h.cart(v).ApplyPromoCode(req.Code)
	})
	if err != nil {
		h.writeError(w, v, err)
		return
	}
	writeJSON(w, http.StatusOK, v, promo)
}

type checkoutRequest struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var req checkoutRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			h.writeError(w, v, err)
			return
		}
	}

	order, err := service.Delayed(r.Context(), h.delays.Checkout, func() (order *domain.Order, err error) {
		h.locked(v, func() {
			user := h.auth(v).CurrentSession()
			order, err = service.NewCheckoutService(v.session).Checkout(h.cart(v), user, req.PaymentMethod)
		})
		return order, err
	})
	if err != nil {
		h.writeError(w, v, err)
		return
	}
	writeJSON(w, http.StatusCreated, v, order)
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var orders []domain.Order
	h.locked(v, func() {
		checkout := service.NewCheckoutService(v.session)
		if user := h.auth(v).CurrentSession(); user != nil {
			orders = checkout.OrdersForUser(user.ID)
			return
		}
		orders = checkout.Orders()
	})
	writeJSON(w, http.StatusOK, v, orders)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var (
		order *domain.Order
		err   error
	)
	h.locked(v, func() {
		order, err = service.NewCheckoutService(v.session).FindOrder(mux.Vars(r)["id"])
	})
	if err != nil {
		h.writeError(w, v, err)
		return
	}
	h.writeQRCode(w, v, service.OrderReceiptURL(h.baseURL, order.OrderNumber))
}

func (h *Handler) getSlots(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	engine := service.NewBookingEngine(v.session, h.slots)

	date := h.clock()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := engine.ParseDate(raw)
		if err != nil {
			h.writeError(w, v, &service.ValidationError{Field: "date", Message: "Invalid date", Err: err})
			return
		}
		date = parsed
	}

	// A past date is clamped to today; the notification tells the visitor.
	day, _ := engine.ValidateDate(date)
	writeJSON(w, http.StatusOK, v, map[string]interface{}{
		"date":  day.Format("2006-01-02"),
		"slots": engine.AvailableSlots(day),
	})
}

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var req domain.BookingRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, v, err)
		return
	}

	booking, err := service.Delayed(r.Context(), h.delays.Booking, func() (booking *domain.Booking, err error) {
		h.locked(v, func() {
			req.UserID = ""
			if user := h.auth(v).CurrentSession(); user != nil {
				req.UserID = user.ID
			}
			booking, err = service.NewBookingEngine(v.session, h.slots).Submit(req)
		})
		return booking, err
	})
	if err != nil {
		h.writeError(w, v, err)
		return
	}
	writeJSON(w, http.StatusCreated, v, booking)
}

func (h *Handler) getBookings(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var bookings []domain.Booking
	h.locked(v, func() {
		engine := service.NewBookingEngine(v.session, h.slots)
		if user := h.auth(v).CurrentSession(); user != nil {
			bookings = engine.BookingsForUser(user.ID)
			return
		}
		bookings = engine.Bookings()
	})
	writeJSON(w, http.StatusOK, v, bookings)
}

func (h *Handler) getBookingQRCode(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var (
		booking *domain.Booking
		err     error
	)
	h.locked(v, func() {
		booking, err = service.NewBookingEngine(v.session, h.slots).FindByCode(mux.Vars(r)["code"])
	})
	if err != nil {
		h.writeError(w, v, err)
		return
	}
	h.writeQRCode(w, v, service.BookingReceiptURL(h.baseURL, booking.BookingCode))
}

func (h *Handler) writeQRCode(w http.ResponseWriter, v *visit, payload string) {
	png, err := h.qr.Generate(payload)
	if err != nil {
		h.writeError(w, v, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var req domain.RegisterRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, v, err)
		return
	}

	user, err := service.Delayed(r.Context(), h.delays.Auth, func() (user *domain.User, err error) {
		h.locked(v, func() {
			user, err = h.auth(v).Register(req)
		})
		return user, err
	})
	if err != nil {
		h.writeError(w, v, err)
		return
	}
	writeJSON(w, http.StatusCreated, v, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var req loginRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, v, err)
		return
	}

	user, err := service.Delayed(r.Context(), h.delays.Auth, func() (user *domain.User, err error) {
		h.locked(v, func() {
			user, err = h.auth(v).Login(req.Email, req.Password)
		})
		return user, err
	})
	if err != nil {
		h.writeError(w, v, err)
		return
	}
	writeJSON(w, http.StatusOK, v, user)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var loggedOut bool
	h.locked(v, func() {
		loggedOut = h.auth(v).Logout()
	})
	writeJSON(w, http.StatusOK, v, map[string]bool{"loggedOut": loggedOut})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)
	var user *domain.User
	h.locked(v, func() {
		user = h.auth(v).CurrentSession()
	})
	writeJSON(w, http.StatusOK, v, map[string]*domain.User{"user": user})
}

func (h *Handler) getPopular(w http.ResponseWriter, r *http.Request) {
	v := h.newVisit(w, r)

	limit := defaultPopularLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(w, v, &service.ValidationError{Field: "limit", Message: "limit must be a positive integer", Err: err})
			return
		}
		limit = min(n, maxPopularLimit)
	}

	dishes := []domain.DishPopularity{}
	if h.popularity != nil {
		top, err := h.popularity.TopDishes(r.Context(), limit)
		if err != nil {
			h.logger.Warn("failed to read popular dishes", zap.Error(err))
		} else if top != nil {
			dishes = top
		}
	}
	writeJSON(w, http.StatusOK, v, dishes)
}
