package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"huongque-storefront/pkg/metrics"
	httpapi "huongque-storefront/storefront-svc/internal/api/http"
	"huongque-storefront/storefront-svc/internal/domain"
	"huongque-storefront/storefront-svc/internal/mocks"
	"huongque-storefront/storefront-svc/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSessionID = "6f1c2d4e-8a9b-4c3d-9e8f-0a1b2c3d4e5f"

type response struct {
	Data          json.RawMessage        `json:"data"`
	Error         string                 `json:"error"`
	Notifications []service.Notification `json:"notifications"`
}

type testServer struct {
	router     http.Handler
	qr         *mocks.QRGenerator
	popularity *mocks.PopularityReader
}

func newTestServer(t *testing.T, limit int) *testServer {
	t.Helper()
	kv, _ := setupRedis(t)

	qr := new(mocks.QRGenerator)
	popularity := new(mocks.PopularityReader)
	reg := prometheus.NewRegistry()

	handler := httpapi.NewHandler(httpapi.Options{
		Store:      kv,
		Registry:   kv.Namespace("registry:"),
		Clock:      fixedClock(fixedNow),
		BaseURL:    "https://huongque.vn",
		QR:         qr,
		Popularity: popularity,
		Metrics:    metrics.NewDomainMetrics(reg),
		Logger:     zap.NewNop(),
	})
	router := httpapi.NewRouter(handler, httpapi.RouterOptions{
		Metrics:  metrics.NewServerMetrics(reg, "storefront-svc"),
		Gatherer: reg,
		Limiter:  httpapi.NewRateLimiter(limit, zap.NewNop()),
		Logger:   zap.NewNop(),
	})
	return &testServer{router: router, qr: qr, popularity: popularity}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(httpapi.SessionHeader, testSessionID)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp response
	if w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (s *testServer) loginCustomer(t *testing.T) {
	t.Helper()
	w, _ := s.do(t, "POST", "/api/auth/register",
		`{"name":"Nguyen Van A","email":"a@example.com","phone":"0912345678","password":"secret123","confirmPassword":"secret123"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(t, "POST", "/api/auth/login", `{"email":"a@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealthCheckHandler(t *testing.T) {
	srv := newTestServer(t, 0)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "storefront-svc", body["service"])
}

func TestSessionHeaderIsIssued(t *testing.T) {
	srv := newTestServer(t, 0)

	req := httptest.NewRequest("GET", "/api/cart", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(httpapi.SessionHeader), 36)
}

func TestCartHandlers(t *testing.T) {
	srv := newTestServer(t, 0)

	w, resp := srv.do(t, "POST", "/api/cart/items", `{"id":"lau","name":"Lau thai","unitPrice":250000,"imageRef":"lau.jpg"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testSessionID, w.Header().Get(httpapi.SessionHeader))
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, service.SeveritySuccess, resp.Notifications[0].Severity)

	srv.do(t, "POST", "/api/cart/items", `{"id":"lau","name":"Lau thai","unitPrice":250000}`)
	srv.do(t, "POST", "/api/cart/items", `{"id":"tra","name":"Tra da","unitPrice":5000}`)

	w, resp = srv.do(t, "GET", "/api/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary domain.CartSummary
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, int64(505000), summary.Subtotal)
	assert.Equal(t, int64(50000), summary.Discount)
	assert.Equal(t, int64(455000), summary.Total)
	assert.Equal(t, "/anh_cac_mon/lau.jpg", summary.Items[0].ImageRef)

	w, resp = srv.do(t, "PATCH", "/api/cart/items/tra", `{"delta":-1}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Len(t, summary.Items, 2)
	assert.Equal(t, 1, summary.Items[1].Quantity)

	w, resp = srv.do(t, "PATCH", "/api/cart/items/tra?confirm=true", `{"delta":-1}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Len(t, summary.Items, 1)

	w, resp = srv.do(t, "DELETE", "/api/cart/items/lau", "")
	require.Equal(t, http.StatusOK, w.Code)
	var removal struct {
		Removed bool               `json:"removed"`
		Cart    domain.CartSummary `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &removal))
	assert.False(t, removal.Removed)
	assert.Len(t, removal.Cart.Items, 1)

	w, resp = srv.do(t, "DELETE", "/api/cart/items/lau?confirm=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &removal))
	assert.True(t, removal.Removed)
	assert.Empty(t, removal.Cart.Items)
}

func TestApplyPromoHandler(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "known code", body: `{"code":"WELCOME15"}`, wantCode: http.StatusOK},
		{name: "unknown code", body: `{"code":"NOPE"}`, wantCode: http.StatusUnprocessableEntity},
		{name: "blank code", body: `{"code":""}`, wantCode: http.StatusBadRequest},
		{name: "invalid JSON", body: `{invalid}`, wantCode: http.StatusBadRequest},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			srv := newTestServer(t, 0)
			w, _ := srv.do(t, "POST", "/api/cart/promo", testCase.body)
			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}

func TestCheckoutHandler(t *testing.T) {
	srv := newTestServer(t, 0)

	w, resp := srv.do(t, "POST", "/api/checkout", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, service.ErrAuthRequired.Error(), resp.Error)

	srv.loginCustomer(t)

	w, _ = srv.do(t, "POST", "/api/checkout", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	srv.do(t, "POST", "/api/cart/items", `{"id":"pho","name":"Pho bo","unitPrice":65000}`)

	w, resp = srv.do(t, "POST", "/api/checkout", `{"paymentMethod":"card"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var order domain.Order
	require.NoError(t, json.Unmarshal(resp.Data, &order))
	assert.Equal(t, domain.PaymentCard, order.PaymentMethod)
	assert.Equal(t, int64(65000), order.Total)

	w, resp = srv.do(t, "GET", "/api/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	var orders []domain.Order
	require.NoError(t, json.Unmarshal(resp.Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	w, resp = srv.do(t, "GET", "/api/cart", "")
	var summary domain.CartSummary
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Empty(t, summary.Items)

	srv.qr.On("Generate", mock.MatchedBy(func(payload string) bool {
		return payload == service.OrderReceiptURL("https://huongque.vn", order.OrderNumber)
	})).Return([]byte("png"), nil).Once()

	w, _ = srv.do(t, "GET", "/api/orders/"+order.ID+"/qrcode", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png", w.Body.String())

	w, _ = srv.do(t, "GET", "/api/orders/unknown/qrcode", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	srv.qr.AssertExpectations(t)
}

func TestBookingHandlers(t *testing.T) {
	srv := newTestServer(t, 0)

	w, resp := srv.do(t, "GET", "/api/bookings/slots?date=2025-06-10", "")
	require.Equal(t, http.StatusOK, w.Code)
	var slots struct {
		Date  string   `json:"date"`
		Slots []string `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &slots))
	assert.Equal(t, "2025-06-10", slots.Date)
	assert.Equal(t, "14:30", slots.Slots[0])

	w, resp = srv.do(t, "GET", "/api/bookings/slots?date=2025-06-01", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Error)
	require.NoError(t, json.Unmarshal(resp.Data, &slots))
	assert.Equal(t, "2025-06-10", slots.Date)
	assert.Equal(t, "14:30", slots.Slots[0])
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, service.SeverityError, resp.Notifications[0].Severity)

	w, _ = srv.do(t, "GET", "/api/bookings/slots?date=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = srv.do(t, "POST", "/api/bookings",
		`{"name":"Tran B","phone":"0987654321","date":"2025-06-10","time":"12:00","guests":2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot book a table in the past!", resp.Error)

	w, resp = srv.do(t, "POST", "/api/bookings",
		`{"name":"Tran B","phone":"0987654321","date":"2025-06-12","time":"19:00","guests":2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var booking domain.Booking
	require.NoError(t, json.Unmarshal(resp.Data, &booking))
	assert.Equal(t, domain.BookingPending, booking.Status)

	w, resp = srv.do(t, "GET", "/api/bookings", "")
	require.Equal(t, http.StatusOK, w.Code)
	var bookings []domain.Booking
	require.NoError(t, json.Unmarshal(resp.Data, &bookings))
	require.Len(t, bookings, 1)

	srv.qr.On("Generate", service.BookingReceiptURL("https://huongque.vn", booking.BookingCode)).Return([]byte("png"), nil).Once()
	w, _ = srv.do(t, "GET", "/api/bookings/"+booking.BookingCode+"/qrcode", "")
	assert.Equal(t, http.StatusOK, w.Code)

	srv.qr.On("Generate", mock.Anything).Return(nil, errors.New("encoder failed")).Once()
	w, _ = srv.do(t, "GET", "/api/bookings/"+booking.BookingCode+"/qrcode", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandlers(t *testing.T) {
	srv := newTestServer(t, 0)

	w, resp := srv.do(t, "GET", "/api/auth/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":null}`, string(resp.Data))

	srv.loginCustomer(t)

	w, _ = srv.do(t, "POST", "/api/auth/register",
		`{"name":"Nguyen Van A","email":"a@example.com","phone":"0912345678","password":"secret123","confirmPassword":"secret123"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = srv.do(t, "POST", "/api/auth/login", `{"email":"a@example.com","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp = srv.do(t, "GET", "/api/auth/me", "")
	var me struct {
		User *domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &me))
	require.NotNil(t, me.User)
	assert.Equal(t, "a@example.com", me.User.Email)

	w, resp = srv.do(t, "POST", "/api/auth/logout", "")
	assert.JSONEq(t, `{"loggedOut":false}`, string(resp.Data))

	w, resp = srv.do(t, "POST", "/api/auth/logout?confirm=true", "")
	assert.JSONEq(t, `{"loggedOut":true}`, string(resp.Data))

	w, resp = srv.do(t, "GET", "/api/auth/me", "")
	assert.JSONEq(t, `{"user":null}`, string(resp.Data))
}

func TestPopularHandler(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		setupMock func(*mocks.PopularityReader)
		wantCode  int
		wantBody  string
	}{
		{
			name:  "default limit",
			query: "",
			setupMock: func(m *mocks.PopularityReader) {
				m.On("TopDishes", mock.Anything, 10).Return([]domain.DishPopularity{{DishID: "pho", Ordered: 12}}, nil).Once()
			},
			wantCode: http.StatusOK,
			wantBody: `[{"dish_id":"pho","ordered":12}]`,
		},
		{
			name:  "limit is capped",
			query: "?limit=500",
			setupMock: func(m *mocks.PopularityReader) {
				m.On("TopDishes", mock.Anything, 50).Return([]domain.DishPopularity{}, nil).Once()
			},
			wantCode: http.StatusOK,
			wantBody: `[]`,
		},
		{
			name:  "reader error yields empty list",
			query: "?limit=3",
			setupMock: func(m *mocks.PopularityReader) {
				m.On("TopDishes", mock.Anything, 3).Return(nil, errors.New("redis down")).Once()
			},
			wantCode: http.StatusOK,
			wantBody: `[]`,
		},
		{
			name:      "bad limit",
			query:     "?limit=abc",
			setupMock: func(m *mocks.PopularityReader) {},
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			srv := newTestServer(t, 0)
			testCase.setupMock(srv.popularity)

			w, resp := srv.do(t, "GET", "/api/menu/popular"+testCase.query, "")

			assert.Equal(t, testCase.wantCode, w.Code)
			if testCase.wantBody != "" {
				assert.JSONEq(t, testCase.wantBody, string(resp.Data))
			}
			srv.popularity.AssertExpectations(t)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	srv := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		w, _ := srv.do(t, "GET", "/api/cart", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w, _ := srv.do(t, "GET", "/api/cart", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimiter_KeysOnClientIP(t *testing.T) {
	limiter := httpapi.NewRateLimiter(2, zap.NewNop())
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(sessionID, remoteAddr, forwarded string) int {
		req := httptest.NewRequest("GET", "/api/cart", nil)
		req.RemoteAddr = remoteAddr
		req.Header.Set(httpapi.SessionHeader, sessionID)
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("session-1", "203.0.113.7:5000", ""))
	assert.Equal(t, http.StatusOK, send("session-2", "203.0.113.7:5001", "198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("session-3", "203.0.113.7:5002", "198.51.100.2"))
	assert.Equal(t, 1, limiter.Clients())

	assert.Equal(t, http.StatusOK, send("session-1", "203.0.113.8:5000", ""))
	assert.Equal(t, 2, limiter.Clients())
}

func TestRateLimiter_TrustProxy(t *testing.T) {
	limiter := httpapi.NewRateLimiter(1, zap.NewNop()).TrustProxy(true)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, client := range []string{"198.51.100.1", "198.51.100.2, 10.0.0.1"} {
		req := httptest.NewRequest("GET", "/api/cart", nil)
		req.Header.Set("X-Forwarded-For", client)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 2, limiter.Clients())
}

func TestRateLimiter_SweepDropsIdleClients(t *testing.T) {
	limiter := httpapi.NewRateLimiter(10, zap.NewNop())
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/api/cart", nil)
		req.RemoteAddr = fmt.Sprintf("203.0.113.%d:4000", i)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	require.Equal(t, 5, limiter.Clients())

	assert.Equal(t, 0, limiter.Sweep(time.Now().Add(-time.Hour)))
	assert.Equal(t, 5, limiter.Sweep(time.Now().Add(time.Second)))
	assert.Equal(t, 0, limiter.Clients())
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, 0)
	srv.do(t, "GET", "/api/cart", "")

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `huongque_storefront_svc_http_requests_total{handler="/api/cart",status="200"} 1`)
}
