package httpapi

import (
	"net/http"

	"huongque-storefront/pkg/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type RouterOptions struct {
	Metrics  *metrics.ServerMetrics
	Gatherer prometheus.Gatherer
	Limiter  *RateLimiter
	Logger   *zap.Logger
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	r := mux.NewRouter()

	if opts.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(opts.Gatherer)).Methods("GET")
	}

	api := r.NewRoute().Subrouter()
	handler.RegisterRoutes(api)

	if opts.Logger != nil {
		api.Use(RequestLogger(opts.Logger))
	}
	if opts.Limiter != nil {
		api.Use(opts.Limiter.Middleware)
	}
	if opts.Metrics != nil {
		api.Use(routeMetrics(opts.Metrics))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", SessionHeader},
		ExposedHeaders: []string{SessionHeader},
	})
	return c.Handler(r)
}

// routeMetrics labels requests with the matched route template.
func routeMetrics(m *metrics.ServerMetrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					name = tpl
				}
			}
			m.Wrap(name, next).ServeHTTP(w, r)
		})
	}
}

func StartServer(addr string, handler http.Handler, logger *zap.Logger) error {
	logger.Info("storefront service starting", zap.String("addr", addr))
	return http.ListenAndServe(addr, handler)
}
