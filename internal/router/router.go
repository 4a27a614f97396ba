package router

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mohirdev/delivery-api/internal/auth"
	"github.com/mohirdev/delivery-api/internal/order"
	"github.com/mohirdev/delivery-api/internal/product"
	"github.com/mohirdev/delivery-api/internal/user"
	"github.com/mohirdev/delivery-api/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// RequestIDMiddleware tags every request with a KSUID so log lines of one
// request can be correlated. Inbound X-Request-Id values are kept.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = utilities.NewRequestID()
				r.Header.Set("X-Request-Id", id)
			}
			w.Header().Set("X-Request-Id", id)
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			// ensure status is set
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", r.Header.Get("X-Request-Id"),
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
// It is intentionally simple and conservative so it works with most setups.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Clickjacking protection
			w.Header().Set("X-Frame-Options", "DENY")

			// Referrer policy
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")

			// HSTS - instruct browsers to use HTTPS for future requests. Only set if request is over TLS.
			if r.TLS != nil {
				// 30 days by default
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
// Protected routes are composed with the access control gate: RequireAuth for
// identity-scoped routes, RequireAuth then RequireStaff for staff routes.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, tokens *auth.TokenService) http.Handler {
	mux := http.NewServeMux()

	userSvc := user.NewService(db, nil, nil)
	productSvc := product.NewService(db, nil)
	orderSvc := order.NewService(db, nil, productSvc)

	gate := auth.NewGate(tokens, userSvc, logger)
	authed := gate.RequireAuth
	staff := func(h http.Handler) http.Handler { return gate.RequireAuth(gate.RequireStaff(h)) }

	userHandler := user.NewHandler(db, tokens, orderSvc, logger)
	productHandler := product.NewHandler(db, logger)
	orderHandler := order.NewHandler(orderSvc, logger)

	// health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// auth routes
	mux.HandleFunc("POST /auth/signup", userHandler.Signup)
	mux.HandleFunc("POST /auth/login", userHandler.Login)
	mux.HandleFunc("GET /auth/login/refresh", userHandler.Refresh)
	mux.Handle("GET /auth/orders", authed(http.HandlerFunc(userHandler.MyOrders)))

	// order routes
	mux.Handle("POST /order/make", authed(http.HandlerFunc(orderHandler.Make)))
	mux.Handle("GET /order/list", staff(http.HandlerFunc(orderHandler.List)))
	mux.Handle("GET /order/{id}", staff(http.HandlerFunc(orderHandler.Get)))

	// product routes
	mux.Handle("POST /product/create", staff(http.HandlerFunc(productHandler.Create)))
	mux.Handle("GET /product/list", staff(http.HandlerFunc(productHandler.List)))
	mux.Handle("GET /product/{id}", staff(http.HandlerFunc(productHandler.Get)))
	mux.Handle("PUT /product/{id}/update", staff(http.HandlerFunc(productHandler.Put)))
	mux.Handle("DELETE /product/{id}/delete", staff(http.HandlerFunc(productHandler.Delete)))

	// wrap with security headers middleware then logging middleware
	handler := SecurityHeadersMiddleware()(mux)
	handler = RequestIDMiddleware()(handler)
	handler = LoggingMiddleware(logger)(handler)
	return handler
}
