// Package handlers contains the HTTP handlers of the newsletter service.
//
// Endpoints:
//
//	GET  /health_check   liveness, always 200 with an empty body
//	POST /subscriptions  newsletter sign-up, form-encoded email and name
//
// Successful responses have empty bodies. Errors are JSON: { "error": "..." }.
package handlers

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/r2r72/newsletter/internal/service/subscription"
)

// Options configures NewRouter. The zero value disables CORS, rate limiting
// and the form size limit.
type Options struct {
	CORSOrigins  []string
	RateLimit    float64 // requests per second on /subscriptions
	RateBurst    int
	MaxFormBytes int64
}

// NewRouter registers all routes of the service.
func NewRouter(svc *subscription.Service, logger *slog.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(logger))
	r.Use(middleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health_check", handleHealthCheck)
	r.With(rateLimit(opts.RateLimit, opts.RateBurst)).
		Post("/subscriptions", withError(logger, handleSubscribe(svc, opts.MaxFormBytes)))

	return r
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

// withError turns a handler returning an error into an http.HandlerFunc.
// A returned error is logged and answered with 500.
func withError(logger *slog.Logger, h func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			logger.Error("request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"error", err,
			)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
	}
}

func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote_ip", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// rateLimit shares one token bucket across all callers. A non-positive rps
// disables it.
func rateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(limiter)))
				writeError(w, r, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds is the wait until the next token, rounded up to whole
// seconds. The reservation is cancelled so asking does not consume a token.
func retryAfterSeconds(limiter *rate.Limiter) int {
	res := limiter.Reserve()
	if !res.OK() {
		return 1
	}
	delay := res.Delay()
	res.Cancel()

	secs := int(math.Ceil(delay.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
