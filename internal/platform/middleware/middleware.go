// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

/*
Package middleware provides the HTTP middleware chain for the LocaFleet API.

# Architecture

Middleware wraps handlers in an onion model. The standard chain applied in
internal/api is:

	RealIP -> RequestID -> StructuredLogger -> PanicRecovery -> CORS -> RateLimit

Authentication and authorization middleware live in authz.go and are applied
per route group rather than globally.
*/
package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/locafleet/rental-api/internal/platform/apperr"
	"github.com/locafleet/rental-api/internal/platform/constants"
	"github.com/locafleet/rental-api/internal/platform/ctxutil"
	"github.com/locafleet/rental-api/internal/platform/respond"
	"github.com/locafleet/rental-api/pkg/uuid"
)

// # Request identity

/*
RequestID assigns a unique ID to each request for tracing.

It respects an incoming X-Request-ID header (from a load balancer or an
upstream service) and generates a UUIDv7 when none is present. The ID is
stored in the request context and echoed back in the response headers.
*/
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

		// Reuse the upstream ID when present so traces correlate across services.
		requestID := request.Header.Get(constants.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.Must()
		}

		ctx := ctxutil.WithRequestID(request.Context(), requestID)
		writer.Header().Set(constants.HeaderXRequestID, requestID)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// # Structured logging

// statusRecorder captures the response status code for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

/*
StructuredLogger attaches a request-scoped slog.Logger to the context and
emits one access-log line per request on completion.

The attached logger carries the request ID, so every downstream log line
written through ctxutil.GetLogger is automatically correlated.
*/
func StructuredLogger(baseLogger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			start := time.Now()

			requestLogger := baseLogger.With(
				slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			)
			ctx := ctxutil.WithLogger(request.Context(), requestLogger)

			recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
			next.ServeHTTP(recorder, request.WithContext(ctx))

			requestLogger.InfoContext(ctx, "http_request",
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.Int("status", recorder.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote", request.RemoteAddr),
			)
		})
	}
}

// # Panic recovery

/*
PanicRecovery converts handler panics into 500 responses instead of letting
them crash the connection. The panic value and stack location are logged
through the request-scoped logger.
*/
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger := ctxutil.GetLogger(request.Context())
				logger.ErrorContext(request.Context(), "panic_recovered",
					slog.Any("panic", recovered),
					slog.String("path", request.URL.Path),
				)
				respond.Error(writer, request, apperr.Internal(nil))
			}
		}()
		next.ServeHTTP(writer, request)
	})
}

// # Client IP resolution

/*
RealIP rewrites request.RemoteAddr from X-Forwarded-For / X-Real-IP headers.

Only use behind a trusted reverse proxy: the headers are client-controlled
otherwise, and the rate limiter keys on the resolved address.
*/
func RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if forwarded := request.Header.Get("X-Forwarded-For"); forwarded != "" {
			// Take the first hop: the original client address.
			if index := strings.IndexByte(forwarded, ','); index >= 0 {
				forwarded = forwarded[:index]
			}
			request.RemoteAddr = strings.TrimSpace(forwarded)
		} else if realIP := request.Header.Get("X-Real-IP"); realIP != "" {
			request.RemoteAddr = realIP
		}
		next.ServeHTTP(writer, request)
	})
}

// # Rate limiting

// visitor tracks a per-client token bucket and its last activity time.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

/*
RateLimiter implements a per-IP token bucket rate limit.

# Concurrency

The visitor map is guarded by a mutex; stale entries are evicted by a
background goroutine so the map stays bounded under IP churn.
*/
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

// NewRateLimiter constructs a limiter allowing rps requests per second with
// the given burst, and starts the background eviction loop.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limiter := &RateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
	go limiter.evictStale()
	return limiter
}

// Handler returns the middleware enforcing the limit.
func (rateLimiter *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		clientIP := clientAddress(request)

		if !rateLimiter.allow(clientIP) {
			respond.Error(writer, request, apperr.RateLimited(1))
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// allow reserves one token for the given client, creating the bucket lazily.
func (rateLimiter *RateLimiter) allow(clientIP string) bool {
	rateLimiter.mu.Lock()
	defer rateLimiter.mu.Unlock()

	entry, found := rateLimiter.visitors[clientIP]
	if !found {
		entry = &visitor{limiter: rate.NewLimiter(rateLimiter.rps, rateLimiter.burst)}
		rateLimiter.visitors[clientIP] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

// evictStale drops visitor entries idle longer than the cleanup window.
func (rateLimiter *RateLimiter) evictStale() {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		rateLimiter.mu.Lock()
		for clientIP, entry := range rateLimiter.visitors {
			if time.Since(entry.lastSeen) > constants.RateLimitClientTTL {
				delete(rateLimiter.visitors, clientIP)
			}
		}
		rateLimiter.mu.Unlock()
	}
}

// clientAddress strips the port from RemoteAddr, falling back to the raw value.
func clientAddress(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}

// # CORS

/*
CORS applies a permissive-by-configuration CORS policy.

The allowed origin list is fixed at startup from configuration; requests
from unlisted origins receive no CORS headers and browsers reject them.
*/
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originSet[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			origin := request.Header.Get("Origin")
			if _, allowed := originSet[origin]; allowed {
				writer.Header().Set("Access-Control-Allow-Origin", origin)
				writer.Header().Set("Access-Control-Allow-Credentials", "true")
				writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
				writer.Header().Set("Vary", "Origin")
			}

			if request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
