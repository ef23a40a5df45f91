// Package metadata captures client metadata (request ID, IP, device) early in
// the middleware chain so handlers and audit events can reference it.
package metadata

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"onboard/pkg/requestcontext"
)

const requestIDHeader = "X-Request-ID"

// ClientMetadata assigns a request ID (honoring an inbound X-Request-ID),
// extracts the client IP and parses the User-Agent into the context.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx := r.Context()
		ctx = requestcontext.WithRequestID(ctx, requestID)
		ctx = requestcontext.WithClientIP(ctx, clientIPFromRequest(r))

		if ua := r.Header.Get("User-Agent"); ua != "" {
			ctx = requestcontext.WithUserAgent(ctx, ua)
			parsed := useragent.New(ua)
			browser, _ := parsed.Browser()
			ctx = requestcontext.WithDeviceInfo(ctx, requestcontext.Device{
				Browser: browser,
				OS:      parsed.OS(),
				Mobile:  parsed.Mobile(),
				Bot:     parsed.Bot(),
			})
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIPFromRequest extracts the real client IP, handling proxies and load
// balancers.
func clientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs; the first is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" ("[::1]:port" for IPv6).
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
