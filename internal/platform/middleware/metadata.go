package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// maxForwardHeaderLen caps the forwarding headers we are willing to parse.
// Anything longer is treated as garbage and ignored.
const maxForwardHeaderLen = 512

// Context keys for client metadata.
type contextKeyClientIP struct{}
type contextKeyUserAgent struct{}

// ClientMetadata extracts the client IP address and User-Agent from the
// request and adds them to the context for handlers and services.
//
// X-Forwarded-For and X-Real-IP are honored only when the direct peer falls
// inside one of the trusted proxy prefixes. With no trusted proxies the
// socket address always wins, so clients cannot spoof their audit trail IP
// by sending forwarding headers straight to the server.
func ClientMetadata(trustedProxies []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIPFromRequest(r, trustedProxies)
			userAgent := r.Header.Get("User-Agent")

			ctx := r.Context()
			ctx = context.WithValue(ctx, contextKeyClientIP{}, ip)
			ctx = context.WithValue(ctx, contextKeyUserAgent{}, userAgent)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientIP retrieves the client IP address from the context.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(contextKeyClientIP{}).(string); ok {
		return ip
	}
	return ""
}

// GetUserAgent retrieves the User-Agent from the context.
func GetUserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(contextKeyUserAgent{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, contextKeyClientIP{}, clientIP)
	ctx = context.WithValue(ctx, contextKeyUserAgent{}, userAgent)
	return ctx
}

// ClientIPFromRequest resolves the client IP. Forwarding headers are
// consulted only for requests arriving from a trusted proxy; the first
// X-Forwarded-For entry is the original client. Malformed or oversized
// header values fall back to the socket address.
func ClientIPFromRequest(r *http.Request, trustedProxies []netip.Prefix) string {
	remote := remoteIP(r.RemoteAddr)
	if remote == "" {
		return "unknown"
	}
	if !fromTrustedProxy(remote, trustedProxies) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && len(xff) <= maxForwardHeaderLen {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
		return remote
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" && len(xri) <= maxForwardHeaderLen {
		if addr, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return addr.String()
		}
	}
	return remote
}

func fromTrustedProxy(ip string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// remoteIP strips the port from a RemoteAddr value.
func remoteIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
