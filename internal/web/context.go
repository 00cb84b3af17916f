package web

import (
	"net"
	"net/http"

	"github.com/JonMunkholm/leavetrack/internal/core"
)

// requestMeta stores the client IP and User-Agent for service logging.
// RemoteAddr has already been rewritten by TrustedRealIP.
func requestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		ctx := core.WithRequestMeta(r.Context(), core.RequestMeta{
			IP:        ip,
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
