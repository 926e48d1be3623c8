package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
)

// clientIPHeaders are consulted in order when a request arrives through a
// trusted proxy. CF-Connecting-IP is what the edge sets in front of the
// dashboard.
var clientIPHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

// TrustedRealIP rewrites r.RemoteAddr to the client address reported by a
// proxy header, but ONLY if the request comes from a trusted proxy CIDR.
// If no trusted proxies are configured or the request is not from a trusted
// proxy, the original RemoteAddr is used.
//
// This prevents clients from sending fake headers to dodge rate limiting.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	trusted := parsePrefixes(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if remote, ok := parseAddr(r.RemoteAddr); ok && isTrusted(remote, trusted) {
				if ip, ok := headerIP(r.Header); ok {
					r.RemoteAddr = ip.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// parsePrefixes parses CIDRs once at startup. A bare address is treated as a
// single-host prefix.
func parsePrefixes(cidrs []string) []netip.Prefix {
	var out []netip.Prefix
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if p, err := netip.ParsePrefix(cidr); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(cidr)
		if err != nil {
			slog.Warn("realip: invalid trusted proxy CIDR, skipping", "cidr", cidr, "error", err)
			continue
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}

// headerIP returns the first valid address found in clientIPHeaders. For
// X-Forwarded-For the first hop is the original client.
func headerIP(h http.Header) (netip.Addr, bool) {
	for _, name := range clientIPHeaders {
		v := h.Get(name)
		if v == "" {
			continue
		}
		if first, _, found := strings.Cut(v, ","); found {
			v = first
		}
		if addr, err := netip.ParseAddr(strings.TrimSpace(v)); err == nil {
			return addr.Unmap(), true
		}
	}
	return netip.Addr{}, false
}

// parseAddr parses an address from a host:port string or plain IP.
func parseAddr(s string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap(), true
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr.Unmap(), true
	}
	return netip.Addr{}, false
}

// isTrusted checks if addr is within any of the trusted prefixes.
func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
