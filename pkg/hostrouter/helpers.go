package hostrouter

import (
	"net"
	"net/http"
	"strings"
)

// GetDomain returns the request host, lowercased, without port and
// trailing dot. IPv6 literals keep their brackets.
//
//	"Example.COM:8080" -> "example.com"
//	"[::1]:8080"       -> "[::1]"
func GetDomain(r *http.Request) string {
	return normalizeHost(r.Host)
}

// GetSubdomain returns the part of the request host below baseDomain:
// "bar.foo" for "bar.foo.example.com" and "example.com". Hosts outside
// baseDomain, or equal to it, give "".
func GetSubdomain(r *http.Request, baseDomain string) string {
	host := normalizeHost(r.Host)
	sub, ok := strings.CutSuffix(host, "."+normalizeHost(baseDomain))
	if !ok || sub == "" {
		return ""
	}
	return sub
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
	}
	return strings.TrimSuffix(host, ".")
}
