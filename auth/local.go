package auth

import (
	"net"
	"net/http"
)

// RemoteIP resolves the peer address of a request, honoring X-Real-IP
// when proxy headers are trusted.
func RemoteIP(r *http.Request, trustProxy bool) net.IP {
	if realIP := r.Header.Get("X-Real-IP"); trustProxy && realIP != "" {
		if ip := net.ParseIP(realIP); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}

// IsLocal reports whether ip belongs to the machine itself. Local callers
// are exempt from session token checks; remote callers are not.
func IsLocal(ip net.IP) bool {
	return ip != nil && ip.IsLoopback()
}
