package app

import (
	"net/url"
	"strings"
)

// originHost strips the scheme off an origin URL, leaving "host[:port]".
// Malformed origins fall through unchanged so an exact-match pattern can still
// catch them.
func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// originMatchesPattern reports whether a request host matches an allowed
// origin pattern. Besides exact matches, "*.temple.example" admits any
// subdomain and "localhost:*" admits any port.
func originMatchesPattern(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}
