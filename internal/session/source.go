// Package session resolves the caller's identity from a signed session
// token.  The token may arrive through any of an ordered list of sources
// (one cookie per login surface, optionally a Bearer header); the first
// source whose token verifies decides the identity for the request.
package session

import (
	"fmt"
	"net/http"
	"strings"
)

// Source extracts a raw token from a request.
type Source interface {
	Name() string
	Token(r *http.Request) (string, bool)
}

// CookieSource reads the token from a named cookie.
type CookieSource struct{ Cookie string }

func (s CookieSource) Name() string { return "cookie:" + s.Cookie }

func (s CookieSource) Token(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.Cookie)
	if err != nil || strings.TrimSpace(c.Value) == "" {
		return "", false
	}
	return c.Value, true
}

// BearerSource reads the token from an "Authorization: Bearer" header.
type BearerSource struct{}

func (BearerSource) Name() string { return "bearer" }

func (BearerSource) Token(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

// ParseSources turns configuration entries such as "cookie:user_token" or
// "bearer" into sources, preserving order.
func ParseSources(entries []string) ([]Source, error) {
	out := make([]Source, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		switch {
		case entry == "":
			continue
		case strings.EqualFold(entry, "bearer"):
			out = append(out, BearerSource{})
		case strings.HasPrefix(entry, "cookie:"):
			name := strings.TrimSpace(strings.TrimPrefix(entry, "cookie:"))
			if name == "" {
				return nil, fmt.Errorf("session source %q: empty cookie name", entry)
			}
			out = append(out, CookieSource{Cookie: name})
		default:
			return nil, fmt.Errorf("unknown session source %q", entry)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no session sources configured")
	}
	return out, nil
}
