package middleware

// identity.go keeps the resolved session in the Echo context under a
// private key so that handlers receive a typed model.Identity rather than
// loosely typed claim values.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-booking/internal/model"
	"github.com/iliyamo/lab-booking/internal/session"
)

const (
	sessionKey  = "lab.session"
	sessionsKey = "lab.sessions"
)

func setSession(c echo.Context, res session.Resolved) {
	c.Set(sessionKey, res)
}

// SessionFrom returns the resolved session, if SessionGate or
// OptionalSession stored one.
func SessionFrom(c echo.Context) (session.Resolved, bool) {
	res, ok := c.Get(sessionKey).(session.Resolved)
	return res, ok
}

// SessionsFrom returns every session OptionalSession resolved.
func SessionsFrom(c echo.Context) []session.Resolved {
	all, _ := c.Get(sessionsKey).([]session.Resolved)
	return all
}

// IdentityFrom returns the caller's identity, or the zero identity for an
// anonymous request.  The zero identity is refused by every role guard.
func IdentityFrom(c echo.Context) model.Identity {
	res, _ := SessionFrom(c)
	return res.Identity
}

// currentUserID returns the identity id for rate-limit keys, or "anon".
func currentUserID(c echo.Context) string {
	if id := IdentityFrom(c); !id.IsZero() {
		return id.ID
	}
	return "anon"
}
