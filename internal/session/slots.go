package session

import (
	"net/http"
	"time"

	"github.com/iliyamo/lab-booking/internal/model"
)

// Slots names the cookie used for each login surface.  The slot is chosen
// once, when the session is issued, from the account's role.
type Slots struct {
	User     string
	SubAdmin string
	Admin    string
}

// CookieFor returns the cookie name for role.
func (s Slots) CookieFor(role model.Role) string {
	switch role {
	case model.RoleUser:
		return s.User
	case model.RoleSubAdmin:
		return s.SubAdmin
	case model.RoleAdmin:
		return s.Admin
	default:
		return ""
	}
}

// Sources returns cookie sources for every slot in user, sub-admin, admin
// order.  It is the default when no explicit source list is configured.
func (s Slots) Sources() []Source {
	out := []Source{}
	for _, r := range []model.Role{model.RoleUser, model.RoleSubAdmin, model.RoleAdmin} {
		if name := s.CookieFor(r); name != "" {
			out = append(out, CookieSource{Cookie: name})
		}
	}
	return out
}

// CookieWriter sets and clears session cookies.  Cookies are HTTP-only so
// client scripts never see the token.
type CookieWriter struct {
	Slots  Slots
	Secure bool
	Domain string
}

// Set stores token in the slot belonging to role.
func (w CookieWriter) Set(rw http.ResponseWriter, role model.Role, token string, exp time.Time) {
	http.SetCookie(rw, &http.Cookie{
		Name:     w.Slots.CookieFor(role),
		Value:    token,
		Path:     "/",
		Domain:   w.Domain,
		Expires:  exp,
		MaxAge:   int(time.Until(exp).Seconds()),
		HttpOnly: true,
		Secure:   w.Secure,
		SameSite: w.sameSite(),
	})
}

// ClearAll expires every slot cookie.
func (w CookieWriter) ClearAll(rw http.ResponseWriter) {
	for _, r := range model.Roles() {
		name := w.Slots.CookieFor(r)
		if name == "" {
			continue
		}
		http.SetCookie(rw, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   w.Domain,
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   w.Secure,
			SameSite: w.sameSite(),
		})
	}
}

// Cross-site frontends need SameSite=None, which browsers only accept on
// secure cookies.
func (w CookieWriter) sameSite() http.SameSite {
	if w.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
