package session

import (
	"errors"
	"log"
	"net/http"

	"github.com/iliyamo/lab-booking/internal/model"
	"github.com/iliyamo/lab-booking/internal/utils"
)

// ErrUnauthenticated is returned when no source yields a valid token.
var ErrUnauthenticated = errors.New("unauthenticated")

// Resolved is the outcome of a successful verification.
type Resolved struct {
	Identity model.Identity
	Claims   *utils.SessionClaims
	Source   string
}

// Verifier authenticates requests.  It trusts the signed payload and never
// reads the account store, so role or location changes apply only after
// the holder logs in again.
type Verifier struct {
	secret  string
	sources []Source
	revoked Revocations
}

// NewVerifier builds a Verifier.  revoked may be nil to disable the
// logout check.
func NewVerifier(secret string, sources []Source, revoked Revocations) *Verifier {
	return &Verifier{secret: secret, sources: sources, revoked: revoked}
}

// Resolve tries each source in order and returns the first token that
// verifies.  A present but invalid token does not stop the search, since
// a stale cookie from another login surface may sit next to a good one.
func (v *Verifier) Resolve(r *http.Request) (Resolved, error) {
	for _, src := range v.sources {
		if res, ok := v.verify(r, src); ok {
			return res, nil
		}
	}
	return Resolved{}, ErrUnauthenticated
}

// ResolveAll returns every live session the request carries, one per
// token id, in source order.  Logout uses it so that a browser holding
// several slot cookies loses all of them at once.
func (v *Verifier) ResolveAll(r *http.Request) []Resolved {
	var out []Resolved
	seen := make(map[string]bool)
	for _, src := range v.sources {
		res, ok := v.verify(r, src)
		if !ok {
			continue
		}
		if jti := res.Claims.ID; jti != "" {
			if seen[jti] {
				continue
			}
			seen[jti] = true
		}
		out = append(out, res)
	}
	return out
}

func (v *Verifier) verify(r *http.Request, src Source) (Resolved, bool) {
	raw, ok := src.Token(r)
	if !ok {
		return Resolved{}, false
	}
	claims, id, err := utils.ParseSessionToken(v.secret, raw)
	if err != nil {
		return Resolved{}, false
	}
	if v.revoked != nil && claims.ID != "" {
		revoked, err := v.revoked.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			log.Printf("session: revocation lookup failed: %v", err)
		} else if revoked {
			return Resolved{}, false
		}
	}
	return Resolved{Identity: id, Claims: claims, Source: src.Name()}, true
}
