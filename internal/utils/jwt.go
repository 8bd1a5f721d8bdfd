package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"

	"github.com/iliyamo/lab-booking/internal/model"
)

// SessionClaims is the signed payload of a session token.  Subject holds
// the account ID, ID (jti) a random token identifier used for revocation.
type SessionClaims struct {
	Role     model.Role `json:"role"`
	Location string     `json:"location,omitempty"`
	jwt.RegisteredClaims
}

// SessionToken represents a signed session JWT along with its expiry and
// token ID.  The Token field is handed to the transport layer, which stores
// it in an HTTP-only cookie.
type SessionToken struct {
	Token string    // the serialized JWT string
	ID    string    // jti claim
	Exp   time.Time // the UTC expiration time
}

// ErrTokenIdentity is returned when a verified token carries a payload
// that does not form a valid identity.
var ErrTokenIdentity = errors.New("token payload is not a valid identity")

// NewSessionToken builds and signs an HS256 JWT for the identity.  The
// claims include subject, role, location (sub-admins only), jti, issued at
// and expiry.
func NewSessionToken(secret string, id model.Identity, ttl time.Duration) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	jti := uuid.NewString()
	claims := SessionClaims{
		Role:     id.Role,
		Location: id.Location,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, ID: jti, Exp: exp}, nil
}

// ParseSessionToken verifies the signature and expiry of raw and returns
// its claims together with the identity they describe.  Only HMAC signing
// methods are accepted and the expiry claim is mandatory.
func ParseSessionToken(secret, raw string) (*SessionClaims, model.Identity, error) {
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, model.Identity{}, err
	}
	if !tok.Valid {
		return nil, model.Identity{}, jwt.ErrTokenSignatureInvalid
	}
	id, err := model.NewIdentity(claims.Subject, claims.Role, claims.Location)
	if err != nil {
		return nil, model.Identity{}, ErrTokenIdentity
	}
	return claims, id, nil
}
