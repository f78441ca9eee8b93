package utils // package utils provides helpers shared by the entrypoints

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed JWT together with its expiry.  Clients send the
// Token in the Authorization header when the API is protected.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT with the standard subject,
// expiry and issued-at claims plus a role claim.
func NewAccessToken(secret, subject, role string, ttl time.Duration) (AccessToken, error) {
	if secret == "" {
		return AccessToken{}, errors.New("empty signing secret")
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
