package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// Codec signs and verifies the session cookie. The token names a server-side
// record by ID and proves possession with a one-time validator; it never
// carries account data beyond the opaque reference. It also carries no
// expiry: the window lives in the record, where each renewal slides it, so
// a fixed claim here would cap the session at its issuance lifetime.
type Codec struct {
	secret []byte
	issuer string
}

// NewCodec creates a cookie codec signing with the given secret.
func NewCodec(secret, issuer string) *Codec {
	if issuer == "" {
		issuer = "gatehouse"
	}
	return &Codec{secret: []byte(secret), issuer: issuer}
}

type cookieClaims struct {
	SessionID string `json:"sid"`
	Validator string `json:"validator"`
	Remember  bool   `json:"remember"`
	jwt.RegisteredClaims
}

// Token is the decoded content of a valid session cookie.
type Token struct {
	SessionID kernel.SessionID
	Account   kernel.AccountID
	Validator string
	Remember  bool
}

// Encode signs a cookie token for the given session and validator.
func (c *Codec) Encode(s *Session, validator string) (string, error) {
	claims := cookieClaims{
		SessionID: s.ID.String(),
		Validator: validator,
		Remember:  s.Remember,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   s.Account.String(),
			NotBefore: jwt.NewNumericDate(s.IssuedAt),
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", ErrTokenGeneration().WithCause(err)
	}
	return signed, nil
}

// Decode verifies the signature and returns the token content. Any defect,
// a bad signature or garbage input, yields an error; the manager maps all
// of them to "no principal". Expiry is not checked here: the manager gates
// on the server-side record, whose window renewal keeps current.
func (c *Codec) Decode(raw string) (*Token, error) {
	parsed, err := jwt.ParseWithClaims(raw, &cookieClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*cookieClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid session token claims")
	}
	return &Token{
		SessionID: kernel.NewSessionID(claims.SessionID),
		Account:   kernel.NewAccountID(claims.Subject),
		Validator: claims.Validator,
		Remember:  claims.Remember,
	}, nil
}
