package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned by Subject when the token cannot be parsed or
// its signature does not verify.
var ErrMalformed = errors.New("malformed token")

// minKeyBytes is the minimum effective key length for HS256. Shorter
// secrets must fail loudly at startup, never silently succeed.
const minKeyBytes = 32

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Leeway time.Duration
}

// Codec signs and validates stateless bearer tokens. The signing key is
// derived once at construction and never mutated afterwards, so a single
// Codec is safe for concurrent use.
type Codec struct {
	key    []byte
	issuer string
	ttl    time.Duration
	leeway time.Duration
}

func NewCodec(cfg Config) (*Codec, error) {
	key, err := deriveKey(cfg.Secret)
	if err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 60 * time.Minute
	}
	leeway := cfg.Leeway
	if leeway == 0 {
		leeway = 60 * time.Second
	}
	return &Codec{
		key:    key,
		issuer: cfg.Issuer,
		ttl:    ttl,
		leeway: leeway,
	}, nil
}

// deriveKey accepts the secret either base64-encoded or as raw bytes;
// whichever path yields at least minKeyBytes wins.
func deriveKey(secret string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) >= minKeyBytes {
		return decoded, nil
	}
	raw := []byte(secret)
	if len(raw) < minKeyBytes {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes for HS256", minKeyBytes)
	}
	return raw, nil
}

// Issue signs a token with the configured issuer, the given subject and
// custom claims, iat = now and exp = now + TTL.
func (c *Codec) Issue(subject string, claims map[string]any) (string, error) {
	now := time.Now()
	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc["iss"] = c.issuer
	mc["sub"] = subject
	mc["iat"] = jwt.NewNumericDate(now)
	mc["exp"] = jwt.NewNumericDate(now.Add(c.ttl))

	return jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(c.key)
}

// Validate checks signature, issuer and expiry (with leeway for clock
// skew). Every failure collapses to false.
func (c *Codec) Validate(raw string) bool {
	_, err := jwt.Parse(raw, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(c.leeway),
	)
	return err == nil
}

// Subject extracts the subject after verifying the signature only; expiry
// and issuer are deliberately not checked so callers can still identify
// who a stale token was issued to.
func (c *Codec) Subject(raw string) (string, error) {
	parsed, err := jwt.Parse(raw, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", ErrMalformed
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrMalformed
	}
	return sub, nil
}

// ValidateFor binds a token to a concrete subject: full validation plus a
// case-insensitive subject match. Guards against the stored identity
// drifting between issuance and use.
func (c *Codec) ValidateFor(raw, subject string) bool {
	if !c.Validate(raw) {
		return false
	}
	sub, err := c.Subject(raw)
	return err == nil && strings.EqualFold(sub, subject)
}

func (c *Codec) keyFunc(_ *jwt.Token) (any, error) {
	return c.key, nil
}
