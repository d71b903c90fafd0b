package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ssshoffice/office-in-go/pkg/identity"
)

var (
	// ErrExpiredToken indicates the token's expiry has passed.
	ErrExpiredToken = errors.New("expired token")

	// ErrInvalidToken indicates a signature or format failure.
	ErrInvalidToken = errors.New("invalid token")
)

// Seed is the minimal user material a token is minted from.
type Seed struct {
	SubjectID       string
	PermissionCodes []string
}

// Claims is the wire payload of a signed token. The iat field is epoch
// milliseconds, matching the original wire format, so it does not reuse
// jwt.RegisteredClaims.
type Claims struct {
	SubjectID       string           `json:"id"`
	PermissionCodes []string         `json:"auths"`
	Kind            identity.Kind    `json:"type"`
	IssuedAtMillis  int64            `json:"iat"`
	ExpiresAt       *jwt.NumericDate `json:"exp"`
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.UnixMilli(c.IssuedAtMillis)), nil
}
func (c Claims) GetIssuer() (string, error)             { return "", nil }
func (c Claims) GetSubject() (string, error)            { return c.SubjectID, nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }

// Service signs and verifies access and refresh tokens.
type Service struct {
	signingKey []byte
	accessTTL  func() time.Duration
	refreshTTL func() time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a token service with fixed lifetimes. The refresh TTL
// must outlive the access TTL; config validation enforces this before the
// service is built.
func NewService(signingKey []byte, accessTTL, refreshTTL time.Duration) *Service {
	return NewServiceWithTTLs(
		signingKey,
		func() time.Duration { return accessTTL },
		func() time.Duration { return refreshTTL },
	)
}

// NewServiceWithTTLs creates a token service that reads the lifetimes at
// issue time. A configuration reload applies to every subsequently issued
// token; already-issued tokens keep their original expiry.
func NewServiceWithTTLs(signingKey []byte, accessTTL, refreshTTL func() time.Duration) *Service {
	return &Service{
		signingKey: signingKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue signs a token of the given kind for the seed. Refresh tokens carry
// no permission codes.
func (s *Service) Issue(seed Seed, kind identity.Kind) (string, error) {
	now := s.now()

	codes := seed.PermissionCodes
	ttl := s.accessTTL()
	if kind == identity.KindRefresh {
		codes = []string{}
		ttl = s.refreshTTL()
	}

	claims := Claims{
		SubjectID:       seed.SubjectID,
		PermissionCodes: codes,
		Kind:            kind,
		IssuedAtMillis:  now.UnixMilli(),
		ExpiresAt:       jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the decoded identity.
// Matching the token kind against the consuming operation is the caller's
// responsibility.
func (s *Service) Verify(tokenString string) (*identity.Identity, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return &identity.Identity{
		SubjectID:       claims.SubjectID,
		PermissionCodes: claims.PermissionCodes,
		Kind:            claims.Kind,
		IssuedAt:        time.UnixMilli(claims.IssuedAtMillis),
	}, nil
}
