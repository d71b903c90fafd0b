package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentialFormat indicates a Basic credential that does not
	// decode to exactly "loginId:password".
	ErrInvalidCredentialFormat = errors.New("invalid credential format")

	// ErrHashing indicates a password hashing failure (RNG or cost error).
	ErrHashing = errors.New("password hashing failed")
)

// BasicCredential is the decoded content of a Basic authorization token.
type BasicCredential struct {
	LoginID  string
	Password string
}

// Codec hashes and verifies passwords and decodes Basic credentials.
type Codec struct {
	cost func() int
}

// NewCodec creates a Codec with a fixed bcrypt cost.
func NewCodec(cost int) *Codec {
	return NewCodecWithCost(func() int { return cost })
}

// NewCodecWithCost creates a Codec that reads the bcrypt cost at hash time,
// so a configuration reload applies to subsequent hashes.
func NewCodecWithCost(cost func() int) *Codec {
	return &Codec{cost: cost}
}

// Hash generates a salted one-way hash of the password. A cost outside
// bcrypt's supported range falls back to the library default.
func (c *Codec) Hash(password string) (string, error) {
	cost := c.cost()
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	return string(h), nil
}

// Compare verifies a plaintext password against a stored hash. A mismatch is
// not an error condition; it simply returns false.
func (c *Codec) Compare(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// DecodeBasic decodes "base64(loginId:password)". The payload must contain
// exactly one colon separator.
func (c *Codec) DecodeBasic(rawCredential string) (*BasicCredential, error) {
	decoded, err := base64.StdEncoding.DecodeString(rawCredential)
	if err != nil {
		return nil, ErrInvalidCredentialFormat
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 2 {
		return nil, ErrInvalidCredentialFormat
	}

	return &BasicCredential{LoginID: parts[0], Password: parts[1]}, nil
}
