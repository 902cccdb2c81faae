// Package auth decides whether a setup request may proceed based on the
// authorization protocol name and data the client presented.
package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

// CookieProtocol is the authorization protocol name recognized by the
// cookie policy.
const CookieProtocol = "MIT-MAGIC-COOKIE-1"

// ErrUnauthorized rejects a setup request. The handshake turns it into a
// refusal reply and closes the connection.
var ErrUnauthorized = errors.New("auth: unauthorized")

// Policy screens setup requests before any resources are granted.
type Policy interface {
	// Authorize inspects the authorization protocol name and data from the
	// setup request and returns nil to admit the connection.
	Authorize(name string, data []byte) error
}

// AllowAll admits every connection. This is the default for local sockets.
type AllowAll struct{}

func (AllowAll) Authorize(string, []byte) error { return nil }

// CookiePolicy admits connections presenting the shared MIT-MAGIC-COOKIE-1
// secret. Comparison is constant time.
type CookiePolicy struct {
	cookie []byte
}

// NewCookiePolicy builds a policy around a shared cookie.
func NewCookiePolicy(cookie []byte) *CookiePolicy {
	return &CookiePolicy{cookie: append([]byte(nil), cookie...)}
}

func (p *CookiePolicy) Authorize(name string, data []byte) error {
	if name != CookieProtocol {
		return fmt.Errorf("%w: protocol %q", ErrUnauthorized, name)
	}

	if len(data) != len(p.cookie) || subtle.ConstantTimeCompare(data, p.cookie) != 1 {
		return fmt.Errorf("%w: bad cookie", ErrUnauthorized)
	}

	return nil
}

// LoadCookieFile reads a hex-encoded cookie, as produced by mcookie, from a
// file.
func LoadCookieFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: read cookie: %w", err)
	}

	cookie, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("auth: decode cookie: %w", err)
	}
	if len(cookie) == 0 {
		return nil, errors.New("auth: empty cookie")
	}

	return cookie, nil
}
