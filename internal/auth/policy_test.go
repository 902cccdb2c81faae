package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllowAll(t *testing.T) {
	var p AllowAll

	require.NoError(t, p.Authorize("", nil))
	require.NoError(t, p.Authorize("ANYTHING", []byte{1, 2, 3}))
}

func TestCookiePolicy(t *testing.T) {
	cookie := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03, 0x04}
	p := NewCookiePolicy(cookie)

	tests := []struct {
		name     string
		protocol string
		data     []byte
		ok       bool
	}{
		{"Valid", CookieProtocol, cookie, true},
		{"WrongProtocol", "XDM-AUTHORIZATION-1", cookie, false},
		{"EmptyProtocol", "", cookie, false},
		{"WrongCookie", CookieProtocol, []byte{1, 2, 3, 4, 5, 6, 7, 8}, false},
		{"ShortCookie", CookieProtocol, cookie[:4], false},
		{"NoData", CookieProtocol, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Authorize(tt.protocol, tt.data)
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrUnauthorized)
			}
		})
	}
}

func TestCookiePolicy_CopiesSecret(t *testing.T) {
	cookie := []byte{1, 2, 3, 4}
	p := NewCookiePolicy(cookie)

	cookie[0] = 0xFF
	require.NoError(t, p.Authorize(CookieProtocol, []byte{1, 2, 3, 4}))
}

func TestLoadCookieFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("Valid", func(t *testing.T) {
		path := filepath.Join(dir, "cookie")
		require.NoError(t, os.WriteFile(path, []byte("deadbeef01020304\n"), 0o600))

		cookie, err := LoadCookieFile(path)
		require.NoError(t, err)
		require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03, 0x04}, cookie)
	})

	t.Run("BadHex", func(t *testing.T) {
		path := filepath.Join(dir, "bad")
		require.NoError(t, os.WriteFile(path, []byte("not-hex"), 0o600))

		_, err := LoadCookieFile(path)
		require.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		path := filepath.Join(dir, "empty")
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

		_, err := LoadCookieFile(path)
		require.Error(t, err)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadCookieFile(filepath.Join(dir, "nope"))
		require.Error(t, err)
	})
}
