// Package pagination encodes opaque page tokens and clamps page sizes for content listings.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultPageSize is used when a listing does not ask for a specific size.
	DefaultPageSize = 50
	// MaxPageSize caps a single listing page.
	MaxPageSize = 100
)

// ErrInvalidPageToken is returned when a token cannot be decoded.
var ErrInvalidPageToken = errors.New("pagination: invalid page token")

// Cursor is the position a listing resumes from. StartAfter holds the sort key of the
// last item of the previous page.
type Cursor struct {
	StartAfter string `json:"startAfter,omitempty"`
}

// IsZero reports whether the cursor points at the start of the listing.
func (c Cursor) IsZero() bool { return c.StartAfter == "" }

// EncodeToken serialises the cursor into a base64 URL-safe page token.
func EncodeToken(cursor Cursor) (string, error) {
	if cursor.IsZero() {
		return "", nil
	}
	data, err := json.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("pagination: encode token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeToken parses a token produced by EncodeToken. The empty token is the zero cursor.
func DecodeToken(token string) (Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Cursor{}, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	var cursor Cursor
	if err := json.Unmarshal(decoded, &cursor); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	if cursor.IsZero() {
		return Cursor{}, fmt.Errorf("%w: empty cursor", ErrInvalidPageToken)
	}
	return cursor, nil
}

// ClampPageSize applies the default and upper bound to a requested page size.
func ClampPageSize(size int) int {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	}
	return size
}
