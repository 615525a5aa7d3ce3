package pagination

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Cursor is the opaque pagination token (pre-encoding) for record listings.
// Short field names keep the token compact; it is serialized to minified
// JSON and encoded with URL-safe base64.
//
// Fields:
//   - v:   cursor schema version
//   - did: dataset ID
//   - off: record offset into the filtered result
//   - ps:  page size
//   - iat: issued-at timestamp (unix seconds)
//   - fh:  hash of the filter the page was produced with
//   - f:   the filter itself, so a cursor alone can resume
type Cursor struct {
	V   int             `json:"v"`
	Did string          `json:"did"`
	Off int             `json:"off"`
	Ps  int             `json:"ps"`
	Iat int64           `json:"iat"`
	Fh  string          `json:"fh,omitempty"`
	F   json.RawMessage `json:"f,omitempty"`
}

// EncodeCursor serializes and encodes the cursor as URL-safe base64 (without padding).
func EncodeCursor(c Cursor) (string, error) {
	if err := validate(&c); err != nil {
		return "", err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor decodes a URL-safe base64 token and parses the JSON cursor.
func DecodeCursor(token string) (*Cursor, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return nil, errors.New("cursor: empty token")
	}
	data, err := base64.RawURLEncoding.DecodeString(t)
	if err != nil {
		return nil, fmt.Errorf("cursor: invalid base64: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("cursor: invalid json: %w", err)
	}
	if err := validate(&c); err != nil {
		return nil, err
	}
	if len(c.F) > 0 && c.Fh != "" && HashFilter(c.F) != c.Fh {
		return nil, errors.New("cursor: filter hash mismatch")
	}
	return &c, nil
}

// HashFilter fingerprints a serialized filter.
func HashFilter(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}

func validate(c *Cursor) error {
	if c.V <= 0 {
		c.V = 1
	}
	if c.Iat == 0 {
		c.Iat = time.Now().Unix()
	}
	if strings.TrimSpace(c.Did) == "" {
		return errors.New("cursor: did (dataset id) required")
	}
	if c.Off < 0 {
		return errors.New("cursor: off must be >= 0")
	}
	if c.Ps <= 0 {
		return errors.New("cursor: ps must be > 0")
	}
	return nil
}

// NextOffset computes the next offset after returning n items.
func NextOffset(curr, n int) int {
	if curr < 0 {
		curr = 0
	}
	if n <= 0 {
		return curr
	}
	return curr + n
}

// Page returns the bounds [start, end) of a page over total items.
func Page(total, off, size int) (start, end int) {
	start = min(max(off, 0), total)
	end = min(start+max(size, 0), total)
	return start, end
}
