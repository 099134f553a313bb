package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
)

// DecodeQuantity parses a JSON quantity. Nodes normally send 0x-prefixed hex strings,
// but decimal strings and plain JSON numbers are accepted as well.
func DecodeQuantity(raw json.RawMessage) (uint64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("missing quantity")
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("invalid quantity %s: %w", raw, err)
		}
		return ParseQuantity(s)
	}

	v, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %s: %w", raw, err)
	}
	return v, nil
}

// ParseQuantity parses a hex ("0x1a", "0x01") or decimal ("26") quantity string.
// Leading zeros are accepted in either form.
func ParseQuantity(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid quantity %q: empty", s)
	}
	v, ok := math.ParseUint64(s)
	if !ok {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return v, nil
}
