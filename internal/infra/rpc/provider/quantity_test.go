package provider

import (
	"encoding/json"
	"testing"
)

func TestDecodeQuantity(t *testing.T) {
	tests := []struct {
		raw    string
		want   uint64
		hasErr bool
	}{
		{`"0x2691"`, 9873, false},
		{`"0x0"`, 0, false},
		{`"9876"`, 9876, false},
		{`9872`, 9872, false},
		{`"0X1f"`, 31, false},
		{`"0x01"`, 1, false},
		{`"0x000000000000000000000000000000000000000000000000000000000000ff"`, 255, false},
		{`"0X0a"`, 10, false},
		{`"007"`, 7, false},
		{`"0x"`, 0, true},
		{`""`, 0, true},
		{`"0xzz"`, 0, true},
		{`"Invalid API Key"`, 0, true},
		{`null`, 0, true},
		{`-1`, 0, true},
		{`{"a":1}`, 0, true},
	}

	for _, tt := range tests {
		got, err := DecodeQuantity(json.RawMessage(tt.raw))
		if tt.hasErr {
			if err == nil {
				t.Errorf("DecodeQuantity(%s): expected error, got %d", tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("DecodeQuantity(%s): unexpected error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DecodeQuantity(%s) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
