package ipcodec

import (
	"net/netip"
	"testing"
)

func TestEncodeDecodeRangeKey(t *testing.T) {
	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4 start", "192.168.0.0"},
		{"IPv4 end", "192.168.255.255"},
		{"IPv4 single", "8.8.8.8"},
		{"IPv6 start", "2001:db8::"},
		{"IPv6 end", "2001:db8::ffff"},
		{"IPv6 single", "2001:4860:4860::8888"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip := netip.MustParseAddr(tt.ip)
			key := EncodeRangeKey(ip)
			decoded, err := DecodeRangeKey(key)
			if err != nil {
				t.Fatalf("DecodeRangeKey failed: %v", err)
			}
			if decoded != ip {
				t.Errorf("got %v, want %v", decoded, ip)
			}
		})
	}
}

func TestDecodeRangeKeyRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
	}{
		{"unknown prefix", []byte("X4:abcd")},
		{"truncated v4", append([]byte(PrefixRangeV4), 1, 2, 3)},
		{"truncated v6", append([]byte(PrefixRangeV6), 1, 2, 3)},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeRangeKey(tt.key); err == nil {
				t.Errorf("DecodeRangeKey(%v): expected error, got none", tt.key)
			}
		})
	}
}
