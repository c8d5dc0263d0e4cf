// Package ipcodec encodes an address into the fixed-width, byte-sortable
// LevelDB key pkg/fibstore persists FIB breakpoints under, and decodes it
// back. Ported from the teacher's pkg/util/ipcodec.go, trimmed to the
// range-key encode/decode pair pkg/fibstore actually calls.
package ipcodec

import (
	"fmt"
	"net/netip"
)

const (
	// Key prefixes for LevelDB
	PrefixRangeV4 = "R4:"
	PrefixRangeV6 = "R6:"
)

// EncodeRangeKey creates a LevelDB key for an IP range start
// Format: "R4:" + 4-byte big-endian IP (IPv4) or "R6:" + 16-byte big-endian IP (IPv6)
func EncodeRangeKey(ip netip.Addr) []byte {
	if ip.Is4() {
		key := make([]byte, len(PrefixRangeV4)+4)
		copy(key, PrefixRangeV4)
		copy(key[len(PrefixRangeV4):], ip.AsSlice())
		return key
	}
	// IPv6
	key := make([]byte, len(PrefixRangeV6)+16)
	copy(key, PrefixRangeV6)
	copy(key[len(PrefixRangeV6):], ip.AsSlice())
	return key
}

// DecodeRangeKey extracts the IP address from a range key
func DecodeRangeKey(key []byte) (netip.Addr, error) {
	if len(key) >= len(PrefixRangeV4)+4 && string(key[:len(PrefixRangeV4)]) == PrefixRangeV4 {
		// IPv4
		ipBytes := key[len(PrefixRangeV4):]
		if len(ipBytes) != 4 {
			return netip.Addr{}, fmt.Errorf("invalid IPv4 key length: %d", len(ipBytes))
		}
		addr, ok := netip.AddrFromSlice(ipBytes)
		if !ok {
			return netip.Addr{}, fmt.Errorf("invalid IPv4 address bytes")
		}
		return addr, nil
	}
	if len(key) >= len(PrefixRangeV6)+16 && string(key[:len(PrefixRangeV6)]) == PrefixRangeV6 {
		// IPv6
		ipBytes := key[len(PrefixRangeV6):]
		if len(ipBytes) != 16 {
			return netip.Addr{}, fmt.Errorf("invalid IPv6 key length: %d", len(ipBytes))
		}
		addr, ok := netip.AddrFromSlice(ipBytes)
		if !ok {
			return netip.Addr{}, fmt.Errorf("invalid IPv6 address bytes")
		}
		return addr, nil
	}
	return netip.Addr{}, fmt.Errorf("invalid range key prefix")
}
