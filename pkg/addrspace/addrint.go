package addrspace

import (
	"math/big"
	"net/netip"
)

// Int is an address expressed as an unsigned integer on the address line,
// wide enough to hold a full IPv6 address. Exported so callers (the FIB
// linearizer, the resolver) can compare and order addresses without
// re-parsing strings.
type Int struct {
	v *big.Int
}

func addrToInt(addr netip.Addr) *Int {
	b := addr.AsSlice()
	return &Int{v: new(big.Int).SetBytes(b)}
}

func (i *Int) toAddr(bits int) netip.Addr {
	buf := make([]byte, bits/8)
	i.v.FillBytes(buf)
	addr, _ := netip.AddrFromSlice(buf)
	if bits == 32 {
		addr = addr.Unmap()
	}
	return addr
}

// ToAddr renders i as a netip.Addr of the given family width, for callers
// (pkg/fibstore) that need a fixed-width, byte-sortable encoding of a
// breakpoint rather than the variable-length integer.
func (i *Int) ToAddr(bits int) netip.Addr { return i.toAddr(bits) }

// maskTo zeros the low (bits-newLen) bits, i.e. computes the network
// address of the supernet with prefix length newLen.
func (i *Int) maskTo(bits, newLen int) *Int {
	hostBits := bits - newLen
	if hostBits <= 0 {
		return &Int{v: new(big.Int).Set(i.v)}
	}
	mask := new(big.Int).Lsh(big.NewInt(1), uint(hostBits))
	mask.Sub(mask, big.NewInt(1))
	mask.Not(mask)
	// Not() on big.Int produces a two's-complement negative value; restrict
	// to the address width before ANDing.
	full := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	full.Sub(full, big.NewInt(1))
	mask.And(mask, full)
	out := new(big.Int).And(i.v, mask)
	return &Int{v: out}
}

// addHostSpan returns i + (2^hostBits - 1), the last address of a block of
// that many host bits starting at i.
func (i *Int) addHostSpan(hostBits int) *Int {
	if hostBits <= 0 {
		return &Int{v: new(big.Int).Set(i.v)}
	}
	span := new(big.Int).Lsh(big.NewInt(1), uint(hostBits))
	span.Sub(span, big.NewInt(1))
	return &Int{v: new(big.Int).Add(i.v, span)}
}

// setBit sets the bit at position bitPos (0-indexed from the MSB of a
// bits-wide address) to 1.
func (i *Int) setBit(bits, bitPos int) *Int {
	weight := uint(bits - 1 - bitPos)
	bit := new(big.Int).Lsh(big.NewInt(1), weight)
	return &Int{v: new(big.Int).Or(i.v, bit)}
}

func (i *Int) addOne() *Int {
	return &Int{v: new(big.Int).Add(i.v, big.NewInt(1))}
}

func (i *Int) cmp(other *Int) int {
	return i.v.Cmp(other.v)
}

// Cmp exposes ordering for callers outside the package (the FIB linearizer
// sorts breakpoints by address).
func (i *Int) Cmp(other *Int) int { return i.cmp(other) }

// String renders the base-10 integer, for diagnostics.
func (i *Int) String() string { return i.v.String() }

// IntFromAddr reconstructs an Int from a netip.Addr, the inverse of ToAddr.
// Used by pkg/fibstore when reloading entries keyed by their fixed-width
// address encoding.
func IntFromAddr(addr netip.Addr) *Int {
	return addrToInt(addr)
}
