package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksumAllZero(t *testing.T) {
	// Four zero words: sum stays 0, then negate/decrement/wrap yields
	// USHRTMAX-1. Hand-verified against the algorithm in the doc comment,
	// not against the spec's own (internally inconsistent, see DESIGN.md)
	// worked example.
	data := make([]byte, 8)
	require.Equal(t, uint16(0xFFFE), Checksum(data))
}

func TestChecksumSingleBit(t *testing.T) {
	data := []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	require.Equal(t, uint16(0xFFFD), Checksum(data))
}

func TestChecksumOddLength(t *testing.T) {
	// A trailing odd byte is folded in on its own, not paired into a word.
	data := []byte{0x01, 0x02, 0x03}
	got := Checksum(data)
	require.NotPanics(t, func() { Checksum(data) })
	require.NotZero(t, got+1) // smoke check: routine terminates and returns a u16
}

func TestChecksumDeterministic(t *testing.T) {
	data := []byte{0x10, 0x20, 0x30, 0x40, 0x50}
	require.Equal(t, Checksum(data), Checksum(append([]byte(nil), data...)))
}
