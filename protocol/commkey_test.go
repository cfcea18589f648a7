package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommKeyLength(t *testing.T) {
	key := CommKey(0, 1)
	require.Len(t, key, 4)
}

func TestCommKeyDeterministic(t *testing.T) {
	// Locked down against the routine's own output (spec.md §8 scenario 3
	// treats the algorithm itself, not a hand-derived number, as golden).
	require.Equal(t, []byte{0x6D, 0xE1, 0x32, 0x7A}, CommKey(12345, 999))
}

func TestCommKeyMiddleByteAlwaysFifty(t *testing.T) {
	for _, password := range []uint32{0, 1, 0xFFFFFFFF, 0xDEADBEEF} {
		for _, session := range []uint16{0, 1, 0xFFFF} {
			key := CommKey(password, session)
			require.Equal(t, byte(50), key[2])
		}
	}
}

func TestCommKeyVariesWithSession(t *testing.T) {
	a := CommKey(42, 1)
	b := CommKey(42, 2)
	require.NotEqual(t, a, b)
}
