package protocol

import "encoding/binary"

// CommKey derives the 4-byte authentication key sent with CMD_AUTH in
// response to CMD_ACK_UNAUTH (§4.2). password is the device password as a
// 32-bit value (0 when the device has none configured).
//
// The derivation: reverse the 32 bits of password into k, add sessionID,
// XOR the 4 little-endian bytes with ASCII "ZKSO", swap the two 16-bit
// halves, then XOR bytes [0,1,3] with 50 and set byte[2] = 50. This must be
// bit-exact (scenario 3's golden is this routine's own output, locked down
// by the regression test).
func CommKey(password uint32, sessionID uint16) []byte {
	var k uint32
	for i := 0; i < 32; i++ {
		k <<= 1
		if password&(1<<uint(i)) != 0 {
			k |= 1
		}
	}
	k += uint32(sessionID)

	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, k)

	xor := [4]byte{'Z', 'K', 'S', 'O'}
	for i := range b {
		b[i] ^= xor[i]
	}

	lo := binary.LittleEndian.Uint16(b[0:2])
	hi := binary.LittleEndian.Uint16(b[2:4])
	binary.LittleEndian.PutUint16(b[0:2], hi)
	binary.LittleEndian.PutUint16(b[2:4], lo)

	const mask = byte(50)
	b[0] ^= mask
	b[1] ^= mask
	b[2] = mask
	b[3] ^= mask

	return b
}
