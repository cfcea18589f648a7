package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextReplyIDWraps(t *testing.T) {
	// spec.md §8 scenario 2: reply id starts at USHRTMAX-1 and wraps back
	// to 0 at USHRTMAX, not USHRTMAX itself.
	require.Equal(t, uint16(USHRTMAX-1), NextReplyID(USHRTMAX-2))
	require.Equal(t, uint16(0), NextReplyID(USHRTMAX-1))
	require.Equal(t, uint16(1), NextReplyID(0))
}

func TestEncodeCommandRoundTrip(t *testing.T) {
	payload := []byte("hello")
	inner := EncodeCommand(1000, 42, 7, payload)
	pkt, err := ParsePacket(inner)
	require.NoError(t, err)
	require.Equal(t, uint16(1000), pkt.Command)
	require.Equal(t, uint16(42), pkt.SessionID)
	require.Equal(t, uint16(7), pkt.ReplyID)
	require.Equal(t, payload, pkt.Payload)
	require.NotZero(t, pkt.Checksum)
}

func TestParsePacketShort(t *testing.T) {
	_, err := ParsePacket([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrShortPacket)
}

func TestWrapFrameAndParseFrameHeader(t *testing.T) {
	inner := EncodeCommand(2000, 1, 2, []byte("payload"))
	frame := WrapFrame(inner)

	length, err := ParseFrameHeader(frame[:8])
	require.NoError(t, err)
	require.Equal(t, len(inner), length)
	require.Equal(t, inner, frame[8:8+length])
}

func TestParseFrameHeaderBadMagic(t *testing.T) {
	bad := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	_, err := ParseFrameHeader(bad)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestParseFrameHeaderTooLong(t *testing.T) {
	frame := make([]byte, 8)
	frame[0], frame[1] = 0x50, 0x50
	frame[2], frame[3] = 0x82, 0x7D
	frame[4] = 0xFF
	frame[5] = 0xFF
	frame[6] = 0xFF
	frame[7] = 0xFF
	_, err := ParseFrameHeader(frame)
	require.ErrorIs(t, err, ErrLengthTooBig)
}

func TestHasFrameMagic(t *testing.T) {
	inner := EncodeCommand(2000, 1, 2, nil)
	frame := WrapFrame(inner)
	require.True(t, HasFrameMagic(frame))
	require.False(t, HasFrameMagic([]byte{1, 2, 3}))
}
