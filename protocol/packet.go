// Package protocol implements the ZKTeco wire framing: the outer TCP frame,
// the inner command packet, the checksum, the session authentication
// commkey, and the packed timestamp codec. It has no notion of a socket or
// a session — callers (package zkclient) own the connection and hand raw
// bytes in and out.
package protocol

import (
	"encoding/binary"
	"fmt"
)

// USHRTMAX is the wrap boundary for the session's reply-id sequencing and
// the modulus used throughout the checksum calculation.
const USHRTMAX = 65535

// frameMagic1 and frameMagic2 are the two little-endian magic words that
// open every outer TCP frame.
const (
	frameMagic1 = 0x5050
	frameMagic2 = 0x7D82
)

// Packet is the parsed form of the inner protocol packet: an 8-byte header
// (command, checksum, session id, reply id) followed by an arbitrary
// payload.
type Packet struct {
	Command   uint16
	Checksum  uint16
	SessionID uint16
	ReplyID   uint16
	Payload   []byte
}

// ParsePacket decodes an inner packet from bytes that have already been
// unwrapped from the outer TCP frame.
func ParsePacket(b []byte) (*Packet, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrShortPacket, len(b))
	}
	p := &Packet{
		Command:   binary.LittleEndian.Uint16(b[0:2]),
		Checksum:  binary.LittleEndian.Uint16(b[2:4]),
		SessionID: binary.LittleEndian.Uint16(b[4:6]),
		ReplyID:   binary.LittleEndian.Uint16(b[6:8]),
	}
	if len(b) > 8 {
		p.Payload = append([]byte(nil), b[8:]...)
	}
	return p, nil
}

// EncodeCommand builds an inner packet for the given command, session id,
// and outgoing reply id, with the checksum computed per §4.1: the checksum
// is calculated with the checksum field zeroed, then written into the
// packet alongside the supplied reply id.
//
// The caller is responsible for reply-id bookkeeping (zkclient's client.go
// owns that state); EncodeCommand is a pure function of its arguments.
func EncodeCommand(command, sessionID, replyID uint16, payload []byte) []byte {
	buf := make([]byte, 8+len(payload))
	binary.LittleEndian.PutUint16(buf[0:2], command)
	binary.LittleEndian.PutUint16(buf[2:4], 0)
	binary.LittleEndian.PutUint16(buf[4:6], sessionID)
	binary.LittleEndian.PutUint16(buf[6:8], replyID)
	copy(buf[8:], payload)

	cs := Checksum(buf)
	binary.LittleEndian.PutUint16(buf[2:4], cs)
	return buf
}

// NextReplyID advances the reply-id sequence, wrapping at USHRTMAX per the
// session invariant in §3.
func NextReplyID(current uint16) uint16 {
	next := current + 1
	if next >= USHRTMAX {
		next -= USHRTMAX
	}
	return next
}

// WrapFrame prepends the 8-byte outer TCP frame (two magic words + a
// little-endian length) to an inner packet.
func WrapFrame(inner []byte) []byte {
	out := make([]byte, 8+len(inner))
	binary.LittleEndian.PutUint16(out[0:2], frameMagic1)
	binary.LittleEndian.PutUint16(out[2:4], frameMagic2)
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(inner)))
	copy(out[8:], inner)
	return out
}

// ParseFrameHeader validates and decodes the 8-byte outer frame header,
// returning the declared inner-packet length. Callers then read exactly
// that many additional bytes.
func ParseFrameHeader(b []byte) (length int, err error) {
	if len(b) < 8 {
		return 0, fmt.Errorf("%w: got %d bytes", ErrShortFrame, len(b))
	}
	m1 := binary.LittleEndian.Uint16(b[0:2])
	m2 := binary.LittleEndian.Uint16(b[2:4])
	if m1 != frameMagic1 || m2 != frameMagic2 {
		return 0, fmt.Errorf("%w: got %04x %04x", ErrBadMagic, m1, m2)
	}
	length = int(binary.LittleEndian.Uint32(b[4:8]))
	if length < 0 || length > MaxFrameLength {
		return 0, fmt.Errorf("%w: %d bytes", ErrLengthTooBig, length)
	}
	return length, nil
}

// HasFrameMagic reports whether b starts with the two outer-frame magic
// words, used by the bulk reader to detect a second frame concatenated
// into an over-read buffer (§4.3 Case C, alternative layout).
func HasFrameMagic(b []byte) bool {
	if len(b) < 4 {
		return false
	}
	return binary.LittleEndian.Uint16(b[0:2]) == frameMagic1 &&
		binary.LittleEndian.Uint16(b[2:4]) == frameMagic2
}
