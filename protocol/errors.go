package protocol

import "errors"

// Errors surfaced by the framing codec. Session and bulk-transfer errors
// defined in package zkclient wrap these where the fault originates here.
var (
	ErrBadMagic     = errors.New("protocol: bad outer frame magic")
	ErrShortPacket  = errors.New("protocol: packet shorter than 8 bytes")
	ErrShortFrame   = errors.New("protocol: outer frame shorter than 8 bytes")
	ErrLengthTooBig = errors.New("protocol: outer frame length exceeds limit")
)

// MaxFrameLength bounds the outer frame's declared length so a corrupt or
// hostile length field can't make a reader allocate unbounded memory.
const MaxFrameLength = 100 * 1024 * 1024
