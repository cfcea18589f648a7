package zkclient

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/zkattend/zkattend/protocol"
)

// bulkRead runs the full CMD_DATA_WRRQ transfer ladder for the given inner
// command and fct selector (spec.md §4.3), returning the concatenated blob
// the device streamed back. It is grounded on the original Rust client's
// read_with_buffer_pyzk/read_chunks/read_chunk_pyzk/read_prepare_data_stream
// family, translated into a single sequential state machine since one
// Client only ever drives one session at a time.
func (c *Client) bulkRead(innerCmd uint16, fct int32) ([]byte, error) {
	// Control block: flag(1)=1, cmd(i16 LE), fct(i32 LE), padding(i32 LE)=0.
	// This is 11 bytes on the wire, not the 12 the prose describes; both the
	// reference Rust client and the wider pyzk wire format it was grounded
	// on pack it with no alignment padding. See DESIGN.md.
	ctrl := make([]byte, 11)
	ctrl[0] = 1
	binary.LittleEndian.PutUint16(ctrl[1:3], innerCmd)
	binary.LittleEndian.PutUint32(ctrl[3:7], uint32(fct))
	binary.LittleEndian.PutUint32(ctrl[7:11], 0)

	pkt, err := c.sendLargeCapture(cmdDataWRRQ, ctrl)
	if err != nil {
		return nil, fmt.Errorf("bulk read: %w", err)
	}

	cmd, payload := pkt.Command, pkt.Payload

	// Case B: CMD_ACK_OK with a too-short payload means the size/data
	// frames are still in flight; drain until one of them shows up.
	if cmd == cmdAckOK && len(payload) < 5 {
		cmd2, payload2, found, err := c.drainForData()
		if err != nil {
			return nil, fmt.Errorf("bulk read: %w", err)
		}
		if !found {
			return nil, nil
		}
		cmd, payload = cmd2, payload2
	}

	switch cmd {
	case cmdData:
		// Case A: the device answered immediately with the data itself.
		return payload, nil

	case cmdPrepareData:
		// Case D: PREPARE_DATA announces a size, then streams CMD_DATA
		// frames until that many bytes have arrived.
		if len(payload) < 4 {
			return nil, fmt.Errorf("bulk read: %w", ErrMissingSize)
		}
		size := binary.LittleEndian.Uint32(payload[0:4])
		if size == 0 {
			return nil, nil
		}
		if size >= maxBulkSize {
			return nil, fmt.Errorf("bulk read: %w: %d bytes", ErrResourceTooLarge, size)
		}
		return c.readStreamed(size)

	case cmdAckOK:
		// Case C: ACK_OK payload carries the size at bytes [1:5].
		if len(payload) >= 5 {
			size := binary.LittleEndian.Uint32(payload[1:5])
			if size > 0 && size < maxBulkSize {
				return c.readChunked(size)
			}
		}
		// Alternative layout: the device packed a second whole frame
		// right after the first inside the same initial read. payload
		// here begins with that second frame's own 8-byte outer header,
		// followed by its 8-byte inner header and its payload.
		if len(payload) >= 16 && protocol.HasFrameMagic(payload) {
			inner2, err := protocol.ParsePacket(payload[8:])
			if err == nil && len(inner2.Payload) >= 5 {
				size := binary.LittleEndian.Uint32(inner2.Payload[1:5])
				if size > 0 && size < maxBulkSize {
					c.adoptSession(inner2)
					return c.readChunked(size)
				}
			}
		}
		// Nothing to fetch; still balance the request with FREE_DATA.
		if _, err := c.command(cmdFreeData, nil); err != nil {
			c.log.WithError(err).Debug("zkclient: free-data after empty ack")
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("bulk read: %w: cmd=%d", ErrUnexpectedCommand, cmd)
	}
}

// sendLargeCapture sends cmd/payload and performs a single bounded read of
// up to 1032 bytes, returning the parsed first response packet. Unlike the
// normal per-command round trip, this single Read call may return more than
// one frame's worth of bytes when the device piggybacks a second frame
// immediately behind the first (Case C's alternative layout).
func (c *Client) sendLargeCapture(cmd uint16, payload []byte) (*protocol.Packet, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	if err := c.writeFrame(cmd, payload); err != nil {
		return nil, err
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(c.rwTimeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}
	buf := make([]byte, 1032)
	n, err := c.br.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("initial capture: %w", err)
	}
	if n < 16 {
		return nil, fmt.Errorf("initial capture: short response: %d bytes", n)
	}
	raw := buf[:n]
	c.trace.Frame("in", append([]byte(nil), raw...))

	length, err := protocol.ParseFrameHeader(raw[:8])
	if err != nil {
		return nil, err
	}
	end := 8 + length
	if end > n {
		end = n
	}
	pkt, err := protocol.ParsePacket(raw[8:end])
	if err != nil {
		return nil, err
	}
	c.adoptSession(pkt)
	return pkt, nil
}

// drainForData implements Case B's drain loop: poll for up to 35 seconds or
// 25 read attempts, whichever comes first (a read that times out after its
// 1 s deadline counts as an attempt), discarding anything that is not the
// data frame we are waiting for.
func (c *Client) drainForData() (cmd uint16, payload []byte, found bool, err error) {
	deadline := time.Now().Add(35 * time.Second)
	for seen := 0; seen < 25 && time.Now().Before(deadline); seen++ {
		if err := c.conn.SetReadDeadline(time.Now().Add(1 * time.Second)); err != nil {
			return 0, nil, false, fmt.Errorf("drain loop: %w", err)
		}
		pkt, rerr := c.readPacket()
		if rerr != nil {
			if isTimeout(rerr) {
				continue
			}
			return 0, nil, false, fmt.Errorf("drain loop: %w", rerr)
		}
		switch {
		case pkt.Command == cmdData:
			return pkt.Command, pkt.Payload, true, nil
		case pkt.Command == cmdPrepareData:
			return pkt.Command, pkt.Payload, true, nil
		case pkt.Command == cmdAckOK && len(pkt.Payload) >= 5:
			return pkt.Command, pkt.Payload, true, nil
		}
	}
	return 0, nil, false, nil
}

// readChunked implements Case C: repeatedly ask for MAX_CHUNK-sized pieces
// via CMD_DATA_RDY until size bytes have been collected, then release the
// transfer with CMD_FREE_DATA.
func (c *Client) readChunked(size uint32) ([]byte, error) {
	if size >= maxBulkSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrResourceTooLarge, size)
	}
	remain := size % maxChunk
	whole := (size - remain) / maxChunk

	out := make([]byte, 0, size)
	var start uint32
	for i := uint32(0); i < whole; i++ {
		chunk, err := c.readChunk(start, maxChunk)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		start += maxChunk
	}
	if remain > 0 {
		chunk, err := c.readChunk(start, remain)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}

	if _, err := c.command(cmdFreeData, nil); err != nil {
		c.log.WithError(err).Debug("zkclient: free-data after chunked read")
	}
	if uint32(len(out)) > size {
		out = out[:size]
	}
	return out, nil
}

// readChunk fetches one MAX_CHUNK-bounded piece starting at start.
func (c *Client) readChunk(start, size uint32) ([]byte, error) {
	req := make([]byte, 8)
	binary.LittleEndian.PutUint32(req[0:4], start)
	binary.LittleEndian.PutUint32(req[4:8], size)

	pkt, err := c.command(cmdDataRdy, req)
	if err != nil {
		return nil, fmt.Errorf("chunk at %d: %w", start, err)
	}

	switch pkt.Command {
	case cmdData:
		data := pkt.Payload
		if uint32(len(data)) < size {
			more := make([]byte, size-uint32(len(data)))
			if _, err := io.ReadFull(c.br, more); err != nil {
				return nil, fmt.Errorf("chunk at %d: remainder: %w", start, err)
			}
			data = append(data, more...)
		}
		c.tryReadTrailingAck()
		if uint32(len(data)) > size {
			data = data[:size]
		}
		return data, nil

	case cmdAckOK:
		return c.drainChunkData(size)

	default:
		return nil, fmt.Errorf("chunk at %d: %w: cmd=%d", start, ErrUnexpectedCommand, pkt.Command)
	}
}

// drainChunkData collects CMD_DATA frames (possibly preceded by a
// CMD_PREPARE_DATA announcement) until size bytes have arrived.
func (c *Client) drainChunkData(size uint32) ([]byte, error) {
	out := make([]byte, 0, size)
	for uint32(len(out)) < size {
		pkt, err := c.readPacket()
		if err != nil {
			return nil, fmt.Errorf("drain chunk: %w", err)
		}
		switch pkt.Command {
		case cmdData:
			out = append(out, pkt.Payload...)
		case cmdPrepareData:
			continue
		default:
			return out, nil
		}
	}
	if uint32(len(out)) > size {
		out = out[:size]
	}
	return out, nil
}

// tryReadTrailingAck makes a best-effort 100ms read for a trailing ACK the
// device sometimes sends after the last chunk; any error (including a
// timeout) is swallowed.
func (c *Client) tryReadTrailingAck() {
	if err := c.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond)); err != nil {
		return
	}
	_, _ = c.readPacket()
	_ = c.conn.SetReadDeadline(time.Now().Add(c.rwTimeout))
}

// readStreamed implements Case D: collect CMD_DATA frames until size bytes
// have arrived, then release the transfer with CMD_FREE_DATA.
func (c *Client) readStreamed(size uint32) ([]byte, error) {
	out := make([]byte, 0, size)
loop:
	for uint32(len(out)) < size {
		pkt, err := c.readPacket()
		if err != nil {
			return nil, fmt.Errorf("streamed read: %w", err)
		}
		switch pkt.Command {
		case cmdData:
			out = append(out, pkt.Payload...)
		default:
			break loop
		}
	}
	if _, err := c.command(cmdFreeData, nil); err != nil {
		c.log.WithError(err).Debug("zkclient: free-data after streamed read")
	}
	if uint32(len(out)) > size {
		out = out[:size]
	}
	return out, nil
}

// readSimple runs a plain command and unwraps whichever of the three small
// response shapes the device chose (immediate data, a short streamed
// announcement, or an ACK carrying its own payload).
func (c *Client) readSimple(cmd uint16) ([]byte, error) {
	pkt, err := c.command(cmd, nil)
	if err != nil {
		return nil, err
	}
	switch pkt.Command {
	case cmdData:
		return pkt.Payload, nil
	case cmdPrepareData:
		if len(pkt.Payload) >= 4 {
			size := binary.LittleEndian.Uint32(pkt.Payload[0:4])
			if size > 0 && size < maxBulkSize {
				return c.readStreamed(size)
			}
		}
		return nil, nil
	case cmdAckOK:
		return pkt.Payload, nil
	default:
		return nil, nil
	}
}
