package zkclient

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/zkattend/zkattend/protocol"
)

// GetTime reads the device's current clock via the packed-timestamp codec.
// A response the codec judges invalid (an impossible calendar date) is
// surfaced as an error rather than silently mapped to time.Now, matching
// the same redesign decision protocol.DecodeTimestamp records.
func (c *Client) GetTime() (time.Time, error) {
	pkt, err := c.command(cmdGetTime, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("get time: %w", err)
	}
	if pkt.Command != cmdAckOK || len(pkt.Payload) < 4 {
		return time.Time{}, fmt.Errorf("get time: %w: cmd=%d", ErrUnexpectedCommand, pkt.Command)
	}
	raw := binary.LittleEndian.Uint32(pkt.Payload[0:4])
	t, ok := protocol.DecodeTimestamp(raw)
	if !ok {
		return time.Time{}, fmt.Errorf("get time: device returned an invalid packed timestamp %d", raw)
	}
	return t, nil
}
