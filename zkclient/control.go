package zkclient

import "fmt"

// Device control commands, adapted from the teacher's control.go onto this
// package's Client/command plumbing. Fetch holds the device disabled for the
// duration of its bulk reads and re-enables it before disconnecting
// (spec.md §4.7).

func (c *Client) simpleCommand(what string, cmd uint16, payload []byte) error {
	pkt, err := c.command(cmd, payload)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if pkt.Command != cmdAckOK {
		return fmt.Errorf("%s: %w: cmd=%d", what, ErrUnexpectedCommand, pkt.Command)
	}
	return nil
}

// EnableDevice re-enables the device's normal operation after DisableDevice.
func (c *Client) EnableDevice() error { return c.simpleCommand("enable device", cmdEnableDevice, nil) }

// DisableDevice puts the device into a maintenance state where it ignores
// fingerprint/card input, held for the duration of a bulk fetch.
func (c *Client) DisableDevice() error {
	return c.simpleCommand("disable device", cmdDisableDevice, nil)
}
