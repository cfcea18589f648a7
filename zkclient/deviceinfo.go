package zkclient

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// DeviceInfo is the identity summary surfaced by the facade's Fetch/Scan
// operations (spec.md §3).
type DeviceInfo struct {
	DeviceName      string
	FirmwareVersion string
	SerialNumber    string
	Platform        string
	MACAddress      string
}

// SizeHints reports the device's own counts of enrolled users, fingers, and
// attendance records, used as hints by callers sizing a fetch — never as an
// authoritative record count (spec.md §4.5).
type SizeHints struct {
	UserCount   uint32
	FingerCount uint32
	RecordCount uint32
}

// GetOption issues CMD_OPTIONS_RRQ for name and extracts the value half of
// the device's "name=value\0" reply. A non-ACK or empty response is not an
// error: it just means the device doesn't support that option, so the
// firmware/serial fallback ladders can try the next candidate without
// short-circuiting on the first miss.
func (c *Client) GetOption(name string) (string, error) {
	payload := append([]byte(name), 0x00)
	pkt, err := c.command(cmdOptionsRRQ, payload)
	if err != nil {
		return "", fmt.Errorf("get option %q: %w", name, err)
	}
	if pkt.Command != cmdAckOK || len(pkt.Payload) == 0 {
		return "", nil
	}
	text := strings.TrimRight(string(pkt.Payload), "\x00")
	if idx := strings.IndexByte(text, '='); idx >= 0 {
		return text[idx+1:], nil
	}
	return text, nil
}

// Firmware returns the device's firmware version, trying CMD_VERSION first
// and falling back to a ladder of option names older firmwares use instead
// (spec.md §4.5).
func (c *Client) Firmware() (string, error) {
	pkt, err := c.command(cmdVersion, nil)
	if err != nil {
		return "", fmt.Errorf("firmware: %w", err)
	}
	if pkt.Command == cmdAckOK {
		if v := strings.TrimRight(string(pkt.Payload), "\x00"); v != "" {
			return v, nil
		}
	}
	for _, opt := range []string{"~ZKFPVersion", "FWVersion", "~FWVersion", "ZKFPVersion"} {
		v, err := c.GetOption(opt)
		if err != nil {
			return "", fmt.Errorf("firmware: %w", err)
		}
		if v != "" {
			return v, nil
		}
	}
	return "", nil
}

// SerialNumber returns the device's serial number, trying CMD_SERIALNUMBER
// first and falling back to an option-name ladder (spec.md §4.5).
func (c *Client) SerialNumber() (string, error) {
	pkt, err := c.command(cmdSerialNumber, nil)
	if err != nil {
		return "", fmt.Errorf("serial number: %w", err)
	}
	if pkt.Command == cmdAckOK {
		if v := strings.TrimRight(string(pkt.Payload), "\x00"); v != "" {
			return v, nil
		}
	}
	for _, opt := range []string{"~SerialNumber", "SerialNumber", "SN"} {
		v, err := c.GetOption(opt)
		if err != nil {
			return "", fmt.Errorf("serial number: %w", err)
		}
		if v != "" {
			return v, nil
		}
	}
	return "", nil
}

// DeviceInfo gathers the identity fields the facade surfaces on every
// fetch/scan hit.
func (c *Client) DeviceInfo() (DeviceInfo, error) {
	name, err := c.GetOption("~DeviceName")
	if err != nil {
		return DeviceInfo{}, err
	}
	fw, err := c.Firmware()
	if err != nil {
		return DeviceInfo{}, err
	}
	serial, err := c.SerialNumber()
	if err != nil {
		return DeviceInfo{}, err
	}
	platform, err := c.GetOption("~Platform")
	if err != nil {
		return DeviceInfo{}, err
	}
	mac, err := c.GetOption("MAC")
	if err != nil {
		return DeviceInfo{}, err
	}
	return DeviceInfo{
		DeviceName:      name,
		FirmwareVersion: fw,
		SerialNumber:    serial,
		Platform:        platform,
		MACAddress:      mac,
	}, nil
}

// GetFreeSizes issues CMD_GET_FREE_SIZES and decodes the user/finger/record
// count hints at payload bytes [16:20], [24:28] and [32:36] (spec.md §4.5).
// A short or ACK-only response yields a zero-valued SizeHints rather than an
// error, since these are advisory counts, not something a fetch depends on.
func (c *Client) GetFreeSizes() (SizeHints, error) {
	pkt, err := c.command(cmdGetFreeSizes, nil)
	if err != nil {
		return SizeHints{}, fmt.Errorf("get free sizes: %w", err)
	}
	data := pkt.Payload
	if len(data) < 80 {
		return SizeHints{}, nil
	}
	return SizeHints{
		UserCount:   binary.LittleEndian.Uint32(data[16:20]),
		FingerCount: binary.LittleEndian.Uint32(data[24:28]),
		RecordCount: binary.LittleEndian.Uint32(data[32:36]),
	}, nil
}
