// Package zkattend is the top-level facade over package zkclient: Fetch
// pulls one device's users and attendance log in a single call, and Scan
// discovers devices on the local network. Most callers only need this
// package; zkclient, records, protocol and scanner are exported for callers
// that need finer control (e.g. a standalone network probe, or reading the
// user directory alone).
//
// Usage:
//
//	resp, err := zkattend.Fetch(context.Background(), "192.168.1.201", 4370,
//		zkattend.WithPassword(0),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(resp.Device.DeviceName, len(resp.Attendance), "records")
package zkattend

import (
	"context"
	"fmt"
	"time"

	"github.com/zkattend/zkattend/records"
	"github.com/zkattend/zkattend/scanner"
	"github.com/zkattend/zkattend/zkclient"
)

// AttendanceResponse is the result of one Fetch call.
type AttendanceResponse struct {
	Device     zkclient.DeviceInfo
	Users      []records.User
	Attendance []records.AttendanceRecord
	FetchedAt  time.Time
}

// DeviceSummary is one host Scan found on the network.
type DeviceSummary = scanner.DeviceSummary

// Option configures a Fetch call; it wraps zkclient.Option so callers never
// need to import that package for common cases.
type Option = zkclient.Option

// WithPassword sets the device's CMD_AUTH password.
func WithPassword(password uint32) Option { return zkclient.WithPassword(password) }

// WithConnectTimeout overrides the dial timeout.
func WithConnectTimeout(d time.Duration) Option { return zkclient.WithConnectTimeout(d) }

// WithReadWriteTimeout overrides the per-command read/write deadline.
func WithReadWriteTimeout(d time.Duration) Option { return zkclient.WithReadWriteTimeout(d) }

// Fetch connects to one device, pulls its user table and attendance log,
// and disconnects, regardless of whether the fetch itself succeeded.
func Fetch(ctx context.Context, host string, port int, opts ...Option) (AttendanceResponse, error) {
	c := zkclient.New(host, port, opts...)
	if err := c.Connect(ctx); err != nil {
		return AttendanceResponse{}, fmt.Errorf("fetch %s:%d: %w", host, port, err)
	}
	defer func() { _ = c.Disconnect() }()

	info, err := c.DeviceInfo()
	if err != nil {
		return AttendanceResponse{}, fmt.Errorf("fetch %s:%d: %w", host, port, err)
	}

	if err := c.DisableDevice(); err != nil {
		return AttendanceResponse{}, fmt.Errorf("fetch %s:%d: %w", host, port, err)
	}
	defer func() { _ = c.EnableDevice() }()

	hints, err := c.GetFreeSizes()
	if err != nil {
		return AttendanceResponse{}, fmt.Errorf("fetch %s:%d: %w", host, port, err)
	}

	users, err := c.GetUsers()
	if err != nil {
		return AttendanceResponse{}, fmt.Errorf("fetch %s:%d: %w", host, port, err)
	}

	attendance, err := c.GetAttendance(hints.RecordCount, users)
	if err != nil {
		return AttendanceResponse{}, fmt.Errorf("fetch %s:%d: %w", host, port, err)
	}

	return AttendanceResponse{
		Device:     info,
		Users:      users,
		Attendance: attendance,
		FetchedAt:  time.Now(),
	}, nil
}

// Scan discovers ZKTeco devices on the local network.
func Scan(ctx context.Context) ([]DeviceSummary, error) {
	return scanner.Scan(ctx)
}

// Users connects to one device and returns its enrolled-user directory
// without touching the attendance log. Unlike Fetch it does not disable the
// device first: reading the user table alone does not race with concurrent
// attendance writes the way a full bulk read does.
func Users(ctx context.Context, host string, port int, opts ...Option) ([]records.User, error) {
	c := zkclient.New(host, port, opts...)
	if err := c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("users %s:%d: %w", host, port, err)
	}
	defer func() { _ = c.Disconnect() }()

	users, err := c.GetUsers()
	if err != nil {
		return nil, fmt.Errorf("users %s:%d: %w", host, port, err)
	}
	return users, nil
}
