package zkclient

import "errors"

// Sentinel errors, wrapped with context via fmt.Errorf("...: %w", ...) at
// each call site (spec.md §7's error taxonomy).
var (
	// ErrAuthRejected is returned when the device answers CMD_AUTH with
	// anything other than CMD_ACK_OK — wrong password.
	ErrAuthRejected = errors.New("zkclient: authentication rejected")

	// ErrUnexpectedCommand is returned when a response carries a command
	// code the caller's state machine has no handling for.
	ErrUnexpectedCommand = errors.New("zkclient: unexpected response command")

	// ErrMissingSize is returned when a CMD_PREPARE_DATA response is too
	// short to carry its own declared size field.
	ErrMissingSize = errors.New("zkclient: prepare-data response missing size field")

	// ErrResourceTooLarge is returned when a device announces a bulk
	// transfer size judged too large to be a legitimate attendance or user
	// table, guarding against a corrupt or hostile device wedging the
	// client into an unbounded allocation.
	ErrResourceTooLarge = errors.New("zkclient: announced transfer size exceeds limit")

	// ErrNotConnected is returned by any command issued before Connect.
	ErrNotConnected = errors.New("zkclient: not connected")
)
