package zkclient

import (
	"fmt"

	"github.com/zkattend/zkattend/records"
)

// GetUsers fetches the full user table via the bulk-read state machine.
func (c *Client) GetUsers() ([]records.User, error) {
	blob, err := c.bulkRead(cmdUserTempRRQ, fctUser)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return records.ParseUsers(blob), nil
}

// GetAttendance fetches the attendance log, decoding each record and
// resolving user names against users. expectedRecords, typically the
// RecordCount hint from GetFreeSizes, drives the record-size fallback ladder
// in package records and this method's own retry ladder: CMD_ATTLOG_RRQ is
// tried as a plain command first, and only escalated to the bulk-read state
// machine (with fct=0 then fct=1) if that returns fewer than 4 bytes while
// the device claims to hold records (spec.md §4.3/§4.4).
func (c *Client) GetAttendance(expectedRecords uint32, users []records.User) ([]records.AttendanceRecord, error) {
	data, err := c.readSimple(cmdAttLogRRQ)
	if err != nil {
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	if len(data) < 4 && expectedRecords > 0 {
		data, err = c.bulkRead(cmdAttLogRRQ, 0)
		if err != nil {
			return nil, fmt.Errorf("get attendance: %w", err)
		}
	}
	if len(data) < 4 && expectedRecords > 0 {
		data, err = c.bulkRead(cmdAttLogRRQ, 1)
		if err != nil {
			return nil, fmt.Errorf("get attendance: %w", err)
		}
	}
	return records.ParseAttendance(data, expectedRecords, users), nil
}
