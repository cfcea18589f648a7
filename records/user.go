// Package records decodes the raw blobs the bulk-read state machine
// retrieves into user and attendance records, auto-detecting which of the
// device's record-size dialects produced them (spec.md §4.4).
package records

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// User is one enrolled-user record, normalized across the 28-byte and
// 72-byte dialects.
type User struct {
	UID    uint16
	UserID string
	Name   string
}

// ParseUsers decodes a user-table blob. The first 4 bytes are the table's
// own total_size header; the remainder is an array of fixed-size records
// whose width is auto-detected from how evenly it divides the body.
func ParseUsers(blob []byte) []User {
	if len(blob) <= 4 {
		return nil
	}
	body := blob[4:]
	size := detectUserRecordSize(body)

	var out []User
	for offset := 0; offset+size <= len(body); offset += size {
		rec := body[offset : offset+size]
		if size >= 72 {
			out = append(out, parseUser72(rec))
		} else {
			out = append(out, parseUser28(rec))
		}
	}
	return out
}

func detectUserRecordSize(body []byte) int {
	n := len(body)
	if n > 0 && n%72 == 0 {
		return 72
	}
	if n > 0 && n%28 == 0 {
		return 28
	}
	return 28
}

// parseUser28 decodes the 28-byte dialect: uid at [0:2], name in a wide
// 24-byte window at [2:26] (observed in practice to be wider than the
// nominal privilege/password/name split), with any remaining byte ignored.
func parseUser28(rec []byte) User {
	uid := binary.LittleEndian.Uint16(rec[0:2])
	name := trimField(rec[2:26])
	if name == "" {
		name = fmt.Sprintf("User-%d", uid)
	}
	return User{UID: uid, UserID: strconv.Itoa(int(uid)), Name: name}
}

// parseUser72 decodes the 72-byte dialect: uid[0:2], privilege[2],
// password[3:11], name[11:35], card[35:39], group[40:47], user id[48:72].
func parseUser72(rec []byte) User {
	uid := binary.LittleEndian.Uint16(rec[0:2])
	name := trimField(rec[11:35])
	if name == "" {
		name = fmt.Sprintf("User-%d", uid)
	}
	userID := trimField(rec[48:72])
	if userID == "" {
		userID = strconv.Itoa(int(uid))
	}
	return User{UID: uid, UserID: userID, Name: name}
}

// trimField strips trailing NUL padding and surrounding whitespace from a
// fixed-width string field.
func trimField(b []byte) string {
	return strings.TrimSpace(strings.TrimRight(string(b), "\x00"))
}

// EncodeUser28 serializes u into the 28-byte dialect, the inverse of
// parseUser28 for the fields that round-trip (uid and name; the 28-byte
// dialect has no separate user-id field, so UserID is not re-derivable
// unless it equals the uid as text).
func EncodeUser28(u User) []byte {
	rec := make([]byte, 28)
	binary.LittleEndian.PutUint16(rec[0:2], u.UID)
	copy(rec[2:26], u.Name)
	return rec
}

// EncodeUser72 serializes u into the 72-byte dialect, the inverse of
// parseUser72.
func EncodeUser72(u User) []byte {
	rec := make([]byte, 72)
	binary.LittleEndian.PutUint16(rec[0:2], u.UID)
	copy(rec[11:35], u.Name)
	copy(rec[48:72], u.UserID)
	return rec
}
