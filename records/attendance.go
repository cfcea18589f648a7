package records

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/zkattend/zkattend/protocol"
)

// AttendanceRecord is one decoded punch event, normalized across the
// 8-byte, 16-byte and 40-byte dialects (spec.md §4.4).
type AttendanceRecord struct {
	UserID           uint32
	UserName         string
	Status           uint8
	Punch            uint8
	Timestamp        time.Time
	TimestampISO     string
	Date             string
	Time             string
	TimestampInvalid bool
}

// StatusName maps a raw status byte to its punch-type label.
func StatusName(status uint8) string {
	switch status {
	case 0:
		return "Check-In"
	case 1:
		return "Check-Out"
	case 2:
		return "Break-Out"
	case 3:
		return "Break-In"
	case 4:
		return "OT-In"
	case 5:
		return "OT-Out"
	default:
		return "Unknown"
	}
}

// ParseAttendance decodes an attendance-log blob. The first 4 bytes are the
// blob's own total_size header; expectedRecords (typically the device's own
// RecordCount hint) is used, together with total_size, to pick the
// record-size dialect when body length alone is ambiguous. users resolves
// each record's user id to a display name.
//
// A malformed trailing record is silently dropped rather than aborting the
// whole decode (spec.md §7): this function never panics regardless of its
// input.
func ParseAttendance(blob []byte, expectedRecords uint32, users []User) []AttendanceRecord {
	if len(blob) <= 4 {
		return nil
	}
	totalSize := binary.LittleEndian.Uint32(blob[0:4])
	body := blob[4:]
	size := detectAttendanceRecordSize(body, expectedRecords, totalSize)
	lookup := BuildUserLookup(users)

	var out []AttendanceRecord
	for offset := 0; offset+size <= len(body); offset += size {
		rec := body[offset : offset+size]
		switch size {
		case 8:
			out = append(out, parseAttendance8(rec, lookup))
		case 16:
			out = append(out, parseAttendance16(rec, lookup))
		default:
			out = append(out, parseAttendance40(rec, lookup))
		}
	}
	return out
}

func detectAttendanceRecordSize(body []byte, expectedRecords, totalSize uint32) int {
	if expectedRecords > 0 && totalSize > 0 {
		// Only accept a hinted size one of the record decoders can read
		// without running past the end of the record.
		if sz := int(totalSize / expectedRecords); sz == 8 || sz == 16 || sz >= 40 {
			return sz
		}
	}
	n := len(body)
	switch {
	case n > 0 && n%40 == 0:
		return 40
	case n > 0 && n%16 == 0:
		return 16
	case n > 0 && n%8 == 0:
		return 8
	default:
		return 16
	}
}

func parseAttendance8(rec []byte, lookup map[string]string) AttendanceRecord {
	uid := binary.LittleEndian.Uint16(rec[0:2])
	status := rec[2]
	ts := binary.LittleEndian.Uint32(rec[3:7])
	punch := rec[7]
	return buildRecord(uint32(uid), strconv.Itoa(int(uid)), status, punch, ts, lookup)
}

func parseAttendance16(rec []byte, lookup map[string]string) AttendanceRecord {
	userID := binary.LittleEndian.Uint32(rec[0:4])
	ts := binary.LittleEndian.Uint32(rec[4:8])
	status := rec[8]
	punch := rec[9]
	key := strconv.FormatUint(uint64(userID), 10)
	return buildRecord(userID, key, status, punch, ts, lookup)
}

func parseAttendance40(rec []byte, lookup map[string]string) AttendanceRecord {
	uid := binary.LittleEndian.Uint16(rec[0:2])
	userIDStr := trimField(rec[2:26])
	status := rec[26]
	ts := binary.LittleEndian.Uint32(rec[27:31])
	punch := rec[31]

	key := userIDStr
	finalUserID := uint32(uid)
	if key == "" {
		key = strconv.Itoa(int(uid))
	} else if n, err := strconv.ParseUint(userIDStr, 10, 32); err == nil {
		finalUserID = uint32(n)
	}
	return buildRecord(finalUserID, key, status, punch, ts, lookup)
}

func buildRecord(userID uint32, lookupKey string, status, punch uint8, ts uint32, lookup map[string]string) AttendanceRecord {
	t, valid := protocol.DecodeTimestamp(ts)
	name, found := lookup[lookupKey]
	if !found {
		name = fmt.Sprintf("ID: %s", lookupKey)
	}
	ar := AttendanceRecord{
		UserID:           userID,
		UserName:         name,
		Status:           status,
		Punch:            punch,
		TimestampInvalid: !valid,
	}
	if valid {
		ar.Timestamp = t
		ar.TimestampISO = t.Format(time.RFC3339)
		ar.Date = t.Format("2006-01-02")
		ar.Time = t.Format("15:04:05")
	}
	return ar
}

// EncodeAttendance8 serializes one record into the 8-byte dialect, the
// inverse of parseAttendance8 when ts is already a valid packed timestamp.
func EncodeAttendance8(uid uint16, status uint8, ts uint32, punch uint8) []byte {
	rec := make([]byte, 8)
	binary.LittleEndian.PutUint16(rec[0:2], uid)
	rec[2] = status
	binary.LittleEndian.PutUint32(rec[3:7], ts)
	rec[7] = punch
	return rec
}

// EncodeAttendance16 serializes one record into the 16-byte dialect.
func EncodeAttendance16(userID uint32, ts uint32, status, punch uint8) []byte {
	rec := make([]byte, 16)
	binary.LittleEndian.PutUint32(rec[0:4], userID)
	binary.LittleEndian.PutUint32(rec[4:8], ts)
	rec[8] = status
	rec[9] = punch
	return rec
}

// EncodeAttendance40 serializes one record into the 40-byte dialect.
func EncodeAttendance40(uid uint16, userID string, status uint8, ts uint32, punch uint8) []byte {
	rec := make([]byte, 40)
	binary.LittleEndian.PutUint16(rec[0:2], uid)
	copy(rec[2:26], userID)
	rec[26] = status
	binary.LittleEndian.PutUint32(rec[27:31], ts)
	rec[31] = punch
	return rec
}
