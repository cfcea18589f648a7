package records

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zkattend/zkattend/protocol"
)

func TestParseAttendance16DialectUnknownUser(t *testing.T) {
	// mirrors spec.md §8 scenario 6: a 16-byte record for user_id=101 with
	// no matching user, ts=0 resolves to 2000-01-01.
	rec := EncodeAttendance16(101, 0, 0, 0)
	blob := withTotalSize(rec)

	got := ParseAttendance(blob, 1, nil)
	require.Len(t, got, 1)
	require.Equal(t, uint32(101), got[0].UserID)
	require.Equal(t, "ID: 101", got[0].UserName)
	require.Equal(t, "Check-In", StatusName(got[0].Status))
	require.False(t, got[0].TimestampInvalid)
	require.Equal(t, "2000-01-01", got[0].Date)
}

func TestParseAttendance8DialectResolvesName(t *testing.T) {
	users := []User{{UID: 5, UserID: "5", Name: "Jon Snow"}}
	rec := EncodeAttendance8(5, 1, 0, 1)
	blob := withTotalSize(rec)

	got := ParseAttendance(blob, 1, users)
	require.Len(t, got, 1)
	require.Equal(t, "Jon Snow", got[0].UserName)
	require.Equal(t, "Check-Out", StatusName(got[0].Status))
}

func TestParseAttendance40DialectNumericUserID(t *testing.T) {
	users := []User{{UID: 1, UserID: "2001", Name: "Tess"}}
	rec := EncodeAttendance40(1, "2001", 3, 0, 0)
	blob := withTotalSize(rec)

	got := ParseAttendance(blob, 1, users)
	require.Len(t, got, 1)
	require.Equal(t, uint32(2001), got[0].UserID)
	require.Equal(t, "Tess", got[0].UserName)
	require.Equal(t, "Break-In", StatusName(got[0].Status))
}

func TestParseAttendanceInvalidTimestampIsFlagged(t *testing.T) {
	badTS := uint32(((0*12*31 + 1*31 + 30) * 24 * 60 * 60))
	_, ok := protocol.DecodeTimestamp(badTS)
	require.False(t, ok)

	rec := EncodeAttendance16(1, badTS, 0, 0)
	blob := withTotalSize(rec)

	got := ParseAttendance(blob, 1, nil)
	require.Len(t, got, 1)
	require.True(t, got[0].TimestampInvalid)
	require.True(t, got[0].Timestamp.IsZero())
}

func TestParseAttendanceTruncatedTailIsDroppedNotPanicked(t *testing.T) {
	rec := EncodeAttendance16(1, 0, 0, 0)
	blob := withTotalSize(rec)
	blob = append(blob, 0x01, 0x02, 0x03) // a short, undecodable trailing fragment

	require.NotPanics(t, func() {
		got := ParseAttendance(blob, 1, nil)
		require.Len(t, got, 1)
	})
}

func TestParseAttendanceEmptyBlob(t *testing.T) {
	require.Nil(t, ParseAttendance(nil, 0, nil))
	require.Nil(t, ParseAttendance([]byte{0, 0, 0, 0}, 0, nil))
}
