package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeTimestampZero(t *testing.T) {
	got, ok := DecodeTimestamp(0)
	require.True(t, ok)
	require.Equal(t, 2000, got.Year())
	require.Equal(t, time.January, got.Month())
	require.Equal(t, 1, got.Day())
	require.Equal(t, 0, got.Hour())
	require.Equal(t, 0, got.Minute())
	require.Equal(t, 0, got.Second())
}

func TestDecodeTimestampOneMonthOn(t *testing.T) {
	got, ok := DecodeTimestamp(2_678_400)
	require.True(t, ok)
	require.Equal(t, 2000, got.Year())
	require.Equal(t, time.February, got.Month())
	require.Equal(t, 1, got.Day())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for year := 2000; year <= 2099; year += 7 {
		for _, mo := range []time.Month{time.January, time.June, time.December} {
			want := time.Date(year, mo, 15, 13, 45, 30, 0, time.Local)
			encoded := EncodeTimestamp(want)
			got, ok := DecodeTimestamp(encoded)
			require.True(t, ok)
			require.True(t, want.Equal(got), "year=%d month=%s", year, mo)
		}
	}
}

func TestDecodeTimestampInvalidDateIsFlagged(t *testing.T) {
	// day field encodes 31 for every month in the packed format, so month
	// 2 (February) with day 31 decodes to an impossible calendar date.
	packed := uint32(((0*12*31 + 1*31 + 30) * 24 * 60 * 60))
	_, ok := DecodeTimestamp(packed)
	require.False(t, ok)
}
