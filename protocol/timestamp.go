package protocol

import "time"

// EncodeTimestamp packs a local time.Time into the ZKTeco 32-bit timestamp
// format used by the device clock (CMD_GET_TIME replies) and by attendance
// records.
func EncodeTimestamp(t time.Time) uint32 {
	y := t.Year() % 100
	m := int(t.Month())
	d := t.Day()
	h, min, sec := t.Hour(), t.Minute(), t.Second()
	return uint32(((y*12*31+(m-1)*31+d-1)*24*60*60 + (h*60+min)*60 + sec))
}

// DecodeTimestamp decodes a ZKTeco packed timestamp by successive
// modulo/divide (§4.4), returning ok=false when the composed calendar date
// is invalid (e.g. an impossible Feb 30) instead of silently substituting
// the current time — see the REDESIGN FLAG in spec.md §9 and the decision
// recorded in DESIGN.md.
func DecodeTimestamp(t uint32) (result time.Time, ok bool) {
	second := int(t % 60)
	t /= 60
	minute := int(t % 60)
	t /= 60
	hour := int(t % 24)
	t /= 24
	day := int(t%31) + 1
	t /= 31
	month := int(t%12) + 1
	t /= 12
	year := int(t) + 2000

	candidate := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
	// time.Date normalizes out-of-range fields (e.g. Feb 30 -> Mar 2)
	// instead of erroring; detect that normalization and report invalid.
	if candidate.Year() != year || candidate.Month() != time.Month(month) || candidate.Day() != day {
		return time.Time{}, false
	}
	return candidate, true
}
