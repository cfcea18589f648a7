package records

import "strconv"

// BuildUserLookup indexes users by every key an attendance record might use
// to reference them: the numeric uid, the raw user-id string, the leading
// numeric run of the user-id (for strings that start with digits but carry
// trailing padding or suffixes), and the parsed-integer value of the user-id
// (so a zero-padded directory id like "007" also resolves against a record
// carrying the numeric user_id 7). Attendance dialects disagree on which of
// these a given device populates, so ParseAttendance tries all of them.
func BuildUserLookup(users []User) map[string]string {
	lookup := make(map[string]string, len(users)*2)
	for _, u := range users {
		lookup[strconv.Itoa(int(u.UID))] = u.Name
		if u.UserID != "" {
			lookup[u.UserID] = u.Name
		}
		if digits := leadingDigits(u.UserID); digits != "" && digits != u.UserID {
			lookup[digits] = u.Name
		}
		if n, err := strconv.Atoi(u.UserID); err == nil {
			lookup[strconv.Itoa(n)] = u.Name
		}
	}
	return lookup
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
