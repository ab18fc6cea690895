package roster

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeHomeroom maps the loose homeroom spellings seen on rosters
// ("18", "18.0", " 018 ") onto the 3-digit zero-padded form. Non-numeric
// rooms ("GYM") and rooms already 3+ digits pass through unchanged.
func NormalizeHomeroom(room string) string {
	room = strings.TrimSpace(room)
	if room == "" {
		return ""
	}

	room = strings.TrimSuffix(room, ".0")

	if len(room) <= 2 && isASCIIDigits(room) {
		return strings.Repeat("0", 3-len(room)) + room
	}
	return room
}

// NormalizeGrade collapses numeric spellings of the same grade ("12",
// "12.0", " 12 ") onto one key. Values that don't parse as numbers keep
// their trimmed literal form so labels like "K" or "JK" still group.
func NormalizeGrade(grade string) string {
	grade = strings.TrimSpace(grade)
	if grade == "" {
		return ""
	}

	f, err := strconv.ParseFloat(grade, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return grade
	}
	return strconv.Itoa(int(f))
}

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
