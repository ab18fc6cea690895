package roster

import "strings"

// SplitFullName is the single name-parsing rule for every intake path
// (roster import, teacher import, verification, reservations).
// "Last, First" splits on the first comma; otherwise the first whitespace
// run separates the first name from the rest. A single token is a first
// name with no last name.
func SplitFullName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}

	if i := strings.IndexByte(full, ','); i >= 0 {
		last = strings.TrimSpace(full[:i])
		first = strings.TrimSpace(full[i+1:])
		return first, last
	}

	fields := strings.Fields(full)
	if len(fields) == 1 {
		return fields[0], ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
