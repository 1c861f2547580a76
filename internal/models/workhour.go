package models

// MinimumRestHours is the STCW minimum daily rest.
const MinimumRestHours = 10

// RestHours derives the daily rest from recorded work hours.
func RestHours(workHours float64) float64 {
	return 24 - workHours
}

// IsRestViolation reports whether an entry breaches the minimum rest rule.
// The API's is_violation flag wins when present; otherwise the rule is
// evaluated from work_hours.
func IsRestViolation(entry Record) bool {
	if b, ok := entry.Get("is_violation").BoolValue(); ok {
		return b
	}
	work, ok := entry.Get("work_hours").Float()
	if !ok {
		return false
	}
	return RestHours(work) < MinimumRestHours
}

// CountViolations returns how many work-hour entries breach the rest rule.
func CountViolations(entries []Record) int {
	n := 0
	for _, e := range entries {
		if IsRestViolation(e) {
			n++
		}
	}
	return n
}
