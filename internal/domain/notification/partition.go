// internal/domain/notification/partition.go
package notification

import "fleet_backoffice/internal/domain/vehicle"

// LastDigit extracts the partition digit from a plate number. Only an ASCII
// digit in the final position counts.
func LastDigit(plate string) (Digit, bool) {
	if plate == "" {
		return 0, false
	}
	c := plate[len(plate)-1]
	if c < '0' || c > '9' {
		return 0, false
	}
	return Digit(c - '0'), true
}

// MatchesDigit is the partition predicate: "ABC-7" matches 7, "ABC-A" matches nothing.
func MatchesDigit(plate string, d Digit) bool {
	last, ok := LastDigit(plate)
	return ok && last == d
}

// FilterByDigit keeps the vehicles whose plate falls in partition d.
func FilterByDigit(vehicles []*vehicle.Vehicle, d Digit) []*vehicle.Vehicle {
	out := make([]*vehicle.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v != nil && MatchesDigit(v.PlateNumber, d) {
			out = append(out, v)
		}
	}
	return out
}
