package suspension

import (
	"errors"
	"fmt"
	"strings"
)

// Unit is a duration unit an admin can pick when suspending an account.
type Unit string

const (
	UnitMinutes Unit = "minutes"
	UnitHours   Unit = "hours"
	UnitDays    Unit = "days"
	UnitWeeks   Unit = "weeks"
	UnitMonths  Unit = "months"
	UnitYears   Unit = "years"
)

// Minutes per unit. Months are 30 days and years 365 days; there is no calendar awareness.
const (
	MinutesPerHour  = 60
	MinutesPerDay   = 1440
	MinutesPerWeek  = 10080
	MinutesPerMonth = 43200
	MinutesPerYear  = 525600
)

// MaxMinutes is the longest suspension accepted, one hundred years. It fits both a
// time.Duration and a 32-bit INTEGER column.
const MaxMinutes = 100 * MinutesPerYear

var (
	// ErrUnknownUnit is returned for units outside the conversion table.
	ErrUnknownUnit = errors.New("unknown duration unit")
	// ErrDurationTooLong is returned for durations above MaxMinutes.
	ErrDurationTooLong = errors.New("suspension duration too long")
)

var unitMinutes = map[Unit]int{
	UnitMinutes: 1,
	UnitHours:   MinutesPerHour,
	UnitDays:    MinutesPerDay,
	UnitWeeks:   MinutesPerWeek,
	UnitMonths:  MinutesPerMonth,
	UnitYears:   MinutesPerYear,
}

// descending order used by Decompose and Describe.
var unitOrder = []Unit{UnitYears, UnitMonths, UnitWeeks, UnitDays, UnitHours, UnitMinutes}

var singular = map[Unit]string{
	UnitMinutes: "minute",
	UnitHours:   "hour",
	UnitDays:    "day",
	UnitWeeks:   "week",
	UnitMonths:  "month",
	UnitYears:   "year",
}

// ParseUnit accepts plural or singular unit names in any case.
func ParseUnit(raw string) (Unit, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := unitMinutes[Unit(name)]; ok {
		return Unit(name), nil
	}
	if _, ok := unitMinutes[Unit(name+"s")]; ok {
		return Unit(name + "s"), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, raw)
}

// ClampQuantity raises quantities below one to one.
func ClampQuantity(quantity int) int {
	if quantity < 1 {
		return 1
	}
	return quantity
}

// CheckMinutes clamps minutes to at least one and rejects counts above MaxMinutes.
func CheckMinutes(minutes int) (int, error) {
	minutes = ClampQuantity(minutes)
	if minutes > MaxMinutes {
		return 0, fmt.Errorf("%w: %d minutes exceeds %s", ErrDurationTooLong, minutes, Describe(MaxMinutes))
	}
	return minutes, nil
}

// Encode converts a quantity of unit into a canonical minute count.
func Encode(quantity int, unit Unit) (int, error) {
	per, ok := unitMinutes[unit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	quantity = ClampQuantity(quantity)
	// compared before multiplying so huge quantities cannot wrap
	if quantity > MaxMinutes/per {
		return 0, fmt.Errorf("%w: %d %s exceeds %s", ErrDurationTooLong, quantity, unit, Describe(MaxMinutes))
	}
	return quantity * per, nil
}

// Part is one component of a decomposed duration.
type Part struct {
	Quantity int
	Unit     Unit
}

// Minutes returns the part expressed in minutes.
func (p Part) Minutes() int {
	return p.Quantity * unitMinutes[p.Unit]
}

func (p Part) String() string {
	if p.Quantity == 1 {
		return "1 " + singular[p.Unit]
	}
	return fmt.Sprintf("%d %s", p.Quantity, p.Unit)
}

// Decompose greedily splits minutes over every unit. The parts always sum to the input.
func Decompose(minutes int) []Part {
	if minutes <= 0 {
		return []Part{{Quantity: 0, Unit: UnitMinutes}}
	}
	parts := make([]Part, 0, len(unitOrder))
	rest := minutes
	for _, unit := range unitOrder {
		per := unitMinutes[unit]
		if q := rest / per; q > 0 {
			parts = append(parts, Part{Quantity: q, Unit: unit})
			rest -= q * per
		}
	}
	return parts
}

// Describe renders minutes as the largest applicable unit plus the remainder in the
// next smaller unit, e.g. 90 -> "1 hour and 30 minutes". Exact multiples omit the remainder.
func Describe(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	var major, minor Unit
	switch {
	case minutes < MinutesPerHour:
		return Part{Quantity: minutes, Unit: UnitMinutes}.String()
	case minutes < MinutesPerDay:
		major, minor = UnitHours, UnitMinutes
	case minutes < MinutesPerWeek:
		major, minor = UnitDays, UnitHours
	case minutes < MinutesPerMonth:
		major, minor = UnitWeeks, UnitDays
	case minutes < MinutesPerYear:
		major, minor = UnitMonths, UnitWeeks
	default:
		major, minor = UnitYears, UnitMonths
	}

	head := Part{Quantity: minutes / unitMinutes[major], Unit: major}
	tail := Part{Quantity: (minutes % unitMinutes[major]) / unitMinutes[minor], Unit: minor}
	if tail.Quantity == 0 {
		return head.String()
	}
	return head.String() + " and " + tail.String()
}

// FormatParts joins decomposed parts as "1 day, 2 hours and 5 minutes".
func FormatParts(parts []Part) string {
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, p.String())
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
