package roster

import "time"

// Matches holds the names to announce for one day.
type Matches struct {
	Birthdays     []string
	Anniversaries []string
}

func (m Matches) Empty() bool {
	return len(m.Birthdays) == 0 && len(m.Anniversaries) == 0
}

// MatchDay extracts the people whose birthday or hire-anniversary month/day
// equals today's. Year is ignored; people with nil dates never match.
func MatchDay(people []Person, today time.Time) Matches {
	var m Matches
	for _, p := range people {
		if sameMonthDay(p.Birthday, today) {
			m.Birthdays = append(m.Birthdays, p.Name)
		}
		if sameMonthDay(p.HireDate, today) {
			m.Anniversaries = append(m.Anniversaries, p.Name)
		}
	}
	return m
}

func sameMonthDay(d *time.Time, today time.Time) bool {
	if d == nil {
		return false
	}
	return d.Month() == today.Month() && d.Day() == today.Day()
}
