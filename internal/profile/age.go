package profile

import "time"

type AgeDetails struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// BirthDate keeps the calendar date of t and drops its clock and location.
// Profiles store dates of birth this way so a save and load round trip
// returns an identical value.
func BirthDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CalculateAge returns the calendar difference between dob and now. Years is
// only incremented once the birthday has occurred in the current year.
func CalculateAge(dob, now time.Time) AgeDetails {
	dob = dob.In(now.Location())
	if now.Before(dob) {
		return AgeDetails{}
	}

	years := now.Year() - dob.Year()
	months := int(now.Month()) - int(dob.Month())
	days := now.Day() - dob.Day()

	if days < 0 {
		months--
		// days in the month preceding now's month
		days += time.Date(now.Year(), now.Month(), 0, 0, 0, 0, 0, now.Location()).Day()
	}
	if months < 0 {
		years--
		months += 12
	}

	return AgeDetails{Years: years, Months: months, Days: days}
}
