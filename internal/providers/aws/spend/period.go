package spend

import "time"

const dateLayout = "2006-01-02"

// monthPeriod describes the current billing month as seen on a given day.
// All boundaries are UTC midnights; End values are exclusive, matching the
// Cost Explorer DateInterval convention.
type monthPeriod struct {
	Start     time.Time // first day of the month
	Tomorrow  time.Time // exclusive end of the month-to-date window
	NextMonth time.Time // first day of the following month
	Now       time.Time
}

func currentMonth(now time.Time) monthPeriod {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return monthPeriod{
		Start:     start,
		Tomorrow:  today.AddDate(0, 0, 1),
		NextMonth: start.AddDate(0, 1, 0),
		Now:       now,
	}
}

// StartDate is the month start as YYYY-MM-DD.
func (p monthPeriod) StartDate() string { return p.Start.Format(dateLayout) }

// EndDate is the exclusive end of the month-to-date window as YYYY-MM-DD.
func (p monthPeriod) EndDate() string { return p.Tomorrow.Format(dateLayout) }

// HasRemainingDays reports whether any full day after today is left in the
// month, i.e. whether a forecast window exists.
func (p monthPeriod) HasRemainingDays() bool {
	return p.Tomorrow.Before(p.NextMonth)
}
