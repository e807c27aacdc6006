package attendance

import "time"

// DayRecord summarizes one calendar date of a user's ledger in the reporting
// timezone. WorkedDuration is set only when the date has both a first IN and
// a last OUT; intermediate punches on the same date do not contribute.
type DayRecord struct {
	Date           string
	FirstIn        *time.Time
	LastOut        *time.Time
	WorkedDuration *time.Duration
	Location       *string
}

// FoldDayRecords reduces an ascending event sequence into per-date records:
// the first IN of a date fixes firstIn and location, the last OUT fixes
// lastOut. Dates without events produce no record, so the fold is idempotent
// for a fixed snapshot.
func FoldDayRecords(events []PunchEvent, loc *time.Location) []DayRecord {
	if loc == nil {
		loc = time.UTC
	}

	byDate := make(map[string]*DayRecord)
	order := make([]string, 0)

	for i := range events {
		e := events[i]
		local := e.PunchedAt.In(loc)
		date := local.Format("2006-01-02")

		rec, ok := byDate[date]
		if !ok {
			rec = &DayRecord{Date: date}
			byDate[date] = rec
			order = append(order, date)
		}

		switch e.PunchType {
		case PunchIn:
			if rec.FirstIn == nil {
				t := local
				rec.FirstIn = &t
				rec.Location = e.LocationName
			}
		case PunchOut:
			t := local
			rec.LastOut = &t
		}
	}

	records := make([]DayRecord, 0, len(order))
	for _, date := range order {
		rec := byDate[date]
		if rec.FirstIn != nil && rec.LastOut != nil {
			d := rec.LastOut.Sub(*rec.FirstIn)
			if d >= 0 {
				rec.WorkedDuration = &d
			}
		}
		records = append(records, *rec)
	}
	return records
}
