package holiday

import "time"

type Holiday struct {
	ID        string
	Date      time.Time
	Name      string
	CreatedAt time.Time
}

func (h Holiday) DateString() string {
	return h.Date.Format("2006-01-02")
}

// Index maps "YYYY-MM-DD" to the holiday on that date.
func Index(holidays []Holiday) map[string]Holiday {
	idx := make(map[string]Holiday, len(holidays))
	for _, h := range holidays {
		idx[h.DateString()] = h
	}
	return idx
}
