// Package stats folds a guest list into the attendance totals shown on the
// organizer dashboard.
package stats

import (
	"github.com/dimitarkovachev/seating/internal/guest"
)

// Breakdown is one category's totals. Allotted always equals
// Yes + No + Pending.
type Breakdown struct {
	Allotted int `json:"allotted"`
	Yes      int `json:"si"`
	No       int `json:"no"`
	Pending  int `json:"pend"`
}

func (b *Breakdown) add(o Breakdown) {
	b.Allotted += o.Allotted
	b.Yes += o.Yes
	b.No += o.No
	b.Pending += o.Pending
}

// Stats is the dashboard summary. The headline numbers are sums of
// ByCategory so the two can never disagree.
type Stats struct {
	Total      int                          `json:"total"`
	Yes        int                          `json:"si"`
	No         int                          `json:"no"`
	Pending    int                          `json:"pend"`
	ByCategory map[guest.Category]Breakdown `json:"by_category"`
	Parties    map[guest.Status]int         `json:"parties"`
	Seated     int                          `json:"seated"`
}

// Aggregate computes Stats for guests. It does not modify its input.
func Aggregate(guests []guest.Guest) Stats {
	s := Stats{
		ByCategory: make(map[guest.Category]Breakdown, len(guest.Categories)),
		Parties:    make(map[guest.Status]int, 3),
	}
	for _, cat := range guest.Categories {
		s.ByCategory[cat] = Breakdown{}
	}

	for _, g := range guests {
		status := g.Status
		if !status.Valid() {
			status = guest.StatusPending
		}
		s.Parties[status]++

		effective := guest.EffectiveConfirmed(g)
		for _, cat := range guest.Categories {
			b := s.ByCategory[cat]
			b.add(contribution(status, max(g.Allotment.Get(cat), 0), effective.Get(cat)))
			s.ByCategory[cat] = b
		}
	}

	for _, cat := range guest.Categories {
		b := s.ByCategory[cat]
		s.Total += b.Allotted
		s.Yes += b.Yes
		s.No += b.No
		s.Pending += b.Pending
	}
	return s
}

// AggregateWithTables is Aggregate plus the number of people currently
// placed at tables.
func AggregateWithTables(guests []guest.Guest, occupants int) Stats {
	s := Aggregate(guests)
	s.Seated = occupants
	return s
}

func contribution(status guest.Status, allotted, confirmed int) Breakdown {
	b := Breakdown{Allotted: allotted}
	switch status {
	case guest.StatusConfirmed:
		confirmed = min(max(confirmed, 0), allotted)
		b.Yes = confirmed
		b.No = allotted - confirmed
	case guest.StatusDeclined:
		b.No = allotted
	default:
		b.Pending = allotted
	}
	return b
}
