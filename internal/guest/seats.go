package guest

import "fmt"

// PrimaryIndex is the companion index of the party's own seat.
const PrimaryIndex = -1

// Seat is one flattened seat of a party. Index is PrimaryIndex for the
// primary guest; companions are numbered continuously across categories so
// a count change in one category never renumbers another.
type Seat struct {
	Index       int
	Category    Category
	Name        string
	Placeholder bool
}

// Seats flattens g into its primary seat followed by one seat per companion,
// in category priority order. Companions without a name get a placeholder
// such as "Kids 2 - Ana". A party with no seats left still reports the
// primary under the main category of its allotment.
func Seats(g Guest) []Seat {
	counts := SeatCounts(g)
	main, hasMain := MainCategory(counts)
	primary := main
	if !hasMain {
		primary, _ = MainCategory(g.Allotment)
	}

	seats := make([]Seat, 0, counts.Total()+1)
	seats = append(seats, Seat{Index: PrimaryIndex, Category: primary, Name: g.Name})

	flat := 0
	for _, cat := range Categories {
		n := counts.Get(cat)
		if hasMain && cat == main {
			n--
		}
		named := withoutPrimary(g.Companions.Get(cat), g.Name)
		for i := 0; i < n; i++ {
			s := Seat{Index: flat, Category: cat}
			if i < len(named) && named[i] != "" {
				s.Name = named[i]
			} else {
				s.Name = fmt.Sprintf("%s %d - %s", cat.Label(), i+1, g.Name)
				s.Placeholder = true
			}
			seats = append(seats, s)
			flat++
		}
	}
	return seats
}

func withoutPrimary(names []string, primary string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if SameName(name, primary) {
			continue
		}
		out = append(out, name)
	}
	return out
}
