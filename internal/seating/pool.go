package seating

import (
	"cmp"
	"slices"

	"github.com/dimitarkovachev/seating/internal/guest"
)

// Seated maps every seat-unit currently at a table to that table's id. It is
// recomputed from the tables on each call.
func Seated(tables []Table) map[Key]string {
	seated := make(map[Key]string, Occupied(tables))
	for _, t := range tables {
		for _, o := range t.Occupants {
			seated[o.Key()] = t.ID
		}
	}
	return seated
}

// BuildPool returns the seat-units of every non-declined guest that are not
// yet placed at any table, sorted by guest id and companion index with the
// primary seat first. Neither argument is modified.
func BuildPool(guests []guest.Guest, tables []Table) []SeatUnit {
	seated := Seated(tables)

	pool := []SeatUnit{}
	for _, g := range guests {
		if g.Status == guest.StatusDeclined {
			continue
		}
		for _, s := range guest.Seats(g) {
			if _, ok := seated[Key{GuestID: g.ID, CompanionIndex: s.Index}]; ok {
				continue
			}
			pool = append(pool, unitOf(g, s))
		}
	}

	slices.SortFunc(pool, func(a, b SeatUnit) int {
		if c := cmp.Compare(a.GuestID, b.GuestID); c != 0 {
			return c
		}
		return cmp.Compare(a.CompanionIndex, b.CompanionIndex)
	})
	return pool
}

// Find returns the pool entry for k.
func Find(pool []SeatUnit, k Key) (SeatUnit, bool) {
	for _, u := range pool {
		if u.Key() == k {
			return u, true
		}
	}
	return SeatUnit{}, false
}

func unitOf(g guest.Guest, s guest.Seat) SeatUnit {
	return SeatUnit{
		GuestID:        g.ID,
		CompanionIndex: s.Index,
		Name:           s.Name,
		Status:         g.Status,
		Category:       s.Category,
		Placeholder:    s.Placeholder,
	}
}

// SeatOf returns g's seat-unit at companion index, whether or not it is
// seated. Declined parties have no seats.
func SeatOf(g guest.Guest, index int) (SeatUnit, bool) {
	if g.Status == guest.StatusDeclined {
		return SeatUnit{}, false
	}
	for _, s := range guest.Seats(g) {
		if s.Index == index {
			return unitOf(g, s), true
		}
	}
	return SeatUnit{}, false
}

// Refresh returns a copy of tables whose occupants carry the current name,
// status and category of their guest. Occupants whose guest or seat no
// longer exists are kept as stored.
func Refresh(tables []Table, guests []guest.Guest) []Table {
	byID := make(map[string]guest.Guest, len(guests))
	for _, g := range guests {
		byID[g.ID] = g
	}

	out := make([]Table, len(tables))
	for i, t := range tables {
		occupants := make([]SeatUnit, len(t.Occupants))
		for j, o := range t.Occupants {
			occupants[j] = o
			g, ok := byID[o.GuestID]
			if !ok {
				continue
			}
			if s, ok := SeatOf(g, o.CompanionIndex); ok {
				occupants[j] = s
			} else {
				occupants[j].Status = g.Status
			}
		}
		t.Occupants = occupants
		out[i] = t
	}
	return out
}
