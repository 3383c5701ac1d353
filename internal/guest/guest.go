// Package guest holds the party record and the rules that keep its
// allotment, confirmed counts and companion names consistent.
package guest

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDeclined  Status = "declined"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDeclined:
		return true
	}
	return false
}

// Guest is one invited party. Name is the primary guest; everybody else in
// the allotment is a companion.
type Guest struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      Status     `json:"status"`
	Allotment   Counts     `json:"allotment"`
	Confirmed   Counts     `json:"confirmed"`
	Companions  Names      `json:"companions"`
	Retained    Names      `json:"retained,omitempty"`
	Sent        bool       `json:"sent"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// New returns a pending party with allotment-sized name slots.
func New(id, name string, allotment Counts) Guest {
	return Normalize(Guest{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Status:    StatusPending,
		Allotment: allotment,
	})
}

// Normalize fills missing categories, clamps every count into range and
// resizes the companion slots to match the record's status. It never fails.
func Normalize(g Guest) Guest {
	g = normalizeCounts(g)
	g.Companions = enforceSlots(g.Companions, SeatCounts(g), g.Name)
	if g.Retained != nil {
		g.Retained = g.Retained.Clone()
	}
	return g
}

func normalizeCounts(g Guest) Guest {
	if !g.Status.Valid() {
		g.Status = StatusPending
	}

	allot := make(Counts, len(Categories))
	confirmed := make(Counts, len(Categories))
	for _, cat := range Categories {
		allot[cat] = max(g.Allotment.Get(cat), 0)
		confirmed[cat] = clamp(g.Confirmed.Get(cat), 0, allot[cat])
	}
	g.Allotment = allot
	g.Confirmed = confirmed

	switch g.Status {
	case StatusConfirmed:
		if g.Confirmed.Total() == 0 && g.Allotment.Total() > 0 {
			g.Confirmed = g.Allotment.Clone()
		}
	case StatusDeclined:
		g.Confirmed = Counts{}.Clone()
	}
	return g
}

// EffectiveConfirmed is the confirmed count used for totals: a confirmed
// party that never narrowed its counts is treated as attending in full.
func EffectiveConfirmed(g Guest) Counts {
	out := make(Counts, len(Categories))
	for _, cat := range Categories {
		out[cat] = clamp(g.Confirmed.Get(cat), 0, g.Allotment.Get(cat))
	}
	if g.Status == StatusConfirmed && out.Total() == 0 {
		return g.Allotment.Clone()
	}
	return out
}

// SeatCounts returns the per-category seat counts the record currently
// occupies: confirmed counts once confirmed, the allotment while pending,
// nothing once declined.
func SeatCounts(g Guest) Counts {
	switch g.Status {
	case StatusConfirmed:
		return EffectiveConfirmed(g)
	case StatusDeclined:
		return make(Counts, len(Categories))
	default:
		return g.Allotment.Clone()
	}
}

// Main returns the party's main category for its current seat counts.
func (g Guest) Main() (Category, bool) {
	return MainCategory(SeatCounts(g))
}

// enforceSlots sizes each category to counts, forces the primary guest into
// slot 0 of the main category and blanks any other slot holding the
// primary's name.
func enforceSlots(names Names, counts Counts, primary string) Names {
	main, hasMain := MainCategory(counts)
	out := make(Names, len(Categories))
	for _, cat := range Categories {
		slots := fit(names.Get(cat), counts.Get(cat))
		for i := range slots {
			if hasMain && cat == main && i == 0 {
				slots[i] = primary
				continue
			}
			if SameName(slots[i], primary) {
				slots[i] = ""
			}
		}
		out[cat] = slots
	}
	return out
}
