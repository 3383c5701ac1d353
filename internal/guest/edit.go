package guest

import "strings"

// Edit is an organizer change to a party. Nil fields are left untouched.
type Edit struct {
	Name       *string
	Status     *Status
	Allotment  Counts
	Confirmed  Counts
	Companions Names
	Notes      *string
	Sent       *bool
}

// ApplyEdit applies e to g. Name slots are carried through the reconciler
// so quota changes keep typed-in names, and the primary guest stays pinned
// to the main category after a rename. Supplied companion names are sized
// to the counts the edit leaves behind.
func ApplyEdit(g Guest, e Edit) Guest {
	g = Normalize(g)
	r := NewReconciler(g.Retained)
	for _, cat := range Categories {
		r.remember(cat, g.Companions.Get(cat), g.Name)
	}

	if e.Name != nil {
		if name := strings.TrimSpace(*e.Name); name != "" {
			g = rename(g, name)
		}
	}
	if e.Notes != nil {
		g.Notes = strings.TrimSpace(*e.Notes)
	}
	if e.Sent != nil {
		g.Sent = *e.Sent
	}
	if e.Status != nil && e.Status.Valid() {
		g.Status = *e.Status
	}
	if e.Allotment != nil {
		g.Allotment = e.Allotment.Clone()
	}
	if e.Confirmed != nil {
		g.Confirmed = e.Confirmed.Clone()
	}
	if e.Companions != nil {
		counts := SeatCounts(normalizeCounts(g))
		for _, cat := range Categories {
			if names, ok := e.Companions[cat]; ok {
				g.Companions[cat] = fit(names, counts.Get(cat))
			}
		}
	}
	return reshape(g, r)
}

// rename swaps the primary guest's name, moving the pinned slot with it so
// the old name is not left behind as a companion.
func rename(g Guest, name string) Guest {
	if main, ok := g.Main(); ok && len(g.Companions[main]) > 0 {
		g.Companions[main][0] = name
	}
	g.Name = name
	return g
}
