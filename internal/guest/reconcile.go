package guest

// Reconciler resizes companion name slots while remembering every name it
// has seen per slot, so a category shrunk and later grown again gets its
// typed-in names back. A Reconciler is not safe for concurrent use.
type Reconciler struct {
	originals Names
}

// NewReconciler seeds the originals cache, usually from Guest.Retained.
func NewReconciler(retained Names) *Reconciler {
	r := &Reconciler{originals: make(Names, len(Categories))}
	for _, cat := range Categories {
		src := retained.Get(cat)
		r.originals[cat] = append([]string(nil), src...)
	}
	return r
}

// Reconcile returns the name slots for cat resized to newCount.
//
// previous is the slice currently stored for cat. Slot 0 of the main
// category always holds mainName. Every other slot keeps its previous value,
// falls back to the cached original, or stays empty; no slot other than the
// forced one may end up holding mainName.
func (r *Reconciler) Reconcile(cat Category, newCount int, previous []string, mainName string, isMain bool) []string {
	r.remember(cat, previous, mainName)
	orig := r.originals[cat]

	out := make([]string, max(newCount, 0))
	for i := range out {
		switch {
		case isMain && i == 0:
			out[i] = mainName
		case i < len(previous) && !SameName(previous[i], mainName):
			out[i] = previous[i]
		case i < len(orig) && !SameName(orig[i], mainName):
			out[i] = orig[i]
		}
	}
	return out
}

// remember folds previous into the cache. The forced primary slot is never
// cached so a slot that stops being forced can fall back to whatever was
// typed there before.
func (r *Reconciler) remember(cat Category, previous []string, mainName string) {
	cached := r.originals[cat]
	if len(previous) > len(cached) {
		cached = append(cached, make([]string, len(previous)-len(cached))...)
	}
	for i, name := range previous {
		if SameName(name, mainName) {
			continue
		}
		cached[i] = name
	}
	r.originals[cat] = cached
}

// Originals returns the cache with trailing empty slots dropped, ready to be
// stored back on the guest.
func (r *Reconciler) Originals() Names {
	out := make(Names, len(Categories))
	for _, cat := range Categories {
		names := r.originals[cat]
		end := len(names)
		for end > 0 && names[end-1] == "" {
			end--
		}
		out[cat] = append([]string{}, names[:end]...)
	}
	return out
}

// reshape recomputes counts and reconciles every category's name slots
// against the record's current status and allotment.
func reshape(g Guest, r *Reconciler) Guest {
	if r == nil {
		r = NewReconciler(g.Retained)
	}
	previous := g.Companions
	g = normalizeCounts(g)

	counts := SeatCounts(g)
	main, hasMain := MainCategory(counts)
	names := make(Names, len(Categories))
	for _, cat := range Categories {
		names[cat] = r.Reconcile(cat, counts.Get(cat), previous.Get(cat), g.Name, hasMain && cat == main)
	}
	g.Companions = enforceSlots(names, counts, g.Name)
	g.Retained = r.Originals()
	return g
}

// ApplyAllotment replaces the party's quota, clamping confirmed counts and
// resizing every category's name slots through r. A nil r is seeded from
// the guest's retained names.
func ApplyAllotment(g Guest, allotment Counts, r *Reconciler) Guest {
	g.Allotment = allotment.Clone()
	return reshape(g, r)
}
