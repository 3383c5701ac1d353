package guest

import (
	"strings"
	"time"
)

// Response is what a guest submits from their invite.
type Response struct {
	Attending  bool
	Confirmed  Counts
	Companions Names
	Notes      string
}

// Resolve applies a guest's RSVP to g and returns the updated record.
//
// Declining zeroes every count and clears every name. Attending clamps the
// requested counts into the allotment (an all-zero request means the full
// allotment), pins the primary guest into slot 0 of the main category and
// blanks any other slot that repeats the primary's name. Resolve never
// rejects a response; bad input is corrected instead.
func Resolve(g Guest, resp Response, now time.Time) Guest {
	g = normalizeCounts(g)
	g.RespondedAt = &now
	if notes := strings.TrimSpace(resp.Notes); notes != "" {
		g.Notes = notes
	}

	if !resp.Attending {
		g.Status = StatusDeclined
		g.Confirmed = Counts{}.Clone()
		g.Companions = emptyNames()
		return g
	}

	g.Status = StatusConfirmed
	g.Confirmed = resp.Confirmed.Clone()
	g = normalizeCounts(g)

	names := make(Names, len(Categories))
	for _, cat := range Categories {
		supplied := resp.Companions.Get(cat)
		trimmed := make([]string, len(supplied))
		for i, name := range supplied {
			trimmed[i] = normalizeName(name)
		}
		names[cat] = trimmed
	}
	g.Companions = enforceSlots(names, g.Confirmed, g.Name)
	return g
}
