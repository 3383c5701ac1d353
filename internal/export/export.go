// Package export flattens the guest list into report rows.
package export

import (
	"cmp"
	"encoding/csv"
	"io"
	"slices"
	"strings"

	"github.com/dimitarkovachev/seating/internal/guest"
)

type Relation string

const (
	RelationPrimary   Relation = "primary"
	RelationCompanion Relation = "companion"
)

// Row is one person in the report. Group is the party's primary guest.
type Row struct {
	Name     string         `json:"name"`
	Category guest.Category `json:"category"`
	Status   guest.Status   `json:"status"`
	Group    string         `json:"group"`
	Relation Relation       `json:"relation"`

	party string
	seat  int
}

var statusRank = map[guest.Status]int{
	guest.StatusConfirmed: 0,
	guest.StatusPending:   1,
	guest.StatusDeclined:  2,
}

// Rows returns one row per seat of every party, ordered confirmed, pending,
// declined, then by party name, with each primary guest ahead of their
// companions. Consumers rely on this order.
func Rows(guests []guest.Guest) []Row {
	var rows []Row
	for _, g := range guests {
		status := g.Status
		if !status.Valid() {
			status = guest.StatusPending
		}
		for _, s := range guest.Seats(g) {
			rel := RelationCompanion
			if s.Index == guest.PrimaryIndex {
				rel = RelationPrimary
			}
			rows = append(rows, Row{
				Name:     s.Name,
				Category: s.Category,
				Status:   status,
				Group:    g.Name,
				Relation: rel,
				party:    g.ID,
				seat:     s.Index,
			})
		}
	}

	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(statusRank[a.Status], statusRank[b.Status]); c != 0 {
			return c
		}
		if c := cmp.Compare(strings.ToLower(a.Group), strings.ToLower(b.Group)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Group, b.Group); c != 0 {
			return c
		}
		if c := cmp.Compare(a.party, b.party); c != 0 {
			return c
		}
		return cmp.Compare(a.seat, b.seat)
	})
	return rows
}

var header = []string{"name", "category", "status", "group", "relation"}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Name, string(r.Category), string(r.Status), r.Group, string(r.Relation)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
