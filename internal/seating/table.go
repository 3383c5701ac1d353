// Package seating builds the pool of unseated seat-units and places them at
// tables without double-seating anyone or overfilling a table.
package seating

import (
	"time"

	"github.com/dimitarkovachev/seating/internal/guest"
)

// Key identifies a seat-unit. Display names are editable, so identity is
// always the guest id plus the flat companion index.
type Key struct {
	GuestID        string `json:"guest_id"`
	CompanionIndex int    `json:"companion_index"`
}

// SeatUnit is one assignable seat. CompanionIndex is guest.PrimaryIndex for
// the party's primary guest.
type SeatUnit struct {
	GuestID        string         `json:"guest_id"`
	CompanionIndex int            `json:"companion_index"`
	Name           string         `json:"name"`
	Status         guest.Status   `json:"status"`
	Category       guest.Category `json:"category,omitempty"`
	Placeholder    bool           `json:"placeholder,omitempty"`
}

func (u SeatUnit) Key() Key {
	return Key{GuestID: u.GuestID, CompanionIndex: u.CompanionIndex}
}

// Table is a physical table. Occupants may exceed Capacity only after an
// organizer shrinks the table; Assign never overfills it.
type Table struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Capacity  int        `json:"capacity"`
	Occupants []SeatUnit `json:"occupants"`
	Order     int        `json:"order"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (t Table) OverCapacity() bool {
	return len(t.Occupants) > t.Capacity
}

func (t Table) Full() bool {
	return len(t.Occupants) >= t.Capacity
}

func (t Table) indexOf(k Key) int {
	for i, o := range t.Occupants {
		if o.Key() == k {
			return i
		}
	}
	return -1
}

// Occupied counts everyone seated across tables.
func Occupied(tables []Table) int {
	n := 0
	for _, t := range tables {
		n += len(t.Occupants)
	}
	return n
}
