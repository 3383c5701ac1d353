package seating

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/dimitarkovachev/seating/internal/apperrors"
)

// TableStore persists tables and the event's table display order. GetTable
// returns nil, nil for an unknown id.
type TableStore interface {
	ListTables(ctx context.Context, eventID string) ([]Table, error)
	GetTable(ctx context.Context, eventID, id string) (*Table, error)
	SaveTable(ctx context.Context, eventID string, t Table) error
	DeleteTable(ctx context.Context, eventID, id string) error
	LoadOrder(ctx context.Context, eventID string) ([]string, error)
	SaveOrder(ctx context.Context, eventID string, ids []string) error
}

// Manager mutates tables. Writes to one table are serialized, and so are
// writes touching one guest, so two concurrent assigns can neither overfill a
// table nor seat the same person twice. Locks are always taken guest first,
// then table.
type Manager struct {
	store  TableStore
	tables *keyedMutex
	guests *keyedMutex
	orders *keyedMutex
	now    func() time.Time
}

func NewManager(s TableStore) *Manager {
	return &Manager{
		store:  s,
		tables: newKeyedMutex(),
		guests: newKeyedMutex(),
		orders: newKeyedMutex(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func lockKey(eventID, id string) string {
	return eventID + "/" + id
}

// List returns the event's tables in display order. Tables missing from the
// stored order follow the ordered ones, oldest first.
func (m *Manager) List(ctx context.Context, eventID string) ([]Table, error) {
	tables, err := m.store.ListTables(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	order, err := m.store.LoadOrder(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading table order: %w", err)
	}
	return arrange(tables, order), nil
}

func arrange(tables []Table, order []string) []Table {
	pos := make(map[string]int, len(order))
	for i, id := range order {
		if _, dup := pos[id]; !dup {
			pos[id] = i
		}
	}
	out := slices.Clone(tables)
	slices.SortStableFunc(out, func(a, b Table) int {
		pa, oka := pos[a.ID]
		pb, okb := pos[b.ID]
		switch {
		case oka && okb:
			return pa - pb
		case oka:
			return -1
		case okb:
			return 1
		}
		if a.CreatedAt != nil && b.CreatedAt != nil && !a.CreatedAt.Equal(*b.CreatedAt) {
			return a.CreatedAt.Compare(*b.CreatedAt)
		}
		return strings.Compare(a.ID, b.ID)
	})
	for i := range out {
		out[i].Order = i
	}
	return out
}

func (m *Manager) get(ctx context.Context, eventID, id string) (Table, error) {
	t, err := m.store.GetTable(ctx, eventID, id)
	if err != nil {
		return Table{}, fmt.Errorf("getting table %s: %w", id, err)
	}
	if t == nil {
		return Table{}, apperrors.WithMetadata(apperrors.CodeNotFound,
			fmt.Sprintf("table %s not found", id), map[string]string{"table_id": id})
	}
	return *t, nil
}

func (m *Manager) save(ctx context.Context, eventID string, t Table) error {
	now := m.now()
	t.UpdatedAt = &now
	if err := m.store.SaveTable(ctx, eventID, t); err != nil {
		return fmt.Errorf("saving table %s: %w", t.ID, err)
	}
	return nil
}

// Create adds an empty table at the end of the display order.
func (m *Manager) Create(ctx context.Context, eventID, name string, capacity int) (Table, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Table{}, apperrors.New(apperrors.CodeInvalidArgument, "table name is required")
	}
	if capacity <= 0 {
		return Table{}, apperrors.New(apperrors.CodeInvalidArgument, "table capacity must be positive")
	}

	now := m.now()
	t := Table{
		ID:        uuid.NewString(),
		Name:      name,
		Capacity:  capacity,
		Occupants: []SeatUnit{},
		CreatedAt: &now,
	}
	if err := m.save(ctx, eventID, t); err != nil {
		return Table{}, err
	}

	unlock := m.orders.Lock(eventID)
	defer unlock()
	order, err := m.store.LoadOrder(ctx, eventID)
	if err != nil {
		return Table{}, fmt.Errorf("loading table order: %w", err)
	}
	if err := m.store.SaveOrder(ctx, eventID, append(order, t.ID)); err != nil {
		return Table{}, fmt.Errorf("saving table order: %w", err)
	}
	t.Order = len(order)
	return t, nil
}

// Update renames and/or resizes a table. Shrinking below the current
// occupancy is allowed; nobody is evicted and the returned bool reports the
// table as over capacity.
func (m *Manager) Update(ctx context.Context, eventID, id string, name *string, capacity *int) (Table, bool, error) {
	if capacity != nil && *capacity <= 0 {
		return Table{}, false, apperrors.New(apperrors.CodeInvalidArgument, "table capacity must be positive")
	}

	unlock := m.tables.Lock(lockKey(eventID, id))
	defer unlock()

	t, err := m.get(ctx, eventID, id)
	if err != nil {
		return Table{}, false, err
	}
	if name != nil {
		if n := strings.TrimSpace(*name); n != "" {
			t.Name = n
		}
	}
	if capacity != nil {
		t.Capacity = *capacity
	}
	if err := m.save(ctx, eventID, t); err != nil {
		return Table{}, false, err
	}
	if t.OverCapacity() {
		log.WithFields(log.Fields{
			"event_id":  eventID,
			"table_id":  id,
			"capacity":  t.Capacity,
			"occupants": len(t.Occupants),
		}).Warn("table resized below occupancy")
	}
	return t, t.OverCapacity(), nil
}

// Delete removes a table; its occupants return to the pool.
func (m *Manager) Delete(ctx context.Context, eventID, id string) error {
	unlock := m.tables.Lock(lockKey(eventID, id))
	defer unlock()

	if _, err := m.get(ctx, eventID, id); err != nil {
		return err
	}
	if err := m.store.DeleteTable(ctx, eventID, id); err != nil {
		return fmt.Errorf("deleting table %s: %w", id, err)
	}

	unlockOrder := m.orders.Lock(eventID)
	defer unlockOrder()
	order, err := m.store.LoadOrder(ctx, eventID)
	if err != nil {
		return fmt.Errorf("loading table order: %w", err)
	}
	order = slices.DeleteFunc(order, func(o string) bool { return o == id })
	if err := m.store.SaveOrder(ctx, eventID, order); err != nil {
		return fmt.Errorf("saving table order: %w", err)
	}
	return nil
}

// Reorder replaces the display order. ids must name existing tables without
// repeats; tables left out keep their relative order after the listed ones.
func (m *Manager) Reorder(ctx context.Context, eventID string, ids []string) ([]Table, error) {
	unlock := m.orders.Lock(eventID)
	defer unlock()
	return m.reorder(ctx, eventID, ids)
}

func (m *Manager) reorder(ctx context.Context, eventID string, ids []string) ([]Table, error) {
	current, err := m.List(ctx, eventID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(current))
	for _, t := range current {
		known[t.ID] = true
	}

	seen := make(map[string]bool, len(ids))
	order := make([]string, 0, len(current))
	for _, id := range ids {
		if !known[id] {
			return nil, apperrors.WithMetadata(apperrors.CodeNotFound,
				fmt.Sprintf("table %s not found", id), map[string]string{"table_id": id})
		}
		if seen[id] {
			return nil, apperrors.New(apperrors.CodeInvalidArgument,
				fmt.Sprintf("table %s listed twice", id))
		}
		seen[id] = true
		order = append(order, id)
	}
	for _, t := range current {
		if !seen[t.ID] {
			order = append(order, t.ID)
		}
	}

	if err := m.store.SaveOrder(ctx, eventID, order); err != nil {
		return nil, fmt.Errorf("saving table order: %w", err)
	}
	return arrange(current, order), nil
}

// MoveUp swaps a table with the one before it.
func (m *Manager) MoveUp(ctx context.Context, eventID, id string) ([]Table, error) {
	return m.move(ctx, eventID, id, -1)
}

// MoveDown swaps a table with the one after it.
func (m *Manager) MoveDown(ctx context.Context, eventID, id string) ([]Table, error) {
	return m.move(ctx, eventID, id, 1)
}

func (m *Manager) move(ctx context.Context, eventID, id string, delta int) ([]Table, error) {
	unlock := m.orders.Lock(eventID)
	defer unlock()

	current, err := m.List(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(current))
	at := -1
	for i, t := range current {
		ids[i] = t.ID
		if t.ID == id {
			at = i
		}
	}
	if at < 0 {
		return nil, apperrors.WithMetadata(apperrors.CodeNotFound,
			fmt.Sprintf("table %s not found", id), map[string]string{"table_id": id})
	}
	to := at + delta
	if to < 0 || to >= len(ids) {
		return current, nil
	}
	ids[at], ids[to] = ids[to], ids[at]
	return m.reorder(ctx, eventID, ids)
}

// SeatResolver looks up the seat-unit to place. It runs while the guest's
// lock is held.
type SeatResolver func(ctx context.Context) (SeatUnit, error)

// Assign seats unit at the table. It fails with CAPACITY_EXCEEDED when the
// table is full and ALREADY_SEATED when the unit sits at any table.
func (m *Manager) Assign(ctx context.Context, eventID, tableID string, unit SeatUnit) (Table, error) {
	return m.AssignResolved(ctx, eventID, tableID, unit.GuestID, func(context.Context) (SeatUnit, error) {
		return unit, nil
	})
}

// AssignResolved is Assign for a unit looked up under guestID's lock, so a
// guest deleted through RemoveGuest can never be seated afterwards.
func (m *Manager) AssignResolved(ctx context.Context, eventID, tableID, guestID string, resolve SeatResolver) (Table, error) {
	unlockGuest := m.guests.Lock(lockKey(eventID, guestID))
	defer unlockGuest()

	unit, err := resolve(ctx)
	if err != nil {
		return Table{}, err
	}
	if unit.GuestID != guestID {
		return Table{}, fmt.Errorf("resolved seat belongs to guest %s, not %s", unit.GuestID, guestID)
	}

	unlockTable := m.tables.Lock(lockKey(eventID, tableID))
	defer unlockTable()

	tables, err := m.store.ListTables(ctx, eventID)
	if err != nil {
		return Table{}, fmt.Errorf("listing tables: %w", err)
	}
	if at, ok := Seated(tables)[unit.Key()]; ok {
		return Table{}, apperrors.WithMetadata(apperrors.CodeAlreadySeated,
			fmt.Sprintf("seat %s/%d is already at table %s", unit.GuestID, unit.CompanionIndex, at),
			map[string]string{"table_id": at, "guest_id": unit.GuestID})
	}

	t, err := m.get(ctx, eventID, tableID)
	if err != nil {
		return Table{}, err
	}
	if t.Full() {
		return Table{}, apperrors.WithMetadata(apperrors.CodeCapacityExceeded,
			fmt.Sprintf("table %s is full (%d/%d)", t.Name, len(t.Occupants), t.Capacity),
			map[string]string{"table_id": t.ID})
	}

	t.Occupants = append(t.Occupants, unit)
	if err := m.save(ctx, eventID, t); err != nil {
		return Table{}, err
	}
	return t, nil
}

// Unassign removes the occupant with the given identity from the table.
func (m *Manager) Unassign(ctx context.Context, eventID, tableID, guestID string, companionIndex int) (Table, error) {
	unlockGuest := m.guests.Lock(lockKey(eventID, guestID))
	defer unlockGuest()
	unlockTable := m.tables.Lock(lockKey(eventID, tableID))
	defer unlockTable()

	t, err := m.get(ctx, eventID, tableID)
	if err != nil {
		return Table{}, err
	}
	i := t.indexOf(Key{GuestID: guestID, CompanionIndex: companionIndex})
	if i < 0 {
		return Table{}, apperrors.WithMetadata(apperrors.CodeNotFound,
			fmt.Sprintf("seat %s/%d is not at table %s", guestID, companionIndex, tableID),
			map[string]string{"table_id": tableID, "guest_id": guestID})
	}
	t.Occupants = slices.Delete(t.Occupants, i, i+1)
	if err := m.save(ctx, eventID, t); err != nil {
		return Table{}, err
	}
	return t, nil
}

// RemoveGuest takes every seat of guestID off every table and returns how
// many occupants were removed. Used when a guest record is deleted: drop, if
// set, runs afterwards under the same guest lock.
func (m *Manager) RemoveGuest(ctx context.Context, eventID, guestID string, drop func(context.Context) error) (int, error) {
	unlockGuest := m.guests.Lock(lockKey(eventID, guestID))
	defer unlockGuest()

	tables, err := m.store.ListTables(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("listing tables: %w", err)
	}

	removed := 0
	for _, snapshot := range tables {
		if !slices.ContainsFunc(snapshot.Occupants, func(o SeatUnit) bool { return o.GuestID == guestID }) {
			continue
		}
		n, err := m.evict(ctx, eventID, snapshot.ID, guestID)
		if err != nil {
			return removed, err
		}
		removed += n
	}
	if drop != nil {
		if err := drop(ctx); err != nil {
			return removed, err
		}
	}

	log.WithFields(log.Fields{
		"event_id": eventID,
		"guest_id": guestID,
		"removed":  removed,
	}).Debug("guest removed from tables")
	return removed, nil
}

func (m *Manager) evict(ctx context.Context, eventID, tableID, guestID string) (int, error) {
	unlock := m.tables.Lock(lockKey(eventID, tableID))
	defer unlock()

	t, err := m.store.GetTable(ctx, eventID, tableID)
	if err != nil {
		return 0, fmt.Errorf("getting table %s: %w", tableID, err)
	}
	if t == nil {
		return 0, nil
	}
	before := len(t.Occupants)
	t.Occupants = slices.DeleteFunc(t.Occupants, func(o SeatUnit) bool { return o.GuestID == guestID })
	if len(t.Occupants) == before {
		return 0, nil
	}
	if err := m.save(ctx, eventID, *t); err != nil {
		return 0, err
	}
	return before - len(t.Occupants), nil
}
