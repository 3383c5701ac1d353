package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dimitarkovachev/seating/internal/guest"
	"github.com/dimitarkovachev/seating/internal/seating"
)

// Layout: events/<eventID>/{guests,tables} hold one JSON record per id;
// events/<eventID>/table_order holds the JSON list of table ids.
var (
	eventsBucket = []byte("events")
	guestsBucket = []byte("guests")
	tablesBucket = []byte("tables")
	orderKey     = []byte("table_order")
)

type BBoltStore struct {
	db  *bolt.DB
	now func() time.Time
}

var _ Store = (*BBoltStore)(nil)

func NewBBoltStore(path string) (*BBoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db at %s: %w", path, err)
	}

	// Reason: bucket must exist before any read/write operations
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(eventsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating events bucket: %w", err)
	}

	return &BBoltStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *BBoltStore) Close() error {
	return s.db.Close()
}

func startSpan(ctx context.Context, name, eventID string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("event.id", eventID))
	return ctx, span
}

func finish(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	return err
}

func validEvent(eventID string) error {
	if strings.TrimSpace(eventID) == "" {
		return fmt.Errorf("event id is required")
	}
	return nil
}

// eventBucket returns the nested bucket for eventID, or nil when the event
// has never been written to. With create set it is created on demand.
func eventBucket(tx *bolt.Tx, eventID string, create bool) (*bolt.Bucket, error) {
	root := tx.Bucket(eventsBucket)
	if !create {
		ev := root.Bucket([]byte(eventID))
		return ev, nil
	}
	ev, err := root.CreateBucketIfNotExists([]byte(eventID))
	if err != nil {
		return nil, fmt.Errorf("creating event bucket %s: %w", eventID, err)
	}
	for _, name := range [][]byte{guestsBucket, tablesBucket} {
		if _, err := ev.CreateBucketIfNotExists(name); err != nil {
			return nil, fmt.Errorf("creating %s bucket for event %s: %w", name, eventID, err)
		}
	}
	return ev, nil
}

func (s *BBoltStore) ListEvents(ctx context.Context) ([]string, error) {
	_, span := tracer.Start(ctx, "ListEvents")

	events := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(eventsBucket).ForEach(func(k, v []byte) error {
			if v == nil {
				events = append(events, string(k))
			}
			return nil
		})
	})
	return events, finish(span, err)
}

func (s *BBoltStore) ListGuests(ctx context.Context, eventID string) ([]guest.Guest, error) {
	ctx, span := startSpan(ctx, "ListGuests", eventID)
	if err := ctx.Err(); err != nil {
		return nil, finish(span, err)
	}

	guests := []guest.Guest{}
	err := s.db.View(func(tx *bolt.Tx) error {
		ev, _ := eventBucket(tx, eventID, false)
		if ev == nil {
			return nil
		}
		return ev.Bucket(guestsBucket).ForEach(func(k, v []byte) error {
			var g guest.Guest
			if err := json.Unmarshal(v, &g); err != nil {
				return fmt.Errorf("unmarshaling guest %s: %w", string(k), err)
			}
			guests = append(guests, g)
			return nil
		})
	})
	if err != nil {
		return nil, finish(span, err)
	}
	span.SetAttributes(attribute.Int("guests.count", len(guests)))
	return guests, finish(span, nil)
}

func (s *BBoltStore) GetGuest(ctx context.Context, eventID, id string) (*guest.Guest, error) {
	ctx, span := startSpan(ctx, "GetGuest", eventID)
	if err := ctx.Err(); err != nil {
		return nil, finish(span, err)
	}

	var record *guest.Guest
	err := s.db.View(func(tx *bolt.Tx) error {
		ev, _ := eventBucket(tx, eventID, false)
		if ev == nil {
			return nil
		}
		data := ev.Bucket(guestsBucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		var g guest.Guest
		if err := json.Unmarshal(data, &g); err != nil {
			return fmt.Errorf("unmarshaling guest %s: %w", id, err)
		}
		record = &g
		return nil
	})
	if err != nil {
		return nil, finish(span, err)
	}
	return record, finish(span, nil)
}

// SaveGuest writes g as a whole record; the last write wins.
func (s *BBoltStore) SaveGuest(ctx context.Context, eventID string, g guest.Guest) error {
	ctx, span := startSpan(ctx, "SaveGuest", eventID)
	if err := ctx.Err(); err != nil {
		return finish(span, err)
	}
	if err := validEvent(eventID); err != nil {
		return finish(span, err)
	}
	if strings.TrimSpace(g.ID) == "" {
		return finish(span, fmt.Errorf("guest id is required"))
	}

	now := s.now()
	if g.CreatedAt == nil {
		g.CreatedAt = &now
	}
	g.UpdatedAt = &now

	data, err := json.Marshal(g)
	if err != nil {
		return finish(span, fmt.Errorf("marshaling guest %s: %w", g.ID, err))
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		ev, err := eventBucket(tx, eventID, true)
		if err != nil {
			return err
		}
		if err := ev.Bucket(guestsBucket).Put([]byte(g.ID), data); err != nil {
			return fmt.Errorf("writing guest %s: %w", g.ID, err)
		}
		return nil
	})
	return finish(span, err)
}

func (s *BBoltStore) DeleteGuest(ctx context.Context, eventID, id string) error {
	ctx, span := startSpan(ctx, "DeleteGuest", eventID)
	if err := ctx.Err(); err != nil {
		return finish(span, err)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		ev, _ := eventBucket(tx, eventID, false)
		if ev == nil {
			return nil
		}
		if err := ev.Bucket(guestsBucket).Delete([]byte(id)); err != nil {
			return fmt.Errorf("deleting guest %s: %w", id, err)
		}
		return nil
	})
	return finish(span, err)
}

func (s *BBoltStore) ListTables(ctx context.Context, eventID string) ([]seating.Table, error) {
	ctx, span := startSpan(ctx, "ListTables", eventID)
	if err := ctx.Err(); err != nil {
		return nil, finish(span, err)
	}

	tables := []seating.Table{}
	err := s.db.View(func(tx *bolt.Tx) error {
		ev, _ := eventBucket(tx, eventID, false)
		if ev == nil {
			return nil
		}
		return ev.Bucket(tablesBucket).ForEach(func(k, v []byte) error {
			var t seating.Table
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("unmarshaling table %s: %w", string(k), err)
			}
			tables = append(tables, t)
			return nil
		})
	})
	if err != nil {
		return nil, finish(span, err)
	}
	return tables, finish(span, nil)
}

func (s *BBoltStore) GetTable(ctx context.Context, eventID, id string) (*seating.Table, error) {
	ctx, span := startSpan(ctx, "GetTable", eventID)
	if err := ctx.Err(); err != nil {
		return nil, finish(span, err)
	}

	var record *seating.Table
	err := s.db.View(func(tx *bolt.Tx) error {
		ev, _ := eventBucket(tx, eventID, false)
		if ev == nil {
			return nil
		}
		data := ev.Bucket(tablesBucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		var t seating.Table
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("unmarshaling table %s: %w", id, err)
		}
		record = &t
		return nil
	})
	if err != nil {
		return nil, finish(span, err)
	}
	return record, finish(span, nil)
}

func (s *BBoltStore) SaveTable(ctx context.Context, eventID string, t seating.Table) error {
	ctx, span := startSpan(ctx, "SaveTable", eventID)
	if err := ctx.Err(); err != nil {
		return finish(span, err)
	}
	if err := validEvent(eventID); err != nil {
		return finish(span, err)
	}
	if strings.TrimSpace(t.ID) == "" {
		return finish(span, fmt.Errorf("table id is required"))
	}
	if t.Occupants == nil {
		t.Occupants = []seating.SeatUnit{}
	}

	data, err := json.Marshal(t)
	if err != nil {
		return finish(span, fmt.Errorf("marshaling table %s: %w", t.ID, err))
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		ev, err := eventBucket(tx, eventID, true)
		if err != nil {
			return err
		}
		if err := ev.Bucket(tablesBucket).Put([]byte(t.ID), data); err != nil {
			return fmt.Errorf("writing table %s: %w", t.ID, err)
		}
		return nil
	})
	return finish(span, err)
}

func (s *BBoltStore) DeleteTable(ctx context.Context, eventID, id string) error {
	ctx, span := startSpan(ctx, "DeleteTable", eventID)
	if err := ctx.Err(); err != nil {
		return finish(span, err)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		ev, _ := eventBucket(tx, eventID, false)
		if ev == nil {
			return nil
		}
		if err := ev.Bucket(tablesBucket).Delete([]byte(id)); err != nil {
			return fmt.Errorf("deleting table %s: %w", id, err)
		}
		return nil
	})
	return finish(span, err)
}

func (s *BBoltStore) LoadOrder(ctx context.Context, eventID string) ([]string, error) {
	ctx, span := startSpan(ctx, "LoadOrder", eventID)
	if err := ctx.Err(); err != nil {
		return nil, finish(span, err)
	}

	order := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		ev, _ := eventBucket(tx, eventID, false)
		if ev == nil {
			return nil
		}
		data := ev.Get(orderKey)
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &order); err != nil {
			return fmt.Errorf("unmarshaling table order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, finish(span, err)
	}
	return order, finish(span, nil)
}

func (s *BBoltStore) SaveOrder(ctx context.Context, eventID string, ids []string) error {
	ctx, span := startSpan(ctx, "SaveOrder", eventID)
	if err := ctx.Err(); err != nil {
		return finish(span, err)
	}
	if err := validEvent(eventID); err != nil {
		return finish(span, err)
	}
	if ids == nil {
		ids = []string{}
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return finish(span, fmt.Errorf("marshaling table order: %w", err))
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		ev, err := eventBucket(tx, eventID, true)
		if err != nil {
			return err
		}
		return ev.Put(orderKey, data)
	})
	return finish(span, err)
}

// Seed loads guests and tables for an event, skipping ids that already
// exist. Seeded tables are appended to the display order.
func (s *BBoltStore) Seed(eventID string, guests []guest.Guest, tables []seating.Table) error {
	if err := validEvent(eventID); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		ev, err := eventBucket(tx, eventID, true)
		if err != nil {
			return err
		}
		now := s.now()

		gb := ev.Bucket(guestsBucket)
		for _, g := range guests {
			if gb.Get([]byte(g.ID)) != nil {
				log.WithField("guest_id", g.ID).Debug("seed: guest already exists, skipping")
				continue
			}
			g = guest.Normalize(g)
			if g.CreatedAt == nil {
				g.CreatedAt = &now
			}
			data, err := json.Marshal(g)
			if err != nil {
				return fmt.Errorf("marshaling seed guest %s: %w", g.ID, err)
			}
			if err := gb.Put([]byte(g.ID), data); err != nil {
				return fmt.Errorf("seeding guest %s: %w", g.ID, err)
			}
			log.WithField("guest_id", g.ID).Info("seeded guest")
		}

		order := []string{}
		if data := ev.Get(orderKey); data != nil {
			if err := json.Unmarshal(data, &order); err != nil {
				return fmt.Errorf("unmarshaling table order: %w", err)
			}
		}
		tb := ev.Bucket(tablesBucket)
		for _, t := range tables {
			if tb.Get([]byte(t.ID)) != nil {
				log.WithField("table_id", t.ID).Debug("seed: table already exists, skipping")
				continue
			}
			if t.Occupants == nil {
				t.Occupants = []seating.SeatUnit{}
			}
			if t.CreatedAt == nil {
				t.CreatedAt = &now
			}
			data, err := json.Marshal(t)
			if err != nil {
				return fmt.Errorf("marshaling seed table %s: %w", t.ID, err)
			}
			if err := tb.Put([]byte(t.ID), data); err != nil {
				return fmt.Errorf("seeding table %s: %w", t.ID, err)
			}
			order = append(order, t.ID)
			log.WithField("table_id", t.ID).Info("seeded table")
		}

		data, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("marshaling table order: %w", err)
		}
		return ev.Put(orderKey, data)
	})
}
