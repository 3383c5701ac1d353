package store

import (
	"context"

	"github.com/dimitarkovachev/seating/internal/guest"
	"github.com/dimitarkovachev/seating/internal/seating"
)

// GuestStore persists guest records per event. GetGuest returns nil, nil
// when the guest does not exist.
type GuestStore interface {
	ListGuests(ctx context.Context, eventID string) ([]guest.Guest, error)
	GetGuest(ctx context.Context, eventID, id string) (*guest.Guest, error)
	SaveGuest(ctx context.Context, eventID string, g guest.Guest) error
	DeleteGuest(ctx context.Context, eventID, id string) error
}

// Store is everything the service needs from persistence.
type Store interface {
	GuestStore
	seating.TableStore
	ListEvents(ctx context.Context) ([]string, error)
	Close() error
}
