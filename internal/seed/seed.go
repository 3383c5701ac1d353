package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/dimitarkovachev/seating/internal/guest"
	"github.com/dimitarkovachev/seating/internal/seating"
)

type SeedData struct {
	Guests []guest.Guest   `json:"guests"`
	Tables []seating.Table `json:"tables"`
}

// Seeder loads records into one event, leaving existing ids untouched.
type Seeder interface {
	Seed(eventID string, guests []guest.Guest, tables []seating.Table) error
}

// LoadFromFile reads seed data from a JSON file and loads it into eventID.
// Returns nil if path is empty (seeding disabled). Every record needs an id
// so that restarting with the same file is a no-op. Guest ids must be UUIDs,
// the form invite links carry, and are stored in canonical lowercase.
func LoadFromFile(path, eventID string, s Seeder) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file %s: %w", path, err)
	}

	var sd SeedData
	if err := json.Unmarshal(data, &sd); err != nil {
		return fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	if err := sd.validate(); err != nil {
		return fmt.Errorf("seed file %s: %w", path, err)
	}

	log.WithFields(log.Fields{
		"event_id": eventID,
		"guests":   len(sd.Guests),
		"tables":   len(sd.Tables),
	}).Info("seeding event from file")

	return s.Seed(eventID, sd.Guests, sd.Tables)
}

func (sd *SeedData) validate() error {
	seen := make(map[string]bool, len(sd.Guests))
	for i := range sd.Guests {
		g := &sd.Guests[i]
		if strings.TrimSpace(g.ID) == "" {
			return fmt.Errorf("guest %d has no id", i)
		}
		id, err := uuid.Parse(g.ID)
		if err != nil {
			return fmt.Errorf("guest %d id %q is not a uuid: %w", i, g.ID, err)
		}
		g.ID = id.String()
		if strings.TrimSpace(g.Name) == "" {
			return fmt.Errorf("guest %s has no name", g.ID)
		}
		if seen[g.ID] {
			return fmt.Errorf("guest %s listed twice", g.ID)
		}
		seen[g.ID] = true
	}
	for i, t := range sd.Tables {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("table %d has no id", i)
		}
		if t.Capacity <= 0 {
			return fmt.Errorf("table %s has capacity %d", t.ID, t.Capacity)
		}
	}
	return nil
}
