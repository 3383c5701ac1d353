package admin

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dimitarkovachev/seating/internal/apperrors"
	"github.com/dimitarkovachev/seating/internal/guest"
)

type guestCreate struct {
	Name      string       `json:"name" binding:"required"`
	Allotment guest.Counts `json:"allotment"`
	Notes     string       `json:"notes"`
}

type guestUpdate struct {
	Name       *string       `json:"name"`
	Status     *guest.Status `json:"status"`
	Allotment  guest.Counts  `json:"allotment"`
	Confirmed  guest.Counts  `json:"confirmed"`
	Companions guest.Names   `json:"companions"`
	Notes      *string       `json:"notes"`
	Sent       *bool         `json:"sent"`
}

func checkCategories[V any](field string, m map[guest.Category]V) error {
	for cat := range m {
		if !cat.Valid() {
			return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("%s: unknown category %q", field, cat))
		}
	}
	return nil
}

func (u guestUpdate) validate() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "name cannot be blank")
	}
	if u.Status != nil && !u.Status.Valid() {
		return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("unknown status %q", *u.Status))
	}
	if err := checkCategories("allotment", u.Allotment); err != nil {
		return err
	}
	if err := checkCategories("confirmed", u.Confirmed); err != nil {
		return err
	}
	return checkCategories("companions", u.Companions)
}

func (u guestUpdate) edit() guest.Edit {
	return guest.Edit{
		Name:       u.Name,
		Status:     u.Status,
		Allotment:  u.Allotment,
		Confirmed:  u.Confirmed,
		Companions: u.Companions,
		Notes:      u.Notes,
		Sent:       u.Sent,
	}
}

func (h *Handler) loadGuest(c *gin.Context) (*guest.Guest, bool) {
	eventID, id := c.Param("eventId"), c.Param("id")
	g, err := h.store.GetGuest(c.Request.Context(), eventID, id)
	if err != nil {
		respondError(c, eventLogger(c).WithField("guest_id", id), err)
		return nil, false
	}
	if g == nil {
		respondError(c, nil, apperrors.WithMetadata(apperrors.CodeNotFound,
			"guest not found", map[string]string{"guest_id": id}))
		return nil, false
	}
	normalized := guest.Normalize(*g)
	return &normalized, true
}

func (h *Handler) ListGuests(c *gin.Context) {
	eventID := c.Param("eventId")
	guests, err := h.store.ListGuests(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, eventLogger(c), err)
		return
	}

	if status := guest.Status(c.Query("status")); status != "" {
		if !status.Valid() {
			badRequest(c, fmt.Sprintf("unknown status %q", status))
			return
		}
		guests = slices.DeleteFunc(guests, func(g guest.Guest) bool { return g.Status != status })
	}
	for i := range guests {
		guests[i] = guest.Normalize(guests[i])
	}
	slices.SortFunc(guests, func(a, b guest.Guest) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	c.JSON(http.StatusOK, guests)
}

func (h *Handler) CreateGuest(c *gin.Context) {
	var body guestCreate
	if !bindJSON(c, &body) {
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		badRequest(c, "name cannot be blank")
		return
	}
	if err := checkCategories("allotment", body.Allotment); err != nil {
		respondError(c, nil, err)
		return
	}

	g := guest.New(uuid.NewString(), body.Name, body.Allotment)
	g.Notes = strings.TrimSpace(body.Notes)

	logger := eventLogger(c).WithField("guest_id", g.ID)
	if err := h.store.SaveGuest(c.Request.Context(), c.Param("eventId"), g); err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("guest created")
	c.JSON(http.StatusCreated, g)
}

func (h *Handler) GetGuest(c *gin.Context) {
	g, ok := h.loadGuest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, g)
}

// UpdateGuest applies an organizer edit. Quota and status changes go
// through the name reconciler, so names typed before a shrink come back
// when the quota grows again.
func (h *Handler) UpdateGuest(c *gin.Context) {
	var body guestUpdate
	if !bindJSON(c, &body) {
		return
	}
	if err := body.validate(); err != nil {
		respondError(c, nil, err)
		return
	}
	h.saveEdit(c, body.edit(), "guest updated")
}

func (h *Handler) MarkSent(c *gin.Context) {
	sent := true
	h.saveEdit(c, guest.Edit{Sent: &sent}, "invitation marked sent")
}

func (h *Handler) saveEdit(c *gin.Context, e guest.Edit, msg string) {
	g, ok := h.loadGuest(c)
	if !ok {
		return
	}

	updated := guest.ApplyEdit(*g, e)
	logger := eventLogger(c).WithField("guest_id", updated.ID)
	if err := h.store.SaveGuest(c.Request.Context(), c.Param("eventId"), updated); err != nil {
		respondError(c, logger, err)
		return
	}

	logger.WithField("status", updated.Status).Info(msg)
	c.JSON(http.StatusOK, updated)
}

// DeleteGuest removes the guest and every seat of theirs from the tables.
func (h *Handler) DeleteGuest(c *gin.Context) {
	eventID, id := c.Param("eventId"), c.Param("id")
	logger := eventLogger(c).WithField("guest_id", id)

	if _, ok := h.loadGuest(c); !ok {
		return
	}
	removed, err := h.tables.RemoveGuest(c.Request.Context(), eventID, id, func(ctx context.Context) error {
		return h.store.DeleteGuest(ctx, eventID, id)
	})
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.WithField("unseated", removed).Info("guest deleted")
	c.JSON(http.StatusOK, gin.H{"id": id, "unseated": removed})
}
