package admin

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/dimitarkovachev/seating/internal/apperrors"
	"github.com/dimitarkovachev/seating/internal/guest"
	"github.com/dimitarkovachev/seating/internal/seating"
)

type tableCreate struct {
	Name     string `json:"name" binding:"required"`
	Capacity int    `json:"capacity" binding:"required"`
}

type tableUpdate struct {
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
}

type tableOrder struct {
	IDs []string `json:"ids" binding:"required"`
}

type seatRequest struct {
	GuestID        string `json:"guest_id" binding:"required"`
	CompanionIndex *int   `json:"companion_index" binding:"required"`
}

// tableResponse is an update result; OverCapacity is set when a table was
// shrunk below its current occupancy.
type tableResponse struct {
	seating.Table
	OverCapacity bool `json:"over_capacity"`
}

// ListTables returns the tables in display order with occupant names taken
// from the current guest records.
func (h *Handler) ListTables(c *gin.Context) {
	guests, tables, err := h.snapshot(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		respondError(c, eventLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, seating.Refresh(tables, guests))
}

func (h *Handler) CreateTable(c *gin.Context) {
	var body tableCreate
	if !bindJSON(c, &body) {
		return
	}

	t, err := h.tables.Create(c.Request.Context(), c.Param("eventId"), body.Name, body.Capacity)
	if err != nil {
		respondError(c, eventLogger(c), err)
		return
	}

	eventLogger(c).WithField("table_id", t.ID).Info("table created")
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTable(c *gin.Context) {
	var body tableUpdate
	if !bindJSON(c, &body) {
		return
	}

	t, over, err := h.tables.Update(c.Request.Context(), c.Param("eventId"), c.Param("tableId"), body.Name, body.Capacity)
	if err != nil {
		respondError(c, eventLogger(c).WithField("table_id", c.Param("tableId")), err)
		return
	}
	c.JSON(http.StatusOK, tableResponse{Table: t, OverCapacity: over})
}

// DeleteTable removes a table; its occupants go back to the pool.
func (h *Handler) DeleteTable(c *gin.Context) {
	tableID := c.Param("tableId")
	if err := h.tables.Delete(c.Request.Context(), c.Param("eventId"), tableID); err != nil {
		respondError(c, eventLogger(c).WithField("table_id", tableID), err)
		return
	}
	eventLogger(c).WithField("table_id", tableID).Info("table deleted")
	c.JSON(http.StatusOK, gin.H{"id": tableID})
}

func (h *Handler) ReorderTables(c *gin.Context) {
	var body tableOrder
	if !bindJSON(c, &body) {
		return
	}

	tables, err := h.tables.Reorder(c.Request.Context(), c.Param("eventId"), body.IDs)
	if err != nil {
		respondError(c, eventLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

// MoveTable swaps a table with its neighbour; dir is "up" or "down".
func (h *Handler) MoveTable(c *gin.Context) {
	eventID, tableID := c.Param("eventId"), c.Param("tableId")

	var (
		tables []seating.Table
		err    error
	)
	switch strings.ToLower(c.Query("dir")) {
	case "up":
		tables, err = h.tables.MoveUp(c.Request.Context(), eventID, tableID)
	case "down":
		tables, err = h.tables.MoveDown(c.Request.Context(), eventID, tableID)
	default:
		badRequest(c, `dir must be "up" or "down"`)
		return
	}
	if err != nil {
		respondError(c, eventLogger(c).WithField("table_id", tableID), err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

// AssignSeat seats one of a guest's seat-units at the table.
func (h *Handler) AssignSeat(c *gin.Context) {
	eventID, tableID := c.Param("eventId"), c.Param("tableId")

	var body seatRequest
	if !bindJSON(c, &body) {
		return
	}
	logger := eventLogger(c).WithFields(log.Fields{
		"table_id":        tableID,
		"guest_id":        body.GuestID,
		"companion_index": *body.CompanionIndex,
	})

	resolve := func(ctx context.Context) (seating.SeatUnit, error) {
		g, err := h.store.GetGuest(ctx, eventID, body.GuestID)
		if err != nil {
			return seating.SeatUnit{}, err
		}
		if g == nil {
			return seating.SeatUnit{}, apperrors.WithMetadata(apperrors.CodeNotFound,
				"guest not found", map[string]string{"guest_id": body.GuestID})
		}
		unit, ok := seating.SeatOf(guest.Normalize(*g), *body.CompanionIndex)
		if !ok {
			return seating.SeatUnit{}, apperrors.WithMetadata(apperrors.CodeNotFound,
				"guest has no such seat", map[string]string{
					"guest_id":        body.GuestID,
					"companion_index": strconv.Itoa(*body.CompanionIndex),
				})
		}
		return unit, nil
	}

	t, err := h.tables.AssignResolved(c.Request.Context(), eventID, tableID, body.GuestID, resolve)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("seat assigned")
	c.JSON(http.StatusOK, t)
}

func (h *Handler) UnassignSeat(c *gin.Context) {
	eventID, tableID, guestID := c.Param("eventId"), c.Param("tableId"), c.Param("guestId")

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "seat index must be an integer")
		return
	}

	t, err := h.tables.Unassign(c.Request.Context(), eventID, tableID, guestID, index)
	if err != nil {
		respondError(c, eventLogger(c).WithField("table_id", tableID), err)
		return
	}

	eventLogger(c).WithFields(log.Fields{
		"table_id":        tableID,
		"guest_id":        guestID,
		"companion_index": index,
	}).Info("seat unassigned")
	c.JSON(http.StatusOK, t)
}
