package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"
	log "github.com/sirupsen/logrus"

	"github.com/dimitarkovachev/seating/internal/guest"
	"github.com/dimitarkovachev/seating/internal/store"
)

// Handler implements ServerInterface.
type Handler struct {
	store store.GuestStore
	now   func() time.Time
}

func NewHandler(s store.GuestStore) *Handler {
	return &Handler{store: s, now: func() time.Time { return time.Now().UTC() }}
}

var _ ServerInterface = (*Handler)(nil)

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) GetInvite(c *gin.Context, eventId EventId, id openapi_types.UUID) {
	logger := log.WithFields(log.Fields{"event_id": eventId, "guest_id": id.String()})

	g, err := h.store.GetGuest(c.Request.Context(), eventId, id.String())
	if err != nil {
		logger.WithError(err).Error("failed to get guest")
		c.JSON(http.StatusInternalServerError, Error{Message: "internal error"})
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, Error{Message: "invite not found"})
		return
	}

	logger.Info("invite viewed")
	c.JSON(http.StatusOK, guestToInvite(guest.Normalize(*g), id))
}

func (h *Handler) PutInvite(c *gin.Context, eventId EventId, id openapi_types.UUID) {
	logger := log.WithFields(log.Fields{"event_id": eventId, "guest_id": id.String()})

	var body PutInviteJSONRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, Error{Message: "invalid request body"})
		return
	}

	g, err := h.store.GetGuest(c.Request.Context(), eventId, id.String())
	if err != nil {
		logger.WithError(err).Error("failed to get guest")
		c.JSON(http.StatusInternalServerError, Error{Message: "internal error"})
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, Error{Message: "invite not found"})
		return
	}

	resp := guest.Response{Attending: body.Attending}
	if body.Confirmed != nil {
		resp.Confirmed = countsFromAPI(*body.Confirmed)
	}
	if body.Companions != nil {
		resp.Companions = namesFromAPI(*body.Companions)
	}
	if body.Notes != nil {
		resp.Notes = *body.Notes
	}

	updated := guest.Resolve(*g, resp, h.now())
	if err := h.store.SaveGuest(c.Request.Context(), eventId, updated); err != nil {
		logger.WithError(err).Error("failed to save rsvp")
		c.JSON(http.StatusInternalServerError, Error{Message: "internal error"})
		return
	}

	logger.WithFields(log.Fields{
		"status":    updated.Status,
		"confirmed": guest.EffectiveConfirmed(updated).Total(),
	}).Info("rsvp recorded")
	c.JSON(http.StatusOK, guestToInvite(updated, id))
}

func guestToInvite(g guest.Guest, id openapi_types.UUID) Invite {
	inv := Invite{
		Id:          id,
		Name:        g.Name,
		Status:      InviteStatus(g.Status),
		Allotment:   countsToAPI(g.Allotment),
		Confirmed:   countsToAPI(g.Confirmed),
		Companions:  namesToAPI(g.Companions),
		RespondedAt: g.RespondedAt,
	}
	if g.Notes != "" {
		inv.Notes = &g.Notes
	}
	return inv
}

func countsToAPI(c guest.Counts) Counts {
	at := func(cat guest.Category) *int {
		v := c.Get(cat)
		return &v
	}
	return Counts{
		Adults:  at(guest.Adults),
		Teens:   at(guest.Teens),
		Kids:    at(guest.Kids),
		Infants: at(guest.Infants),
	}
}

func countsFromAPI(c Counts) guest.Counts {
	out := guest.Counts{}
	for cat, v := range map[guest.Category]*int{
		guest.Adults:  c.Adults,
		guest.Teens:   c.Teens,
		guest.Kids:    c.Kids,
		guest.Infants: c.Infants,
	} {
		if v != nil {
			out[cat] = *v
		}
	}
	return out
}

func namesToAPI(n guest.Names) Names {
	at := func(cat guest.Category) *NameList {
		v := append(NameList{}, n.Get(cat)...)
		return &v
	}
	return Names{
		Adults:  at(guest.Adults),
		Teens:   at(guest.Teens),
		Kids:    at(guest.Kids),
		Infants: at(guest.Infants),
	}
}

func namesFromAPI(n Names) guest.Names {
	out := guest.Names{}
	for cat, v := range map[guest.Category]*NameList{
		guest.Adults:  n.Adults,
		guest.Teens:   n.Teens,
		guest.Kids:    n.Kids,
		guest.Infants: n.Infants,
	} {
		if v != nil {
			out[cat] = *v
		}
	}
	return out
}
