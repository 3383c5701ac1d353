package admin

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dimitarkovachev/seating/internal/apperrors"
	"github.com/dimitarkovachev/seating/internal/guest"
	"github.com/dimitarkovachev/seating/internal/seating"
	"github.com/dimitarkovachev/seating/internal/store"
)

// AdminStore defines the store operations needed by the admin handler.
type AdminStore interface {
	store.GuestStore
	seating.TableStore
	ListEvents(ctx context.Context) ([]string, error)
}

// Error is the body of every non-2xx admin response.
type Error struct {
	Message  string            `json:"message"`
	Code     string            `json:"code,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type Handler struct {
	store  AdminStore
	tables *seating.Manager
	now    func() time.Time
}

func NewHandler(s AdminStore) *Handler {
	return &Handler{
		store:  s,
		tables: seating.NewManager(s),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var eventIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// RegisterHandlers mounts the organizer routes on router.
func RegisterHandlers(router gin.IRouter, h *Handler) {
	router.GET("/admin/events", h.ListEvents)

	ev := router.Group("/admin/events/:eventId", requireEvent)

	ev.GET("/guests", h.ListGuests)
	ev.POST("/guests", h.CreateGuest)
	ev.GET("/guests/:id", h.GetGuest)
	ev.PUT("/guests/:id", h.UpdateGuest)
	ev.DELETE("/guests/:id", h.DeleteGuest)
	ev.POST("/guests/:id/sent", h.MarkSent)

	ev.GET("/stats", h.GetStats)
	ev.GET("/export", h.Export)
	ev.GET("/pool", h.GetPool)

	ev.GET("/tables", h.ListTables)
	ev.POST("/tables", h.CreateTable)
	ev.PUT("/tables/order", h.ReorderTables)
	ev.PUT("/tables/:tableId", h.UpdateTable)
	ev.DELETE("/tables/:tableId", h.DeleteTable)
	ev.POST("/tables/:tableId/move", h.MoveTable)
	ev.POST("/tables/:tableId/seats", h.AssignSeat)
	ev.DELETE("/tables/:tableId/seats/:guestId/:index", h.UnassignSeat)
}

func requireEvent(c *gin.Context) {
	if !eventIDPattern.MatchString(c.Param("eventId")) {
		c.AbortWithStatusJSON(http.StatusBadRequest, Error{
			Message: "invalid event id",
			Code:    string(apperrors.CodeInvalidArgument),
		})
		return
	}
	c.Next()
}

func eventLogger(c *gin.Context) *log.Entry {
	return log.WithField("event_id", c.Param("eventId"))
}

// respondError writes err as JSON. Domain errors keep their code and status;
// anything else is logged and hidden behind a 500.
func respondError(c *gin.Context, logger *log.Entry, err error) {
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeUnknown {
		if logger == nil {
			logger = log.NewEntry(log.StandardLogger())
		}
		logger.WithError(err).Error("admin request failed")
		c.JSON(http.StatusInternalServerError, Error{Message: "internal error"})
		return
	}

	var appErr *apperrors.Error
	errors.As(err, &appErr)
	c.JSON(code.HTTPStatus(), Error{
		Message:  appErr.Message,
		Code:     string(code),
		Metadata: appErr.Metadata,
	})
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondError(c, nil, apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid request body", err))
		return false
	}
	return true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Error{Message: msg, Code: string(apperrors.CodeInvalidArgument)})
}

// snapshot loads an event's guests and its tables (in display order)
// concurrently.
func (h *Handler) snapshot(ctx context.Context, eventID string) ([]guest.Guest, []seating.Table, error) {
	var (
		guests []guest.Guest
		tables []seating.Table
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		guests, err = h.store.ListGuests(ctx, eventID)
		return err
	})
	eg.Go(func() error {
		var err error
		tables, err = h.tables.List(ctx, eventID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	for i := range guests {
		guests[i] = guest.Normalize(guests[i])
	}
	return guests, tables, nil
}

func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.store.ListEvents(c.Request.Context())
	if err != nil {
		respondError(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
