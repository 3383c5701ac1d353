package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dimitarkovachev/seating/internal/export"
	"github.com/dimitarkovachev/seating/internal/guest"
	"github.com/dimitarkovachev/seating/internal/seating"
	"github.com/dimitarkovachev/seating/internal/stats"
	"github.com/dimitarkovachev/seating/internal/store"
)

const base = "/admin/events/boda"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAdminRouter(t *testing.T) *gin.Engine {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.NewBBoltStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	err = s.Seed("boda", []guest.Guest{
		{
			ID:         "g-ana",
			Name:       "Ana",
			Allotment:  guest.Counts{guest.Adults: 2, guest.Kids: 1},
			Companions: guest.Names{guest.Adults: {"Ana", "Luis"}, guest.Kids: {"Leo"}},
		},
		{
			ID:        "g-bruno",
			Name:      "Bruno",
			Status:    guest.StatusConfirmed,
			Allotment: guest.Counts{guest.Adults: 1},
		},
		{
			ID:        "g-carla",
			Name:      "Carla",
			Status:    guest.StatusDeclined,
			Allotment: guest.Counts{guest.Adults: 2},
		},
	}, []seating.Table{
		{ID: "t-1", Name: "Mesa 1", Capacity: 2},
		{ID: "t-2", Name: "Mesa 2", Capacity: 4},
	})
	if err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	h := NewHandler(s)
	r := gin.New()
	RegisterHandlers(r, h)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
	return v
}

func expectCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, w.Code, w.Body.String())
	}
	if code == "" {
		return
	}
	if e := decode[Error](t, w); e.Code != code {
		t.Fatalf("expected code %s, got %+v", code, e)
	}
}

func TestHandler_ListEvents(t *testing.T) {
	r := setupAdminRouter(t)

	w := do(t, r, http.MethodGet, "/admin/events", nil)
	expectCode(t, w, http.StatusOK, "")
	if events := decode[[]string](t, w); !reflect.DeepEqual(events, []string{"boda"}) {
		t.Fatalf("unexpected events: %v", events)
	}
}

func TestHandler_InvalidEventID(t *testing.T) {
	r := setupAdminRouter(t)

	w := do(t, r, http.MethodGet, "/admin/events/bad.event/guests", nil)
	expectCode(t, w, http.StatusBadRequest, "INVALID_ARGUMENT")
}

func TestHandler_ListGuests(t *testing.T) {
	r := setupAdminRouter(t)

	w := do(t, r, http.MethodGet, base+"/guests", nil)
	expectCode(t, w, http.StatusOK, "")
	guests := decode[[]guest.Guest](t, w)
	if len(guests) != 3 || guests[0].Name != "Ana" || guests[2].Name != "Carla" {
		t.Fatalf("expected guests sorted by name, got %+v", guests)
	}

	w = do(t, r, http.MethodGet, base+"/guests?status=confirmed", nil)
	if guests := decode[[]guest.Guest](t, w); len(guests) != 1 || guests[0].ID != "g-bruno" {
		t.Fatalf("unexpected filtered guests: %+v", guests)
	}

	w = do(t, r, http.MethodGet, base+"/guests?status=maybe", nil)
	expectCode(t, w, http.StatusBadRequest, "INVALID_ARGUMENT")

	w = do(t, r, http.MethodGet, "/admin/events/empty/guests", nil)
	if guests := decode[[]guest.Guest](t, w); len(guests) != 0 {
		t.Fatalf("expected no guests for unknown event, got %+v", guests)
	}
}

func TestHandler_CreateGuest(t *testing.T) {
	r := setupAdminRouter(t)

	w := do(t, r, http.MethodPost, base+"/guests", map[string]any{
		"name":      "  Dario ",
		"allotment": map[string]int{"teens": 1, "infants": 1},
	})
	expectCode(t, w, http.StatusCreated, "")
	g := decode[guest.Guest](t, w)
	if g.ID == "" || g.Name != "Dario" || g.Status != guest.StatusPending {
		t.Fatalf("unexpected guest: %+v", g)
	}
	if teens := g.Companions[guest.Teens]; len(teens) != 1 || teens[0] != "Dario" {
		t.Fatalf("expected primary in teens slot 0, got %q", teens)
	}

	w = do(t, r, http.MethodGet, base+"/guests/"+g.ID, nil)
	expectCode(t, w, http.StatusOK, "")
}

func TestHandler_CreateGuest_Invalid(t *testing.T) {
	r := setupAdminRouter(t)

	w := do(t, r, http.MethodPost, base+"/guests", map[string]any{"allotment": map[string]int{"adults": 1}})
	expectCode(t, w, http.StatusBadRequest, "INVALID_ARGUMENT")

	w = do(t, r, http.MethodPost, base+"/guests", map[string]any{"name": "X", "allotment": map[string]int{"elders": 1}})
	expectCode(t, w, http.StatusBadRequest, "INVALID_ARGUMENT")
}

func TestHandler_GetGuest_NotFound(t *testing.T) {
	r := setupAdminRouter(t)

	w := do(t, r, http.MethodGet, base+"/guests/nope", nil)
	expectCode(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestHandler_UpdateGuest_GrowShrinkGrowAcrossRequests(t *testing.T) {
	r := setupAdminRouter(t)

	w := do(t, r, http.MethodPut, base+"/guests/g-ana", map[string]any{
		"allotment": map[string]int{"adults": 1, "kids": 1},
	})
	expectCode(t, w, http.StatusOK, "")
	if g := decode[guest.Guest](t, w); !reflect.DeepEqual(g.Companions[guest.Adults], []string{"Ana"}) {
		t.Fatalf("expected shrunk adults, got %q", g.Companions[guest.Adults])
	}

	w = do(t, r, http.MethodPut, base+"/guests/g-ana", map[string]any{
		"allotment": map[string]int{"adults": 2, "kids": 1},
	})
	expectCode(t, w, http.StatusOK, "")
	g := decode[guest.Guest](t, w)
	if !reflect.DeepEqual(g.Companions[guest.Adults], []string{"Ana", "Luis"}) {
		t.Fatalf("expected Luis restored, got %q", g.Companions[guest.Adults])
	}
	if !reflect.DeepEqual(g.Companions[guest.Kids], []string{"Leo"}) {
		t.Fatalf("expected kids untouched, got %q", g.Companions[guest.Kids])
	}
}

func TestHandler_UpdateGuest_StatusAndRename(t *testing.T) {
	r := setupAdminRouter(t)

	w := do(t, r, http.MethodPut, base+"/guests/g-ana", map[string]any{
		"name":      "Ana María",
		"status":    "confirmed",
		"confirmed": map[string]int{"adults": 2},
	})
	expectCode(t, w, http.StatusOK, "")
	g := decode[guest.Guest](t, w)
	if g.Status != guest.StatusConfirmed || g.Confirmed[guest.Kids] != 0 {
		t.Fatalf("unexpected guest: %+v", g)
	}
	if !reflect.DeepEqual(g.Companions[guest.Adults], []string{"Ana María", "Luis"}) {
		t.Fatalf("expected renamed primary pinned, got %q", g.Companions[guest.Adults])
	}

	w = do(t, r, http.MethodPut, base+"/guests/g-ana", map[string]any{"status": "maybe"})
	expectCode(t, w, http.StatusBadRequest, "INVALID_ARGUMENT")

	w = do(t, r, http.MethodPut, base+"/guests/g-ana", map[string]any{"name": "  "})
	expectCode(t, w, http.StatusBadRequest, "INVALID_ARGUMENT")

	w = do(t, r, http.MethodPut, base+"/guests/nope", map[string]any{"notes": "x"})
	expectCode(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestHandler_MarkSent(t *testing.T) {
	r := setupAdminRouter(t)

	w := do(t, r, http.MethodPost, base+"/guests/g-bruno/sent", nil)
	expectCode(t, w, http.StatusOK, "")
	if g := decode[guest.Guest](t, w); !g.Sent {
		t.Fatal("expected sent=true")
	}
}

func TestHandler_GetStats(t *testing.T) {
	r := setupAdminRouter(t)

	do(t, r, http.MethodPost, base+"/tables/t-2/seats", map[string]any{"guest_id": "g-bruno", "companion_index": -1})

	w := do(t, r, http.MethodGet, base+"/stats", nil)
	expectCode(t, w, http.StatusOK, "")
	s := decode[stats.Stats](t, w)
	if s.Total != 6 || s.Yes != 1 || s.No != 2 || s.Pending != 3 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.ByCategory[guest.Kids].Pending != 1 || s.Seated != 1 {
		t.Fatalf("unexpected breakdown: %+v", s)
	}
}

func TestHandler_GetPool(t *testing.T) {
	r := setupAdminRouter(t)

	w := do(t, r, http.MethodGet, base+"/pool", nil)
	expectCode(t, w, http.StatusOK, "")
	pool := decode[[]seating.SeatUnit](t, w)
	if len(pool) != 4 {
		t.Fatalf("expected 4 units, got %+v", pool)
	}
	if pool[1].Name != "Luis" || pool[2].Name != "Leo" || pool[2].CompanionIndex != 1 {
		t.Fatalf("unexpected pool: %+v", pool)
	}
}

func TestHandler_Export(t *testing.T) {
	r := setupAdminRouter(t)

	w := do(t, r, http.MethodGet, base+"/export", nil)
	expectCode(t, w, http.StatusOK, "")
	rows := decode[[]export.Row](t, w)
	var names []string
	for _, row := range rows {
		names = append(names, row.Name)
	}
	if want := []string{"Bruno", "Ana", "Luis", "Leo", "Carla"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}

	w = do(t, r, http.MethodGet, base+"/export?format=csv", nil)
	expectCode(t, w, http.StatusOK, "")
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 6 || lines[1] != "Bruno,adults,confirmed,Bruno,primary" {
		t.Fatalf("unexpected csv: %q", w.Body.String())
	}

	w = do(t, r, http.MethodGet, base+"/export?format=xml", nil)
	expectCode(t, w, http.StatusBadRequest, "INVALID_ARGUMENT")
}

func TestHandler_SeatAssignment(t *testing.T) {
	r := setupAdminRouter(t)
	seat := func(table, guestID string, index int) *httptest.ResponseRecorder {
		return do(t, r, http.MethodPost, base+"/tables/"+table+"/seats", map[string]any{
			"guest_id":        guestID,
			"companion_index": index,
		})
	}

	w := seat("t-1", "g-ana", -1)
	expectCode(t, w, http.StatusOK, "")
	w = seat("t-1", "g-ana", 0)
	expectCode(t, w, http.StatusOK, "")
	if tbl := decode[seating.Table](t, w); len(tbl.Occupants) != 2 || tbl.Occupants[1].Name != "Luis" {
		t.Fatalf("unexpected occupants: %+v", tbl.Occupants)
	}

	expectCode(t, seat("t-1", "g-bruno", -1), http.StatusConflict, "CAPACITY_EXCEEDED")
	expectCode(t, seat("t-2", "g-ana", -1), http.StatusConflict, "ALREADY_SEATED")
	expectCode(t, seat("t-2", "g-carla", -1), http.StatusNotFound, "NOT_FOUND")
	expectCode(t, seat("t-2", "g-ana", 7), http.StatusNotFound, "NOT_FOUND")
	expectCode(t, seat("t-9", "g-bruno", -1), http.StatusNotFound, "NOT_FOUND")

	w = do(t, r, http.MethodGet, base+"/pool", nil)
	if pool := decode[[]seating.SeatUnit](t, w); len(pool) != 2 {
		t.Fatalf("expected seated units out of the pool, got %+v", pool)
	}

	w = do(t, r, http.MethodDelete, base+"/tables/t-1/seats/g-ana/0", nil)
	expectCode(t, w, http.StatusOK, "")
	w = do(t, r, http.MethodDelete, base+"/tables/t-1/seats/g-ana/0", nil)
	expectCode(t, w, http.StatusNotFound, "NOT_FOUND")
	w = do(t, r, http.MethodDelete, base+"/tables/t-1/seats/g-ana/x", nil)
	expectCode(t, w, http.StatusBadRequest, "INVALID_ARGUMENT")
}

func TestHandler_DeleteGuestCascades(t *testing.T) {
	r := setupAdminRouter(t)

	do(t, r, http.MethodPost, base+"/tables/t-1/seats", map[string]any{"guest_id": "g-ana", "companion_index": -1})
	do(t, r, http.MethodPost, base+"/tables/t-2/seats", map[string]any{"guest_id": "g-ana", "companion_index": 1})

	w := do(t, r, http.MethodDelete, base+"/guests/g-ana", nil)
	expectCode(t, w, http.StatusOK, "")
	if body := decode[map[string]any](t, w); body["unseated"] != float64(2) {
		t.Fatalf("expected 2 seats removed, got %v", body)
	}

	w = do(t, r, http.MethodGet, base+"/tables", nil)
	for _, tbl := range decode[[]seating.Table](t, w) {
		if len(tbl.Occupants) != 0 {
			t.Fatalf("expected empty tables, got %+v", tbl)
		}
	}
	expectCode(t, do(t, r, http.MethodGet, base+"/guests/g-ana", nil), http.StatusNotFound, "NOT_FOUND")
}

func TestHandler_ListTables_RefreshesNames(t *testing.T) {
	r := setupAdminRouter(t)

	do(t, r, http.MethodPost, base+"/tables/t-1/seats", map[string]any{"guest_id": "g-ana", "companion_index": -1})
	do(t, r, http.MethodPut, base+"/guests/g-ana", map[string]any{"name": "Ana María"})

	w := do(t, r, http.MethodGet, base+"/tables", nil)
	expectCode(t, w, http.StatusOK, "")
	tables := decode[[]seating.Table](t, w)
	if tables[0].ID != "t-1" || tables[0].Occupants[0].Name != "Ana María" {
		t.Fatalf("expected refreshed occupant name, got %+v", tables[0])
	}
}

func TestHandler_TableLifecycle(t *testing.T) {
	r := setupAdminRouter(t)
	ids := func(w *httptest.ResponseRecorder) []string {
		var out []string
		for _, tbl := range decode[[]seating.Table](t, w) {
			out = append(out, tbl.ID)
		}
		return out
	}

	w := do(t, r, http.MethodPost, base+"/tables", map[string]any{"name": "Mesa 3", "capacity": 6})
	expectCode(t, w, http.StatusCreated, "")
	created := decode[seating.Table](t, w)

	expectCode(t, do(t, r, http.MethodPost, base+"/tables", map[string]any{"name": "Mesa 4"}), http.StatusBadRequest, "INVALID_ARGUMENT")
	expectCode(t, do(t, r, http.MethodPost, base+"/tables", map[string]any{"name": "Mesa 4", "capacity": -2}), http.StatusBadRequest, "INVALID_ARGUMENT")

	w = do(t, r, http.MethodPost, base+"/tables/"+created.ID+"/move?dir=up", nil)
	expectCode(t, w, http.StatusOK, "")
	if got, want := ids(w), []string{"t-1", created.ID, "t-2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	expectCode(t, do(t, r, http.MethodPost, base+"/tables/t-1/move?dir=left", nil), http.StatusBadRequest, "INVALID_ARGUMENT")

	w = do(t, r, http.MethodPut, base+"/tables/order", map[string]any{"ids": []string{"t-2"}})
	expectCode(t, w, http.StatusOK, "")
	if got, want := ids(w), []string{"t-2", "t-1", created.ID}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	expectCode(t, do(t, r, http.MethodPut, base+"/tables/order", map[string]any{"ids": []string{"t-7"}}), http.StatusNotFound, "NOT_FOUND")

	do(t, r, http.MethodPost, base+"/tables/t-2/seats", map[string]any{"guest_id": "g-ana", "companion_index": -1})
	do(t, r, http.MethodPost, base+"/tables/t-2/seats", map[string]any{"guest_id": "g-ana", "companion_index": 0})
	w = do(t, r, http.MethodPut, base+"/tables/t-2", map[string]any{"name": "Principal", "capacity": 1})
	expectCode(t, w, http.StatusOK, "")
	if resp := decode[tableResponse](t, w); !resp.OverCapacity || resp.Name != "Principal" || len(resp.Occupants) != 2 {
		t.Fatalf("expected over-capacity warning without eviction, got %+v", resp)
	}

	expectCode(t, do(t, r, http.MethodDelete, base+"/tables/t-2", nil), http.StatusOK, "")
	expectCode(t, do(t, r, http.MethodDelete, base+"/tables/t-2", nil), http.StatusNotFound, "NOT_FOUND")

	w = do(t, r, http.MethodGet, base+"/pool", nil)
	if pool := decode[[]seating.SeatUnit](t, w); len(pool) != 4 {
		t.Fatalf("expected deleted table's occupants back in the pool, got %+v", pool)
	}
}
