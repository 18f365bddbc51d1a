package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medication-reminder/internal/adapters/storage/kvstore"
	"medication-reminder/internal/platform/logger"
)

func newTestRouter() http.Handler {
	return NewRouter(Options{
		KV:  kvstore.NewMemory(),
		Log: logger.Nop(),
	})
}

func doReq(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func seedCatalog(t *testing.T, h http.Handler) {
	t.Helper()
	rec := doReq(t, h, http.MethodPost, "/catalog/seed", map[string]any{
		"entries": []map[string]any{
			{"name": "Paracetamol", "doses": []string{"500 mg", "1 g"}},
			{"name": "Comparatol", "doses": []string{"100 mg"}},
			{"name": "Ibuprofeno", "doses": []string{"200 mg", "400 mg"}},
		},
	}, map[string]string{"X-Debug-User-ID": "seeder"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("seed failed: %d %s", rec.Code, rec.Body.String())
	}
}

type medicineJSON struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Dose          string   `json:"dose"`
	Times         []string `json:"times"`
	SelectedDates []string `json:"selected_dates"`
	Owner         string   `json:"owner"`
}

type saveJSON struct {
	Medicine medicineJSON `json:"medicine"`
	Schedule struct {
		Requested int    `json:"requested"`
		Scheduled int    `json:"scheduled"`
		Tier      string `json:"tier"`
		Message   string `json:"message"`
	} `json:"schedule"`
}

func TestHealth(t *testing.T) {
	rec := doReq(t, newTestRouter(), http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateMedicine_EndToEnd(t *testing.T) {
	h := newTestRouter()
	seedCatalog(t, h)

	rec := doReq(t, h, http.MethodPost, "/medicines", map[string]any{
		"name":           "Paracetamol",
		"dose":           "500 mg",
		"times":          []string{"08:00", "20:00"},
		"selected_dates": []string{"2026-03-10"},
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var got saveJSON
	decode(t, rec, &got)
	if got.Medicine.ID == "" {
		t.Fatalf("expected generated id")
	}
	if got.Medicine.Owner != "guest" {
		t.Fatalf("expected guest partition, got %s", got.Medicine.Owner)
	}
	if len(got.Medicine.Times) != 2 {
		t.Fatalf("expected 2 resolved times, got %v", got.Medicine.Times)
	}
	if got.Schedule.Tier != "all" || got.Schedule.Scheduled != 2 {
		t.Fatalf("expected all-scheduled, got %+v", got.Schedule)
	}

	// Aparece en el listado de la misma partición.
	rec = doReq(t, h, http.MethodGet, "/medicines", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list []medicineJSON
	decode(t, rec, &list)
	if len(list) != 1 || list[0].ID != got.Medicine.ID {
		t.Fatalf("expected created medicine in list, got %+v", list)
	}
}

func TestCreateMedicine_DuplicateTimes_IsBadRequest(t *testing.T) {
	h := newTestRouter()
	seedCatalog(t, h)

	rec := doReq(t, h, http.MethodPost, "/medicines", map[string]any{
		"name":           "Paracetamol",
		"dose":           "500 mg",
		"times":          []string{"08:00", "08:00"},
		"selected_dates": []string{"2026-03-10"},
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateMedicine_UnknownDose_IsBadRequest(t *testing.T) {
	h := newTestRouter()
	seedCatalog(t, h)

	rec := doReq(t, h, http.MethodPost, "/medicines", map[string]any{
		"name":           "Paracetamol",
		"dose":           "750 mg",
		"times":          []string{"08:00"},
		"selected_dates": []string{"2026-03-10"},
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSearchCatalog_PrefixRanking(t *testing.T) {
	h := newTestRouter()
	seedCatalog(t, h)

	rec := doReq(t, h, http.MethodGet, "/catalog/search?q=para", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got []struct {
		Name string `json:"name"`
	}
	decode(t, rec, &got)
	if len(got) != 1 || got[0].Name != "Paracetamol" {
		t.Fatalf("expected [Paracetamol] (prefix tier), got %+v", got)
	}
}

func TestAlarmAction_Take_WritesHistory(t *testing.T) {
	h := newTestRouter()
	seedCatalog(t, h)

	rec := doReq(t, h, http.MethodPost, "/medicines", map[string]any{
		"name":           "Ibuprofeno",
		"dose":           "400 mg",
		"times":          []string{"08:00"},
		"selected_dates": []string{"2026-03-10"},
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var created saveJSON
	decode(t, rec, &created)

	instant := created.Medicine.Times[0]
	if _, err := time.Parse(time.RFC3339, instant); err != nil {
		t.Fatalf("resolved time not RFC3339: %q", instant)
	}

	rec = doReq(t, h, http.MethodPost, "/medicines/"+created.Medicine.ID+"/alarm-actions", map[string]any{
		"instant": instant,
		"action":  "take",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("alarm-action: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var after medicineJSON
	decode(t, rec, &after)
	if len(after.Times) != 0 {
		t.Fatalf("expected occurrence consumed, got %v", after.Times)
	}

	rec = doReq(t, h, http.MethodGet, "/history", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", rec.Code)
	}
	var entries []struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	decode(t, rec, &entries)
	if len(entries) != 1 || entries[0].Status != "Tomado" || entries[0].Name != "Ibuprofeno" {
		t.Fatalf("expected one Tomado entry, got %+v", entries)
	}
}

func TestUserPartition_IsSeparateFromGuest(t *testing.T) {
	h := newTestRouter()
	seedCatalog(t, h)

	user := map[string]string{"X-Debug-User-ID": "user-1"}
	rec := doReq(t, h, http.MethodPost, "/medicines", map[string]any{
		"name":           "Paracetamol",
		"dose":           "1 g",
		"times":          []string{"09:00"},
		"selected_dates": []string{"2026-03-10"},
	}, user)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}

	rec = doReq(t, h, http.MethodGet, "/medicines", nil, nil)
	var guestList []medicineJSON
	decode(t, rec, &guestList)
	if len(guestList) != 0 {
		t.Fatalf("guest must not see user medicines, got %+v", guestList)
	}

	rec = doReq(t, h, http.MethodGet, "/medicines", nil, user)
	var userList []medicineJSON
	decode(t, rec, &userList)
	if len(userList) != 1 {
		t.Fatalf("expected 1 user medicine, got %+v", userList)
	}
}

func TestDeleteMedicine_RemovesFromList(t *testing.T) {
	h := newTestRouter()
	seedCatalog(t, h)

	rec := doReq(t, h, http.MethodPost, "/medicines", map[string]any{
		"name":           "Paracetamol",
		"dose":           "500 mg",
		"times":          []string{"10:00"},
		"selected_dates": []string{"2026-03-10"},
	}, nil)
	var created saveJSON
	decode(t, rec, &created)

	rec = doReq(t, h, http.MethodDelete, "/medicines/"+created.Medicine.ID, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doReq(t, h, http.MethodGet, "/medicines/"+created.Medicine.ID, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}
