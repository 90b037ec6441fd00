package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xraph/khata"
	"github.com/xraph/khata/api"
	"github.com/xraph/khata/export/xlsx"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/store/memory"
)

type server struct {
	t      *testing.T
	router *gin.Engine
	now    time.Time
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &server{t: t, now: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	k := khata.New(memory.New(),
		khata.WithClock(func() time.Time { return s.now }),
		khata.WithLocation(time.UTC),
		khata.WithLogger(logger),
		khata.WithPlugin(xlsx.New()),
	)
	if err := k.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = k.Stop() }) //nolint:errcheck // test cleanup

	s.router = api.New(k, api.WithLogger(logger)).Router("")
	return s
}

func (s *server) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/khata"+path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) expect(w *httptest.ResponseRecorder, status int, out any) {
	s.t.Helper()
	if w.Code != status {
		s.t.Fatalf("status = %d, want %d: %s", w.Code, status, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			s.t.Fatalf("decode %s: %v", w.Body.String(), err)
		}
	}
}

type shopResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type billResponse struct {
	ID          string `json:"id"`
	Number      string `json:"bill_number"`
	TotalAmount string `json:"total_amount"`
	Items       []struct {
		ID string `json:"id"`
	} `json:"items"`
}

type errorBody struct {
	Error       string `json:"error"`
	Field       string `json:"field"`
	Pending     string `json:"pending_amount"`
	CreditLimit string `json:"credit_limit"`
}

var oneItem = map[string]any{
	"items": []map[string]any{{"number_of_bags": 2, "weight_kg": "50", "rate_per_kg": "10.00"}},
}

func (s *server) createShop(name, deposit string) shopResponse {
	s.t.Helper()
	var sh shopResponse
	s.expect(s.do(http.MethodPost, "/shops", map[string]any{"name": name, "initial_deposit": deposit}), http.StatusCreated, &sh)
	return sh
}

func TestShopLifecycle(t *testing.T) {
	s := newServer(t)
	sh := s.createShop("Sharma Traders", "1000.00")

	var got shopResponse
	s.expect(s.do(http.MethodGet, "/shops/"+sh.ID, nil), http.StatusOK, &got)
	if got.Name != "Sharma Traders" {
		t.Errorf("name = %q", got.Name)
	}

	var dup errorBody
	s.expect(s.do(http.MethodPost, "/shops", map[string]any{"name": "Sharma Traders"}), http.StatusConflict, &dup)

	s.expect(s.do(http.MethodPut, "/shops/"+sh.ID, map[string]any{"address": "Main Road"}), http.StatusOK, nil)

	var bal struct {
		TotalDeposits string `json:"total_deposits"`
		CreditLimit   string `json:"credit_limit"`
		CanCreateBill bool   `json:"can_create_bill"`
	}
	s.expect(s.do(http.MethodGet, "/shops/"+sh.ID+"/balance", nil), http.StatusOK, &bal)
	if bal.TotalDeposits != "1000.00" || bal.CreditLimit != "5000.00" || !bal.CanCreateBill {
		t.Errorf("balance = %+v", bal)
	}

	var list struct {
		Shops []shopResponse `json:"shops"`
	}
	s.expect(s.do(http.MethodGet, "/shops?active=true", nil), http.StatusOK, &list)
	if len(list.Shops) != 1 {
		t.Errorf("shops = %+v", list.Shops)
	}

	s.expect(s.do(http.MethodDelete, "/shops/"+sh.ID, nil), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodGet, "/shops/"+sh.ID, nil), http.StatusNotFound, nil)
}

func TestErrorStatuses(t *testing.T) {
	s := newServer(t)
	missing := id.New(id.PrefixShop).String()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		field  string
	}{
		{"malformed id", http.MethodGet, "/shops/not-an-id", nil, http.StatusBadRequest, "id"},
		{"wrong id kind", http.MethodGet, "/bills/" + missing, nil, http.StatusBadRequest, "id"},
		{"unknown shop", http.MethodGet, "/shops/" + missing, nil, http.StatusNotFound, ""},
		{"empty name", http.MethodPost, "/shops", map[string]any{"name": " "}, http.StatusBadRequest, "name"},
		{"bad date", http.MethodGet, "/statistics?from=01-01-2024", nil, http.StatusBadRequest, "from"},
		{"range too long", http.MethodGet, "/statistics?from=2023-01-01&to=2024-12-31", nil, http.StatusBadRequest, "end_date"},
		{"negative limit", http.MethodGet, "/bills?limit=-1", nil, http.StatusBadRequest, "limit"},
		{"settings without cost", http.MethodPut, "/settings", map[string]any{}, http.StatusBadRequest, "gunny_bag_cost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			s.expect(s.do(tt.method, tt.path, tt.body), tt.status, &body)
			if body.Error == "" {
				t.Error("missing error message")
			}
			if tt.field != "" && body.Field != tt.field {
				t.Errorf("field = %q, want %q", body.Field, tt.field)
			}
		})
	}
}

func TestBillFlow(t *testing.T) {
	s := newServer(t)
	s.expect(s.do(http.MethodPut, "/settings", map[string]any{"gunny_bag_cost": "5.00"}), http.StatusOK, nil)
	sh := s.createShop("Sharma Traders", "100.00")

	var b billResponse
	s.expect(s.do(http.MethodPost, "/shops/"+sh.ID+"/bills", oneItem), http.StatusCreated, &b)
	if b.Number != "BILL-20240101-0001" || b.TotalAmount != "1010.00" {
		t.Fatalf("bill = %+v", b)
	}

	// Pending 1010.00 has reached the 500.00 limit.
	var refused errorBody
	s.expect(s.do(http.MethodPost, "/shops/"+sh.ID+"/bills", oneItem), http.StatusUnprocessableEntity, &refused)
	if refused.Pending != "1010.00" || refused.CreditLimit != "500.00" {
		t.Errorf("refusal = %+v", refused)
	}

	// A payment brings pending below the limit again.
	s.expect(s.do(http.MethodPost, "/shops/"+sh.ID+"/payments", map[string]any{"amount": "600"}), http.StatusCreated, nil)
	var second billResponse
	s.expect(s.do(http.MethodPost, "/shops/"+sh.ID+"/bills", oneItem), http.StatusCreated, &second)
	if second.Number != "BILL-20240101-0002" {
		t.Errorf("second number = %q", second.Number)
	}

	var added billResponse
	s.expect(s.do(http.MethodPost, "/bills/"+b.ID+"/items",
		map[string]any{"number_of_bags": 1, "weight_kg": "10", "rate_per_kg": "2.50"}), http.StatusCreated, &added)
	if added.TotalAmount != "1040.00" || len(added.Items) != 2 {
		t.Errorf("after add = %+v", added)
	}

	var removed billResponse
	s.expect(s.do(http.MethodDelete, "/items/"+added.Items[1].ID, nil), http.StatusOK, &removed)
	if removed.TotalAmount != "1010.00" {
		t.Errorf("after remove = %+v", removed)
	}

	var today struct {
		Date  string         `json:"date"`
		Bills []billResponse `json:"bills"`
	}
	s.expect(s.do(http.MethodGet, "/bills/today?shop="+sh.ID, nil), http.StatusOK, &today)
	if today.Date != "2024-01-01" || len(today.Bills) != 2 {
		t.Errorf("today = %+v", today)
	}

	// Bills are frozen once their date has passed.
	s.now = s.now.AddDate(0, 0, 1)
	s.expect(s.do(http.MethodPut, "/bills/"+b.ID, oneItem), http.StatusConflict, nil)

	s.expect(s.do(http.MethodDelete, "/bills/"+second.ID, nil), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodGet, "/bills/"+second.ID, nil), http.StatusNotFound, nil)
}

func TestBlankItemRowsAreSkipped(t *testing.T) {
	s := newServer(t)
	sh := s.createShop("Blank Rows", "100.00")

	withBlank := map[string]any{
		"items": []map[string]any{
			{"number_of_bags": 3, "weight_kg": "100", "rate_per_kg": "20"},
			{},
		},
	}
	var b billResponse
	s.expect(s.do(http.MethodPost, "/shops/"+sh.ID+"/bills", withBlank), http.StatusCreated, &b)
	if len(b.Items) != 1 || b.TotalAmount != "6000.00" {
		t.Fatalf("bill = %+v", b)
	}

	var edited billResponse
	s.expect(s.do(http.MethodPut, "/bills/"+b.ID, withBlank), http.StatusOK, &edited)
	if len(edited.Items) != 1 {
		t.Errorf("edited items = %d, want 1", len(edited.Items))
	}
}

func TestExport(t *testing.T) {
	s := newServer(t)
	sh := s.createShop("Sharma Traders", "1000.00")

	var b billResponse
	s.expect(s.do(http.MethodPost, "/shops/"+sh.ID+"/bills", oneItem), http.StatusCreated, &b)

	w := s.do(http.MethodGet, "/bills/"+b.ID+"/export/xlsx", nil)
	s.expect(w, http.StatusOK, nil)
	if ct := w.Header().Get("Content-Type"); ct != xlsx.ContentType {
		t.Errorf("content type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("empty workbook")
	}

	s.expect(s.do(http.MethodGet, "/statistics/export/xlsx?from=2024-01-01&to=2024-01-31", nil), http.StatusOK, nil)
	s.expect(s.do(http.MethodGet, "/bills/"+b.ID+"/export/csv", nil), http.StatusNotImplemented, nil)
}

func TestReports(t *testing.T) {
	s := newServer(t)
	sh := s.createShop("Sharma Traders", "1000.00")
	s.expect(s.do(http.MethodPost, "/shops/"+sh.ID+"/bills", oneItem), http.StatusCreated, nil)

	var stats struct {
		BillCount   int    `json:"total_bills"`
		TotalAmount string `json:"total_amount"`
	}
	s.expect(s.do(http.MethodGet, "/statistics", nil), http.StatusOK, &stats)
	if stats.BillCount != 1 || stats.TotalAmount != "1000.00" {
		t.Errorf("statistics = %+v", stats)
	}

	var days struct {
		Days []struct {
			Date      string `json:"date"`
			BillCount int    `json:"bill_count"`
		} `json:"days"`
	}
	s.expect(s.do(http.MethodGet, "/shops/"+sh.ID+"/day-wise?from=2023-12-31&to=2024-01-01", nil), http.StatusOK, &days)
	if len(days.Days) != 2 || days.Days[1].BillCount != 1 {
		t.Errorf("day-wise = %+v", days.Days)
	}

	s.expect(s.do(http.MethodGet, "/day-wise?shop="+sh.ID, nil), http.StatusOK, nil)
	s.expect(s.do(http.MethodGet, "/dashboard", nil), http.StatusOK, nil)
}
