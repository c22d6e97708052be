package locker_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/gxcam/generichttp"
	"github.com/nasa-jpl/gxcam/server/middleware/locker"
)

type table generichttp.RouteTable

func (t table) RT() generichttp.RouteTable { return generichttp.RouteTable(t) }

func setup() (*locker.Locker, http.Handler) {
	l := locker.New()
	rt := table{
		{Method: http.MethodGet, Path: "/thing"}: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	}
	locker.Inject(rt, l)
	r := chi.NewRouter()
	r.Use(l.Check)
	rt.RT().Bind(r)
	return l, r
}

func do(h http.Handler, method, path, body string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestLockedRoutesReturn423(t *testing.T) {
	l, h := setup()
	if code := do(h, http.MethodGet, "/thing", ""); code != http.StatusOK {
		t.Fatalf("expected 200 before locking, got %d", code)
	}
	l.Lock()
	if code := do(h, http.MethodGet, "/thing", ""); code != http.StatusLocked {
		t.Errorf("expected 423 while locked, got %d", code)
	}
	if code := do(h, http.MethodGet, "/lock", ""); code != http.StatusOK {
		t.Errorf("expected the lock route to stay reachable, got %d", code)
	}
}

func TestLockOverHTTP(t *testing.T) {
	l, h := setup()
	if code := do(h, http.MethodPost, "/lock", `{"bool":true}`); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !l.Locked() {
		t.Fatal("expected POST /lock true to lock")
	}
	if code := do(h, http.MethodPost, "/lock", `{"bool":false}`); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if l.Locked() {
		t.Error("expected POST /lock false to unlock")
	}
	if code := do(h, http.MethodPost, "/lock", `nope`); code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad body, got %d", code)
	}
}
