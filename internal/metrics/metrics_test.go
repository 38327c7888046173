package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordOp(t *testing.T) {
	before := testutil.ToFloat64(opsTotal.WithLabelValues("open", "error"))
	RecordOp("open", errors.New("boom"))
	RecordOp("open", nil)
	if got := testutil.ToFloat64(opsTotal.WithLabelValues("open", "error")); got != before+1 {
		t.Errorf("expected error counter %v, got %v", before+1, got)
	}
}

func TestGaugeDeltas(t *testing.T) {
	before := testutil.ToFloat64(windowsOpen)
	AddWindows(3)
	AddWindows(-1)
	if got := testutil.ToFloat64(windowsOpen); got != before+2 {
		t.Errorf("expected %v open windows, got %v", before+2, got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	SetSessionsActive(2)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "deskshell_sessions_active 2") {
		t.Error("expected sessions gauge in /metrics output")
	}
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Middleware(mux)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /teapot", "418"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /teapot", "418")); got != before+1 {
		t.Errorf("expected request to be counted, got %v", got)
	}
}
