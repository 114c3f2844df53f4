package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthChecker_Check(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		status   string
		database string
	}{
		{"no database", nil, "healthy", "not configured"},
		{"database up", fakePinger{}, "healthy", "healthy"},
		{"database down", fakePinger{err: errors.New("refused")}, "unhealthy", "unhealthy: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewHealthChecker(tt.db).Check(context.Background())
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.database, got.Checks["database"])
		})
	}
}

func TestMetricsHandler_Health(t *testing.T) {
	handler := NewMetricsHandler(NewHealthChecker(fakePinger{err: errors.New("down")}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "unhealthy", body.Status)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(HTTPMetricsMiddleware)
	router.HandleFunc("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/things/{id}", http.MethodGet, "418"))
	for _, id := range []string{"a", "b"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/things/{id}", http.MethodGet, "418"))

	assert.Equal(t, 2.0, after-before)
}

func TestBusinessMetrics(t *testing.T) {
	before := testutil.ToFloat64(chargesRecordedTotal.WithLabelValues("quarterly"))
	periodsBefore := testutil.ToFloat64(chargePeriodsTotal)
	RecordCharge("quarterly", 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(chargesRecordedTotal.WithLabelValues("quarterly"))-before)
	assert.Equal(t, 2.0, testutil.ToFloat64(chargePeriodsTotal)-periodsBefore)

	UpdateOverdueGauges(3, 5)
	assert.Equal(t, 3.0, testutil.ToFloat64(staleRenewals))
	assert.Equal(t, 5.0, testutil.ToFloat64(pendingContributions))

	skippedBefore := testutil.ToFloat64(reportSkippedTotal.WithLabelValues("CYCLE_UNKNOWN"))
	RecordReportSkipped("CYCLE_UNKNOWN")
	assert.Equal(t, 1.0, testutil.ToFloat64(reportSkippedTotal.WithLabelValues("CYCLE_UNKNOWN"))-skippedBefore)
}
