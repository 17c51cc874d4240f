package metrics

import (
	"arduinosim/internal/model"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/api/sensor/{sensor_type}/{pin:[0-9]+}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/api/sensor/temperature/1", "/api/sensor/ultrasonic/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/api/sensor/{sensor_type}/{pin:[0-9]+}", "200"))
	if got != 2 {
		t.Errorf("expected 2 requests on the sensor route, got %v", got)
	}
}

func TestScanAndReadingCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Scan(time.Millisecond, false)
	m.Scan(time.Millisecond, true)
	m.Scan(time.Millisecond, true)
	m.Reading(model.Potentiometer)

	if got := testutil.ToFloat64(m.scansTotal.WithLabelValues("error")); got != 2 {
		t.Errorf("expected 2 failed scans, got %v", got)
	}
	if got := testutil.ToFloat64(m.sensorReadings.WithLabelValues("potentiometer")); got != 1 {
		t.Errorf("expected 1 potentiometer reading, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Scan(time.Second, false)
	m.Reading(model.Temperature)

	rr := httptest.NewRecorder()
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("expected wrapped handler status, got %d", rr.Code)
	}
}

func TestHandlerExposition(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Reading(model.Ultrasonic)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rr.Body.String(), `arduinosim_sensor_readings_total{kind="ultrasonic"} 1`) {
		t.Errorf("reading counter missing from exposition:\n%s", rr.Body.String())
	}
}
