// Package metrics exposes Prometheus counters for token issuance, validation and HTTP traffic.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Token kinds
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Recorder holds the collectors. A nil *Recorder records nothing.
type Recorder struct {
	gatherer prometheus.Gatherer

	tokensIssued        *prometheus.CounterVec
	tokenValidations    *prometheus.CounterVec
	refreshRotations    prometheus.Counter
	logouts             *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New registers the collectors with reg. Collectors already registered there are reused.
func New(reg *prometheus.Registry) (*Recorder, error) {
	r := &Recorder{
		gatherer: reg,
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Tokens minted, by kind",
		}, []string{"kind"}),
		tokenValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_token_validations_total",
			Help: "Token validations, by kind and outcome",
		}, []string{"kind", "outcome"}),
		refreshRotations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_refresh_rotations_total",
			Help: "Refresh tokens written to the store",
		}),
		logouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logouts_total",
			Help: "Logout attempts, by result",
		}, []string{"result"}), // result: ok|not_found|error
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests processed",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	var err error
	if r.tokensIssued, err = register(reg, r.tokensIssued); err != nil {
		return nil, err
	}
	if r.tokenValidations, err = register(reg, r.tokenValidations); err != nil {
		return nil, err
	}
	if r.refreshRotations, err = register(reg, r.refreshRotations); err != nil {
		return nil, err
	}
	if r.logouts, err = register(reg, r.logouts); err != nil {
		return nil, err
	}
	if r.httpRequestsTotal, err = register(reg, r.httpRequestsTotal); err != nil {
		return nil, err
	}
	if r.httpRequestDuration, err = register(reg, r.httpRequestDuration); err != nil {
		return nil, err
	}
	return r, nil
}

// register returns the collector already registered under the same name, if any.
func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return collector, err
	}
	return collector, nil
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func (r *Recorder) TokenIssued(kind string) {
	if r == nil {
		return
	}
	r.tokensIssued.WithLabelValues(kind).Inc()
}

func (r *Recorder) TokenValidated(kind, outcome string) {
	if r == nil {
		return
	}
	r.tokenValidations.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) RefreshRotated() {
	if r == nil {
		return
	}
	r.refreshRotations.Inc()
}

func (r *Recorder) Logout(result string) {
	if r == nil {
		return
	}
	r.logouts.WithLabelValues(result).Inc()
}

// Middleware counts requests. routePattern maps a request to a low-cardinality path label.
func (r *Recorder) Middleware(routePattern func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if r == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, req)

			path := routePattern(req)
			if path == "" {
				path = "unmatched"
			}
			method := strings.ToUpper(req.Method)
			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			r.httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			r.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}
