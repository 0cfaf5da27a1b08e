package metrics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
)

// DefaultTimeout is the default timeout for remote-write requests.
const DefaultTimeout = 30 * time.Second

// PushConfig configures a PushRegistry.
type PushConfig struct {
	// URL is the base URL of the remote-write endpoint, e.g. "http://localhost:8428".
	URL string
	// Prefix is prepended to every metric name, followed by an underscore.
	Prefix   string
	Job      string
	Instance string
	Timeout  time.Duration
}

// PushRegistry buffers the latest value of every series and sends them in a
// single remote-write request on Flush.
type PushRegistry struct {
	url        string
	prefix     string
	job        string
	instance   string
	httpClient *http.Client

	mu     sync.Mutex
	series map[string]*series
}

type series struct {
	name   string
	labels map[string]string
	value  float64
}

// NewPushRegistry creates a PushRegistry for the given endpoint.
func NewPushRegistry(cfg PushConfig) *PushRegistry {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &PushRegistry{
		url:        strings.TrimSuffix(cfg.URL, "/") + "/api/v1/write",
		prefix:     cfg.Prefix,
		job:        cfg.Job,
		instance:   cfg.Instance,
		httpClient: &http.Client{Timeout: timeout},
		series:     make(map[string]*series),
	}
}

// NewGauge creates a buffered Gauge.
func (r *PushRegistry) NewGauge(opts prometheus.GaugeOpts) (Gauge, error) {
	return pushGauge{registry: r, name: opts.Name}, nil
}

// NewGaugeVec creates a buffered GaugeVec.
func (r *PushRegistry) NewGaugeVec(opts prometheus.GaugeOpts, labels []string) (GaugeVec, error) {
	return pushGaugeVec{registry: r, name: opts.Name}, nil
}

// NewCounterVec creates a buffered CounterVec.
func (r *PushRegistry) NewCounterVec(opts prometheus.CounterOpts, labels []string) (CounterVec, error) {
	return pushCounterVec{registry: r, name: opts.Name}, nil
}

// Flush sends every buffered series. Nothing is sent when the buffer is empty.
func (r *PushRegistry) Flush(ctx context.Context) error {
	r.mu.Lock()
	timeseries := make([]prompb.TimeSeries, 0, len(r.series))
	now := time.Now().UnixMilli()
	for _, key := range slices.Sorted(maps.Keys(r.series)) {
		timeseries = append(timeseries, r.toTimeSeries(r.series[key], now))
	}
	r.mu.Unlock()

	if len(timeseries) == 0 {
		return nil
	}

	data, err := proto.Marshal(&prompb.WriteRequest{Timeseries: timeseries})
	if err != nil {
		return fmt.Errorf("marshaling write request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(snappy.Encode(nil, data)))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Encoding", "snappy")
	httpReq.Header.Set("Content-Type", "application/x-protobuf")
	httpReq.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (r *PushRegistry) set(name string, labels map[string]string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookup(name, labels).value = value
}

func (r *PushRegistry) add(name string, labels map[string]string, delta float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookup(name, labels).value += delta
}

func (r *PushRegistry) reset(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, s := range r.series {
		if s.name == name {
			delete(r.series, key)
		}
	}
}

// lookup returns the series for name and labels, creating it if needed.
// The caller must hold r.mu.
func (r *PushRegistry) lookup(name string, labels map[string]string) *series {
	key := seriesKey(name, labels)
	s, ok := r.series[key]
	if !ok {
		s = &series{name: name, labels: maps.Clone(labels)}
		r.series[key] = s
	}
	return s
}

func (r *PushRegistry) toTimeSeries(s *series, timestamp int64) prompb.TimeSeries {
	name := s.name
	if r.prefix != "" {
		name = r.prefix + "_" + name
	}

	labels := []prompb.Label{{Name: "__name__", Value: name}}
	if r.job != "" {
		labels = append(labels, prompb.Label{Name: "job", Value: r.job})
	}
	if r.instance != "" {
		labels = append(labels, prompb.Label{Name: "instance", Value: r.instance})
	}
	for k, v := range s.labels {
		labels = append(labels, prompb.Label{Name: k, Value: v})
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })

	return prompb.TimeSeries{
		Labels:  labels,
		Samples: []prompb.Sample{{Value: s.value, Timestamp: timestamp}},
	}
}

// seriesKey builds a stable key from a metric name and its labels.
func seriesKey(name string, labels map[string]string) string {
	var b strings.Builder
	b.WriteString(name)
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		b.WriteString("|" + k + "=" + labels[k])
	}
	return b.String()
}

type pushGauge struct {
	registry *PushRegistry
	name     string
	labels   map[string]string
}

func (g pushGauge) Set(v float64) {
	g.registry.set(g.name, g.labels, v)
}

type pushGaugeVec struct {
	registry *PushRegistry
	name     string
}

func (g pushGaugeVec) With(labels prometheus.Labels) Gauge {
	return pushGauge{registry: g.registry, name: g.name, labels: labels}
}

func (g pushGaugeVec) Reset() {
	g.registry.reset(g.name)
}

type pushCounter struct {
	registry *PushRegistry
	name     string
	labels   map[string]string
}

func (c pushCounter) Inc() {
	c.registry.add(c.name, c.labels, 1)
}

type pushCounterVec struct {
	registry *PushRegistry
	name     string
}

func (c pushCounterVec) With(labels prometheus.Labels) Counter {
	return pushCounter{registry: c.registry, name: c.name, labels: labels}
}
