// Command loadtest drives a running beelandr server through a landowner
// session followed by a beekeeper session and prints latency percentiles
// per endpoint.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	json "github.com/goccy/go-json"
	"io"
	"math/rand"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"
)

// Coordinates come from a small grid so repeated weather lookups hit the
// weather cache.
const gridSize = 20

var landTypes = []string{"Farmland", "Orchard", "Meadow", "Woodland", "Garden", "Wildflower"}

type options struct {
	baseURL  string
	workers  int
	duration time.Duration
}

type sample struct {
	endpoint string
	latency  time.Duration
	failed   bool
}

// op is one weighted request kind of a scenario.
type op struct {
	weight float64
	run    func(c *client, rng *rand.Rand) sample
}

type scenario struct {
	name string
	ops  []op
}

func (s scenario) pick(rng *rand.Rand) op {
	var total float64
	for _, o := range s.ops {
		total += o.weight
	}
	r := rng.Float64() * total
	for _, o := range s.ops {
		if r < o.weight {
			return o
		}
		r -= o.weight
	}
	return s.ops[len(s.ops)-1]
}

type endpointStats struct {
	failures  int
	latencies []time.Duration
}

type report map[string]*endpointStats

func (r report) add(s sample) {
	st, ok := r[s.endpoint]
	if !ok {
		st = &endpointStats{}
		r[s.endpoint] = st
	}
	if s.failed {
		st.failures++
	}
	st.latencies = append(st.latencies, s.latency)
}

func (r report) merge(other report) {
	for ep, st := range other {
		dst, ok := r[ep]
		if !ok {
			r[ep] = st
			continue
		}
		dst.failures += st.failures
		dst.latencies = append(dst.latencies, st.latencies...)
	}
}

type client struct {
	base string
	http *http.Client
}

func newClient(base string, workers int) *client {
	return &client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: workers * 2,
				IdleConnTimeout:     30 * time.Second,
				DialContext:         (&net.Dialer{Timeout: 2 * time.Second}).DialContext,
			},
		},
	}
}

func (c *client) call(endpoint, method, path string, body any, want int) sample {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return sample{endpoint: endpoint, failed: true}
		}
		payload = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.base+path, payload)
	if err != nil {
		return sample{endpoint: endpoint, failed: true}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return sample{endpoint: endpoint, latency: time.Since(start), failed: true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return sample{endpoint: endpoint, latency: time.Since(start), failed: resp.StatusCode != want}
}

func (c *client) waitReady(ctx context.Context) error {
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		if s := c.call("health", http.MethodGet, "/health", nil, http.StatusOK); !s.failed {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

func gridPoint(rng *rand.Rand) (lat, lng float64) {
	return 51.0 + float64(rng.Intn(gridSize))*0.05, -1.0 + float64(rng.Intn(gridSize))*0.05
}

func chooseRole(c *client, role string) sample {
	return c.call("POST /role", http.MethodPost, "/role", map[string]string{"role": role}, http.StatusOK)
}

func savePlot(c *client, rng *rand.Rand) sample {
	lat, lng := gridPoint(rng)
	return c.call("POST /plots", http.MethodPost, "/plots", map[string]any{
		"owner":    fmt.Sprintf("Owner %d", rng.Intn(1000)),
		"landType": landTypes[rng.Intn(len(landTypes))],
		"contact":  "loadtest@example.org",
		"area":     fmt.Sprintf("%d acres", rng.Intn(50)+1),
		"hives":    rng.Intn(30),
		"geometry": map[string]any{"type": "Point", "coordinates": []float64{lng, lat}},
	}, http.StatusCreated)
}

func listPlots(c *client, rng *rand.Rand) sample {
	path := "/plots"
	if rng.Intn(2) == 0 {
		path = fmt.Sprintf("/plots?maxHives=%d&landType=%s", rng.Intn(30), landTypes[rng.Intn(len(landTypes))])
	}
	return c.call("GET /plots", http.MethodGet, path, nil, http.StatusOK)
}

// openDetail opens one of the bundled community plots, which have ids 1-6.
func openDetail(c *client, rng *rand.Rand) sample {
	return c.call("GET /plots/detail", http.MethodGet, fmt.Sprintf("/plots/detail?id=%d", rng.Intn(6)+1), nil, http.StatusOK)
}

func weatherAt(c *client, rng *rand.Rand) sample {
	lat, lng := gridPoint(rng)
	return c.call("GET /weather", http.MethodGet, fmt.Sprintf("/weather?lat=%.4f&lng=%.4f", lat, lng), nil, http.StatusOK)
}

func mapLayer(c *client, _ *rand.Rand) sample {
	return c.call("GET /map", http.MethodGet, "/map", nil, http.StatusOK)
}

func run(ctx context.Context, c *client, opts options, sc scenario) report {
	ctx, cancel := context.WithTimeout(ctx, opts.duration)
	defer cancel()

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		total = report{}
	)
	for w := 0; w < opts.workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			local := report{}
			for ctx.Err() == nil {
				local.add(sc.pick(rng).run(c, rng))
			}
			mu.Lock()
			total.merge(local)
			mu.Unlock()
		}(time.Now().UnixNano() + int64(w))
	}
	wg.Wait()
	return total
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[min(int(float64(len(sorted))*p), len(sorted)-1)]
}

func mean(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func printReport(name string, r report, elapsed time.Duration) {
	fmt.Printf("\n--- %s ---\n", name)
	fmt.Printf("  %-18s %8s %6s %9s %9s %9s %9s\n", "endpoint", "reqs", "fail", "mean", "p50", "p95", "p99")
	rule := "  " + strings.Repeat("-", 74)
	fmt.Println(rule)

	endpoints := make([]string, 0, len(r))
	for ep := range r {
		endpoints = append(endpoints, ep)
	}
	slices.Sort(endpoints)

	var reqs, fails int
	for _, ep := range endpoints {
		st := r[ep]
		slices.Sort(st.latencies)
		reqs += len(st.latencies)
		fails += st.failures
		fmt.Printf("  %-18s %8d %6d %9s %9s %9s %9s\n", ep, len(st.latencies), st.failures,
			mean(st.latencies).Round(time.Microsecond),
			percentile(st.latencies, 0.50).Round(time.Microsecond),
			percentile(st.latencies, 0.95).Round(time.Microsecond),
			percentile(st.latencies, 0.99).Round(time.Microsecond))
	}
	fmt.Println(rule)
	if reqs == 0 {
		fmt.Println("  no requests completed")
		return
	}
	fmt.Printf("  %d requests, %d failed (%.1f%%), %.0f req/s\n",
		reqs, fails, float64(fails)/float64(reqs)*100, float64(reqs)/elapsed.Seconds())
}

func main() {
	var opts options
	flag.StringVar(&opts.baseURL, "url", "http://127.0.0.1:8080", "beelandr base URL")
	flag.IntVar(&opts.workers, "workers", 50, "concurrent clients")
	flag.DurationVar(&opts.duration, "duration", 10*time.Second, "length of each phase")
	flag.Parse()

	c := newClient(opts.baseURL, opts.workers)
	fmt.Printf("BeeLandr load test: %s, %d workers, %s per phase\n", opts.baseURL, opts.workers, opts.duration)

	readyCtx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
	err := c.waitReady(readyCtx)
	cancel()
	if err != nil {
		fmt.Println("server not responding:", err)
		return
	}

	phases := []struct {
		role string
		sc   scenario
	}{
		{"landowner", scenario{"landowner: listing plots", []op{
			{1, savePlot},
		}}},
		{"landowner", scenario{"landowner: mixed", []op{
			{0.2, savePlot}, {0.4, listPlots}, {0.2, weatherAt}, {0.2, mapLayer},
		}}},
		{"beekeeper", scenario{"beekeeper: browsing", []op{
			{0.4, listPlots}, {0.3, openDetail}, {0.2, weatherAt}, {0.1, mapLayer},
		}}},
	}

	for _, ph := range phases {
		if s := chooseRole(c, ph.role); s.failed {
			fmt.Printf("could not choose role %s\n", ph.role)
			return
		}
		start := time.Now()
		r := run(context.Background(), c, opts, ph.sc)
		printReport(ph.sc.name, r, time.Since(start))
	}
}
