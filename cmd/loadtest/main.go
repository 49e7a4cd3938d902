package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const idempotencyHeader = "Idempotency-Key"

type config struct {
	baseURL     string
	total       int
	concurrency int
	timeout     time.Duration
	product     string
	qty         int32
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type report struct {
	StartedAt       time.Time        `json:"started_at"`
	DurationSeconds float64          `json:"duration_seconds"`
	TotalRequests   int64            `json:"total_requests"`
	SuccessRequests int64            `json:"success_requests"`
	FailedRequests  int64            `json:"failed_requests"`
	ErrorRate       float64          `json:"error_rate"`
	RPS             float64          `json:"rps"`
	StatusCodes     map[string]int64 `json:"status_codes"`
	LatencyMs       latencySummary   `json:"latency_ms"`
}

type collector struct {
	mu        sync.Mutex
	codes     map[string]int64
	latencies []float64
}

func newCollector() *collector {
	return &collector{codes: make(map[string]int64)}
}

func (c *collector) record(latency time.Duration, statusCode int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.codes[fmt.Sprintf("%d", statusCode)]++
	c.latencies = append(c.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) summarize() latencySummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return summarizeLatencies(c.latencies)
}

func (c *collector) statusCodes() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]int64, len(c.codes))
	for code, count := range c.codes {
		result[code] = count
	}
	return result
}

// summarizeLatencies считает сводку по латентности в миллисекундах.
func summarizeLatencies(latencies []float64) latencySummary {
	if len(latencies) == 0 {
		return latencySummary{}
	}

	sorted := append([]float64(nil), latencies...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

// percentile возвращает перцентиль из отсортированного среза.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	low := int(math.Floor(rank))
	high := int(math.Ceil(rank))
	if low == high {
		return sorted[low]
	}
	frac := rank - float64(low)
	return sorted[low] + (sorted[high]-sorted[low])*frac
}

func parseFlags() config {
	cfg := config{}
	flag.StringVar(&cfg.baseURL, "addr", "http://127.0.0.1:8080", "base URL of the storefront HTTP API")
	flag.IntVar(&cfg.total, "total", 100, "total number of orders to place")
	flag.IntVar(&cfg.concurrency, "concurrency", 4, "number of concurrent workers")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.StringVar(&cfg.product, "product", "Bose QuietComfort Earbuds", "product name to order")
	var qty int
	flag.IntVar(&qty, "qty", 1, "quantity per order")
	flag.StringVar(&cfg.outputPath, "output", "", "optional path for the JSON report")
	flag.Parse()

	cfg.qty = int32(qty)
	if cfg.total <= 0 {
		cfg.total = 1
	}
	if cfg.concurrency <= 0 {
		cfg.concurrency = 1
	}
	return cfg
}

func runLoad(ctx context.Context, cfg config) report {
	client := &http.Client{Timeout: cfg.timeout}
	stats := newCollector()

	var success, failed int64
	jobs := make(chan int)

	started := time.Now()
	var wg sync.WaitGroup
	for range cfg.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if err := placeOrder(ctx, client, cfg, stats); err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				atomic.AddInt64(&success, 1)
			}
		}()
	}

	for i := 0; i < cfg.total; i++ {
		select {
		case <-ctx.Done():
			i = cfg.total
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(started)
	total := success + failed

	result := report{
		StartedAt:       started.UTC(),
		DurationSeconds: elapsed.Seconds(),
		TotalRequests:   total,
		SuccessRequests: success,
		FailedRequests:  failed,
		RPS:             float64(total) / math.Max(elapsed.Seconds(), 0.001),
		StatusCodes:     stats.statusCodes(),
		LatencyMs:       stats.summarize(),
	}
	if total > 0 {
		result.ErrorRate = float64(failed) / float64(total)
	}
	return result
}

func placeOrder(ctx context.Context, client *http.Client, cfg config, stats *collector) error {
	payload, err := json.Marshal(map[string]any{
		"lines": []map[string]any{
			{"product": cfg.product, "qty": cfg.qty},
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(idempotencyHeader, uuid.NewString())

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		stats.record(latency, 0)
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	stats.record(latency, resp.StatusCode)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func writeReport(result report, outputPath string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	if outputPath == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(outputPath, append(data, '\n'), 0o644)
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := runLoad(ctx, cfg)
	if err := writeReport(result, cfg.outputPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
		os.Exit(1)
	}

	if result.FailedRequests > 0 {
		os.Exit(2)
	}
}
