package scanning

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HueCodes/Scuttle/internal/errors"
	"github.com/HueCodes/Scuttle/internal/logging"
	"github.com/HueCodes/Scuttle/internal/metrics"
	"github.com/HueCodes/Scuttle/internal/ports"
	"github.com/HueCodes/Scuttle/internal/ratelimit"
	"github.com/HueCodes/Scuttle/internal/services"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency caps in-flight probes when the job does not
// specify its own limit.
const DefaultConcurrency = 500

// ProgressFunc receives observational progress updates: a monotonically
// increasing completed count and the most recent open-port discovery
// (0 when none yet). It must not affect scan correctness or ordering.
type ProgressFunc func(completed, total int, lastOpen ports.Port)

// JobConfig holds the job-level parameters for one scan run. It is
// read-only during the scan.
type JobConfig struct {
	// Ports is the list of ports to probe.
	Ports []ports.Port
	// TargetName is the display name for the report (hostname when the
	// target was resolved from one); empty falls back to the IP.
	TargetName string
	// Concurrency caps in-flight probes (0 = DefaultConcurrency).
	Concurrency int
	// RateLimit caps probe issuance per second (0 = unlimited).
	RateLimit int
	// ShowClosed retains closed ports in the report.
	ShowClosed bool
	// Verbose enables per-probe debug logging.
	Verbose bool
	// Progress, when set, is invoked after each completed probe.
	Progress ProgressFunc
}

// Report is the aggregated output of one scan job. Counts and the
// result list cover the retained results: closed ports are dropped
// before aggregation unless the job asked to keep them.
type Report struct {
	Target        string   `json:"target"`
	TargetIP      string   `json:"ip_address"`
	ScanType      string   `json:"scan_type"`
	PortsScanned  int      `json:"ports_scanned"`
	OpenPorts     int      `json:"open_ports"`
	ClosedPorts   int      `json:"closed_ports"`
	FilteredPorts int      `json:"filtered_ports"`
	DurationMs    int64    `json:"duration_ms"`
	Results       []Result `json:"results"`
}

// Summary returns a one-line human-readable digest of the report.
func (r *Report) Summary() string {
	return fmt.Sprintf("%s (%s) - %d open, %d closed, %d filtered [%.2fs]",
		r.Target, r.TargetIP, r.OpenPorts, r.ClosedPorts, r.FilteredPorts,
		float64(r.DurationMs)/1000.0)
}

// RunJob drives a scanner across the configured port list with bounded
// concurrency and an optional rate limit, then assembles the final
// report. Probes run concurrently with no ordering guarantee; the
// result list is sorted by port before being handed out. A single
/// port's probe never fails the job: strategies guarantee a Result for
// every requested port.
func RunJob(ctx context.Context, scanner Scanner, cfg JobConfig) (*Report, error) {
	if len(cfg.Ports) == 0 {
		return nil, errors.New(errors.CodeValidation, "no ports to scan")
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit > 0 {
		var err error
		limiter, err = ratelimit.New(cfg.RateLimit)
		if err != nil {
			return nil, err
		}
	}

	m := metrics.GetGlobalMetrics()
	scanType := scanner.Type()
	target := scanner.Target()
	total := len(cfg.Ports)

	logging.InfoScan("starting scan job", target.String(),
		"scan_type", scanType.Key(),
		"ports", total,
		"concurrency", concurrency,
		"rate_limit", cfg.RateLimit)

	start := time.Now()
	sem := semaphore.NewWeighted(int64(concurrency))
	resultCh := make(chan Result, total)
	var completed atomic.Int64
	var lastOpen atomic.Int64
	var wg sync.WaitGroup

	for _, port := range cfg.Ports {
		wg.Add(1)
		go func(port ports.Port) {
			defer wg.Done()
			resultCh <- runProbe(ctx, scanner, port, sem, limiter, cfg, m, &completed, &lastOpen, total)
		}(port)
	}

	wg.Wait()
	close(resultCh)

	results := make([]Result, 0, total)
	for res := range resultCh {
		if res.Status == StatusClosed && !cfg.ShowClosed {
			continue
		}
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Port < results[j].Port })

	duration := time.Since(start)
	report := buildReport(scanner, cfg.TargetName, results, duration)

	m.IncrementScansTotal(scanType.Key(), "success")
	m.RecordScanDuration(scanType.Key(), duration)
	logging.InfoScan("scan job completed", target.String(),
		"scan_type", scanType.Key(),
		"duration", duration,
		"open", report.OpenPorts,
		"closed", report.ClosedPorts,
		"filtered", report.FilteredPorts)

	return report, nil
}

// runProbe executes one port probe under the semaphore and rate
// limiter. It always returns a Result, even when the context dies while
// queued.
func runProbe(
	ctx context.Context,
	scanner Scanner,
	port ports.Port,
	sem *semaphore.Weighted,
	limiter *ratelimit.Limiter,
	cfg JobConfig,
	m *metrics.Metrics,
	completed, lastOpen *atomic.Int64,
	total int,
) Result {
	finish := func(res Result) Result {
		done := int(completed.Add(1))
		if res.Status == StatusOpen {
			lastOpen.Store(int64(res.Port))
			m.IncrementOpenPorts(scanner.Type().Key())
		}
		m.IncrementProbes(scanner.Type().Key(), res.Status.String())
		if cfg.Progress != nil {
			cfg.Progress(done, total, ports.Port(lastOpen.Load()))
		}
		if cfg.Verbose {
			logging.Debug("probe completed",
				"port", res.Port, "status", res.Status.String())
		}
		return res
	}

	if err := sem.Acquire(ctx, 1); err != nil {
		return finish(NewResult(port, StatusFiltered, services.Name(port.Int())))
	}
	defer sem.Release(1)

	if limiter != nil {
		if !limiter.TryAcquire() {
			m.IncrementRateWaits()
			if err := limiter.Wait(ctx); err != nil {
				return finish(NewResult(port, StatusFiltered, services.Name(port.Int())))
			}
		}
	}

	m.ProbeStarted()
	res := scanner.ScanPort(ctx, port)
	m.ProbeFinished()
	return finish(res)
}

// buildReport filters nothing further; it aggregates counts over the
// retained results and wraps them with the job identity. Open and
// open|filtered both count as open, matching how the ambiguity should
// be read by a consumer deciding what to investigate.
func buildReport(scanner Scanner, targetName string, results []Result, duration time.Duration) *Report {
	if targetName == "" {
		targetName = scanner.Target().String()
	}
	report := &Report{
		Target:       targetName,
		TargetIP:     scanner.Target().String(),
		ScanType:     scanner.Type().String(),
		PortsScanned: len(results),
		DurationMs:   duration.Milliseconds(),
		Results:      results,
	}
	for i := range results {
		switch results[i].Status {
		case StatusOpen, StatusOpenFiltered:
			report.OpenPorts++
		case StatusClosed:
			report.ClosedPorts++
		case StatusFiltered:
			report.FilteredPorts++
		}
	}
	return report
}
