// Package health reports whether the diary service can serve traffic.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusUp   = "up"
	StatusDown = "down"

	defaultTimeout = 2 * time.Second
)

// Pinger is satisfied by *pgxpool.Pool and *memory.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check is one named readiness probe. The name becomes the key in the
// response and the "check" label of the gauge.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Ping turns a Pinger into a Check.
func Ping(name string, p Pinger) Check {
	return Check{Name: name, Run: p.Ping}
}

type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthResult struct {
	Status  string                 `json:"status"`
	Storage string                 `json:"storage,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

type Checker struct {
	storage string
	checks  []Check
	timeout time.Duration
	logger  *slog.Logger
	gauge   *prometheus.GaugeVec
}

// NewChecker builds a checker for the named storage backend and registers
// its gauge with reg.
func NewChecker(storage string, logger *slog.Logger, reg prometheus.Registerer, checks ...Check) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "diary",
		Name:      "readiness_check_up",
		Help:      "Result of the last readiness check. 1 = up, 0 = down.",
	}, []string{"storage", "check"})
	reg.MustRegister(gauge)

	return &Checker{
		storage: storage,
		checks:  checks,
		timeout: defaultTimeout,
		logger:  logger.With("component", "health", "storage", storage),
		gauge:   gauge,
	}
}

func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: StatusUp}
}

// Readiness runs every check in parallel under one deadline. Any failing
// check marks the whole result down.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	errs := make([]error, len(c.checks))
	var wg sync.WaitGroup
	for i, check := range c.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = check.Run(checkCtx)
		}()
	}
	wg.Wait()

	result := HealthResult{
		Status:  StatusUp,
		Storage: c.storage,
		Checks:  make(map[string]CheckResult, len(c.checks)),
	}
	for i, check := range c.checks {
		gauge := c.gauge.WithLabelValues(c.storage, check.Name)
		if err := errs[i]; err != nil {
			c.logger.WarnContext(ctx, "readiness check failed", "check", check.Name, "error", err)
			result.Status = StatusDown
			result.Checks[check.Name] = CheckResult{Status: StatusDown, Error: err.Error()}
			gauge.Set(0)
			continue
		}
		result.Checks[check.Name] = CheckResult{Status: StatusUp}
		gauge.Set(1)
	}
	return result
}
