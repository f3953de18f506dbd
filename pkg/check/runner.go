package check

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/tendant/cms-check/pkg/aposclient"
)

// Runner executes suites sequentially, pacing checks so a run does not
// hammer the target API.
type Runner struct {
	client  *aposclient.Client
	log     *slog.Logger
	limiter *rate.Limiter
	out     io.Writer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(log *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithPace sets the minimum interval between checks. Zero disables pacing.
func WithPace(interval time.Duration) RunnerOption {
	return func(r *Runner) {
		if interval <= 0 {
			r.limiter = nil
			return
		}
		r.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithOutput redirects the pass/fail console lines.
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// NewRunner creates a Runner for the given client.
func NewRunner(client *aposclient.Client, opts ...RunnerOption) *Runner {
	r := &Runner{
		client:  client,
		log:     slog.Default(),
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run executes the suites in order and returns the aggregated report. A
// failing check never aborts the run; its suite continues and so does the
// batch. The error return is reserved for context cancellation.
func (r *Runner) Run(ctx context.Context, suites ...Suite) (*Report, error) {
	report := &Report{Started: time.Now()}
	defer func() { report.Finished = time.Now() }()

	for _, suite := range suites {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fmt.Fprintf(r.out, "== %s\n", suite.Name)

		t := &T{Client: r.client, log: r.log.With("suite", suite.Name)}
		for _, c := range suite.Checks {
			if err := r.pace(ctx); err != nil {
				report.Leftovers = append(report.Leftovers, t.teardown(context.WithoutCancel(ctx))...)
				return report, err
			}
			report.Results = append(report.Results, r.runCheck(ctx, suite.Name, c, t))
		}

		// Teardown still runs when the last check failed; cleanup is the
		// whole point of owning refs.
		report.Leftovers = append(report.Leftovers, t.teardown(ctx)...)
	}

	fmt.Fprintf(r.out, "%d passed, %d failed\n", report.Passed(), report.Failed())
	return report, nil
}

func (r *Runner) runCheck(ctx context.Context, suiteName string, c Check, t *T) CheckResult {
	start := time.Now()
	err := c.Run(ctx, t)
	res := CheckResult{
		Suite:    suiteName,
		Check:    c.Name,
		Status:   StatusPassed,
		Duration: time.Since(start),
	}
	if err != nil {
		res.Status = StatusFailed
		res.Detail = err.Error()
		fmt.Fprintf(r.out, "  ✗ %s: %v\n", c.Name, err)
		r.log.Error("check failed", "suite", suiteName, "check", c.Name, "error", err)
		return res
	}
	fmt.Fprintf(r.out, "  ✓ %s\n", c.Name)
	return res
}

func (r *Runner) pace(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}
