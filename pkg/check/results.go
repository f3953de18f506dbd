package check

import (
	"time"

	"github.com/tendant/cms-check/pkg/lifecycle"
)

// Status is the domain type for check outcomes.
type Status string

// Status constants (typed).
const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// CheckResult records one executed check.
type CheckResult struct {
	Suite    string
	Check    string
	Status   Status
	Detail   string
	Duration time.Duration
}

// Report aggregates one run across suites.
type Report struct {
	Started  time.Time
	Finished time.Time
	Results  []CheckResult

	// Leftovers are refs whose retirement exhausted every candidate.
	Leftovers []lifecycle.ContentRef
}

// Passed returns the number of passing checks.
func (r *Report) Passed() int { return r.count(StatusPassed) }

// Failed returns the number of failing checks.
func (r *Report) Failed() int { return r.count(StatusFailed) }

// Ok reports whether every check passed and nothing was left behind.
func (r *Report) Ok() bool {
	return r.Failed() == 0 && len(r.Leftovers) == 0
}

func (r *Report) count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}
