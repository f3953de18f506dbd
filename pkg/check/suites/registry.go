package suites

import (
	"fmt"
	"sort"

	"github.com/tendant/cms-check/pkg/check"
)

// Params carries the inputs some suites need.
type Params struct {
	Username string
	Password string
}

// builders maps suite names to their constructors.
var builders = map[string]func(Params) check.Suite{
	"auth":   func(p Params) check.Suite { return Auth(p.Username, p.Password) },
	"users":  func(Params) check.Suite { return Users() },
	"media":  func(Params) check.Suite { return Media() },
	"pages":  func(Params) check.Suite { return Pages() },
	"global": func(Params) check.Suite { return Global() },
}

// runOrder keeps auth first so session problems surface before content walks.
var runOrder = []string{"auth", "users", "media", "pages", "global"}

// Names returns all suite names in run order.
func Names() []string {
	return append([]string(nil), runOrder...)
}

// Select resolves suite names into built suites, preserving run order. An
// empty selection means every suite.
func Select(names []string, p Params) ([]check.Suite, error) {
	if len(names) == 0 {
		names = runOrder
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := builders[n]; !ok {
			known := Names()
			sort.Strings(known)
			return nil, fmt.Errorf("unknown suite %q (known: %v)", n, known)
		}
		wanted[n] = true
	}

	var out []check.Suite
	for _, n := range runOrder {
		if wanted[n] {
			out = append(out, builders[n](p))
		}
	}
	return out, nil
}
