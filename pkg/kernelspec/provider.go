package kernelspec

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
)

// ErrProviderUnavailable marks an optional provider whose backing
// installation is not present on this host. The registry skips such
// providers silently; absence is a normal outcome, not a failure.
var ErrProviderUnavailable = errors.New("kernelspec provider unavailable")

// Provider supplies kernel specs from one source. Implementations must
// not mutate specs after returning them.
type Provider interface {
	Name() string
	Specs() ([]KernelSpec, error)
}

// scanKernels reads every kernels/<name>/kernel.json under the given
// Jupyter data directory. Unreadable or malformed entries are skipped so
// one broken kernel cannot hide the rest. Entries are returned in sorted
// name order for stable aggregation.
func scanKernels(dataDir string) []KernelSpec {
	base := filepath.Join(dataDir, "kernels")
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	specs := make([]KernelSpec, 0, len(names))
	for _, name := range names {
		spec, err := ReadSpec(filepath.Join(base, name))
		if err != nil {
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}
