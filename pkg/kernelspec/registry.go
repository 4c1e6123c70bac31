package kernelspec

import (
	"errors"
	"fmt"

	"log/slog"
)

// NotFoundError reports that no installed kernel carries the requested
// display name.
type NotFoundError struct {
	DisplayName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("kernel with display name '%s' not found", e.DisplayName)
}

// Registry aggregates kernel specs from an ordered list of providers.
// It holds no state between queries; every Snapshot call queries the
// providers afresh.
type Registry struct {
	providers []Provider
	logger    *slog.Logger
}

func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

func (r *Registry) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// Snapshot queries every provider in order and aggregates the results.
// When two providers supply the same kernel name the later provider
// wins, but the name keeps its first-insertion position. A provider
// that is unavailable is skipped silently; one that fails is logged at
// debug level and contributes nothing. The lookup itself never fails.
func (r *Registry) Snapshot() *Snapshot {
	snap := &Snapshot{specs: make(map[string]KernelSpec)}
	for _, p := range r.providers {
		specs, err := p.Specs()
		if err != nil {
			if !errors.Is(err, ErrProviderUnavailable) {
				r.logDebug("kernelspec_provider_failed", "provider", p.Name(), "error", err)
			}
			continue
		}
		for _, spec := range specs {
			snap.add(spec)
		}
	}
	return snap
}

func (r *Registry) logDebug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

// Snapshot is an insertion-ordered view of the aggregated kernel specs,
// immutable once built.
type Snapshot struct {
	names []string
	specs map[string]KernelSpec
}

func (s *Snapshot) add(spec KernelSpec) {
	if _, ok := s.specs[spec.Name]; !ok {
		s.names = append(s.names, spec.Name)
	}
	s.specs[spec.Name] = spec
}

// Names returns the kernel names in insertion order.
func (s *Snapshot) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *Snapshot) Get(name string) (KernelSpec, bool) {
	spec, ok := s.specs[name]
	return spec, ok
}

func (s *Snapshot) Len() int { return len(s.names) }

// All returns every spec in insertion order.
func (s *Snapshot) All() []KernelSpec {
	out := make([]KernelSpec, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.specs[name])
	}
	return out
}

// FindByDisplayName returns the first spec whose display name equals the
// query exactly, case-sensitive, in insertion order. Duplicate display
// names resolve to whichever kernel aggregated first; that tie-break
// follows provider order and is deliberate.
func (s *Snapshot) FindByDisplayName(displayName string) (KernelSpec, error) {
	for _, name := range s.names {
		if spec := s.specs[name]; spec.DisplayName == displayName {
			return spec, nil
		}
	}
	return KernelSpec{}, &NotFoundError{DisplayName: displayName}
}
