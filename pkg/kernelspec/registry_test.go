package kernelspec

import (
	"errors"
	"testing"
)

type staticProvider struct {
	name  string
	specs []KernelSpec
	err   error
}

func (p staticProvider) Name() string { return p.name }

func (p staticProvider) Specs() ([]KernelSpec, error) { return p.specs, p.err }

func TestFindByDisplayName(t *testing.T) {
	reg := NewRegistry(staticProvider{name: "a", specs: []KernelSpec{
		{Name: "python3", DisplayName: "Python 3", ResourceDir: "/opt/kernels/python3"},
		{Name: "julia", DisplayName: "Julia 1.9", ResourceDir: "/opt/kernels/julia"},
	}})

	spec, err := reg.Snapshot().FindByDisplayName("Julia 1.9")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if spec.Name != "julia" || spec.ResourceDir != "/opt/kernels/julia" {
		t.Fatalf("wrong spec returned: %+v", spec)
	}
}

func TestFindByDisplayNameNotFound(t *testing.T) {
	reg := NewRegistry(staticProvider{name: "a", specs: []KernelSpec{
		{Name: "python3", DisplayName: "Python 3"},
	}})

	_, err := reg.Snapshot().FindByDisplayName("No Such Kernel")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.DisplayName != "No Such Kernel" {
		t.Fatalf("error does not carry the display name: %+v", notFound)
	}
}

func TestFindByDisplayNameIsCaseSensitive(t *testing.T) {
	reg := NewRegistry(staticProvider{name: "a", specs: []KernelSpec{
		{Name: "python3", DisplayName: "Python 3"},
	}})
	if _, err := reg.Snapshot().FindByDisplayName("python 3"); err == nil {
		t.Fatalf("case-insensitive match should not succeed")
	}
}

func TestLaterProviderWinsKeepsPosition(t *testing.T) {
	reg := NewRegistry(
		staticProvider{name: "a", specs: []KernelSpec{
			{Name: "python3", DisplayName: "Python 3 (old)"},
			{Name: "rkernel", DisplayName: "R"},
		}},
		staticProvider{name: "b", specs: []KernelSpec{
			{Name: "python3", DisplayName: "Python 3 (new)"},
		}},
	)

	snap := reg.Snapshot()
	spec, ok := snap.Get("python3")
	if !ok || spec.DisplayName != "Python 3 (new)" {
		t.Fatalf("later provider should win, got %+v", spec)
	}
	names := snap.Names()
	if len(names) != 2 || names[0] != "python3" || names[1] != "rkernel" {
		t.Fatalf("overwrite moved the insertion position: %v", names)
	}
}

func TestDuplicateDisplayNamesFirstInsertionWins(t *testing.T) {
	reg := NewRegistry(staticProvider{name: "a", specs: []KernelSpec{
		{Name: "first", DisplayName: "Python 3"},
		{Name: "second", DisplayName: "Python 3"},
	}})

	spec, err := reg.Snapshot().FindByDisplayName("Python 3")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if spec.Name != "first" {
		t.Fatalf("expected first insertion to win, got %q", spec.Name)
	}
}

func TestUnavailableProviderSkipped(t *testing.T) {
	reg := NewRegistry(
		staticProvider{name: "gone", err: ErrProviderUnavailable},
		staticProvider{name: "a", specs: []KernelSpec{{Name: "python3", DisplayName: "Python 3"}}},
	)
	if reg.Snapshot().Len() != 1 {
		t.Fatalf("unavailable provider should contribute nothing")
	}
}

func TestFailingProviderContributesNothing(t *testing.T) {
	reg := NewRegistry(
		staticProvider{
			name:  "broken",
			specs: []KernelSpec{{Name: "ghost", DisplayName: "Ghost"}},
			err:   errors.New("registry exploded"),
		},
		staticProvider{name: "a", specs: []KernelSpec{{Name: "python3", DisplayName: "Python 3"}}},
	)

	snap := reg.Snapshot()
	if snap.Len() != 1 {
		t.Fatalf("failed provider's partial specs must be dropped, got %v", snap.Names())
	}
	if _, err := snap.FindByDisplayName("Python 3"); err != nil {
		t.Fatalf("healthy provider affected by broken one: %v", err)
	}
}
