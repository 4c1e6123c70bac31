package kernelspec

// StandardProvider scans the host's Jupyter data directories for
// installed kernels. It is always available.
type StandardProvider struct {
	// Paths are the data directories to scan, lowest precedence first.
	Paths []string
}

// NewStandardProvider builds a provider over the host's data dirs plus
// any extra search paths. Extras take the highest precedence.
func NewStandardProvider(extra ...string) *StandardProvider {
	paths := DataDirs()
	for _, p := range extra {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return &StandardProvider{Paths: paths}
}

func (p *StandardProvider) Name() string { return "standard" }

func (p *StandardProvider) Specs() ([]KernelSpec, error) {
	var specs []KernelSpec
	for _, dir := range p.Paths {
		specs = append(specs, scanKernels(dir)...)
	}
	return specs, nil
}
