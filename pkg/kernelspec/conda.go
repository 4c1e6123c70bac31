package kernelspec

import (
	"os"
	"path/filepath"
	"sort"
)

// CondaProvider discovers kernels installed inside conda environments,
// covering envs that never registered a kernel spec with Jupyter itself.
// It is optional: hosts without a conda installation report
// ErrProviderUnavailable and contribute nothing.
type CondaProvider struct {
	// Root overrides conda root detection when set.
	Root string
}

func (p *CondaProvider) Name() string { return "conda" }

func (p *CondaProvider) Specs() ([]KernelSpec, error) {
	root := p.Root
	if root == "" {
		root = detectCondaRoot()
	}
	if root == "" || !isDir(root) {
		return nil, ErrProviderUnavailable
	}

	specs := scanKernels(filepath.Join(root, "share", "jupyter"))

	envsDir := filepath.Join(root, "envs")
	entries, err := os.ReadDir(envsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return specs, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, env := range names {
		found := scanKernels(filepath.Join(envsDir, env, "share", "jupyter"))
		for _, spec := range found {
			// Kernels inside envs usually reuse generic names like
			// "python3"; qualify them so envs do not stomp each other.
			spec.Name = "conda-env-" + env + "-" + spec.Name
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

func detectCondaRoot() string {
	if root := os.Getenv("CONDA_ROOT"); root != "" {
		return root
	}
	if exe := os.Getenv("CONDA_EXE"); exe != "" {
		return filepath.Dir(filepath.Dir(exe))
	}

	candidates := []string{"/opt/conda", "/usr/local/conda"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, "miniconda3"),
			filepath.Join(home, "anaconda3"),
		)
	}
	for _, root := range candidates {
		if isDir(root) {
			return root
		}
	}
	return ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
