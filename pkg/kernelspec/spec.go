package kernelspec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SpecFile is the file each kernel resource directory must contain.
const SpecFile = "kernel.json"

// KernelSpec is a read-only snapshot of one installed kernel. Display
// names are not guaranteed unique across kernels.
type KernelSpec struct {
	Name          string            `json:"name"`
	DisplayName   string            `json:"display_name"`
	Argv          []string          `json:"argv"`
	ResourceDir   string            `json:"resource_dir"`
	Language      string            `json:"language,omitempty"`
	InterruptMode string            `json:"interrupt_mode,omitempty"`
	Env           map[string]string `json:"env,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
}

// ExecutablePath returns the interpreter the kernel launches with:
// argv[0] by convention, or empty when the launch command is missing.
func (s KernelSpec) ExecutablePath() string {
	if len(s.Argv) == 0 {
		return ""
	}
	return s.Argv[0]
}

type specFile struct {
	Argv          []string          `json:"argv"`
	DisplayName   string            `json:"display_name"`
	Language      string            `json:"language"`
	InterruptMode string            `json:"interrupt_mode"`
	Env           map[string]string `json:"env"`
	Metadata      map[string]any    `json:"metadata"`
}

// ReadSpec parses the kernel.json inside dir. The kernel name is the
// directory's base name and the resource dir is dir itself.
func ReadSpec(dir string) (KernelSpec, error) {
	data, err := os.ReadFile(filepath.Join(dir, SpecFile))
	if err != nil {
		return KernelSpec{}, err
	}

	var raw specFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return KernelSpec{}, fmt.Errorf("parse %s in %s: %w", SpecFile, dir, err)
	}

	return KernelSpec{
		Name:          filepath.Base(dir),
		DisplayName:   raw.DisplayName,
		Argv:          raw.Argv,
		ResourceDir:   dir,
		Language:      raw.Language,
		InterruptMode: raw.InterruptMode,
		Env:           raw.Env,
		Metadata:      raw.Metadata,
	}, nil
}
