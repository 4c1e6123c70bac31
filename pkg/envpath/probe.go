package envpath

import (
	"os"
	"path/filepath"
)

// Prober answers read-only questions about the filesystem. Any probe
// failure is reported as false (or the path unchanged for Resolve),
// never as an error.
type Prober interface {
	Exists(path string) bool
	IsDir(path string) bool
	Resolve(path string) string
}

type osProber struct{}

// NewProber returns a Prober backed by the host filesystem.
func NewProber() Prober { return osProber{} }

func (osProber) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osProber) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (osProber) Resolve(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}
