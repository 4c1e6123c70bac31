package kernelspec

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDirs returns the Jupyter data directories to search for kernels,
// ordered lowest precedence first so later directories overwrite earlier
// ones during aggregation: system dirs, then an active env prefix, then
// the per-user dir, then JUPYTER_PATH entries.
func DataDirs() []string {
	dirs := []string{
		"/usr/share/jupyter",
		"/usr/local/share/jupyter",
	}

	if prefix := activePrefix(); prefix != "" {
		dirs = append(dirs, filepath.Join(prefix, "share", "jupyter"))
	}
	if user := userDataDir(); user != "" {
		dirs = append(dirs, user)
	}
	for _, p := range filepath.SplitList(os.Getenv("JUPYTER_PATH")) {
		if p != "" {
			dirs = append(dirs, p)
		}
	}
	return dirs
}

// activePrefix reports the interpreter prefix of an activated
// environment, if any.
func activePrefix() string {
	if prefix := os.Getenv("VIRTUAL_ENV"); prefix != "" {
		return prefix
	}
	return os.Getenv("CONDA_PREFIX")
}

func userDataDir() string {
	if dir := os.Getenv("JUPYTER_DATA_DIR"); dir != "" {
		return dir
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Jupyter")
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return filepath.Join(appdata, "jupyter")
		}
		return filepath.Join(home, "jupyter")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "jupyter")
		}
		return filepath.Join(home, ".local", "share", "jupyter")
	}
}
