package envpath

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	dotVenvSuffixRe = regexp.MustCompile(`^(.*)/\.venv/bin/python.*$`)
	binPythonRe     = regexp.MustCompile(`^(.*)/bin/python.*$`)
	localEnvsRe     = regexp.MustCompile(`^(.*)/([^/]+)/envs/[^/]+/bin/python.*$`)
	condaEnvRe      = regexp.MustCompile(`^(.*/(?:envs|conda)/[^/]+)(?:/bin/python.*)?$`)
	baseCondaRe     = regexp.MustCompile(`^(/opt/conda|/home/[^/]+/(?:mini)?conda3?|/usr/local/conda)(?:/bin/python.*)?$`)
)

const kernelsMarker = "/share/jupyter/kernels/"

// System-area parents that disqualify a path from being treated as a
// project-local envs store. Kept to exactly this set.
var systemAreaNames = map[string]bool{
	"opt":  true,
	"usr":  true,
	"home": true,
}

func defaultRules() []rule {
	return []rule{
		{name: "dot_venv", apply: dotVenvContainment},
		{name: "dot_venv_suffix", apply: dotVenvSuffix},
		{name: "named_venv", apply: namedVenv},
		{name: "local_envs_store", apply: localEnvsStore},
		{name: "conda_env", apply: condaEnv},
		{name: "base_conda", apply: baseConda},
		{name: "resource_dir", apply: resourceDirRoot},
		{name: "env_shape", apply: envShape},
	}
}

// dotVenvContainment takes everything before a literal /.venv/ segment as
// the project root. The original path is checked before the real one:
// .venv/bin/python is often a symlink into a system interpreter, and the
// symlink target must not be mistaken for the project.
func dotVenvContainment(in ruleInput) (string, bool) {
	for _, p := range []string{in.original, in.real} {
		idx := strings.Index(p, "/.venv/")
		if idx < 0 {
			continue
		}
		if root := p[:idx]; in.fs.IsDir(root) {
			return root, true
		}
	}
	return "", false
}

// dotVenvSuffix re-checks the literal <root>/.venv/bin/python shape on
// the original path when the containment probe came up empty.
func dotVenvSuffix(in ruleInput) (string, bool) {
	m := dotVenvSuffixRe.FindStringSubmatch(in.original)
	if m == nil {
		return "", false
	}
	if in.fs.IsDir(m[1]) {
		return m[1], true
	}
	return "", false
}

// namedVenv accepts <env>/bin/python when pyvenv.cfg sits directly inside
// <env>. The env directory itself is the root, not its parent.
func namedVenv(in ruleInput) (string, bool) {
	m := binPythonRe.FindStringSubmatch(in.original)
	if m == nil {
		return "", false
	}
	if in.fs.Exists(filepath.Join(m[1], "pyvenv.cfg")) {
		return m[1], true
	}
	return "", false
}

// localEnvsStore matches <A>/<B>/envs/<name>/bin/python where B is not a
// system-area name, and returns A, two levels above envs/<name>. This is
// a project carrying its own environment store, not a global install.
func localEnvsStore(in ruleInput) (string, bool) {
	m := localEnvsRe.FindStringSubmatch(in.real)
	if m == nil || systemAreaNames[m[2]] {
		return "", false
	}
	if in.fs.IsDir(m[1]) {
		return m[1], true
	}
	return "", false
}

// condaEnv matches .../envs/<name> or .../conda/<name>. Global installs
// are trusted on path shape alone; no existence check.
func condaEnv(in ruleInput) (string, bool) {
	m := condaEnvRe.FindStringSubmatch(in.real)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// baseConda matches the conventional base install roots.
func baseConda(in ruleInput) (string, bool) {
	m := baseCondaRe.FindStringSubmatch(in.real)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// resourceDirRoot falls back to the environment that installed the kernel
// spec: everything before /share/jupyter/kernels/ in the resource dir.
func resourceDirRoot(in ruleInput) (string, bool) {
	idx := strings.Index(in.resourceDir, kernelsMarker)
	if idx <= 0 {
		return "", false
	}
	return in.resourceDir[:idx], true
}

// envShape is the last resort: <root>/bin/python with a sibling lib/
// directory looks like an installed environment.
func envShape(in ruleInput) (string, bool) {
	m := binPythonRe.FindStringSubmatch(in.real)
	if m == nil {
		return "", false
	}
	if in.fs.IsDir(filepath.Join(m[1], "lib")) {
		return m[1], true
	}
	return "", false
}
