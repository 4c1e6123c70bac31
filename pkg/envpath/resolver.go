package envpath

import (
	"log/slog"
)

// Resolver infers the environment or project root backing a kernel's
// interpreter. It evaluates a fixed, ordered list of path-shape rules and
// returns the first match; rules that need corroborating filesystem
// artifacts run before rules that trust path syntax alone.
type Resolver struct {
	fs     Prober
	rules  []rule
	logger *slog.Logger
}

// ruleInput carries both views of the executable path: the original as
// reported by the kernel spec, and the symlink-resolved real path.
type ruleInput struct {
	original    string
	real        string
	resourceDir string
	fs          Prober
}

type rule struct {
	name  string
	apply func(in ruleInput) (string, bool)
}

// NewResolver builds a resolver over the given prober. A nil prober
// selects the host filesystem.
func NewResolver(fs Prober) *Resolver {
	if fs == nil {
		fs = NewProber()
	}
	return &Resolver{fs: fs, rules: defaultRules()}
}

func (r *Resolver) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// Resolve returns the inferred root for the given executable path and
// kernel resource directory, or false when no rule matches. An empty
// executable path never resolves. The computation is stateless; the same
// inputs against an unchanged filesystem give the same answer.
func (r *Resolver) Resolve(executablePath, resourceDir string) (string, bool) {
	if executablePath == "" {
		return "", false
	}
	in := ruleInput{
		original:    executablePath,
		real:        r.fs.Resolve(executablePath),
		resourceDir: resourceDir,
		fs:          r.fs,
	}
	for _, rule := range r.rules {
		if root, ok := rule.apply(in); ok {
			r.logDebug("env_path_resolved", "rule", rule.name, "executable", executablePath, "root", root)
			return root, true
		}
	}
	r.logDebug("env_path_unresolved", "executable", executablePath)
	return "", false
}

func (r *Resolver) logDebug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
