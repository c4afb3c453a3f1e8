package hooks

import "time"

// DefaultTimeout bounds a hook that declares no timeout of its own.
const DefaultTimeout = 30 * time.Second

// Config is the hooks.yml file at the root of a template.
type Config struct {
	Version int   `yaml:"version"`
	Hooks   Stage `yaml:"hooks"`
}

// Stage groups hooks by the point in a bake at which they run.
type Stage struct {
	// PostGen runs in the generated project after pruning, in order.
	PostGen []*HookConfig `yaml:"post_gen"`
}

// HookConfig is one shell command. Timeout is in seconds.
type HookConfig struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"`
}

// Deadline returns the hook's timeout, or DefaultTimeout when unset.
func (h *HookConfig) Deadline() time.Duration {
	if h.Timeout <= 0 {
		return DefaultTimeout
	}
	return time.Duration(h.Timeout) * time.Second
}
