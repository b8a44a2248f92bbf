// config.go — engine options.
package starlang

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Options tunes interpreter behavior. The zero value plus DefaultOptions
// fills are the defaults.
type Options struct {
	// MaxLoopIterations caps for/while iteration counts per loop statement.
	// 0 means unbounded.
	MaxLoopIterations int `yaml:"max_loop_iterations"`

	// TickEvent is the event name emitted by Tick.
	TickEvent string `yaml:"tick_event"`

	// RandomSeed seeds the random namespace. 0 means seed from the clock.
	RandomSeed int64 `yaml:"random_seed"`
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{TickEvent: "tick"}
}

// Option customizes an interpreter at construction time.
type Option func(*Options)

// WithMaxLoopIterations sets the per-loop iteration ceiling.
func WithMaxLoopIterations(n int) Option {
	return func(o *Options) { o.MaxLoopIterations = n }
}

// WithTickEvent overrides the event name Tick emits.
func WithTickEvent(name string) Option {
	return func(o *Options) { o.TickEvent = name }
}

// WithRandomSeed makes the random namespace deterministic.
func WithRandomSeed(seed int64) Option {
	return func(o *Options) { o.RandomSeed = seed }
}

// WithOptions replaces the whole option block, e.g. one read by LoadOptions.
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

// LoadOptions reads a YAML options file. Absent keys keep their defaults.
func LoadOptions(path string) (Options, error) {
	o := DefaultOptions()
	raw, err := os.ReadFile(path)
	if err != nil {
		return o, fmt.Errorf("reading options file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return o, fmt.Errorf("parsing options file %s: %w", path, err)
	}
	if o.TickEvent == "" {
		o.TickEvent = "tick"
	}
	return o, nil
}
