// Package config carries the pool library's ambient configuration: the
// defaults new pools are opened with, loaded from a JSON file and
// optionally hot-reloaded while the process runs.
package config

import (
	"encoding/json"
	"os"

	"github.com/orizon-lang/orizon/internal/pool"
)

// Defaults holds the values new pools are opened with when a caller does
// not override them explicitly. None of this affects a pool once it is
// open — the core engine in internal/pool never relocates or resizes a
// live pool, so a reloaded Defaults only ever governs pools opened after
// the reload.
type Defaults struct {
	// PoolSize is the backing buffer size, in bytes, used when a caller
	// does not specify one.
	PoolSize uintptr `json:"poolSize"`
	// Policy is "first-fit" or "best-fit".
	Policy string `json:"policy"`
}

// policy resolves the configured policy name to a pool.Policy, defaulting
// to pool.FirstFit for an empty or unrecognized value.
func (d Defaults) policy() pool.Policy {
	if d.Policy == "best-fit" {
		return pool.BestFit
	}

	return pool.FirstFit
}

// DefaultDefaults returns the built-in fallback used when no config file is
// present.
func DefaultDefaults() Defaults {
	return Defaults{PoolSize: 1 << 20, Policy: "first-fit"}
}

// Load reads Defaults from a JSON file at path.
func Load(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults{}, err
	}

	var d Defaults
	if err := json.Unmarshal(data, &d); err != nil {
		return Defaults{}, err
	}

	if d.PoolSize == 0 {
		d.PoolSize = DefaultDefaults().PoolSize
	}
	if d.Policy == "" {
		d.Policy = DefaultDefaults().Policy
	}

	return d, nil
}

// OpenDefault opens a new pool on r using d's configured size and policy.
func OpenDefault(r *pool.Registry, d Defaults) (*pool.Pool, error) {
	return r.Open(d.PoolSize, d.policy())
}
