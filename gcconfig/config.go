// Package gcconfig holds the collector's tunables and an
// atomically-swapped global owner for them, following a
// config-owner pattern (`GCO.Get()`).
package gcconfig

import (
	"os"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds per-process and global GC knobs.
type Config struct {
	// MinHeapSize is the per-process configured minimum young-heap size,
	// in words.
	MinHeapSize int `yaml:"min_heap_size" json:"min_heap_size"`

	// GlobalMinHeapSize is H_MIN_SIZE, the runtime-wide floor beneath
	// which MinHeapSize itself is never allowed to fall.
	GlobalMinHeapSize int `yaml:"global_min_heap_size" json:"global_min_heap_size"`

	// LongGCThreshold triggers a monitor message when a single collection
	// takes at least this long.
	LongGCThreshold time.Duration `yaml:"system_monitor_long_gc" json:"system_monitor_long_gc"`

	// LargeHeapThreshold triggers a monitor message when the post-
	// collection live size reaches this many words.
	LargeHeapThreshold int `yaml:"system_monitor_large_heap" json:"system_monitor_large_heap"`

	// MaxGenGCs forces a full sweep (major collection) every N minor
	// collections, regardless of other escalation conditions.
	MaxGenGCs int `yaml:"max_gen_gcs" json:"max_gen_gcs"`

	// TestLongGCSleep is a debug knob: if non-zero, the collector sleeps
	// this long mid-collection to make long-GC monitoring exercisable in
	// tests.
	TestLongGCSleep time.Duration `yaml:"test_long_gc_sleep" json:"test_long_gc_sleep"`
}

// Default returns the out-of-the-box configuration.
func Default() *Config {
	return &Config{
		MinHeapSize:        233,
		GlobalMinHeapSize:  233,
		LongGCThreshold:    100 * time.Millisecond,
		LargeHeapThreshold: 8 << 20,
		MaxGenGCs:          65535,
	}
}

// Load reads a YAML config file, defaulting any unset field.
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	if cfg.MinHeapSize < cfg.GlobalMinHeapSize {
		cfg.MinHeapSize = cfg.GlobalMinHeapSize
	}
	return cfg, nil
}

// Snapshot returns the JSON-serialized configuration, for runtime
// introspection.
func (c *Config) Snapshot() ([]byte, error) {
	return jsonAPI.Marshal(c)
}

// Owner holds the single, atomically-swapped process-wide Config.
type Owner struct {
	cur atomic.Pointer[Config]
}

// GCO is the global config owner.
var GCO = &Owner{}

func init() { GCO.cur.Store(Default()) }

func (o *Owner) Get() *Config { return o.cur.Load() }

func (o *Owner) Put(c *Config) { o.cur.Store(c) }
