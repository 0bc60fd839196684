package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration for a simulation run: the network
// topology, the flow set (explicit or randomly generated), and the
// ambient stack (logging, metrics, tracing, cache, audit).
type Config struct {
	App        AppConfig        `koanf:"app"`
	Simulation SimulationConfig `koanf:"simulation"`
	Network    NetworkConfig    `koanf:"network"`
	Flows      []FlowConfig     `koanf:"flows"`
	Random     RandomFlowConfig `koanf:"random"`
	Log        LogConfig        `koanf:"log"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Tracing    TracingConfig    `koanf:"tracing"`
	Cache      CacheConfig      `koanf:"cache"`
	Audit      AuditConfig      `koanf:"audit"`
}

// AppConfig holds general run metadata.
type AppConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
	Debug   bool   `koanf:"debug"`
}

// SimulationConfig holds the CQF cycle parameters and run-level controls.
type SimulationConfig struct {
	CycleDurationUs   float64       `koanf:"cycle_duration_t"`
	CompletionTimeout time.Duration `koanf:"completion_timeout"`
	Seed              int64         `koanf:"seed"`
	MaxColGenIter     int           `koanf:"max_colgen_iterations"`
	RoundingTrials    int           `koanf:"rounding_trials"`
}

// NetworkConfig is the JSON-config representation of a domain.Network:
// a node list, an undirected link list, and optional per-node τ overrides.
type NetworkConfig struct {
	Nodes         []int64            `koanf:"nodes"`
	Links         []LinkConfig       `koanf:"links"`
	QueuingDelays map[string]float64 `koanf:"queuing_delays"`
}

// LinkConfig is one undirected edge as read from config.
type LinkConfig struct {
	Node1     int64   `koanf:"node1"`
	Node2     int64   `koanf:"node2"`
	DelayMs   float64 `koanf:"delay"`
	Bandwidth float64 `koanf:"bandwidth"`
}

// FlowConfig is an explicitly-specified flow request.
type FlowConfig struct {
	FlowID      int64   `koanf:"flow_id"`
	ArrivalRate float64 `koanf:"arrival_rate"`
	BurstSize   float64 `koanf:"burst_size"`
	MaxE2EDelay float64 `koanf:"max_e2e_delay"`
	MaxPktSize  float64 `koanf:"max_pkt_size"`
	Src         int64   `koanf:"src"`
	Dest        int64   `koanf:"dest"`
}

// RandomFlowConfig drives internal/randomflow when --random N is passed,
// or when Count is positive and no explicit flows are configured; the
// generated flows replace the explicit flows list.
type RandomFlowConfig struct {
	Count       int     `koanf:"count"`
	MinRate     float64 `koanf:"min_rate"`
	MaxRate     float64 `koanf:"max_rate"`
	MinBurst    float64 `koanf:"min_burst"`
	MaxBurst    float64 `koanf:"max_burst"`
	MinE2EDelay float64 `koanf:"min_e2e_delay"`
	MaxE2EDelay float64 `koanf:"max_e2e_delay"`
	MaxPktSize  float64 `koanf:"max_pkt_size"`
}

// LogConfig configures internal/logger.
type LogConfig struct {
	Level      string `koanf:"level"`     // debug, info, warn, error
	Format     string `koanf:"format"`    // json, text
	Output     string `koanf:"output"`    // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"` // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig configures internal/metrics. Addr is empty to disable
// the Prometheus HTTP listener entirely.
type MetricsConfig struct {
	Addr      string `koanf:"addr"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig configures internal/telemetry.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// CacheConfig configures internal/cache's admission-plan cache.
type CacheConfig struct {
	Driver     string        `koanf:"driver"` // memory, redis, off
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // for the in-memory driver
}

// Address returns host:port for the cache backend.
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuditConfig configures internal/audit.
type AuditConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Backend     string        `koanf:"backend"` // stdout, file
	FilePath    string        `koanf:"file_path"`
	BufferSize  int           `koanf:"buffer_size"`
	FlushPeriod time.Duration `koanf:"flush_period"`
}

// Validate checks the configuration for internal consistency before a
// run starts, collecting every problem instead of failing on the first.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Simulation.CycleDurationUs <= 0 {
		errs = append(errs, "simulation.cycle_duration_t must be positive")
	}

	if len(c.Network.Nodes) == 0 && len(c.Network.Links) == 0 {
		errs = append(errs, "network must declare at least one node or link")
	}

	if len(c.Flows) == 0 && c.Random.Count <= 0 {
		errs = append(errs, "either flows or random.count must be non-empty")
	}

	validCacheDrivers := map[string]bool{"memory": true, "redis": true, "off": true}
	if !validCacheDrivers[strings.ToLower(c.Cache.Driver)] {
		errs = append(errs, fmt.Sprintf("cache.driver must be one of: memory, redis, off, got %s", c.Cache.Driver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}
