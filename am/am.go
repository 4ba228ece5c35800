// Package am holds protix configuration ("I am").
//
// Sources, lowest to highest precedence: defaults, ~/.protix/am.toml,
// the nearest am.toml walking up from the working directory, PROTIX_*
// environment variables. Command flags override the loaded values.
package am

// Config represents the protix configuration
type Config struct {
	Input     InputConfig     `mapstructure:"input" toml:"input" json:"input" yaml:"input"`
	Integrate IntegrateConfig `mapstructure:"integrate" toml:"integrate" json:"integrate" yaml:"integrate"`
	Output    OutputConfig    `mapstructure:"output" toml:"output" json:"output" yaml:"output"`
	Database  DatabaseConfig  `mapstructure:"database" toml:"database" json:"database" yaml:"database"`
	Log       LogConfig       `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
	Watch     WatchConfig     `mapstructure:"watch" toml:"watch" json:"watch" yaml:"watch"`
}

// InputConfig names the default input files ("-" = stdin)
type InputConfig struct {
	FASTA    string `mapstructure:"fasta" toml:"fasta" json:"fasta" yaml:"fasta"`
	Taxonomy string `mapstructure:"taxonomy" toml:"taxonomy" json:"taxonomy" yaml:"taxonomy"`
	Terms    string `mapstructure:"terms" toml:"terms" json:"terms" yaml:"terms"`
}

// IntegrateConfig configures the annotation join
type IntegrateConfig struct {
	UnknownCategory string `mapstructure:"unknown_category" toml:"unknown_category" json:"unknown_category" yaml:"unknown_category"` // reject | skip
}

// OutputConfig configures record serialization
type OutputConfig struct {
	Format string `mapstructure:"format" toml:"format" json:"format" yaml:"format"` // json | jsonl | yaml | toml
	Path   string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`         // "-" = stdout
}

// DatabaseConfig configures the SQLite run store
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`
}

// LogConfig configures logging
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
}

// WatchConfig configures `protix ix --watch`
type WatchConfig struct {
	DebounceMs int `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"` // 0 = no debounce
}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// ConfigFileName is the file looked up in ~/.protix and project directories
const ConfigFileName = "am.toml"
