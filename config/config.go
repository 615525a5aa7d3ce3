package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix for every environment variable read by Load.
const EnvPrefix = "BUZZLENS"

// Config is the process configuration assembled from BUZZLENS_* variables.
type Config struct {
	LimitsConfig
	ThresholdsConfig
	TablesConfig

	// AllowedDirs is an os.PathListSeparator separated list of directories
	// that imports may read from and exports may write to.
	AllowedDirs  string `envconfig:"ALLOWED_DIRS"`
	EnableExport bool   `envconfig:"ENABLE_EXPORT" default:"false"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

// LimitsConfig bounds concurrency and payload sizes.
type LimitsConfig struct {
	MaxConcurrentRequests int           `envconfig:"MAX_CONCURRENT_REQUESTS" default:"10" validate:"min=1"`
	MaxOpenDatasets       int           `envconfig:"MAX_OPEN_DATASETS" default:"4" validate:"min=1"`
	MaxImportRows         int           `envconfig:"MAX_IMPORT_ROWS" default:"200000" validate:"min=1"`
	ChunkSize             int           `envconfig:"CHUNK_SIZE" default:"100" validate:"min=1"`
	OperationTimeout      time.Duration `envconfig:"OPERATION_TIMEOUT" default:"30s"`
	DatasetIdleTTL        time.Duration `envconfig:"DATASET_IDLE_TTL" default:"30m"`
}

// ThresholdsConfig tunes the statistical analytics.
type ThresholdsConfig struct {
	AnomalyHighSigma     float64 `envconfig:"ANOMALY_HIGH_SIGMA" default:"3" validate:"gtfield=AnomalyMediumSigma"`
	AnomalyMediumSigma   float64 `envconfig:"ANOMALY_MEDIUM_SIGMA" default:"2" validate:"gt=0"`
	AnomalySigmaFloor    float64 `envconfig:"ANOMALY_SIGMA_FLOOR" default:"0.1" validate:"gt=0"`
	LogScaleMultiplier   float64 `envconfig:"LOG_SCALE_MULTIPLIER" default:"10" validate:"gt=1"`
	CorrelationStrong    float64 `envconfig:"CORRELATION_STRONG" default:"0.7" validate:"gtfield=CorrelationMedium,lte=1"`
	CorrelationMedium    float64 `envconfig:"CORRELATION_MEDIUM" default:"0.4" validate:"gt=0"`
	TrendSlopeNoiseRatio float64 `envconfig:"TREND_SLOPE_NOISE_RATIO" default:"0.1" validate:"gte=0"`
}

// TablesConfig points at optional YAML overrides for the lookup tables.
type TablesConfig struct {
	AliasesFile    string `envconfig:"ALIASES_FILE"`
	VocabularyFile string `envconfig:"VOCABULARY_FILE"`
}

// Validator is satisfied by pkg/validation's singleton; kept as an interface so
// this package does not import it.
type Validator interface {
	Struct(any) error
}

// Load reads the BUZZLENS_* environment and validates the result.
func Load(v Validator) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}
	if v != nil {
		if err := v.Struct(cfg); err != nil {
			return nil, fmt.Errorf("config: invalid: %w", err)
		}
	}
	return &cfg, nil
}

// Dirs splits AllowedDirs into individual directory entries.
func (c *Config) Dirs() []string {
	if strings.TrimSpace(c.AllowedDirs) == "" {
		return nil
	}
	return filepath.SplitList(c.AllowedDirs)
}

// Usage prints the recognised environment variables.
func Usage() error {
	var cfg Config
	return envconfig.Usage(EnvPrefix, &cfg)
}
