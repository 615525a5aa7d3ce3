package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(validator.New())
	require.NoError(t, err)
	require.Equal(t, DefaultMaxConcurrentRequests, cfg.MaxConcurrentRequests)
	require.Equal(t, DefaultMaxOpenDatasets, cfg.MaxOpenDatasets)
	require.Equal(t, DefaultMaxImportRows, cfg.MaxImportRows)
	require.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	require.Equal(t, DefaultOperationTimeout, cfg.OperationTimeout)
	require.Equal(t, DefaultDatasetIdleTTL, cfg.DatasetIdleTTL)
	require.Equal(t, DefaultAnomalyHighSigma, cfg.AnomalyHighSigma)
	require.Equal(t, DefaultCorrelationMedium, cfg.CorrelationMedium)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.EnableExport)
	require.Nil(t, cfg.Dirs())
}

func TestLoad_Overrides(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	t.Setenv("BUZZLENS_ALLOWED_DIRS", a+string(os.PathListSeparator)+b)
	t.Setenv("BUZZLENS_MAX_OPEN_DATASETS", "2")
	t.Setenv("BUZZLENS_DATASET_IDLE_TTL", "90s")
	t.Setenv("BUZZLENS_ANOMALY_HIGH_SIGMA", "4")
	t.Setenv("BUZZLENS_ENABLE_EXPORT", "true")
	t.Setenv("BUZZLENS_ALIASES_FILE", filepath.Join(a, "aliases.yaml"))
	t.Setenv("BUZZLENS_LOG_LEVEL", "debug")

	cfg, err := Load(validator.New())
	require.NoError(t, err)
	require.Equal(t, []string{a, b}, cfg.Dirs())
	require.Equal(t, 2, cfg.MaxOpenDatasets)
	require.Equal(t, 90*time.Second, cfg.DatasetIdleTTL)
	require.Equal(t, 4.0, cfg.AnomalyHighSigma)
	require.True(t, cfg.EnableExport)
	require.Equal(t, filepath.Join(a, "aliases.yaml"), cfg.AliasesFile)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("BUZZLENS_MAX_OPEN_DATASETS", "many")
	_, err := Load(nil)
	require.Error(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("BUZZLENS_ANOMALY_HIGH_SIGMA", "1")
	_, err := Load(validator.New())
	require.ErrorContains(t, err, "AnomalyHighSigma")

	t.Setenv("BUZZLENS_ANOMALY_HIGH_SIGMA", "3")
	t.Setenv("BUZZLENS_LOG_LEVEL", "verbose")
	_, err = Load(validator.New())
	require.ErrorContains(t, err, "LogLevel")
}
