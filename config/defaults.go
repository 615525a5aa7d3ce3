package config

import "time"

// Default runtime limits and guardrails for the buzzlens server. They are
// referenced by internal/runtime and internal/datasets and can be overridden
// through Config (BUZZLENS_* environment variables).

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxOpenDatasets       = 4

	// Import and paging bounds
	DefaultMaxImportRows = 200_000
	DefaultPageSize      = 50
	DefaultMaxPageSize   = 500
	DefaultChunkSize     = 100 // rows per batch between progress events
	DefaultMaxWarnings   = 10  // row-level warnings kept before the overflow marker
	DefaultTopN          = 10

	// Text summaries attached to tool results are trimmed to this many tokens.
	DefaultSummaryTokenBudget = 400
	DefaultSummaryModel       = "gpt-4o"
)

const (
	// Timeouts
	DefaultOperationTimeout      = 30 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second

	// Imported datasets are dropped after this much idle time.
	DefaultDatasetIdleTTL       = 30 * time.Minute
	DefaultDatasetCleanupPeriod = time.Minute
)

// Analytic thresholds.
const (
	DefaultAnomalyHighSigma     = 3.0
	DefaultAnomalyMediumSigma   = 2.0
	DefaultAnomalySigmaFloor    = 0.1 // fraction of |mean| used when a keyword's history is flat
	DefaultLogScaleMultiplier   = 10.0
	DefaultCorrelationStrong    = 0.7
	DefaultCorrelationMedium    = 0.4
	DefaultTrendSlopeNoiseRatio = 0.1
	DefaultTrendMinPoints       = 3
)
