package runtime

import (
	"context"
	"time"

	"github.com/vinodismyname/buzzlens/config"
	"golang.org/x/sync/semaphore"
)

// Limits captures the concurrency and import guardrails configured for the server.
type Limits struct {
	MaxConcurrentRequests int
	MaxOpenDatasets       int

	MaxImportRows int
	ChunkSize     int
	PageSize      int
	MaxPageSize   int

	OperationTimeout      time.Duration
	AcquireRequestTimeout time.Duration
}

// NewLimits fills unset values from config defaults.
func NewLimits(maxConcurrentRequests, maxOpenDatasets int) Limits {
	if maxConcurrentRequests <= 0 {
		maxConcurrentRequests = config.DefaultMaxConcurrentRequests
	}
	if maxOpenDatasets <= 0 {
		maxOpenDatasets = config.DefaultMaxOpenDatasets
	}
	return Limits{
		MaxConcurrentRequests: maxConcurrentRequests,
		MaxOpenDatasets:       maxOpenDatasets,
		MaxImportRows:         config.DefaultMaxImportRows,
		ChunkSize:             config.DefaultChunkSize,
		PageSize:              config.DefaultPageSize,
		MaxPageSize:           config.DefaultMaxPageSize,
		OperationTimeout:      config.DefaultOperationTimeout,
		AcquireRequestTimeout: config.DefaultAcquireRequestTimeout,
	}
}

// LimitsFromConfig overlays the loaded configuration on the defaults.
func LimitsFromConfig(c config.LimitsConfig) Limits {
	l := NewLimits(c.MaxConcurrentRequests, c.MaxOpenDatasets)
	if c.MaxImportRows > 0 {
		l.MaxImportRows = c.MaxImportRows
	}
	if c.ChunkSize > 0 {
		l.ChunkSize = c.ChunkSize
	}
	if c.OperationTimeout > 0 {
		l.OperationTimeout = c.OperationTimeout
	}
	return l
}

// ClampPageSize maps a requested page size into [1, MaxPageSize].
func (l Limits) ClampPageSize(n int) int {
	if n <= 0 {
		return l.PageSize
	}
	return min(n, l.MaxPageSize)
}

// Controller holds the request and dataset semaphores.
type Controller struct {
	limits           Limits
	requestSemaphore *semaphore.Weighted
	datasetSemaphore *semaphore.Weighted
}

// NewController constructs a Controller backed by weighted semaphores.
func NewController(limits Limits) *Controller {
	return &Controller{
		limits:           limits,
		requestSemaphore: semaphore.NewWeighted(int64(limits.MaxConcurrentRequests)),
		datasetSemaphore: semaphore.NewWeighted(int64(limits.MaxOpenDatasets)),
	}
}

// AcquireRequest reserves capacity for an incoming request.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	return c.requestSemaphore.Acquire(ctx, 1)
}

// ReleaseRequest frees previously-acquired request capacity.
func (c *Controller) ReleaseRequest() {
	c.requestSemaphore.Release(1)
}

// AcquireDataset reserves a slot for one imported dataset.
func (c *Controller) AcquireDataset(ctx context.Context) error {
	return c.datasetSemaphore.Acquire(ctx, 1)
}

// TryAcquireDataset reserves a slot without waiting.
func (c *Controller) TryAcquireDataset() bool {
	return c.datasetSemaphore.TryAcquire(1)
}

// ReleaseDataset frees a dataset slot.
func (c *Controller) ReleaseDataset() {
	c.datasetSemaphore.Release(1)
}

// LimitsSnapshot exposes the configured guardrails.
func (c *Controller) LimitsSnapshot() Limits {
	return c.limits
}
