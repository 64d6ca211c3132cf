package domain

import "context"

// ExplanationStore is the durable, content-addressed explanation cache.
// Put is append-only and idempotent: writing the same key with identical
// content is a no-op; writing different content under an existing key
// fails with ErrCacheKeyConflict and keeps the original entry. Presence
// of an entry must never change a risk verdict, only the narrative text
// attached to it.
type ExplanationStore interface {
	// Get returns the entry for key, or (nil, nil) on a miss.
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Put(ctx context.Context, entry *CacheEntry) error
	Close() error
}

// Generator is the adapter over the external text-generation capability.
// Implementations are selected once at startup; callers never branch on
// provider. Generate honors ctx deadlines and returns
// ErrGeneratorTimeout / ErrGeneratorUnavailable for retryable faults.
type Generator interface {
	Generate(ctx context.Context, systemRole, prompt string, temperature float64, maxTokens int) (string, error)
	Provider() string
	Model() string
	// Healthy reports whether the provider is currently reachable,
	// for the health endpoint only. Never gates generation attempts.
	Healthy(ctx context.Context) bool
}

// ReportStore persists the exported result record shape once a job
// completes. Persistence is an enrichment: a failed write never fails
// the job that produced the records.
type ReportStore interface {
	Save(ctx context.Context, record *ReportRecord) error
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*ReportRecord, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}
