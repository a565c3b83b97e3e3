// Package kv holds the two small key/value structures behind search
// suggestions and like gating, each with a Redis and an in-process backend.
package kv

import "context"

// RecencyStore is a set of strings ranked by a numeric score (insertion time).
// Re-adding a member replaces its score.
type RecencyStore interface {
	Add(ctx context.Context, member string, score float64) error
	Remove(ctx context.Context, members ...string) error
	// Newest returns up to limit members, highest score first.
	Newest(ctx context.Context, limit int) ([]string, error)
	// TrimTo drops the lowest-scored members until at most keep remain.
	TrimTo(ctx context.Context, keep int) error
	Len(ctx context.Context) (int64, error)
}
