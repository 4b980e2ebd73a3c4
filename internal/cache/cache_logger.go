package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern, logging instead of
// returning failures. Cache invalidation never fails a request.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys, logging failures.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateFeedbackCaches drops every aggregate touched by a feedback
// write: dashboard stats, analytics and per-course listings.
func InvalidateFeedbackCaches(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Stats, "*")
	SafeInvalidatePattern(ctx, cm.Course, "*")
}
