package observability

import (
	"log/slog"

	"github.com/aretw0/genson/pkg/domain"
)

// LogHooks returns lifecycle hooks that write each event to logger.
// Expansions log at debug level; missing nodes and truncated loops warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeExpand: func(e *domain.NodeEvent) {
			logger.Debug(string(e.Type),
				"key", e.Key,
				"depth", e.Depth,
				"children", e.Children,
				"duration", e.Duration,
			)
		},
		OnNodeMissing: func(e *domain.NodeEvent) {
			logger.Warn(string(e.Type), "key", e.Key, "depth", e.Depth)
		},
		OnBranchSelected: func(e *domain.BranchEvent) {
			logger.Debug(string(e.Type), "key", e.Key, "index", e.Index, "weights", e.Weights)
		},
		OnLoopTruncated: func(e *domain.LoopEvent) {
			logger.Warn(string(e.Type), "key", e.Key, "limit", e.Limit)
		},
	}
}
