package extract

import (
	"context"
	"log/slog"
	"strings"

	"orgscan/internal/logging"
)

// noneSentinel is the literal token the LLM prompts request when no company
// is present in the text.
const noneSentinel = "none"

// Strategy attempts to pull an organization name out of document text. An
// empty result with a nil error means the strategy found nothing; an error
// means the strategy itself faulted. Either way the engine moves on.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, text string) (string, error)
}

// Engine runs an ordered cascade of strategies, first non-empty result wins.
// Individual strategy faults are logged and swallowed; the engine always
// terminates with a definite answer.
type Engine struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewEngine constructs an engine over the given strategies, tried in order.
func NewEngine(logger *slog.Logger, strategies ...Strategy) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{strategies: strategies, logger: logger}
}

// ExtractName returns the first organization name any strategy produces, or
// empty when the whole cascade comes up dry.
func (e *Engine) ExtractName(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	for _, strategy := range e.strategies {
		name, err := strategy.Extract(ctx, text)
		if err != nil {
			e.logger.Warn("name extraction strategy failed",
				logging.String("strategy", strategy.Name()),
				logging.Error(err),
			)
			continue
		}
		name = normalizeResult(name)
		if name == "" {
			continue
		}
		e.logger.Debug("name extracted",
			logging.String("strategy", strategy.Name()),
			logging.String("company", name),
		)
		return name
	}
	return ""
}

// normalizeResult trims a strategy result and maps the none sentinel to empty.
func normalizeResult(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, noneSentinel) {
		return ""
	}
	return trimmed
}

// prefix bounds the text sent to a network backend.
func prefix(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return text[:limit]
}
