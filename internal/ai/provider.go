// Package ai wraps the inference providers behind one capability contract:
// generate structured text from a prompt. Callers are responsible for
// extracting embedded JSON and must tolerate malformed output.
package ai

import (
	"context"
	"errors"
)

// TokenUsage reports prompt/completion token counts for one call.
type TokenUsage struct {
	Input  int
	Output int
}

// Result is the raw outcome of one inference call.
type Result struct {
	Text  string
	Usage TokenUsage
}

// GenerateOptions tunes a single call.
type GenerateOptions struct {
	System      string
	Temperature float64
	MaxTokens   int
}

// ProviderClient is the inference capability used by the analyzers. Both the
// relevance and duplicate stages treat failures as recoverable; an error here
// never aborts a discovery run.
type ProviderClient interface {
	Name() string
	GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (*Result, error)
}

// ErrNoProvider is returned when neither a brand provider nor a default
// provider is configured.
var ErrNoProvider = errors.New("ai: no provider configured")
