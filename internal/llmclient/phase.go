package llmclient

import "context"

type phaseKey struct{}

// WithPhase tags a context with the pipeline phase issuing the call
// ("classify", "brief", "tighten"). Used by logging middleware and the
// fake client.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, phaseKey{}, phase)
}

// PhaseFrom returns the phase tag, or "" when none was set.
func PhaseFrom(ctx context.Context) string {
	if v, ok := ctx.Value(phaseKey{}).(string); ok {
		return v
	}
	return ""
}
