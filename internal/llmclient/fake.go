package llmclient

import (
	"context"
	"encoding/json"
)

// FakeClient returns canned JSON payloads per phase for offline/testing.
// Responses are keyed by the phase tag in the context; Err, when set,
// is returned for every call.
type FakeClient struct {
	Responses map[string]json.RawMessage
	Err       error

	// Calls records the phases seen, in order.
	Calls []string
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	phase := PhaseFrom(ctx)
	f.Calls = append(f.Calls, phase)
	if f.Err != nil {
		return nil, f.Err
	}
	if raw, ok := f.Responses[phase]; ok {
		return raw, nil
	}
	return json.RawMessage(`{}`), nil
}
