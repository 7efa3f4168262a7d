package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Fragment is one piece of streamed model output. A non-nil Err terminates
// the stream; no further fragments follow it.
type Fragment struct {
	Text string
	Err  error
}

type IProvider interface {
	Name() string
	Generate(ctx context.Context, model string, prompt string) (string, error)
	GenerateStream(ctx context.Context, model string, prompt string) (<-chan Fragment, error)
}

type IStreamer interface {
	GenerateStream(ctx context.Context, prompt string) (<-chan Fragment, error)
	Generate(ctx context.Context, prompt string) (string, error)
}

type streamer struct {
	provider IProvider
	model    string
}

func NewStreamer(p IProvider, model string) IStreamer {
	return &streamer{provider: p, model: model}
}

func (s *streamer) GenerateStream(ctx context.Context, prompt string) (<-chan Fragment, error) {
	return s.provider.GenerateStream(ctx, s.model, prompt)
}

func (s *streamer) Generate(ctx context.Context, prompt string) (string, error) {
	return s.provider.Generate(ctx, s.model, prompt)
}

type ProviderFactory func(args interface{}) (IProvider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (IProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
