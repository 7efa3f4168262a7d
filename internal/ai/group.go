package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type StreamerEntry struct {
	Name     string
	Streamer IStreamer
}

type groupStreamer struct {
	items []StreamerEntry
}

// NewGroupStreamer tries each streamer in order and falls back to the next
// one when a call fails to start.
func NewGroupStreamer(items []StreamerEntry) IStreamer {
	if len(items) == 0 {
		return nil
	}
	return &groupStreamer{items: items}
}

func (g *groupStreamer) GenerateStream(ctx context.Context, prompt string) (<-chan Fragment, error) {
	var errsSeen []string
	for _, item := range g.items {
		stream, err := item.Streamer.GenerateStream(ctx, prompt)
		if err == nil {
			return stream, nil
		}
		logutil.GetLogger(ctx).Warn("streamer failed, trying next",
			zap.String("name", item.Name), zap.Error(err))
		errsSeen = append(errsSeen, fmt.Sprintf("%s: %v", item.Name, err))
	}
	return nil, fmt.Errorf("all streamers failed: %s", strings.Join(errsSeen, "; "))
}

func (g *groupStreamer) Generate(ctx context.Context, prompt string) (string, error) {
	var errsSeen []string
	for _, item := range g.items {
		result, err := item.Streamer.Generate(ctx, prompt)
		if err == nil {
			return result, nil
		}
		logutil.GetLogger(ctx).Warn("generator failed, trying next",
			zap.String("name", item.Name), zap.Error(err))
		errsSeen = append(errsSeen, fmt.Sprintf("%s: %v", item.Name, err))
	}
	return "", fmt.Errorf("all generators failed: %s", strings.Join(errsSeen, "; "))
}
