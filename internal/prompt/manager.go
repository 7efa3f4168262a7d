package prompt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docforge-ai/docforge/internal/filestore"
	"github.com/docforge-ai/docforge/internal/pkg/errs"
)

const (
	defaultCacheSize = 256
	templatePrefix   = "prompts"
	fallbackLanguage = "default"
)

// Manager resolves prompt templates for an agent and source language.
// Templates live in the object store under prompts/{agent}/{language}-prompt.txt
// and are cached with a TTL so template edits show up without a restart.
// When no stored template exists the compiled-in default is used.
type Manager struct {
	store    filestore.Store
	cache    *expirable.LRU[string, string]
	language string
}

func NewManager(store filestore.Store, language string, ttl time.Duration) *Manager {
	if language == "" {
		language = fallbackLanguage
	}
	return &Manager{
		store:    store,
		cache:    expirable.NewLRU[string, string](defaultCacheSize, nil, ttl),
		language: language,
	}
}

func templateKey(agent string, language string) string {
	return fmt.Sprintf("%s/%s/%s-prompt.txt", templatePrefix, agent, language)
}

// Template returns the raw template for agent, trying the configured
// language first, then the language-neutral template, then the built-in.
func (m *Manager) Template(ctx context.Context, agent string) (string, error) {
	for _, language := range []string{m.language, fallbackLanguage} {
		key := templateKey(agent, language)
		if cached, ok := m.cache.Get(key); ok {
			return cached, nil
		}
		data, err := m.store.Get(ctx, key)
		if err != nil {
			if errs.IsNotFound(err) {
				continue
			}
			logutil.GetLogger(ctx).Warn("load prompt template failed, using fallback",
				zap.String("key", key), zap.Error(err))
			continue
		}
		tpl := string(data)
		m.cache.Add(key, tpl)
		return tpl, nil
	}
	tpl, ok := defaultTemplates[agent]
	if !ok {
		return "", fmt.Errorf("no prompt template for agent %s: %w", agent, errs.ErrNotFound)
	}
	return tpl, nil
}

// Render fills the template for agent with the given content.
func (m *Manager) Render(ctx context.Context, agent string, content string) (string, error) {
	tpl, err := m.Template(ctx, agent)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(tpl, "{content}", content), nil
}

// RenderChunk renders the agent template for one chunk of a split source,
// prefixing chunk position so the model knows it sees a partial input.
func (m *Manager) RenderChunk(ctx context.Context, agent string, content string, index int, total int) (string, error) {
	rendered, err := m.Render(ctx, agent, content)
	if err != nil {
		return "", err
	}
	header := fmt.Sprintf(
		"This is chunk %d of %d from a larger codebase. Analyze this portion; a later pass merges all chunk results.\n\n",
		index, total)
	return header + rendered, nil
}
