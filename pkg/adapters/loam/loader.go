package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/tgl"
	"github.com/aretw0/loam"
)

// Loader adapts the Loam library to the GenSON SchemaLoader interface.
// Each document is one node: its front matter carries title, line, prop and
// slot, and a Markdown body stands in for a missing line.
type Loader struct {
	Repo *loam.TypedRepository[NodeMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[NodeMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at path and wraps it.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across JSON and Markdown/YAML
	// documents; read-only mode avoids Loam's sandbox behavior.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[NodeMetadata](repo)), nil
}

// GetNode retrieves a node document and renders it as a JSON definition.
func (l *Loader) GetNode(key string) ([]byte, error) {
	ctx := context.Background()

	// We trust Loam to find the file (e.g. town.md) when asked for "town".
	doc, err := l.Repo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w: %w", key, domain.ErrNodeNotFound, err)
	}

	data := buildDefinition(doc.Data, doc.Content)

	bytes, err := json.Marshal(tgl.Normalize(data))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal node data: %w", err)
	}
	return bytes, nil
}

func buildDefinition(meta NodeMetadata, content string) map[string]any {
	data := make(map[string]any)
	if meta.Title != nil {
		data["title"] = meta.Title
	}

	// 1. Line: explicit metadata wins over the document body
	if meta.Line != nil {
		data["line"] = meta.Line
	} else if body := strings.TrimSpace(content); body != "" {
		data["line"] = body
	}

	if len(meta.Prop) > 0 {
		data["prop"] = meta.Prop
	}

	// 2. Slot, falling back to the legacy alias
	if meta.Slot != nil {
		data["slot"] = meta.Slot
	} else if meta.Entry != nil {
		data["slot"] = meta.Entry
	}
	return data
}

// ListNodes lists all nodes in the repository, sorted by key.
func (l *Loader) ListNodes() ([]string, error) {
	ctx := context.Background()
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		// Collision Detection
		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable. It emits the ID of each changed document.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
