package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/guidepost/pkg/schema"
	"github.com/aretw0/loam"
)

// Loader reads a tour script from a directory with one document per step.
//
// Steps are ordered by document path, so authors prefix file names with a
// sequence number ("010-welcome.md", "020-alerts.md"). A missing id falls back
// to the file name without its prefix and extension; a missing title falls back
// to the first "# " heading of the body.
type Loader struct {
	Repo *loam.TypedRepository[StepMetadata]

	scriptID string
	title    string
}

// Option configures a Loader.
type Option func(*Loader)

// WithScriptID sets the script identifier (default: the directory name).
func WithScriptID(id string) Option {
	return func(l *Loader) { l.scriptID = id }
}

// WithTitle sets the script title.
func WithTitle(title string) Option {
	return func(l *Loader) { l.title = title }
}

// New creates a loader over an existing typed repository.
func New(repo *loam.TypedRepository[StepMetadata], opts ...Option) *Loader {
	l := &Loader{Repo: repo}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open initializes a read-only loam repository at dir.
func Open(dir string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict keeps numeric frontmatter consistent across markdown, JSON and YAML
	// documents. The tour never writes to the directory.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	base := []Option{WithScriptID(filepath.Base(absPath))}
	return New(loam.NewTypedRepository[StepMetadata](repo), append(base, opts...)...), nil
}

// LoadScript lists every step document and assembles the script.
func (l *Loader) LoadScript(ctx context.Context) (*domain.Script, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	script := &domain.Script{ID: l.scriptID, Title: l.title}
	seen := make(map[string]string)
	for _, doc := range docs {
		meta := doc.Data
		if meta.Skip {
			continue
		}

		sd := schema.StepDocument{
			ID:          meta.ID,
			View:        meta.View,
			Target:      meta.Target,
			Action:      meta.Action,
			ActionDelay: meta.ActionDelay,
			Title:       meta.Title,
			Category:    meta.Category,
			Terminal:    meta.Terminal,
		}
		if sd.ID == "" {
			sd.ID = stepIDFromPath(doc.ID)
		}
		sd.Title, sd.Description = splitBody(sd.Title, doc.Content)

		if prev, ok := seen[sd.ID]; ok {
			return nil, fmt.Errorf("%w: step %q is defined in both %q and %q", domain.ErrInvalidStep, sd.ID, prev, doc.ID)
		}
		seen[sd.ID] = doc.ID

		step, err := sd.ToStep()
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", doc.ID, err)
		}
		script.Steps = append(script.Steps, step)
	}

	if len(script.Steps) == 0 {
		return nil, domain.ErrEmptyScript
	}
	return script, nil
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- struct{}{}:
				default: // a reload is already pending
				}
			}
		}
	}()
	return ch, nil
}

// stepIDFromPath turns "020-alerts.md" into "alerts".
func stepIDFromPath(docID string) string {
	name := filepath.Base(filepath.ToSlash(docID))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.IndexAny(name, "-_"); i > 0 && isDigits(name[:i]) {
		name = name[i+1:]
	}
	return name
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// splitBody returns the step title and description from the document body.
func splitBody(title, body string) (string, string) {
	body = strings.TrimSpace(body)
	if title != "" || !strings.HasPrefix(body, "# ") {
		return title, body
	}
	heading, rest, _ := strings.Cut(body, "\n")
	return strings.TrimSpace(strings.TrimPrefix(heading, "# ")), strings.TrimSpace(rest)
}

var (
	_ ports.ScriptLoader = (*Loader)(nil)
	_ ports.Watchable    = (*Loader)(nil)
)
