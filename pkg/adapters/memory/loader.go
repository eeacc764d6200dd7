package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/guidepost/pkg/domain"
)

// Loader implements ports.ScriptLoader over a script held in memory.
type Loader struct {
	script domain.Script
}

// NewLoader creates a loader returning copies of script.
func NewLoader(script domain.Script) *Loader {
	return &Loader{script: script}
}

// NewFromJSON creates a loader from a JSON encoded script.
// This keeps fixtures short in tests and embedded hosts.
func NewFromJSON(data []byte) (*Loader, error) {
	var script domain.Script
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to unmarshal script: %w", err)
	}
	return &Loader{script: script}, nil
}

// LoadScript returns a copy of the script.
func (l *Loader) LoadScript(ctx context.Context) (*domain.Script, error) {
	out := l.script
	out.Steps = append([]domain.Step(nil), l.script.Steps...)
	return &out, nil
}
