package gateway

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/pocketbase/pocketbase/core"
)

// collectionProvider implements metadata.Provider on top of PocketBase
// collections. Only registered model specs are exposed; converted models
// are cached until the next registry build.
type collectionProvider struct {
	app   core.App
	specs map[string]metadata.ModelSpec

	mu    sync.RWMutex
	cache map[string]*metadata.Model
}

func newCollectionProvider(app core.App, specs map[string]metadata.ModelSpec) *collectionProvider {
	return &collectionProvider{
		app:   app,
		specs: specs,
		cache: make(map[string]*metadata.Model),
	}
}

// ModelNames lists registered models in stable order.
func (p *collectionProvider) ModelNames() []string {
	names := make([]string, 0, len(p.specs))
	for name := range p.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Model resolves a registered model, converting its backing collection on
// first use.
func (p *collectionProvider) Model(name string) (*metadata.Model, error) {
	p.mu.RLock()
	cached, ok := p.cache[name]
	p.mu.RUnlock()
	if ok {
		return cached, nil
	}

	spec, registered := p.specs[name]
	if !registered {
		return nil, fmt.Errorf("model %q is not registered", name)
	}

	col, err := p.app.FindCollectionByNameOrId(name)
	if err != nil {
		return nil, fmt.Errorf("collection for model %q: %w", name, err)
	}

	model := metadata.FromCollection(col, spec)

	p.mu.Lock()
	p.cache[name] = model
	p.mu.Unlock()
	return model, nil
}

// invalidate clears the conversion cache, used on registry rebuild.
func (p *collectionProvider) invalidate() {
	p.mu.Lock()
	p.cache = make(map[string]*metadata.Model)
	p.mu.Unlock()
}
