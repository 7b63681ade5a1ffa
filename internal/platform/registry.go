package platform

import (
	"sort"
	"time"

	"skill-sync-backend/internal/domain"
	"skill-sync-backend/pkg/metrics"
)

// Registry maps platform names to adapters
type Registry struct {
	adapters map[string]domain.PlatformAdapter
}

var _ domain.PlatformRegistry = (*Registry)(nil)

func NewRegistry(adapters ...domain.PlatformAdapter) *Registry {
	r := &Registry{adapters: make(map[string]domain.PlatformAdapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter for a.Name()
func (r *Registry) Register(a domain.PlatformAdapter) {
	r.adapters[a.Name()] = a
}

func (r *Registry) Lookup(name string) (domain.PlatformAdapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns the registered platform names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Options configures the default registry
type Options struct {
	LeetCodeGraphQLURL string
	HackerRankBaseURL  string
	Timeout            time.Duration
	Metrics            metrics.Recorder
}

// NewDefaultRegistry wires LeetCode, HackerRank and Codecademy over one HTTP client
func NewDefaultRegistry(opts Options) *Registry {
	client := NewHTTPClient(opts.Timeout)
	return NewRegistry(
		NewLeetCodeAdapter(opts.LeetCodeGraphQLURL, client, opts.Metrics),
		NewHackerRankAdapter(opts.HackerRankBaseURL, client, opts.Metrics),
		NewCodecademyAdapter(),
	)
}
