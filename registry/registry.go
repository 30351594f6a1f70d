// Package registry assigns unique names to model components. Components
// constructed without an explicit name receive an auto-numbered one
// ("Transfer-1", "Transfer-2"), and explicit names that collide are
// deduplicated the same way.
package registry

import (
	"fmt"
	"sync"

	"golang.org/x/exp/slices"
)

type Registry struct {
	mu     sync.Mutex
	counts map[string]int
	names  map[string]struct{}
}

func New() *Registry {
	return &Registry{
		counts: make(map[string]int),
		names:  make(map[string]struct{}),
	}
}

// Default is the registry used by components created without one.
var Default = New()

// Assign returns the next auto-numbered name for the given base.
func (r *Registry) Assign(base string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		r.counts[base]++
		name := fmt.Sprintf("%s-%d", base, r.counts[base])
		if _, taken := r.names[name]; !taken {
			r.names[name] = struct{}{}
			return name
		}
	}
}

// Claim reserves an explicit name, appending a numeric suffix if it is
// already taken.
func (r *Registry) Claim(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.names[name]; !taken {
		r.names[name] = struct{}{}
		return name
	}
	for {
		r.counts[name]++
		candidate := fmt.Sprintf("%s-%d", name, r.counts[name])
		if _, taken := r.names[candidate]; !taken {
			r.names[candidate] = struct{}{}
			return candidate
		}
	}
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.names))
	for name := range r.names {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
