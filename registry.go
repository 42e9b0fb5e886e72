package modload

import (
	"sort"
	"sync"
)

// registry is the bookkeeping for modules loaded during one run. It is
// the only state shared between loader workers; every mutation happens
// under mu. The insertion and removal syscalls themselves are issued
// outside the lock — the kernel already rejects a duplicate insertion, so
// two workers racing on the same module at the syscall level still leave
// the bookkeeping consistent (one gets the load, the other gets the
// already-resident outcome).
type registry struct {
	mu        sync.Mutex
	paths     map[string]struct{}
	canonical map[string]struct{}
	count     int
}

func newRegistry() *registry {
	return &registry{
		paths:     make(map[string]struct{}),
		canonical: make(map[string]struct{}),
	}
}

// recordLoaded registers a module under both its path and its canonical
// name. The count only moves for a genuinely new insertion; an
// already-resident module is registered without being counted.
func (r *registry) recordLoaded(path, canonical string, fresh bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[path] = struct{}{}
	r.canonical[canonical] = struct{}{}
	if fresh {
		r.count++
	}
}

// forget drops a canonical name after removal. Paths are intentionally
// left in place: removal is tracked by canonical identity only.
func (r *registry) forget(canonical string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.canonical, canonical)
}

func (r *registry) loadedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *registry) isLoaded(canonical string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.canonical[canonical]
	return ok
}

// loaded returns the canonical names currently registered, sorted.
func (r *registry) loaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.canonical))
	for name := range r.canonical {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
