package modload

import (
	"golang.org/x/sync/errgroup"
)

// insmodWithDeps loads a canonical module together with its dependency
// chain: hard dependencies deepest-first, soft pre-dependencies, the
// module itself, soft post-dependencies. Soft dependencies are
// best-effort and never fail the load.
func (m *Modprobe) insmodWithDeps(canonical, parameters string) bool {
	deps := m.GetDependencies(canonical)
	if len(deps) == 0 {
		m.logger.Error("module has no dependency entry", "module", canonical)
		return false
	}

	// deps[0] is the module's own file; the rest load back-to-front.
	for i := len(deps) - 1; i >= 1; i-- {
		m.LoadWithAliases(MakeCanonical(deps[i]), true, "")
	}

	for _, soft := range m.softPre[canonical] {
		m.LoadWithAliases(soft, false, "")
	}

	if !m.Insmod(deps[0], parameters) {
		return false
	}

	for _, soft := range m.softPost[canonical] {
		m.LoadWithAliases(soft, false, "")
	}
	return true
}

// LoadWithAliases loads the requested module and every module aliased to
// its name. In strict mode at least one candidate must load; otherwise a
// name that matches nothing loadable is fine (soft dependencies and
// optional hardware modules behave this way).
func (m *Modprobe) LoadWithAliases(moduleName string, strict bool, parameters string) bool {
	loaded := false
	for _, candidate := range m.expandAliases(moduleName) {
		if !m.ModuleExists(candidate) {
			continue
		}
		if m.insmodWithDeps(candidate, parameters) {
			loaded = true
		}
	}
	if strict && !loaded {
		m.logger.Error("failed to load module", "module", moduleName)
		return false
	}
	return true
}

// LoadListedModules loads the modules named in the load list, in order.
// The list is expected to already respect dependency order, but each
// entry still pulls in its hard dependencies. A blocklisted entry is
// skipped; any other entry that fails to load stops the walk.
func (m *Modprobe) LoadListedModules() bool {
	for _, moduleName := range m.loadList {
		if !m.LoadWithAliases(moduleName, true, "") {
			if m.IsBlocklisted(moduleName) {
				continue
			}
			return false
		}
	}
	return true
}

// LoadModulesParallel loads the load list with up to numWorkers
// concurrent workers. Each worker loads a listed module with its full
// dependency chain; the registry deduplicates shared dependencies, and a
// racing double-insertion resolves to the already-resident outcome.
// Returns true when every non-blocklisted entry loaded.
func (m *Modprobe) LoadModulesParallel(numWorkers int) bool {
	if numWorkers < 1 {
		numWorkers = 1
	}

	var g errgroup.Group
	g.SetLimit(numWorkers)

	results := make([]bool, len(m.loadList))
	for i, moduleName := range m.loadList {
		g.Go(func() error {
			results[i] = m.LoadWithAliases(moduleName, true, "")
			return nil
		})
	}
	g.Wait()

	ok := true
	for i, moduleName := range m.loadList {
		if !results[i] && !m.IsBlocklisted(moduleName) {
			ok = false
		}
	}
	return ok
}
