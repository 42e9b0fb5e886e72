package modload

import (
	"errors"
	"io/fs"
	"os"
)

// Insmod inserts the module file at pathName into the running kernel.
// Configured options for the module's canonical name are composed with
// the caller-supplied parameters, configured options first, joined by a
// single space. An already-resident module is a success: it is registered
// under its path and canonical name but not counted as a new load.
// The descriptor is released on every path out of this function.
func (m *Modprobe) Insmod(pathName, parameters string) bool {
	f, err := openModule(pathName)
	if err != nil {
		m.logger.Error("could not open module", "path", pathName, "err", err)
		return false
	}
	defer f.Close()

	canonical := MakeCanonical(pathName)
	options := m.options[canonical]
	if parameters != "" {
		options = options + " " + parameters
	}

	m.logger.Info("loading module", "path", pathName, "options", options)
	if err := m.insmodFn(f, options); err != nil {
		if errors.Is(err, fs.ErrExist) {
			// Already resident, possibly via a racing worker.
			m.reg.recordLoaded(pathName, canonical, false)
			return true
		}
		m.logger.Error("failed to insmod", "path", pathName, "options", options, "err", err)
		return false
	}

	m.logger.Info("loaded kernel module", "path", pathName)
	m.reg.recordLoaded(pathName, canonical, true)
	return true
}

// Rmmod requests non-blocking removal of a module. On success the
// canonical name is dropped from the registry; the path record is left
// in place, removal is tracked by canonical identity only.
func (m *Modprobe) Rmmod(moduleName string) bool {
	canonical := MakeCanonical(moduleName)
	if err := m.rmmodFn(canonical); err != nil {
		m.logger.Error("failed to remove module", "module", moduleName, "err", err)
		return false
	}
	m.reg.forget(canonical)
	return true
}

// ModuleExists reports whether a module can be loaded: it is not
// blocklisted, it resolves to a backing file rather than a bare alias,
// and that file is a regular file. It never mutates loading state.
func (m *Modprobe) ModuleExists(moduleName string) bool {
	if m.IsBlocklisted(moduleName) {
		m.logger.Info("module is blocklisted", "module", moduleName)
		return false
	}
	deps := m.GetDependencies(MakeCanonical(moduleName))
	if len(deps) == 0 {
		// No dependency entry happens for names that only resolve as
		// an alias; nothing to load.
		return false
	}
	info, err := os.Stat(deps[0])
	if err != nil {
		m.logger.Error("module can't be loaded", "module", moduleName, "path", deps[0], "err", err)
		return false
	}
	if !info.Mode().IsRegular() {
		m.logger.Error("module is not a regular file", "module", moduleName, "path", deps[0])
		return false
	}
	return true
}
