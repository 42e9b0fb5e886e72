package modload

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// Directory names may carry an explicit page-size token, e.g.
// "6.1.68_16k". Names without one say nothing about page size: some 16K
// builds put their modules in a plain "6.1.68" directory.
var pageSuffixRe = regexp.MustCompile(`_[0-9]+k$`)

// SelectModuleDirs enumerates base and returns the names of the module
// directories that apply to a kernel with the given release string and
// page-size suffix, in the order they should be tried.
//
// A directory named exactly <release><suffix> is authoritative: it is
// returned alone and no fallback candidates are considered. Otherwise a
// directory survives only if any explicit page-size token in its name
// matches suffix and its leading <major>.<minor> equals the release's.
// Survivors are sorted lexicographically; the shared numeric prefix makes
// that safe, only a trailing label such as "-gki" varies.
//
// An unreadable base directory yields no candidates rather than an error:
// a host without a module tree simply has nothing to load.
func SelectModuleDirs(base, release, suffix string) []string {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}

	releaseSpecific := release + suffix
	major, minor, releaseOK := parseReleasePrefix(release)

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == releaseSpecific {
			return []string{name}
		}
		if !releaseOK {
			continue
		}
		if tok := pageSuffixRe.FindString(name); tok != "" && tok != suffix {
			continue
		}
		dirMajor, dirMinor, ok := parseReleasePrefix(name)
		if !ok || dirMajor != major || dirMinor != minor {
			continue
		}
		dirs = append(dirs, name)
	}

	sort.Strings(dirs)
	return dirs
}

// moduleLoadList returns the load-list filename to use for a directory:
// modules.load.recovery when present, modules.load otherwise. The choice
// is per-directory, not global.
func moduleLoadList(dir string) string {
	if _, err := os.Stat(filepath.Join(dir, "modules.load.recovery")); err == nil {
		return "modules.load.recovery"
	}
	return "modules.load"
}
