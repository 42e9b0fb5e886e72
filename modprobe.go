package modload

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// alias maps a wildcard pattern to the canonical module that registered
// it. Order matters: several modules may alias themselves to one name and
// all of them are candidates for loading.
type alias struct {
	pattern string
	module  string
}

// Modprobe holds the parsed metadata of one or more module directories
// and the loading state of a single orchestration run. The zero value is
// not usable; construct with [New].
//
// Metadata (dependencies, aliases, options, blocklist, load list) is
// read-only after construction. The loading methods may be called from
// multiple goroutines; the loaded-module registry is the only shared
// mutable state and serializes its own updates.
type Modprobe struct {
	dirs     []string
	loadList []string

	deps      map[string][]string
	aliases   []alias
	softPre   map[string][]string
	softPost  map[string][]string
	options   map[string]string
	blocklist map[string]struct{}

	blocklistEnabled bool
	logger           *log.Logger

	reg *registry

	// Syscall seams, replaced in tests.
	insmodFn func(f *os.File, options string) error
	rmmodFn  func(name string) error
}

// Option configures a [Modprobe].
type Option func(*Modprobe)

// WithLogger sets the logger used for per-module load reporting.
func WithLogger(logger *log.Logger) Option {
	return func(m *Modprobe) {
		m.logger = logger
	}
}

// WithBlocklist enables enforcement of the directory's modules.blocklist:
// blocklisted modules are reported as nonexistent and never inserted.
// Enforcement is off by default, matching boot-time behavior where the
// load list is already curated.
func WithBlocklist() Option {
	return func(m *Modprobe) {
		m.blocklistEnabled = true
	}
}

// WithKernelCmdline folds per-module options and blocklist entries from
// the kernel command line (/proc/cmdline) into the parsed metadata.
// Tokens of the form <module>.<param>=<value> become insertion options
// for that module; modprobe.blacklist=<mod>,<mod> extends the blocklist.
func WithKernelCmdline() Option {
	return func(m *Modprobe) {
		cmdline, err := os.ReadFile("/proc/cmdline")
		if err != nil {
			return
		}
		m.parseKernelCmdline(string(cmdline))
	}
}

// New parses the module metadata of the given directories and returns a
// Modprobe ready to load from them. loadFile is the name of the load-list
// file inside each directory, normally "modules.load" or
// "modules.load.recovery". Missing metadata files are skipped; a
// directory with no metadata at all simply contributes nothing.
func New(dirs []string, loadFile string, opts ...Option) *Modprobe {
	m := &Modprobe{
		dirs:      dirs,
		deps:      make(map[string][]string),
		softPre:   make(map[string][]string),
		softPost:  make(map[string][]string),
		options:   make(map[string]string),
		blocklist: make(map[string]struct{}),
		logger:    log.Default(),
		reg:       newRegistry(),
		insmodFn:  finitModule,
		rmmodFn:   deleteModule,
	}

	for _, dir := range dirs {
		m.parseDepFile(filepath.Join(dir, "modules.dep"), dir)
		m.parseAliasFile(filepath.Join(dir, "modules.alias"))
		m.parseSoftdepFile(filepath.Join(dir, "modules.softdep"))
		m.parseOptionsFile(filepath.Join(dir, "modules.options"))
		m.parseBlocklistFile(filepath.Join(dir, "modules.blocklist"))
		m.parseLoadFile(filepath.Join(dir, loadFile))
	}

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MakeCanonical derives the stable identity of a module from a path or
// file name: the base name up to the first ".ko" (covering compressed
// variants like .ko.gz and .ko.xz), with dashes folded to underscores.
func MakeCanonical(modulePath string) string {
	name := path.Base(filepath.ToSlash(modulePath))
	if i := strings.Index(name, ".ko"); i >= 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(name, "-", "_")
}

// GetDependencies returns the dependency chain of a canonical module
// name as recorded in modules.dep: the module's own file first, followed
// by its hard dependencies in load-last-to-load-first order. A nil result
// means the name has no backing file (unknown, or an alias only).
func (m *Modprobe) GetDependencies(canonical string) []string {
	return m.deps[canonical]
}

// ModuleCount reports how many modules this instance has newly inserted.
// Already-resident modules are registered but not counted.
func (m *Modprobe) ModuleCount() int {
	return m.reg.loadedCount()
}

// LoadedModules returns the canonical names of the modules currently
// registered as loaded by this instance, sorted.
func (m *Modprobe) LoadedModules() []string {
	return m.reg.loaded()
}

// IsBlocklisted reports whether the module is blocklisted. It is false
// for every module unless blocklist enforcement is enabled.
func (m *Modprobe) IsBlocklisted(moduleName string) bool {
	if !m.blocklistEnabled {
		return false
	}
	_, ok := m.blocklist[MakeCanonical(moduleName)]
	return ok
}

// expandAliases returns the set of canonical modules to try for a
// requested name: the name itself plus every module whose alias pattern
// matches it.
func (m *Modprobe) expandAliases(moduleName string) []string {
	canonical := MakeCanonical(moduleName)
	seen := map[string]struct{}{canonical: {}}
	candidates := []string{canonical}
	for _, a := range m.aliases {
		ok, err := path.Match(a.pattern, moduleName)
		if err != nil || !ok {
			continue
		}
		if _, dup := seen[a.module]; dup {
			continue
		}
		seen[a.module] = struct{}{}
		candidates = append(candidates, a.module)
	}
	return candidates
}
