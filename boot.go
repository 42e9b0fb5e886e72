package modload

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// DefaultBaseDir is where kernel module directories live.
const DefaultBaseDir = "/lib/modules"

// listLoader is the loading surface the boot orchestration needs from a
// module directory. *[Modprobe] implements it; tests substitute stubs.
type listLoader interface {
	LoadListedModules() bool
	LoadModulesParallel(numWorkers int) bool
	ModuleCount() int
}

type bootConfig struct {
	baseDir       string
	release       string
	pageSuffix    string
	pageSuffixSet bool
	workers       int
	logger        *log.Logger
	newLoader     func(dir, loadFile string) listLoader
}

// BootOption configures [LoadKernelModules].
type BootOption func(*bootConfig)

// WithBaseDir overrides the module base directory (default /lib/modules).
func WithBaseDir(dir string) BootOption {
	return func(c *bootConfig) {
		c.baseDir = dir
	}
}

// WithRelease overrides the kernel release string used for directory
// selection. The default is the running kernel's.
func WithRelease(release string) BootOption {
	return func(c *bootConfig) {
		c.release = release
	}
}

// WithPageSuffix overrides the page-size suffix used for directory
// selection, "" meaning a 4K page size. The default is derived from the
// host page size.
func WithPageSuffix(suffix string) BootOption {
	return func(c *bootConfig) {
		c.pageSuffix = suffix
		c.pageSuffixSet = true
	}
}

// WithWorkers sets the worker count for the parallel fallback. The
// default is the number of CPUs.
func WithWorkers(n int) BootOption {
	return func(c *bootConfig) {
		c.workers = n
	}
}

// WithBootLogger sets the logger for orchestration-level reporting and
// for the per-directory loaders it creates.
func WithBootLogger(logger *log.Logger) BootOption {
	return func(c *bootConfig) {
		c.logger = logger
	}
}

// withLoaderFactory substitutes the per-directory loader. Tests only.
func withLoaderFactory(fn func(dir, loadFile string) listLoader) BootOption {
	return func(c *bootConfig) {
		c.newLoader = fn
	}
}

// LoadKernelModules drives the two-tier loading strategy and returns the
// number of modules loaded.
//
// Candidate directories under the base dir are tried in selection order;
// for each, the directory's load list (modules.load.recovery when
// present, modules.load otherwise) is loaded in order. The first
// directory that loads at least one module is the definitive match and
// ends the walk. If no candidate loads anything, the base directory's
// own list is loaded once with concurrent workers, and whatever that
// yields is the result.
//
// Zero modules loaded is success, not failure: a host whose module tree
// is absent or empty has nothing to do.
func LoadKernelModules(opts ...BootOption) int {
	cfg := &bootConfig{
		baseDir: DefaultBaseDir,
		workers: runtime.NumCPU(),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.newLoader == nil {
		cfg.newLoader = func(dir, loadFile string) listLoader {
			return New([]string{dir}, loadFile, WithLogger(cfg.logger))
		}
	}
	if cfg.release == "" {
		release, err := KernelRelease()
		if err != nil {
			cfg.logger.Error("failed to get kernel version", "err", err)
		}
		cfg.release = release
	}
	if !cfg.pageSuffixSet {
		cfg.pageSuffix = PageSizeSuffix()
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}

	if _, err := os.Stat(cfg.baseDir); err != nil {
		cfg.logger.Info("unable to open module base dir, skipping module loading", "dir", cfg.baseDir)
		return 0
	}

	dirs := SelectModuleDirs(cfg.baseDir, cfg.release, cfg.pageSuffix)
	if len(dirs) == 1 && dirs[0] == cfg.release+cfg.pageSuffix {
		cfg.logger.Info("release specific kernel module dir found, loading modules from here with no fallbacks",
			"dir", dirs[0])
	}

	for _, dir := range dirs {
		dirPath := filepath.Join(cfg.baseDir, dir)
		loader := cfg.newLoader(dirPath, moduleLoadList(dirPath))
		loader.LoadListedModules()
		if n := loader.ModuleCount(); n > 0 {
			cfg.logger.Info("loaded modules", "count", n, "dir", dirPath)
			return n
		}
	}

	loader := cfg.newLoader(cfg.baseDir, moduleLoadList(cfg.baseDir))
	loader.LoadModulesParallel(cfg.workers)
	if n := loader.ModuleCount(); n > 0 {
		cfg.logger.Info("loaded modules", "count", n, "dir", cfg.baseDir)
		return n
	}
	return 0
}
