// Package modload loads Linux kernel modules at boot on devices whose
// kernel version and module directory layout are not known in advance.
//
// It locates the module directory matching the running kernel (accounting
// for release and page-size variants), loads modules in the order given by
// the directory's load list, and falls back to a best-effort parallel load
// of the whole module tree when no listed load produces anything. A
// thread-safe registry records what has been loaded so repeated or
// concurrent load/unload requests behave idempotently.
//
// # Boot-time loading
//
// The common case is a single call that drives the whole strategy:
//
//	n := modload.LoadKernelModules()
//	fmt.Printf("Total modules loaded: %d\n", n)
//
// LoadKernelModules enumerates /lib/modules, picks the directories whose
// names match the running kernel's <major>.<minor> release prefix (an
// exact <release><page-suffix> match wins outright and disables all
// fallbacks), and tries each in order until one loads at least one module.
// If none does, it loads the base directory's list with concurrent
// workers. Zero modules loaded is not an error: a host without modules
// boots fine without them.
//
// # Direct module operations
//
// [Modprobe] exposes the underlying operations for one module directory:
//
//	m := modload.New([]string{"/lib/modules/6.1.0-gki"}, "modules.load")
//	m.LoadListedModules()
//	fmt.Println(m.ModuleCount())
//
// Insmod, Rmmod, and ModuleExists follow the kernel's contract: insertion
// takes an open read-only descriptor plus an option string, removal is
// non-blocking, and an already-resident module is a success rather than an
// error.
//
// All syscall-level operations require Linux; on other platforms they fail
// with [ErrUnsupportedPlatform]. Directory selection and metadata parsing
// are portable.
package modload
