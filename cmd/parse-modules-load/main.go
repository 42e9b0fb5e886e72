package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	modload "github.com/droidian/parse-modules-load"
	"github.com/leodido/structcli"
	"github.com/spf13/cobra"
)

// Build metadata injected via ldflags. Plain `go build` leaves these at
// their zero values and the version command omits them gracefully.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	root := &cobra.Command{
		Use:   "parse-modules-load",
		Short: "Load kernel modules for the running kernel at boot",
		Long: `parse-modules-load locates the module directory matching the running
kernel under /lib/modules, loads the modules its load list names in order,
and falls back to a parallel load of the whole tree when no listed load
produces anything.

Run without arguments it performs the boot-time load and always exits 0:
zero modules loaded is not an error for the host.`,
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			return runLoad(&LoadOptions{})
		},
	}

	root.AddCommand(loadCmd())
	root.AddCommand(removeCmd())
	root.AddCommand(existsCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "parse-modules-load",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// LoadOptions defines flags for the load subcommand.
type LoadOptions struct {
	Dir     string `flag:"dir" flagshort:"d" flagdescr:"Module base directory"`
	Workers int    `flag:"workers" flagshort:"w" flagdescr:"Worker count for the parallel fallback (0 = number of CPUs)"`
	Verbose bool   `flag:"verbose" flagshort:"v" flagdescr:"Verbose logging"`
}

func (o *LoadOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func loadCmd() *cobra.Command {
	opts := &LoadOptions{}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load modules for the running kernel",
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return runLoad(opts)
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func runLoad(opts *LoadOptions) error {
	logger := newLogger(opts.Verbose)
	dir := opts.Dir
	if dir == "" {
		dir = modload.DefaultBaseDir
	}
	bootOpts := []modload.BootOption{
		modload.WithBaseDir(dir),
		modload.WithBootLogger(logger),
	}
	if opts.Workers > 0 {
		bootOpts = append(bootOpts, modload.WithWorkers(opts.Workers))
	}

	n := modload.LoadKernelModules(bootOpts...)
	fmt.Printf("Total modules loaded: %d\n", n)
	// Exit status stays 0 no matter how many modules loaded.
	return nil
}

// RemoveOptions defines flags for the remove subcommand.
type RemoveOptions struct {
	Verbose bool `flag:"verbose" flagshort:"v" flagdescr:"Verbose logging"`
}

func (o *RemoveOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func removeCmd() *cobra.Command {
	opts := &RemoveOptions{}

	cmd := &cobra.Command{
		Use:   "remove <module>",
		Short: "Remove a loaded module (non-blocking)",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			m := modload.New(nil, "", modload.WithLogger(newLogger(opts.Verbose)))
			if !m.Rmmod(args[0]) {
				return fmt.Errorf("failed to remove module %q", args[0])
			}
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// ExistsOptions defines flags for the exists subcommand.
type ExistsOptions struct {
	Dir       string `flag:"dir" flagshort:"d" flagdescr:"Module directory to resolve against"`
	Blocklist bool   `flag:"blocklist" flagshort:"b" flagdescr:"Enforce the directory's modules.blocklist"`
}

func (o *ExistsOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func existsCmd() *cobra.Command {
	opts := &ExistsOptions{}

	cmd := &cobra.Command{
		Use:   "exists <module>",
		Short: "Check whether a module resolves to a loadable file",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			dir := opts.Dir
			if dir == "" {
				release, err := modload.KernelRelease()
				if err != nil {
					return err
				}
				dir = filepath.Join(modload.DefaultBaseDir, release+modload.PageSizeSuffix())
			}

			var mopts []modload.Option
			if opts.Blocklist {
				mopts = append(mopts, modload.WithBlocklist())
			}
			m := modload.New([]string{dir}, "modules.load", mopts...)
			if !m.ModuleExists(args[0]) {
				fmt.Println("no")
				os.Exit(1)
			}
			fmt.Println("yes")
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show kernel and tool version",
		RunE: func(c *cobra.Command, args []string) error {
			if version != "" {
				fmt.Printf("parse-modules-load %s", version)
				if commit != "" {
					fmt.Printf(" (%s)", commit)
				}
				if date != "" {
					fmt.Printf(" built %s", date)
				}
				fmt.Println()
			} else {
				fmt.Println("parse-modules-load (dev)")
			}

			release, err := modload.KernelRelease()
			if err != nil {
				return err
			}
			fmt.Printf("Kernel: %s%s\n", release, modload.PageSizeSuffix())
			return nil
		},
	}
}
