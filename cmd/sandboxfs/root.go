package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs"
	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/config"
	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/filesystem"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// mountOptions are the persistent flags shared by every subcommand.
type mountOptions struct {
	configFile string
	backend    string
	root       string
	archive    string
	logLevel   string
	readonly   bool
}

func newRootCmd() *cobra.Command {
	opts := &mountOptions{}

	cmd := &cobra.Command{
		Use:   "sandboxfs",
		Short: "Inspect and edit a sandboxed filesystem",
		Long: `sandboxfs mounts a directory or an archive behind a
sandbox that only accepts relative paths without parent references, and lets
you list, read and change its content from the command line.

The mount is described by an optional TOML file (--config), SANDBOXFS_*
environment variables and the flags below, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "TOML mount description")
	flags.StringVar(&opts.backend, "backend", "", "backend to mount: disk or archive")
	flags.StringVar(&opts.root, "root", "", "root directory for the disk backend")
	flags.StringVar(&opts.archive, "archive", "", "archive file for the archive backend")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.BoolVar(&opts.readonly, "readonly", false, "reject every mutation")

	cmd.AddCommand(versionCmd())
	cmd.AddCommand(newLsCommand(opts))
	cmd.AddCommand(newStatCommand(opts))
	cmd.AddCommand(newCatCommand(opts))
	cmd.AddCommand(newPutCommand(opts))
	cmd.AddCommand(newMkdirCommand(opts))
	cmd.AddCommand(newRmCommand(opts))

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  `Print the version number of sandboxfs`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sandboxfs version %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// mount resolves the configuration for cmd and opens the filesystem. Flags
// only override the config when they were given explicitly.
func mount(cmd *cobra.Command, opts *mountOptions) (*filesystem.Sandbox, error) {
	cfg := config.Defaults()
	if opts.configFile != "" {
		loaded, err := config.Load(opts.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Filesystem.Backend = opts.backend
	}
	if flags.Changed("root") {
		cfg.Filesystem.Root = opts.root
		cfg.Filesystem.RootEnv = ""
	}
	if flags.Changed("archive") {
		cfg.Filesystem.Archive = opts.archive
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("readonly") {
		cfg.Filesystem.ReadOnly = opts.readonly
	}

	// Each invocation gets a fresh in-memory tree, so nothing written would
	// survive the command.
	if cfg.Filesystem.Backend == config.BackendMemory {
		return nil, fmt.Errorf("the %q backend cannot be used from the command line: its content is discarded when the command exits", config.BackendMemory)
	}

	logger, err := sandboxfs.NewLoggerFromConfig(cmd.ErrOrStderr(), cfg.Logging)
	if err != nil {
		return nil, err
	}

	return config.Mount(cfg, logger)
}

// withMount mounts the filesystem, runs fn and shuts the filesystem down.
func withMount(cmd *cobra.Command, opts *mountOptions, fn func(*filesystem.Sandbox) error) error {
	fsys, err := mount(cmd, opts)
	if err != nil {
		return err
	}
	runErr := fn(fsys)
	if err := fsys.ShutDown(); err != nil && runErr == nil {
		return err
	}
	return runErr
}
