package main

import (
	"fmt"
	"io"
	"path"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs"
	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/core"
	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/filesystem"
)

func newLsCommand(opts *mountOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [dir]",
		Short: "List the direct children of a directory",
		Long: `List the direct children of a directory, one absolute path per line.
Entries that cannot be resolved are reported on stderr and do not stop the
listing; the command still fails afterwards.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return withMount(cmd, opts, func(fsys *filesystem.Sandbox) error {
				listing, err := fsys.ReadDir(dir)
				if err != nil {
					return err
				}

				var firstErr error
				for p, err := range listing.All() {
					if err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), err)
						if firstErr == nil {
							firstErr = err
						}
						continue
					}
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return firstErr
			})
		},
	}
}

func newStatCommand(opts *mountOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Show the kind and size of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMount(cmd, opts, func(fsys *filesystem.Sandbox) error {
				md, err := fsys.Metadata(args[0])
				if err != nil {
					return err
				}
				kind := "other"
				switch {
				case md.IsDir:
					kind = "dir"
				case md.IsFile:
					kind = "file"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", args[0], kind, md.Length)
				return nil
			})
		},
	}
}

func newCatCommand(opts *mountOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMount(cmd, opts, func(fsys *filesystem.Sandbox) error {
				data, err := sandboxfs.ReadFile(fsys, args[0])
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	}
}

func newPutCommand(opts *mountOptions) *cobra.Command {
	var parents bool

	cmd := &cobra.Command{
		Use:   "put <path>",
		Short: "Write stdin to a file",
		Long:  "Create or overwrite a file with the content read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return core.NewIOError("cannot read stdin", err)
			}
			return withMount(cmd, opts, func(fsys *filesystem.Sandbox) error {
				if parents {
					if err := sandboxfs.CreateDir(fsys, path.Dir(args[0])); err != nil {
						return err
					}
				}
				return sandboxfs.WriteFile(fsys, args[0], data)
			})
		},
	}

	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "create missing parent directories")
	return cmd
}

func newMkdirCommand(opts *mountOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory and any missing parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMount(cmd, opts, func(fsys *filesystem.Sandbox) error {
				return sandboxfs.CreateDir(fsys, args[0])
			})
		},
	}
}

func newRmCommand(opts *mountOptions) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Remove a file or an empty directory",
		Long:  "Remove a file or an empty directory. With -r, remove a whole tree.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMount(cmd, opts, func(fsys *filesystem.Sandbox) error {
				if recursive {
					return fsys.RemoveAll(args[0])
				}
				return fsys.Remove(args[0])
			})
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "remove directories and their contents")
	return cmd
}
