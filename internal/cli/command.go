// Package cli wires the darsync commands.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/idelchi/darsync/internal/audit"
	"github.com/idelchi/darsync/internal/config"
	"github.com/idelchi/darsync/internal/jobscript"
	"github.com/idelchi/darsync/internal/keygen"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Execute runs the CLI. Cancelling ctx interrupts a running check.
func (c CLI) Execute(ctx context.Context) error {
	return fang.Execute(ctx, c.Command())
}

// Command builds the root command and its subcommands.
func (c CLI) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "darsync",
		Short: "Prepare a directory tree for transfer to an HPC cluster",
		Long: heredoc.Doc(`
			darsync prepares a local directory tree for a bulk transfer to a remote
			HPC cluster.

			  check   audit the tree for uncompressed formats and crowded directories,
			          and record file ownership and permissions
			  count   quickly count files and directories
			  gen     generate a SLURM script that runs the transfer with rsync
			  keygen  create an SSH key pair for the transfer job
		`),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newCheckCmd(), newCountCmd(), newGenCmd(), newKeygenCmd())

	return root
}

// checkOptions are the check command settings not resolved through config.
type checkOptions struct {
	Root          string
	Prefix        string
	ConfigPath    string
	ForceWarnings bool
	Debug         bool
	Output        string
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions

	allowedOutputs := []string{"table", "json"}

	cmd := &cobra.Command{
		Use:   "check [flags] DIR",
		Short: "Audit a directory tree before transfer",
		Long: heredoc.Doc(`
			Walk DIR once, without following symlinks, and

			  - flag files whose extension marks an uncompressed format,
			  - report directories holding too many files,
			  - write the permissions and owner of every entry to <prefix>.ownership.gz.

			Flagged files are listed in <prefix>.uncompressed and crowded directories
			in <prefix>.dir_n_files when the corresponding warning fires.

			Thresholds and extensions can also be set in .darsync.yaml or through
			DARSYNC_SIZE_LIMIT, DARSYNC_FILES_LIMIT, DARSYNC_DIR_FILES_LIMIT and
			DARSYNC_EXT.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(allowedOutputs, opts.Output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", opts.Output, allowedOutputs)
			}

			opts.Root = args[0]

			thresholds, err := config.Load(opts.ConfigPath, cmd.Flags())
			if err != nil {
				return err
			}

			return runCheck(cmd.Context(), opts, thresholds, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.StringVarP(&opts.Prefix, "prefix", "p", "", "Path and prefix for generated files (default darsync_<dirname>)")
	flags.String(config.KeySizeLimit, "2GiB", "Flagged size threshold per file and in total")
	flags.Int64(config.KeyFilesLimit, audit.DefaultTotalFilesLimit, "Total file count threshold")
	flags.Int64(config.KeyDirFilesLimit, audit.DefaultDirFileCountLimit, "Files per directory threshold")
	flags.StringSliceP(config.KeyExtensions, "x", audit.DefaultExtensions, "Flagged file suffixes, including the dot")
	flags.BoolVar(&opts.ForceWarnings, "force-warnings", false, "Emit both warnings regardless of thresholds")
	flags.StringVar(&opts.ConfigPath, "config", "", "Config file (default ./"+config.DefaultFile+")")
	flags.StringVarP(&opts.Output, "output", "o", "table", "Output format: table or json")
	flags.BoolVar(&opts.Debug, "debug", false, "Enable debug output")

	return cmd
}

func newCountCmd() *cobra.Command {
	var filesLimit int64

	cmd := &cobra.Command{
		Use:   "count [DIR]",
		Short: "Quickly count files and directories",
		Long: heredoc.Doc(`
			Count files and directories under DIR with a parallel walk. Nothing is
			recorded; use it to judge the size of a tree before running check.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			return runCount(cmd.Context(), root, filesLimit, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Int64Var(&filesLimit, config.KeyFilesLimit, audit.DefaultTotalFilesLimit, "Total file count threshold")

	return cmd
}

func newGenCmd() *cobra.Command {
	var opts jobscript.Options

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a SLURM script that transfers a directory with rsync",
		Long: heredoc.Doc(`
			Generate a SLURM batch script that copies a local directory to the remote
			system with rsync over ssh. Values not given as flags are asked for when
			running on a terminal.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGen(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.StringVarP(&opts.LocalDir, "local-dir", "l", "", "Path to local directory to transfer")
	flags.StringVarP(&opts.RemoteDir, "remote-dir", "r", "", "Destination directory on the remote system")
	flags.StringVarP(&opts.Account, "slurm-account", "A", "", "SLURM account to run the job as")
	flags.StringVarP(&opts.Username, "username", "u", "", "Username on the remote system")
	flags.StringVarP(&opts.Hostname, "hostname", "H", "", "Remote hostname (default "+jobscript.DefaultHostname+")")
	flags.StringVarP(&opts.SSHKey, "ssh-key", "s", "", "Private SSH key for the remote system (default ~/.ssh/"+jobscript.DefaultKeyName+")")
	flags.StringVarP(&opts.OutFile, "outfile", "o", "", "Path to the SLURM script to create")
	flags.StringVar(&opts.TimeLimit, "time", jobscript.DefaultTimeLimit, "SLURM time limit")
	flags.StringVar(&opts.Partition, "partition", jobscript.DefaultPartition, "SLURM partition")

	return cmd
}

func newKeygenCmd() *cobra.Command {
	opts := keygen.Options{Binary: keygen.DefaultBinary}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create an SSH key pair for the transfer job",
		Long: heredoc.Doc(`
			Create a passphrase-less SSH key pair with ssh-keygen. Register the public
			key with the remote system before submitting the transfer job.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKeygen(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Path, "outfile", "o", jobscript.DefaultSSHKey(), "Private key path")
	flags.StringVarP(&opts.Type, "type", "t", keygen.DefaultType, "Key type")
	flags.StringVarP(&opts.Comment, "comment", "C", "darsync", "Key comment")

	return cmd
}
