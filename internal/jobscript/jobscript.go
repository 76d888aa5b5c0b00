// Package jobscript renders the SLURM batch script that performs the transfer.
package jobscript

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// Defaults for optional values.
const (
	DefaultHostname  = "dardel.pdc.kth.se"
	DefaultTimeLimit = "7-00:00:00"
	DefaultPartition = "core"
	DefaultKeyName   = "darsync_id"
)

// ErrMissingValue is returned when a required value is neither given nor
// obtainable by prompting.
var ErrMissingValue = errors.New("missing required value")

// Slurm is the batch script template.
//
//go:embed slurm.tmpl
var Slurm string

// Options are the values substituted into the script.
type Options struct {
	// LocalDir is the directory to transfer.
	LocalDir string
	// RemoteDir is the destination path on the remote system.
	RemoteDir string
	// Account is the SLURM account charged for the job.
	Account string
	// Username is the login on the remote system.
	Username string
	// Hostname is the remote system.
	Hostname string
	// SSHKey is the private key used by rsync's ssh transport.
	SSHKey string
	// OutFile is where the script is written.
	OutFile string
	// TimeLimit is the SLURM wall-time limit.
	TimeLimit string
	// Partition is the SLURM partition.
	Partition string
}

// DefaultSSHKey returns ~/.ssh/darsync_id, or a relative path when the home
// directory is unknown.
func DefaultSSHKey() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ssh", DefaultKeyName)
	}

	return filepath.Join(home, ".ssh", DefaultKeyName)
}

// DefaultOutFile returns "darsync_<basename of localDir>.slurm".
func DefaultOutFile(localDir string) string {
	return jobName(localDir) + ".slurm"
}

func jobName(localDir string) string {
	abs, err := filepath.Abs(localDir)
	if err != nil {
		abs = localDir
	}

	return "darsync_" + filepath.Base(abs)
}

// Render fills the template. LocalDir and SSHKey are made absolute.
func Render(opts Options) (string, error) {
	required := []struct{ name, value string }{
		{"local directory", opts.LocalDir},
		{"remote directory", opts.RemoteDir},
		{"SLURM account", opts.Account},
		{"remote username", opts.Username},
		{"remote hostname", opts.Hostname},
		{"ssh key", opts.SSHKey},
	}

	for _, r := range required {
		if r.value == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingValue, r.name)
		}
	}

	localDir, err := filepath.Abs(opts.LocalDir)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", opts.LocalDir, err)
	}

	sshKey, err := filepath.Abs(opts.SSHKey)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", opts.SSHKey, err)
	}

	if opts.TimeLimit == "" {
		opts.TimeLimit = DefaultTimeLimit
	}

	if opts.Partition == "" {
		opts.Partition = DefaultPartition
	}

	tmpl, err := template.New("slurm").Option("missingkey=error").Parse(Slurm)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"Account":   opts.Account,
		"TimeLimit": opts.TimeLimit,
		"Partition": opts.Partition,
		"JobName":   jobName(localDir),
		"SSHKey":    sshKey,
		"LocalDir":  localDir,
		"Username":  opts.Username,
		"Hostname":  opts.Hostname,
		"RemoteDir": opts.RemoteDir,
	}); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// Write renders the script to opts.OutFile (or the default name) and returns
// the path written.
func Write(opts Options) (string, error) {
	script, err := Render(opts)
	if err != nil {
		return "", err
	}

	out := opts.OutFile
	if out == "" {
		out = DefaultOutFile(opts.LocalDir)
	}

	//nolint:gosec // The script is meant to be readable by the batch system
	if err := os.WriteFile(out, []byte(script), 0o644); err != nil {
		return "", fmt.Errorf("writing script %q: %w", out, err)
	}

	return out, nil
}
