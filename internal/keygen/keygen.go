// Package keygen creates the SSH key pair used by the transfer job.
package keygen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Defaults.
const (
	DefaultBinary = "ssh-keygen"
	DefaultType   = "ed25519"
)

// ErrKeyExists is returned when the private key path is already taken.
var ErrKeyExists = errors.New("key already exists")

// Options configures key generation.
type Options struct {
	// Binary is the key generation tool, looked up on PATH.
	Binary string
	// Path is the private key location; the public key gets ".pub" appended.
	Path string
	// Type is the key algorithm.
	Type string
	// Comment is embedded in the public key.
	Comment string
}

// Output is what the tool printed, verbatim.
type Output struct {
	Stdout string
	Stderr string
}

// Args returns the command line passed to the tool, without the binary.
func (o Options) Args() []string {
	keyType := o.Type
	if keyType == "" {
		keyType = DefaultType
	}

	args := []string{"-t", keyType, "-f", o.Path, "-N", ""}
	if o.Comment != "" {
		args = append(args, "-C", o.Comment)
	}

	return args
}

// Generate runs the key generation tool without a passphrase. It refuses to
// overwrite an existing key. The tool's output is returned even on failure.
func Generate(ctx context.Context, opts Options) (Output, error) {
	if opts.Path == "" {
		return Output{}, errors.New("key path is required")
	}

	if _, err := os.Lstat(opts.Path); err == nil {
		return Output{}, fmt.Errorf("%w: %q", ErrKeyExists, opts.Path)
	}

	binary := opts.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	bin, err := exec.LookPath(binary)
	if err != nil {
		return Output{}, fmt.Errorf("locating %q: %w", binary, err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
		return Output{}, fmt.Errorf("creating key directory for %q: %w", opts.Path, err)
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, bin, opts.Args()...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr != nil {
		return out, fmt.Errorf("running %s for %q: %w", binary, opts.Path, runErr)
	}

	return out, nil
}
