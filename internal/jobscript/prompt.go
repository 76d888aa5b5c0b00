package jobscript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks for values on an interactive terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints label and returns the trimmed answer, or def when the answer is
// empty.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "Enter %s (default: %s): ", label, def)
	} else {
		fmt.Fprintf(p.out, "Enter %s (required): ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading %s: %w", label, err)
	}

	if answer := strings.TrimSpace(line); answer != "" {
		return answer, nil
	}

	return def, nil
}

// Resolve fills missing values in opts. Optional values fall back to their
// defaults; required values are asked for through p. With a nil p a missing
// required value is an error.
func Resolve(opts Options, p *Prompter) (Options, error) {
	var err error

	ask := func(field *string, label, def string) {
		if err != nil || *field != "" {
			return
		}

		if p == nil {
			if def == "" {
				err = fmt.Errorf("%w: %s", ErrMissingValue, label)
			}

			*field = def

			return
		}

		var answer string

		answer, err = p.Ask(label, def)
		if err == nil && answer == "" {
			err = fmt.Errorf("%w: %s", ErrMissingValue, label)
		}

		*field = answer
	}

	ask(&opts.LocalDir, "directory to transfer", "")
	ask(&opts.Account, "SLURM account", "")
	ask(&opts.Username, "remote username", "")
	ask(&opts.Hostname, "remote hostname", DefaultHostname)
	ask(&opts.SSHKey, "path to ssh key", DefaultSSHKey())
	ask(&opts.RemoteDir, "remote path", "")

	if err == nil && opts.OutFile == "" {
		ask(&opts.OutFile, "name of script file to create", DefaultOutFile(opts.LocalDir))
	}

	if err != nil {
		return Options{}, err
	}

	return opts, nil
}
