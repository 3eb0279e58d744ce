package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Version is the linkmerge version. It is a var (not a const) so build tooling can override it (for example via `-ldflags "-X .../internal/cli.Version=1.2.3"`).
var Version = "0.1.0"

// In/Out/Err override standard I/O. If nil, defaults are used. Overriding is useful for testing.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run runs the CLI with args (typically you'd use os.Args).
//
// It returns a recommended exit code (0, 1, or 2) and an error, if any:
//   - 0 -> err == nil
//   - 1 -> err != nil, but the structure of args is sound (flags are correct, etc).
//   - 2 -> err != nil, args parse error or misuse of flags, etc.
//
// Note that in cases of errors, Run has already displayed an error message to opts.Err || Stderr. Callers may use os.Exit with the exit code.
func Run(args []string, opts *RunOptions) (int, error) {
	argv := args
	if len(argv) > 0 {
		argv = argv[1:]
	}

	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout
	var errW io.Writer = os.Stderr
	if opts != nil {
		if opts.In != nil {
			in = opts.In
		}
		if opts.Out != nil {
			out = opts.Out
		}
		if opts.Err != nil {
			errW = opts.Err
		}
	}

	root := newRootCommand()
	root.SetArgs(argv)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errW)

	cmd, err := root.ExecuteContextC(context.Background())
	if err == nil {
		return 0, nil
	}

	code := 2
	var ee exitError
	if errors.As(err, &ee) {
		code = ee.code
	}

	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = "command failed"
	}
	fmt.Fprintf(errW, "error: %s\n", msg)
	if code == 2 && cmd != nil {
		fmt.Fprintf(errW, "Run '%s --help' for usage.\n", cmd.CommandPath())
	}

	return code, errors.New(msg)
}

// exitError carries the exit code for an error returned by a command.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }
func (e exitError) Unwrap() error { return e.err }

// usageErrorf returns an error that exits with code 2.
func usageErrorf(format string, args ...any) error {
	return exitError{code: 2, err: fmt.Errorf(format, args...)}
}

// failed marks err (if not already marked) as a runtime failure (exit code 1).
func failed(err error) error {
	if err == nil {
		return nil
	}
	var ee exitError
	if errors.As(err, &ee) {
		return err
	}
	return exitError{code: 1, err: err}
}
