package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrDeclined is returned when the user answers anything but yes
var ErrDeclined = errors.New("operation aborted by user")

// Confirm asks on stderr whether to begin copying and waits for a single keypress.
// Only 'y' or 'Y' lets the run go on.
func Confirm(ctx context.Context) error {
	return confirm(ctx, os.Stdin, os.Stderr)
}

func confirm(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprint(out, "\nBegin copying? [y/n]  ")
	defer fmt.Fprintln(out)

	// Raw mode so one key is enough, without Enter
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if state, err := term.MakeRaw(int(f.Fd())); err == nil {
			defer term.Restore(int(f.Fd()), state)
		}
	}

	keys := make(chan byte, 1)
	errs := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		if _, err := io.ReadFull(in, buf); err != nil {
			errs <- err
			return
		}
		keys <- buf[0]
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errs:
		return fmt.Errorf("failed to read answer: %w", err)
	case c := <-keys:
		if c == 'y' || c == 'Y' {
			return nil
		}
		return ErrDeclined
	}
}
