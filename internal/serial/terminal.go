//go:build !tinygo

package serial

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// OpenTerminal reads f one keystroke at a time. If f is a terminal, line
// buffering and echo are turned off; restore puts the terminal back. Any
// other file (a pipe, a regular file) is read as is.
func OpenTerminal(f *os.File) (s *Stream, restore func() error, err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return NewStream(f, 0), func() error { return nil }, nil
	}

	old, err := term.GetState(fd)
	if err != nil {
		return nil, nil, fmt.Errorf("read terminal state: %w", err)
	}
	catch, err := keystrokeMode(fd)
	if err != nil {
		return nil, nil, fmt.Errorf("set keystroke mode: %w", err)
	}
	return newStream(f, 0, catch), func() error { return term.Restore(fd, old) }, nil
}

// OpenDevice opens a serial TTY such as /dev/ttyACM0 in raw mode.
func OpenDevice(path string) (s *Stream, closeFn func() error, err error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return NewStream(f, 0), f.Close, nil
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("raw mode %s: %w", path, err)
	}
	closeFn = func() error {
		if err := term.Restore(fd, old); err != nil {
			f.Close()
			return fmt.Errorf("restore %s: %w", path, err)
		}
		return f.Close()
	}
	return NewStream(f, 0), closeFn, nil
}
