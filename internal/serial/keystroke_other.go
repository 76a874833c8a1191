//go:build !linux && !tinygo

package serial

import "golang.org/x/term"

// keystrokeMode falls back to full raw mode. Ctrl-C no longer raises
// SIGINT, so the stream reports it on Interrupted instead.
func keystrokeMode(fd int) (catchCtrlC bool, err error) {
	if _, err := term.MakeRaw(fd); err != nil {
		return false, err
	}
	return true, nil
}
