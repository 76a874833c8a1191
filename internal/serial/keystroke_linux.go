//go:build linux && !tinygo

package serial

import "golang.org/x/sys/unix"

// keystrokeMode turns off canonical input and echo but keeps signal
// generation and output processing, so Ctrl-C still raises SIGINT and log
// lines keep their carriage returns.
func keystrokeMode(fd int) (catchCtrlC bool, err error) {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return false, err
	}
	t.Lflag &^= unix.ICANON | unix.ECHO
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	return false, unix.IoctlSetTermios(fd, unix.TCSETS, t)
}
