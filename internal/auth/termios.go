//go:build linux || darwin || freebsd || netbsd || openbsd

package auth

import "golang.org/x/sys/unix"

// disableEcho clears ICANON and ECHO on fd so input arrives one byte at a
// time without being shown. The returned func puts the saved mode back.
func disableEcho(fd int) (func() error, error) {
	saved, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}

	raw := *saved
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return nil, err
	}

	return func() error {
		return unix.IoctlSetTermios(fd, ioctlSetTermios, saved)
	}, nil
}
