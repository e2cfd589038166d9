//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package auth

import "errors"

func disableEcho(fd int) (func() error, error) {
	return nil, errors.New("no-echo mode is not supported on this platform")
}
