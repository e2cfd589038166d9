package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// PasswordReader captures a password one byte at a time from In. When Fd
// refers to a terminal, canonical mode and echo are switched off for the
// duration of the capture and the previous mode is restored on every exit
// path.
type PasswordReader struct {
	In     *bufio.Reader
	Fd     int // descriptor behind In, or -1 when In is not a terminal
	MaxLen int
}

// NewPasswordReader returns a reader capped at maxLen bytes.
func NewPasswordReader(in *bufio.Reader, fd, maxLen int) *PasswordReader {
	return &PasswordReader{In: in, Fd: fd, MaxLen: maxLen}
}

// ReadPassword reads until a newline, end of input, or MaxLen bytes. When
// the cap is hit first, the rest of the line is consumed and discarded so
// it never reaches the caller's next read.
func (r *PasswordReader) ReadPassword() (pw string, err error) {
	if r.Fd >= 0 && term.IsTerminal(r.Fd) {
		restore, merr := disableEcho(r.Fd)
		if merr != nil {
			return "", fmt.Errorf("failed to enter no-echo mode: %w", merr)
		}
		defer func() {
			if rerr := restore(); rerr != nil {
				log.Error().Err(rerr).Int("fd", r.Fd).Msg("Failed to restore terminal mode")
				if err == nil {
					err = fmt.Errorf("failed to restore terminal mode: %w", rerr)
				}
			}
		}()
	}

	buf := make([]byte, 0, r.MaxLen)
	for len(buf) < r.MaxLen {
		b, err := r.In.ReadByte()
		if errors.Is(err, io.EOF) {
			return string(buf), nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if b == '\n' {
			return string(buf), nil
		}
		buf = append(buf, b)
	}

	if _, err := r.In.ReadBytes('\n'); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to discard password overflow: %w", err)
	}
	return string(buf), nil
}
