package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"lsh/config"
)

// Shell is the interactive command loop: prompt, read a line, split it, run
// a builtin or an external program, repeat.
type Shell struct {
	in       *bufio.Reader
	out      io.Writer
	errOut   io.Writer
	launcher Launcher
	builtins []Builtin
}

func New(in *bufio.Reader, out, errOut io.Writer, launcher Launcher) *Shell {
	return &Shell{
		in:       in,
		out:      out,
		errOut:   errOut,
		launcher: launcher,
		builtins: DefaultBuiltins(),
	}
}

// Run loops until a command ends the session or input is exhausted. Both
// are a normal exit and return nil.
func (s *Shell) Run() error {
	for {
		fmt.Fprint(s.out, config.Prompt)

		line, err := s.readLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if !s.Execute(Split(line)) {
			return nil
		}
	}
}

// Execute dispatches one token sequence. Builtins match the first token
// exactly and take precedence over programs of the same name.
func (s *Shell) Execute(args []string) bool {
	if len(args) == 0 {
		return true
	}

	for _, b := range s.builtins {
		if args[0] == b.Name {
			return b.Run(s, args)
		}
	}

	return s.launcher.Run(args)
}

// readLine returns the next line without its newline. A final line not
// terminated by a newline is dropped and io.EOF is returned.
func (s *Shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("failed to read command: %w", err)
	}
	return line[:len(line)-1], nil
}
