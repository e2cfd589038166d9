package shell

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// Launcher runs an external program. It returns false to end the session.
type Launcher interface {
	Run(args []string) bool
}

// ExecLauncher starts args[0] from PATH with args as its argument vector and
// blocks until the child exits or is killed by a signal.
type ExecLauncher struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run never ends the session. Spawn failures are reported on Stderr.
func (l *ExecLauncher) Run(args []string) bool {
	if len(args) == 0 {
		return true
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(l.Stderr, "lsh: %v\n", err)
		return true
	}

	if err := cmd.Wait(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			fmt.Fprintf(l.Stderr, "lsh: %v\n", err)
		}
	}

	if ps := cmd.ProcessState; ps != nil {
		log.Debug().
			Str("program", args[0]).
			Int("pid", ps.Pid()).
			Str("status", ps.String()).
			Msg("Child reaped")
	}
	return true
}
