package shell

import (
	"fmt"
	"os"
)

// Builtin is a command run inside the shell process. It returns false to end
// the session.
type Builtin struct {
	Name string
	Run  func(sh *Shell, args []string) bool
}

// DefaultBuiltins returns the builtin table in help order.
func DefaultBuiltins() []Builtin {
	return []Builtin{
		{Name: "cd", Run: builtinCD},
		{Name: "help", Run: builtinHelp},
		{Name: "exit", Run: builtinExit},
	}
}

func builtinCD(sh *Shell, args []string) bool {
	if len(args) < 2 {
		fmt.Fprintln(sh.errOut, `lsh: expected argument to "cd"`)
		return true
	}
	if err := os.Chdir(args[1]); err != nil {
		fmt.Fprintf(sh.errOut, "lsh: %v\n", err)
	}
	return true
}

func builtinHelp(sh *Shell, args []string) bool {
	fmt.Fprintln(sh.out, "LSH")
	fmt.Fprintln(sh.out, "Type program names and arguments, and hit enter.")
	fmt.Fprintln(sh.out, "The following are built in:")
	for _, b := range sh.builtins {
		fmt.Fprintf(sh.out, "  %s\n", b.Name)
	}
	fmt.Fprintln(sh.out, "Use the man command for information on other programs.")
	return true
}

func builtinExit(sh *Shell, args []string) bool {
	return false
}
