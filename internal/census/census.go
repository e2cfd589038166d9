package census

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Entry is one live process as seen during a scan.
type Entry struct {
	PID         int
	ProgramName string
}

// Result is the outcome of counting processes by program name.
// Exceeded is set once Count passes the limit; the scan stops there.
type Result struct {
	Count    int
	Exceeded bool
}

// Census counts running instances of a program.
type Census interface {
	CountRunning(programName string, limit int) (Result, error)
}

// ProcFS scans a procfs mount. Root defaults to /proc.
type ProcFS struct {
	Root string
}

func NewProcFS() *ProcFS {
	return &ProcFS{Root: "/proc"}
}

// Scan calls fn for every readable numeric entry under Root until fn
// returns false. Entries that vanish between listing and reading are skipped.
func (p *ProcFS) Scan(fn func(Entry) bool) error {
	root := p.root()
	dirents, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", root, err)
	}

	for _, d := range dirents {
		pid, ok := parsePID(d.Name())
		if !ok {
			continue
		}

		name, err := readProgramName(filepath.Join(root, d.Name(), "status"))
		if err != nil {
			log.Debug().Err(err).Int("pid", pid).Msg("Skipping process entry")
			continue
		}

		if !fn(Entry{PID: pid, ProgramName: name}) {
			return nil
		}
	}
	return nil
}

// CountRunning counts entries named programName, stopping as soon as the
// count exceeds limit.
func (p *ProcFS) CountRunning(programName string, limit int) (Result, error) {
	var res Result
	err := p.Scan(func(e Entry) bool {
		if e.ProgramName != programName {
			return true
		}
		res.Count++
		if res.Count > limit {
			res.Exceeded = true
			return false
		}
		return true
	})
	return res, err
}

func (p *ProcFS) root() string {
	if p.Root == "" {
		return "/proc"
	}
	return p.Root
}

func parsePID(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	for _, c := range name {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	pid, err := strconv.Atoi(name)
	if err != nil {
		return 0, false
	}
	return pid, true
}

// readProgramName returns the second field of the first line of a status
// record ("Name:\t<program>").
func readProgramName(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("empty status record %s: %w", path, err)
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", fmt.Errorf("malformed status record %s", path)
	}
	return fields[1], nil
}
