package network

import (
	"bufio"
	"fmt"
	"os"
)

// AllowList is the ordered snapshot of addresses loaded at startup.
type AllowList struct {
	entries []string
}

// LoadAllowList reads one address per line from path. A missing or
// unreadable file is an error; callers must treat it as fatal.
func LoadAllowList(path string) (AllowList, error) {
	f, err := os.Open(path)
	if err != nil {
		return AllowList{}, fmt.Errorf("failed to open allow list: %w", err)
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return AllowList{}, fmt.Errorf("failed to read allow list: %w", err)
	}

	return AllowList{entries: entries}, nil
}

// NewAllowList builds a list from literal entries.
func NewAllowList(entries ...string) AllowList {
	return AllowList{entries: append([]string(nil), entries...)}
}

// Contains reports whether address matches an entry exactly.
func (l AllowList) Contains(address string) bool {
	for _, entry := range l.entries {
		if entry == address {
			return true
		}
	}
	return false
}

func (l AllowList) Len() int {
	return len(l.entries)
}
