package audit

import (
	"fmt"
	"os"
	"time"
)

// Kind is the event wording written between the timestamp and the address.
type Kind string

const (
	KindLoginOK      Kind = "Login at"
	KindLoginFailed  Kind = "Login failed at"
	KindFullLogin    Kind = "FULL LOGIN"
	KindNotAllowedIP Kind = "NOT ALLOWED IP"
)

// Selector picks one of the two logs. The logs are never merged.
type Selector int

const (
	Accepted Selector = iota
	Rejected
)

func (s Selector) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("selector(%d)", int(s))
}

// TimeLayout is the ctime(3) layout without the trailing newline.
const TimeLayout = time.ANSIC

// Entry is one audited event.
type Entry struct {
	Timestamp time.Time
	Kind      Kind
	Address   string
}

// NewEntry stamps an entry with the current local time.
func NewEntry(kind Kind, address string) Entry {
	return Entry{Timestamp: time.Now(), Kind: kind, Address: address}
}

// Line renders the entry as "<timestamp> <kind> <address>\n".
func (e Entry) Line() string {
	return fmt.Sprintf("%s %s %s\n", e.Timestamp.Format(TimeLayout), e.Kind, e.Address)
}

// Log appends entries to the accepted-events and rejected-events files.
// Each Append opens, writes and closes the target file.
type Log struct {
	acceptedPath string
	rejectedPath string
}

func New(acceptedPath, rejectedPath string) *Log {
	return &Log{acceptedPath: acceptedPath, rejectedPath: rejectedPath}
}

// Path returns the file backing sel.
func (l *Log) Path(sel Selector) string {
	if sel == Accepted {
		return l.acceptedPath
	}
	return l.rejectedPath
}

// Append writes entry to the log chosen by sel, creating the file if needed.
// An error means the event could not be audited and the caller must stop.
func (l *Log) Append(sel Selector, entry Entry) error {
	if sel != Accepted && sel != Rejected {
		return fmt.Errorf("audit: unknown log %v", sel)
	}
	return appendRaw(l.Path(sel), entry.Line())
}

func appendRaw(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("audit: open %s: %w", path, err)
	}

	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("audit: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("audit: close %s: %w", path, err)
	}
	return nil
}
