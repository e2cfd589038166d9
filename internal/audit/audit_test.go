package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLog(t *testing.T) (*Log, string, string) {
	t.Helper()
	dir := t.TempDir()
	accepted := filepath.Join(dir, "login_log")
	rejected := filepath.Join(dir, "failed_log")
	return New(accepted, rejected), accepted, rejected
}

func TestEntryLine(t *testing.T) {
	ts := time.Date(2015, time.January, 8, 9, 5, 3, 0, time.UTC)
	tests := []struct {
		kind Kind
		want string
	}{
		{KindLoginOK, "Thu Jan  8 09:05:03 2015 Login at 10.0.0.5\n"},
		{KindLoginFailed, "Thu Jan  8 09:05:03 2015 Login failed at 10.0.0.5\n"},
		{KindFullLogin, "Thu Jan  8 09:05:03 2015 FULL LOGIN 10.0.0.5\n"},
		{KindNotAllowedIP, "Thu Jan  8 09:05:03 2015 NOT ALLOWED IP 10.0.0.5\n"},
	}

	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			e := Entry{Timestamp: ts, Kind: tc.kind, Address: "10.0.0.5"}
			if got := e.Line(); got != tc.want {
				t.Errorf("Line() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAppendCreatesAndAppends(t *testing.T) {
	l, accepted, rejected := newTestLog(t)

	for i := 0; i < 3; i++ {
		if err := l.Append(Rejected, NewEntry(KindNotAllowedIP, "10.9.9.9")); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(rejected)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), data)
	}
	for _, ln := range lines {
		if !strings.HasSuffix(ln, " NOT ALLOWED IP 10.9.9.9") {
			t.Errorf("unexpected line %q", ln)
		}
	}

	if _, err := os.Stat(accepted); !os.IsNotExist(err) {
		t.Errorf("accepted log should not exist, stat err = %v", err)
	}

	info, err := os.Stat(rejected)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file perm = %o, want 0600", perm)
	}
}

func TestSelectorsAreSeparate(t *testing.T) {
	l, accepted, rejected := newTestLog(t)

	if err := l.Append(Accepted, NewEntry(KindLoginOK, "10.0.0.5")); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(Rejected, NewEntry(KindLoginFailed, "10.0.0.6")); err != nil {
		t.Fatal(err)
	}

	acc, _ := os.ReadFile(accepted)
	rej, _ := os.ReadFile(rejected)
	if !strings.Contains(string(acc), "Login at 10.0.0.5") || strings.Contains(string(acc), "10.0.0.6") {
		t.Errorf("accepted log = %q", acc)
	}
	if !strings.Contains(string(rej), "Login failed at 10.0.0.6") || strings.Contains(string(rej), "10.0.0.5") {
		t.Errorf("rejected log = %q", rej)
	}
}

func TestAppendOpenFailure(t *testing.T) {
	dir := t.TempDir()
	l := New(filepath.Join(dir, "missing", "login_log"), filepath.Join(dir, "missing", "failed_log"))

	if err := l.Append(Accepted, NewEntry(KindLoginOK, "10.0.0.5")); err == nil {
		t.Fatal("expected error when log directory does not exist")
	}
	if err := l.Append(Selector(7), NewEntry(KindLoginOK, "10.0.0.5")); err == nil {
		t.Fatal("expected error for unknown selector")
	}
}
