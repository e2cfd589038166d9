package census

import (
	"os"
	"path/filepath"
	"testing"
)

type fakeProc struct {
	root string
}

func newFakeProc(t *testing.T) *fakeProc {
	t.Helper()
	return &fakeProc{root: t.TempDir()}
}

func (f *fakeProc) add(t *testing.T, dir, status string) {
	t.Helper()
	p := filepath.Join(f.root, dir)
	if err := os.MkdirAll(p, 0755); err != nil {
		t.Fatal(err)
	}
	if status == "" {
		return
	}
	if err := os.WriteFile(filepath.Join(p, "status"), []byte(status), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCountRunning(t *testing.T) {
	fp := newFakeProc(t)
	fp.add(t, "1", "Name:\tsystemd\nState:\tS (sleeping)\n")
	fp.add(t, "42", "Name:\tlsh\nState:\tS (sleeping)\n")
	fp.add(t, "43", "Name:\tsshd\n")
	fp.add(t, "self", "Name:\tlsh\n")
	fp.add(t, "sys", "")

	p := &ProcFS{Root: fp.root}
	res, err := p.CountRunning("lsh", 1)
	if err != nil {
		t.Fatalf("CountRunning: %v", err)
	}
	if res.Count != 1 || res.Exceeded {
		t.Errorf("got %+v, want count 1 not exceeded", res)
	}
}

func TestCountRunningExceeded(t *testing.T) {
	fp := newFakeProc(t)
	fp.add(t, "100", "Name:\tlsh\n")
	fp.add(t, "101", "Name:\tlsh\n")
	fp.add(t, "102", "Name:\tlsh\n")

	p := &ProcFS{Root: fp.root}
	res, err := p.CountRunning("lsh", 1)
	if err != nil {
		t.Fatalf("CountRunning: %v", err)
	}
	if !res.Exceeded {
		t.Fatalf("expected limit exceeded, got %+v", res)
	}
	if res.Count != 2 {
		t.Errorf("scan should stop at the first match over the limit, count = %d", res.Count)
	}

	res, err = p.CountRunning("lsh", 3)
	if err != nil {
		t.Fatal(err)
	}
	if res.Exceeded || res.Count != 3 {
		t.Errorf("limit 3: got %+v", res)
	}
}

func TestScanSkipsUnreadableEntries(t *testing.T) {
	fp := newFakeProc(t)
	fp.add(t, "7", "")
	fp.add(t, "8", "garbage")
	fp.add(t, "9", "Name:\tlsh\n")

	p := &ProcFS{Root: fp.root}
	var seen []Entry
	if err := p.Scan(func(e Entry) bool {
		seen = append(seen, e)
		return true
	}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(seen) != 1 || seen[0].PID != 9 || seen[0].ProgramName != "lsh" {
		t.Errorf("seen = %+v", seen)
	}
}

func TestScanMissingRoot(t *testing.T) {
	p := &ProcFS{Root: filepath.Join(t.TempDir(), "nope")}
	if _, err := p.CountRunning("lsh", 1); err == nil {
		t.Fatal("expected error for missing proc root")
	}
}

func TestParsePID(t *testing.T) {
	tests := []struct {
		in   string
		pid  int
		want bool
	}{
		{"1", 1, true},
		{"31337", 31337, true},
		{"self", 0, false},
		{"12a", 0, false},
		{"", 0, false},
	}
	for _, tc := range tests {
		pid, ok := parsePID(tc.in)
		if ok != tc.want || pid != tc.pid {
			t.Errorf("parsePID(%q) = %d, %v", tc.in, pid, ok)
		}
	}
}
