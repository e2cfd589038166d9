package network

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		input   string
		want    Endpoint
		wantErr bool
	}{
		{"10.0.0.5 51234 22", Endpoint{"10.0.0.5", "51234", "22"}, false},
		{"  192.168.1.7\t40000   2222\n", Endpoint{"192.168.1.7", "40000", "2222"}, false},
		{"::1 50000 22", Endpoint{"::1", "50000", "22"}, false},
		{"10.0.0.5 51234 22 extra", Endpoint{"10.0.0.5", "51234", "22"}, false},
		{"", Endpoint{}, true},
		{"10.0.0.5", Endpoint{}, true},
		{"10.0.0.5 51234", Endpoint{}, true},
		{"not-an-ip 51234 22", Endpoint{}, true},
		{"10.0.0.5 port 22", Endpoint{}, true},
		{"10.0.0.5 70000 22", Endpoint{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseEndpoint(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestEndpointString(t *testing.T) {
	ep := Endpoint{Address: "::1", ClientPort: "50000", ServerPort: "22"}
	if got := ep.String(); got != "[::1]:50000" {
		t.Errorf("String() = %q", got)
	}
}

func TestLoadAllowList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list")
	if err := os.WriteFile(path, []byte("10.0.0.5\n192.168.1.7\n\n10.0.0.50"), 0600); err != nil {
		t.Fatal(err)
	}

	list, err := LoadAllowList(path)
	if err != nil {
		t.Fatalf("LoadAllowList: %v", err)
	}
	if list.Len() != 3 {
		t.Errorf("Len = %d, want 3", list.Len())
	}

	for _, addr := range []string{"10.0.0.5", "192.168.1.7", "10.0.0.50"} {
		if !list.Contains(addr) {
			t.Errorf("expected %q to be allowed", addr)
		}
	}
	for _, addr := range []string{"10.0.0.6", "10.0.0", "10.0.0.5 ", "", "192.168.1.70"} {
		if list.Contains(addr) {
			t.Errorf("expected %q to be rejected", addr)
		}
	}
}

func TestLoadAllowListMissing(t *testing.T) {
	_, err := LoadAllowList(filepath.Join(t.TempDir(), "list"))
	if err == nil {
		t.Fatal("missing allow list must be an error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
