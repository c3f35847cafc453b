package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWithinDir(t *testing.T) {
	tmpDir := t.TempDir()

	outDir := filepath.Join(tmpDir, "out")
	elsewhere := filepath.Join(tmpDir, "elsewhere")
	for _, d := range []string{outDir, elsewhere} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	link := filepath.Join(outDir, "link")
	if err := os.Symlink(elsewhere, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{"file in dir", filepath.Join(outDir, "report.json"), false},
		{"new nested file", filepath.Join(outDir, "plots", "rally", "signal.png"), false},
		{"dir itself", outDir, false},
		{"dot dot escape", filepath.Join(outDir, "..", "report.json"), true},
		{"absolute elsewhere", "/etc/passwd", true},
		{"through symlink", filepath.Join(link, "report.json"), true},
		{"symlink itself", link, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WithinDir(tt.path, outDir)
			if (err != nil) != tt.wantError {
				t.Fatalf("WithinDir(%q) error = %v, wantError %v", tt.path, err, tt.wantError)
			}
			if err != nil && !errors.Is(err, ErrPathEscape) {
				t.Errorf("error %v does not wrap ErrPathEscape", err)
			}
		})
	}
}

func TestResolveOutput(t *testing.T) {
	dir := t.TempDir()

	got, err := ResolveOutput(dir, "report.json")
	if err != nil {
		t.Fatalf("ResolveOutput: %v", err)
	}
	if want := filepath.Join(dir, "report.json"); got != want {
		t.Errorf("ResolveOutput = %q, want %q", got, want)
	}

	if _, err := ResolveOutput(dir, "../report.json"); !errors.Is(err, ErrPathEscape) {
		t.Errorf("relative escape error = %v, want ErrPathEscape", err)
	}
	if _, err := ResolveOutput(dir, "/etc/report.json"); !errors.Is(err, ErrPathEscape) {
		t.Errorf("absolute escape error = %v, want ErrPathEscape", err)
	}

	abs := filepath.Join(dir, "a.png")
	if got, err := ResolveOutput(dir, abs); err != nil || got != abs {
		t.Errorf("absolute inside = %q, %v", got, err)
	}
	if got, _ := ResolveOutput("", "x.json"); got != "x.json" {
		t.Errorf("no dir should pass through, got %q", got)
	}
	if got, _ := ResolveOutput(dir, ""); got != "" {
		t.Errorf("empty name should stay empty, got %q", got)
	}
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"rally-1", "rally-1"},
		{"Final Set 3 (wimbledon)", "Final_Set_3_wimbledon"},
		{"../../etc/passwd", "etc_passwd"},
		{"match__7", "match__7"},
		{"a / b", "a_b"},
		{"", "unknown"},
		{"***", "unknown"},
		{"über.json", "ber.json"},
	}
	for _, tt := range tests {
		if got := SanitizeID(tt.in); got != tt.want {
			t.Errorf("SanitizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	if got := SanitizeID(string(long)); len(got) != maxIDLen {
		t.Errorf("long id length = %d, want %d", len(got), maxIDLen)
	}
}
