package version

import "testing"

func TestString(t *testing.T) {
	orig := [3]string{Version, GitSHA, BuildTime}
	t.Cleanup(func() { Version, GitSHA, BuildTime = orig[0], orig[1], orig[2] })

	Version, GitSHA, BuildTime = "v0.3.1", "abc1234", "2026-05-01T10:00:00Z"
	if got, want := String(), "court.report v0.3.1 (abc1234, built 2026-05-01T10:00:00Z)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
