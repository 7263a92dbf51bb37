package loggit

import (
	"os"
	"testing"
)

// chdirT mirrors testing.T.Chdir (added in Go 1.24) for older toolchains:
// it changes the working directory and restores it when the test ends.
func chdirT(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Error(err)
		}
	})
}
