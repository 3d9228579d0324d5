package config

import (
	"os"
	"testing"
)

// chdirTest changes the working directory to dir for the duration of the
// test and restores it on cleanup (equivalent to testing.T.Chdir, Go 1.24+).
func chdirTest(t *testing.T, dir string) {
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
			t.Fatal(err)
		}
	})
}
