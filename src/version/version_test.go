// +build !unit

package version

import (
	"regexp"
	"testing"
)

// TestFlagEmpty fails if version.Flag is not empty. Release builds carry no
// flag.
func TestFlagEmpty(t *testing.T) {
	if len(Flag) > 0 {
		t.Fatalf("Version Flag is not empty: %s", Flag)
	}
}

func TestVersionFormat(t *testing.T) {
	if !regexp.MustCompile(`^\d+\.\d+\.\d+`).MatchString(Version) {
		t.Fatalf("Version should start with major.minor.patch: %s", Version)
	}
}
