package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain pins GO_ENV to test and runs from an empty directory so a
// developer's .env files never leak into Load.
func TestMain(m *testing.M) {
	if env := os.Getenv("GO_ENV"); env != "" && env != "test" {
		fmt.Fprintf(os.Stderr, "config tests refuse to run with GO_ENV=%q; use GO_ENV=test\n", env)
		os.Exit(1)
	}
	os.Setenv("GO_ENV", "test")

	dir, err := os.MkdirTemp("", "autoparts-config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating temp dir: %v\n", err)
		os.Exit(1)
	}
	if err := os.Chdir(dir); err != nil {
		fmt.Fprintf(os.Stderr, "entering temp dir: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}
