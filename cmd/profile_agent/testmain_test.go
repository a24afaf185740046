package main

import (
	"os"
	"strings"
	"testing"
)

// TestMain clears configuration from the environment so every test sees
// only the config file it writes.
func TestMain(m *testing.M) {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "PROFILEGEN_") || name == "GEMINI_API_KEY" {
			_ = os.Unsetenv(name)
		}
	}

	os.Exit(m.Run())
}
