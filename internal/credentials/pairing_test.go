package credentials

import (
	"strings"
	"testing"
)

func TestGeneratePairingCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GeneratePairingCode()
		if err != nil {
			t.Fatalf("GeneratePairingCode failed: %v", err)
		}

		parts := strings.Split(code, "-")
		if len(parts) != 3 {
			t.Fatalf("expected adjective-noun-suffix format, got %q", code)
		}
		if len(parts[2]) != 4 {
			t.Errorf("expected 4-character suffix, got %q", parts[2])
		}
		for _, c := range parts[2] {
			if !strings.ContainsRune(suffixChars, c) {
				t.Errorf("suffix character %q outside allowed alphabet in %q", c, code)
			}
		}

		if seen[code] {
			t.Errorf("duplicate pairing code generated: %s", code)
		}
		seen[code] = true
	}
}
