package utils

import (
	"strings"
	"testing"
)

func TestGenerateWorkspaceIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateWorkspaceID()
		if !strings.HasPrefix(id, "ws-") {
			t.Fatalf("expected ws- prefix, got %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate workspace ID: %s", id)
		}
		seen[id] = true
	}
}
