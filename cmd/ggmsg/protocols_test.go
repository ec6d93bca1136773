package main

import (
	"strings"
	"testing"

	"github.com/example/go-ggwave-message/internal/protocol"
)

func TestPrintProtocols_ListsAllWithDefaultMarker(t *testing.T) {
	var out strings.Builder
	if err := printProtocols(&out); err != nil {
		t.Fatalf("printProtocols: %v", err)
	}
	text := out.String()

	for _, p := range protocol.All() {
		if !strings.Contains(text, p.Name) {
			t.Errorf("output missing protocol %q", p.Name)
		}
	}

	if strings.Count(text, "(DEFAULT)") != 1 {
		t.Errorf("expected exactly one (DEFAULT) marker:\n%s", text)
	}
	if !strings.Contains(text, "Usage examples:") {
		t.Error("output missing usage examples")
	}
}
