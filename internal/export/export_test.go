package export

import (
	"strings"
	"testing"
)

func TestTextExporter(t *testing.T) {
	filename, data, err := TextExporter{}.Export("Stamina plan for alice", "Week 1: run.")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filename != "stamina-plan-for-alice.txt" {
		t.Fatalf("unexpected filename %q", filename)
	}
	body := string(data)
	if !strings.Contains(body, "Stamina plan for alice") {
		t.Error("artifact missing title")
	}
	if !strings.Contains(body, "Week 1: run.") {
		t.Error("artifact missing plan text")
	}
}

func TestTextExporterRejectsEmptyText(t *testing.T) {
	if _, _, err := (TextExporter{}).Export("title", "   "); err == nil {
		t.Fatal("expected error for empty text")
	}
}
