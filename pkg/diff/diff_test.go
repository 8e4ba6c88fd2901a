package diff

import (
	"fmt"
	"strings"
	"testing"
)

func TestAttributes_IdenticalMaps(t *testing.T) {
	observed := map[string]string{"name": "lab", "status": "active"}
	desired := map[string]string{"name": "lab", "status": "active"}

	result := Attributes(observed, desired, "device", "manifest")

	if result != "" {
		t.Errorf("Expected empty diff for identical attributes, got: %s", result)
	}
}

func TestAttributes_ChangedValue(t *testing.T) {
	observed := map[string]string{"name": "old-name"}
	desired := map[string]string{"name": "quarantine"}

	result := Attributes(observed, desired, "device", "manifest")

	if result == "" {
		t.Fatal("Expected non-empty diff for drifted attributes")
	}

	if !strings.Contains(result, "-name: old-name") {
		t.Error("Diff should show the observed value with - prefix")
	}

	if !strings.Contains(result, "+name: quarantine") {
		t.Error("Diff should show the desired value with + prefix")
	}
}

func TestAttributes_AddedAndRemoved(t *testing.T) {
	observed := map[string]string{"name": "lab", "status": "active"}
	desired := map[string]string{"name": "lab", "ports": "1,2,9"}

	result := Attributes(observed, desired, "device", "manifest")

	if !strings.Contains(result, "+ports: 1,2,9") {
		t.Error("Diff should show the attribute the manifest adds")
	}

	if !strings.Contains(result, "-status: active") {
		t.Error("Diff should show the attribute only the device holds")
	}

	if !strings.Contains(result, " name: lab") {
		t.Error("Diff should keep matching attributes as context lines")
	}
}

func TestAttributes_Labels(t *testing.T) {
	result := Attributes(map[string]string{"name": "a"}, map[string]string{"name": "b"}, "core-1/vlan/999", "manifest")

	if !strings.Contains(result, "--- core-1/vlan/999") {
		t.Error("Diff should carry the observed label")
	}

	if !strings.Contains(result, "+++ manifest") {
		t.Error("Diff should carry the desired label")
	}
}

func TestAttributes_SortsNames(t *testing.T) {
	observed := map[string]string{}
	desired := map[string]string{"zone": "z", "access_vlan": "10", "name": "n"}

	result := Attributes(observed, desired, "device", "manifest")

	access := strings.Index(result, "access_vlan")
	name := strings.Index(result, "name:")
	zone := strings.Index(result, "zone")
	if access == -1 || name == -1 || zone == -1 {
		t.Fatalf("Diff is missing attribute lines: %s", result)
	}
	if !(access < name && name < zone) {
		t.Errorf("Attributes should render in sorted order, got: %s", result)
	}
}

func TestAttributes_EmptyMaps(t *testing.T) {
	if result := Attributes(nil, nil, "device", "manifest"); result != "" {
		t.Errorf("Expected empty diff for two empty maps, got: %s", result)
	}

	if result := Attributes(nil, map[string]string{"name": "n"}, "device", "manifest"); !strings.Contains(result, "+name: n") {
		t.Errorf("Expected pure addition diff, got: %s", result)
	}
}

func TestAttributes_Truncation(t *testing.T) {
	observed := map[string]string{}
	desired := map[string]string{}
	for i := 0; i < maxDiffLines+50; i++ {
		desired[fmt.Sprintf("attr%05d", i)] = "value"
	}

	result := Attributes(observed, desired, "device", "manifest")

	if !strings.Contains(result, "truncated") {
		t.Error("Oversized diff should carry the truncation marker")
	}

	lineCount := strings.Count(result, "\n")
	if lineCount > maxDiffLines+2 {
		t.Errorf("Truncated diff should stay near %d lines, got %d", maxDiffLines, lineCount)
	}
}
