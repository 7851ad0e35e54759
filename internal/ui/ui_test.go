package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/papapumpkin/mnoda/pkg/mnoda"
)

func TestValidAndInvalid(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWriter(&buf)
	p.Valid("a.json", 1, 3)
	p.Invalid("b.json", errors.New("the field 'type' is required"))

	out := buf.String()
	for _, substr := range []string{"✓ a.json", "1 record,", "3 relationships", "✗ b.json", "'type' is required"} {
		if !strings.Contains(out, substr) {
			t.Errorf("output missing %q:\n%s", substr, out)
		}
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWriter(&buf).Inspect(InspectData{
		Path:          "runs.json",
		Format:        "json",
		Size:          2048,
		ModTime:       time.Now().Add(-2 * time.Hour),
		Types:         map[string]int{"run": 1200, "msub": 3},
		Relationships: 5,
	})

	out := buf.String()
	checks := []struct {
		name   string
		substr string
	}{
		{"path", "runs.json"},
		{"size", "2.0 KiB"},
		{"modified", "2 hours ago"},
		{"total records", "1,203"},
		{"per-type count", "1,200"},
		{"relationships", "relationships: 5"},
	}
	for _, c := range checks {
		if !strings.Contains(out, c.substr) {
			t.Errorf("expected output to contain %s (%q), got:\n%s", c.name, c.substr, out)
		}
	}
	// Types are listed alphabetically.
	if strings.Index(out, "msub") > strings.Index(out, "run ") {
		t.Errorf("types not sorted:\n%s", out)
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWriter(&buf)
	p.Diff("a", "b", "")
	if !strings.Contains(buf.String(), "identical") {
		t.Errorf("empty diff output = %q, want identical message", buf.String())
	}

	buf.Reset()
	p.Diff("a", "b", "  map[string]any{\n-\t\"x\": 1,\n+\t\"x\": 2,\n  }\n")
	out := buf.String()
	if !strings.Contains(out, "differ") {
		t.Errorf("output missing differ header:\n%s", out)
	}
	if !strings.Contains(out, red+"-\t\"x\": 1,"+reset) {
		t.Errorf("removed line not colored red:\n%q", out)
	}
	if !strings.Contains(out, green+"+\t\"x\": 2,"+reset) {
		t.Errorf("added line not colored green:\n%q", out)
	}
}

func TestIDs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWriter(&buf)
	p.IDs(nil)
	if !strings.Contains(buf.String(), "archive is empty") {
		t.Errorf("empty list output = %q", buf.String())
	}

	buf.Reset()
	p.IDs([]mnoda.ID{mnoda.GlobalID("run_1"), mnoda.LocalID("mesh")})
	out := buf.String()
	for _, substr := range []string{"run_1", "global", "mesh", "local", "2 records"} {
		if !strings.Contains(out, substr) {
			t.Errorf("output missing %q:\n%s", substr, out)
		}
	}
}

func TestConvertedAndSaved(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWriter(&buf)
	p.Converted("in.json", "out.yaml", 1536)
	p.Saved("run.json", mnoda.GlobalID("abc"))

	out := buf.String()
	for _, substr := range []string{"in.json → out.yaml", "1.5 KiB", "wrote run.json", "global id abc"} {
		if !strings.Contains(out, substr) {
			t.Errorf("output missing %q:\n%s", substr, out)
		}
	}
}
