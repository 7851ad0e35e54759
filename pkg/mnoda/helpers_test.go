package mnoda

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// parseJSON decodes a JSON object literal into a tree.
func parseJSON(t *testing.T, s string) map[string]any {
	t.Helper()
	var node map[string]any
	if err := json.Unmarshal([]byte(s), &node); err != nil {
		t.Fatalf("invalid test JSON %q: %v", s, err)
	}
	return node
}

// assertTree fails the test if got differs from the JSON object want.
func assertTree(t *testing.T, got map[string]any, want string) {
	t.Helper()
	if diff := cmp.Diff(parseJSON(t, want), got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}
