package id

import (
	"sort"
	"testing"
)

func TestNewIsUniqueAndSortable(t *testing.T) {
	const n = 1000

	ids := make([]string, n)
	seen := make(map[string]struct{}, n)
	for i := range ids {
		ids[i] = New()
		if len(ids[i]) != 26 {
			t.Fatalf("id length: got %d want 26 (%s)", len(ids[i]), ids[i])
		}
		if _, dup := seen[ids[i]]; dup {
			t.Fatalf("duplicate id %s", ids[i])
		}
		seen[ids[i]] = struct{}{}
	}

	// Generation order and lexicographic order must agree.
	if !sort.StringsAreSorted(ids) {
		t.Fatal("ids generated out of lexicographic order")
	}
}
