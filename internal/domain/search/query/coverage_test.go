package query

import "testing"

func TestPrefixCoverage(t *testing.T) {
	sparse, ok := PrefixCoverage([]string{"gre"}, "the great gatsby")
	if !ok {
		t.Fatal("expected match")
	}
	dense, ok := PrefixCoverage([]string{"gre"}, "great expectations")
	if !ok {
		t.Fatal("expected match")
	}
	if dense <= sparse {
		t.Errorf("dense = %f, sparse = %f; denser match must score higher", dense, sparse)
	}

	full, ok := PrefixCoverage([]string{"clo", "atl"}, "cloud atlas")
	if !ok || full != 1 {
		t.Errorf("full coverage = %f, %v", full, ok)
	}
}

func TestPrefixCoverage_Misses(t *testing.T) {
	cases := []struct {
		atoms  []string
		folded string
	}{
		{[]string{"gre", "zzz"}, "great expectations"},
		{[]string{"tla"}, "cloud atlas"},
		{[]string{"a"}, ""},
		{nil, "anything"},
	}
	for _, c := range cases {
		if _, ok := PrefixCoverage(c.atoms, c.folded); ok {
			t.Errorf("PrefixCoverage(%v, %q) matched", c.atoms, c.folded)
		}
	}
}
