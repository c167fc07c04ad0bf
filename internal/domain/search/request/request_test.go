package request

import (
	"strings"
	"testing"

	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/mode"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("  Cloud   Atlas! ", "", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Raw() != "  Cloud   Atlas! " {
		t.Errorf("Raw() = %q", r.Raw())
	}
	if r.Normalized() != "Cloud Atlas" {
		t.Errorf("Normalized() = %q", r.Normalized())
	}
	if len(r.Tokens()) != 2 {
		t.Errorf("Tokens() = %v", r.Tokens())
	}
	if r.Mode() != mode.All {
		t.Errorf("Mode() = %q, want all (default)", r.Mode())
	}
	if r.Limit() != 0 {
		t.Errorf("Limit() = %d, want 0", r.Limit())
	}
	if r.Empty() {
		t.Error("Empty() = true")
	}
}

func TestNew_ExplicitValues(t *testing.T) {
	r, err := New("orwell", mode.Author, 2, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Mode() != mode.Author {
		t.Errorf("Mode() = %q", r.Mode())
	}
	if r.Limit() != 5 {
		t.Errorf("Limit() = %d", r.Limit())
	}
}

func TestNew_EmptyQueries(t *testing.T) {
	for _, q := range []string{"", "   ", "!!!"} {
		r, err := New(q, mode.All, 1, 0)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", q, err)
		}
		if !r.Empty() {
			t.Errorf("Empty() = false for %q", q)
		}
	}
}

func TestNew_MinLength(t *testing.T) {
	r, err := New("a!", mode.Title, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Empty() {
		t.Error("one-rune query should be empty under min length 2")
	}

	r, err = New("ab", mode.Title, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Empty() {
		t.Error("two-rune query should pass min length 2")
	}

	r, err = New("é", mode.Title, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Empty() {
		t.Error("min length below 1 should be treated as 1")
	}
}

func TestNew_InvalidModeFallsBackToAll(t *testing.T) {
	r, err := New("x", mode.Mode("category"), 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Mode() != mode.All {
		t.Errorf("Mode() = %q, want all", r.Mode())
	}
}

func TestNew_LimitBounds(t *testing.T) {
	if _, err := New("x", mode.All, 1, -1); err == nil {
		t.Error("expected error for negative limit")
	}
	r, err := New("x", mode.All, 1, MaxLimit+10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != MaxLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), MaxLimit)
	}
}

func TestNew_QueryTooLong(t *testing.T) {
	_, err := New(strings.Repeat("x", MaxQueryLength+1), mode.All, 1, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "too long") {
		t.Errorf("error = %q", err)
	}
}

func TestRequest_WithoutLimit(t *testing.T) {
	r, err := New("Dune", mode.Title, 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := r.WithoutLimit()
	if all.Limit() != 0 {
		t.Errorf("WithoutLimit().Limit() = %d, want 0", all.Limit())
	}
	if r.Limit() != 5 {
		t.Errorf("original limit changed to %d", r.Limit())
	}
	if all.Normalized() != "Dune" || all.Mode() != mode.Title {
		t.Errorf("copy lost fields: %q %q", all.Normalized(), all.Mode())
	}
}
