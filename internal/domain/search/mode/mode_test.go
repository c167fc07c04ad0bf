package mode

import "testing"

func TestIsValid(t *testing.T) {
	valid := []Mode{Title, ISBN, Author, All}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", m)
		}
	}

	invalid := []Mode{"", "name", "description", "TITLE"}
	for _, m := range invalid {
		if m.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", m)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"title", Title},
		{"name", Title},
		{" Title ", Title},
		{"isbn", ISBN},
		{"ISBN", ISBN},
		{"author", Author},
		{"all", All},
		{"", All},
		{"description", All},
		{"category", All},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
