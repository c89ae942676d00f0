package scope

import (
	"strings"
	"testing"
)

func TestScope_Allows(t *testing.T) {
	s, err := Parse([]string{"shop.example", "*.lab.test", "10.0.0.0/8", "127.0.0.1", "# comment", ""})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tests := []struct {
		url  string
		want bool
	}{
		{"http://shop.example/item.php?id=1", true},
		{"https://SHOP.example:8443/x", true},
		{"http://other.example/", false},
		{"http://a.lab.test/p.php?id=2", true},
		{"http://deep.a.lab.test/", true},
		{"http://lab.test/", false},
		{"http://evillab.test/", false},
		{"http://10.1.2.3/x", true},
		{"http://11.0.0.1/x", false},
		{"http://127.0.0.1:8080/x", true},
		{"ftp://shop.example/", false},
		{"not a url", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := s.Allows(tt.url); got != tt.want {
				t.Errorf("Allows(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestScope_Empty(t *testing.T) {
	var nilScope *Scope
	if !nilScope.Empty() || nilScope.Allows("http://a.test/") {
		t.Error("nil scope must allow nothing")
	}
	s, err := Parse([]string{"", "  ", "# only comments"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !s.Empty() {
		t.Error("scope with only blanks should be empty")
	}
	if s.Allows("http://a.test/") {
		t.Error("empty scope must allow nothing")
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, e := range []string{"10.0.0.0/33", "*.", "a*b.test", "host:80"} {
		if _, err := Parse([]string{e}); err == nil {
			t.Errorf("Parse(%q) should fail", e)
		}
	}
}

func TestReadEntries(t *testing.T) {
	entries, err := ReadEntries(strings.NewReader("a.test\n*.b.test\n\n"))
	if err != nil {
		t.Fatalf("ReadEntries: %v", err)
	}
	s, err := Parse(entries)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := s.Entries(); len(got) != 2 {
		t.Errorf("Entries = %q, want 2", got)
	}
}
