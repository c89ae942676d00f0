package search

import (
	"testing"
)

func TestQueryBuilder_Build(t *testing.T) {
	tests := []struct {
		name    string
		builder QueryBuilder
		dork    string
		page    int
		want    string
	}{
		{
			name: "first page",
			dork: "inurl:item.php?id=",
			page: 0,
			want: "https://www.google.com/search?q=inurl:item.php?id=&start=0",
		},
		{
			name: "third page",
			dork: "inurl:item.php?id=",
			page: 2,
			want: "https://www.google.com/search?q=inurl:item.php?id=&start=20",
		},
		{
			name: "spaces kept verbatim",
			dork: "inurl:news id",
			page: 0,
			want: "https://www.google.com/search?q=inurl:news id&start=0",
		},
		{
			name:    "spaces to plus",
			builder: QueryBuilder{SpaceToPlus: true},
			dork:    "inurl:news id  x",
			page:    1,
			want:    "https://www.google.com/search?q=inurl:news+id++x&start=10",
		},
		{
			name:    "custom base",
			builder: QueryBuilder{Base: "http://127.0.0.1:8080/search?q="},
			dork:    "a",
			page:    3,
			want:    "http://127.0.0.1:8080/search?q=a&start=30",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.builder.Build(tt.dork, tt.page)
			if q.URL != tt.want {
				t.Errorf("URL = %q, want %q", q.URL, tt.want)
			}
			if q.Offset != tt.page*PageSize {
				t.Errorf("Offset = %d, want %d", q.Offset, tt.page*PageSize)
			}
			if q.Dork != tt.dork {
				t.Errorf("Dork = %q, want original %q", q.Dork, tt.dork)
			}
		})
	}
}

func TestQueryBuilder_AllTwoDorksTwoPages(t *testing.T) {
	qs := QueryBuilder{}.All([]string{"a", "b"}, 2)
	if len(qs) != 4 {
		t.Fatalf("len = %d, want 4", len(qs))
	}

	wantOffsets := []int{0, 10, 0, 10}
	wantDorks := []string{"a", "a", "b", "b"}
	seen := make(map[string]bool)
	for i, q := range qs {
		if q.Offset != wantOffsets[i] {
			t.Errorf("qs[%d].Offset = %d, want %d", i, q.Offset, wantOffsets[i])
		}
		if q.Dork != wantDorks[i] {
			t.Errorf("qs[%d].Dork = %q, want %q", i, q.Dork, wantDorks[i])
		}
		seen[q.URL] = true
	}
	if len(seen) != 4 {
		t.Errorf("distinct URLs = %d, want 4", len(seen))
	}
}

func TestQueryBuilder_PagesNonPositive(t *testing.T) {
	for _, n := range []int{0, -1} {
		if qs := (QueryBuilder{}).Pages("a", n); len(qs) != 0 {
			t.Errorf("Pages(n=%d) returned %d queries, want 0", n, len(qs))
		}
	}
}
