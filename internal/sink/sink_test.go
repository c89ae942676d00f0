package sink

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func readAll(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(b)
}

func writeLines(t *testing.T, path string, mode WriteMode, lines ...string) {
	t.Helper()
	w, err := Create(path, mode, 0o644)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, l := range lines {
		if err := w.WriteLine(l); err != nil {
			t.Fatalf("WriteLine: %v", err)
		}
	}
	if w.Lines() != len(lines) {
		t.Errorf("Lines = %d, want %d", w.Lines(), len(lines))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestCreate_Truncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	writeLines(t, path, Truncate, "old-1", "old-2")
	writeLines(t, path, Truncate, "new")
	if got := readAll(t, path); got != "new\n" {
		t.Errorf("content = %q, want %q", got, "new\n")
	}
}

func TestCreate_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vuln.txt")
	writeLines(t, path, Truncate, "first")
	writeLines(t, path, Append, "second")
	if got := readAll(t, path); got != "first\nsecond\n" {
		t.Errorf("content = %q", got)
	}
}

func TestCreate_AppendCreatesMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vuln.txt")
	writeLines(t, path, Append, "x")
	if got := readAll(t, path); got != "x\n" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteLine_VisibleBeforeClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	w, err := Create(path, Truncate, LinkFileMode)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.WriteLine("http://a.test/"); err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, path); got != "http://a.test/\n" {
		t.Errorf("content before close = %q", got)
	}
}

func TestCreate_ResourceAccessError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "links.txt")
	_, err := Create(path, Truncate, LinkFileMode)
	var rae *ResourceAccessError
	if !errors.As(err, &rae) {
		t.Fatalf("err = %v, want ResourceAccessError", err)
	}
	if rae.Path != path {
		t.Errorf("Path = %q, want %q", rae.Path, path)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	if err := os.WriteFile(path, []byte("http://a.test/\r\n\nhttp://b.test/?id=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := []string{"http://a.test/", "http://b.test/?id=1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	var rae *ResourceAccessError
	if !errors.As(err, &rae) {
		t.Fatalf("err = %v, want ResourceAccessError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err should wrap os.ErrNotExist: %v", err)
	}
	if !strings.Contains(err.Error(), "nope.txt") {
		t.Errorf("message %q should name the file", err.Error())
	}
}

func TestReadLines_Empty(t *testing.T) {
	got, err := ReadLines(strings.NewReader(""))
	if err != nil || len(got) != 0 {
		t.Errorf("ReadLines(\"\") = (%q, %v), want empty", got, err)
	}
}
