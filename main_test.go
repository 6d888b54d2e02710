package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{name: "first wins", values: []string{"a", "b"}, want: "a"},
		{name: "skips empties", values: []string{"", "", "c"}, want: "c"},
		{name: "all empty", values: []string{"", ""}, want: ""},
		{name: "no values", values: nil, want: ""},
	}
	for _, tc := range tests {
		if got := firstNonEmpty(tc.values...); got != tc.want {
			t.Fatalf("%s: firstNonEmpty(%v) = %q, want %q", tc.name, tc.values, got, tc.want)
		}
	}
}

func TestAllExist(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present")
	if err := os.WriteFile(present, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !allExist(present) {
		t.Fatal("allExist should report an existing file")
	}
	if allExist(present, filepath.Join(dir, "absent")) {
		t.Fatal("allExist should fail when any path is missing")
	}
}

func TestOrDash(t *testing.T) {
	if got := orDash(""); got != "-" {
		t.Fatalf("orDash(\"\") = %q", got)
	}
	if got := orDash("x"); got != "x" {
		t.Fatalf("orDash(x) = %q", got)
	}
}
