package lockfile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTMX(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingReturnsEmpty(t *testing.T) {
	lf, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if lf.Version != Version || len(lf.Staged) != 0 {
		t.Fatalf("unexpected lock file: %+v", lf)
	}
}

func TestUpdateSaveLoad(t *testing.T) {
	dir := t.TempDir()
	lf, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	lf.Update("demo", "abc123")
	if err := lf.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	round, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !round.IsCurrent("demo", "abc123") {
		t.Fatal("fingerprint should be current after save/load")
	}
	if round.IsCurrent("demo", "other") {
		t.Fatal("different fingerprint should not be current")
	}
	if round.IsCurrent("unknown", "abc123") {
		t.Fatal("unknown base should not be current")
	}
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	tmx := writeTMX(t, dir, "a.tmx", "<tmx/>")

	base, err := Fingerprint(tmx, "demo", "pt", "en")
	if err != nil {
		t.Fatalf("Fingerprint error: %v", err)
	}

	t.Run("stable for identical inputs", func(t *testing.T) {
		again, err := Fingerprint(tmx, "demo", "pt", "en")
		if err != nil {
			t.Fatal(err)
		}
		if again != base {
			t.Fatalf("fingerprint not stable: %q vs %q", again, base)
		}
	})

	t.Run("changes with document content", func(t *testing.T) {
		other := writeTMX(t, dir, "b.tmx", "<tmx version='1.4'/>")
		got, err := Fingerprint(other, "demo", "pt", "en")
		if err != nil {
			t.Fatal(err)
		}
		if got == base {
			t.Fatal("fingerprint should change with content")
		}
	})

	t.Run("changes with parameters", func(t *testing.T) {
		got, err := Fingerprint(tmx, "demo", "en", "pt")
		if err != nil {
			t.Fatal(err)
		}
		if got == base {
			t.Fatal("fingerprint should change with parameters")
		}
	})

	t.Run("missing document", func(t *testing.T) {
		if _, err := Fingerprint(filepath.Join(dir, "absent.tmx"), "demo"); err == nil {
			t.Fatal("Fingerprint should fail for a missing document")
		}
	})
}
