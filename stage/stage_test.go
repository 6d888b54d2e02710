package stage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/tmxtools/tmxkit/langpair"
	"github.com/tmxtools/tmxkit/tmxfile"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "<a>", want: "&lta&gt"},
		{in: "plain", want: "plain"},
		{in: "a < b > c", want: "a &lt b &gt c"},
		// already-escaped output contains no reserved characters,
		// so a second pass is the identity
		{in: "&lta&gt", want: "&lta&gt"},
	}
	for _, tc := range tests {
		if got := Escape(tc.in); got != tc.want {
			t.Fatalf("Escape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := Escape(Escape("<a>")); got != "&lta&gt" {
		t.Fatalf("double Escape = %q, want %q", got, "&lta&gt")
	}
}

func TestExportSkipsIncompleteUnits(t *testing.T) {
	tus := []tmxfile.TU{
		{"PT": "Olá", "EN": "Hello"},
		{"PT": "Mundo"},
	}
	opts := Options{
		Base: "demo",
		Pair: langpair.Pair{Source: "PT", Target: "EN"},
	}

	var src, tgt, amap bytes.Buffer
	res, err := Export(tus, opts, &src, &tgt, &amap)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if res.Retained != 1 || res.Skipped != 1 {
		t.Fatalf("Result = %+v, want Retained 1 Skipped 1", res)
	}

	if got, want := src.String(), "<tu id='1'>\nOlá\n</tu>\n"; got != want {
		t.Fatalf("source staging = %q, want %q", got, want)
	}
	if got, want := tgt.String(), "<tu id='1'>\nHello\n</tu>\n"; got != want {
		t.Fatalf("target staging = %q, want %q", got, want)
	}

	lines := strings.Split(strings.TrimRight(amap.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("alignment map lines = %d, want 2:\n%s", len(lines), amap.String())
	}
	if lines[0] != "DEMO_PT\tDEMO_EN\ttu\tid_{id}" {
		t.Fatalf("alignment map header = %q", lines[0])
	}
	if lines[1] != "id_1\tid_1" {
		t.Fatalf("alignment map record = %q", lines[1])
	}
}

func TestExportIdentifiersContiguous(t *testing.T) {
	var tus []tmxfile.TU
	for i := 0; i < 10; i++ {
		tu := tmxfile.TU{"pt": "um dois", "en": "one two"}
		if i%3 == 1 {
			delete(tu, "en") // skipped, must not consume an identifier
		}
		tus = append(tus, tu)
	}

	var src, tgt, amap bytes.Buffer
	res, err := Export(tus, Options{Base: "c", Pair: langpair.Pair{Source: "pt", Target: "en"}},
		&src, &tgt, &amap)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if res.Retained != 7 {
		t.Fatalf("Retained = %d, want 7", res.Retained)
	}

	// the three artifacts must enumerate the same contiguous ids
	for _, out := range []string{src.String(), tgt.String()} {
		if got := strings.Count(out, "<tu id='"); got != 7 {
			t.Fatalf("staging block count = %d, want 7", got)
		}
		for id := 1; id <= 7; id++ {
			marker := "<tu id='" + strconv.Itoa(id) + "'>"
			if !strings.Contains(out, marker) {
				t.Fatalf("staging output missing block %s", marker)
			}
		}
	}
	mapLines := strings.Split(strings.TrimRight(amap.String(), "\n"), "\n")
	if len(mapLines) != 8 {
		t.Fatalf("alignment map lines = %d, want 8 (header + 7)", len(mapLines))
	}
	for id := 1; id <= 7; id++ {
		want := "id_" + strconv.Itoa(id) + "\tid_" + strconv.Itoa(id)
		if mapLines[id] != want {
			t.Fatalf("alignment map line %d = %q, want %q", id, mapLines[id], want)
		}
	}
}

func TestExportNoLiteralMarkupInBlocks(t *testing.T) {
	tus := []tmxfile.TU{
		{"pt": "um <b>dois</b>", "en": "one <b>two</b>"},
	}
	var src, tgt, amap bytes.Buffer
	if _, err := Export(tus, Options{Base: "c", Pair: langpair.Pair{Source: "pt", Target: "en"}},
		&src, &tgt, &amap); err != nil {
		t.Fatalf("Export error: %v", err)
	}

	for _, out := range []string{src.String(), tgt.String()} {
		for _, line := range strings.Split(out, "\n") {
			if strings.HasPrefix(line, "<tu id='") || line == "</tu>" || line == "" {
				continue
			}
			if strings.ContainsAny(line, "<>") {
				t.Fatalf("token line contains reserved markup character: %q", line)
			}
		}
	}
}

func TestExportTokenizationPolicies(t *testing.T) {
	upper := func(s string) ([]string, error) {
		return []string{strings.ToUpper(s)}, nil
	}
	tus := []tmxfile.TU{{"pt": "um dois", "en": "one two"}}

	var src, tgt, amap bytes.Buffer
	_, err := Export(tus, Options{
		Base:            "c",
		Pair:            langpair.Pair{Source: "pt", Target: "en"},
		SourceTokenizer: upper,
		// target side stays whitespace-split
	}, &src, &tgt, &amap)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}

	if got, want := src.String(), "<tu id='1'>\nUM DOIS\n</tu>\n"; got != want {
		t.Fatalf("tokenized source = %q, want %q", got, want)
	}
	if got, want := tgt.String(), "<tu id='1'>\none\ntwo\n</tu>\n"; got != want {
		t.Fatalf("whitespace target = %q, want %q", got, want)
	}
}

func TestExportProgressCallback(t *testing.T) {
	var tus []tmxfile.TU
	for i := 0; i < ProgressInterval*2+5; i++ {
		tus = append(tus, tmxfile.TU{"pt": "a", "en": "b"})
	}

	var calls []int
	var src, tgt, amap bytes.Buffer
	_, err := Export(tus, Options{
		Base:     "c",
		Pair:     langpair.Pair{Source: "pt", Target: "en"},
		Progress: func(n int) { calls = append(calls, n) },
	}, &src, &tgt, &amap)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if len(calls) != 2 || calls[0] != ProgressInterval || calls[1] != 2*ProgressInterval {
		t.Fatalf("progress calls = %v", calls)
	}
}

func TestExportFiles(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.vrt")
	tgtPath := filepath.Join(dir, "tgt.vrt")
	mapPath := filepath.Join(dir, "pair.align")

	tus := []tmxfile.TU{{"pt": "Olá", "en": "Hello"}}
	res, err := ExportFiles(tus, Options{Base: "demo", Pair: langpair.Pair{Source: "pt", Target: "en"}},
		srcPath, tgtPath, mapPath)
	if err != nil {
		t.Fatalf("ExportFiles error: %v", err)
	}
	if res.Retained != 1 {
		t.Fatalf("Retained = %d, want 1", res.Retained)
	}
	for _, p := range []string{srcPath, tgtPath, mapPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing artifact %s: %v", p, err)
		}
	}
}

func TestExportFilesCreateFailure(t *testing.T) {
	dir := t.TempDir()
	_, err := ExportFiles(nil, Options{Base: "c", Pair: langpair.Pair{Source: "a", Target: "b"}},
		filepath.Join(dir, "missing", "src.vrt"),
		filepath.Join(dir, "tgt.vrt"),
		filepath.Join(dir, "pair.align"))
	if !errors.Is(err, ErrStagingIO) {
		t.Fatalf("error = %v, want ErrStagingIO", err)
	}
}

