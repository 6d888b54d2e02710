// Package builder turns the staging triple written by package stage
// into indexed, aligned corpora. Builder is the step-per-method
// contract; Registry is the built-in pure-Go engine and Tool drives an
// external indexing toolchain. Every step's exit status is checked —
// a failed step is fatal and never retried, since indexing is not
// safely idempotent over partial output.
package builder

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tmxtools/tmxkit/corpus"
)

// ErrExternalTool is returned when an external indexing or alignment
// import step exits abnormally.
var ErrExternalTool = errors.New("external tool failed")

// Builder indexes staging files and installs alignment attributes.
// Steps are order-dependent: both corpora must be encoded before the
// alignment map is imported.
type Builder interface {
	// EncodeCorpus indexes one staging file under the given canonical
	// corpus name for the given language.
	EncodeCorpus(stagingPath, name, lang string) error
	// ImportAlignment installs the alignment map between the two
	// corpora named in its header line, in both directions.
	ImportAlignment(mapPath string) error
}

// ---------------------------------------------------------------------------
// Built-in registry engine
// ---------------------------------------------------------------------------

// Registry is the built-in indexer: it materializes staging files into
// the registry-directory layout that corpus.Registry reads back.
type Registry struct {
	// Dir is the registry root; corpus folders are created under it.
	Dir string
}

// tuRange is one translation unit's inclusive cpos span.
type tuRange struct {
	id         int
	start, end int
}

// EncodeCorpus parses the staging blocks and writes the token stream,
// the per-unit cpos ranges, and the metadata sidecar.
func (r *Registry) EncodeCorpus(stagingPath, name, lang string) error {
	ranges, tokens, err := parseStaging(stagingPath)
	if err != nil {
		return err
	}

	dir := filepath.Join(r.Dir, strings.ToLower(name))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating corpus folder: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, corpus.WordFile),
		[]byte(joinLines(tokens)), 0o644); err != nil {
		return err
	}

	var rng strings.Builder
	for _, tr := range ranges {
		fmt.Fprintf(&rng, "%d\t%d\t%d\n", tr.id, tr.start, tr.end)
	}
	if err := os.WriteFile(filepath.Join(dir, corpus.RangeFile),
		[]byte(rng.String()), 0o644); err != nil {
		return err
	}

	meta, err := yaml.Marshal(corpus.Meta{Language: lang, Size: len(tokens), Units: len(ranges)})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, corpus.MetaFile), meta, 0o644)
}

// ImportAlignment reads the map header to learn the two corpus names,
// joins each id_N pair against the per-unit cpos ranges recorded at
// encode time, and writes the alignment attribute into both corpus
// folders (source→target and the mirrored target→source).
func (r *Registry) ImportAlignment(mapPath string) error {
	f, err := os.Open(mapPath)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	if !scanner.Scan() {
		return fmt.Errorf("alignment map %s: missing header", mapPath)
	}
	header := strings.Split(scanner.Text(), "\t")
	if len(header) < 2 {
		return fmt.Errorf("alignment map %s: bad header: %q", mapPath, scanner.Text())
	}
	srcName := strings.ToLower(header[0])
	tgtName := strings.ToLower(header[1])

	srcRanges, err := r.readRanges(srcName)
	if err != nil {
		return err
	}
	tgtRanges, err := r.readRanges(tgtName)
	if err != nil {
		return err
	}

	var fwd, rev strings.Builder
	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != 2 {
			return fmt.Errorf("alignment map %s line %d: bad record: %q", mapPath, lineNum, line)
		}
		srcID, err1 := parseID(parts[0])
		tgtID, err2 := parseID(parts[1])
		if err1 != nil || err2 != nil {
			return fmt.Errorf("alignment map %s line %d: bad record: %q", mapPath, lineNum, line)
		}

		sr, ok := srcRanges[srcID]
		if !ok {
			return fmt.Errorf("alignment map %s line %d: id_%d not in corpus %s", mapPath, lineNum, srcID, srcName)
		}
		tr, ok := tgtRanges[tgtID]
		if !ok {
			return fmt.Errorf("alignment map %s line %d: id_%d not in corpus %s", mapPath, lineNum, tgtID, tgtName)
		}

		fmt.Fprintf(&fwd, "%d\t%d\t%d\t%d\n", sr.start, sr.end, tr.start, tr.end)
		fmt.Fprintf(&rev, "%d\t%d\t%d\t%d\n", tr.start, tr.end, sr.start, sr.end)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := os.WriteFile(
		filepath.Join(r.Dir, srcName, corpus.AlignFile(tgtName)),
		[]byte(fwd.String()), 0o644); err != nil {
		return err
	}
	return os.WriteFile(
		filepath.Join(r.Dir, tgtName, corpus.AlignFile(srcName)),
		[]byte(rev.String()), 0o644)
}

// readRanges loads a corpus's per-unit cpos ranges keyed by unit id.
func (r *Registry) readRanges(name string) (map[int]tuRange, error) {
	path := filepath.Join(r.Dir, name, corpus.RangeFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus %s not encoded: %w", name, err)
	}
	defer f.Close()

	ranges := make(map[int]tuRange)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var tr tuRange
		n, err := fmt.Sscanf(scanner.Text(), "%d\t%d\t%d", &tr.id, &tr.start, &tr.end)
		if err != nil || n != 3 {
			return nil, fmt.Errorf("%s: bad range line: %q", path, scanner.Text())
		}
		ranges[tr.id] = tr
	}
	return ranges, scanner.Err()
}

// parseStaging walks the staging blocks in order, collecting the flat
// token stream and each unit's cpos span. Empty units produce a
// degenerate span (end < start).
func parseStaging(path string) ([]tuRange, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var (
		ranges  []tuRange
		tokens  []string
		current *tuRange
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "<tu id='") && strings.HasSuffix(line, "'>"):
			if current != nil {
				return nil, nil, fmt.Errorf("%s line %d: unterminated block id_%d", path, lineNum, current.id)
			}
			id, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(line, "<tu id='"), "'>"))
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: bad block marker: %q", path, lineNum, line)
			}
			current = &tuRange{id: id, start: len(tokens)}

		case line == "</tu>":
			if current == nil {
				return nil, nil, fmt.Errorf("%s line %d: close marker outside block", path, lineNum)
			}
			current.end = len(tokens) - 1
			ranges = append(ranges, *current)
			current = nil

		default:
			if current == nil {
				return nil, nil, fmt.Errorf("%s line %d: token outside block: %q", path, lineNum, line)
			}
			tokens = append(tokens, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if current != nil {
		return nil, nil, fmt.Errorf("%s: unterminated block id_%d at end of file", path, current.id)
	}
	return ranges, tokens, nil
}

// parseID strips the id_ prefix from an alignment-map record field.
func parseID(s string) (int, error) {
	return strconv.Atoi(strings.TrimPrefix(s, "id_"))
}

// joinLines renders one token per line with a trailing newline.
func joinLines(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	return strings.Join(tokens, "\n") + "\n"
}
