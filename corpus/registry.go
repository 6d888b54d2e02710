// Registry-directory engine adapter: each corpus is a folder under the
// registry root named by its canonical lowercase name, holding the
// token stream, translation-unit ranges, and alignment attributes as
// plain files.
package corpus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File names inside a corpus folder. The corpus builder writes these;
// the registry adapter reads them.
const (
	// MetaFile is the YAML metadata sidecar (language, token count).
	MetaFile = "meta.yaml"
	// WordFile holds one token per line; the line index is the cpos.
	WordFile = "word.tok"
	// RangeFile maps each translation-unit id to its inclusive cpos
	// range, one "id\tstart\tend" line per unit.
	RangeFile = "tu.rng"
)

// AlignFile returns the alignment-attribute file name toward a target
// corpus.
func AlignFile(target string) string {
	return "align_" + strings.ToLower(target) + ".alg"
}

// Meta is the corpus metadata sidecar.
type Meta struct {
	Language string `yaml:"language"`
	Size     int    `yaml:"size"`
	Units    int    `yaml:"units"`
}

// Registry opens corpora stored under a registry root directory.
type Registry struct {
	// Dir is the registry root.
	Dir string
}

// Open opens a corpus folder by name. The name is lowered first, so
// the upper-cased names advertised in alignment-map headers resolve to
// the same corpus.
func (r *Registry) Open(name string) (Corpus, error) {
	dir := filepath.Join(r.Dir, strings.ToLower(name))

	data, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, strings.ToLower(name))
	}
	var meta Meta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("corpus %s: bad metadata: %w", name, err)
	}

	words, err := readLines(filepath.Join(dir, WordFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, strings.ToLower(name))
	}

	return &regCorpus{dir: dir, meta: meta, words: words}, nil
}

type regCorpus struct {
	dir   string
	meta  Meta
	words []string
}

func (c *regCorpus) Language() string { return c.meta.Language }
func (c *regCorpus) Size() int        { return len(c.words) }
func (c *regCorpus) Close() error     { return nil }

func (c *regCorpus) Words(start, end int) ([]string, error) {
	if end < start {
		return nil, nil
	}
	if start < 0 || end >= len(c.words) {
		return nil, fmt.Errorf("corpus %s: cpos range [%d,%d] outside [0,%d)",
			filepath.Base(c.dir), start, end, len(c.words))
	}
	out := make([]string, 0, end-start+1)
	out = append(out, c.words[start:end+1]...)
	return out, nil
}

func (c *regCorpus) Alignment(target string) (Alignment, error) {
	path := filepath.Join(c.dir, AlignFile(target))
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s has no alignment toward %s",
			ErrNoAlignmentData, filepath.Base(c.dir), strings.ToLower(target))
	}

	blocks := make([]Block, 0, len(lines))
	for i, line := range lines {
		var b Block
		n, err := fmt.Sscanf(line, "%d\t%d\t%d\t%d",
			&b.SourceStart, &b.SourceEnd, &b.TargetStart, &b.TargetEnd)
		if err != nil || n != 4 {
			return nil, fmt.Errorf("alignment %s line %d: bad block: %q", path, i+1, line)
		}
		blocks = append(blocks, b)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: %s toward %s is empty",
			ErrNoAlignmentData, filepath.Base(c.dir), strings.ToLower(target))
	}
	return blockList(blocks), nil
}

type blockList []Block

func (l blockList) Len() int { return len(l) }

func (l blockList) Block(i int) (Block, error) {
	if i < 0 || i >= len(l) {
		return Block{}, fmt.Errorf("alignment block %d outside [0,%d)", i, len(l))
	}
	return l[i], nil
}

// readLines reads a file into trimmed-newline lines, dropping a single
// trailing empty line.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
