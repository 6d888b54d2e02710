// Package corpus defines the capability interface over indexed,
// tokenized corpora: open-by-name, word lookup by token position, and
// cross-corpus alignment access. The alignment exporter depends only on
// these interfaces; registry.go provides the concrete engine adapter.
package corpus

import (
	"errors"
	"strings"
)

// ErrCorpusNotFound is returned when a named corpus cannot be opened.
var ErrCorpusNotFound = errors.New("corpus not found")

// ErrNoAlignmentData is returned when a corpus has no alignment
// attribute toward the requested target, or the attribute is empty.
var ErrNoAlignmentData = errors.New("no alignment data")

// Name returns the canonical corpus name for a base name and language
// code: lowercase(base + "_" + lang). The upper-cased form of this name
// is what alignment-map headers and registry entries advertise; Open
// implementations must accept either case.
func Name(base, lang string) string {
	return strings.ToLower(base + "_" + lang)
}

// Block is one alignment unit: a contiguous token-position span in the
// source corpus aligned with a contiguous span in the target corpus.
// Bounds are inclusive; Start <= End on each side for non-degenerate
// blocks, and a degenerate side is marked by End < Start.
type Block struct {
	SourceStart int
	SourceEnd   int
	TargetStart int
	TargetEnd   int
}

// Alignment is a corpus's alignment attribute toward one target corpus.
type Alignment interface {
	// Len returns the number of alignment blocks.
	Len() int
	// Block resolves one block by index, in [0, Len()).
	Block(i int) (Block, error)
}

// Corpus is one opened, indexed corpus.
type Corpus interface {
	// Language returns the corpus language code.
	Language() string
	// Size returns the total token count.
	Size() int
	// Words resolves the inclusive token-position range [start, end]
	// to surface strings in position order. An empty range (end <
	// start) yields no words and no error.
	Words(start, end int) ([]string, error)
	// Alignment returns the alignment attribute toward the named
	// target corpus, or ErrNoAlignmentData.
	Alignment(target string) (Alignment, error)
	// Close releases the corpus.
	Close() error
}

// Opener opens corpora by canonical name.
type Opener interface {
	Open(name string) (Corpus, error)
}
