// Package export implements the reverse conversion: it walks the
// alignment attribute between two indexed corpora block by block,
// resolves each token-position range back into surface text, and
// re-assembles translation units into a TMX document.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/tmxtools/tmxkit/corpus"
	"github.com/tmxtools/tmxkit/langpair"
	"github.com/tmxtools/tmxkit/tmxfile"
)

// Options controls one corpus → TMX export.
type Options struct {
	// Base is the corpus base name the corpora were built under.
	Base string
	// Pair is the source/target language pair.
	Pair langpair.Pair
	// ToolName and ToolVersion are stamped into the TMX header.
	ToolName    string
	ToolVersion string
}

// Export opens the pair's corpora, walks the source corpus's alignment
// toward the target corpus in block order, and writes one TMX
// translation unit per block. Block order becomes TU order; the
// alignment attribute is the sole source of truth at this stage.
// Returns the number of units written.
//
// A block whose range is degenerate on either side yields an empty
// string on that side, not an error.
func Export(opener corpus.Opener, opts Options, out io.Writer) (int, error) {
	srcName := corpus.Name(opts.Base, opts.Pair.Source)
	tgtName := corpus.Name(opts.Base, opts.Pair.Target)

	src, err := opener.Open(srcName)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	tgt, err := opener.Open(tgtName)
	if err != nil {
		return 0, err
	}
	defer tgt.Close()

	align, err := src.Alignment(tgtName)
	if err != nil {
		return 0, err
	}

	w := tmxfile.NewWriter(out)
	if err := w.Begin(opts.ToolName, opts.ToolVersion, opts.Pair.Source); err != nil {
		return 0, err
	}

	langs := []string{opts.Pair.Source, opts.Pair.Target}
	for i := 0; i < align.Len(); i++ {
		block, err := align.Block(i)
		if err != nil {
			return i, err
		}

		srcText, err := joinRange(src, block.SourceStart, block.SourceEnd)
		if err != nil {
			return i, fmt.Errorf("block %d: %w", i, err)
		}
		tgtText, err := joinRange(tgt, block.TargetStart, block.TargetEnd)
		if err != nil {
			return i, fmt.Errorf("block %d: %w", i, err)
		}

		tu := tmxfile.TU{
			opts.Pair.Source: srcText,
			opts.Pair.Target: tgtText,
		}
		if err := w.AddTU(langs, tu); err != nil {
			return i, err
		}
	}

	if err := w.End(); err != nil {
		return align.Len(), err
	}
	return align.Len(), nil
}

// joinRange resolves an inclusive cpos range to its surface tokens
// joined by single spaces. The tokens come straight out of the indexed
// corpus: no re-tokenization, no normalization, no re-decoding.
func joinRange(c corpus.Corpus, start, end int) (string, error) {
	words, err := c.Words(start, end)
	if err != nil {
		return "", err
	}
	return strings.Join(words, " "), nil
}
